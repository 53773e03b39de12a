package waiter

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/tavolahq/waiter/agent/contract"
	nodex "github.com/tavolahq/waiter/agent/nodes"
	statex "github.com/tavolahq/waiter/agent/state"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

// fallbackReply is what the customer sees when a turn dies on an internal
// error. The conversation state is left untouched so the customer can
// simply repeat themselves.
const fallbackReply = "I'm sorry, I had trouble with that. Could you say it again?"

// Waiter drives one ordering conversation per session: every customer
// message runs through the compiled per-turn graph and yields one reply.
type Waiter struct {
	store  statex.Store
	engine contractx.TurnEngine
	tools  contractx.ToolGateway

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(
	store statex.Store,
	engine contractx.TurnEngine,
	tools contractx.ToolGateway,
) (*Waiter, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if engine == nil {
		return nil, errors.New("turn engine is required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}

	w := &Waiter{
		store:  store,
		engine: engine,
		tools:  tools,
		now:    time.Now,
	}

	graphRunner, err := w.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	w.graphRunner = graphRunner

	return w, nil
}

// HandleMessage processes one customer message and returns the waiter's
// reply. Caller mistakes (empty message or session id) surface as errors;
// anything that breaks mid-turn is logged and answered with a fallback so
// the customer is never left hanging.
func (w *Waiter) HandleMessage(ctx context.Context, sessionID string, text string) (string, error) {
	out, err := w.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		if errors.Is(err, nodex.ErrInvalidMessage) || errors.Is(err, nodex.ErrInvalidSession) {
			return "", err
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("turn failed")
		return fallbackReply, nil
	}
	return out.Reply, nil
}
