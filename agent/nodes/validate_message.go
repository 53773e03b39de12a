package waiternode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/tavolahq/waiter/agent/contract"
	statex "github.com/tavolahq/waiter/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply string
}

// GraphState is the mutable value threaded through the per-turn graph.
type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session *statex.ConversationState
	Turn    contractx.AgentTurn

	Advisories  []string
	ToolResults []contractx.ToolResult
	Reply       string
}

func ValidateMessage(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
	}, nil
}
