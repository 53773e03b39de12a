package waiternode

import (
	"context"
	"fmt"

	contractx "github.com/tavolahq/waiter/agent/contract"
)

// ExtractTurn asks the completion engine for the structured turn that
// answers the current customer message.
func ExtractTurn(
	ctx context.Context,
	in *GraphState,
	engine contractx.TurnEngine,
	toolNames []string,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	turn, err := engine.NextTurn(ctx, contractx.TurnRequest{
		CustomerMessage:     in.Text,
		History:             in.Session.Window(),
		State:               in.Session.State,
		Draft:               in.Session.Draft,
		ConfirmationPending: in.Session.ConfirmationPending,
		ToolNames:           toolNames,
	})
	if err != nil {
		return nil, err
	}

	in.Turn = turn
	return in, nil
}
