package waiternode

import (
	"fmt"

	contractx "github.com/tavolahq/waiter/agent/contract"
)

// ApplyTurn records the customer utterance and folds the extracted turn
// into the conversation state. Illegal state moves and premature finalize
// attempts are demoted there, not errored.
func ApplyTurn(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	in.Session.AppendUtterance(contractx.RoleCustomer, in.Text)
	advisories := in.Session.ApplyTurn(in.Turn, in.Now)
	in.Advisories = append(in.Advisories, advisories...)
	return in, nil
}
