package waiternode

import (
	"fmt"

	contractx "github.com/tavolahq/waiter/agent/contract"
	toolx "github.com/tavolahq/waiter/agent/tool"
)

// finalizeTools may only run once the customer has confirmed and the
// conversation reached FINALIZED.
var finalizeTools = map[string]struct{}{
	toolx.ToolCreateOrder:   {},
	toolx.ToolSendToKitchen: {},
	toolx.ToolSaveInExcel:   {},
}

// AdmitTools filters the turn's tool requests down to the ones that are
// registered and allowed in the current dialogue state. Rejected requests
// turn into advisories; the turn itself always proceeds.
func AdmitTools(in *GraphState, gateway contractx.ToolGateway) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	admitted := make([]contractx.ToolRequest, 0, len(in.Turn.ToolRequests))
	for _, req := range in.Turn.ToolRequests {
		if !gateway.Has(req.Tool) {
			in.Advisories = append(in.Advisories, fmt.Sprintf("ignored unknown tool %q", req.Tool))
			continue
		}
		if _, gated := finalizeTools[req.Tool]; gated && in.Session.State != contractx.StateFinalized {
			in.Advisories = append(in.Advisories,
				fmt.Sprintf("tool %s requires a confirmed order", req.Tool))
			continue
		}
		admitted = append(admitted, req)
	}

	in.Turn.ToolRequests = admitted
	return in, nil
}
