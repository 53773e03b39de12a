package waiternode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tavolahq/waiter/agent/contract"
	toolx "github.com/tavolahq/waiter/agent/tool"
)

// ExecuteTools runs the admitted tool requests in order. Arguments the
// model left out are filled from the conversation: customer details and
// items come from the draft, and the order id minted by create_order is
// injected into the follow-up kitchen and workbook calls.
func ExecuteTools(ctx context.Context, in *GraphState, gateway contractx.ToolGateway) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	orderID := ""
	done := make(map[string]bool, 3)
	for _, req := range in.Turn.ToolRequests {
		if req.Args == nil {
			req.Args = map[string]any{}
		}

		switch req.Tool {
		case toolx.ToolCreateOrder:
			fillCreateOrderArgs(req.Args, in.Session.Draft)
		case toolx.ToolSendToKitchen:
			injectOrderID(req.Args, orderID)
		case toolx.ToolSaveInExcel:
			injectOrderID(req.Args, orderID)
			fillSaveInExcelArgs(req.Args, in.Session.Draft)
		}

		// a finalize tool runs once per turn; repeats answer for the same order
		if done[req.Tool] {
			in.ToolResults = append(in.ToolResults, repeatResult(req, orderID))
			continue
		}

		res := gateway.Execute(ctx, req)
		in.ToolResults = append(in.ToolResults, res)

		if _, finalize := finalizeTools[req.Tool]; !finalize || res.Failed() {
			continue
		}
		done[req.Tool] = true
		if req.Tool == toolx.ToolCreateOrder {
			if out, ok := res.Result.(toolx.CreateOrderOutput); ok && out.OrderID != "" {
				orderID = out.OrderID
				in.Session.LastOrderID = out.OrderID
			}
		}
	}
	return in, nil
}

// repeatResult is the no-op outcome for a finalize tool the model requested
// more than once in a single turn.
func repeatResult(req contractx.ToolRequest, orderID string) contractx.ToolResult {
	if orderID == "" {
		if s, ok := req.Args["order_id"].(string); ok {
			orderID = strings.TrimSpace(s)
		}
	}
	res := contractx.ToolResult{Tool: req.Tool}
	switch req.Tool {
	case toolx.ToolCreateOrder:
		res.Result = toolx.CreateOrderOutput{
			Success: true,
			OrderID: orderID,
			Message: fmt.Sprintf("Order %s is already placed", orderID),
		}
	case toolx.ToolSendToKitchen:
		res.Result = toolx.SendToKitchenOutput{
			Success: true,
			Message: fmt.Sprintf("Order %s has already been sent to the kitchen", orderID),
		}
	case toolx.ToolSaveInExcel:
		res.Result = toolx.SaveInExcelOutput{
			Success: true,
			Message: fmt.Sprintf("Order %s is already recorded", orderID),
		}
	}
	return res
}

func fillCreateOrderArgs(args map[string]any, draft contractx.OrderDraft) {
	setIfBlank(args, "customer_name", draft.Name)
	setIfBlank(args, "location", draft.Location)
	setIfBlank(args, "phone", draft.Phone)
	if blankList(args["items"]) {
		args["items"] = draft.ItemIDs()
	}
}

func fillSaveInExcelArgs(args map[string]any, draft contractx.OrderDraft) {
	setIfBlank(args, "customer_name", draft.Name)
	setIfBlank(args, "customer_phone_number", draft.Phone)
	setIfBlank(args, "customer_location", draft.Location)
	if blankList(args["items"]) {
		args["items"] = draft.ItemIDs()
	}
}

// injectOrderID overrides whatever the model guessed with the id the
// ledger actually minted this turn. An id from an earlier finalization is
// left alone so a lone send retry still works.
func injectOrderID(args map[string]any, orderID string) {
	if orderID != "" {
		args["order_id"] = orderID
	}
}

func setIfBlank(args map[string]any, key, value string) {
	if value == "" {
		return
	}
	if s, ok := args[key].(string); !ok || strings.TrimSpace(s) == "" {
		args[key] = value
	}
}

func blankList(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}
