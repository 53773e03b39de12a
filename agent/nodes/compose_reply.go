package waiternode

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tavolahq/waiter/agent/contract"
	toolx "github.com/tavolahq/waiter/agent/tool"
)

// ComposeReply assembles the final customer-facing text: the model's reply,
// then renderings of the tool results, then a note for anything that was
// deferred. The assistant utterance is recorded here so the next turn's
// history already contains it.
func ComposeReply(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(in.Turn.Reply))

	for _, res := range in.ToolResults {
		if res.Failed() {
			log.Warn().Str("tool", res.Tool).Str("error", res.Error).Msg("tool call failed")
			b.WriteString("\n\n")
			b.WriteString(renderFailure(res))
			continue
		}
		if section := renderResult(res); section != "" {
			b.WriteString("\n\n")
			b.WriteString(section)
		}
	}

	for _, adv := range in.Advisories {
		log.Debug().Str("session_id", in.SessionID).Str("advisory", adv).Msg("turn advisory")
		b.WriteString(fmt.Sprintf("\n\n(Note: %s.)", adv))
	}

	in.Reply = strings.TrimSpace(b.String())
	in.Session.AppendUtterance(contractx.RoleAssistant, in.Reply)
	return in, nil
}

func renderResult(res contractx.ToolResult) string {
	switch out := res.Result.(type) {
	case toolx.FetchMenuOutput:
		if out.Message != "" {
			return out.Message
		}
		var b strings.Builder
		b.WriteString("Here is the menu:\n")
		for _, item := range out.Items {
			fmt.Fprintf(&b, "  - %s ($%.2f): %s\n", item.Name, item.Price, item.Description)
		}
		return strings.TrimRight(b.String(), "\n")

	case toolx.TotalsOutput:
		return fmt.Sprintf("Subtotal: $%.2f\nTax: $%.2f\nTotal: $%.2f",
			out.Subtotal, out.Tax, out.Total)

	case toolx.CreateOrderOutput:
		return fmt.Sprintf("Your order %s has been placed. Total: $%.2f.", out.OrderID, out.Total)

	case toolx.SendToKitchenOutput:
		return "The kitchen has been notified and is preparing your order."

	case toolx.SaveInExcelOutput:
		return ""

	default:
		return ""
	}
}

func renderFailure(res contractx.ToolResult) string {
	switch res.Tool {
	case toolx.ToolSendToKitchen:
		return "Your order is placed, but I could not reach the kitchen just now. Our staff will follow up."
	case toolx.ToolCreateOrder:
		return fmt.Sprintf("I could not place the order: %s.", res.Error)
	case toolx.ToolCalculateTotal:
		return fmt.Sprintf("I could not work out the total: %s.", res.Error)
	default:
		return "Something went wrong on our side with that last step; please bear with us."
	}
}
