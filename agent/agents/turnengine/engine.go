package turnengine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	contractx "github.com/tavolahq/waiter/agent/contract"
)

// Engine turns one customer message into a structured waiter turn by
// invoking the chat model through a compiled graph and validating the
// parsed output before it reaches the conversation loop.
type Engine struct {
	runner compose.Runnable[map[string]any, turnLLMOutput]
}

// turnLLMOutput mirrors the JSON object the model is instructed to emit.
type turnLLMOutput struct {
	Response           string                `json:"response"`
	State              string                `json:"state"`
	Order              contractx.OrderDraft  `json:"order"`
	ToolCalls          []toolCallOutput      `json:"tool_calls,omitempty"`
	ConfirmationNeeded bool                  `json:"confirmation_needed"`
}

type toolCallOutput struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

func New(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*Engine, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: system prompt is required", contractx.ErrValidation)
	}

	runner, err := compileTurnGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile turn graph: %v", contractx.ErrModelInvoke, err)
	}
	return &Engine{runner: runner}, nil
}

func (e *Engine) NextTurn(ctx context.Context, req contractx.TurnRequest) (contractx.AgentTurn, error) {
	payload := map[string]any{
		"customer_message":     req.CustomerMessage,
		"chat_history":         renderHistory(req.History),
		"dialogue_state":       string(req.State),
		"order_draft":          req.Draft,
		"confirmation_pending": req.ConfirmationPending,
		"available_tools":      req.ToolNames,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return contractx.AgentTurn{}, fmt.Errorf("%w: marshal turn payload: %v", contractx.ErrValidation, err)
	}

	out, err := e.runner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return contractx.AgentTurn{}, fmt.Errorf("%w: turn invoke: %v", contractx.ErrModelInvoke, err)
	}

	return toAgentTurn(out)
}

// renderHistory flattens utterances into the line-per-turn transcript the
// prompt describes.
func renderHistory(history []contractx.Utterance) string {
	if len(history) == 0 {
		return "(no prior conversation)"
	}
	lines := make([]string, 0, len(history))
	for _, u := range history {
		speaker := "Customer"
		if u.Role == contractx.RoleAssistant {
			speaker = "Waiter"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, u.Text))
	}
	return strings.Join(lines, "\n")
}

// toAgentTurn validates the raw model output against the turn contract.
func toAgentTurn(out turnLLMOutput) (contractx.AgentTurn, error) {
	reply := strings.TrimSpace(out.Response)
	if reply == "" {
		return contractx.AgentTurn{}, fmt.Errorf("%w: turn response is empty", contractx.ErrSchemaViolation)
	}

	state := contractx.DialogueState(strings.ToUpper(strings.TrimSpace(out.State)))
	if !state.Valid() {
		return contractx.AgentTurn{}, fmt.Errorf("%w: unknown dialogue state %q", contractx.ErrSchemaViolation, out.State)
	}

	requests := make([]contractx.ToolRequest, 0, len(out.ToolCalls))
	for _, call := range out.ToolCalls {
		tool := strings.TrimSpace(call.Tool)
		if tool == "" {
			return contractx.AgentTurn{}, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}
		args := call.Args
		if args == nil {
			args = map[string]any{}
		}
		requests = append(requests, contractx.ToolRequest{Tool: tool, Args: args})
	}

	order := out.Order
	for i := range order.Items {
		order.Items[i].ItemID = strings.TrimSpace(order.Items[i].ItemID)
		if order.Items[i].Quantity <= 0 {
			order.Items[i].Quantity = 1
		}
	}

	return contractx.AgentTurn{
		Reply:              reply,
		State:              state,
		Order:              order,
		ToolRequests:       requests,
		ConfirmationNeeded: out.ConfirmationNeeded,
	}, nil
}
