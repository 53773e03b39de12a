package contract

import "context"

// TurnEngine is the boundary to the external completion engine: one
// structured turn out per customer message in. Implementations must
// validate the engine's output shape before returning it.
type TurnEngine interface {
	NextTurn(ctx context.Context, req TurnRequest) (AgentTurn, error)
}

// ToolGateway executes named, schema-validated tool calls. Execute never
// returns a Go error for a domain rejection; those come back as a
// ToolResult with Error set so the conversation can continue.
type ToolGateway interface {
	Names() []string
	Has(tool string) bool
	Execute(ctx context.Context, req ToolRequest) ToolResult
}
