package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/waiter.txt
	waiterRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Waiter string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// This is safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Waiter: strings.TrimSpace(waiterRaw),
	}
}
