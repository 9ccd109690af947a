package enrich

import "context"

// Completer produces a chat completion for a prompt. maxTokens <= 0
// uses the provider default.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}
