package ai

import "context"

// Request is a single completion request.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
	SchemaName  string
	Schema      map[string]any // JSON Schema the response must follow
}

// Completion is the raw text reply plus the tokens it consumed.
type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Provider sends a prompt to an LLM. Used only by Scorer.
type Provider interface {
	Complete(ctx context.Context, req Request) (Completion, error)
}
