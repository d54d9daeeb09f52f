package llm

import "context"

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest carries the messages plus optional per-call overrides.
// Zero MaxTokens and nil Temperature keep the client defaults.
type CompletionRequest struct {
	Purpose     string // for logs: "analyze" | "date"
	Messages    []Message
	MaxTokens   int
	Temperature *float64
}

// Completer is the remote completion capability the extractors depend on.
// Implementations return an error wrapping common.ErrNotConfigured when no
// usable credential exists, without touching the network.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
