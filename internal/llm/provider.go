package llm

import "context"

// Request contains the chat message a provider should resolve into a tool
// invocation.
type Request struct {
	Message string
}

// ToolCall is a structured tool invocation proposed by a provider.
type ToolCall struct {
	Name string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// Response contains a provider's resolution: either a tool call, or plain
// reply text when no tool applies.
type Response struct {
	ToolCall  *ToolCall
	Reply     string
	Model     string
	LatencyMs int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// ResolveTool asks the model to map a chat message onto the tool catalog
	ResolveTool(ctx context.Context, req Request, model string) (*Response, error)
}
