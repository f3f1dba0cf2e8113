package llm

import "context"

// Request is one validation call to the model: a prompt plus the context
// documents it should search.
type Request struct {
	Prompt    string
	Documents []string
	// SchemaKeys names the validations arrays the response must carry,
	// e.g. "building_validations". Used to build the response schema.
	SchemaKeys []string
}

// TokenUsage reports the call's token accounting when the provider
// returns it.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Result is a decoded, schema-checked validation report.
type Result struct {
	Report map[string]any
	Raw    []byte
	Usage  TokenUsage
}

// Validator is the interface the pipeline depends on.
type Validator interface {
	Validate(ctx context.Context, req Request) (Result, error)
}
