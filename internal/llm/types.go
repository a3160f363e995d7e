package llm

import "context"

// Enhancer rewrites a user prompt into a more detailed one.
type Enhancer interface {
	Enhance(ctx context.Context, prompt string) (string, error)
}

// Generator produces the final answer for a prompt. A generation that
// completes without usable content is reported through Response.Blocked,
// not as an error.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Response, error)
}

type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

type Response struct {
	Text string

	// Blocked is set when the model returned no content, usually because of
	// safety filtering. BlockReason carries the provider's reason when known.
	Blocked     bool
	BlockReason string

	Usage Usage
}
