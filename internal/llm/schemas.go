// Package llm provides the completion backend: providers, a fallback
// router, and token accounting.
package llm

// Complexity is a hint the caller gives the router about how much
// model capability a request needs. It drives model selection and
// per-complexity provider routing.
type Complexity string

const (
	// ComplexitySimple is for classification-style calls.
	ComplexitySimple Complexity = "simple"
	// ComplexityMedium is the default for task execution.
	ComplexityMedium Complexity = "medium"
	// ComplexityComplex is for planning and synthesis.
	ComplexityComplex Complexity = "complex"
)

// Message is one turn in a completion request.
type Message struct {
	// Role is "system", "user", or "assistant".
	Role string `json:"role"`
	// Content is the message text.
	Content string `json:"content"`
}

// Request is a provider-agnostic completion request.
type Request struct {
	// Messages is the ordered conversation. System messages are
	// concatenated into the provider's system prompt.
	Messages []Message `json:"messages"`
	// MaxTokens caps the response length. Zero means provider default.
	MaxTokens int64 `json:"max_tokens,omitempty"`
	// Temperature overrides the sampling temperature when non-nil.
	Temperature *float64 `json:"temperature,omitempty"`
}

// Usage reports token consumption for one completion.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// TotalTokens returns input plus output tokens.
func (u Usage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

// Response is a provider-agnostic completion response.
type Response struct {
	// Content is the assistant's text output.
	Content string `json:"content"`
	// Model is the concrete model that served the request.
	Model string `json:"model"`
	// Provider is the name of the provider that served the request.
	Provider string `json:"provider"`
	// Usage reports token consumption.
	Usage Usage `json:"usage"`
}

// Chunk is one element of a streamed completion. The stream ends with
// exactly one chunk whose Done flag is set; its Usage field carries
// the final token counts when the provider reports them.
type Chunk struct {
	// Delta is the incremental text for this chunk.
	Delta string `json:"delta"`
	// Done marks the final chunk of the stream.
	Done bool `json:"done"`
	// Usage is populated on the final chunk when available.
	Usage Usage `json:"usage,omitempty"`
}
