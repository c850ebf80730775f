package llm

// ChatRequest represents a chat completion request (OpenAI-compatible).
type ChatRequest struct {
	Model    string    `json:"model"`    // Model identity (e.g., "gemini-1.5-flash")
	Messages []Message `json:"messages"` // Messages sent for this turn
	Stream   bool      `json:"stream"`   // Always false; replies are consumed whole

	// Generation options
	Temperature *float64 `json:"temperature,omitempty"` // Creativity (0.0-2.0)
	MaxTokens   *int     `json:"max_tokens,omitempty"`  // Max tokens to generate
}
