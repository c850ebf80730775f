// Package llm provides the OpenAI-compatible chat-completions wire types exchanged
// with the upstream model provider and the error bodies returned to clients.
package llm

// ErrorResponse represents an error returned to atelier clients.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProviderError is the error envelope returned by OpenAI-compatible providers
// on non-2xx responses.
type ProviderError struct {
	Error struct {
		Message string `json:"message"`
		Code    any    `json:"code,omitempty"` // string or number depending on provider
		Type    string `json:"type,omitempty"`
	} `json:"error"`
}
