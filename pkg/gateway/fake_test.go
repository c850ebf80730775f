package gateway_test

import (
	"context"

	"github.com/papercomputeco/atelier/pkg/llm"
)

// fakeCompleter records requests and replies with a fixed text or error.
type fakeCompleter struct {
	reply    string
	err      error
	requests []*llm.ChatRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{
		Model: req.Model,
		Choices: []llm.Choice{
			{Message: llm.Message{Role: llm.RoleAssistant, Content: f.reply}},
		},
	}, nil
}

// lastUser returns the final (user) message of the most recent request.
func (f *fakeCompleter) lastUser() llm.Message {
	req := f.requests[len(f.requests)-1]
	return req.Messages[len(req.Messages)-1]
}
