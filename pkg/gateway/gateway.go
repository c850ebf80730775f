// Package gateway turns a user turn into exactly one chat-completion call against
// the configured provider and returns the reply as a Result.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/atelier/pkg/llm"
	"github.com/papercomputeco/atelier/pkg/logger"
)

var (
	// ErrEmptyPrompt is returned when Respond is called without a prompt.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrImageUnreadable wraps the I/O error when the image for RespondToImage
	// cannot be read.
	ErrImageUnreadable = errors.New("image could not be read")
)

// Completer sends one non-streamed chat-completion request.
type Completer interface {
	Complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)
}

// Result is the outcome of one gateway call.
type Result struct {
	// Text is the model's full reply, nil when the provider returned none.
	Text *string

	// Image is reserved for generated images. No code path sets it.
	Image *string
}

// HasText reports whether the result carries non-empty reply text.
func (r Result) HasText() bool {
	return r.Text != nil && *r.Text != ""
}

// Gateway issues calls to a single provider using a text and a vision profile.
// It does not retry, back off, or apply its own timeout: each call is a single
// best-effort round trip and errors are returned unchanged to the caller.
type Gateway struct {
	completer Completer
	logger    *zap.Logger

	mu       sync.RWMutex
	profiles Profiles
}

// New creates a Gateway.
func New(completer Completer, profiles Profiles, logger *zap.Logger) *Gateway {
	return &Gateway{
		completer: completer,
		profiles:  profiles,
		logger:    logger,
	}
}

// Profiles returns the active profiles.
func (g *Gateway) Profiles() Profiles {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.profiles
}

// SetProfiles swaps the active profiles. Calls already in flight keep the
// profile they started with.
func (g *Gateway) SetProfiles(p Profiles) {
	g.mu.Lock()
	g.profiles = p
	g.mu.Unlock()

	g.logger.Info("model profiles updated",
		zap.String("text_model", p.Text.Model),
		zap.String("vision_model", p.Vision.Model),
	)
}

// CombinePrompt prepends context to prompt, separated by a blank line and a
// "User Question:" label. With no context the prompt is returned unchanged.
func CombinePrompt(prompt, priorContext string) string {
	if priorContext == "" {
		return prompt
	}
	return priorContext + "\n\nUser Question: " + prompt
}

// Respond sends prompt, with optional prior context, to the text profile.
func (g *Gateway) Respond(ctx context.Context, prompt, priorContext string) (Result, error) {
	if prompt == "" {
		return Result{}, ErrEmptyPrompt
	}

	profile := g.Profiles().Text
	req := newRequest(profile, llm.Message{
		Role:    llm.RoleUser,
		Content: CombinePrompt(prompt, priorContext),
	})

	return g.complete(ctx, req)
}

// RespondToImage reads the image at imagePath, embeds it as a data URI next to
// prompt in a single user message, and sends it to the vision profile.
func (g *Gateway) RespondToImage(ctx context.Context, imagePath, prompt string) (Result, error) {
	mimeType := DetectMIMEType(imagePath)

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrImageUnreadable, err)
	}

	g.logger.Debug("encoded image for vision request",
		zap.String("path", imagePath),
		zap.String("mime_type", mimeType),
		zap.Int("bytes", len(data)),
	)

	profile := g.Profiles().Vision
	req := newRequest(profile, llm.Message{
		Role: llm.RoleUser,
		Parts: []llm.ContentPart{
			llm.TextPart(prompt),
			llm.ImagePart(DataURI(mimeType, data)),
		},
	})

	return g.complete(ctx, req)
}

func (g *Gateway) complete(ctx context.Context, req *llm.ChatRequest) (Result, error) {
	startTime := time.Now()

	resp, err := g.completer.Complete(ctx, req)
	if err != nil {
		return Result{}, err
	}

	text := resp.Text()
	g.logger.Debug("model replied",
		zap.String("model", req.Model),
		zap.String("content_preview", logger.Truncate(text, 100)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return Result{Text: &text}, nil
}

func newRequest(profile Profile, user llm.Message) *llm.ChatRequest {
	messages := make([]llm.Message, 0, 2)
	if profile.Instructions != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: profile.Instructions})
	}
	messages = append(messages, user)

	return &llm.ChatRequest{
		Model:       profile.Model,
		Messages:    messages,
		Temperature: profile.Temperature,
		MaxTokens:   profile.MaxTokens,
	}
}
