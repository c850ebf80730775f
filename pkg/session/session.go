// Package session binds one transcript to the model gateway for the lifetime of an
// interactive chat, and tracks the live sessions of a running front end.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/atelier/pkg/gateway"
	"github.com/papercomputeco/atelier/pkg/logger"
	"github.com/papercomputeco/atelier/pkg/transcript"
)

var (
	// ErrNotFound is returned for unknown or ended session IDs.
	ErrNotFound = errors.New("session not found")

	// ErrBusy is returned when a session already has a gateway call outstanding.
	ErrBusy = errors.New("session is busy with another request")

	// ErrClosed is returned when submitting to a session that has ended.
	ErrClosed = errors.New("session has ended")
)

// Responder is the subset of the gateway a session calls.
type Responder interface {
	Respond(ctx context.Context, prompt, priorContext string) (gateway.Result, error)
	RespondToImage(ctx context.Context, imagePath, prompt string) (gateway.Result, error)
}

// Session owns one transcript. It allows a single outstanding gateway call at a
// time and appends the assistant's reply only after that call succeeds.
type Session struct {
	ID        string
	CreatedAt time.Time

	transcript *transcript.Transcript
	responder  Responder
	uploadDir  string
	logger     *zap.Logger

	busy       sync.Mutex
	closed     atomic.Bool
	lastActive atomic.Int64 // unix nanos
}

// New creates a session with an empty transcript. uploadDir, when non-empty,
// is removed by Close.
func New(id string, responder Responder, uploadDir string, logger *zap.Logger) *Session {
	now := time.Now()
	s := &Session{
		ID:         id,
		CreatedAt:  now,
		transcript: transcript.New(),
		responder:  responder,
		uploadDir:  uploadDir,
		logger:     logger.With(zap.String("session", id)),
	}
	s.lastActive.Store(now.UnixNano())
	return s
}

// Transcript returns the session's transcript for rendering.
func (s *Session) Transcript() *transcript.Transcript {
	return s.transcript
}

// UploadDir returns the directory holding this session's uploaded images.
func (s *Session) UploadDir() string {
	return s.uploadDir
}

// LastActive returns when the last submission started or finished, or the
// creation time.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// Submit appends the user's text turn, asks the gateway, and appends the reply.
// It returns the turns it appended. On a gateway error only the user turn stays.
func (s *Session) Submit(ctx context.Context, prompt, priorContext string) ([]transcript.Turn, error) {
	if prompt == "" {
		return nil, gateway.ErrEmptyPrompt
	}

	release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	start := s.transcript.Len()
	if _, err := s.transcript.Append(transcript.UserText(prompt)); err != nil {
		return nil, err
	}

	s.logger.Debug("submitting prompt", zap.String("prompt_preview", logger.Truncate(prompt, 50)))

	result, err := s.responder.Respond(ctx, prompt, priorContext)
	if err != nil {
		return s.transcript.Since(start), err
	}

	if err := s.appendResult(result); err != nil {
		return s.transcript.Since(start), err
	}
	return s.transcript.Since(start), nil
}

// SubmitImage appends a user image turn showing reference, then the prompt as a
// user text turn when non-empty, asks the gateway about the image at imagePath,
// and appends the reply.
func (s *Session) SubmitImage(ctx context.Context, imagePath, reference, prompt string) ([]transcript.Turn, error) {
	release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	start := s.transcript.Len()
	if _, err := s.transcript.Append(transcript.UserImage(reference)); err != nil {
		return nil, err
	}
	if prompt != "" {
		if _, err := s.transcript.Append(transcript.UserText(prompt)); err != nil {
			return s.transcript.Since(start), err
		}
	}

	s.logger.Debug("submitting image",
		zap.String("path", imagePath),
		zap.String("prompt_preview", logger.Truncate(prompt, 50)),
	)

	result, err := s.responder.RespondToImage(ctx, imagePath, prompt)
	if err != nil {
		return s.transcript.Since(start), err
	}

	if err := s.appendResult(result); err != nil {
		return s.transcript.Since(start), err
	}
	return s.transcript.Since(start), nil
}

// Close ends the session and removes its upload directory.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	if s.uploadDir == "" {
		return nil
	}
	if err := os.RemoveAll(s.uploadDir); err != nil {
		return fmt.Errorf("remove upload dir: %w", err)
	}
	return nil
}

func (s *Session) acquire() (func(), error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if !s.busy.TryLock() {
		return nil, ErrBusy
	}
	// Expiry closes under the same lock
	if s.closed.Load() {
		s.busy.Unlock()
		return nil, ErrClosed
	}
	s.lastActive.Store(time.Now().UnixNano())
	return func() {
		s.lastActive.Store(time.Now().UnixNano())
		s.busy.Unlock()
	}, nil
}

// expireIfIdle closes the session when no call is outstanding and it has been
// inactive since before cutoff. Holding the call lock while closing makes any
// later submission fail with ErrClosed.
func (s *Session) expireIfIdle(cutoff time.Time) (bool, error) {
	if !s.busy.TryLock() {
		return false, nil
	}
	defer s.busy.Unlock()

	if s.closed.Load() || !s.LastActive().Before(cutoff) {
		return false, nil
	}
	return true, s.Close()
}

// appendResult stores the reply text, when non-empty, and then the image, when
// present.
func (s *Session) appendResult(result gateway.Result) error {
	if result.HasText() {
		if _, err := s.transcript.Append(transcript.AssistantText(*result.Text)); err != nil {
			return err
		}
	}
	if result.Image != nil {
		if _, err := s.transcript.Append(transcript.AssistantImage(*result.Image)); err != nil {
			return err
		}
	}
	return nil
}
