package server

import (
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/atelier/pkg/gateway"
	"github.com/papercomputeco/atelier/pkg/llm"
	"github.com/papercomputeco/atelier/pkg/logger"
	"github.com/papercomputeco/atelier/pkg/transcript"
)

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	ID string `json:"id"`
}

// TranscriptResponse is the full transcript of a session.
type TranscriptResponse struct {
	ID    string            `json:"id"`
	Head  string            `json:"head"`
	Turns []transcript.Turn `json:"turns"`
}

// MessageRequest is a text submission.
type MessageRequest struct {
	Prompt  string `json:"prompt"`
	Context string `json:"context,omitempty"`
}

// TurnsResponse holds the turns appended by one submission.
type TurnsResponse struct {
	Turns []transcript.Turn `json:"turns"`
}

// handleCreateSession starts a new session.
func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	sess, err := s.manager.Create()
	if err != nil {
		s.logger.Error("failed to create session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "internal error"})
	}

	return c.Status(fiber.StatusCreated).JSON(SessionResponse{ID: sess.ID})
}

// handleEndSession ends a session and discards its transcript.
func (s *Server) handleEndSession(c *fiber.Ctx) error {
	if err := s.manager.End(c.Params("id")); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleTranscript returns the ordered transcript. The head hash doubles as an
// ETag so polling clients get 304 until something is appended.
func (s *Server) handleTranscript(c *fiber.Ctx) error {
	sess, err := s.manager.Get(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}

	t := sess.Transcript()
	head := t.Head()
	etag := `"` + head + `"`

	if c.Get(fiber.HeaderIfNoneMatch) == etag {
		return c.SendStatus(fiber.StatusNotModified)
	}

	c.Set(fiber.HeaderETag, etag)
	return c.JSON(TranscriptResponse{
		ID:    sess.ID,
		Head:  head,
		Turns: t.All(),
	})
}

// handleMessage submits a text prompt and returns the turns it appended.
func (s *Server) handleMessage(c *fiber.Ctx) error {
	sess, err := s.manager.Get(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}

	var req MessageRequest
	if err := c.BodyParser(&req); err != nil {
		s.logger.Error("failed to parse request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	s.logger.Debug("received message",
		zap.String("session", sess.ID),
		zap.String("prompt_preview", logger.Truncate(req.Prompt, 50)),
		zap.Bool("has_context", req.Context != ""),
	)

	added, err := sess.Submit(c.UserContext(), req.Prompt, req.Context)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(TurnsResponse{Turns: added})
}

// handleImage stores an uploaded image, submits it with its prompt, and returns
// the turns appended.
func (s *Server) handleImage(c *fiber.Ctx) error {
	sess, err := s.manager.Get(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}

	fh, err := c.FormFile(imageField)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "image file is required"})
	}

	path, ref, err := saveUpload(c, sess, fh)
	if err != nil {
		s.logger.Error("failed to store upload", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "internal error"})
	}

	prompt := c.FormValue("prompt")
	if prompt == "" {
		prompt = gateway.DefaultImagePrompt
	}

	s.logger.Debug("received image",
		zap.String("session", sess.ID),
		zap.String("file", fh.Filename),
		zap.Int64("size", fh.Size),
	)

	added, err := sess.SubmitImage(c.UserContext(), path, ref, prompt)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(TurnsResponse{Turns: added})
}

// handleUpload serves an image previously uploaded to the session.
func (s *Server) handleUpload(c *fiber.Ctx) error {
	sess, err := s.manager.Get(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}

	name := c.Params("name")
	if !validUploadName(name) {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid file name"})
	}

	path := filepath.Join(sess.UploadDir(), name)
	if _, err := os.Stat(path); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "upload not found"})
	}

	return c.SendFile(path)
}
