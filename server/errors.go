package server

import (
	"errors"
	"io/fs"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/atelier/pkg/gateway"
	"github.com/papercomputeco/atelier/pkg/llm"
	"github.com/papercomputeco/atelier/pkg/provider/openai"
	"github.com/papercomputeco/atelier/pkg/session"
	"github.com/papercomputeco/atelier/pkg/transcript"
)

// classify maps an error from a session call to an HTTP status and a message
// safe to show to the user.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, gateway.ErrEmptyPrompt):
		return fiber.StatusBadRequest, "prompt is required"
	case errors.Is(err, transcript.ErrInvalidTurn):
		return fiber.StatusBadRequest, "invalid turn"
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrClosed):
		return fiber.StatusNotFound, "session not found"
	case errors.Is(err, session.ErrBusy):
		return fiber.StatusConflict, "a request is already in progress"
	case errors.Is(err, openai.ErrNotConfigured):
		return fiber.StatusServiceUnavailable, "model provider is not configured"
	case errors.Is(err, gateway.ErrImageUnreadable):
		return fiber.StatusUnprocessableEntity, "image could not be read"
	}

	// Local file system failures are ours, not the provider's
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return fiber.StatusInternalServerError, "internal error"
	}

	return fiber.StatusBadGateway, "model provider request failed"
}

// fail logs err and writes the classified JSON error response.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status, msg := classify(err)
	s.logger.Error("request failed",
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Error(err),
	)
	return c.Status(status).JSON(llm.ErrorResponse{Error: msg})
}
