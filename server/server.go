// Package server provides atelier's browser front end: an HTML chat page bound to a
// per-browser session, and a JSON API over the same sessions.
package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/atelier/pkg/mcptools"
	"github.com/papercomputeco/atelier/pkg/render"
	"github.com/papercomputeco/atelier/pkg/session"
)

// Server is the chat front end. It holds no conversation state of its own: every
// transcript lives in a session.Session owned by the Manager.
type Server struct {
	config   Config
	manager  *session.Manager
	renderer *render.Renderer
	logger   *zap.Logger
	server   *fiber.App

	stop      chan struct{}
	closeOnce sync.Once
}

// New creates a Server whose sessions call responder.
func New(config Config, responder session.Responder, logger *zap.Logger) (*Server, error) {
	if config.ListenAddr == "" {
		config.ListenAddr = DefaultListenAddr
	}
	if config.UploadLimit <= 0 {
		config.UploadLimit = DefaultUploadLimit
	}

	manager := session.NewManager(responder, config.UploadRoot, logger)

	mcpServer := mcptools.NewServer(responder, logger)
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return mcpServer
	}, nil)

	return newServer(config, manager, mcpHandler, logger), nil
}

func newServer(config Config, manager *session.Manager, mcpHandler http.Handler, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		BodyLimit:             config.UploadLimit,
	})

	s := &Server{
		config:   config,
		manager:  manager,
		renderer: render.New(),
		logger:   logger,
		server:   app,
		stop:     make(chan struct{}),
	}

	// Browser page
	app.Get("/", s.handlePage)
	app.Post("/chat", s.handlePageChat)
	app.Post("/chat/image", s.handlePageImage)

	// JSON API
	api := app.Group("/api/sessions")
	api.Post("/", s.handleCreateSession)
	api.Delete("/:id", s.handleEndSession)
	api.Get("/:id/transcript", s.handleTranscript)
	api.Post("/:id/messages", s.handleMessage)
	api.Post("/:id/images", s.handleImage)
	api.Get("/:id/uploads/:name", s.handleUpload)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	// MCP tools over streamable HTTP
	if mcpHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(mcpHandler))
	}

	return s
}

// Run starts the server on the configured listening address
func (s *Server) Run() error {
	s.logger.Info("starting atelier server",
		zap.String("listen", s.config.ListenAddr),
		zap.Int("upload_limit", s.config.UploadLimit),
		zap.Duration("session_idle", s.config.SessionIdle),
	)

	if s.config.SessionIdle > 0 {
		go s.reapIdle()
	}

	return s.server.Listen(s.config.ListenAddr)
}

// Close shuts down the server and ends every session.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		shutdownErr := s.server.ShutdownWithTimeout(10 * time.Second)
		err = errors.Join(shutdownErr, s.manager.Close())
	})
	return err
}

func (s *Server) reapIdle() {
	interval := s.config.SessionIdle / 4
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.manager.ExpireIdle(s.config.SessionIdle); n > 0 {
				s.logger.Info("ended idle sessions", zap.Int("count", n))
			}
		}
	}
}
