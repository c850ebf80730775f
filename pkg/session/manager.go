package session

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager tracks the live sessions of a front end. Sessions are created
// explicitly, live in memory only, and are destroyed by End, ExpireIdle, or Close.
type Manager struct {
	responder  Responder
	uploadRoot string
	logger     *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a Manager. Each session gets its own upload directory
// under uploadRoot (the system temp dir when empty).
func NewManager(responder Responder, uploadRoot string, logger *zap.Logger) *Manager {
	return &Manager{
		responder:  responder,
		uploadRoot: uploadRoot,
		logger:     logger,
		sessions:   make(map[string]*Session),
	}
}

// Create starts a new session with a random ID.
func (m *Manager) Create() (*Session, error) {
	id := uuid.NewString()

	dir, err := os.MkdirTemp(m.uploadRoot, "atelier-"+id+"-")
	if err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	s := New(id, m.responder, dir, m.logger)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.logger.Info("session started", zap.String("session", id))
	return s, nil
}

// Get returns the live session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// End destroys the session with the given ID and its transcript.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	m.logger.Info("session ended",
		zap.String("session", id),
		zap.Int("turns", s.Transcript().Len()),
	)
	return s.Close()
}

// ExpireIdle ends sessions whose last activity is older than maxIdle and
// returns how many were ended. Sessions with a call outstanding are skipped.
func (m *Manager) ExpireIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.RLock()
	candidates := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		candidates = append(candidates, s)
	}
	m.mu.RUnlock()

	ended := 0
	for _, s := range candidates {
		expired, err := s.expireIfIdle(cutoff)
		if !expired {
			continue
		}

		m.mu.Lock()
		if m.sessions[s.ID] == s {
			delete(m.sessions, s.ID)
		}
		m.mu.Unlock()

		if err != nil {
			m.logger.Warn("failed to end idle session", zap.String("session", s.ID), zap.Error(err))
		}
		m.logger.Info("session expired", zap.String("session", s.ID))
		ended++
	}
	return ended
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close ends every live session.
func (m *Manager) Close() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
