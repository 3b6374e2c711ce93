// Package session provides the viewer/session lookup the plugin system
// consumes. Sessions are opaque bearer tokens with a TTL; an expired or
// unknown token resolves to the anonymous viewer (empty id). Authentication
// beyond this lookup is outside the platform core.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"launchboard/internal/clock"
)

// Anonymous is the viewer id of an unauthenticated request.
const Anonymous = ""

// Session is an issued login token.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Manager issues and resolves session tokens.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	clk      clock.Clock
	logger   *zap.Logger
}

// NewManager creates a session manager. Sessions expire after ttl.
func NewManager(ttl time.Duration, clk clock.Clock, logger *zap.Logger) *Manager {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		clk:      clk,
		logger:   logger.Named("session"),
	}
}

// Create issues a new session for a user id.
func (m *Manager) Create(userID string) (*Session, error) {
	if userID == "" {
		return nil, fmt.Errorf("session: user id is required")
	}

	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("session: failed to generate token: %w", err)
	}

	s := &Session{
		Token:     hex.EncodeToString(buf),
		UserID:    userID,
		ExpiresAt: m.clk.Now().Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()

	m.logger.Debug("Session created", zap.String("user", userID))
	return s, nil
}

// Resolve returns the viewer id for a token. Unknown and expired tokens
// resolve to Anonymous; expired sessions are evicted on the way out.
func (m *Manager) Resolve(token string) string {
	if token == "" {
		return Anonymous
	}

	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok {
		return Anonymous
	}

	if m.clk.Now().After(s.ExpiresAt) {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		m.logger.Debug("Expired session evicted", zap.String("user", s.UserID))
		return Anonymous
	}

	return s.UserID
}

// Revoke deletes a session. Revoking an unknown token is a no-op.
func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// Count returns the number of live (possibly expired, not yet evicted)
// sessions. Used by tests and the health endpoint.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
