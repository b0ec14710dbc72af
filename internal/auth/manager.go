// Package auth owns the tab-lifetime authentication state: the current
// user derived from the saved session, login/logout, and the
// client-side role gate.
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"newskoo/internal/api"
	"newskoo/internal/models"
	"newskoo/internal/store"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// Manager holds the current user and keeps it in sync with the
// persisted session. Safe for concurrent use.
type Manager struct {
	api      *api.Client
	sessions api.SessionStore
	log      zerolog.Logger

	mu       sync.RWMutex
	user     *models.User
	onChange []func(*models.User)
}

func NewManager(client *api.Client, sessions api.SessionStore, log zerolog.Logger) *Manager {
	return &Manager{
		api:      client,
		sessions: sessions,
		log:      log,
	}
}

// OnChange registers a callback fired whenever the current user
// changes, including on logout (nil user). Register before the first
// Login/Bootstrap call; registration is not synchronized with delivery.
func (m *Manager) OnChange(fn func(*models.User)) {
	m.mu.Lock()
	m.onChange = append(m.onChange, fn)
	m.mu.Unlock()
}

func (m *Manager) setUser(u *models.User) {
	m.mu.Lock()
	m.user = u
	callbacks := make([]func(*models.User), len(m.onChange))
	copy(callbacks, m.onChange)
	m.mu.Unlock()
	for _, fn := range callbacks {
		fn(u)
	}
}

// User returns the current user, or nil when logged out.
func (m *Manager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

func (m *Manager) IsAuthenticated() bool { return m.User() != nil }

// Require is the client-side role gate. The backend is still the
// authority; this only decides what the UI renders.
func (m *Manager) Require(role models.Role) bool {
	u := m.User()
	return u != nil && u.Role.AtLeast(role)
}

// Login exchanges credentials for a session, persists it and loads the
// user. On failure nothing is written.
func (m *Manager) Login(ctx context.Context, username, password string) (*models.User, error) {
	resp, err := m.api.Login(ctx, api.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	if err := m.sessions.SaveSession(store.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}); err != nil {
		return nil, err
	}
	m.log.Info().Str("username", username).Msg("logged in")
	m.setUser(resp.User)
	return resp.User, nil
}

// Logout invalidates the session server-side best-effort and always
// clears the local session and user.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.api.Logout(ctx); err != nil {
		m.log.Warn().Err(err).Msg("server-side logout failed")
	}
	if err := m.sessions.ClearSession(); err != nil {
		m.log.Error().Err(err).Msg("clearing session")
	}
	m.setUser(nil)
}

// Bootstrap recomputes the current user from the saved session, the
// "who am I" call. A missing session leaves the manager logged out; a
// failing call clears the stale session.
func (m *Manager) Bootstrap(ctx context.Context) error {
	if _, err := m.sessions.Session(); err != nil {
		if errors.Is(err, store.ErrNoSession) {
			m.setUser(nil)
			return nil
		}
		return err
	}
	user, err := m.api.Me(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("session bootstrap failed, clearing tokens")
		if clearErr := m.sessions.ClearSession(); clearErr != nil {
			m.log.Error().Err(clearErr).Msg("clearing session")
		}
		m.setUser(nil)
		return err
	}
	m.setUser(user)
	return nil
}

// SessionExpired is wired to the API client's forced-logout callback:
// the session is already cleared, only the in-memory user remains.
func (m *Manager) SessionExpired() {
	m.setUser(nil)
}

// AccessToken returns the current access token for callers that
// authenticate out of band (the realtime transport).
func (m *Manager) AccessToken() (string, error) {
	sess, err := m.sessions.Session()
	if err != nil {
		return "", err
	}
	return sess.AccessToken, nil
}
