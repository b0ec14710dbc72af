package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Session is the persisted credential pair. The refresh token may be
// empty when the backend issued none.
type Session struct {
	AccessToken  string
	RefreshToken string
}

// Session returns the saved session, or ErrNoSession when logged out.
func (s *Store) Session() (*Session, error) {
	row := s.db.QueryRow(`SELECT access_token, refresh_token FROM session WHERE id = 1`)
	var sess Session
	if err := row.Scan(&sess.AccessToken, &sess.RefreshToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &sess, nil
}

// SaveSession overwrites the saved session with a fresh token pair.
func (s *Store) SaveSession(sess Session) error {
	const q = `
INSERT INTO session (id, access_token, refresh_token) VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	access_token = excluded.access_token,
	refresh_token = excluded.refresh_token;
`
	if _, err := s.db.Exec(q, sess.AccessToken, sess.RefreshToken); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// UpdateAccessToken replaces only the access token, keeping the refresh
// token. Used after a successful token refresh.
func (s *Store) UpdateAccessToken(accessToken string) error {
	res, err := s.db.Exec(`UPDATE session SET access_token = ? WHERE id = 1`, accessToken)
	if err != nil {
		return fmt.Errorf("update access token: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoSession
	}
	return nil
}

// ClearSession removes both tokens. Safe to call when already logged out.
func (s *Store) ClearSession() error {
	if _, err := s.db.Exec(`DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// ClientSessionID returns the anonymous session identifier used to
// correlate activity tracking, minting and persisting a UUID v4 on
// first use.
func (s *Store) ClientSessionID() (string, error) {
	row := s.db.QueryRow(`SELECT session_id FROM client WHERE id = 1`)
	var id string
	err := row.Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("load client id: %w", err)
	}
	id = uuid.NewString()
	if _, err := s.db.Exec(`INSERT INTO client (id, session_id) VALUES (1, ?)`, id); err != nil {
		return "", fmt.Errorf("save client id: %w", err)
	}
	return id, nil
}
