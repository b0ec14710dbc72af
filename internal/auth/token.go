package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"newskoo/internal/store"
)

// TokenExpiry reads the exp claim of an access token without verifying
// the signature; verification is the backend's job. Returns false for
// tokens that are not JWTs or carry no expiry.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// EnsureFresh refreshes the access token proactively when it expires
// within leeway. Opaque (non-JWT) tokens are left alone; the reactive
// 401 path covers them.
func (m *Manager) EnsureFresh(ctx context.Context, leeway time.Duration) error {
	sess, err := m.sessions.Session()
	if err != nil {
		if errors.Is(err, store.ErrNoSession) {
			return nil
		}
		return err
	}
	if sess.RefreshToken == "" {
		return nil
	}
	exp, ok := TokenExpiry(sess.AccessToken)
	if !ok || time.Until(exp) > leeway {
		return nil
	}
	m.log.Debug().Time("expires", exp).Msg("access token near expiry, refreshing")
	return m.api.RefreshToken(ctx)
}
