package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"newskoo/internal/api"
	"newskoo/internal/auth"
	"newskoo/internal/models"
	"newskoo/internal/store"
)

type memStore struct {
	mu   sync.Mutex
	sess *store.Session
}

func (m *memStore) Session() (*store.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return nil, store.ErrNoSession
	}
	cp := *m.sess
	return &cp, nil
}

func (m *memStore) SaveSession(sess store.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = &sess
	return nil
}

func (m *memStore) UpdateAccessToken(accessToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return store.ErrNoSession
	}
	m.sess.AccessToken = accessToken
	return nil
}

func (m *memStore) ClearSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}

func newManager(t *testing.T, srv *httptest.Server, sessions api.SessionStore) *auth.Manager {
	t.Helper()
	client, err := api.New(srv.URL, sessions, zerolog.Nop())
	require.NoError(t, err)
	return auth.NewManager(client, sessions, zerolog.Nop())
}

func loginServer(t *testing.T, role models.Role) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds["password"] != "hunter2-long" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(models.AuthResponse{
			AccessToken:  "tok-1",
			RefreshToken: "ref-1",
			User:         &models.User{ID: 1, Username: creds["username"], Role: role},
		})
	})
	return httptest.NewServer(mux)
}

func TestManager_LoginPersistsSessionAndUser(t *testing.T) {
	srv := loginServer(t, models.RoleUser)
	defer srv.Close()

	sessions := &memStore{}
	m := newManager(t, srv, sessions)

	var notified atomic.Pointer[models.User]
	m.OnChange(func(u *models.User) { notified.Store(u) })

	user, err := m.Login(context.Background(), "amira", "hunter2-long")
	require.NoError(t, err)
	require.Equal(t, "amira", user.Username)
	require.True(t, m.IsAuthenticated())

	sess, err := sessions.Session()
	require.NoError(t, err)
	require.Equal(t, "tok-1", sess.AccessToken)
	require.Equal(t, "ref-1", sess.RefreshToken)

	require.NotNil(t, notified.Load())
	require.Equal(t, "amira", notified.Load().Username)
}

func TestManager_LoginFailureWritesNothing(t *testing.T) {
	srv := loginServer(t, models.RoleUser)
	defer srv.Close()

	sessions := &memStore{}
	m := newManager(t, srv, sessions)

	_, err := m.Login(context.Background(), "amira", "wrong-password")
	require.Error(t, err)
	require.True(t, api.IsUnauthorized(err))
	require.False(t, m.IsAuthenticated())

	_, err = sessions.Session()
	require.ErrorIs(t, err, store.ErrNoSession)
}

func TestManager_RequireFollowsRoleOrder(t *testing.T) {
	tests := []struct {
		role       models.Role
		wantUser   bool
		wantEditor bool
		wantAdmin  bool
	}{
		{models.RoleUser, true, false, false},
		{models.RoleEditor, true, true, false},
		{models.RoleAdmin, true, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			srv := loginServer(t, tt.role)
			defer srv.Close()

			m := newManager(t, srv, &memStore{})
			_, err := m.Login(context.Background(), "amira", "hunter2-long")
			require.NoError(t, err)

			require.Equal(t, tt.wantUser, m.Require(models.RoleUser))
			require.Equal(t, tt.wantEditor, m.Require(models.RoleEditor))
			require.Equal(t, tt.wantAdmin, m.Require(models.RoleAdmin))
		})
	}
}

func TestManager_RequireWhenLoggedOut(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	m := newManager(t, srv, &memStore{})
	require.False(t, m.Require(models.RoleUser))
	require.False(t, m.Require(models.RoleAdmin))
}

func TestManager_BootstrapWithoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without a saved session")
	}))
	defer srv.Close()

	m := newManager(t, srv, &memStore{})
	require.NoError(t, m.Bootstrap(context.Background()))
	require.False(t, m.IsAuthenticated())
}

func TestManager_BootstrapLoadsSavedUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/me", r.URL.Path)
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(models.User{ID: 1, Username: "amira", Role: models.RoleEditor})
	}))
	defer srv.Close()

	sessions := &memStore{sess: &store.Session{AccessToken: "tok-1", RefreshToken: "ref-1"}}
	m := newManager(t, srv, sessions)

	require.NoError(t, m.Bootstrap(context.Background()))
	require.True(t, m.Require(models.RoleEditor))
}

func TestManager_BootstrapClearsStaleSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	// no refresh token, so the 401 is final
	sessions := &memStore{sess: &store.Session{AccessToken: "stale"}}
	m := newManager(t, srv, sessions)

	require.Error(t, m.Bootstrap(context.Background()))
	require.False(t, m.IsAuthenticated())
	_, err := sessions.Session()
	require.ErrorIs(t, err, store.ErrNoSession)
}

func TestManager_LogoutAlwaysClears(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sessions := &memStore{sess: &store.Session{AccessToken: "tok-1"}}
	m := newManager(t, srv, sessions)

	m.Logout(context.Background())
	require.False(t, m.IsAuthenticated())
	_, err := sessions.Session()
	require.ErrorIs(t, err, store.ErrNoSession)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got, ok := auth.TokenExpiry(signedToken(t, exp))
	require.True(t, ok)
	require.True(t, got.Equal(exp))

	_, ok = auth.TokenExpiry("not-a-jwt")
	require.False(t, ok)
}

func TestManager_EnsureFresh(t *testing.T) {
	var refreshes int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshes, 1)
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-2"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	t.Run("near expiry refreshes", func(t *testing.T) {
		sessions := &memStore{sess: &store.Session{
			AccessToken:  signedToken(t, time.Now().Add(30*time.Second)),
			RefreshToken: "ref-1",
		}}
		m := newManager(t, srv, sessions)
		require.NoError(t, m.EnsureFresh(context.Background(), time.Minute))
		require.EqualValues(t, 1, atomic.LoadInt32(&refreshes))

		sess, err := sessions.Session()
		require.NoError(t, err)
		require.Equal(t, "tok-2", sess.AccessToken)
	})

	t.Run("fresh token untouched", func(t *testing.T) {
		atomic.StoreInt32(&refreshes, 0)
		sessions := &memStore{sess: &store.Session{
			AccessToken:  signedToken(t, time.Now().Add(time.Hour)),
			RefreshToken: "ref-1",
		}}
		m := newManager(t, srv, sessions)
		require.NoError(t, m.EnsureFresh(context.Background(), time.Minute))
		require.Zero(t, atomic.LoadInt32(&refreshes))
	})

	t.Run("opaque token left to the reactive path", func(t *testing.T) {
		sessions := &memStore{sess: &store.Session{AccessToken: "opaque", RefreshToken: "ref-1"}}
		m := newManager(t, srv, sessions)
		require.NoError(t, m.EnsureFresh(context.Background(), time.Minute))
		require.Zero(t, atomic.LoadInt32(&refreshes))
	})
}
