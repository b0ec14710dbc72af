package store_test

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"newskoo/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "newskoo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionRoundTrip(t *testing.T) {
	s := openStore(t)

	_, err := s.Session()
	require.ErrorIs(t, err, store.ErrNoSession)

	require.NoError(t, s.SaveSession(store.Session{AccessToken: "tok-1", RefreshToken: "ref-1"}))
	sess, err := s.Session()
	require.NoError(t, err)
	require.Equal(t, "tok-1", sess.AccessToken)
	require.Equal(t, "ref-1", sess.RefreshToken)

	// saving again replaces, never accumulates
	require.NoError(t, s.SaveSession(store.Session{AccessToken: "tok-2", RefreshToken: "ref-2"}))
	sess, err = s.Session()
	require.NoError(t, err)
	require.Equal(t, "tok-2", sess.AccessToken)

	require.NoError(t, s.ClearSession())
	_, err = s.Session()
	require.ErrorIs(t, err, store.ErrNoSession)

	// clearing twice is fine
	require.NoError(t, s.ClearSession())
}

func TestUpdateAccessTokenKeepsRefreshToken(t *testing.T) {
	s := openStore(t)

	require.ErrorIs(t, s.UpdateAccessToken("tok-2"), store.ErrNoSession)

	require.NoError(t, s.SaveSession(store.Session{AccessToken: "tok-1", RefreshToken: "ref-1"}))
	require.NoError(t, s.UpdateAccessToken("tok-2"))

	sess, err := s.Session()
	require.NoError(t, err)
	require.Equal(t, "tok-2", sess.AccessToken)
	require.Equal(t, "ref-1", sess.RefreshToken)
}

func TestClientSessionIDIsStable(t *testing.T) {
	s := openStore(t)

	id, err := s.ClientSessionID()
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	again, err := s.ClientSessionID()
	require.NoError(t, err)
	require.Equal(t, id, again)
}

func TestRecentSearchesNewestFirst(t *testing.T) {
	s := openStore(t)

	for _, q := range []string{"go generics", "sqlite wal", "tview tables"} {
		require.NoError(t, s.AddRecentSearch(q))
		time.Sleep(2 * time.Millisecond)
	}

	got, err := s.RecentSearches()
	require.NoError(t, err)
	require.Equal(t, []string{"tview tables", "sqlite wal", "go generics"}, got)
}

func TestRecentSearchesDedupCaseInsensitive(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.AddRecentSearch("Go Generics"))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, s.AddRecentSearch("sqlite"))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, s.AddRecentSearch("go generics"))

	got, err := s.RecentSearches()
	require.NoError(t, err)
	// the repeat moves to the front with its latest casing
	require.Equal(t, []string{"go generics", "sqlite"}, got)
}

func TestRecentSearchesCappedAtTen(t *testing.T) {
	s := openStore(t)

	for i := 0; i < 14; i++ {
		require.NoError(t, s.AddRecentSearch(fmt.Sprintf("query %02d", i)))
		time.Sleep(2 * time.Millisecond)
	}

	got, err := s.RecentSearches()
	require.NoError(t, err)
	require.Len(t, got, 10)
	require.Equal(t, "query 13", got[0])
	require.Equal(t, "query 04", got[9])
}

func TestAddRecentSearchIgnoresBlank(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.AddRecentSearch("   "))
	got, err := s.RecentSearches()
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestClearRecentSearches(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.AddRecentSearch("go"))
	require.NoError(t, s.ClearRecentSearches())
	got, err := s.RecentSearches()
	require.NoError(t, err)
	require.Empty(t, got)
}
