package main

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSearchScreen_AutocompleteServesCacheWithoutBlocking(t *testing.T) {
	var fetches int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/search/autocomplete" {
			atomic.AddInt32(&fetches, 1)
			time.Sleep(150 * time.Millisecond) // a slow backend must not stall the caller
			json.NewEncoder(w).Encode(map[string]any{
				"suggestions": []string{"go generics", "go modules"},
			})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	dial, _ := dialStubs()
	u, _ := newScreenUI(t, handler, dial)

	start := time.Now()
	require.Nil(t, u.SearchScreen.autocomplete("go"))
	require.Less(t, time.Since(start), 100*time.Millisecond)

	// the background fetch fills the cache and later calls serve it
	require.Eventually(t, func() bool {
		return len(u.SearchScreen.autocomplete("go")) == 2
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, []string{"go generics", "go modules"}, u.SearchScreen.autocomplete("go"))
	require.Equal(t, int32(1), atomic.LoadInt32(&fetches))

	// prefixes below the minimum never hit the backend
	require.Nil(t, u.SearchScreen.autocomplete("g"))
	require.Equal(t, int32(1), atomic.LoadInt32(&fetches))
}

func TestSearchScreen_AutocompleteRetriesAfterFetchError(t *testing.T) {
	var fetches int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/search/autocomplete" {
			if atomic.AddInt32(&fetches, 1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "boom", "message": "boom"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"suggestions": []string{"go modules"}})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	dial, _ := dialStubs()
	u, _ := newScreenUI(t, handler, dial)

	require.Nil(t, u.SearchScreen.autocomplete("go"))
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&fetches) == 1
	}, time.Second, 10*time.Millisecond)

	// the failed prefix is dropped from the cache so the next keystroke
	// fetches again
	require.Eventually(t, func() bool {
		return len(u.SearchScreen.autocomplete("go")) == 1
	}, time.Second, 10*time.Millisecond)
}
