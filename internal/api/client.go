// Package api is the HTTP client for the NewsKoo backend. It attaches
// the saved access token to every request and transparently recovers
// from token expiry: a 401 triggers at most one refresh, shared across
// concurrent callers, before the original request is re-issued.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"newskoo/internal/models"
	"newskoo/internal/store"
)

// SessionStore is the persisted-token source the client reads and
// updates. *store.Store satisfies it.
type SessionStore interface {
	Session() (*store.Session, error)
	SaveSession(store.Session) error
	UpdateAccessToken(accessToken string) error
	ClearSession() error
}

type Client struct {
	baseURL  *url.URL
	http     *http.Client
	sessions SessionStore
	log      zerolog.Logger

	// onAuthExpired fires when a refresh attempt fails and the session
	// has been cleared; the UI navigates to the login screen.
	onAuthExpired func()

	refreshMu sync.Mutex
	refresh   *refreshCall
}

type refreshCall struct {
	done chan struct{}
	err  error
}

type Option func(*Client)

// WithHTTPClient substitutes the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithAuthExpiredHandler registers the forced-logout callback.
func WithAuthExpiredHandler(fn func()) Option {
	return func(c *Client) { c.onAuthExpired = fn }
}

func New(baseURL string, sessions SessionStore, log zerolog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	c := &Client{
		baseURL:  u,
		http:     &http.Client{Timeout: 30 * time.Second},
		sessions: sessions,
		log:      log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL.String() }

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil, nil)
}

// do issues one request and applies the single-retry recovery: on a 401
// with a refresh token saved, the token is refreshed (shared across
// concurrent 401s) and the request re-issued exactly once. The caller
// never observes the intermediate 401. Every other status passes
// through unchanged.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, header http.Header, body, out any) error {
	resp, err := c.send(ctx, method, path, query, header, body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return decodeResponse(resp, out)
	}

	original := decodeResponse(resp, nil)
	sess, sessErr := c.sessions.Session()
	if sessErr != nil || sess == nil || sess.RefreshToken == "" {
		return original
	}

	if err := c.refreshAccessToken(ctx); err != nil {
		return err
	}

	c.log.Debug().Str("method", method).Str("path", path).Msg("retrying request with refreshed token")
	resp, err = c.send(ctx, method, path, query, header, body)
	if err != nil {
		return err
	}
	// A second 401 is returned as-is; one refresh per request, never a loop.
	return decodeResponse(resp, out)
}

// send builds and issues a single request with the current access token
// attached when a session exists.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, header http.Header, body any) (*http.Response, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess, err := c.sessions.Session(); err == nil && sess.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// RefreshToken forces a token refresh now. Used by the auth manager to
// renew proactively before expiry; failure clears the session exactly
// like a failed reactive refresh.
func (c *Client) RefreshToken(ctx context.Context) error {
	return c.refreshAccessToken(ctx)
}

// refreshAccessToken calls the refresh endpoint, deduplicating
// concurrent callers onto one in-flight call so a burst of 401s mints a
// single new token instead of thrashing.
func (c *Client) refreshAccessToken(ctx context.Context) error {
	c.refreshMu.Lock()
	if call := c.refresh; call != nil {
		c.refreshMu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	call := &refreshCall{done: make(chan struct{})}
	c.refresh = call
	c.refreshMu.Unlock()

	call.err = c.doRefresh(ctx)

	c.refreshMu.Lock()
	c.refresh = nil
	c.refreshMu.Unlock()
	close(call.done)
	return call.err
}

func (c *Client) doRefresh(ctx context.Context) error {
	sess, err := c.sessions.Session()
	if err != nil {
		return err
	}

	// Issued directly, not through do(): a 401 from the refresh
	// endpoint itself must not recurse.
	resp, err := c.send(ctx, http.MethodPost, "/api/auth/refresh", nil, nil,
		map[string]string{"refresh_token": sess.RefreshToken})
	if err != nil {
		c.expireSession()
		return fmt.Errorf("refresh token: %w", err)
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := decodeResponse(resp, &body); err != nil {
		c.expireSession()
		return fmt.Errorf("refresh token: %w", err)
	}
	if err := c.sessions.UpdateAccessToken(body.AccessToken); err != nil {
		return err
	}
	c.log.Debug().Msg("access token refreshed")
	return nil
}

// expireSession clears the saved tokens and kicks the UI back to the
// login screen. Called only when a refresh attempt failed.
func (c *Client) expireSession() {
	if err := c.sessions.ClearSession(); err != nil {
		c.log.Error().Err(err).Msg("clearing expired session")
	}
	c.log.Info().Msg("session expired, forcing logout")
	if c.onAuthExpired != nil {
		c.onAuthExpired()
	}
}

// decodeResponse consumes resp, returning a typed *Error for non-2xx
// statuses and decoding the body into out otherwise.
func decodeResponse(resp *http.Response, out any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// listEnvelope is the {data, meta} shape every list endpoint returns.
type listEnvelope[T any] struct {
	Data []T             `json:"data"`
	Meta models.PageMeta `json:"meta"`
}
