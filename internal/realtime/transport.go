package realtime

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// Transport is the minimal surface the client needs from a live
// connection. The websocket implementation is the production one; tests
// substitute a fake.
type Transport interface {
	ReadMessage() ([]byte, error)
	WriteJSON(v any) error
	Close() error
}

// Dialer opens a Transport to the given endpoint, authenticating with
// the token when present.
type Dialer func(ctx context.Context, endpoint, token string) (Transport, error)

type wsTransport struct {
	conn *websocket.Conn

	// gorilla permits one concurrent writer
	writeMu sync.Mutex
}

// DialWebsocket is the production Dialer. The token rides in the query
// string, matching the backend's connect-time authentication.
func DialWebsocket(ctx context.Context, endpoint, token string) (Transport, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse realtime url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial realtime: %w", err)
	}
	return &wsTransport{conn: conn}, nil
}

func (t *wsTransport) ReadMessage() ([]byte, error) {
	_, msg, err := t.conn.ReadMessage()
	return msg, err
}

func (t *wsTransport) WriteJSON(v any) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteJSON(v)
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}
