// Package realtime maintains the single live connection to the NewsKoo
// event stream and fans incoming events out to independent subscribers.
// Consumers join and leave per-post rooms; the connection lifecycle is
// decoupled from any one consumer. Transport failures degrade silently:
// they are logged, reconnection is attempted a bounded number of times,
// and the page keeps working without live updates.
package realtime

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

const (
	maxReconnectAttempts = 5
	baseReconnectDelay   = time.Second
	maxReconnectDelay    = 30 * time.Second
)

// Handler is one registered subscription. Removal is by handle
// identity, so independent subscribers to the same event never disturb
// each other.
type Handler struct {
	fn func(data json.RawMessage)
}

type Client struct {
	endpoint string
	dial     Dialer
	log      zerolog.Logger

	mu        sync.Mutex
	state     State
	transport Transport
	token     string
	attempts  int
	gen       int // bumped by Connect/Disconnect to invalidate stale run loops
	cancel    context.CancelFunc
	rooms     map[int64]struct{}
	subs      map[string][]*Handler
}

func NewClient(endpoint string, dial Dialer, log zerolog.Logger) *Client {
	if dial == nil {
		dial = DialWebsocket
	}
	return &Client{
		endpoint: endpoint,
		dial:     dial,
		log:      log,
		rooms:    make(map[int64]struct{}),
		subs:     make(map[string][]*Handler),
	}
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected may be false indefinitely; consumers must tolerate it.
func (c *Client) IsConnected() bool { return c.State() == StateConnected }

// Connect starts the connection in the background. Calling it while
// already connected or connecting is a no-op, so there is never more
// than one transport per process. Dial failures back off and retry up
// to five times before the client parks in the Failed state.
func (c *Client) Connect(ctx context.Context, token string) {
	c.mu.Lock()
	switch c.state {
	case StateConnected, StateConnecting, StateReconnecting:
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	c.token = token
	c.attempts = 0
	c.gen++
	gen := c.gen
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	go c.run(runCtx, gen)
}

// Disconnect deterministically drops the transport from any state.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	t := c.transport
	c.transport = nil
	wasConnected := c.state == StateConnected
	c.state = StateDisconnected
	c.attempts = 0
	c.mu.Unlock()

	if t != nil {
		_ = t.Close()
	}
	if wasConnected {
		c.dispatch(EventDisconnect, nil)
	}
}

func (c *Client) run(ctx context.Context, gen int) {
	delay := baseReconnectDelay
	for {
		if ctx.Err() != nil || c.stale(gen) {
			return
		}

		t, err := c.dial(ctx, c.endpoint, c.token)
		if err != nil {
			c.mu.Lock()
			if c.gen != gen {
				c.mu.Unlock()
				return
			}
			c.attempts++
			attempts := c.attempts
			if attempts >= maxReconnectAttempts {
				c.state = StateFailed
				c.transport = nil
				c.mu.Unlock()
				c.log.Error().Int("attempts", attempts).Msg("realtime gave up reconnecting")
				return
			}
			c.state = StateReconnecting
			c.mu.Unlock()
			c.log.Warn().Err(err).Int("attempt", attempts).Msg("realtime dial failed")

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			if delay *= 2; delay > maxReconnectDelay {
				delay = maxReconnectDelay
			}
			continue
		}

		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			_ = t.Close()
			return
		}
		c.transport = t
		c.state = StateConnected
		c.attempts = 0
		flush := c.replayEnvelopesLocked()
		c.mu.Unlock()

		delay = baseReconnectDelay
		c.log.Info().Msg("realtime connected")
		c.dispatch(EventConnect, nil)
		for _, env := range flush {
			if err := t.WriteJSON(env); err != nil {
				c.log.Warn().Err(err).Str("event", env.Event).Msg("flushing queued emit")
			}
		}

		c.readLoop(gen, t)

		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return
		}
		c.transport = nil
		c.state = StateReconnecting
		c.mu.Unlock()
		c.dispatch(EventDisconnect, nil)
		c.log.Warn().Msg("realtime connection dropped")
	}
}

// replayEnvelopesLocked returns the join intents for every room the
// consumer side holds. The room set doubles as the pending-join queue:
// joins made while disconnected are flushed here on every successful
// connect.
func (c *Client) replayEnvelopesLocked() []Envelope {
	ids := make([]int64, 0, len(c.rooms))
	for id := range c.rooms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]Envelope, 0, len(ids))
	for _, id := range ids {
		out = append(out, mustEnvelope(emitJoinPost, roomPayload{PostID: id}))
	}
	return out
}

func (c *Client) stale(gen int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen != gen
}

func (c *Client) readLoop(gen int, t Transport) {
	for {
		msg, err := t.ReadMessage()
		if err != nil {
			_ = t.Close()
			return
		}
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			c.log.Warn().Err(err).Msg("dropping malformed frame")
			continue
		}
		if c.stale(gen) {
			return
		}
		c.dispatch(env.Event, env.Data)
	}
}

// On registers a callback for a named event. Multiple independent
// callbacks per event are supported; the returned handle removes only
// this registration. Callbacks run on the read-loop goroutine and must
// not block.
func (c *Client) On(event string, fn func(data json.RawMessage)) *Handler {
	h := &Handler{fn: fn}
	c.mu.Lock()
	c.subs[event] = append(c.subs[event], h)
	c.mu.Unlock()
	return h
}

// Off removes the given registration; a nil handle removes every
// callback for the event name.
func (c *Client) Off(event string, h *Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h == nil {
		delete(c.subs, event)
		return
	}
	hs := c.subs[event]
	for i, cur := range hs {
		if cur == h {
			c.subs[event] = append(hs[:i:i], hs[i+1:]...)
			break
		}
	}
	if len(c.subs[event]) == 0 {
		delete(c.subs, event)
	}
}

func (c *Client) dispatch(event string, data json.RawMessage) {
	c.mu.Lock()
	hs := make([]*Handler, len(c.subs[event]))
	copy(hs, c.subs[event])
	c.mu.Unlock()
	for _, h := range hs {
		h.fn(data)
	}
}

// JoinRoom records membership in a post's room and emits the join
// intent. Safe to call while disconnected: membership always updates
// locally, and the join is flushed on the next successful connect.
func (c *Client) JoinRoom(postID int64) {
	c.mu.Lock()
	c.rooms[postID] = struct{}{}
	c.mu.Unlock()
	c.emit(emitJoinPost, roomPayload{PostID: postID})
}

// LeaveRoom drops membership; call once per matching JoinRoom,
// typically when the consumer goes away.
func (c *Client) LeaveRoom(postID int64) {
	c.mu.Lock()
	delete(c.rooms, postID)
	c.mu.Unlock()
	c.emit(emitLeavePost, roomPayload{PostID: postID})
}

// SendTyping announces that username is composing a comment on a post.
func (c *Client) SendTyping(postID int64, username string) {
	c.emit(emitTyping, typingPayload{PostID: postID, Username: username})
}

// SendStopTyping retracts a typing announcement.
func (c *Client) SendStopTyping(postID int64) {
	c.emit(emitStopTyping, typingPayload{PostID: postID})
}

// emit writes the event when connected and otherwise drops it. Typing
// signals are stale by the time a reconnect lands, and room membership
// is replayed from the rooms set, so offline emits carry no value.
func (c *Client) emit(event string, data any) {
	env := mustEnvelope(event, data)

	c.mu.Lock()
	t := c.transport
	connected := c.state == StateConnected && t != nil
	c.mu.Unlock()

	if !connected {
		return
	}
	if err := t.WriteJSON(env); err != nil {
		c.log.Warn().Err(err).Str("event", event).Msg("emit failed")
	}
}

func mustEnvelope(event string, data any) Envelope {
	raw, err := json.Marshal(data)
	if err != nil {
		// payload types are all local structs; this cannot fail at runtime
		panic(err)
	}
	return Envelope{Event: event, Data: raw}
}
