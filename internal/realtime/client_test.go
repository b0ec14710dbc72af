package realtime_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"newskoo/internal/realtime"
)

// fakeTransport feeds frames to the read loop through a channel and
// records everything written to it.
type fakeTransport struct {
	in     chan []byte
	closed chan struct{}
	once   sync.Once

	mu   sync.Mutex
	sent []realtime.Envelope
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		in:     make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (f *fakeTransport) ReadMessage() ([]byte, error) {
	select {
	case msg := <-f.in:
		return msg, nil
	case <-f.closed:
		return nil, errors.New("transport closed")
	}
}

func (f *fakeTransport) WriteJSON(v any) error {
	env, ok := v.(realtime.Envelope)
	if !ok {
		return errors.New("unexpected write type")
	}
	f.mu.Lock()
	f.sent = append(f.sent, env)
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeTransport) deliver(t *testing.T, event string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	frame, err := json.Marshal(realtime.Envelope{Event: event, Data: data})
	require.NoError(t, err)
	f.in <- frame
}

func (f *fakeTransport) sentEvents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, env := range f.sent {
		out[i] = env.Event
	}
	return out
}

// dialTo returns a Dialer handing out transports from the given
// sequence, failing once the sequence is exhausted.
func dialTo(transports ...*fakeTransport) (realtime.Dialer, *int32) {
	var dials int32
	return func(ctx context.Context, endpoint, token string) (realtime.Transport, error) {
		n := atomic.AddInt32(&dials, 1)
		if int(n) > len(transports) {
			return nil, errors.New("no more transports")
		}
		return transports[n-1], nil
	}, &dials
}

func waitConnected(t *testing.T, c *realtime.Client) {
	t.Helper()
	require.Eventually(t, c.IsConnected, 2*time.Second, 5*time.Millisecond)
}

func TestClient_ConnectDispatchesConnectEvent(t *testing.T) {
	tr := newFakeTransport()
	dial, _ := dialTo(tr)
	c := realtime.NewClient("ws://test", dial, zerolog.Nop())

	connected := make(chan struct{}, 1)
	c.On(realtime.EventConnect, func(json.RawMessage) { connected <- struct{}{} })

	c.Connect(context.Background(), "tok")
	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		t.Fatal("connect event never fired")
	}
	require.Equal(t, realtime.StateConnected, c.State())
	c.Disconnect()
}

func TestClient_ConnectWhileConnectedIsNoop(t *testing.T) {
	tr := newFakeTransport()
	dial, dials := dialTo(tr)
	c := realtime.NewClient("ws://test", dial, zerolog.Nop())

	c.Connect(context.Background(), "tok")
	waitConnected(t, c)
	c.Connect(context.Background(), "tok")
	c.Connect(context.Background(), "tok")

	require.EqualValues(t, 1, atomic.LoadInt32(dials))
	c.Disconnect()
}

func TestClient_JoinWhileDisconnectedFlushesOnConnect(t *testing.T) {
	tr := newFakeTransport()
	dial, _ := dialTo(tr)
	c := realtime.NewClient("ws://test", dial, zerolog.Nop())

	c.JoinRoom(7)
	c.JoinRoom(3)
	require.Empty(t, tr.sentEvents())

	c.Connect(context.Background(), "tok")
	waitConnected(t, c)

	require.Eventually(t, func() bool {
		return len(tr.sentEvents()) == 2
	}, 2*time.Second, 5*time.Millisecond)

	tr.mu.Lock()
	defer tr.mu.Unlock()
	var ids []int64
	for _, env := range tr.sent {
		require.Equal(t, "join_post", env.Event)
		var p struct {
			PostID int64 `json:"post_id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &p))
		ids = append(ids, p.PostID)
	}
	require.ElementsMatch(t, []int64{3, 7}, ids)
	c.Disconnect()
}

func TestClient_JoinAndLeaveWhileConnected(t *testing.T) {
	tr := newFakeTransport()
	dial, _ := dialTo(tr)
	c := realtime.NewClient("ws://test", dial, zerolog.Nop())

	c.Connect(context.Background(), "tok")
	waitConnected(t, c)

	c.JoinRoom(5)
	c.SendTyping(5, "amira")
	c.SendStopTyping(5)
	c.LeaveRoom(5)

	require.Equal(t, []string{"join_post", "typing", "stop_typing", "leave_post"}, tr.sentEvents())
	c.Disconnect()
}

func TestClient_EmitWhileOfflineIsDropped(t *testing.T) {
	c := realtime.NewClient("ws://test", func(context.Context, string, string) (realtime.Transport, error) {
		return nil, errors.New("offline")
	}, zerolog.Nop())

	// No transport ever exists; these must be silent no-ops.
	c.SendTyping(1, "amira")
	c.SendStopTyping(1)
	require.Equal(t, realtime.StateDisconnected, c.State())
}

func TestClient_OffRemovesOnlyThatHandler(t *testing.T) {
	tr := newFakeTransport()
	dial, _ := dialTo(tr)
	c := realtime.NewClient("ws://test", dial, zerolog.Nop())

	var first, second int32
	h1 := c.On(realtime.EventPostLiked, func(json.RawMessage) { atomic.AddInt32(&first, 1) })
	c.On(realtime.EventPostLiked, func(json.RawMessage) { atomic.AddInt32(&second, 1) })

	c.Connect(context.Background(), "tok")
	waitConnected(t, c)

	tr.deliver(t, realtime.EventPostLiked, realtime.PostLikedEvent{PostID: 1, LikesCount: 4})
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&first) == 1 && atomic.LoadInt32(&second) == 1
	}, 2*time.Second, 5*time.Millisecond)

	c.Off(realtime.EventPostLiked, h1)
	tr.deliver(t, realtime.EventPostLiked, realtime.PostLikedEvent{PostID: 1, LikesCount: 5})
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&second) == 2
	}, 2*time.Second, 5*time.Millisecond)
	require.EqualValues(t, 1, atomic.LoadInt32(&first))

	// nil handle removes everything for the event
	c.Off(realtime.EventPostLiked, nil)
	tr.deliver(t, realtime.EventPostLiked, realtime.PostLikedEvent{PostID: 1, LikesCount: 6})
	time.Sleep(50 * time.Millisecond)
	require.EqualValues(t, 2, atomic.LoadInt32(&second))
	c.Disconnect()
}

func TestSubscribe_DecodesTypedPayload(t *testing.T) {
	tr := newFakeTransport()
	dial, _ := dialTo(tr)
	c := realtime.NewClient("ws://test", dial, zerolog.Nop())

	got := make(chan realtime.UserTypingEvent, 1)
	realtime.Subscribe(c, realtime.EventUserTyping, func(ev realtime.UserTypingEvent) {
		got <- ev
	})

	c.Connect(context.Background(), "tok")
	waitConnected(t, c)

	tr.deliver(t, realtime.EventUserTyping, realtime.UserTypingEvent{UserID: 9, Username: "amira", PostID: 3})
	select {
	case ev := <-got:
		require.Equal(t, "amira", ev.Username)
		require.EqualValues(t, 3, ev.PostID)
	case <-time.After(2 * time.Second):
		t.Fatal("typed event never arrived")
	}
	c.Disconnect()
}

func TestClient_ReconnectsAfterDrop(t *testing.T) {
	tr1 := newFakeTransport()
	tr2 := newFakeTransport()
	dial, dials := dialTo(tr1, tr2)
	c := realtime.NewClient("ws://test", dial, zerolog.Nop())

	var disconnects int32
	c.On(realtime.EventDisconnect, func(json.RawMessage) { atomic.AddInt32(&disconnects, 1) })

	c.JoinRoom(11)
	c.Connect(context.Background(), "tok")
	waitConnected(t, c)
	require.EqualValues(t, 1, atomic.LoadInt32(dials))

	// Drop the first transport; the client must notify subscribers and
	// come back on the second, replaying room membership.
	tr1.Close()
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(dials) == 2 && c.IsConnected()
	}, 5*time.Second, 10*time.Millisecond)
	require.EqualValues(t, 1, atomic.LoadInt32(&disconnects))
	require.Equal(t, []string{"join_post"}, tr2.sentEvents())
	c.Disconnect()
}

func TestClient_DisconnectStopsReconnecting(t *testing.T) {
	c := realtime.NewClient("ws://test", func(context.Context, string, string) (realtime.Transport, error) {
		return nil, errors.New("dial refused")
	}, zerolog.Nop())

	c.Connect(context.Background(), "tok")
	require.Eventually(t, func() bool {
		return c.State() == realtime.StateReconnecting
	}, 2*time.Second, 5*time.Millisecond)

	c.Disconnect()
	require.Equal(t, realtime.StateDisconnected, c.State())

	// The run loop is invalidated; state stays put.
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, realtime.StateDisconnected, c.State())
}
