package realtime_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"newskoo/internal/realtime"
)

// changeLog collects onChange snapshots so assertions can look at the
// latest membership.
type changeLog struct {
	mu    sync.Mutex
	calls [][]string
}

func (l *changeLog) record(users []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, append([]string(nil), users...))
}

func (l *changeLog) latest() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.calls) == 0 {
		return nil
	}
	return l.calls[len(l.calls)-1]
}

func TestTypingTracker_AddAndExpire(t *testing.T) {
	log := &changeLog{}
	tr := realtime.NewTypingTracker(50*time.Millisecond, log.record)
	defer tr.Stop()

	tr.Typing("amira")
	tr.Typing("badr")
	require.Equal(t, []string{"amira", "badr"}, tr.Users())

	// both expire without a stop signal
	require.Eventually(t, func() bool {
		return len(tr.Users()) == 0
	}, 2*time.Second, 5*time.Millisecond)
	require.Empty(t, log.latest())
}

func TestTypingTracker_RepeatSignalResetsExpiry(t *testing.T) {
	tr := realtime.NewTypingTracker(80*time.Millisecond, nil)
	defer tr.Stop()

	tr.Typing("amira")
	for i := 0; i < 4; i++ {
		time.Sleep(40 * time.Millisecond)
		tr.Typing("amira")
		require.Equal(t, []string{"amira"}, tr.Users())
	}
	require.Eventually(t, func() bool {
		return len(tr.Users()) == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestTypingTracker_StopTypingIsImmediate(t *testing.T) {
	log := &changeLog{}
	tr := realtime.NewTypingTracker(time.Minute, log.record)
	defer tr.Stop()

	tr.Typing("amira")
	tr.Typing("badr")
	tr.StopTyping("amira")
	require.Equal(t, []string{"badr"}, tr.Users())
	require.Equal(t, []string{"badr"}, log.latest())

	// stopping an unknown user changes nothing and stays silent
	before := len(log.calls)
	tr.StopTyping("ghost")
	require.Len(t, log.calls, before)
}

func TestTypingTracker_ClearDropsEveryone(t *testing.T) {
	tr := realtime.NewTypingTracker(time.Minute, nil)
	defer tr.Stop()

	tr.Typing("amira")
	tr.Typing("badr")
	tr.Typing("chadia")
	tr.Clear()
	require.Empty(t, tr.Users())
}

func TestTypingTracker_StopSilencesCallbacks(t *testing.T) {
	log := &changeLog{}
	tr := realtime.NewTypingTracker(30*time.Millisecond, log.record)

	tr.Typing("amira")
	tr.Stop()
	calls := len(log.calls)

	// no expiry callback fires after Stop
	time.Sleep(100 * time.Millisecond)
	require.Len(t, log.calls, calls)
	require.Empty(t, tr.Users())

	// and new signals are ignored
	tr.Typing("badr")
	require.Empty(t, tr.Users())
}

func TestTypingNotifier_AutoStopAfterIdle(t *testing.T) {
	tr := newFakeTransport()
	dial, _ := dialTo(tr)
	c := realtime.NewClient("ws://test", dial, zerolog.Nop())
	c.Connect(context.Background(), "tok")
	waitConnected(t, c)
	defer c.Disconnect()

	n := realtime.NewTypingNotifier(c, 3, "amira", 40*time.Millisecond)
	n.Keystroke()
	n.Keystroke() // inside the resend window, announcement throttled

	require.Eventually(t, func() bool {
		events := tr.sentEvents()
		return len(events) == 2 && events[1] == "stop_typing"
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, []string{"typing", "stop_typing"}, tr.sentEvents())

	// after the auto-stop a new keystroke announces again
	n.Keystroke()
	require.Eventually(t, func() bool {
		return len(tr.sentEvents()) == 4
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, []string{"typing", "stop_typing", "typing", "stop_typing"}, tr.sentEvents())
}

func TestTypingNotifier_FlushStopsImmediately(t *testing.T) {
	tr := newFakeTransport()
	dial, _ := dialTo(tr)
	c := realtime.NewClient("ws://test", dial, zerolog.Nop())
	c.Connect(context.Background(), "tok")
	waitConnected(t, c)
	defer c.Disconnect()

	n := realtime.NewTypingNotifier(c, 3, "amira", time.Minute)
	n.Keystroke()
	n.Flush()
	require.Equal(t, []string{"typing", "stop_typing"}, tr.sentEvents())

	// a second flush without keystrokes sends nothing
	n.Flush()
	require.Len(t, tr.sentEvents(), 2)
}
