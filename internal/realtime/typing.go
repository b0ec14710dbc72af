package realtime

import (
	"sort"
	"sync"
	"time"
)

const (
	// typingTTL expires a displayed typing entry when no stop signal
	// arrives. A liveness guard against missed stop events, not a
	// server guarantee.
	typingTTL = 5 * time.Second
	// typingIdle is how long after the last keystroke the sender
	// retracts its own typing announcement.
	typingIdle = 3 * time.Second
	// typingResend throttles the announcement itself; keystrokes inside
	// this window only re-arm the idle timer.
	typingResend = time.Second
)

// TypingTracker keeps the set of usernames currently typing on a post,
// expiring each entry typingTTL after its last typing signal.
type TypingTracker struct {
	ttl      time.Duration
	onChange func(users []string)

	mu      sync.Mutex
	stopped bool
	timers  map[string]*time.Timer
}

// NewTypingTracker builds a tracker; onChange fires with the updated
// user list on every membership change. A zero ttl means the default
// five seconds.
func NewTypingTracker(ttl time.Duration, onChange func(users []string)) *TypingTracker {
	if ttl <= 0 {
		ttl = typingTTL
	}
	return &TypingTracker{
		ttl:      ttl,
		onChange: onChange,
		timers:   make(map[string]*time.Timer),
	}
}

// Typing records a typing signal from username, resetting its expiry.
func (t *TypingTracker) Typing(username string) {
	if username == "" {
		return
	}
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	if timer, ok := t.timers[username]; ok {
		timer.Reset(t.ttl)
		t.mu.Unlock()
		return
	}
	t.timers[username] = time.AfterFunc(t.ttl, func() { t.expire(username) })
	users := t.usersLocked()
	t.mu.Unlock()
	t.notify(users)
}

// StopTyping removes username immediately, ahead of its expiry.
func (t *TypingTracker) StopTyping(username string) {
	t.mu.Lock()
	timer, ok := t.timers[username]
	if ok {
		timer.Stop()
		delete(t.timers, username)
	}
	users := t.usersLocked()
	t.mu.Unlock()
	if ok {
		t.notify(users)
	}
}

// Clear drops every entry at once. The stop-typing event carries no
// username, so consumers without a user-id mapping clear the whole set.
func (t *TypingTracker) Clear() {
	t.mu.Lock()
	changed := len(t.timers) > 0
	for name, timer := range t.timers {
		timer.Stop()
		delete(t.timers, name)
	}
	t.mu.Unlock()
	if changed {
		t.notify(nil)
	}
}

// Users returns the current typing set, sorted.
func (t *TypingTracker) Users() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.usersLocked()
}

// Stop cancels all timers synchronously. Call on consumer unmount so no
// callback fires against torn-down state.
func (t *TypingTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	for name, timer := range t.timers {
		timer.Stop()
		delete(t.timers, name)
	}
}

func (t *TypingTracker) usersLocked() []string {
	users := make([]string, 0, len(t.timers))
	for name := range t.timers {
		users = append(users, name)
	}
	sort.Strings(users)
	return users
}

func (t *TypingTracker) expire(username string) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	if _, ok := t.timers[username]; !ok {
		t.mu.Unlock()
		return
	}
	delete(t.timers, username)
	users := t.usersLocked()
	t.mu.Unlock()
	t.notify(users)
}

func (t *TypingTracker) notify(users []string) {
	if t.onChange != nil {
		t.onChange(users)
	}
}

// TypingNotifier is the sending side: it announces typing on each
// keystroke and retracts automatically typingIdle after the last one,
// or immediately on Flush.
type TypingNotifier struct {
	client   *Client
	postID   int64
	username string
	idle     time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	active   bool
	lastSent time.Time
}

// NewTypingNotifier builds a notifier for one post. A zero idle means
// the default three seconds.
func NewTypingNotifier(client *Client, postID int64, username string, idle time.Duration) *TypingNotifier {
	if idle <= 0 {
		idle = typingIdle
	}
	return &TypingNotifier{
		client:   client,
		postID:   postID,
		username: username,
		idle:     idle,
	}
}

// Keystroke signals typing and re-arms the auto-stop timer. The
// announcement is throttled; keystrokes inside the resend window only
// keep the timer alive.
func (n *TypingNotifier) Keystroke() {
	n.mu.Lock()
	now := time.Now()
	send := !n.active || now.Sub(n.lastSent) >= typingResend
	if send {
		n.lastSent = now
	}
	n.active = true
	if n.timer != nil {
		n.timer.Reset(n.idle)
	} else {
		n.timer = time.AfterFunc(n.idle, n.autoStop)
	}
	n.mu.Unlock()

	if send {
		n.client.SendTyping(n.postID, n.username)
	}
}

// Flush sends the stop signal immediately and cancels the timer. Call
// on consumer unmount.
func (n *TypingNotifier) Flush() {
	n.mu.Lock()
	wasActive := n.active
	n.active = false
	if n.timer != nil {
		n.timer.Stop()
	}
	n.mu.Unlock()
	if wasActive {
		n.client.SendStopTyping(n.postID)
	}
}

func (n *TypingNotifier) autoStop() {
	n.mu.Lock()
	wasActive := n.active
	n.active = false
	n.mu.Unlock()
	if wasActive {
		n.client.SendStopTyping(n.postID)
	}
}
