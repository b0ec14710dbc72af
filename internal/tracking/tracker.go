// Package tracking reports user activity to the backend. Events are
// queued onto a buffered channel and posted by a background worker;
// tracking is best-effort and never blocks or fails the UI.
package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"newskoo/internal/api"
)

const (
	defaultQueueSize = 128
	sendTimeout      = 5 * time.Second
)

type kind int

const (
	kindActivity kind = iota
	kindPageView
	kindSearch
)

type event struct {
	kind     kind
	activity api.Activity
	pageView api.PageView
	search   api.SearchLog
}

type Tracker struct {
	api       *api.Client
	sessionID string
	log       zerolog.Logger

	queue chan event
	wg    sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// New starts the background worker. sessionID is the anonymous client
// session identifier; queueSize <= 0 uses the default.
func New(client *api.Client, sessionID string, queueSize int, log zerolog.Logger) *Tracker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	t := &Tracker{
		api:       client,
		sessionID: sessionID,
		log:       log,
		queue:     make(chan event, queueSize),
	}
	t.wg.Add(1)
	go t.worker()
	return t
}

// Stop drains the queue and waits for the worker.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.mu.Unlock()
	close(t.queue)
	t.wg.Wait()
}

func (t *Tracker) enqueue(ev event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	select {
	case t.queue <- ev:
	default:
		// full queue: tracking is droppable by design
		t.log.Debug().Msg("tracking queue full, dropping event")
	}
}

func (t *Tracker) worker() {
	defer t.wg.Done()
	for ev := range t.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		var err error
		switch ev.kind {
		case kindActivity:
			err = t.api.TrackActivity(ctx, t.sessionID, ev.activity)
		case kindPageView:
			err = t.api.TrackPageView(ctx, t.sessionID, ev.pageView)
		case kindSearch:
			err = t.api.TrackSearch(ctx, t.sessionID, ev.search)
		}
		cancel()
		if err != nil {
			t.log.Debug().Err(err).Msg("tracking send failed")
		}
	}
}

func (t *Tracker) Activity(a api.Activity) {
	t.enqueue(event{kind: kindActivity, activity: a})
}

func (t *Tracker) PageView(path, title string, duration time.Duration) {
	t.enqueue(event{kind: kindPageView, pageView: api.PageView{
		Path:     path,
		Title:    title,
		Duration: int64(duration.Seconds()),
	}})
}

func (t *Tracker) Search(query string, resultsCount int) {
	t.enqueue(event{kind: kindSearch, search: api.SearchLog{
		Query:        query,
		ResultsCount: resultsCount,
	}})
}

func (t *Tracker) PostView(postID int64) {
	t.Activity(api.Activity{ActivityType: "view", ResourceType: "post", ResourceID: postID})
}

func (t *Tracker) PostLike(postID int64) {
	t.Activity(api.Activity{ActivityType: "like", ResourceType: "post", ResourceID: postID})
}

func (t *Tracker) PostShare(postID int64, platform string) {
	t.Activity(api.Activity{
		ActivityType: "share",
		ResourceType: "post",
		ResourceID:   postID,
		ActionDetail: map[string]string{"platform": platform},
	})
}

func (t *Tracker) CategoryView(categoryID int64) {
	t.Activity(api.Activity{ActivityType: "view", ResourceType: "category", ResourceID: categoryID})
}

func (t *Tracker) TagClick(tagName string) {
	t.Activity(api.Activity{
		ActivityType: "click",
		ResourceType: "tag",
		ActionDetail: map[string]string{"tag_name": tagName},
	})
}

// PageTimer measures dwell time on a screen and reports it once on Stop.
type PageTimer struct {
	tracker *Tracker
	path    string
	title   string
	started time.Time

	once sync.Once
}

func (t *Tracker) StartPageTimer(path, title string) *PageTimer {
	t.PageView(path, title, 0)
	return &PageTimer{
		tracker: t,
		path:    path,
		title:   title,
		started: time.Now(),
	}
}

// Stop reports the final dwell time; subsequent calls are no-ops.
func (p *PageTimer) Stop() {
	p.once.Do(func() {
		p.tracker.PageView(p.path, p.title, time.Since(p.started))
	})
}
