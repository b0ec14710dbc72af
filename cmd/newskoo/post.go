package main

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"newskoo/internal/models"
	"newskoo/internal/realtime"
	"newskoo/internal/tracking"
)

// PostScreen renders one post with its live counters and typing
// indicator. Entering the screen joins the post's realtime room;
// leaving tears every subscription and timer down synchronously so no
// callback fires against a dismounted view.
type PostScreen struct {
	*UI
	layout    *tview.Flex
	content   *tview.TextView
	statusBar *tview.TextView
	typingBar *tview.TextView
	comment   *tview.InputField

	post      *models.Post
	currentID int64         // room joined in Show; zero when torn down
	gen       atomic.Uint64 // bumped by Leave to invalidate in-flight loads
	views     int64
	likes     int64
	roomSize  int

	handlers  []subscription
	tracker   *realtime.TypingTracker
	notifier  *realtime.TypingNotifier
	pageTimer *tracking.PageTimer
}

type subscription struct {
	event  string
	handle *realtime.Handler
}

func NewPostScreen(u *UI) *PostScreen {
	p := &PostScreen{UI: u}

	p.content = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true)
	p.content.SetBorder(true).
		SetBorderColor(u.Theme.GetColor("border"))

	p.statusBar = tview.NewTextView().SetTextAlign(tview.AlignLeft)
	p.typingBar = tview.NewTextView().
		SetTextAlign(tview.AlignLeft).
		SetTextColor(u.Theme.GetColor("text-muted"))

	p.comment = tview.NewInputField().
		SetLabel(" Comment: ").
		SetFieldWidth(0).
		SetFieldBackgroundColor(u.Theme.GetColor("background-light"))
	p.comment.SetChangedFunc(func(string) {
		if p.notifier != nil {
			p.notifier.Keystroke()
		}
	})
	p.comment.SetDoneFunc(func(key tcell.Key) {
		if p.notifier != nil {
			p.notifier.Flush()
		}
		if key == tcell.KeyEnter {
			p.comment.SetText("")
		}
		u.App.SetFocus(p.layout)
	})

	p.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(p.statusBar, 1, 0, false).
		AddItem(p.content, 0, 1, true).
		AddItem(p.typingBar, 1, 0, false).
		AddItem(p.comment, 1, 0, false)

	p.layout.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch {
		case ev.Key() == tcell.KeyEscape:
			p.Leave()
			u.SwitchToHome()
			return nil
		case ev.Rune() == 'L' && !p.comment.HasFocus():
			p.like()
			return nil
		case ev.Key() == tcell.KeyTab:
			u.App.SetFocus(p.comment)
			return nil
		}
		return ev
	})
	return p
}

// Show loads the post and wires the room subscriptions.
func (p *PostScreen) Show(postID int64) {
	p.Leave() // tolerate navigation without an intervening Escape
	p.currentID = postID
	gen := p.gen.Load()

	p.tracker = realtime.NewTypingTracker(0, func(users []string) {
		p.Update(func() { p.renderTyping(users) })
	})
	if u := p.app.Auth.User(); u != nil {
		p.notifier = realtime.NewTypingNotifier(p.app.RT, postID, u.Username, 0)
	}
	p.subscribeRoom(postID)
	p.app.RT.JoinRoom(postID)
	p.pageTimer = p.app.Tracker.StartPageTimer(fmt.Sprintf("/posts/%d", postID), "")

	p.Go(func() {
		ctx, cancel := context.WithTimeout(p.app.Ctx, 15*time.Second)
		defer cancel()
		post, err := p.app.API.GetPost(ctx, postID)
		if p.gen.Load() != gen {
			return // screen was torn down or moved on while loading
		}
		if err != nil {
			p.Update(func() {
				if p.gen.Load() != gen {
					return
				}
				p.ShowError("Load failed", err.Error(), "Back", 0, func() {
					p.Leave()
					p.SwitchToHome()
				})
			})
			return
		}
		p.Update(func() {
			if p.gen.Load() != gen {
				return
			}
			p.post = post
			p.views = post.Views
			p.likes = post.Likes
			p.render()
		})
	})
}

// Leave rolls back everything Show set up. Idempotent. The room id is
// tracked separately from the loaded post so the leave is sent even
// when the user backs out before the load finishes.
func (p *PostScreen) Leave() {
	p.gen.Add(1)
	if p.currentID != 0 {
		p.app.RT.LeaveRoom(p.currentID)
		p.currentID = 0
	}
	for _, s := range p.handlers {
		p.app.RT.Off(s.event, s.handle)
	}
	p.handlers = nil
	if p.notifier != nil {
		p.notifier.Flush()
		p.notifier = nil
	}
	if p.tracker != nil {
		p.tracker.Stop()
		p.tracker = nil
	}
	if p.pageTimer != nil {
		p.pageTimer.Stop()
		p.pageTimer = nil
	}
	p.post = nil
	p.roomSize = 0
}

func (p *PostScreen) subscribeRoom(postID int64) {
	rt := p.app.RT
	sub := func(event string, h *realtime.Handler) {
		p.handlers = append(p.handlers, subscription{event: event, handle: h})
	}

	sub(realtime.EventRoomUsers, realtime.Subscribe(rt, realtime.EventRoomUsers,
		func(ev realtime.RoomUsersEvent) {
			if ev.PostID != postID {
				return
			}
			p.Update(func() {
				p.roomSize = ev.Count
				p.renderStatus()
			})
		}))

	sub(realtime.EventPostLiked, realtime.Subscribe(rt, realtime.EventPostLiked,
		func(ev realtime.PostLikedEvent) {
			if ev.PostID != postID {
				return
			}
			p.Update(func() {
				p.likes = ev.LikesCount
				p.renderStatus()
			})
		}))

	sub(realtime.EventPostViewed, realtime.Subscribe(rt, realtime.EventPostViewed,
		func(ev realtime.PostViewedEvent) {
			if ev.PostID != postID {
				return
			}
			p.Update(func() {
				// events may arrive out of order; the counter only moves up
				if ev.ViewsCount > p.views {
					p.views = ev.ViewsCount
					p.renderStatus()
				}
			})
		}))

	sub(realtime.EventNewComment, realtime.Subscribe(rt, realtime.EventNewComment,
		func(ev realtime.NewCommentEvent) {
			if ev.PostID != postID {
				return
			}
			p.Update(func() { p.appendComment(ev.Comment) })
		}))

	sub(realtime.EventUserTyping, realtime.Subscribe(rt, realtime.EventUserTyping,
		func(ev realtime.UserTypingEvent) {
			if ev.PostID != postID || p.tracker == nil {
				return
			}
			p.tracker.Typing(ev.Username)
		}))

	sub(realtime.EventUserStopTyping, realtime.Subscribe(rt, realtime.EventUserStopTyping,
		func(ev realtime.UserStopTypingEvent) {
			if ev.PostID != postID || p.tracker == nil {
				return
			}
			// the stop event carries no username, mirror the web client
			// and clear the whole set
			p.tracker.Clear()
		}))
}

func (p *PostScreen) like() {
	if p.post == nil {
		return
	}
	postID := p.post.ID
	p.app.Tracker.PostLike(postID)
	p.Go(func() {
		ctx, cancel := context.WithTimeout(p.app.Ctx, 10*time.Second)
		defer cancel()
		if err := p.app.API.LikePost(ctx, postID); err != nil {
			p.log.Warn().Err(err).Int64("post", postID).Msg("like failed")
		}
	})
}

func (p *PostScreen) render() {
	if p.post == nil {
		return
	}
	p.content.SetTitle(fmt.Sprintf("[ %s ]", p.post.Title))
	var b strings.Builder
	if p.post.Category != nil {
		fmt.Fprintf(&b, "[orange]%s[-]  ", p.post.Category.Name)
	}
	for _, t := range p.post.Tags {
		fmt.Fprintf(&b, "#%s ", t.Name)
	}
	b.WriteString("\n\n")
	b.WriteString(p.post.Content)
	p.content.SetText(b.String())
	p.renderStatus()
	p.renderTyping(nil)
}

func (p *PostScreen) renderStatus() {
	if p.post == nil {
		return
	}
	p.statusBar.SetText(fmt.Sprintf(" %d views │ %d likes │ %d in room │ Esc back · L like",
		p.views, p.likes, p.roomSize))
}

func (p *PostScreen) renderTyping(users []string) {
	switch len(users) {
	case 0:
		p.typingBar.SetText("")
	case 1:
		p.typingBar.SetText(fmt.Sprintf(" %s is typing…", users[0]))
	default:
		p.typingBar.SetText(fmt.Sprintf(" %s are typing…", strings.Join(users, ", ")))
	}
}

func (p *PostScreen) appendComment(c models.Comment) {
	author := "someone"
	if c.Author != nil {
		author = c.Author.Username
	}
	fmt.Fprintf(p.content, "\n[teal]%s[-]: %s", author, c.Content)
}
