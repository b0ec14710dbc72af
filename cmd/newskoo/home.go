package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"newskoo/internal/api"
	"newskoo/internal/models"
	"newskoo/internal/realtime"
)

// HomeScreen is the public reader feed: published posts, the category
// rail and the live online-user counter.
type HomeScreen struct {
	*UI
	layout     *tview.Flex
	statusBar  *tview.TextView
	categories *tview.List
	posts      *tview.List

	loaded     []models.Post
	categoryID int64
	page       int
	meta       *models.PageMeta
}

func NewHomeScreen(u *UI) *HomeScreen {
	h := &HomeScreen{UI: u, page: 1}

	h.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignRight)

	h.categories = tview.NewList().ShowSecondaryText(false)
	h.categories.SetBorder(true).
		SetTitle("[ Categories ]").
		SetTitleColor(u.Theme.GetColor("primary")).
		SetBorderColor(u.Theme.GetColor("border"))

	h.posts = tview.NewList()
	h.posts.SetSelectedBackgroundColor(u.Theme.GetColor("background-light")).
		SetSelectedTextColor(u.Theme.GetColor("primary"))
	h.posts.SetBorder(true).
		SetTitle("[ NewsKoo ]").
		SetTitleColor(u.Theme.GetColor("primary")).
		SetBorderColor(u.Theme.GetColor("border"))

	body := tview.NewFlex().
		AddItem(h.categories, 26, 0, false).
		AddItem(h.posts, 0, 1, true)

	h.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(h.statusBar, 1, 0, false).
		AddItem(body, 0, 1, true)

	h.layout.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch ev.Rune() {
		case '/':
			u.SwitchToSearch()
			return nil
		case 'a':
			u.SwitchToAdmin()
			return nil
		case 'n', 'j':
			h.nextPage()
			return nil
		case 'p', 'k':
			h.prevPage()
			return nil
		}
		return ev
	})

	// the aggregate online counter is global, so subscribe once for the
	// screen's whole lifetime
	realtime.Subscribe(u.app.RT, realtime.EventOnlineUsers, func(ev realtime.OnlineUsersEvent) {
		u.Update(func() { h.renderStatus(ev.Count) })
	})
	realtime.Subscribe(u.app.RT, realtime.EventConnect, func(struct{}) {
		u.Update(func() { h.renderStatus(-1) })
	})
	realtime.Subscribe(u.app.RT, realtime.EventDisconnect, func(struct{}) {
		u.Update(func() { h.renderStatus(-1) })
	})

	h.renderStatus(-1)
	return h
}

func (h *HomeScreen) renderStatus(onlineUsers int) {
	live := "offline"
	if h.app.RT.IsConnected() {
		live = "live"
	}
	who := "guest"
	if u := h.app.Auth.User(); u != nil {
		who = fmt.Sprintf("%s (%s)", u.Username, u.Role)
	}
	online := ""
	if onlineUsers >= 0 {
		online = fmt.Sprintf(" │ %d reading now", onlineUsers)
	}
	h.statusBar.SetText(fmt.Sprintf(" %s │ %s%s │ / search  a admin ", who, live, online))
}

// Load fetches the feed for the current category and page.
func (h *HomeScreen) Load() {
	h.Go(func() {
		ctx, cancel := context.WithTimeout(h.app.Ctx, 15*time.Second)
		defer cancel()

		params := api.ListPostsParams{
			Page:    h.page,
			PerPage: 20,
			Status:  models.PostPublished,
			Sort:    "published_at",
			Order:   "desc",
		}
		if h.categoryID != 0 {
			params.CategoryID = h.categoryID
		}
		posts, meta, err := h.app.API.ListPosts(ctx, params)
		if err != nil {
			h.Update(func() {
				h.ShowError("Load failed", err.Error(), "Retry", 0, h.Load)
			})
			return
		}
		cats, _, catErr := h.app.API.ListCategories(ctx, 1, 50)
		if catErr != nil {
			h.log.Warn().Err(catErr).Msg("loading categories")
		}

		h.Update(func() {
			h.loaded = posts
			h.meta = meta
			h.renderPosts()
			if catErr == nil {
				h.renderCategories(cats)
			}
		})
	})
}

func (h *HomeScreen) renderPosts() {
	h.posts.Clear()
	title := "[ NewsKoo ]"
	if h.meta != nil {
		title = fmt.Sprintf("[ NewsKoo — page %d/%d ]", h.meta.Page, h.meta.Pages)
	}
	h.posts.SetTitle(title)
	for _, p := range h.loaded {
		post := p
		secondary := fmt.Sprintf("%s · %d views · %d likes", post.Excerpt, post.Views, post.Likes)
		h.posts.AddItem(post.Title, secondary, 0, func() {
			h.app.Tracker.PostView(post.ID)
			h.SwitchToPost(post.ID)
		})
	}
}

func (h *HomeScreen) renderCategories(cats []models.Category) {
	h.categories.Clear()
	h.categories.AddItem("All", "", 0, func() {
		h.categoryID = 0
		h.page = 1
		h.Load()
	})
	for _, c := range cats {
		cat := c
		label := fmt.Sprintf("%s (%d)", cat.Name, cat.PostCount)
		h.categories.AddItem(label, "", 0, func() {
			h.categoryID = cat.ID
			h.page = 1
			h.app.Tracker.CategoryView(cat.ID)
			h.Load()
		})
	}
}

func (h *HomeScreen) nextPage() {
	if h.meta != nil && h.meta.HasNext {
		h.page++
		h.Load()
	}
}

func (h *HomeScreen) prevPage() {
	if h.meta != nil && h.meta.HasPrev && h.page > 1 {
		h.page--
		h.Load()
	}
}
