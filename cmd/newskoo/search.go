package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"newskoo/internal/api"
	"newskoo/internal/models"
)

type SearchScreen struct {
	*UI
	layout  *tview.Flex
	input   *tview.InputField
	side    *tview.List
	results *tview.List

	sugMu       sync.Mutex
	suggestions map[string][]string
}

func NewSearchScreen(u *UI) *SearchScreen {
	s := &SearchScreen{UI: u, suggestions: make(map[string][]string)}

	s.input = tview.NewInputField().
		SetLabel(" Search: ").
		SetFieldWidth(0).
		SetFieldBackgroundColor(u.Theme.GetColor("background-light"))
	s.input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			s.submit(s.input.GetText())
		}
	})
	s.input.SetAutocompleteFunc(s.autocomplete)

	s.side = tview.NewList().ShowSecondaryText(false)
	s.side.SetBorder(true).
		SetTitle("[ Recent & Trending ]").
		SetTitleColor(u.Theme.GetColor("primary")).
		SetBorderColor(u.Theme.GetColor("border"))

	s.results = tview.NewList()
	s.results.SetSelectedBackgroundColor(u.Theme.GetColor("background-light")).
		SetSelectedTextColor(u.Theme.GetColor("primary"))
	s.results.SetBorder(true).
		SetTitle("[ Results ]").
		SetTitleColor(u.Theme.GetColor("primary")).
		SetBorderColor(u.Theme.GetColor("border"))

	body := tview.NewFlex().
		AddItem(s.side, 30, 0, false).
		AddItem(s.results, 0, 1, false)

	s.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.input, 1, 0, true).
		AddItem(body, 0, 1, false)

	s.layout.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyEscape {
			u.SwitchToHome()
			return nil
		}
		return ev
	})
	return s
}

// Load populates the sidebar with saved and trending searches.
func (s *SearchScreen) Load() {
	s.sugMu.Lock()
	s.suggestions = make(map[string][]string)
	s.sugMu.Unlock()

	recent, err := s.app.Store.RecentSearches()
	if err != nil {
		s.log.Warn().Err(err).Msg("loading recent searches")
	}
	s.side.Clear()
	for _, q := range recent {
		query := q
		s.side.AddItem("↺ "+query, "", 0, func() { s.submit(query) })
	}

	s.Go(func() {
		ctx, cancel := context.WithTimeout(s.app.Ctx, 10*time.Second)
		defer cancel()
		trending, err := s.app.API.TrendingSearches(ctx, 10)
		if err != nil {
			s.log.Warn().Err(err).Msg("loading trending searches")
			return
		}
		s.Update(func() {
			for _, t := range trending {
				entry := t
				s.side.AddItem(fmt.Sprintf("▲ %s (%d)", entry.Query, entry.Count), "", 0, func() {
					s.submit(entry.Query)
				})
			}
		})
	})
}

// autocomplete answers tview's suggestion callback. tview calls it
// synchronously on the event loop for every keystroke, so it only ever
// serves from the cache; the first sighting of a prefix kicks off a
// background fetch that re-triggers the dropdown once results land.
func (s *SearchScreen) autocomplete(current string) []string {
	if len(current) < 2 {
		return nil
	}
	s.sugMu.Lock()
	cached, ok := s.suggestions[current]
	if !ok {
		s.suggestions[current] = nil // marks the fetch in flight
	}
	s.sugMu.Unlock()
	if ok {
		return cached
	}

	s.Go(func() {
		ctx, cancel := context.WithTimeout(s.app.Ctx, 3*time.Second)
		defer cancel()
		got, err := s.app.API.Autocomplete(ctx, current, 8)
		s.sugMu.Lock()
		if err != nil {
			delete(s.suggestions, current) // retry on the next keystroke
		} else {
			s.suggestions[current] = got
		}
		s.sugMu.Unlock()
		if err != nil || len(got) == 0 {
			return
		}
		s.Update(func() { s.input.Autocomplete() })
	})
	return nil
}

func (s *SearchScreen) submit(query string) {
	if query == "" {
		return
	}
	s.input.SetText(query)
	if err := s.app.Store.AddRecentSearch(query); err != nil {
		s.log.Warn().Err(err).Msg("saving recent search")
	}

	s.Go(func() {
		ctx, cancel := context.WithTimeout(s.app.Ctx, 15*time.Second)
		defer cancel()
		posts, meta, err := s.app.API.Search(ctx, api.SearchParams{
			Query:   query,
			PerPage: 20,
		})
		if err != nil {
			s.Update(func() {
				s.ShowError("Search failed", err.Error(), "OK", 0, nil)
			})
			return
		}
		s.app.Tracker.Search(query, int(meta.Total))
		s.Update(func() {
			s.renderResults(query, posts, meta)
			s.Load()
		})
	})
}

func (s *SearchScreen) renderResults(query string, posts []models.Post, meta *models.PageMeta) {
	s.results.Clear()
	s.results.SetTitle(fmt.Sprintf("[ %d results for %q ]", meta.Total, query))
	for _, p := range posts {
		post := p
		s.results.AddItem(post.Title, post.Excerpt, 0, func() {
			s.app.Tracker.PostView(post.ID)
			s.SwitchToPost(post.ID)
		})
	}
	if len(posts) > 0 {
		s.App.SetFocus(s.results)
	}
}
