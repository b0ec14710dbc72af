package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"newskoo/internal/api"
	"newskoo/internal/models"
)

// AdminScreen is the editor console: content management on the left
// menu, the active section on the right. Reaching it at all requires
// the editor role (see UI.SwitchToAdmin); the analytics section
// additionally requires admin.
type AdminScreen struct {
	*UI
	layout *tview.Flex
	menu   *tview.List
	table  *tview.Table
	detail *tview.TextView

	section string
}

func NewAdminScreen(u *UI) *AdminScreen {
	a := &AdminScreen{UI: u}

	a.menu = tview.NewList().ShowSecondaryText(false)
	a.menu.SetBorder(true).
		SetTitle("[ Admin ]").
		SetTitleColor(u.Theme.GetColor("primary")).
		SetBorderColor(u.Theme.GetColor("border"))

	sections := []struct {
		label string
		name  string
	}{
		{"Dashboard", "dashboard"},
		{"Posts", "posts"},
		{"Drafts", "drafts"},
		{"Categories", "categories"},
		{"Tags", "tags"},
		{"Writing styles", "styles"},
		{"Images", "images"},
		{"Users", "users"},
		{"Analytics", "analytics"},
	}
	for _, sec := range sections {
		name := sec.name
		a.menu.AddItem(sec.label, "", 0, func() { a.open(name) })
	}
	a.menu.AddItem("Log out", "", 0, func() {
		a.Go(func() {
			ctx, cancel := context.WithTimeout(a.app.Ctx, 10*time.Second)
			defer cancel()
			a.app.Auth.Logout(ctx)
			a.app.RT.Disconnect()
			a.app.connectRealtime()
			a.Update(func() { a.SwitchToHome() })
		})
	})

	a.table = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	a.table.SetBorder(true).
		SetBorderColor(u.Theme.GetColor("border"))

	a.detail = tview.NewTextView().SetDynamicColors(true)
	a.detail.SetBorder(true).
		SetBorderColor(u.Theme.GetColor("border"))

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.table, 0, 2, true).
		AddItem(a.detail, 0, 1, false)

	a.layout = tview.NewFlex().
		AddItem(a.menu, 24, 0, true).
		AddItem(right, 0, 1, false)

	a.layout.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyEscape {
			u.SwitchToHome()
			return nil
		}
		return ev
	})
	return a
}

func (a *AdminScreen) Load() {
	a.open("dashboard")
}

func (a *AdminScreen) open(section string) {
	if (section == "analytics" || section == "users") && !a.app.Auth.Require(models.RoleAdmin) {
		a.ShowToast("Admin access required", 2*time.Second, nil)
		return
	}
	a.section = section
	a.table.Clear()
	a.table.SetInputCapture(nil)
	a.detail.SetText("")
	switch section {
	case "dashboard", "analytics":
		a.loadAnalytics(section == "analytics")
	case "posts":
		a.loadPosts()
	case "drafts":
		a.loadDrafts()
	case "categories":
		a.loadCategories()
	case "tags":
		a.loadTags()
	case "styles":
		a.loadStyles()
	case "images":
		a.loadImages()
	case "users":
		a.loadUsers()
	}
}

func (a *AdminScreen) loadAnalytics(full bool) {
	a.table.SetTitle("[ Overview ]")
	a.Go(func() {
		ctx, cancel := context.WithTimeout(a.app.Ctx, 15*time.Second)
		defer cancel()
		overview, err := a.app.API.AnalyticsOverview(ctx)
		if err != nil {
			a.showLoadError(err)
			return
		}
		var stats *models.ContentStats
		var traffic *models.TrafficStats
		if full {
			if stats, err = a.app.API.ContentStats(ctx, "30d"); err != nil {
				a.log.Warn().Err(err).Msg("loading content stats")
			}
			if traffic, err = a.app.API.TrafficStats(ctx, "30d"); err != nil {
				a.log.Warn().Err(err).Msg("loading traffic stats")
			}
		}
		a.Update(func() {
			rows := [][2]string{
				{"Posts", fmt.Sprint(overview.TotalPosts)},
				{"Published", fmt.Sprint(overview.PublishedPosts)},
				{"Drafts", fmt.Sprint(overview.TotalDrafts)},
				{"Users", fmt.Sprint(overview.TotalUsers)},
				{"Categories", fmt.Sprint(overview.TotalCategories)},
				{"Tags", fmt.Sprint(overview.TotalTags)},
			}
			a.setHeader("Metric", "Value")
			for i, r := range rows {
				a.table.SetCellSimple(i+1, 0, r[0])
				a.table.SetCellSimple(i+1, 1, r[1])
			}
			if stats != nil {
				a.detail.SetText(fmt.Sprintf(
					" AI-generated: %.1f%%  ·  manually written: %.1f%%\n Top categories: %s",
					stats.AIGeneratedPct, stats.ManualWrittenPct, labelSummary(stats.ByCategory)))
			}
			if traffic != nil {
				fmt.Fprintf(a.detail, "\n Sessions (30d): %d  ·  avg dwell: %.0fs",
					traffic.UniqueSessions, traffic.AvgDurationSec)
			}
		})
	})
}

func (a *AdminScreen) loadPosts() {
	a.table.SetTitle("[ Posts — Enter: publish/hide toggle · d: delete ]")
	a.Go(func() {
		ctx, cancel := context.WithTimeout(a.app.Ctx, 15*time.Second)
		defer cancel()
		posts, _, err := a.app.API.ListPosts(ctx, api.ListPostsParams{PerPage: 50, Sort: "created_at", Order: "desc"})
		if err != nil {
			a.showLoadError(err)
			return
		}
		a.Update(func() {
			a.setHeader("ID", "Title", "Status", "Views")
			for i, p := range posts {
				post := p
				a.table.SetCellSimple(i+1, 0, fmt.Sprint(post.ID))
				a.table.SetCellSimple(i+1, 1, post.Title)
				a.table.SetCellSimple(i+1, 2, string(post.Status))
				a.table.SetCellSimple(i+1, 3, fmt.Sprint(post.Views))
			}
			a.table.SetSelectedFunc(func(row, col int) {
				if row < 1 || row > len(posts) {
					return
				}
				a.togglePost(posts[row-1])
			})
			a.table.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
				if ev.Rune() != 'd' {
					return ev
				}
				row, _ := a.table.GetSelection()
				if row >= 1 && row <= len(posts) {
					a.deletePost(posts[row-1])
				}
				return nil
			})
			a.App.SetFocus(a.table)
		})
	})
}

// togglePost publishes drafts/hidden posts and hides published ones.
func (a *AdminScreen) togglePost(post models.Post) {
	a.Go(func() {
		ctx, cancel := context.WithTimeout(a.app.Ctx, 10*time.Second)
		defer cancel()
		var err error
		if post.Status == models.PostPublished {
			_, err = a.app.API.HidePost(ctx, post.ID)
		} else {
			_, err = a.app.API.PublishPost(ctx, post.ID)
		}
		if err != nil {
			a.Update(func() { a.ShowError("Update failed", err.Error(), "OK", 0, nil) })
			return
		}
		a.Update(func() { a.open("posts") })
	})
}

func (a *AdminScreen) deletePost(post models.Post) {
	modal := tview.NewModal().
		SetText(fmt.Sprintf("Delete %q? This cannot be undone.", post.Title)).
		AddButtons([]string{"Delete", "Cancel"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			a.Pages.RemovePage("confirm")
			if buttonLabel != "Delete" {
				return
			}
			a.Go(func() {
				ctx, cancel := context.WithTimeout(a.app.Ctx, 10*time.Second)
				defer cancel()
				if err := a.app.API.DeletePost(ctx, post.ID); err != nil {
					a.Update(func() { a.ShowError("Delete failed", err.Error(), "OK", 0, nil) })
					return
				}
				a.Update(func() { a.open("posts") })
			})
		})
	a.Pages.AddPage("confirm", modal, true, true)
	a.App.SetFocus(modal)
}

func (a *AdminScreen) loadDrafts() {
	a.table.SetTitle("[ Drafts — Enter: publish ]")
	a.Go(func() {
		ctx, cancel := context.WithTimeout(a.app.Ctx, 15*time.Second)
		defer cancel()
		drafts, _, err := a.app.API.ListDrafts(ctx, api.ListDraftsParams{PerPage: 50})
		if err != nil {
			a.showLoadError(err)
			return
		}
		a.Update(func() {
			a.setHeader("ID", "Title", "AI", "Updated")
			for i, d := range drafts {
				a.table.SetCellSimple(i+1, 0, fmt.Sprint(d.ID))
				a.table.SetCellSimple(i+1, 1, d.Title)
				a.table.SetCellSimple(i+1, 2, boolMark(d.AIGenerated))
				a.table.SetCellSimple(i+1, 3, d.UpdatedAt.Format("2006-01-02 15:04"))
			}
			a.table.SetSelectedFunc(func(row, col int) {
				if row < 1 || row > len(drafts) {
					return
				}
				a.publishDraft(drafts[row-1].ID)
			})
			a.App.SetFocus(a.table)
		})
	})
}

func (a *AdminScreen) publishDraft(id int64) {
	a.Go(func() {
		ctx, cancel := context.WithTimeout(a.app.Ctx, 10*time.Second)
		defer cancel()
		post, err := a.app.API.PublishDraft(ctx, id)
		if err != nil {
			a.Update(func() { a.ShowError("Publish failed", err.Error(), "OK", 0, nil) })
			return
		}
		a.Update(func() {
			a.ShowToast("Published "+post.Title, 2*time.Second, nil)
			a.open("drafts")
		})
	})
}

func (a *AdminScreen) loadCategories() {
	a.table.SetTitle("[ Categories ]")
	a.Go(func() {
		ctx, cancel := context.WithTimeout(a.app.Ctx, 15*time.Second)
		defer cancel()
		cats, _, err := a.app.API.ListCategories(ctx, 1, 100)
		if err != nil {
			a.showLoadError(err)
			return
		}
		a.Update(func() {
			a.setHeader("ID", "Name", "Slug", "Posts")
			for i, c := range cats {
				a.table.SetCellSimple(i+1, 0, fmt.Sprint(c.ID))
				a.table.SetCellSimple(i+1, 1, c.Name)
				a.table.SetCellSimple(i+1, 2, c.Slug)
				a.table.SetCellSimple(i+1, 3, fmt.Sprint(c.PostCount))
			}
			a.App.SetFocus(a.table)
		})
	})
}

func (a *AdminScreen) loadTags() {
	a.table.SetTitle("[ Tags ]")
	a.Go(func() {
		ctx, cancel := context.WithTimeout(a.app.Ctx, 15*time.Second)
		defer cancel()
		tags, _, err := a.app.API.ListTags(ctx, 1, 100)
		if err != nil {
			a.showLoadError(err)
			return
		}
		a.Update(func() {
			a.setHeader("ID", "Name", "Posts")
			for i, t := range tags {
				a.table.SetCellSimple(i+1, 0, fmt.Sprint(t.ID))
				a.table.SetCellSimple(i+1, 1, t.Name)
				a.table.SetCellSimple(i+1, 2, fmt.Sprint(t.PostCount))
			}
			a.App.SetFocus(a.table)
		})
	})
}

func (a *AdminScreen) loadStyles() {
	a.table.SetTitle("[ Writing styles ]")
	a.Go(func() {
		ctx, cancel := context.WithTimeout(a.app.Ctx, 15*time.Second)
		defer cancel()
		styles, err := a.app.API.ListWritingStyles(ctx)
		if err != nil {
			a.showLoadError(err)
			return
		}
		a.Update(func() {
			a.setHeader("ID", "Name", "Tone")
			for i, s := range styles {
				a.table.SetCellSimple(i+1, 0, fmt.Sprint(s.ID))
				a.table.SetCellSimple(i+1, 1, s.Name)
				a.table.SetCellSimple(i+1, 2, s.Tone)
			}
			a.App.SetFocus(a.table)
		})
	})
}

func (a *AdminScreen) loadImages() {
	a.table.SetTitle("[ Image library ]")
	a.Go(func() {
		ctx, cancel := context.WithTimeout(a.app.Ctx, 15*time.Second)
		defer cancel()
		images, _, err := a.app.API.ListImages(ctx, 1, 50)
		if err != nil {
			a.showLoadError(err)
			return
		}
		a.Update(func() {
			a.setHeader("ID", "Filename", "Size", "Uploaded")
			for i, img := range images {
				a.table.SetCellSimple(i+1, 0, fmt.Sprint(img.ID))
				a.table.SetCellSimple(i+1, 1, img.Filename)
				a.table.SetCellSimple(i+1, 2, fmt.Sprintf("%dx%d", img.Width, img.Height))
				a.table.SetCellSimple(i+1, 3, img.UploadedAt.Format("2006-01-02"))
			}
			a.App.SetFocus(a.table)
		})
	})
}

func (a *AdminScreen) loadUsers() {
	a.table.SetTitle("[ Users — Enter: cycle role ]")
	a.Go(func() {
		ctx, cancel := context.WithTimeout(a.app.Ctx, 15*time.Second)
		defer cancel()
		users, _, err := a.app.API.ListUsers(ctx, api.ListUsersParams{PerPage: 50})
		if err != nil {
			a.showLoadError(err)
			return
		}
		a.Update(func() {
			a.setHeader("ID", "Username", "Email", "Role")
			for i, u := range users {
				a.table.SetCellSimple(i+1, 0, fmt.Sprint(u.ID))
				a.table.SetCellSimple(i+1, 1, u.Username)
				a.table.SetCellSimple(i+1, 2, u.Email)
				a.table.SetCellSimple(i+1, 3, string(u.Role))
			}
			a.table.SetSelectedFunc(func(row, col int) {
				if row < 1 || row > len(users) {
					return
				}
				a.cycleRole(users[row-1])
			})
			a.App.SetFocus(a.table)
		})
	})
}

func (a *AdminScreen) cycleRole(user models.User) {
	if self := a.app.Auth.User(); self != nil && self.ID == user.ID {
		a.ShowToast("Cannot change your own role", 2*time.Second, nil)
		return
	}
	next := map[models.Role]models.Role{
		models.RoleUser:   models.RoleEditor,
		models.RoleEditor: models.RoleAdmin,
		models.RoleAdmin:  models.RoleUser,
	}[user.Role]
	if next == "" {
		next = models.RoleUser
	}
	a.Go(func() {
		ctx, cancel := context.WithTimeout(a.app.Ctx, 10*time.Second)
		defer cancel()
		if _, err := a.app.API.UpdateUserRole(ctx, user.ID, next); err != nil {
			a.Update(func() { a.ShowError("Role change failed", err.Error(), "OK", 0, nil) })
			return
		}
		a.Update(func() { a.open("users") })
	})
}

func (a *AdminScreen) setHeader(cols ...string) {
	for i, c := range cols {
		cell := tview.NewTableCell(c).
			SetTextColor(a.Theme.GetColor("primary")).
			SetSelectable(false)
		a.table.SetCell(0, i, cell)
	}
}

func (a *AdminScreen) showLoadError(err error) {
	a.Update(func() {
		a.ShowError("Load failed", err.Error(), "OK", 0, nil)
	})
}

func labelSummary(counts []models.LabelCount) string {
	out := ""
	for i, c := range counts {
		if i == 3 {
			break
		}
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s (%d)", c.Label, c.Count)
	}
	return out
}

func boolMark(b bool) string {
	if b {
		return "✔"
	}
	return ""
}
