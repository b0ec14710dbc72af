package main

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rivo/tview"
	"github.com/rs/zerolog"

	"newskoo/internal/models"
	"newskoo/internal/ui"
)

// Page names registered on the root Pages.
const (
	pageLogin  = "login"
	pageHome   = "home"
	pagePost   = "post"
	pageSearch = "search"
	pageAdmin  = "admin"
)

type UI struct {
	App   *tview.Application
	Pages *tview.Pages
	Theme *ui.Theme

	app *App
	log zerolog.Logger

	LoginScreen  *LoginScreen
	HomeScreen   *HomeScreen
	PostScreen   *PostScreen
	SearchScreen *SearchScreen
	AdminScreen  *AdminScreen
}

func NewUI(app *App, log zerolog.Logger) *UI {
	tviewApp := tview.NewApplication().EnableMouse(true)

	tview.Borders.TopLeftFocus = '╭'
	tview.Borders.TopRightFocus = '╮'
	tview.Borders.BottomLeftFocus = '╰'
	tview.Borders.BottomRightFocus = '╯'

	theme := loadTheme(app, log)
	tview.Styles.PrimitiveBackgroundColor = theme.GetColor("background")
	tview.Styles.TitleColor = theme.GetColor("primary")

	u := &UI{
		App:   tviewApp,
		Theme: theme,
		app:   app,
		log:   log,
	}

	u.LoginScreen = NewLoginScreen(u)
	u.HomeScreen = NewHomeScreen(u)
	u.PostScreen = NewPostScreen(u)
	u.SearchScreen = NewSearchScreen(u)
	u.AdminScreen = NewAdminScreen(u)

	u.Pages = tview.NewPages().
		AddPage(pageLogin, u.LoginScreen.layout, true, false).
		AddPage(pageHome, u.HomeScreen.layout, true, true).
		AddPage(pagePost, u.PostScreen.layout, true, false).
		AddPage(pageSearch, u.SearchScreen.layout, true, false).
		AddPage(pageAdmin, u.AdminScreen.layout, true, false)

	tviewApp.SetRoot(u.Pages, true).SetFocus(u.Pages)
	return u
}

func loadTheme(app *App, log zerolog.Logger) *ui.Theme {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ui.DefaultTheme()
	}
	theme, err := ui.LoadThemeFromDir(filepath.Join(homeDir, ".newskoo"), app.Cfg.Theme)
	if err != nil {
		log.Warn().Err(err).Msg("loading theme, using default")
		return ui.DefaultTheme()
	}
	return theme
}

func (u *UI) Run() error {
	u.HomeScreen.Load()
	return u.App.Run()
}

func (u *UI) SwitchToLogin() {
	u.Pages.SwitchToPage(pageLogin)
}

func (u *UI) SwitchToHome() {
	u.Pages.SwitchToPage(pageHome)
	u.HomeScreen.Load()
}

func (u *UI) SwitchToSearch() {
	u.Pages.SwitchToPage(pageSearch)
	u.SearchScreen.Load()
}

// SwitchToAdmin is the role-gated route: readers are bounced back to
// the home screen instead of seeing a 403. The backend still enforces
// authorization on every request.
func (u *UI) SwitchToAdmin() {
	if !u.app.Auth.IsAuthenticated() {
		u.SwitchToLogin()
		return
	}
	if !u.app.Auth.Require(models.RoleEditor) {
		u.SwitchToHome()
		u.ShowToast("Editor access required", 2*time.Second, nil)
		return
	}
	u.Pages.SwitchToPage(pageAdmin)
	u.AdminScreen.Load()
}

func (u *UI) SwitchToPost(postID int64) {
	u.Pages.SwitchToPage(pagePost)
	u.PostScreen.Show(postID)
}

// Go runs fn on a fresh goroutine behind the crash boundary: a panic is
// logged and the UI resets to the home screen instead of tearing down
// the whole app.
func (u *UI) Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				u.log.Error().Any("panic", r).Bytes("stack", debug.Stack()).Msg("recovered panic")
				u.App.QueueUpdateDraw(func() {
					u.Pages.SwitchToPage(pageHome)
					u.ShowError("Something went wrong", "The view crashed and was reset.", "OK", 0, nil)
				})
			}
		}()
		fn()
	}()
}

// Update queues a draw-safe UI mutation from any goroutine.
func (u *UI) Update(fn func()) {
	u.App.QueueUpdateDraw(fn)
}

func (u *UI) ShowToast(message string, duration time.Duration, onDismiss func()) {
	modal := tview.NewModal()
	modal.SetText(message).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			u.Pages.RemovePage("toast")
			if onDismiss != nil {
				onDismiss()
			}
		})
	modal.SetBackgroundColor(u.Theme.GetColor("background")).
		SetBorder(true).
		SetBorderColor(u.Theme.GetColor("primary"))

	u.Pages.AddPage("toast", modal, true, true)
	u.App.SetFocus(modal)

	if duration > 0 {
		go func() {
			time.Sleep(duration)
			u.App.QueueUpdateDraw(func() {
				u.Pages.RemovePage("toast")
				if onDismiss != nil {
					onDismiss()
				}
			})
		}()
	}
}

func (u *UI) ShowError(title, message, actionName string, duration time.Duration, onDismiss func()) {
	modal := tview.NewModal()
	modal.SetText(message).
		AddButtons([]string{actionName}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			u.Pages.RemovePage("error")
			if onDismiss != nil {
				onDismiss()
			}
		})
	modal.SetBackgroundColor(u.Theme.GetColor("background")).
		SetBorder(true).
		SetBorderColor(u.Theme.GetColor("error")).
		SetTitle(title).
		SetTitleColor(u.Theme.GetColor("error")).
		SetTitleAlign(tview.AlignCenter)

	u.Pages.AddPage("error", modal, true, true)
	u.App.SetFocus(modal)

	if duration > 0 {
		go func() {
			time.Sleep(duration)
			u.App.QueueUpdateDraw(func() {
				u.Pages.RemovePage("error")
				if onDismiss != nil {
					onDismiss()
				}
			})
		}()
	}
}
