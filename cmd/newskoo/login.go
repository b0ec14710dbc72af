package main

import (
	"context"
	"time"

	"github.com/rivo/tview"
)

var banner = `
 _   _                   _  __
| \ | | _____      _____| |/ /___   ___
|  \| |/ _ \ \ /\ / / __| ' // _ \ / _ \
| |\  |  __/\ V  V /\__ \ . \ (_) | (_) |
|_| \_|\___| \_/\_/ |___/_|\_\___/ \___/
`

type LoginScreen struct {
	*UI
	layout *tview.Flex
	form   *tview.Form
}

func NewLoginScreen(u *UI) *LoginScreen {
	l := &LoginScreen{UI: u}

	header := tview.NewTextView().
		SetText(banner).
		SetTextAlign(tview.AlignCenter).
		SetTextColor(u.Theme.GetColor("accent"))

	l.form = tview.NewForm().
		AddInputField("Username:", "", 24, nil, nil).
		AddPasswordField("Password:", "", 24, '*', nil)
	bg, fieldBg, buttonBg, buttonText, _ := u.Theme.FormColors()
	l.form.SetBackgroundColor(bg)
	l.form.SetFieldBackgroundColor(fieldBg)
	l.form.SetButtonBackgroundColor(buttonBg)
	l.form.SetButtonTextColor(buttonText)

	l.form.AddButton("Login", l.submit)
	l.form.AddButton("Browse as guest", func() { u.SwitchToHome() })
	l.form.SetBorder(true).
		SetTitle("[ Sign in to NewsKoo ]").
		SetTitleColor(u.Theme.GetColor("primary")).
		SetBorderColor(u.Theme.GetColor("border"))

	l.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(header, 7, 0, false).
		AddItem(centered(l.form, 46, 11), 0, 2, true).
		AddItem(nil, 0, 1, false)
	return l
}

func (l *LoginScreen) submit() {
	username := l.form.GetFormItemByLabel("Username:").(*tview.InputField).GetText()
	password := l.form.GetFormItemByLabel("Password:").(*tview.InputField).GetText()
	if err := validateCredentials(username, password); err != nil {
		l.ShowError("Login failed", err.Error(), "Retry", 0, nil)
		return
	}

	l.Go(func() {
		ctx, cancel := context.WithTimeout(l.app.Ctx, 15*time.Second)
		defer cancel()
		user, err := l.app.Auth.Login(ctx, username, password)
		if err != nil {
			l.Update(func() {
				l.ShowError("Login failed", err.Error(), "Retry", 0, nil)
			})
			return
		}
		// reconnect the realtime feed as the authenticated user
		l.app.RT.Disconnect()
		l.app.connectRealtime()
		l.Update(func() {
			l.ShowToast("Welcome back, "+user.Username, 2*time.Second, nil)
			l.SwitchToHome()
		})
	})
}

// centered wraps p in spacers so it renders at a fixed size mid-screen.
func centered(p tview.Primitive, width, height int) tview.Primitive {
	row := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(p, width, 0, true).
		AddItem(nil, 0, 1, false)
	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(row, height, 0, true).
		AddItem(nil, 0, 1, false)
}
