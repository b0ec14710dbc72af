package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"newskoo/internal/api"
	"newskoo/internal/auth"
	"newskoo/internal/config"
	"newskoo/internal/logging"
	"newskoo/internal/realtime"
	"newskoo/internal/store"
	"newskoo/internal/tracking"
)

// App wires the client services to the terminal UI.
type App struct {
	Ctx     context.Context
	Cfg     *config.Config
	Store   *store.Store
	API     *api.Client
	Auth    *auth.Manager
	RT      *realtime.Client
	Tracker *tracking.Tracker
	UI      *UI
}

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "newskoo:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logging.Setup(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}

	st, err := store.OpenDefault()
	if err != nil {
		return err
	}
	defer st.Close()

	app := &App{Ctx: ctx, Cfg: cfg, Store: st}

	app.API, err = api.New(cfg.APIBaseURL, st, log,
		api.WithAuthExpiredHandler(func() { app.onSessionExpired() }))
	if err != nil {
		return err
	}
	app.Auth = auth.NewManager(app.API, st, log)

	realtimeURL := cfg.RealtimeURL
	if realtimeURL == "" {
		realtimeURL = cfg.APIBaseURL + "/ws"
	}
	app.RT = realtime.NewClient(realtimeURL, nil, log)

	sessionID, err := st.ClientSessionID()
	if err != nil {
		return err
	}
	app.Tracker = tracking.New(app.API, sessionID, 0, log)
	defer app.Tracker.Stop()

	app.UI = NewUI(app, log)

	// Restore a previous session before the first screen renders.
	bootCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := app.Auth.Bootstrap(bootCtx); err != nil {
		log.Warn().Err(err).Msg("session restore failed")
	}
	cancel()
	app.connectRealtime()

	defer app.RT.Disconnect()
	return app.UI.Run()
}

// connectRealtime starts the live connection. An anonymous reader
// connects without a token; a logged-in user authenticates.
func (a *App) connectRealtime() {
	token, err := a.Auth.AccessToken()
	if err != nil {
		token = ""
	}
	a.RT.Connect(a.Ctx, token)
}

// onSessionExpired is the forced-logout path: the API client already
// cleared the tokens after a failed refresh.
func (a *App) onSessionExpired() {
	a.Auth.SessionExpired()
	a.UI.App.QueueUpdateDraw(func() {
		a.UI.SwitchToLogin()
		a.UI.ShowError("Session expired", "Please log in again.", "OK", 0, nil)
	})
}
