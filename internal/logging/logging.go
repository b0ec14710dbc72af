// Package logging configures the process-wide zerolog logger. The TUI
// owns the terminal, so logs go to a file instead of stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Setup opens the log file and returns a configured logger. An empty
// path falls back to ~/.newskoo/newskoo.log; "-" logs to stderr, which
// is only useful when the TUI is not running.
func Setup(path string, level string) (zerolog.Logger, error) {
	var w io.Writer
	switch path {
	case "-":
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	case "":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return zerolog.Nop(), err
		}
		path = filepath.Join(homeDir, ".newskoo", "newskoo.log")
		fallthrough
	default:
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return zerolog.Nop(), fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("open log file: %w", err)
		}
		w = f
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
