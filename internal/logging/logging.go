// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/lmittmann/tint"
)

const logFileName = "reprise.log"

// Options selects where and how much to log.
type Options struct {
	Level string // debug, info, warn, error
	// File is the log file path. Empty means the XDG state directory.
	File string
	// Console logs to stderr instead of a file. Use it only when no TUI
	// owns the terminal.
	Console bool
}

// ParseLevel converts a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New returns a tint logger writing to w.
func New(w io.Writer, level slog.Level, color bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    !color,
	}))
}

// DefaultPath returns the XDG state location of the log file.
func DefaultPath() (string, error) {
	return xdg.StateFile(filepath.Join("reprise", logFileName))
}

// Setup builds the logger described by opts and installs it as the slog
// default. The returned closer releases the log file, if any.
func Setup(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	if opts.Console {
		logger := New(os.Stderr, level, true)
		slog.SetDefault(logger)
		return logger, io.NopCloser(nil), nil
	}

	path := opts.File
	if path == "" {
		if path, err = DefaultPath(); err != nil {
			return nil, nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}

	logger := New(f, level, false)
	slog.SetDefault(logger)
	return logger, f, nil
}
