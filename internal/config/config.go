package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/reprise/internal/playback"
)

const envPrefix = "REPRISE_"

type Config struct {
	Log           LogConfig           `koanf:"log"`
	Playback      PlaybackConfig      `koanf:"playback"`
	Checkpoint    CheckpointConfig    `koanf:"checkpoint"`
	State         StateConfig         `koanf:"state"`
	MPRIS         MPRISConfig         `koanf:"mpris"`
	Notifications NotificationsConfig `koanf:"notifications"`
	HTTP          HTTPConfig          `koanf:"http"`
	Library       LibraryConfig       `koanf:"library"`
}

// LogConfig controls the log output.
type LogConfig struct {
	Level string `koanf:"level"` // "debug", "info", "warn", "error"
	File  string `koanf:"file"`  // empty means the XDG state directory
}

// PlaybackConfig tunes the playback session.
type PlaybackConfig struct {
	TickInterval     time.Duration `koanf:"tick_interval"`     // how often elapsed time is refreshed
	Loop             bool          `koanf:"loop"`              // keep playing after the last item
	RestartThreshold time.Duration `koanf:"restart_threshold"` // "previous" restarts the item past this point
	HistorySize      int           `koanf:"history_size"`      // undo depth for queue edits
}

// CheckpointConfig controls session persistence.
type CheckpointConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
}

// StateConfig locates the state database.
type StateConfig struct {
	Path string `koanf:"path"` // empty means the XDG data directory
}

// MPRISConfig controls the D-Bus media player interface.
type MPRISConfig struct {
	Enabled bool `koanf:"enabled"`
}

// NotificationsConfig controls desktop notifications.
type NotificationsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// HTTPConfig controls the local control/status server.
type HTTPConfig struct {
	Addr string `koanf:"addr"` // e.g. "127.0.0.1:7420"; empty disables the server
}

// LibraryConfig controls the file watcher.
type LibraryConfig struct {
	Watch bool `koanf:"watch"` // drop queued files that disappear from disk
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Playback: PlaybackConfig{
			TickInterval:     playback.DefaultTickInterval,
			RestartThreshold: playback.DefaultRestartThreshold,
			HistorySize:      playback.DefaultHistorySize,
		},
		Checkpoint: CheckpointConfig{
			Enabled:  true,
			Interval: 500 * time.Millisecond,
		},
		MPRIS:         MPRISConfig{Enabled: true},
		Notifications: NotificationsConfig{Enabled: true},
		Library:       LibraryConfig{Watch: true},
	}
}

// Load reads the config files, then REPRISE_* environment variables.
func Load() (*Config, error) {
	return load(getConfigPaths())
}

// LoadFrom reads a single explicit config file, then the environment.
// Unlike Load, a missing file is an error.
func LoadFrom(path string) (*Config, error) {
	path = expandPath(path)
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return load([]string{path})
}

func load(configPaths []string) (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	// REPRISE_PLAYBACK__TICK_INTERVAL -> playback.tick_interval
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
}

// normalize replaces out-of-range values with defaults and expands paths.
func (c *Config) normalize() {
	def := Default()
	if c.Playback.TickInterval <= 0 {
		c.Playback.TickInterval = def.Playback.TickInterval
	}
	if c.Playback.RestartThreshold < 0 {
		c.Playback.RestartThreshold = def.Playback.RestartThreshold
	}
	if c.Playback.HistorySize <= 0 {
		c.Playback.HistorySize = def.Playback.HistorySize
	}
	if c.Checkpoint.Interval <= 0 {
		c.Checkpoint.Interval = def.Checkpoint.Interval
	}
	c.State.Path = expandPath(c.State.Path)
	c.Log.File = expandPath(c.Log.File)
}

// LoopMode returns the configured loop policy.
func (c *Config) LoopMode() playback.LoopMode {
	if c.Playback.Loop {
		return playback.LoopQueue
	}
	return playback.LoopOff
}

// HTTPEnabled returns true if the local HTTP server should run.
func (c *Config) HTTPEnabled() bool {
	return c.HTTP.Addr != ""
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/reprise/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "reprise", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
