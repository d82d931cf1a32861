// Package cli implements the reprise command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/llehouerou/reprise/internal/config"
	"github.com/llehouerou/reprise/internal/state"
)

var (
	cfgFile  string
	logLevel string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "reprise",
	Short: "Terminal music player that picks up where you left off",
	Long: `Reprise plays a queue of local audio files and keeps the session
(queue, shuffle order, position) across restarts.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initConfig()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.config/reprise/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return nil
}

// openStore opens the state database named by the config.
func openStore() (*state.Manager, error) {
	store, err := state.Open(cfg.State.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	return store, nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
