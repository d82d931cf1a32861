package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/llehouerou/reprise/internal/app"
	"github.com/llehouerou/reprise/internal/errmsg"
	"github.com/llehouerou/reprise/internal/logging"
	"github.com/llehouerou/reprise/internal/player"
	"github.com/llehouerou/reprise/internal/stderr"
)

var playCmd = &cobra.Command{
	Use:   "play [files or directories...]",
	Short: "Replace the queue with the given files and start playing",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runPlayer(args)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Restore the saved session, paused where it was left",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runPlayer(nil)
	},
}

func init() {
	rootCmd.AddCommand(playCmd, resumeCmd)
	rootCmd.RunE = resumeCmd.RunE
}

// runPlayer starts the session and its services, loads paths (or restores
// the saved session when paths is empty) and runs the TUI until quit.
func runPlayer(paths []string) error {
	logger, logFile, err := logging.Setup(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logFile.Close()

	if err := stderr.Start(logger); err != nil {
		logger.Warn("stderr capture unavailable", "error", err)
	}
	defer stderr.Stop()

	store, err := openStore()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := app.NewRuntime(cfg, store, player.New(), logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	if len(paths) > 0 {
		if err := rt.Load(paths); err != nil {
			return errors.New(errmsg.Format(errmsg.OpQueueLoad, err))
		}
	} else if !rt.Restore(ctx) {
		logger.Info("no saved session to resume")
	}

	feed := app.NewFeed(rt.Bridge)
	rt.Start(ctx)

	model := app.New(rt.Session, rt.Bridge.NowPlaying(), feed.C())
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
