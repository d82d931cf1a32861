package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/reprise/internal/playback"
	"github.com/llehouerou/reprise/internal/ui/playerbar"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the saved session",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the saved session",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusJSON, "json", "j", false, "output as JSON")
	rootCmd.AddCommand(statusCmd, clearCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.LoadSnapshot(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read saved session: %w", err)
	}
	if statusJSON {
		return writeStatusJSON(os.Stdout, snap)
	}
	return writeStatus(os.Stdout, snap, time.Now())
}

// statusView is the JSON form of the saved session.
type statusView struct {
	Saved       bool          `json:"saved"`
	Title       string        `json:"title,omitempty"`
	Author      string        `json:"author,omitempty"`
	Locator     string        `json:"locator,omitempty"`
	Index       int           `json:"index"`
	QueueLength int           `json:"queue_length"`
	Position    time.Duration `json:"position"`
	Duration    time.Duration `json:"duration"`
	Shuffle     bool          `json:"shuffle"`
	Loop        string        `json:"loop"`
	SavedAt     *time.Time    `json:"saved_at,omitempty"`
}

func newStatusView(snap *playback.Snapshot) statusView {
	if snap == nil {
		return statusView{Index: -1, Loop: playback.LoopOff.String()}
	}
	v := statusView{
		Saved:       true,
		Index:       snap.Queue.CurrentIndex,
		QueueLength: len(snap.Queue.Items),
		Position:    snap.Position,
		Duration:    snap.Duration,
		Shuffle:     snap.Queue.ShuffleActive,
		Loop:        snap.Loop.String(),
		SavedAt:     &snap.SavedAt,
	}
	if cur := snap.Current(); cur != nil {
		v.Title = cur.Title
		v.Author = cur.Author
		v.Locator = cur.SourceLocator
	}
	return v
}

func writeStatusJSON(w io.Writer, snap *playback.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newStatusView(snap))
}

func writeStatus(w io.Writer, snap *playback.Snapshot, now time.Time) error {
	v := newStatusView(snap)
	if !v.Saved {
		_, err := fmt.Fprintln(w, "No saved session")
		return err
	}

	title := v.Title
	if title == "" {
		title = v.Locator
	}
	if v.Author != "" {
		title += " · " + v.Author
	}
	bar := playerbar.RenderProgressBar(playerbar.State{
		Position: v.Position,
		Duration: v.Duration,
	}, 50)

	modes := "shuffle off"
	if v.Shuffle {
		modes = "shuffle on"
	}
	modes += ", loop " + v.Loop

	_, err := fmt.Fprintf(w, "%s\n%s\nItem %d of %d (%s)\nSaved %s\n",
		title,
		bar,
		v.Index+1, v.QueueLength, modes,
		humanize.RelTime(snap.SavedAt, now, "ago", "from now"),
	)
	return err
}

func runClear(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	return clearSession(cmd.Context(), store, os.Stdout)
}

type sessionClearer interface {
	ClearSnapshot(ctx context.Context) error
}

func clearSession(ctx context.Context, store sessionClearer, w io.Writer) error {
	if err := store.ClearSnapshot(ctx); err != nil {
		return fmt.Errorf("failed to clear saved session: %w", err)
	}
	_, err := fmt.Fprintln(w, "Saved session cleared")
	return err
}
