// Package metrics exposes Prometheus collectors for the playback engine.
//
// All metrics are prefixed with "reprise_". They are registered on the
// default registry and served by the HTTP surface under /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checkpoint metrics
var (
	CheckpointWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reprise_checkpoint_writes_total",
			Help: "Total number of snapshot writes by outcome",
		},
		[]string{"status"},
	)

	CheckpointWriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reprise_checkpoint_write_duration_seconds",
			Help:    "Snapshot write duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	CheckpointSuperseded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reprise_checkpoint_superseded_total",
			Help: "Snapshots replaced by a newer one before being written",
		},
	)

	CheckpointRestores = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reprise_checkpoint_restores_total",
			Help: "Restore attempts at startup by outcome",
		},
		[]string{"status"}, // "restored", "empty", "failed"
	)
)

// Remote control metrics
var (
	RemoteCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reprise_remote_commands_total",
			Help: "Remote commands handled by source, command and outcome",
		},
		[]string{"source", "command", "status"},
	)
)

// Session metrics
var (
	PlaybackPlaying = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reprise_playback_playing",
			Help: "Whether the session is playing (1) or not (0)",
		},
	)

	QueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reprise_queue_length",
			Help: "Number of items in the play queue",
		},
	)

	TrackChangesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reprise_track_changes_total",
			Help: "Total number of current-item changes",
		},
	)

	ContentRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reprise_content_removed_total",
			Help: "Queued files reported missing by the library watcher",
		},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reprise_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reprise_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Status maps an error to a status label.
func Status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}
