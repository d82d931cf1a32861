package metrics

// InitializeMetrics pre-populates the known label combinations so every
// series is exported from the first scrape.
func InitializeMetrics(commands []string) {
	for _, status := range []string{StatusOK, StatusError} {
		CheckpointWritesTotal.WithLabelValues(status)
	}
	for _, status := range []string{"restored", "empty", "failed"} {
		CheckpointRestores.WithLabelValues(status)
	}
	for _, source := range []string{"mpris", "http"} {
		for _, cmd := range commands {
			for _, status := range []string{StatusOK, StatusError} {
				RemoteCommandsTotal.WithLabelValues(source, cmd, status)
			}
		}
	}
}
