//go:build !windows

// Package stderr captures output that C libraries (ALSA, the audio
// decoders) write directly to file descriptor 2, bypassing Go's os.Stderr,
// and sends it to the logger instead so it cannot corrupt the TUI.
package stderr

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"syscall"
)

var (
	mu         sync.Mutex
	origStderr int
	pipeRead   *os.File
	pipeWrite  *os.File
	started    bool
	drained    chan struct{}
)

// Start begins capturing stderr output; every captured line is logged at
// warn level on logger. Must be called early in main(), before any C
// library initialization. Returns an error if capture cannot be set up,
// but the program can continue without it.
func Start(logger *slog.Logger) error {
	mu.Lock()
	defer mu.Unlock()
	if started {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Create a pipe
	r, w, err := os.Pipe()
	if err != nil {
		return err
	}

	// Save original stderr file descriptor
	origStderr, err = syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return err
	}

	// Redirect stderr (fd 2) to the pipe's write end
	err = syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd()))
	if err != nil {
		syscall.Close(origStderr)
		r.Close()
		w.Close()
		return err
	}

	pipeRead = r
	pipeWrite = w
	started = true
	drained = make(chan struct{})

	go forward(pipeRead, logger, drained)
	return nil
}

// forward logs every non-empty line read from r.
func forward(r io.Reader, logger *slog.Logger, done chan<- struct{}) {
	defer close(done)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			logger.Warn("native library output", "line", line)
		}
	}
}

// WriteOriginal writes directly to the original stderr, bypassing capture.
// Useful for fatal errors that must be visible even if TUI is running.
func WriteOriginal(msg string) {
	mu.Lock()
	fd := origStderr
	mu.Unlock()
	if fd > 0 {
		_, _ = syscall.Write(fd, []byte(msg))
		return
	}
	_, _ = os.Stderr.WriteString(msg)
}

// Stop restores the original stderr. Should be called on program exit.
func Stop() {
	mu.Lock()
	defer mu.Unlock()
	if !started {
		return
	}

	// Restore original stderr
	_ = syscall.Dup2(origStderr, int(os.Stderr.Fd()))
	_ = syscall.Close(origStderr)
	origStderr = 0

	// Closing the write end lets the forwarder drain and exit
	pipeWrite.Close()
	<-drained
	pipeRead.Close()
	started = false
}
