// Package httpapi exposes the remote command bridge over a small local HTTP
// API together with the Prometheus metrics endpoint.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/llehouerou/reprise/internal/playback"
	"github.com/llehouerou/reprise/internal/remote"
)

// Remote is the part of the bridge the API drives.
type Remote interface {
	Handle(cmd remote.Command) error
	NowPlaying() remote.NowPlaying
}

// Server serves the control API.
type Server struct {
	remote Remote
	logger *slog.Logger
	router *mux.Router
}

// New builds the router for r.
func New(r Remote, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{remote: r, logger: logger}
	s.router = s.setupRouter()
	return s
}

func (s *Server) setupRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(metricsMiddleware)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/status", s.status).Methods(http.MethodGet)
	r.HandleFunc("/player/{command}", s.command).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.remote.NowPlaying(), s.logger)
}

// command maps POST /player/{command} onto the bridge. Parameters come from
// the query string: offset and position are Go durations ("10s", "-5s"),
// track is an instance id, shuffle a bool, loop "off" or "queue".
func (s *Server) command(w http.ResponseWriter, r *http.Request) {
	cmd, err := parseCommand(mux.Vars(r)["command"], r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err, s.logger)
		return
	}

	if err := s.remote.Handle(cmd); err != nil {
		writeError(w, statusFor(err), err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, s.remote.NowPlaying(), s.logger)
}

func parseCommand(name string, r *http.Request) (remote.Command, error) {
	q := r.URL.Query()
	cmd := remote.Command{Name: name, Source: "http", TrackID: q.Get("track")}

	if v := q.Get("offset"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cmd, errors.New("invalid offset: " + v)
		}
		cmd.Offset = d
	}
	if v := q.Get("position"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cmd, errors.New("invalid position: " + v)
		}
		cmd.Position = d
	}
	if v := q.Get("shuffle"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cmd, errors.New("invalid shuffle: " + v)
		}
		cmd.Shuffle = b
	}
	if v := q.Get("loop"); v != "" {
		mode, err := playback.ParseLoopMode(v)
		if err != nil {
			return cmd, errors.New("invalid loop: " + v)
		}
		cmd.Loop = mode
	}
	return cmd, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, remote.ErrUnknownCommand):
		return http.StatusNotFound
	case errors.Is(err, playback.ErrInvalidIndex):
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}

func writeJSON(w http.ResponseWriter, code int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode JSON response", "err", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error, logger *slog.Logger) {
	writeJSON(w, code, map[string]string{"error": err.Error()}, logger)
}
