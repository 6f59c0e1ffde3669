package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"showsync/internal/api"
	"showsync/internal/config"
	"showsync/internal/logging"
)

const defaultListLimit = 50

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon
	router *mux.Router
	server *http.Server
}

// newAPIServer returns nil when no bind address is configured.
func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	if cfg == nil || d == nil || cfg.API.Bind == "" {
		return nil
	}
	srv := &apiServer{
		bind:   cfg.API.Bind,
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}
	srv.router = srv.routes(cfg.API.Token)
	srv.server = &http.Server{
		Handler:           srv.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) routes(token string) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)

	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(authMiddleware(token))
	protected.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	protected.HandleFunc("/runs", s.handleRuns).Methods(http.MethodGet)
	protected.HandleFunc("/placements", s.handlePlacements).Methods(http.MethodGet)
	protected.HandleFunc("/sync", s.handleSync).Methods(http.MethodPost)

	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusNotFound, "not found")
	})
	return router
}

// serve listens until ctx is cancelled, then shuts down gracefully.
func (s *apiServer) serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("api server shutdown failed", logging.Error(err))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api serve: %w", err)
	}
}

func (s *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	status := s.daemon.Status()
	payload := api.DaemonStatus{
		Running:         status.Running,
		PID:             status.PID,
		Syncing:         status.Syncing,
		IntervalSeconds: int(status.Interval / time.Second),
		Tasks:           status.Tasks,
		Passes:          status.Passes,
		StartedAt:       formatTime(status.StartedAt),
		NextPassAt:      formatTime(status.NextPassAt),
		HistoryDBPath:   status.HistoryPath,
		LockFilePath:    status.LockPath,
		LastPass:        api.FromReport(status.LastReport),
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.daemon.ledger == nil {
		s.writeJSON(w, http.StatusOK, api.RunListResponse{Runs: []api.Run{}})
		return
	}
	limit, ok := s.limit(w, r)
	if !ok {
		return
	}
	runs, err := s.daemon.ledger.RecentRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.RunListResponse{Runs: api.FromRuns(runs)})
}

func (s *apiServer) handlePlacements(w http.ResponseWriter, r *http.Request) {
	if s.daemon.ledger == nil {
		s.writeJSON(w, http.StatusOK, api.PlacementListResponse{Placements: []api.Placement{}})
		return
	}
	limit, ok := s.limit(w, r)
	if !ok {
		return
	}
	placements, err := s.daemon.ledger.RecentPlacements(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.PlacementListResponse{Placements: api.FromPlacements(placements)})
}

func (s *apiServer) handleSync(w http.ResponseWriter, _ *http.Request) {
	if s.daemon.Trigger() {
		s.writeJSON(w, http.StatusAccepted, api.SyncResponse{Queued: true, Message: "pass queued"})
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.SyncResponse{Queued: false, Message: "a pass is already queued"})
}

func (s *apiServer) limit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid limit")
		return 0, false
	}
	return limit, true
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
