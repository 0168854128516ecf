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
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rookery/internal/api"
	"rookery/internal/catalog"
	"rookery/internal/config"
	"rookery/internal/games"
	"rookery/internal/logging"
	"rookery/internal/metrics"
	"rookery/internal/services"
)

// apiServer exposes read-only daemon state over HTTP. A nil apiServer is
// valid and does nothing; it is produced when no bind address is configured.
type apiServer struct {
	daemon *Daemon
	logger *slog.Logger
	bind   string

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	addr     string
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := cfg.Paths.APIBind
	if bind == "" {
		return nil, nil
	}
	return &apiServer{
		daemon: d,
		logger: logger,
		bind:   bind,
	}, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return nil
	}

	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("bind api server: %w", err)
	}

	server := &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.server = server
	s.listener = listener
	s.addr = listener.Addr().String()

	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("api server terminated", logging.Error(serveErr))
		}
	}()
	go func() {
		<-ctx.Done()
		s.stop()
	}()

	s.logger.Info("api server listening", logging.String("addr", s.addr))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}

	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()
	if server == nil {
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("api server shutdown", logging.Error(err))
	}
}

// address returns the bound listen address, empty until started.
func (s *apiServer) address() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

func (s *apiServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /api/status", s.instrument("/api/status", s.handleStatus))
	mux.Handle("GET /api/games", s.instrument("/api/games", s.handleGames))
	mux.Handle("GET /api/catalog", s.instrument("/api/catalog", s.handleCatalog))
	mux.Handle("GET /api/jobs", s.instrument("/api/jobs", s.handleJobs))
	mux.Handle("GET /api/jobs/{id}", s.instrument("/api/jobs/{id}", s.handleJob))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	return mux
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *apiServer) instrument(endpoint string, handler http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		handler(sw, r)
		code := strconv.Itoa(sw.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, float64(time.Since(start).Milliseconds()))
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		DatabasePath: status.DatabasePath,
		LockFilePath: status.LockFilePath,
		User:         status.User,
		GameCount:    status.GameCount,
		Jobs:         api.FromHealth(status.Jobs),
	})
}

func (s *apiServer) handleGames(w http.ResponseWriter, r *http.Request) {
	opts := catalog.ListOptions{
		ExcludeCompleted: parseBoolParam(r, "excludeCompleted"),
	}
	result, err := s.daemon.ListUnified(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromListResult(result))
}

func (s *apiServer) handleCatalog(w http.ResponseWriter, r *http.Request) {
	list, err := s.daemon.ListCatalog(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.CatalogListResponse{Games: api.FromGames(list)})
}

func (s *apiServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	var statuses []games.JobStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := games.ParseJobStatus(raw)
		if !ok {
			s.writeError(w, services.Wrap(services.ErrValidation, "api", "list_jobs",
				fmt.Sprintf("unknown job status %q", raw), nil))
			return
		}
		statuses = append(statuses, status)
	}
	jobs, err := s.daemon.ListJobs(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.JobListResponse{Jobs: api.FromJobs(jobs)})
}

func (s *apiServer) handleJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.daemon.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.JobResponse{Job: api.FromJob(job)})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Debug("failed to encode api response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrUpstreamTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, services.ErrUpstreamSource):
		status = http.StatusBadGateway
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func parseBoolParam(r *http.Request, name string) bool {
	value, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && value
}
