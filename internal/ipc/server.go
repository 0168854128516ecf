package ipc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"rookery/internal/api"
	"rookery/internal/catalog"
	"rookery/internal/daemon"
	"rookery/internal/games"
	"rookery/internal/logging"
	"rookery/internal/services"
)

// Server exposes daemon operations over a unix socket using JSON-RPC.
type Server struct {
	socketPath string
	logger     *slog.Logger

	listener  net.Listener
	rpcServer *rpc.Server

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// service holds the RPC-visible methods. Shutdown is invoked asynchronously
// when a Stop request arrives.
type service struct {
	daemon   *daemon.Daemon
	shutdown func()
	logger   *slog.Logger
}

// NewServer constructs an IPC server for the daemon. The shutdown callback is
// invoked when a client requests daemon stop; it may be nil.
func NewServer(d *daemon.Daemon, socketPath string, logger *slog.Logger, shutdown func()) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires a daemon")
	}
	if socketPath == "" {
		return nil, errors.New("ipc server requires a socket path")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	rpcServer := rpc.NewServer()
	svc := &service{daemon: d, shutdown: shutdown, logger: logger}
	if err := rpcServer.RegisterName(ServiceName, svc); err != nil {
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	return &Server{
		socketPath: socketPath,
		logger:     logger,
		rpcServer:  rpcServer,
	}, nil
}

// Start begins accepting connections on the unix socket. A stale socket file
// from a previous run is removed first.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("ipc server already started")
	}

	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on socket: %w", err)
	}
	s.listener = listener
	s.started = true

	acceptCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptLoop(acceptCtx, listener)
	}()
	go func() {
		<-acceptCtx.Done()
		_ = listener.Close()
	}()

	s.logger.Info("ipc server listening", logging.String("socket", s.socketPath))
	return nil
}

// Stop closes the listener and removes the socket file.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("failed to remove socket file", logging.Error(err))
	}
}

// SocketPath returns the unix socket location.
func (s *Server) SocketPath() string {
	return s.socketPath
}

func (s *Server) acceptLoop(ctx context.Context, listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Debug("ipc accept failed", logging.Error(err))
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(conn))
		}()
	}
}

func (h *service) Status(_ StatusRequest, reply *StatusResponse) error {
	status := h.daemon.Status(context.Background())
	reply.Status = DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		DatabasePath: status.DatabasePath,
		LockFilePath: status.LockFilePath,
		User:         status.User,
		GameCount:    status.GameCount,
		Jobs:         api.FromHealth(status.Jobs),
	}
	reply.LogPath = h.daemon.LogPath()
	return nil
}

func (h *service) Stop(_ StopRequest, reply *StopResponse) error {
	reply.Stopping = true
	if h.shutdown != nil {
		// Let the reply flush before the daemon tears down the socket.
		go func() {
			time.Sleep(100 * time.Millisecond)
			h.shutdown()
		}()
	}
	return nil
}

func (h *service) GamesList(req GamesListRequest, reply *GamesListResponse) error {
	result, err := h.daemon.ListUnified(context.Background(), catalog.ListOptions{
		ExcludeCompleted: req.ExcludeCompleted,
	})
	if err != nil {
		return err
	}
	resp := api.FromListResult(result)
	reply.Games = resp.Games
	reply.Warnings = resp.Warnings
	return nil
}

func (h *service) CatalogList(_ CatalogListRequest, reply *CatalogListResponse) error {
	list, err := h.daemon.ListCatalog(context.Background())
	if err != nil {
		return err
	}
	reply.Games = api.FromGames(list)
	return nil
}

func (h *service) Import(req ImportRequest, reply *ImportResponse) error {
	report, err := h.daemon.ImportBatch(context.Background(), req.Text)
	if err != nil {
		return err
	}
	reply.Report = api.FromImportReport(report)
	return nil
}

func (h *service) Analyze(req AnalyzeRequest, reply *AnalyzeResponse) error {
	job, err := h.daemon.RequestAnalysis(context.Background(), req.GameID, req.Depth, req.Priority)
	if err != nil {
		return err
	}
	reply.Job = api.FromJob(job)
	return nil
}

func (h *service) Priority(req PriorityRequest, reply *PriorityResponse) error {
	ctx := context.Background()
	if req.Adjust {
		job, err := h.daemon.AdjustPriority(ctx, req.JobID, req.Delta)
		if err != nil {
			return err
		}
		reply.Job = api.FromJob(job)
		return nil
	}
	if err := h.daemon.SetPriority(ctx, req.JobID, req.Priority); err != nil {
		return err
	}
	job, err := h.daemon.GetJob(ctx, req.JobID)
	if err != nil {
		return err
	}
	reply.Job = api.FromJob(job)
	return nil
}

func (h *service) CancelJob(req JobRequest, reply *JobActionResponse) error {
	ctx := context.Background()
	if err := h.daemon.CancelJob(ctx, req.JobID); err != nil {
		return err
	}
	return h.reloadJob(ctx, req.JobID, &reply.Job)
}

func (h *service) RetryJob(req JobRequest, reply *JobActionResponse) error {
	ctx := context.Background()
	if err := h.daemon.RetryJob(ctx, req.JobID); err != nil {
		return err
	}
	return h.reloadJob(ctx, req.JobID, &reply.Job)
}

func (h *service) JobGet(req JobRequest, reply *JobResponse) error {
	job, err := h.daemon.GetJob(context.Background(), req.JobID)
	if err != nil {
		return err
	}
	reply.Job = api.FromJob(job)
	return nil
}

func (h *service) JobsList(req JobsListRequest, reply *JobsListResponse) error {
	var statuses []games.JobStatus
	if req.Status != "" {
		status, ok := games.ParseJobStatus(req.Status)
		if !ok {
			return services.Wrap(services.ErrValidation, "ipc", "jobs_list",
				fmt.Sprintf("unknown job status %q", req.Status), nil)
		}
		statuses = append(statuses, status)
	}
	jobs, err := h.daemon.ListJobs(context.Background(), statuses...)
	if err != nil {
		return err
	}
	reply.Jobs = api.FromJobs(jobs)
	return nil
}

func (h *service) JobHealth(_ HealthRequest, reply *HealthResponse) error {
	health, err := h.daemon.JobHealth(context.Background())
	if err != nil {
		return err
	}
	reply.Health = api.FromHealth(health)
	return nil
}

func (h *service) reloadJob(ctx context.Context, jobID string, out *Job) error {
	job, err := h.daemon.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	*out = api.FromJob(job)
	return nil
}
