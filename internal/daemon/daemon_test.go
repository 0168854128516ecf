package daemon_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"rookery/internal/analysis"
	"rookery/internal/catalog"
	"rookery/internal/config"
	"rookery/internal/daemon"
	"rookery/internal/games"
	"rookery/internal/sources"
	"rookery/internal/testsupport"
)

type harness struct {
	daemon *daemon.Daemon
	store  *games.Store
	cfg    *config.Config
	engine *testsupport.FakeEngine
}

func newHarness(t *testing.T, fetchers []sources.Fetcher, opts ...testsupport.ConfigOption) *harness {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)
	engine := &testsupport.FakeEngine{}

	cat := catalog.NewService(store, cfg, fetchers, nil)
	svc := analysis.NewService(store, nil)
	runner := analysis.NewRunner(store, engine, nil, cfg.EngineTimeout())

	d, err := daemon.New(cfg, store, cat, svc, runner, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(d.Stop)

	return &harness{daemon: d, store: store, cfg: cfg, engine: engine}
}

func waitForJobStatus(t *testing.T, store *games.Store, jobID string, want games.JobStatus) *games.Job {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(t.Context(), jobID)
		if err != nil {
			t.Fatalf("GetJob: %v", err)
		}
		if job.Status == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", jobID, want)
	return nil
}

func TestDaemonStartStop(t *testing.T) {
	h := newHarness(t, nil)

	if err := h.daemon.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	status := h.daemon.Status(t.Context())
	if !status.Running {
		t.Fatal("expected running daemon")
	}
	if status.PID <= 0 {
		t.Fatalf("expected positive pid, got %d", status.PID)
	}
	if status.User != "tester" {
		t.Fatalf("unexpected user %q", status.User)
	}

	h.daemon.Stop()
	if h.daemon.Status(t.Context()).Running {
		t.Fatal("expected stopped daemon")
	}
}

func TestDaemonSecondInstanceRefused(t *testing.T) {
	first := newHarness(t, nil)
	if err := first.daemon.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	cat := catalog.NewService(first.store, first.cfg, nil, nil)
	svc := analysis.NewService(first.store, nil)
	runner := analysis.NewRunner(first.store, first.engine, nil, 0)
	second, err := daemon.New(first.cfg, first.store, cat, svc, runner, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(second.Stop)

	if err := second.Start(t.Context()); err == nil {
		t.Fatal("expected lock conflict for second instance")
	}

	first.daemon.Stop()
	if err := second.Start(t.Context()); err != nil {
		t.Fatalf("Start after lock release: %v", err)
	}
}

func TestDaemonStartRecoversOrphanedRunningJob(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.Result = &analysis.Result{Depth: 18, PositionsAll: 40}

	game := testsupport.NewGame(t, h.store, "tester", games.SourceManual, uuid.NewString())
	job := testsupport.NewJob(t, h.store, game.ID, 18, games.DefaultPriority)

	// Simulate a previous daemon dying mid-analysis.
	if _, err := h.store.ClaimNextQueued(t.Context()); err != nil {
		t.Fatalf("ClaimNextQueued: %v", err)
	}

	if err := h.daemon.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	done := waitForJobStatus(t, h.store, job.ID, games.JobCompleted)
	if done.RetryCount != 0 {
		t.Fatalf("recovery should not count as a retry: %+v", done)
	}
}

func TestDaemonProcessesQueuedJob(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.Result = &analysis.Result{Depth: 18, PositionsAll: 40, ACPLWhite: 22.5, ACPLBlack: 31.0}

	game := testsupport.NewGame(t, h.store, "tester", games.SourceChessCom, "live/123456789")
	job := testsupport.NewJob(t, h.store, game.ID, 18, games.DefaultPriority)

	if err := h.daemon.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	done := waitForJobStatus(t, h.store, job.ID, games.JobCompleted)
	if done.ResultJSON == "" {
		t.Fatal("expected result payload on completed job")
	}
	stored, err := h.store.GetGame(t.Context(), game.ID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if stored.Status != games.StatusCompleted {
		t.Fatalf("expected completed game, got %s", stored.Status)
	}
	if h.engine.Calls() != 1 {
		t.Fatalf("expected one engine invocation, got %d", h.engine.Calls())
	}
}

func TestDaemonJournalsFailedJob(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.Err = assertErr("engine exploded")

	game := testsupport.NewGame(t, h.store, "tester", games.SourceLichess, "abcd1234")
	job := testsupport.NewJob(t, h.store, game.ID, 12, games.DefaultPriority)

	if err := h.daemon.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	failed := waitForJobStatus(t, h.store, job.ID, games.JobFailed)
	if failed.ErrorDetail == "" {
		t.Fatal("expected error detail on failed job")
	}
}

func TestRequestAnalysisAppliesDefaults(t *testing.T) {
	h := newHarness(t, nil)
	game := testsupport.NewGame(t, h.store, "tester", games.SourceManual, uuid.NewString())

	job, err := h.daemon.RequestAnalysis(t.Context(), game.ID, 0, 0)
	if err != nil {
		t.Fatalf("RequestAnalysis: %v", err)
	}
	if job.Depth != h.cfg.Engine.DefaultDepth {
		t.Fatalf("expected default depth %d, got %d", h.cfg.Engine.DefaultDepth, job.Depth)
	}
	if job.Priority != games.DefaultPriority {
		t.Fatalf("expected default priority, got %d", job.Priority)
	}
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
