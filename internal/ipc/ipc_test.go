package ipc_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"rookery/internal/analysis"
	"rookery/internal/catalog"
	"rookery/internal/daemon"
	"rookery/internal/games"
	"rookery/internal/ipc"
	"rookery/internal/testsupport"
)

type harness struct {
	store    *games.Store
	client   *ipc.Client
	shutdown chan struct{}
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	cat := catalog.NewService(store, cfg, nil, nil)
	svc := analysis.NewService(store, nil)
	runner := analysis.NewRunner(store, &testsupport.FakeEngine{}, nil, 0)

	d, err := daemon.New(cfg, store, cat, svc, runner, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	shutdown := make(chan struct{})
	server, err := ipc.NewServer(d, cfg.SocketPath(), nil, func() { close(shutdown) })
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	if err := server.Start(t.Context()); err != nil {
		t.Fatalf("server.Start: %v", err)
	}
	t.Cleanup(server.Stop)

	client, err := ipc.Dial(cfg.SocketPath())
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return &harness{store: store, client: client, shutdown: shutdown}
}

func TestStatusRoundTrip(t *testing.T) {
	h := newHarness(t)
	testsupport.NewGame(t, h.store, "tester", games.SourceManual, uuid.NewString())

	resp, err := h.client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if resp.Status.User != "tester" {
		t.Fatalf("unexpected user %q", resp.Status.User)
	}
	if resp.Status.GameCount != 1 {
		t.Fatalf("expected one game, got %d", resp.Status.GameCount)
	}
	if resp.LogPath == "" {
		t.Fatal("expected log path in status response")
	}
}

func TestGamesListIncludesManualGames(t *testing.T) {
	h := newHarness(t)
	game := testsupport.NewGame(t, h.store, "tester", games.SourceManual, uuid.NewString(),
		testsupport.WithPlayers("Alice", "Bob"))

	resp, err := h.client.GamesList(false)
	if err != nil {
		t.Fatalf("GamesList: %v", err)
	}
	if len(resp.Games) != 1 || resp.Games[0].GameID != game.ID {
		t.Fatalf("unexpected listing %+v", resp.Games)
	}
}

func TestImportRoundTrip(t *testing.T) {
	h := newHarness(t)

	resp, err := h.client.Import(testsupport.SamplePGN())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if resp.Report.Accepted != 2 || resp.Report.Rejected != 0 {
		t.Fatalf("unexpected report %+v", resp.Report)
	}

	list, err := h.client.CatalogList()
	if err != nil {
		t.Fatalf("CatalogList: %v", err)
	}
	if len(list.Games) != 2 {
		t.Fatalf("expected two catalogued games, got %d", len(list.Games))
	}
}

func TestAnalyzeAndPriorityFlow(t *testing.T) {
	h := newHarness(t)
	game := testsupport.NewGame(t, h.store, "tester", games.SourceChessCom, "live/123456789")

	queued, err := h.client.Analyze(game.ID, 0, 0)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if queued.Job.Status != string(games.JobQueued) {
		t.Fatalf("expected queued job, got %s", queued.Job.Status)
	}
	if queued.Job.Priority != games.DefaultPriority {
		t.Fatalf("expected default priority, got %d", queued.Job.Priority)
	}

	set, err := h.client.SetPriority(queued.Job.ID, 9)
	if err != nil {
		t.Fatalf("SetPriority: %v", err)
	}
	if set.Job.Priority != 9 {
		t.Fatalf("expected priority 9, got %d", set.Job.Priority)
	}

	adjusted, err := h.client.AdjustPriority(queued.Job.ID, -2)
	if err != nil {
		t.Fatalf("AdjustPriority: %v", err)
	}
	if adjusted.Job.Priority != 7 {
		t.Fatalf("expected priority 7, got %d", adjusted.Job.Priority)
	}

	if _, err := h.client.SetPriority(queued.Job.ID, 42); err == nil {
		t.Fatal("expected out-of-range priority rejection")
	}
}

func TestCancelAndRetryOverSocket(t *testing.T) {
	h := newHarness(t)
	game := testsupport.NewGame(t, h.store, "tester", games.SourceLichess, "abcd1234")
	job := testsupport.NewJob(t, h.store, game.ID, 18, games.DefaultPriority)

	cancelled, err := h.client.CancelJob(job.ID)
	if err != nil {
		t.Fatalf("CancelJob: %v", err)
	}
	if cancelled.Job.Status != string(games.JobCancelled) {
		t.Fatalf("expected cancelled job, got %s", cancelled.Job.Status)
	}

	if _, err := h.client.RetryJob(job.ID); err == nil {
		t.Fatal("expected retry of cancelled job to fail")
	}
}

func TestJobsListStatusFilter(t *testing.T) {
	h := newHarness(t)
	game := testsupport.NewGame(t, h.store, "tester", games.SourceManual, uuid.NewString())
	job := testsupport.NewJob(t, h.store, game.ID, 18, games.DefaultPriority)

	queued, err := h.client.JobsList(string(games.JobQueued))
	if err != nil {
		t.Fatalf("JobsList: %v", err)
	}
	if len(queued.Jobs) != 1 || queued.Jobs[0].ID != job.ID {
		t.Fatalf("unexpected jobs %+v", queued.Jobs)
	}

	completed, err := h.client.JobsList(string(games.JobCompleted))
	if err != nil {
		t.Fatalf("JobsList: %v", err)
	}
	if len(completed.Jobs) != 0 {
		t.Fatalf("expected no completed jobs, got %d", len(completed.Jobs))
	}

	if _, err := h.client.JobsList("sideways"); err == nil {
		t.Fatal("expected unknown status filter rejection")
	}

	health, err := h.client.JobHealth()
	if err != nil {
		t.Fatalf("JobHealth: %v", err)
	}
	if health.Health.Queued != 1 || health.Health.Total != 1 {
		t.Fatalf("unexpected health %+v", health.Health)
	}
}

func TestStopTriggersShutdown(t *testing.T) {
	h := newHarness(t)

	resp, err := h.client.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !resp.Stopping {
		t.Fatal("expected stopping acknowledgement")
	}

	select {
	case <-h.shutdown:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown callback never fired")
	}
}

func TestDialMissingSocket(t *testing.T) {
	_, err := ipc.Dial("/nonexistent/rookeryd.sock")
	if err == nil {
		t.Fatal("expected dial failure for missing socket")
	}
	if !strings.Contains(err.Error(), "connect to daemon socket") {
		t.Fatalf("unexpected error %v", err)
	}
}
