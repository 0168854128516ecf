package testsupport

import (
	"context"
	"sync"

	"rookery/internal/analysis"
	"rookery/internal/games"
	"rookery/internal/sources"
)

// FakeFetcher is a scripted sources.Fetcher for tests. Records and Err are
// returned verbatim from Fetch; calls are counted for assertions.
type FakeFetcher struct {
	Source  games.Source
	Records []sources.Record
	Err     error

	mu    sync.Mutex
	calls int
}

// Tag implements sources.Fetcher.
func (f *FakeFetcher) Tag() games.Source { return f.Source }

// Fetch implements sources.Fetcher.
func (f *FakeFetcher) Fetch(ctx context.Context, handle string, limit int) ([]sources.Record, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]sources.Record, len(f.Records))
	copy(out, f.Records)
	return out, nil
}

// Calls returns how many times Fetch has been invoked.
func (f *FakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// FakeEngine is a scripted analysis.Engine. Updates are pushed through the
// progress callback in order before Result or Err is returned. An optional
// Hook runs after the updates, letting tests interleave store mutations with
// a run in flight.
type FakeEngine struct {
	Updates []analysis.ProgressUpdate
	Result  *analysis.Result
	Err     error
	Hook    func()

	mu    sync.Mutex
	calls int
}

// Analyze implements analysis.Engine.
func (e *FakeEngine) Analyze(ctx context.Context, game *games.Game, depth int, progress func(analysis.ProgressUpdate)) (*analysis.Result, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	for _, update := range e.Updates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if progress != nil {
			progress(update)
		}
	}
	if e.Hook != nil {
		e.Hook()
	}
	if e.Err != nil {
		return nil, e.Err
	}
	if e.Result != nil {
		return e.Result, nil
	}
	return &analysis.Result{Depth: depth}, nil
}

// Calls returns how many times Analyze has been invoked.
func (e *FakeEngine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}
