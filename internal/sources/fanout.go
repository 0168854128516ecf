package sources

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"rookery/internal/logging"
	"rookery/internal/services"
)

const defaultFetchTimeout = 15 * time.Second

// Fetch queries every requested archive concurrently, each under its own
// timeout. Results are pooled and returned newest first; per-source failures
// are reported as warnings so partial results survive a slow or broken
// archive.
func Fetch(ctx context.Context, requests []Request, logger *slog.Logger) ([]Record, []Warning) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "sources")

	var (
		mu       sync.Mutex
		records  []Record
		warnings []Warning
		wg       sync.WaitGroup
	)

	for _, req := range requests {
		if req.Fetcher == nil {
			continue
		}
		wg.Add(1)
		go func(req Request) {
			defer wg.Done()

			timeout := req.Timeout
			if timeout <= 0 {
				timeout = defaultFetchTimeout
			}
			fetchCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			tag := req.Fetcher.Tag()
			started := time.Now()
			fetched, err := req.Fetcher.Fetch(fetchCtx, req.Handle, req.Limit)
			if err != nil {
				warning := Warning{Source: tag, Err: classifyFetchError(string(tag), err)}
				logger.Warn("source fetch failed",
					logging.String(logging.FieldSource, string(tag)),
					logging.Duration("elapsed", time.Since(started)),
					logging.Error(warning.Err))
				mu.Lock()
				warnings = append(warnings, warning)
				mu.Unlock()
				return
			}

			logger.Debug("source fetch completed",
				logging.String(logging.FieldSource, string(tag)),
				logging.Int("records", len(fetched)),
				logging.Duration("elapsed", time.Since(started)))
			mu.Lock()
			records = append(records, fetched...)
			mu.Unlock()
		}(req)
	}
	wg.Wait()

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PlayedAt.After(records[j].PlayedAt)
	})
	sort.Slice(warnings, func(i, j int) bool {
		return warnings[i].Source < warnings[j].Source
	})
	return records, warnings
}

func classifyFetchError(source string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrUpstreamTimeout, "sources", "fetch", source, err)
	}
	return services.Wrap(services.ErrUpstreamSource, "sources", "fetch", source, err)
}
