package games

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Typed transition failures surfaced by job mutations. The analysis service
// maps them onto the caller-facing error taxonomy.
var (
	// ErrJobNotFound indicates a lookup for an unknown job identifier.
	ErrJobNotFound = errors.New("job not found")
	// ErrActiveJob indicates the target game already holds a non-terminal
	// job. Failed jobs count; they re-queue through RetryJob instead of a
	// second create.
	ErrActiveJob = errors.New("active job exists for game")
	// ErrTerminal indicates the job already reached completed or cancelled.
	ErrTerminal = errors.New("job already terminal")
	// ErrInvalidTransition indicates the requested transition is not part of
	// the lifecycle graph.
	ErrInvalidTransition = errors.New("invalid job transition")
	// ErrPriorityLocked indicates a priority change on a job that left the
	// queued state.
	ErrPriorityLocked = errors.New("priority mutable only while queued")
	// ErrPriorityRange indicates an adjustment that would land outside the
	// valid priority band. The value is rejected, never clamped.
	ErrPriorityRange = errors.New("priority outside valid range")
	// ErrProgressRegressed indicates a progress report lower than the last
	// recorded value.
	ErrProgressRegressed = errors.New("progress must not decrease")
)

// CreateJob inserts a queued analysis job for a game, enforcing the single
// non-terminal job invariant inside one transaction. A queued, running, or
// failed sibling blocks the insert with ErrActiveJob. The game's evaluation
// status moves to queued as part of the same write.
func (s *Store) CreateJob(ctx context.Context, jobID, gameID string, depth, priority int) (*Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, errors.New("job id required")
	}
	if !ValidPriority(priority) {
		return nil, fmt.Errorf("priority %d outside [%d,%d]", priority, MinPriority, MaxPriority)
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM catalog_games WHERE id = ?`, gameID).Scan(&exists); err != nil {
			return fmt.Errorf("probe game: %w", err)
		}
		if exists == 0 {
			return ErrGameNotFound
		}

		var active int
		err := tx.QueryRowContext(
			ctx,
			`SELECT COUNT(1) FROM analysis_jobs WHERE game_id = ? AND status IN (?, ?, ?)`,
			gameID, string(JobQueued), string(JobRunning), string(JobFailed),
		).Scan(&active)
		if err != nil {
			return fmt.Errorf("probe active jobs: %w", err)
		}
		if active > 0 {
			return ErrActiveJob
		}

		timestamp := formatTime(time.Now().UTC())
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO analysis_jobs (
                id, game_id, status, priority, depth, positions_done, positions_all,
                retry_count, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, 0, 0, 0, ?, ?)`,
			jobID, gameID, string(JobQueued), priority, depth, timestamp, timestamp,
		); err != nil {
			return fmt.Errorf("insert job: %w", err)
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE catalog_games SET status = ?, updated_at = ? WHERE id = ?`,
			string(StatusQueued), timestamp, gameID,
		); err != nil {
			return fmt.Errorf("mark game queued: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetJob(ctx, jobID)
}

// GetJob fetches a job by identifier. Returns ErrJobNotFound when no row
// exists.
func (s *Store) GetJob(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM analysis_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// ActiveJobForGame returns the queued or running job for a game, or nil when
// none exists.
func (s *Store) ActiveJobForGame(ctx context.Context, gameID string) (*Job, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+jobColumns+` FROM analysis_jobs
         WHERE game_id = ? AND status IN (?, ?) ORDER BY created_at DESC LIMIT 1`,
		gameID, string(JobQueued), string(JobRunning),
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active job for game: %w", err)
	}
	return job, nil
}

// LatestJobForGame returns the most recently created job for a game, or nil.
func (s *Store) LatestJobForGame(ctx context.Context, gameID string) (*Job, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+jobColumns+` FROM analysis_jobs WHERE game_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		gameID,
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest job for game: %w", err)
	}
	return job, nil
}

// ListJobs returns jobs filtered by status; with no filter all jobs are
// returned, queued first by priority then age.
func (s *Store) ListJobs(ctx context.Context, statuses ...JobStatus) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM analysis_jobs`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY priority DESC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// JobHealth returns aggregate job counts per lifecycle state.
func (s *Store) JobHealth(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM analysis_jobs GROUP BY status`)
	if err != nil {
		return HealthSummary{}, fmt.Errorf("job health: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return HealthSummary{}, fmt.Errorf("scan job health: %w", err)
		}
		summary.Total += count
		switch JobStatus(status) {
		case JobQueued:
			summary.Queued = count
		case JobRunning:
			summary.Running = count
		case JobCompleted:
			summary.Completed = count
		case JobFailed:
			summary.Failed = count
		case JobCancelled:
			summary.Cancelled = count
		}
	}
	if err := rows.Err(); err != nil {
		return HealthSummary{}, fmt.Errorf("iterate job health: %w", err)
	}
	return summary, nil
}

// SetJobPriority updates priority for a queued job. The priority gate lives
// in SQL so a concurrent claim cannot slip a change onto a running job.
func (s *Store) SetJobPriority(ctx context.Context, id string, priority int) error {
	if !ValidPriority(priority) {
		return fmt.Errorf("priority %d outside [%d,%d]", priority, MinPriority, MaxPriority)
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE analysis_jobs SET priority = ?, updated_at = ? WHERE id = ? AND status = ?`,
		priority, formatTime(time.Now().UTC()), id, string(JobQueued),
	)
	if err != nil {
		return fmt.Errorf("set job priority: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set job priority: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetJob(ctx, id); err != nil {
			return err
		}
		return ErrPriorityLocked
	}
	return nil
}

// AdjustJobPriority shifts a queued job's priority by delta in a single
// guarded UPDATE, so concurrent bumps apply to the stored value rather than
// a stale read. Shifts leaving [MinPriority,MaxPriority] are rejected with
// ErrPriorityRange.
func (s *Store) AdjustJobPriority(ctx context.Context, id string, delta int) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE analysis_jobs SET priority = priority + ?, updated_at = ?
         WHERE id = ? AND status = ? AND priority + ? BETWEEN ? AND ?`,
		delta, formatTime(time.Now().UTC()), id, string(JobQueued), delta, MinPriority, MaxPriority,
	)
	if err != nil {
		return fmt.Errorf("adjust job priority: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust job priority: %w", err)
	}
	if affected == 0 {
		job, err := s.GetJob(ctx, id)
		if err != nil {
			return err
		}
		if job.Status != JobQueued {
			return ErrPriorityLocked
		}
		return fmt.Errorf("%w: %d outside [%d,%d]",
			ErrPriorityRange, job.Priority+delta, MinPriority, MaxPriority)
	}
	return nil
}

// ClaimNextQueued transitions the highest-priority queued job to running and
// marks its game processing, all in one transaction. Returns nil when the
// queue is empty.
func (s *Store) ClaimNextQueued(ctx context.Context) (*Job, error) {
	var claimedID string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(
			ctx,
			`SELECT id, game_id FROM analysis_jobs WHERE status = ? ORDER BY priority DESC, created_at ASC LIMIT 1`,
			string(JobQueued),
		)
		var id, gameID string
		if err := row.Scan(&id, &gameID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("pick queued job: %w", err)
		}

		timestamp := formatTime(time.Now().UTC())
		res, err := tx.ExecContext(
			ctx,
			`UPDATE analysis_jobs SET status = ?, started_at = ?, updated_at = ? WHERE id = ? AND status = ?`,
			string(JobRunning), timestamp, timestamp, id, string(JobQueued),
		)
		if err != nil {
			return fmt.Errorf("claim job: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("claim job: %w", err)
		}
		if affected == 0 {
			return nil
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE catalog_games SET status = ?, updated_at = ? WHERE id = ?`,
			string(StatusProcessing), timestamp, gameID,
		); err != nil {
			return fmt.Errorf("mark game processing: %w", err)
		}
		claimedID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	if claimedID == "" {
		return nil, nil
	}
	return s.GetJob(ctx, claimedID)
}

// ReportJobProgress records monotonic progress for a running job.
func (s *Store) ReportJobProgress(ctx context.Context, id string, analyzed, total int) error {
	if analyzed < 0 || total < 0 {
		return fmt.Errorf("negative progress counters (%d/%d)", analyzed, total)
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE analysis_jobs SET positions_done = ?, positions_all = ?, updated_at = ?
         WHERE id = ? AND status = ? AND positions_done <= ?`,
		analyzed, total, formatTime(time.Now().UTC()), id, string(JobRunning), analyzed,
	)
	if err != nil {
		return fmt.Errorf("report progress: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("report progress: %w", err)
	}
	if affected == 0 {
		job, err := s.GetJob(ctx, id)
		if err != nil {
			return err
		}
		if job.Status != JobRunning {
			return ErrInvalidTransition
		}
		return ErrProgressRegressed
	}
	return nil
}

// RequeueRunning moves running jobs back to queued with progress reset,
// and re-marks their games queued in the same transaction. Run at daemon
// startup so jobs orphaned by a crash re-enter the queue instead of
// sitting in running forever.
func (s *Store) RequeueRunning(ctx context.Context) (int64, error) {
	var requeued int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		timestamp := formatTime(time.Now().UTC())
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE catalog_games SET status = ?, updated_at = ?
             WHERE id IN (SELECT game_id FROM analysis_jobs WHERE status = ?)`,
			string(StatusQueued), timestamp, string(JobRunning),
		); err != nil {
			return fmt.Errorf("requeue orphaned games: %w", err)
		}

		res, err := tx.ExecContext(
			ctx,
			`UPDATE analysis_jobs
             SET status = ?, positions_done = 0, positions_all = 0,
                 started_at = NULL, updated_at = ?
             WHERE status = ?`,
			string(JobQueued), timestamp, string(JobRunning),
		)
		if err != nil {
			return fmt.Errorf("requeue orphaned jobs: %w", err)
		}
		requeued, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("requeue orphaned jobs: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return requeued, nil
}

// CancelJob moves a queued or running job to cancelled. Partial progress is
// retained for audit. The game returns to pending so a later request can
// start a fresh cycle.
func (s *Store) CancelJob(ctx context.Context, id string) error {
	return s.finishJob(ctx, id, finishSpec{
		from:       []JobStatus{JobQueued, JobRunning},
		to:         JobCancelled,
		gameStatus: StatusPending,
	})
}

// CompleteJob moves a running job to completed and stamps the game completed
// in the same transaction, so readers never observe the two out of sync.
func (s *Store) CompleteJob(ctx context.Context, id, resultJSON string) error {
	return s.finishJob(ctx, id, finishSpec{
		from:       []JobStatus{JobRunning},
		to:         JobCompleted,
		gameStatus: StatusCompleted,
		resultJSON: resultJSON,
	})
}

// FailJob moves a running job to failed with error detail; the game is
// stamped failed in the same transaction.
func (s *Store) FailJob(ctx context.Context, id, errorDetail string) error {
	return s.finishJob(ctx, id, finishSpec{
		from:        []JobStatus{JobRunning},
		to:          JobFailed,
		gameStatus:  StatusFailed,
		errorDetail: errorDetail,
	})
}

// RetryJob moves a failed job back to queued: retry count up, error cleared,
// progress counters reset. The game is re-marked queued.
func (s *Store) RetryJob(ctx context.Context, id string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		job, err := jobInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if job.Status != JobFailed {
			return ErrInvalidTransition
		}

		timestamp := formatTime(time.Now().UTC())
		res, err := tx.ExecContext(
			ctx,
			`UPDATE analysis_jobs
             SET status = ?, retry_count = retry_count + 1, error_detail = NULL,
                 positions_done = 0, positions_all = 0, started_at = NULL,
                 finished_at = NULL, updated_at = ?
             WHERE id = ? AND status = ?`,
			string(JobQueued), timestamp, id, string(JobFailed),
		)
		if err != nil {
			return fmt.Errorf("retry job: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("retry job: %w", err)
		}
		if affected == 0 {
			return ErrInvalidTransition
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE catalog_games SET status = ?, updated_at = ? WHERE id = ?`,
			string(StatusQueued), timestamp, job.GameID,
		); err != nil {
			return fmt.Errorf("mark game queued: %w", err)
		}
		return nil
	})
	return err
}

type finishSpec struct {
	from        []JobStatus
	to          JobStatus
	gameStatus  Status
	resultJSON  string
	errorDetail string
}

// finishJob applies a guarded terminal-or-failed transition. Only the first
// writer to move the job out of its from-set wins; later writers observe the
// new state and get ErrTerminal or ErrInvalidTransition.
func (s *Store) finishJob(ctx context.Context, id string, spec finishSpec) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		job, err := jobInTx(ctx, tx, id)
		if err != nil {
			return err
		}

		allowed := false
		for _, from := range spec.from {
			if job.Status == from {
				allowed = true
				break
			}
		}
		if !allowed {
			if job.Status.IsTerminal() {
				return ErrTerminal
			}
			return ErrInvalidTransition
		}

		timestamp := formatTime(time.Now().UTC())
		placeholders := make([]string, len(spec.from))
		args := []any{string(spec.to), nullableString(spec.resultJSON), nullableString(spec.errorDetail), timestamp, timestamp, id}
		for i, from := range spec.from {
			placeholders[i] = "?"
			args = append(args, string(from))
		}
		res, err := tx.ExecContext(
			ctx,
			`UPDATE analysis_jobs
             SET status = ?, result_json = COALESCE(?, result_json), error_detail = ?,
                 finished_at = ?, updated_at = ?
             WHERE id = ? AND status IN (`+strings.Join(placeholders, ", ")+`)`,
			args...,
		)
		if err != nil {
			return fmt.Errorf("finish job: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("finish job: %w", err)
		}
		if affected == 0 {
			return ErrTerminal
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE catalog_games SET status = ?, updated_at = ? WHERE id = ?`,
			string(spec.gameStatus), timestamp, job.GameID,
		); err != nil {
			return fmt.Errorf("sync game status: %w", err)
		}
		return nil
	})
}

func jobInTx(ctx context.Context, tx *sql.Tx, id string) (*Job, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM analysis_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	return job, nil
}
