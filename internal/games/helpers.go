package games

import (
	"database/sql"
	"strings"
	"time"
)

const gameColumns = "id, user_id, source, external_id, white, black, white_rating, black_rating, result, time_control, played_at, moves, status, created_at, updated_at"

const jobColumns = "id, game_id, status, priority, depth, positions_done, positions_all, error_detail, result_json, retry_count, created_at, updated_at, started_at, finished_at"

type rowScanner interface{ Scan(dest ...any) error }

func scanGame(scanner rowScanner) (*Game, error) {
	var (
		id          string
		userID      string
		sourceStr   string
		externalID  sql.NullString
		white       sql.NullString
		black       sql.NullString
		whiteRating sql.NullInt64
		blackRating sql.NullInt64
		result      sql.NullString
		timeControl sql.NullString
		playedRaw   sql.NullString
		moves       sql.NullString
		statusStr   string
		createdRaw  string
		updatedRaw  string
	)

	if err := scanner.Scan(
		&id,
		&userID,
		&sourceStr,
		&externalID,
		&white,
		&black,
		&whiteRating,
		&blackRating,
		&result,
		&timeControl,
		&playedRaw,
		&moves,
		&statusStr,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	game := &Game{
		ID:          id,
		UserID:      userID,
		Source:      Source(sourceStr),
		ExternalID:  externalID.String,
		White:       white.String,
		Black:       black.String,
		WhiteRating: int(whiteRating.Int64),
		BlackRating: int(blackRating.Int64),
		Result:      result.String,
		TimeControl: timeControl.String,
		Moves:       moves.String,
		Status:      Status(statusStr),
		CreatedAt:   parseTime(createdRaw),
		UpdatedAt:   parseTime(updatedRaw),
	}
	if playedRaw.Valid {
		game.PlayedAt = parseTime(playedRaw.String)
	}
	return game, nil
}

func scanJob(scanner rowScanner) (*Job, error) {
	var (
		id          string
		gameID      string
		statusStr   string
		priority    int
		depth       int
		done        int
		total       int
		errorDetail sql.NullString
		resultJSON  sql.NullString
		retryCount  int
		createdRaw  string
		updatedRaw  string
		startedRaw  sql.NullString
		finishedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&gameID,
		&statusStr,
		&priority,
		&depth,
		&done,
		&total,
		&errorDetail,
		&resultJSON,
		&retryCount,
		&createdRaw,
		&updatedRaw,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:            id,
		GameID:        gameID,
		Status:        JobStatus(statusStr),
		Priority:      priority,
		Depth:         depth,
		PositionsDone: done,
		PositionsAll:  total,
		ErrorDetail:   errorDetail.String,
		ResultJSON:    resultJSON.String,
		RetryCount:    retryCount,
		CreatedAt:     parseTime(createdRaw),
		UpdatedAt:     parseTime(updatedRaw),
	}
	if startedRaw.Valid {
		ts := parseTime(startedRaw.String)
		job.StartedAt = &ts
	}
	if finishedRaw.Valid {
		ts := parseTime(finishedRaw.String)
		job.FinishedAt = &ts
	}
	return job, nil
}

func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts.UTC()
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC()
	}
	return time.Time{}
}

func formatTime(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableTime(ts *time.Time) any {
	if ts == nil || ts.IsZero() {
		return nil
	}
	return formatTime(*ts)
}
