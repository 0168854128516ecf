package api

import (
	"time"

	"rookery/internal/catalog"
	"rookery/internal/games"
	"rookery/internal/reconcile"
	"rookery/internal/sources"
)

// FromGame converts a catalog record to its API representation.
func FromGame(game *games.Game) Game {
	if game == nil {
		return Game{}
	}
	return Game{
		ID:          game.ID,
		UserID:      game.UserID,
		Source:      string(game.Source),
		ExternalID:  game.ExternalID,
		White:       game.White,
		Black:       game.Black,
		WhiteRating: game.WhiteRating,
		BlackRating: game.BlackRating,
		Result:      game.Result,
		TimeControl: game.TimeControl,
		PlayedAt:    FormatTime(game.PlayedAt),
		Moves:       game.Moves,
		Status:      string(game.Status),
		CreatedAt:   FormatTime(game.CreatedAt),
		UpdatedAt:   FormatTime(game.UpdatedAt),
	}
}

// FromGames converts a slice of catalog records into API DTOs.
func FromGames(list []*games.Game) []Game {
	if len(list) == 0 {
		return nil
	}
	out := make([]Game, 0, len(list))
	for _, game := range list {
		out = append(out, FromGame(game))
	}
	return out
}

// FromUnified converts one reconciled entry to its API representation.
func FromUnified(entry reconcile.Unified) UnifiedGame {
	return UnifiedGame{
		GameID:      entry.GameID,
		Source:      string(entry.Source),
		ExternalID:  entry.ExternalID,
		White:       entry.White,
		Black:       entry.Black,
		WhiteRating: entry.WhiteRating,
		BlackRating: entry.BlackRating,
		Result:      entry.Result,
		TimeControl: entry.TimeControl,
		PlayedAt:    FormatTime(entry.PlayedAt),
		Status:      string(entry.Status),
	}
}

// FromListResult converts a unified listing plus warnings into an API
// response payload.
func FromListResult(result catalog.ListResult) GameListResponse {
	resp := GameListResponse{Games: make([]UnifiedGame, 0, len(result.Games))}
	for _, entry := range result.Games {
		resp.Games = append(resp.Games, FromUnified(entry))
	}
	resp.Warnings = FromWarnings(result.Warnings)
	return resp
}

// FromWarnings converts per-source fetch warnings into API DTOs.
func FromWarnings(warnings []sources.Warning) []SourceWarning {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]SourceWarning, 0, len(warnings))
	for _, warning := range warnings {
		message := ""
		if warning.Err != nil {
			message = warning.Err.Error()
		}
		out = append(out, SourceWarning{Source: string(warning.Source), Error: message})
	}
	return out
}

// FromJob converts a job record to its API representation.
func FromJob(job *games.Job) Job {
	if job == nil {
		return Job{}
	}
	dto := Job{
		ID:            job.ID,
		GameID:        job.GameID,
		Status:        string(job.Status),
		Priority:      job.Priority,
		Depth:         job.Depth,
		PositionsDone: job.PositionsDone,
		PositionsAll:  job.PositionsAll,
		ErrorDetail:   job.ErrorDetail,
		ResultJSON:    job.ResultJSON,
		RetryCount:    job.RetryCount,
		CreatedAt:     FormatTime(job.CreatedAt),
		UpdatedAt:     FormatTime(job.UpdatedAt),
	}
	if job.StartedAt != nil {
		dto.StartedAt = FormatTime(*job.StartedAt)
	}
	if job.FinishedAt != nil {
		dto.FinishedAt = FormatTime(*job.FinishedAt)
	}
	return dto
}

// FromJobs converts a slice of job records into API DTOs.
func FromJobs(list []*games.Job) []Job {
	if len(list) == 0 {
		return nil
	}
	out := make([]Job, 0, len(list))
	for _, job := range list {
		out = append(out, FromJob(job))
	}
	return out
}

// FromHealth converts a job health summary into its API representation.
func FromHealth(summary games.HealthSummary) JobHealth {
	return JobHealth{
		Total:     summary.Total,
		Queued:    summary.Queued,
		Running:   summary.Running,
		Completed: summary.Completed,
		Failed:    summary.Failed,
		Cancelled: summary.Cancelled,
	}
}

// FromImportReport converts a batch import report into its API
// representation.
func FromImportReport(report catalog.ImportReport) ImportReport {
	return ImportReport{
		Accepted: report.Accepted,
		Rejected: report.Rejected,
		Errors:   append([]string(nil), report.Errors...),
	}
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
