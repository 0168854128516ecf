package ipc

import "rookery/internal/api"

// ServiceName is the RPC service identifier registered on the daemon socket.
const ServiceName = "Rookery"

// Transport DTOs are shared with the HTTP API.
type (
	Game         = api.Game
	UnifiedGame  = api.UnifiedGame
	Job          = api.Job
	JobHealth    = api.JobHealth
	ImportReport = api.ImportReport
	DaemonStatus = api.DaemonStatus
)

// StatusRequest asks for daemon runtime information.
type StatusRequest struct{}

// StatusResponse carries daemon runtime information plus the log location.
type StatusResponse struct {
	Status  DaemonStatus `json:"status"`
	LogPath string       `json:"logPath"`
}

// StopRequest asks the daemon to shut down.
type StopRequest struct{}

// StopResponse acknowledges a shutdown request.
type StopResponse struct {
	Stopping bool `json:"stopping"`
}

// GamesListRequest asks for the reconciled game listing.
type GamesListRequest struct {
	ExcludeCompleted bool `json:"excludeCompleted"`
}

// GamesListResponse carries the reconciled listing plus per-source warnings.
type GamesListResponse struct {
	Games    []UnifiedGame       `json:"games"`
	Warnings []api.SourceWarning `json:"warnings,omitempty"`
}

// CatalogListRequest asks for the persisted catalog without fetching.
type CatalogListRequest struct{}

// CatalogListResponse carries persisted catalog records.
type CatalogListResponse struct {
	Games []Game `json:"games"`
}

// ImportRequest carries raw multi-record PGN text.
type ImportRequest struct {
	Text string `json:"text"`
}

// ImportResponse summarizes a batch import.
type ImportResponse struct {
	Report ImportReport `json:"report"`
}

// AnalyzeRequest queues engine analysis for a game. Zero Depth and Priority
// select the configured defaults.
type AnalyzeRequest struct {
	GameID   string `json:"gameId"`
	Depth    int    `json:"depth"`
	Priority int    `json:"priority"`
}

// AnalyzeResponse carries the queued job.
type AnalyzeResponse struct {
	Job Job `json:"job"`
}

// PriorityRequest replaces or shifts a queued job's priority. When Adjust is
// set, Delta is applied to the current priority; otherwise Priority replaces
// it.
type PriorityRequest struct {
	JobID    string `json:"jobId"`
	Priority int    `json:"priority"`
	Delta    int    `json:"delta"`
	Adjust   bool   `json:"adjust"`
}

// PriorityResponse carries the job after its priority change.
type PriorityResponse struct {
	Job Job `json:"job"`
}

// JobRequest addresses a single job.
type JobRequest struct {
	JobID string `json:"jobId"`
}

// JobResponse carries a single job.
type JobResponse struct {
	Job Job `json:"job"`
}

// JobActionResponse acknowledges a cancel or retry.
type JobActionResponse struct {
	Job Job `json:"job"`
}

// JobsListRequest asks for jobs, optionally filtered by lifecycle status.
type JobsListRequest struct {
	Status string `json:"status,omitempty"`
}

// JobsListResponse carries matching jobs.
type JobsListResponse struct {
	Jobs []Job `json:"jobs"`
}

// HealthRequest asks for aggregate job diagnostics.
type HealthRequest struct{}

// HealthResponse carries aggregate job counts.
type HealthResponse struct {
	Health JobHealth `json:"health"`
}
