package games

import (
	"strings"
	"time"
)

// Source identifies where a game record originated.
type Source string

const (
	SourceChessCom Source = "chesscom"
	SourceLichess  Source = "lichess"
	SourceManual   Source = "manual"
)

var allSources = []Source{SourceChessCom, SourceLichess, SourceManual}

// ParseSource converts a string into a known Source.
func ParseSource(value string) (Source, bool) {
	normalized := Source(strings.ToLower(strings.TrimSpace(value)))
	for _, source := range allSources {
		if source == normalized {
			return source, true
		}
	}
	return "", false
}

// Status represents the evaluation lifecycle of a catalog game.
type Status string

const (
	StatusPending    Status = "pending"
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusQueued,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

// statusRank orders evaluation statuses from least to most advanced. When two
// persisted games collide on a canonical key during reconciliation the higher
// rank wins.
var statusRank = map[Status]int{
	StatusPending:    1,
	StatusQueued:     2,
	StatusProcessing: 3,
	StatusFailed:     4,
	StatusCompleted:  5,
}

// AllStatuses returns the ordered list of known evaluation statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusRank[normalized]
	return normalized, ok
}

// Rank returns the reconciliation priority of a status. Unknown statuses rank
// below pending so they never displace a real entry.
func (s Status) Rank() int {
	return statusRank[s]
}

// JobStatus represents the lifecycle of an analysis job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

var allJobStatuses = []JobStatus{JobQueued, JobRunning, JobCompleted, JobFailed, JobCancelled}

// ParseJobStatus converts a string into a known JobStatus.
func ParseJobStatus(value string) (JobStatus, bool) {
	normalized := JobStatus(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allJobStatuses {
		if status == normalized {
			return normalized, true
		}
	}
	return "", false
}

// IsTerminal reports whether a job status permits no further transitions.
// Failed is not terminal: the explicit retry path moves it back to queued.
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobCancelled
}

// IsActive reports whether a job occupies the single non-terminal slot for
// its game.
func (s JobStatus) IsActive() bool {
	return s == JobQueued || s == JobRunning
}

// Priority bounds for analysis jobs. Requests outside the range are rejected,
// never clamped.
const (
	MinPriority     = 1
	MaxPriority     = 10
	DefaultPriority = 5
)

// ValidPriority reports whether p lies within the permitted range.
func ValidPriority(p int) bool {
	return p >= MinPriority && p <= MaxPriority
}

// Game is a durable catalog record. ID is an opaque, stable identifier;
// ExternalID is the raw identifier exactly as last seen from the source.
type Game struct {
	ID          string
	UserID      string
	Source      Source
	ExternalID  string
	White       string
	Black       string
	WhiteRating int
	BlackRating int
	Result      string
	TimeControl string
	PlayedAt    time.Time
	Moves       string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Job is one tracked request to run engine analysis over a game.
type Job struct {
	ID            string
	GameID        string
	Status        JobStatus
	Priority      int
	Depth         int
	PositionsDone int
	PositionsAll  int
	ErrorDetail   string
	ResultJSON    string
	RetryCount    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	StartedAt     *time.Time
	FinishedAt    *time.Time
}

// HealthSummary describes aggregated job counts per lifecycle state.
type HealthSummary struct {
	Total     int
	Queued    int
	Running   int
	Completed int
	Failed    int
	Cancelled int
}
