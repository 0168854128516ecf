package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Game describes a persisted catalog game in a transport-friendly format.
type Game struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Source      string `json:"source"`
	ExternalID  string `json:"externalId,omitempty"`
	White       string `json:"white"`
	Black       string `json:"black"`
	WhiteRating int    `json:"whiteRating,omitempty"`
	BlackRating int    `json:"blackRating,omitempty"`
	Result      string `json:"result,omitempty"`
	TimeControl string `json:"timeControl,omitempty"`
	PlayedAt    string `json:"playedAt,omitempty"`
	Moves       string `json:"moves,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// UnifiedGame is a reconciled listing entry: an external or manual game with
// its best-known evaluation status attached.
type UnifiedGame struct {
	GameID      string `json:"gameId,omitempty"`
	Source      string `json:"source"`
	ExternalID  string `json:"externalId,omitempty"`
	White       string `json:"white"`
	Black       string `json:"black"`
	WhiteRating int    `json:"whiteRating,omitempty"`
	BlackRating int    `json:"blackRating,omitempty"`
	Result      string `json:"result,omitempty"`
	TimeControl string `json:"timeControl,omitempty"`
	PlayedAt    string `json:"playedAt,omitempty"`
	Status      string `json:"status"`
}

// SourceWarning annotates a listing with a non-fatal per-source failure.
type SourceWarning struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Job describes an analysis job in a transport-friendly format.
type Job struct {
	ID            string `json:"id"`
	GameID        string `json:"gameId"`
	Status        string `json:"status"`
	Priority      int    `json:"priority"`
	Depth         int    `json:"depth"`
	PositionsDone int    `json:"positionsDone"`
	PositionsAll  int    `json:"positionsAll"`
	ErrorDetail   string `json:"errorDetail,omitempty"`
	ResultJSON    string `json:"resultJson,omitempty"`
	RetryCount    int    `json:"retryCount"`
	CreatedAt     string `json:"createdAt,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
	StartedAt     string `json:"startedAt,omitempty"`
	FinishedAt    string `json:"finishedAt,omitempty"`
}

// JobHealth reports aggregate job counts per lifecycle state.
type JobHealth struct {
	Total     int `json:"total"`
	Queued    int `json:"queued"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// ImportReport summarizes a batch import for API consumers.
type ImportReport struct {
	Accepted int      `json:"accepted"`
	Rejected int      `json:"rejected"`
	Errors   []string `json:"errors,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool      `json:"running"`
	PID          int       `json:"pid"`
	DatabasePath string    `json:"databasePath"`
	LockFilePath string    `json:"lockFilePath"`
	User         string    `json:"user"`
	GameCount    int       `json:"gameCount"`
	Jobs         JobHealth `json:"jobs"`
}

// GameListResponse wraps a collection of unified games plus warnings.
type GameListResponse struct {
	Games    []UnifiedGame   `json:"games"`
	Warnings []SourceWarning `json:"warnings,omitempty"`
}

// CatalogListResponse wraps the persisted catalog without fetch results.
type CatalogListResponse struct {
	Games []Game `json:"games"`
}

// JobListResponse wraps a collection of jobs.
type JobListResponse struct {
	Jobs []Job `json:"jobs"`
}

// JobResponse wraps a single job.
type JobResponse struct {
	Job Job `json:"job"`
}
