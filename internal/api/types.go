package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Run describes one reconciliation pass.
type Run struct {
	ID         string `json:"id"`
	Trigger    string `json:"trigger"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt,omitempty"`
	Moved      int    `json:"moved"`
	Failures   int    `json:"failures"`
	Error      string `json:"error,omitempty"`
}

// Placement describes one episode moved into the library.
type Placement struct {
	RunID      string `json:"runId"`
	Show       string `json:"show"`
	Season     int    `json:"season"`
	Episode    int    `json:"episode"`
	SourcePath string `json:"sourcePath"`
	DestPath   string `json:"destPath"`
	Renamed    bool   `json:"renamed"`
	PlacedAt   string `json:"placedAt"`
}

// Failure is a show or task that failed during the last pass.
type Failure struct {
	Task  string `json:"task"`
	Show  string `json:"show,omitempty"`
	Error string `json:"error"`
}

// PassSummary is the in-memory outcome of the most recent pass.
type PassSummary struct {
	RunID      string    `json:"runId"`
	StartedAt  string    `json:"startedAt"`
	FinishedAt string    `json:"finishedAt,omitempty"`
	Tasks      int       `json:"tasks"`
	Shows      int       `json:"shows"`
	Moved      int       `json:"moved"`
	Failures   []Failure `json:"failures,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running         bool         `json:"running"`
	PID             int          `json:"pid"`
	Syncing         bool         `json:"syncing"`
	IntervalSeconds int          `json:"intervalSeconds"`
	Tasks           int          `json:"tasks"`
	Passes          int          `json:"passes"`
	StartedAt       string       `json:"startedAt,omitempty"`
	NextPassAt      string       `json:"nextPassAt,omitempty"`
	HistoryDBPath   string       `json:"historyDbPath,omitempty"`
	LockFilePath    string       `json:"lockFilePath"`
	LastPass        *PassSummary `json:"lastPass,omitempty"`
}

// HealthResponse is returned by the liveness endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// RunListResponse wraps recent runs.
type RunListResponse struct {
	Runs []Run `json:"runs"`
}

// PlacementListResponse wraps recent placements.
type PlacementListResponse struct {
	Placements []Placement `json:"placements"`
}

// SyncResponse acknowledges a manually triggered pass.
type SyncResponse struct {
	Queued  bool   `json:"queued"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
