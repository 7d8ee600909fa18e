package models

import (
	"time"
)

// RunStatus represents the status of a pipeline run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunType represents the kind of pipeline run
type RunType string

const (
	RunTypeAutoPost RunType = "autopost"
	RunTypeCollect  RunType = "collect"
	RunTypeImport   RunType = "import"
)

// Run records one invocation of the auto-post or collection pipeline
type Run struct {
	ID          string     `json:"runId" db:"id"`
	Type        RunType    `json:"type" db:"type"`
	Status      RunStatus  `json:"status" db:"status"`
	Requested   int        `json:"requested" db:"requested"`
	Succeeded   int        `json:"succeeded" db:"succeeded"`
	Failed      int        `json:"failed" db:"failed"`
	DurationMs  int64      `json:"durationMs,omitempty" db:"duration_ms"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	CompletedAt *time.Time `json:"completedAt,omitempty" db:"completed_at"`
}

// RunError represents one skipped keyword or rejected import line within a run
type RunError struct {
	Keyword string     `json:"keyword"`
	Reason  SkipReason `json:"reason"`
	Message string     `json:"message"`
}

// RunResponse is the API response for run status
type RunResponse struct {
	Run
	Errors []RunError `json:"errors,omitempty"`
}
