package response

import (
	"time"

	"github.com/user/job-insights/internal/entity"
)

// SessionResponse is a DTO for the running instrumentation session.
type SessionResponse struct {
	ID         string     `json:"id"`
	State      string     `json:"state"` // "idle", "running", "stopped"
	Records    int        `json:"records"`
	Candidates int64      `json:"candidates"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
}

// JobResponse mirrors entity.JobRecord. Unknown counts encode as "N/A".
type JobResponse struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	Company          string        `json:"company"`
	ListedAt         string        `json:"listed_at"`
	OriginalListedAt string        `json:"original_listed_at"`
	ExpireAt         string        `json:"expire_at"`
	Views            entity.Metric `json:"views"`
	Applies          entity.Metric `json:"applies"`
	CapturedAt       time.Time     `json:"captured_at"`
}
