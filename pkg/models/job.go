package models

import (
	"time"

	"github.com/google/uuid"
)

// Coarse job states. Stage (internal/pipeline) tracks the finer position
// inside the running pipeline; status only says whether the job is waiting,
// in flight, or terminal.
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// AnalysisJob tracks one analysis run over a media item. The API returns a
// job id on POST /api/v1/analysis; the client polls
// GET /api/v1/analysis/{job_id}/status until status is done or failed.
//
// Invariants enforced by the store: OverallScore and Verdict are set iff
// status is done; ErrorMessage is set iff status is failed; Stage only moves
// forward and freezes at the point of failure.
type AnalysisJob struct {
	ID           uuid.UUID       `db:"id"            json:"id"`
	TenantID     uuid.UUID       `db:"tenant_id"     json:"tenant_id"`
	MediaID      uuid.UUID       `db:"media_id"      json:"media_id"`
	Status       string          `db:"status"        json:"status"`
	Stage        string          `db:"stage"         json:"stage"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	Result       *AnalysisResult `db:"result"        json:"result,omitempty"`
	OverallScore *float64        `db:"overall_score" json:"overall_score,omitempty"`
	Verdict      *string         `db:"verdict"       json:"verdict,omitempty"`
	StartedAt    *time.Time      `db:"started_at"    json:"started_at,omitempty"`
	CompletedAt  *time.Time      `db:"completed_at"  json:"completed_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"    json:"updated_at"`
}
