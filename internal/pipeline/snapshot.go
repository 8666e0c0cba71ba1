package pipeline

import (
	"github.com/google/uuid"
	"github.com/sahilkadam/truesight/pkg/models"
)

// Snapshot is the lightweight status view published to the cache on every
// stage transition and served to status pollers. A failed snapshot keeps
// the stage the job failed in.
type Snapshot struct {
	JobID           uuid.UUID `json:"job_id"`
	Status          string    `json:"status"`
	Stage           string    `json:"stage"`
	ProgressPercent int       `json:"progress_percent"`
	ErrorMessage    *string   `json:"error_message,omitempty"`
}

// SnapshotFromJob builds a Snapshot from a persisted job row, used when the
// cache has no entry and the poller falls back to the database.
func SnapshotFromJob(job *models.AnalysisJob) Snapshot {
	return Snapshot{
		JobID:           job.ID,
		Status:          job.Status,
		Stage:           job.Stage,
		ProgressPercent: Stage(job.Stage).Progress(),
		ErrorMessage:    job.ErrorMessage,
	}
}
