package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sahilkadam/truesight/pkg/models"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key violation")

	// ErrConflict means a guarded job-state write found the job in a
	// different state than required: the claim was lost or the job is
	// already terminal. Terminal jobs are immutable; this is how that is
	// enforced rather than merely conventional.
	ErrConflict = errors.New("job state conflict")
)

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error
	GetDefaultTenant(ctx context.Context) (*models.Tenant, error)

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error

	CreateMediaItem(ctx context.Context, item *models.MediaItem) error
	GetMediaItem(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.MediaItem, error)
	GetMediaItemByHash(ctx context.Context, tenantID uuid.UUID, sha256 string) (*models.MediaItem, error)

	CreateAnalysisJob(ctx context.Context, job *models.AnalysisJob) error
	GetAnalysisJob(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.AnalysisJob, error)
	GetActiveJobForMedia(ctx context.Context, mediaID uuid.UUID) (*models.AnalysisJob, error)

	// ClaimJob moves a job from pending to running and into the given
	// first stage. Exactly one caller can win the claim; everyone else
	// gets ErrConflict. This is what makes start idempotent.
	ClaimJob(ctx context.Context, id uuid.UUID, stage string) error

	// AdvanceJobStage publishes the next stage together with the result
	// accumulated so far (and any evidence segments produced by the stage
	// just finished) in one atomic write, guarded on status = running.
	AdvanceJobStage(ctx context.Context, id uuid.UUID, stage string, result *models.AnalysisResult, segments []models.EvidenceSegment) error

	// CompleteJob performs the terminal transition: status/stage done,
	// overall score, verdict, final result, and the report row, all in one
	// transaction. Guarded on status = running.
	CompleteJob(ctx context.Context, id uuid.UUID, overallScore float64, verdict string, result *models.AnalysisResult, report *models.Report) error

	// FailJob terminates a job at its current (frozen) stage with a short
	// diagnostic. Guarded on status in (pending, running).
	FailJob(ctx context.Context, id uuid.UUID, errorMessage string) error

	ListSegments(ctx context.Context, jobID uuid.UUID) ([]models.EvidenceSegment, error)
	GetReportByJobID(ctx context.Context, jobID uuid.UUID) (*models.Report, error)
}
