package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sahilkadam/truesight/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Tenants ---

func (s *PostgresStore) GetDefaultTenant(ctx context.Context) (*models.Tenant, error) {
	var t models.Tenant
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM tenants WHERE name = 'default' LIMIT 1`,
	).Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get default tenant: %w", err)
	}
	return &t, nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.TenantID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, tenant_id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		key.ID, key.TenantID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE tenant_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.TenantID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`, id, tenantID)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Media Items ---

func (s *PostgresStore) CreateMediaItem(ctx context.Context, item *models.MediaItem) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO media_items (id, tenant_id, filename, original_filename, sha256, size_bytes, media_type, mime_type, storage_path, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		item.ID, item.TenantID, item.Filename, item.OriginalFilename, item.SHA256,
		item.SizeBytes, item.MediaType, item.MimeType, item.StoragePath,
		item.CreatedAt, item.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create media item: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetMediaItem(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.MediaItem, error) {
	var m models.MediaItem
	err := s.pool.QueryRow(ctx,
		`SELECT id, tenant_id, filename, original_filename, sha256, size_bytes, media_type, mime_type, storage_path, created_at, updated_at
		 FROM media_items WHERE id = $1 AND tenant_id = $2`, id, tenantID,
	).Scan(&m.ID, &m.TenantID, &m.Filename, &m.OriginalFilename, &m.SHA256,
		&m.SizeBytes, &m.MediaType, &m.MimeType, &m.StoragePath, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get media item: %w", err)
	}
	return &m, nil
}

func (s *PostgresStore) GetMediaItemByHash(ctx context.Context, tenantID uuid.UUID, sha256 string) (*models.MediaItem, error) {
	var m models.MediaItem
	err := s.pool.QueryRow(ctx,
		`SELECT id, tenant_id, filename, original_filename, sha256, size_bytes, media_type, mime_type, storage_path, created_at, updated_at
		 FROM media_items WHERE tenant_id = $1 AND sha256 = $2`, tenantID, sha256,
	).Scan(&m.ID, &m.TenantID, &m.Filename, &m.OriginalFilename, &m.SHA256,
		&m.SizeBytes, &m.MediaType, &m.MimeType, &m.StoragePath, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get media item by hash: %w", err)
	}
	return &m, nil
}

// --- Analysis Jobs ---

const jobColumns = `id, tenant_id, media_id, status, stage, error_message, result, overall_score, verdict, started_at, completed_at, created_at, updated_at`

func scanJob(row pgx.Row) (*models.AnalysisJob, error) {
	var j models.AnalysisJob
	err := row.Scan(&j.ID, &j.TenantID, &j.MediaID, &j.Status, &j.Stage, &j.ErrorMessage,
		&j.Result, &j.OverallScore, &j.Verdict, &j.StartedAt, &j.CompletedAt,
		&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *PostgresStore) CreateAnalysisJob(ctx context.Context, job *models.AnalysisJob) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO analysis_jobs (id, tenant_id, media_id, status, stage, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID, job.TenantID, job.MediaID, job.Status, job.Stage, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create analysis job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAnalysisJob(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.AnalysisJob, error) {
	j, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM analysis_jobs WHERE id = $1 AND tenant_id = $2`, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis job: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) GetActiveJobForMedia(ctx context.Context, mediaID uuid.UUID) (*models.AnalysisJob, error) {
	j, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM analysis_jobs
		 WHERE media_id = $1 AND status IN ('pending', 'running')
		 ORDER BY created_at DESC LIMIT 1`, mediaID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get active job for media: %w", err)
	}
	return j, nil
}

// ClaimJob is the idempotence gate: the WHERE clause only matches a pending
// job, so a second start attempt affects zero rows and gets ErrConflict.
func (s *PostgresStore) ClaimJob(ctx context.Context, id uuid.UUID, stage string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analysis_jobs
		 SET status = 'running', stage = $2, started_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND status = 'pending'`, id, stage)
	if err != nil {
		return fmt.Errorf("claim job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// AdvanceJobStage writes stage and result in one statement so a concurrent
// status read can never observe one without the other. Segments produced by
// the finished stage ride in the same transaction.
func (s *PostgresStore) AdvanceJobStage(ctx context.Context, id uuid.UUID, stage string, result *models.AnalysisResult, segments []models.EvidenceSegment) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("advance job stage: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE analysis_jobs SET stage = $2, result = $3, updated_at = NOW()
		 WHERE id = $1 AND status = 'running'`, id, stage, result)
	if err != nil {
		return fmt.Errorf("advance job stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}

	for _, seg := range segments {
		if _, err := tx.Exec(ctx,
			`INSERT INTO segments (id, job_id, start_ms, end_ms, segment_type, score, reason, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
			seg.ID, id, seg.StartMS, seg.EndMS, seg.SegmentType, seg.Score, seg.Reason); err != nil {
			return fmt.Errorf("insert segment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("advance job stage: commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) CompleteJob(ctx context.Context, id uuid.UUID, overallScore float64, verdict string, result *models.AnalysisResult, report *models.Report) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("complete job: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE analysis_jobs
		 SET status = 'done', stage = 'done', result = $2, overall_score = $3, verdict = $4,
		     completed_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND status = 'running'`, id, result, overallScore, verdict)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}

	if report != nil {
		if _, err := tx.Exec(ctx,
			`INSERT INTO reports (id, job_id, summary, full_report, generated_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			report.ID, id, report.Summary, report.FullReport, report.GeneratedAt); err != nil {
			return fmt.Errorf("insert report: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("complete job: commit: %w", err)
	}
	return nil
}

// FailJob leaves stage untouched, freezing it at the point of failure. A
// job that is already terminal cannot be failed again.
func (s *PostgresStore) FailJob(ctx context.Context, id uuid.UUID, errorMessage string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analysis_jobs
		 SET status = 'failed', error_message = $2, completed_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND status IN ('pending', 'running')`, id, errorMessage)
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// --- Segments ---

func (s *PostgresStore) ListSegments(ctx context.Context, jobID uuid.UUID) ([]models.EvidenceSegment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, job_id, start_ms, end_ms, segment_type, score, reason, created_at
		 FROM segments WHERE job_id = $1 ORDER BY start_ms, end_ms`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	segments := []models.EvidenceSegment{}
	for rows.Next() {
		var seg models.EvidenceSegment
		if err := rows.Scan(&seg.ID, &seg.JobID, &seg.StartMS, &seg.EndMS,
			&seg.SegmentType, &seg.Score, &seg.Reason, &seg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// --- Reports ---

func (s *PostgresStore) GetReportByJobID(ctx context.Context, jobID uuid.UUID) (*models.Report, error) {
	var r models.Report
	err := s.pool.QueryRow(ctx,
		`SELECT id, job_id, summary, full_report, generated_at
		 FROM reports WHERE job_id = $1`, jobID,
	).Scan(&r.ID, &r.JobID, &r.Summary, &r.FullReport, &r.GeneratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report by job: %w", err)
	}
	return &r, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
