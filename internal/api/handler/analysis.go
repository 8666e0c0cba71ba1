package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sahilkadam/truesight/internal/api/middleware"
	"github.com/sahilkadam/truesight/internal/api/response"
	"github.com/sahilkadam/truesight/internal/cache"
	"github.com/sahilkadam/truesight/internal/pipeline"
	"github.com/sahilkadam/truesight/internal/store"
	"github.com/sahilkadam/truesight/pkg/models"
)

type startAnalysisResponse struct {
	JobID  uuid.UUID `json:"job_id"`
	Status string    `json:"status"`
	Stage  string    `json:"stage"`
}

// NewStartAnalysisHandler returns an http.HandlerFunc for POST /api/v1/analysis.
// A pending or running job for the same media item is returned as-is instead
// of starting a second pipeline over the same content.
func NewStartAnalysisHandler(st store.Store, runner *pipeline.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := middleware.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}

		var req struct {
			MediaID string `json:"media_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		mediaID, err := uuid.Parse(req.MediaID)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "media_id must be a valid UUID", nil)
			return
		}

		mediaItem, err := st.GetMediaItem(r.Context(), mediaID, tenantID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "MEDIA_NOT_FOUND", "Media item not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load media item", nil)
			return
		}

		if active, err := st.GetActiveJobForMedia(r.Context(), mediaID); err == nil {
			response.Accepted(w, startAnalysisResponse{
				JobID:  active.ID,
				Status: active.Status,
				Stage:  active.Stage,
			})
			return
		} else if !errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check for active jobs", nil)
			return
		}

		job := &models.AnalysisJob{
			ID:       uuid.New(),
			TenantID: tenantID,
			MediaID:  mediaID,
			Status:   models.JobStatusPending,
			Stage:    string(pipeline.StagePending),
		}
		if err := st.CreateAnalysisJob(r.Context(), job); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create analysis job", nil)
			return
		}

		if err := runner.Start(r.Context(), job, mediaItem); err != nil {
			// Losing the claim means another starter got here first with the
			// same job; the job is still valid, report it as accepted.
			if !errors.Is(err, store.ErrConflict) {
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to start analysis", nil)
				return
			}
		}

		response.Accepted(w, startAnalysisResponse{
			JobID:  job.ID,
			Status: models.JobStatusRunning,
			Stage:  string(pipeline.StageValidating),
		})
	}
}

// NewJobStatusHandler returns an http.HandlerFunc for
// GET /api/v1/analysis/{jobID}/status. It prefers the cached snapshot the
// runner publishes on every transition and falls back to the job row. A
// terminal row always wins over the cache: snapshot publication is
// best-effort, so a lost publish must not keep reporting a finished job
// as running until the snapshot TTL expires.
func NewJobStatusHandler(st store.Store, ca cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := middleware.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}

		jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "jobID must be a valid UUID", nil)
			return
		}

		// Tenant scoping happens against the store even on a cache hit.
		job, err := st.GetAnalysisJob(r.Context(), jobID, tenantID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "Analysis job not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load job", nil)
			return
		}

		if job.Status == models.JobStatusDone || job.Status == models.JobStatusFailed {
			response.JSON(w, pipeline.SnapshotFromJob(job))
			return
		}

		if data, found, cerr := ca.GetJobSnapshot(r.Context(), jobID); cerr == nil && found {
			var snap pipeline.Snapshot
			if json.Unmarshal(data, &snap) == nil {
				response.JSON(w, snap)
				return
			}
		}

		response.JSON(w, pipeline.SnapshotFromJob(job))
	}
}

type analysisResultResponse struct {
	JobID        uuid.UUID                `json:"job_id"`
	MediaID      uuid.UUID                `json:"media_id"`
	Status       string                   `json:"status"`
	OverallScore float64                  `json:"overall_score"`
	Verdict      string                   `json:"verdict"`
	Result       *models.AnalysisResult   `json:"result"`
	Segments     []models.EvidenceSegment `json:"segments"`
	CompletedAt  *time.Time               `json:"completed_at,omitempty"`
}

type failedJobDetails struct {
	Stage        string `json:"stage"`
	ErrorMessage string `json:"error_message"`
}

// NewJobResultHandler returns an http.HandlerFunc for
// GET /api/v1/analysis/{jobID}/result. The full result exists only for done
// jobs; pending and running jobs get an explicit not-ready conflict, failed
// jobs an explicit failure payload with the stage the pipeline froze in.
func NewJobResultHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := middleware.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}

		jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "jobID must be a valid UUID", nil)
			return
		}

		job, err := st.GetAnalysisJob(r.Context(), jobID, tenantID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "Analysis job not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load job", nil)
			return
		}

		switch job.Status {
		case models.JobStatusPending, models.JobStatusRunning:
			response.Error(w, http.StatusConflict, "ANALYSIS_NOT_READY",
				"Analysis is still in progress", map[string]string{"stage": job.Stage})
			return
		case models.JobStatusFailed:
			msg := ""
			if job.ErrorMessage != nil {
				msg = *job.ErrorMessage
			}
			response.Error(w, http.StatusUnprocessableEntity, "ANALYSIS_FAILED",
				"Analysis failed", failedJobDetails{Stage: job.Stage, ErrorMessage: msg})
			return
		}

		segments, err := st.ListSegments(r.Context(), jobID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load evidence segments", nil)
			return
		}

		var score float64
		if job.OverallScore != nil {
			score = *job.OverallScore
		}
		var verdict string
		if job.Verdict != nil {
			verdict = *job.Verdict
		}

		response.JSON(w, analysisResultResponse{
			JobID:        job.ID,
			MediaID:      job.MediaID,
			Status:       job.Status,
			OverallScore: score,
			Verdict:      verdict,
			Result:       job.Result,
			Segments:     segments,
			CompletedAt:  job.CompletedAt,
		})
	}
}
