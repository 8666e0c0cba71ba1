package handler

import (
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sahilkadam/truesight/internal/api/middleware"
	"github.com/sahilkadam/truesight/internal/api/response"
	"github.com/sahilkadam/truesight/internal/store"
	"github.com/sahilkadam/truesight/pkg/timeline"
)

type timelineMarker struct {
	TimestampMS int     `json:"timestamp_ms"`
	EndMS       int     `json:"end_ms"`
	SegmentType string  `json:"segment_type"`
	Score       float64 `json:"score"`
	Reason      string  `json:"reason"`
}

type evidenceTimelineResponse struct {
	JobID      uuid.UUID        `json:"job_id"`
	DurationMS *int             `json:"duration_ms"`
	FlaggedMS  int              `json:"flagged_ms"`
	Markers    []timelineMarker `json:"markers"`
}

// NewEvidenceTimelineHandler returns an http.HandlerFunc for
// GET /api/v1/analysis/{jobID}/evidence/timeline. The timeline is a
// projection over whatever segments the pipeline has persisted so far, so
// it is served for jobs in any state; markers stay empty until the lip-sync
// stage has committed evidence, and duration appears once metadata
// extraction has run.
func NewEvidenceTimelineHandler(st store.Store) http.HandlerFunc {
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

		segments, err := st.ListSegments(r.Context(), jobID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load evidence segments", nil)
			return
		}

		sort.Slice(segments, func(i, j int) bool {
			if segments[i].StartMS != segments[j].StartMS {
				return segments[i].StartMS < segments[j].StartMS
			}
			return segments[i].EndMS < segments[j].EndMS
		})

		markers := make([]timelineMarker, 0, len(segments))
		spans := make([]timeline.Span, 0, len(segments))
		for _, seg := range segments {
			markers = append(markers, timelineMarker{
				TimestampMS: seg.StartMS,
				EndMS:       seg.EndMS,
				SegmentType: seg.SegmentType,
				Score:       seg.Score,
				Reason:      seg.Reason,
			})
			spans = append(spans, timeline.Span{StartMS: seg.StartMS, EndMS: seg.EndMS})
		}

		var durationMS *int
		if job.Result != nil && job.Result.Metadata != nil {
			d := job.Result.Metadata.DurationMS
			durationMS = &d
		}

		response.JSON(w, evidenceTimelineResponse{
			JobID:      job.ID,
			DurationMS: durationMS,
			FlaggedMS:  timeline.TotalMS(spans),
			Markers:    markers,
		})
	}
}
