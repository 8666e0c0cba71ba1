package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sahilkadam/truesight/internal/api/middleware"
	"github.com/sahilkadam/truesight/internal/api/response"
	"github.com/sahilkadam/truesight/internal/render"
	"github.com/sahilkadam/truesight/internal/store"
	"github.com/sahilkadam/truesight/pkg/models"
)

// loadDoneReport resolves {jobID} against the tenant and returns its report,
// writing the appropriate error response when the report is not servable.
func loadDoneReport(w http.ResponseWriter, r *http.Request, st store.Store) (*models.Report, bool) {
	tenantID, ok := middleware.GetTenantID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
		return nil, false
	}

	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "jobID must be a valid UUID", nil)
		return nil, false
	}

	job, err := st.GetAnalysisJob(r.Context(), jobID, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "Analysis job not found", nil)
			return nil, false
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load job", nil)
		return nil, false
	}

	switch job.Status {
	case models.JobStatusDone:
	case models.JobStatusFailed:
		response.Error(w, http.StatusUnprocessableEntity, "ANALYSIS_FAILED",
			"Analysis failed; no report was produced", nil)
		return nil, false
	default:
		response.Error(w, http.StatusConflict, "ANALYSIS_NOT_READY",
			"Analysis is still in progress", map[string]string{"stage": job.Stage})
		return nil, false
	}

	rep, err := st.GetReportByJobID(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "REPORT_NOT_FOUND", "Report not found", nil)
			return nil, false
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load report", nil)
		return nil, false
	}
	return rep, true
}

// NewGetReportHandler returns an http.HandlerFunc for
// GET /api/v1/analysis/{jobID}/report.
func NewGetReportHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, ok := loadDoneReport(w, r, st)
		if !ok {
			return
		}
		response.JSON(w, rep)
	}
}

// NewReportPDFHandler returns an http.HandlerFunc for
// GET /api/v1/analysis/{jobID}/report/pdf. The document is rendered on
// demand by the external renderer; nothing is cached server-side.
func NewReportPDFHandler(st store.Store, renderer render.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, ok := loadDoneReport(w, r, st)
		if !ok {
			return
		}

		pdf, err := renderer.RenderPDF(r.Context(), rep)
		if err != nil {
			switch {
			case errors.Is(err, render.ErrRenderTimeout):
				response.Error(w, http.StatusGatewayTimeout, "RENDER_TIMEOUT",
					"Report rendering took too long and was cancelled", nil)
			case errors.Is(err, render.ErrRendererUnreachable):
				response.Error(w, http.StatusBadGateway, "RENDERER_UNAVAILABLE",
					"The report renderer is not available", nil)
			default:
				response.Error(w, http.StatusBadGateway, "RENDER_FAILED",
					"Report rendering failed", nil)
			}
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", "truesight-report-"+rep.JobID.String()+".pdf"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pdf)
	}
}
