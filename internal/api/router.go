package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/sahilkadam/truesight/internal/api/middleware"
	"github.com/sahilkadam/truesight/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	UploadMediaHandler http.HandlerFunc
	GetMediaHandler    http.HandlerFunc

	StartAnalysisHandler    http.HandlerFunc
	JobStatusHandler        http.HandlerFunc
	JobResultHandler        http.HandlerFunc
	EvidenceTimelineHandler http.HandlerFunc
	GetReportHandler        http.HandlerFunc
	ReportPDFHandler        http.HandlerFunc

	CreateKeyHandler http.HandlerFunc
	ListKeysHandler  http.HandlerFunc
	RevokeKeyHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/media", orNotImplemented(deps.UploadMediaHandler))
		r.Get("/api/v1/media/{mediaID}", orNotImplemented(deps.GetMediaHandler))

		r.Post("/api/v1/analysis", orNotImplemented(deps.StartAnalysisHandler))
		r.Get("/api/v1/analysis/{jobID}/status", orNotImplemented(deps.JobStatusHandler))
		r.Get("/api/v1/analysis/{jobID}/result", orNotImplemented(deps.JobResultHandler))
		r.Get("/api/v1/analysis/{jobID}/evidence/timeline", orNotImplemented(deps.EvidenceTimelineHandler))
		r.Get("/api/v1/analysis/{jobID}/report", orNotImplemented(deps.GetReportHandler))
		r.Get("/api/v1/analysis/{jobID}/report/pdf", orNotImplemented(deps.ReportPDFHandler))

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope("admin"))

			r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
			r.Get("/api/v1/admin/keys", orNotImplemented(deps.ListKeysHandler))
			r.Delete("/api/v1/admin/keys/{keyID}", orNotImplemented(deps.RevokeKeyHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
// Optional collaborators (the PDF renderer) stay nil when unconfigured.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
