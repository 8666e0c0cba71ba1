package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sahilkadam/truesight/internal/api/middleware"
	"github.com/sahilkadam/truesight/internal/api/response"
	"github.com/sahilkadam/truesight/internal/media"
	"github.com/sahilkadam/truesight/internal/store"
)

// multipartMemoryLimit bounds how much of the multipart form is buffered in
// memory; the rest spills to temp files.
const multipartMemoryLimit = 32 << 20

// NewUploadMediaHandler returns an http.HandlerFunc for POST /api/v1/media.
// The file is sent as the "file" field of a multipart form.
func NewUploadMediaHandler(ing *media.Ingestor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := middleware.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}

		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Expected multipart form data", nil)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "file field is required", nil)
			return
		}
		defer file.Close()

		item, created, err := ing.Ingest(r.Context(), tenantID, header.Filename, file)
		if err != nil {
			switch {
			case errors.Is(err, media.ErrTooLarge):
				response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
					"File exceeds the maximum upload size", nil)
			case errors.Is(err, media.ErrEmptyFile):
				response.Error(w, http.StatusBadRequest, "EMPTY_FILE",
					"Uploaded file is empty", nil)
			case errors.Is(err, media.ErrUnsupportedType):
				response.Error(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE",
					"File type is not supported for analysis", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"Failed to store upload", nil)
			}
			return
		}

		if created {
			response.Created(w, item)
			return
		}
		response.JSON(w, item)
	}
}

// NewGetMediaHandler returns an http.HandlerFunc for GET /api/v1/media/{mediaID}.
func NewGetMediaHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := middleware.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "mediaID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "mediaID must be a valid UUID", nil)
			return
		}

		item, err := st.GetMediaItem(r.Context(), id, tenantID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "MEDIA_NOT_FOUND", "Media item not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load media item", nil)
			return
		}

		response.JSON(w, item)
	}
}
