package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sahilkadam/truesight/internal/api"
	mw "github.com/sahilkadam/truesight/internal/api/middleware"
	"github.com/sahilkadam/truesight/internal/cache"
	"github.com/sahilkadam/truesight/internal/store"
	"github.com/sahilkadam/truesight/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- stub store that returns empty results (all auth fails) ---

type stubStore struct{}

func (s *stubStore) Ping(_ context.Context) error { return nil }
func (s *stubStore) GetDefaultTenant(_ context.Context) (*models.Tenant, error) {
	return nil, store.ErrNotFound
}
func (s *stubStore) GetAPIKeyByPrefix(_ context.Context, _ string) ([]*models.APIKey, error) {
	return nil, nil
}
func (s *stubStore) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error { return nil }
func (s *stubStore) CreateAPIKey(_ context.Context, _ *models.APIKey) error    { return nil }
func (s *stubStore) ListAPIKeys(_ context.Context, _ uuid.UUID) ([]*models.APIKey, error) {
	return nil, nil
}
func (s *stubStore) RevokeAPIKey(_ context.Context, _ uuid.UUID, _ uuid.UUID) error { return nil }
func (s *stubStore) CreateMediaItem(_ context.Context, _ *models.MediaItem) error   { return nil }
func (s *stubStore) GetMediaItem(_ context.Context, _ uuid.UUID, _ uuid.UUID) (*models.MediaItem, error) {
	return nil, store.ErrNotFound
}
func (s *stubStore) GetMediaItemByHash(_ context.Context, _ uuid.UUID, _ string) (*models.MediaItem, error) {
	return nil, store.ErrNotFound
}
func (s *stubStore) CreateAnalysisJob(_ context.Context, _ *models.AnalysisJob) error { return nil }
func (s *stubStore) GetAnalysisJob(_ context.Context, _ uuid.UUID, _ uuid.UUID) (*models.AnalysisJob, error) {
	return nil, store.ErrNotFound
}
func (s *stubStore) GetActiveJobForMedia(_ context.Context, _ uuid.UUID) (*models.AnalysisJob, error) {
	return nil, store.ErrNotFound
}
func (s *stubStore) ClaimJob(_ context.Context, _ uuid.UUID, _ string) error { return nil }
func (s *stubStore) AdvanceJobStage(_ context.Context, _ uuid.UUID, _ string, _ *models.AnalysisResult, _ []models.EvidenceSegment) error {
	return nil
}
func (s *stubStore) CompleteJob(_ context.Context, _ uuid.UUID, _ float64, _ string, _ *models.AnalysisResult, _ *models.Report) error {
	return nil
}
func (s *stubStore) FailJob(_ context.Context, _ uuid.UUID, _ string) error { return nil }
func (s *stubStore) ListSegments(_ context.Context, _ uuid.UUID) ([]models.EvidenceSegment, error) {
	return nil, nil
}
func (s *stubStore) GetReportByJobID(_ context.Context, _ uuid.UUID) (*models.Report, error) {
	return nil, store.ErrNotFound
}

// --- stub cache ---

type stubCache struct{}

func (c *stubCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (c *stubCache) Get(_ context.Context, _ string) ([]byte, bool, error)            { return nil, false, nil }
func (c *stubCache) Delete(_ context.Context, _ string) error                         { return nil }
func (c *stubCache) Ping(_ context.Context) error                                     { return nil }
func (c *stubCache) SetJobSnapshot(_ context.Context, _ uuid.UUID, _ []byte, _ time.Duration) error {
	return nil
}
func (c *stubCache) GetJobSnapshot(_ context.Context, _ uuid.UUID) ([]byte, bool, error) {
	return nil, false, nil
}
func (c *stubCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1, nil
}

// --- router tests ---

func newTestRouter() http.Handler {
	return api.NewRouter(api.Dependencies{
		Auth:      mw.NewAuth(&stubStore{}),
		RateLimit: mw.NewRateLimit(&stubCache{}, 60),
		HealthHandler: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		},
	})
}

func TestRouter_HealthEndpoint_Public(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ProtectedEndpoints_RequireAuth(t *testing.T) {
	router := newTestRouter()

	jobID := uuid.NewString()
	endpoints := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/media"},
		{"GET", "/api/v1/media/" + uuid.NewString()},
		{"POST", "/api/v1/analysis"},
		{"GET", "/api/v1/analysis/" + jobID + "/status"},
		{"GET", "/api/v1/analysis/" + jobID + "/result"},
		{"GET", "/api/v1/analysis/" + jobID + "/report"},
		{"GET", "/api/v1/analysis/" + jobID + "/report/pdf"},
		{"POST", "/api/v1/admin/keys"},
		{"GET", "/api/v1/admin/keys"},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			errObj := body["error"].(map[string]any)
			assert.Equal(t, "INVALID_TOKEN", errObj["code"])
		})
	}
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Verify stub types satisfy the interfaces the router depends on.
var _ store.Store = (*stubStore)(nil)
var _ cache.Cache = (*stubCache)(nil)
