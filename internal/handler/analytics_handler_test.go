package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyloop/studyloop-api/internal/dto"
	"github.com/studyloop/studyloop-api/internal/middleware"
	"github.com/studyloop/studyloop-api/internal/models"
	"github.com/studyloop/studyloop-api/internal/service"
	appErrors "github.com/studyloop/studyloop-api/pkg/errors"
)

type fakeAnalyticsService struct {
	dashboard *dto.ProgressDashboardResponse
	cacheHit  bool
	err       error

	gotUserID string
	gotAsOf   time.Time
}

func (f *fakeAnalyticsService) Dashboard(ctx context.Context, userID string, asOf time.Time) (*dto.ProgressDashboardResponse, bool, error) {
	f.gotUserID = userID
	f.gotAsOf = asOf
	return f.dashboard, f.cacheHit, f.err
}

func (f *fakeAnalyticsService) SystemMetrics() models.SystemMetrics {
	return models.SystemMetrics{CacheHits: 3, CacheMisses: 1}
}

type fakeExportService struct {
	result *service.ExportResult
	err    error

	gotFormat string
}

func (f *fakeExportService) Render(ctx context.Context, userID, format string, asOf time.Time) (*service.ExportResult, error) {
	f.gotFormat = format
	return f.result, f.err
}

func newTestRouter(analytics *fakeAnalyticsService, exports *fakeExportService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAnalyticsHandler(analytics, exports)

	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	analyticsGroup := r.Group("/analytics")
	analyticsGroup.GET("/system", h.System)
	analyticsGroup.GET("/:userId", h.Dashboard)
	analyticsGroup.GET("/:userId/export", h.Export)
	return r
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	envelope := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestDashboardHandlerSuccess(t *testing.T) {
	analytics := &fakeAnalyticsService{
		dashboard: &dto.ProgressDashboardResponse{
			SkillScore:  models.SkillScore{Value: 320, Trend: "+1%", FormattedValue: "320"},
			StudyStreak: models.StudyStreak{Days: 1, Status: "active"},
		},
		cacheHit: true,
	}
	router := newTestRouter(analytics, &fakeExportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/analytics/user-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", analytics.gotUserID)
	assert.True(t, analytics.gotAsOf.IsZero())

	envelope := decodeEnvelope(t, w)
	var data dto.ProgressDashboardResponse
	require.NoError(t, json.Unmarshal(envelope["data"], &data))
	assert.Equal(t, 320, data.SkillScore.Value)

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(envelope["meta"], &meta))
	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestDashboardHandlerParsesAsOf(t *testing.T) {
	analytics := &fakeAnalyticsService{dashboard: &dto.ProgressDashboardResponse{}}
	router := newTestRouter(analytics, &fakeExportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/analytics/user-1?asOf=2025-03-12", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), analytics.gotAsOf)
}

func TestDashboardHandlerRejectsInvalidAsOf(t *testing.T) {
	router := newTestRouter(&fakeAnalyticsService{}, &fakeExportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/analytics/user-1?asOf=12-03-2025", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid asOf date")
}

func TestDashboardHandlerRejectsBlankUserID(t *testing.T) {
	router := newTestRouter(&fakeAnalyticsService{}, &fakeExportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/analytics/%20", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "userId is required")
}

func TestDashboardHandlerMasksInternalErrors(t *testing.T) {
	analytics := &fakeAnalyticsService{err: assert.AnError}
	router := newTestRouter(analytics, &fakeExportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/analytics/user-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to fetch analytics")
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestDashboardHandlerKeepsClientErrors(t *testing.T) {
	analytics := &fakeAnalyticsService{
		err: appErrors.Clone(appErrors.ErrValidation, "userId is required"),
	}
	router := newTestRouter(analytics, &fakeExportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/analytics/user-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "userId is required")
}

func TestExportHandlerSuccess(t *testing.T) {
	exports := &fakeExportService{
		result: &service.ExportResult{
			Content:     []byte("section,metric,value\n"),
			ContentType: "text/csv",
			Filename:    "progress-user-1-2025-03-12.csv",
		},
	}
	router := newTestRouter(&fakeAnalyticsService{}, exports)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/analytics/user-1/export?format=csv", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", exports.gotFormat)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="progress-user-1-2025-03-12.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "section,metric,value\n", w.Body.String())
}

func TestExportHandlerRequiresFormat(t *testing.T) {
	router := newTestRouter(&fakeAnalyticsService{}, &fakeExportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/analytics/user-1/export", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid export parameters")
}

func TestExportHandlerRejectsUnknownFormat(t *testing.T) {
	router := newTestRouter(&fakeAnalyticsService{}, &fakeExportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/analytics/user-1/export?format=xlsx", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSystemHandler(t *testing.T) {
	router := newTestRouter(&fakeAnalyticsService{}, &fakeExportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/analytics/system", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	var data models.SystemMetrics
	require.NoError(t, json.Unmarshal(envelope["data"], &data))
	assert.Equal(t, uint64(3), data.CacheHits)
}
