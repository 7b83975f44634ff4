package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studyloop/studyloop-api/internal/dto"
	"github.com/studyloop/studyloop-api/internal/middleware"
	"github.com/studyloop/studyloop-api/internal/models"
	"github.com/studyloop/studyloop-api/internal/service"
	appErrors "github.com/studyloop/studyloop-api/pkg/errors"
	"github.com/studyloop/studyloop-api/pkg/response"
)

type analyticsService interface {
	Dashboard(ctx context.Context, userID string, asOf time.Time) (*dto.ProgressDashboardResponse, bool, error)
	SystemMetrics() models.SystemMetrics
}

type exportService interface {
	Render(ctx context.Context, userID, format string, asOf time.Time) (*service.ExportResult, error)
}

// AnalyticsHandler exposes the learning progress analytics endpoints.
type AnalyticsHandler struct {
	analytics analyticsService
	exports   exportService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics analyticsService, exports exportService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, exports: exports}
}

// Dashboard godoc
// @Summary Per-user learning progress dashboard
// @Tags Analytics
// @Produce json
// @Param userId path string true "User ID"
// @Param asOf query string false "Reference date (YYYY-MM-DD). Defaults to now"
// @Success 200 {object} response.Envelope
// @Router /analytics/{userId} [get]
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "userId is required"))
		return
	}
	asOf, err := parseAsOf(c.Query("asOf"))
	if err != nil {
		response.Error(c, err)
		return
	}

	start := time.Now()
	dashboard, cacheHit, err := h.analytics.Dashboard(c.Request.Context(), userID, asOf)
	if err != nil {
		response.Error(c, normaliseAnalyticsError(err))
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, dashboard, meta)
}

// Export godoc
// @Summary Download the progress dashboard as CSV or PDF
// @Tags Analytics
// @Produce text/csv
// @Produce application/pdf
// @Param userId path string true "User ID"
// @Param format query string true "Export format" Enums(csv, pdf)
// @Param asOf query string false "Reference date (YYYY-MM-DD). Defaults to now"
// @Success 200 {file} binary
// @Router /analytics/{userId}/export [get]
func (h *AnalyticsHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "userId is required"))
		return
	}
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export parameters"))
		return
	}
	asOf, err := parseAsOf(query.AsOf)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.exports.Render(c.Request.Context(), userID, query.Format, asOf)
	if err != nil {
		response.Error(c, normaliseAnalyticsError(err))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

// System godoc
// @Summary Instrumentation metrics snapshot
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	response.JSON(c, http.StatusOK, h.analytics.SystemMetrics())
}

func parseAsOf(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid asOf date, expected YYYY-MM-DD")
	}
	return parsed, nil
}

// normaliseAnalyticsError keeps client errors intact and collapses everything
// else into the uniform fetch failure the dashboard contract promises.
func normaliseAnalyticsError(err error) error {
	appErr := appErrors.FromError(err)
	if appErr.Status < http.StatusInternalServerError {
		return appErr
	}
	return appErrors.Clone(appErrors.ErrInternal, "Failed to fetch analytics")
}
