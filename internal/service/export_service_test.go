package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyloop/studyloop-api/internal/dto"
	"github.com/studyloop/studyloop-api/internal/models"
	appErrors "github.com/studyloop/studyloop-api/pkg/errors"
)

type fakeDashboardProvider struct {
	dashboard *dto.ProgressDashboardResponse
	err       error
}

func (f *fakeDashboardProvider) Dashboard(ctx context.Context, userID string, asOf time.Time) (*dto.ProgressDashboardResponse, bool, error) {
	return f.dashboard, false, f.err
}

func testDashboard() *dto.ProgressDashboardResponse {
	return &dto.ProgressDashboardResponse{
		SkillScore: models.SkillScore{Value: 2630, Trend: "+2%", FormattedValue: "2,630"},
		CourseCompletion: models.CourseCompletion{
			Percentage: 50, Active: 1, Total: 2, FormattedPercentage: "50%",
		},
		StudyStreak: models.StudyStreak{Days: 3, Message: "Keep it up!", Status: "active"},
		WeeklyHours: []models.WeeklyHoursEntry{
			{Day: "Mon", Hours: 0.5},
			{Day: "Tue", Hours: 0},
		},
		SkillProficiency: []models.SkillProficiencyEntry{
			{Name: "WEB DEV", Score: 80},
		},
		StrengthsWeaknesses: []models.StrengthEntry{
			{Name: "React & Frontend", Percentage: 80, Level: "Advanced", FormattedPercentage: "80%"},
		},
	}
}

func newTestExportService(provider dashboardProvider) *ExportService {
	svc := NewExportService(provider)
	svc.now = func() time.Time {
		return time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestRenderCSVReport(t *testing.T) {
	svc := newTestExportService(&fakeDashboardProvider{dashboard: testDashboard()})

	result, err := svc.Render(context.Background(), "user-1", ExportFormatCSV, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "progress-user-1-2025-03-12.csv", result.Filename)

	content := string(result.Content)
	assert.True(t, strings.HasPrefix(content, "section,metric,value\n"))
	assert.Contains(t, content, `Skill Score,Score,"2,630"`)
	assert.Contains(t, content, "Study Streak,Days,3")
	assert.Contains(t, content, "Weekly Hours,Mon,0.5")
	assert.Contains(t, content, "Strengths,React & Frontend,Advanced (80%)")
}

func TestRenderPDFReport(t *testing.T) {
	svc := newTestExportService(&fakeDashboardProvider{dashboard: testDashboard()})

	result, err := svc.Render(context.Background(), "user-1", ExportFormatPDF, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "progress-user-1-2025-03-12.pdf", result.Filename)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	svc := newTestExportService(&fakeDashboardProvider{dashboard: testDashboard()})

	_, err := svc.Render(context.Background(), "user-1", "xlsx", time.Time{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRenderPropagatesDashboardError(t *testing.T) {
	svc := newTestExportService(&fakeDashboardProvider{err: assert.AnError})

	_, err := svc.Render(context.Background(), "user-1", ExportFormatCSV, time.Time{})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRenderSkipsEmptyStrengthsSection(t *testing.T) {
	dashboard := testDashboard()
	dashboard.StrengthsWeaknesses = nil
	svc := newTestExportService(&fakeDashboardProvider{dashboard: dashboard})

	result, err := svc.Render(context.Background(), "user-1", ExportFormatCSV, time.Time{})
	require.NoError(t, err)
	assert.NotContains(t, string(result.Content), "Strengths,")
}
