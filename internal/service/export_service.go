package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/studyloop/studyloop-api/internal/dto"
	appErrors "github.com/studyloop/studyloop-api/pkg/errors"
	"github.com/studyloop/studyloop-api/pkg/export"
)

// Export formats supported by the progress report endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type dashboardProvider interface {
	Dashboard(ctx context.Context, userID string, asOf time.Time) (*dto.ProgressDashboardResponse, bool, error)
}

// ExportService renders a user's progress dashboard as a downloadable report.
type ExportService struct {
	analytics dashboardProvider
	now       func() time.Time
}

// NewExportService constructs an export service.
func NewExportService(analytics dashboardProvider) *ExportService {
	return &ExportService{analytics: analytics, now: time.Now}
}

// ExportResult carries the rendered report and its HTTP delivery metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Render computes the dashboard and encodes it in the requested format.
func (s *ExportService) Render(ctx context.Context, userID, format string, asOf time.Time) (*ExportResult, error) {
	dashboard, _, err := s.analytics.Dashboard(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}

	report := buildProgressReport(userID, dashboard, s.now().UTC())

	switch format {
	case ExportFormatCSV:
		content, err := export.RenderCSV(report)
		if err != nil {
			return nil, fmt.Errorf("render csv report: %w", err)
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    reportFilename(userID, report.GeneratedAt, ExportFormatCSV),
		}, nil
	case ExportFormatPDF:
		content, err := export.RenderPDF(report)
		if err != nil {
			return nil, fmt.Errorf("render pdf report: %w", err)
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    reportFilename(userID, report.GeneratedAt, ExportFormatPDF),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format: "+format)
	}
}

func buildProgressReport(userID string, dashboard *dto.ProgressDashboardResponse, generatedAt time.Time) export.Report {
	report := export.Report{
		Title:       "Learning Progress Report",
		GeneratedAt: generatedAt,
	}

	report.Sections = append(report.Sections, export.Section{
		Title: "Skill Score",
		Rows: [][2]string{
			{"Score", dashboard.SkillScore.FormattedValue},
			{"Trend", dashboard.SkillScore.Trend},
		},
	})

	report.Sections = append(report.Sections, export.Section{
		Title: "Course Completion",
		Rows: [][2]string{
			{"Completion", dashboard.CourseCompletion.FormattedPercentage},
			{"Active Plans", strconv.Itoa(dashboard.CourseCompletion.Active)},
			{"Total Plans", strconv.Itoa(dashboard.CourseCompletion.Total)},
		},
	})

	report.Sections = append(report.Sections, export.Section{
		Title: "Study Streak",
		Rows: [][2]string{
			{"Days", strconv.Itoa(dashboard.StudyStreak.Days)},
			{"Status", dashboard.StudyStreak.Status},
		},
	})

	weekly := export.Section{Title: "Weekly Hours"}
	for _, entry := range dashboard.WeeklyHours {
		weekly.Rows = append(weekly.Rows, [2]string{entry.Day, strconv.FormatFloat(entry.Hours, 'f', 1, 64)})
	}
	report.Sections = append(report.Sections, weekly)

	proficiency := export.Section{Title: "Skill Proficiency"}
	for _, entry := range dashboard.SkillProficiency {
		proficiency.Rows = append(proficiency.Rows, [2]string{entry.Name, strconv.Itoa(entry.Score)})
	}
	report.Sections = append(report.Sections, proficiency)

	strengths := export.Section{Title: "Strengths"}
	for _, entry := range dashboard.StrengthsWeaknesses {
		strengths.Rows = append(strengths.Rows, [2]string{entry.Name, entry.Level + " (" + entry.FormattedPercentage + ")"})
	}
	if len(strengths.Rows) > 0 {
		report.Sections = append(report.Sections, strengths)
	}

	return report
}

func reportFilename(userID string, generatedAt time.Time, format string) string {
	return fmt.Sprintf("progress-%s-%s.%s", userID, generatedAt.Format(dayKeyLayout), format)
}
