package dto

import (
	"time"

	"github.com/studyloop/studyloop-api/internal/models"
)

// ProgressDashboardResponse is the full per-user learning analytics payload.
type ProgressDashboardResponse struct {
	SkillScore          models.SkillScore              `json:"skillScore"`
	CourseCompletion    models.CourseCompletion        `json:"courseCompletion"`
	StudyStreak         models.StudyStreak             `json:"studyStreak"`
	WeeklyHours         []models.WeeklyHoursEntry      `json:"weeklyHours"`
	SkillProficiency    []models.SkillProficiencyEntry `json:"skillProficiency"`
	StrengthsWeaknesses []models.StrengthEntry         `json:"strengthsWeaknesses"`
	LastUpdated         time.Time                      `json:"lastUpdated"`
}

// ExportQuery carries the validated parameters of the export endpoint.
type ExportQuery struct {
	Format string `form:"format" binding:"required,oneof=csv pdf"`
	AsOf   string `form:"asOf" binding:"omitempty,datetime=2006-01-02"`
}
