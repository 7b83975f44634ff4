package models

import "time"

// SkillScore is the weighted composite learning score (0-10000).
type SkillScore struct {
	Value          int    `json:"value"`
	Trend          string `json:"trend"`
	FormattedValue string `json:"formattedValue"`
}

// CourseCompletion aggregates per-day completion across all skill plans.
type CourseCompletion struct {
	Percentage          int    `json:"percentage"`
	Active              int    `json:"active"`
	Total               int    `json:"total"`
	FormattedPercentage string `json:"formattedPercentage"`
}

// StudyStreak counts consecutive calendar days of activity ending today or
// yesterday.
type StudyStreak struct {
	Days    int    `json:"days"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// WeeklyHoursEntry is one day bucket of the trailing 7-day window.
type WeeklyHoursEntry struct {
	Day   string  `json:"day"`
	Hours float64 `json:"hours"`
}

// SkillProficiencyEntry is a 0-100 heuristic score for one fixed category.
type SkillProficiencyEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// StrengthEntry maps a top proficiency to a display name and level label.
type StrengthEntry struct {
	Name                string `json:"name"`
	Percentage          int    `json:"percentage"`
	Level               string `json:"level"`
	FormattedPercentage string `json:"formattedPercentage"`
}

// SystemMetrics represents system level analytics captured from instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
