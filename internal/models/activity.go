package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// QuizResult is one graded quiz attempt attached to a video record.
type QuizResult struct {
	Score float64 `json:"score"`
}

// QuizResults is the JSONB-backed list of quiz attempts.
type QuizResults []QuizResult

// Scan decodes the JSONB column. Missing or malformed payloads decode to an
// empty list; analytics must never fail on a single bad document.
func (q *QuizResults) Scan(src interface{}) error {
	*q = QuizResults{}
	raw, ok := normaliseJSONB(src)
	if !ok || len(raw) == 0 {
		return nil
	}
	var decoded QuizResults
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}
	*q = decoded
	return nil
}

// Value encodes the list for storage.
func (q QuizResults) Value() (driver.Value, error) {
	if q == nil {
		q = QuizResults{}
	}
	return json.Marshal(q)
}

// PlanDay is one scheduled day inside a skill plan.
type PlanDay struct {
	Day       int  `json:"day"`
	Completed bool `json:"completed"`
}

// WeekPlan is the JSONB-backed per-day schedule of a skill plan.
type WeekPlan []PlanDay

// Scan decodes the JSONB column, treating malformed payloads as zero-length.
func (w *WeekPlan) Scan(src interface{}) error {
	*w = WeekPlan{}
	raw, ok := normaliseJSONB(src)
	if !ok || len(raw) == 0 {
		return nil
	}
	var decoded WeekPlan
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}
	*w = decoded
	return nil
}

// Value encodes the plan for storage.
func (w WeekPlan) Value() (driver.Value, error) {
	if w == nil {
		w = WeekPlan{}
	}
	return json.Marshal(w)
}

func normaliseJSONB(src interface{}) ([]byte, bool) {
	switch v := src.(type) {
	case nil:
		return nil, false
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}

// VideoRequest is a YouTube summarisation request created by a student.
type VideoRequest struct {
	ID          string      `db:"id" json:"id"`
	UserID      string      `db:"user_id" json:"user_id"`
	VideoURL    string      `db:"video_url" json:"video_url"`
	Title       string      `db:"title" json:"title"`
	Summary     string      `db:"summary" json:"summary"`
	QuizResults QuizResults `db:"quiz_results" json:"quiz_results"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// EducationalVideo is a course video a student summarised or quizzed on.
type EducationalVideo struct {
	ID          string      `db:"id" json:"id"`
	UserID      string      `db:"user_id" json:"user_id"`
	Title       string      `db:"title" json:"title"`
	Summary     string      `db:"summary" json:"summary"`
	QuizResults QuizResults `db:"quiz_results" json:"quiz_results"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// DoubtThread is a doubt-clearance discussion opened by a student.
type DoubtThread struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SkillPlan is a multi-day structured learning schedule with per-day
// completion tracking. WeekPlan length is expected to match DurationDays but
// is not enforced here.
type SkillPlan struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	SkillName    string    `db:"skill_name" json:"skill_name"`
	DurationDays int       `db:"duration_days" json:"duration_days"`
	WeekPlan     WeekPlan  `db:"week_plan" json:"week_plan"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// UserActivity bundles everything a single user has done across the four
// activity stores. Slices are possibly empty, never nil semantics-bearing.
type UserActivity struct {
	VideoRequests     []VideoRequest
	EducationalVideos []EducationalVideo
	DoubtThreads      []DoubtThread
	SkillPlans        []SkillPlan
}

// Timestamps returns the creation instants that count toward streaks and
// weekly hours. Skill plans are deliberately excluded.
func (a UserActivity) Timestamps() []time.Time {
	out := make([]time.Time, 0, len(a.VideoRequests)+len(a.EducationalVideos)+len(a.DoubtThreads))
	for _, v := range a.VideoRequests {
		out = append(out, v.CreatedAt)
	}
	for _, v := range a.EducationalVideos {
		out = append(out, v.CreatedAt)
	}
	for _, d := range a.DoubtThreads {
		out = append(out, d.CreatedAt)
	}
	return out
}

func (a UserActivity) String() string {
	return fmt.Sprintf("activity{videos:%d edu:%d doubts:%d plans:%d}",
		len(a.VideoRequests), len(a.EducationalVideos), len(a.DoubtThreads), len(a.SkillPlans))
}
