package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/studyloop/studyloop-api/internal/models"
)

// ActivityRepository exposes read-only, per-user lookups over the four
// activity stores feeding the analytics engine.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository instantiates the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// VideoRequestsByUser returns every video summarisation request a user created.
func (r *ActivityRepository) VideoRequestsByUser(ctx context.Context, userID string) ([]models.VideoRequest, error) {
	const query = `SELECT id, user_id, video_url, title, summary, quiz_results, created_at
        FROM video_requests WHERE user_id = $1 ORDER BY created_at DESC`

	records := []models.VideoRequest{}
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("query video requests: %w", err)
	}
	return records, nil
}

// EducationalVideosByUser returns every course video record for a user.
func (r *ActivityRepository) EducationalVideosByUser(ctx context.Context, userID string) ([]models.EducationalVideo, error) {
	const query = `SELECT id, user_id, title, summary, quiz_results, created_at
        FROM educational_videos WHERE user_id = $1 ORDER BY created_at DESC`

	records := []models.EducationalVideo{}
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("query educational videos: %w", err)
	}
	return records, nil
}

// DoubtThreadsByUser returns every doubt-clearance thread a user opened.
func (r *ActivityRepository) DoubtThreadsByUser(ctx context.Context, userID string) ([]models.DoubtThread, error) {
	const query = `SELECT id, user_id, title, body, created_at
        FROM doubt_threads WHERE user_id = $1 ORDER BY created_at DESC`

	records := []models.DoubtThread{}
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("query doubt threads: %w", err)
	}
	return records, nil
}

// SkillPlansByUser returns every skill plan a user owns.
func (r *ActivityRepository) SkillPlansByUser(ctx context.Context, userID string) ([]models.SkillPlan, error) {
	const query = `SELECT id, user_id, skill_name, duration_days, week_plan, created_at
        FROM skill_plans WHERE user_id = $1 ORDER BY created_at DESC`

	records := []models.SkillPlan{}
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("query skill plans: %w", err)
	}
	return records, nil
}
