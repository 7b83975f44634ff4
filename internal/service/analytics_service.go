package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/studyloop/studyloop-api/internal/dto"
	"github.com/studyloop/studyloop-api/internal/models"
	appErrors "github.com/studyloop/studyloop-api/pkg/errors"
)

// ActivityRepository describes the persistence layer required by AnalyticsService.
type ActivityRepository interface {
	VideoRequestsByUser(ctx context.Context, userID string) ([]models.VideoRequest, error)
	EducationalVideosByUser(ctx context.Context, userID string) ([]models.EducationalVideo, error)
	DoubtThreadsByUser(ctx context.Context, userID string) ([]models.DoubtThread, error)
	SkillPlansByUser(ctx context.Context, userID string) ([]models.SkillPlan, error)
}

// AnalyticsServiceConfig tunes dashboard computation.
type AnalyticsServiceConfig struct {
	CacheTTL time.Duration
	// RandSeed fixes the proficiency jitter source. Zero seeds from the
	// wall clock on every request.
	RandSeed int64
}

// AnalyticsService computes per-user learning progress dashboards with an
// optional cache-aside layer. All metric calculators are pure; the clock and
// random source are injected here so behaviour is fully testable.
type AnalyticsService struct {
	repo    ActivityRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
	newRand func() *rand.Rand
	cfg     AnalyticsServiceConfig
}

// AnalyticsServiceParams groups constructor dependencies.
type AnalyticsServiceParams struct {
	Repo    ActivityRepository
	Cache   *CacheService
	Metrics *MetricsService
	Logger  *zap.Logger
	Config  AnalyticsServiceConfig
}

// NewAnalyticsService constructs an analytics service with sane defaults.
func NewAnalyticsService(params AnalyticsServiceParams) *AnalyticsService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	newRand := func() *rand.Rand {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.RandSeed != 0 {
		seed := cfg.RandSeed
		newRand = func() *rand.Rand {
			return rand.New(rand.NewSource(seed))
		}
	}
	return &AnalyticsService{
		repo:    params.Repo,
		cache:   params.Cache,
		metrics: params.Metrics,
		logger:  logger,
		now:     time.Now,
		newRand: newRand,
		cfg:     cfg,
	}
}

// Dashboard returns the full learning progress dashboard for one user. The
// boolean indicates whether the payload originated from cache. A zero asOf
// uses the current time.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID string, asOf time.Time) (*dto.ProgressDashboardResponse, bool, error) {
	if userID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "userId is required")
	}
	if asOf.IsZero() {
		asOf = s.now()
	}

	cacheKey := fmt.Sprintf("analytics:dashboard:%s:%s", userID, asOf.Format(dayKeyLayout))
	if s.cache != nil {
		var cached dto.ProgressDashboardResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			// A broken cache degrades to recompute, never a failed request.
			s.logger.Warn("dashboard cache read failed", zap.String("key", cacheKey), zap.Error(err))
		} else if hit {
			return &cached, true, nil
		}
	}

	activity, err := s.fetchActivity(ctx, userID)
	if err != nil {
		s.logger.Error("activity fetch failed", zap.String("user_id", userID), zap.Error(err))
		return nil, false, err
	}

	dashboard := s.compose(activity, asOf)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, dashboard, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return dashboard, false, nil
}

// SystemMetrics returns the instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	if s.metrics == nil {
		return models.SystemMetrics{}
	}
	return s.metrics.Snapshot()
}

// fetchActivity issues the four per-store lookups. Any failure aborts the
// whole request; partial dashboards are never served.
func (s *AnalyticsService) fetchActivity(ctx context.Context, userID string) (models.UserActivity, error) {
	var activity models.UserActivity

	start := time.Now()
	videos, err := s.repo.VideoRequestsByUser(ctx, userID)
	if err != nil {
		return activity, fmt.Errorf("fetch video requests: %w", err)
	}
	s.observeQuery("video_requests_by_user", start)

	start = time.Now()
	eduVideos, err := s.repo.EducationalVideosByUser(ctx, userID)
	if err != nil {
		return activity, fmt.Errorf("fetch educational videos: %w", err)
	}
	s.observeQuery("educational_videos_by_user", start)

	start = time.Now()
	doubts, err := s.repo.DoubtThreadsByUser(ctx, userID)
	if err != nil {
		return activity, fmt.Errorf("fetch doubt threads: %w", err)
	}
	s.observeQuery("doubt_threads_by_user", start)

	start = time.Now()
	plans, err := s.repo.SkillPlansByUser(ctx, userID)
	if err != nil {
		return activity, fmt.Errorf("fetch skill plans: %w", err)
	}
	s.observeQuery("skill_plans_by_user", start)

	activity.VideoRequests = videos
	activity.EducationalVideos = eduVideos
	activity.DoubtThreads = doubts
	activity.SkillPlans = plans
	return activity, nil
}

func (s *AnalyticsService) compose(activity models.UserActivity, asOf time.Time) *dto.ProgressDashboardResponse {
	proficiency := computeSkillProficiency(activity, s.newRand())

	return &dto.ProgressDashboardResponse{
		SkillScore:          computeSkillScore(activity),
		CourseCompletion:    computeCourseCompletion(activity.SkillPlans),
		StudyStreak:         computeStudyStreak(activity.Timestamps(), asOf),
		WeeklyHours:         computeWeeklyHours(activity, asOf),
		SkillProficiency:    proficiency,
		StrengthsWeaknesses: rankStrengths(proficiency),
		LastUpdated:         s.now().UTC(),
	}
}

func (s *AnalyticsService) observeQuery(label string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDBQuery(label, time.Since(start))
	}
}
