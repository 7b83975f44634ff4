package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyloop/studyloop-api/internal/models"
	appErrors "github.com/studyloop/studyloop-api/pkg/errors"
)

type fakeActivityRepo struct {
	videos    []models.VideoRequest
	eduVideos []models.EducationalVideo
	doubts    []models.DoubtThread
	plans     []models.SkillPlan

	videosErr error
	plansErr  error

	calls int
}

func (f *fakeActivityRepo) VideoRequestsByUser(ctx context.Context, userID string) ([]models.VideoRequest, error) {
	f.calls++
	return f.videos, f.videosErr
}

func (f *fakeActivityRepo) EducationalVideosByUser(ctx context.Context, userID string) ([]models.EducationalVideo, error) {
	return f.eduVideos, nil
}

func (f *fakeActivityRepo) DoubtThreadsByUser(ctx context.Context, userID string) ([]models.DoubtThread, error) {
	return f.doubts, nil
}

func (f *fakeActivityRepo) SkillPlansByUser(ctx context.Context, userID string) ([]models.SkillPlan, error) {
	return f.plans, f.plansErr
}

type stubCacheRepo struct {
	store  map[string][]byte
	getErr error
	setErr error
}

func newStubCacheRepo() *stubCacheRepo {
	return &stubCacheRepo{store: map[string][]byte{}}
}

func (s *stubCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	raw, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *stubCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = raw
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range s.store {
		delete(s.store, key)
	}
	return nil
}

func newTestAnalyticsService(repo ActivityRepository, cacheRepo CacheRepository) *AnalyticsService {
	var cacheSvc *CacheService
	if cacheRepo != nil {
		cacheSvc = NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	}
	svc := NewAnalyticsService(AnalyticsServiceParams{
		Repo:   repo,
		Cache:  cacheSvc,
		Config: AnalyticsServiceConfig{CacheTTL: time.Minute, RandSeed: 42},
	})
	svc.now = func() time.Time {
		return time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestDashboardRequiresUserID(t *testing.T) {
	svc := newTestAnalyticsService(&fakeActivityRepo{}, nil)

	_, _, err := svc.Dashboard(context.Background(), "", time.Time{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestDashboardComposesAllMetrics(t *testing.T) {
	asOf := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	repo := &fakeActivityRepo{
		videos: []models.VideoRequest{
			{CreatedAt: asOf.Add(-time.Hour)},
			{CreatedAt: asOf.Add(-2 * time.Hour)},
			{CreatedAt: asOf.Add(-3 * time.Hour)},
		},
		doubts: []models.DoubtThread{
			{CreatedAt: asOf.Add(-time.Hour)},
			{CreatedAt: asOf.Add(-2 * time.Hour)},
		},
		plans: []models.SkillPlan{
			{WeekPlan: models.WeekPlan{{Day: 1, Completed: true}, {Day: 2, Completed: false}}, CreatedAt: asOf},
		},
	}
	svc := newTestAnalyticsService(repo, nil)

	dashboard, cacheHit, err := svc.Dashboard(context.Background(), "user-1", asOf)
	require.NoError(t, err)
	assert.False(t, cacheHit)

	assert.Equal(t, 320, dashboard.SkillScore.Value)
	assert.Equal(t, "320", dashboard.SkillScore.FormattedValue)
	assert.Equal(t, 50, dashboard.CourseCompletion.Percentage)
	assert.Equal(t, 1, dashboard.StudyStreak.Days)
	assert.Equal(t, "active", dashboard.StudyStreak.Status)
	assert.Len(t, dashboard.WeeklyHours, 7)
	assert.Len(t, dashboard.SkillProficiency, 5)
	assert.LessOrEqual(t, len(dashboard.StrengthsWeaknesses), 3)
	assert.Equal(t, time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC), dashboard.LastUpdated)
}

func TestDashboardDefaultsAsOfToNow(t *testing.T) {
	repo := &fakeActivityRepo{
		videos: []models.VideoRequest{
			{CreatedAt: time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)},
		},
	}
	svc := newTestAnalyticsService(repo, nil)

	dashboard, _, err := svc.Dashboard(context.Background(), "user-1", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, dashboard.StudyStreak.Days)
}

func TestDashboardCacheAside(t *testing.T) {
	asOf := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	repo := &fakeActivityRepo{
		videos: []models.VideoRequest{{CreatedAt: asOf.Add(-time.Hour)}},
	}
	cacheRepo := newStubCacheRepo()
	svc := newTestAnalyticsService(repo, cacheRepo)

	first, hit, err := svc.Dashboard(context.Background(), "user-1", asOf)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, repo.calls)

	second, hit, err := svc.Dashboard(context.Background(), "user-1", asOf)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, first.SkillScore, second.SkillScore)
}

func TestDashboardCacheKeyVariesByDate(t *testing.T) {
	repo := &fakeActivityRepo{}
	cacheRepo := newStubCacheRepo()
	svc := newTestAnalyticsService(repo, cacheRepo)

	_, _, err := svc.Dashboard(context.Background(), "user-1", time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, hit, err := svc.Dashboard(context.Background(), "user-1", time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, repo.calls)
}

func TestDashboardDegradesOnCacheFailure(t *testing.T) {
	repo := &fakeActivityRepo{}
	cacheRepo := newStubCacheRepo()
	cacheRepo.getErr = assert.AnError
	cacheRepo.setErr = assert.AnError
	svc := newTestAnalyticsService(repo, cacheRepo)

	dashboard, hit, err := svc.Dashboard(context.Background(), "user-1", time.Time{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotNil(t, dashboard)
	assert.Equal(t, 1, repo.calls)
}

func TestDashboardPropagatesRepositoryError(t *testing.T) {
	repo := &fakeActivityRepo{videosErr: assert.AnError}
	svc := newTestAnalyticsService(repo, nil)

	_, _, err := svc.Dashboard(context.Background(), "user-1", time.Time{})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestDashboardPropagatesLateRepositoryError(t *testing.T) {
	repo := &fakeActivityRepo{plansErr: assert.AnError}
	svc := newTestAnalyticsService(repo, nil)

	_, _, err := svc.Dashboard(context.Background(), "user-1", time.Time{})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestDashboardDeterministicWithSeed(t *testing.T) {
	asOf := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	repo := &fakeActivityRepo{
		plans: []models.SkillPlan{{SkillName: "React Fundamentals", CreatedAt: asOf}},
	}

	first, _, err := newTestAnalyticsService(repo, nil).Dashboard(context.Background(), "user-1", asOf)
	require.NoError(t, err)
	second, _, err := newTestAnalyticsService(repo, nil).Dashboard(context.Background(), "user-1", asOf)
	require.NoError(t, err)

	assert.Equal(t, first.SkillProficiency, second.SkillProficiency)
	assert.Equal(t, first.StrengthsWeaknesses, second.StrengthsWeaknesses)
}

func TestSystemMetricsWithoutCollector(t *testing.T) {
	svc := newTestAnalyticsService(&fakeActivityRepo{}, nil)

	assert.Equal(t, models.SystemMetrics{}, svc.SystemMetrics())
}
