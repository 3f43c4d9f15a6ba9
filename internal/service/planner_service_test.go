package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campushub-api/internal/dto"
	"github.com/noah-isme/campushub-api/internal/models"
	appErrors "github.com/noah-isme/campushub-api/pkg/errors"
	"github.com/noah-isme/campushub-api/pkg/jobs"
)

func newPlannerFixture(cacheEnabled bool) (*PlannerService, *fakeSemesterRepo, *stubCacheRepo) {
	semesters, courses, _ := threeSemesterCourse()
	cacheRepo := &stubCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), cacheEnabled)
	svc := NewPlannerService(semesters, courses, cache, nil, time.Minute, nil, zap.NewNop())
	svc.now = func() time.Time { return day(2024, 6, 1) }
	return svc, semesters, cacheRepo
}

func TestPlannerServiceProgressThirtySixMonthCourse(t *testing.T) {
	svc, _, _ := newPlannerFixture(false)

	progress, cacheHit, err := svc.Progress(context.Background(), testSession, "ic-1")
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, 3, progress.SemesterCount)
	assert.Equal(t, 360, progress.TotalDurationDays)
	assert.Equal(t, 12, progress.TotalDurationMonths)
	assert.InDelta(t, 33.33, progress.ProgressPercentage, 0.01)
	assert.False(t, progress.IsCompleted)
	assert.Equal(t, "BSC-CS", progress.CourseCode)
}

func TestPlannerServiceProgressCaching(t *testing.T) {
	svc, semesters, _ := newPlannerFixture(true)
	ctx := context.Background()

	first, hit, err := svc.Progress(ctx, testSession, "ic-1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, semesters.listCalls)

	second, hit, err := svc.Progress(ctx, testSession, "ic-1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, semesters.listCalls)
	assert.Equal(t, first.ProgressPercentage, second.ProgressPercentage)
	assert.True(t, first.ComputedAt.Equal(second.ComputedAt))
}

func TestPlannerServiceProgressIgnoresEntryWrittenAcrossMutation(t *testing.T) {
	svc, semesters, cacheRepo := newPlannerFixture(true)
	ctx := context.Background()
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)

	// a mutation lands after this read loaded the old semester list
	semesters.onList = func() {
		semesters.onList = nil
		semesters.items = semesters.items[:2]
		require.NoError(t, cache.Bump(ctx, progressGenKey("tenant-1", "ic-1")))
		require.NoError(t, cache.Delete(ctx, progressKey("tenant-1", "ic-1")))
	}
	stale, hit, err := svc.Progress(ctx, testSession, "ic-1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, stale.SemesterCount)

	fresh, hit, err := svc.Progress(ctx, testSession, "ic-1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, fresh.SemesterCount)

	cached, hit, err := svc.Progress(ctx, testSession, "ic-1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, cached.SemesterCount)
}

func TestPlannerServiceProgressIsTenantScoped(t *testing.T) {
	svc, _, _ := newPlannerFixture(false)

	other := &models.Session{UserID: "user-2", TenantID: "tenant-2", Role: models.RoleAdmin}
	_, _, err := svc.Progress(context.Background(), other, "ic-1")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, _, err = svc.Progress(context.Background(), nil, "ic-1")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestPlannerServiceProgressRepositoryFailure(t *testing.T) {
	svc, semesters, _ := newPlannerFixture(false)
	semesters.failWith = errors.New("connection reset")

	_, _, err := svc.Progress(context.Background(), testSession, "ic-1")
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestPlannerServiceTimelineOrdersByStartDate(t *testing.T) {
	svc, semesters, _ := newPlannerFixture(false)

	timeline, err := svc.Timeline(context.Background(), testSession, "ic-1")
	require.NoError(t, err)
	require.Len(t, timeline.Entries, 3)

	ids := []string{timeline.Entries[0].Semester.ID, timeline.Entries[1].Semester.ID, timeline.Entries[2].Semester.ID}
	assert.Equal(t, []string{"sem-1", "sem-2", "sem-3"}, ids)
	for i, entry := range timeline.Entries {
		assert.Equal(t, i, entry.SortedIndex)
		assert.Equal(t, semesters.items[entry.OriginalIndex].ID, entry.Semester.ID)
		assert.Equal(t, 120, entry.DurationDays)
		assert.Equal(t, 4, entry.DurationMonths)
	}
	assert.Equal(t, 1, timeline.Entries[0].OriginalIndex)
}

func TestPlannerServiceDerive(t *testing.T) {
	svc, _, _ := newPlannerFixture(false)
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.DeriveDatesRequest
		want dto.DeriveDatesResponse
	}{
		{
			name: "end date from months",
			req:  dto.DeriveDatesRequest{StartDate: "2024-01-15", Duration: 1, DurationUnit: "months"},
			want: dto.DeriveDatesResponse{StartDate: "2024-01-15", EndDate: "2024-02-15", DurationMonths: 1, DurationDays: 31},
		},
		{
			name: "month end clamps",
			req:  dto.DeriveDatesRequest{StartDate: "2024-01-31", Duration: 1, DurationUnit: "months"},
			want: dto.DeriveDatesResponse{StartDate: "2024-01-31", EndDate: "2024-02-29", DurationMonths: 1, DurationDays: 29},
		},
		{
			name: "end date from days",
			req:  dto.DeriveDatesRequest{StartDate: "2024-01-08T00:00:00Z", Duration: 120, DurationUnit: "days"},
			want: dto.DeriveDatesResponse{StartDate: "2024-01-08", EndDate: "2024-05-07", DurationMonths: 3, DurationDays: 120},
		},
		{
			name: "durations from explicit range",
			req:  dto.DeriveDatesRequest{StartDate: "2024-01-01", EndDate: "2024-04-01"},
			want: dto.DeriveDatesResponse{StartDate: "2024-01-01", EndDate: "2024-04-01", DurationMonths: 3, DurationDays: 91},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.Derive(ctx, tc.req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, *got)
		})
	}
}

func TestPlannerServiceDeriveRejectsBadStart(t *testing.T) {
	svc, _, _ := newPlannerFixture(false)
	ctx := context.Background()

	cases := map[string]dto.DeriveDatesRequest{
		"missing start":     {EndDate: "2024-02-01"},
		"unparseable start": {StartDate: "next monday", EndDate: "2024-02-01"},
		"unknown unit":      {StartDate: "2024-01-01", Duration: 2, DurationUnit: "weeks"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Derive(ctx, req)
			assert.ErrorIs(t, err, appErrors.ErrValidation)
		})
	}
}

func TestPlannerServiceDeriveIsLenientWhileTyping(t *testing.T) {
	svc, _, _ := newPlannerFixture(false)
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.DeriveDatesRequest
		want dto.DeriveDatesResponse
	}{
		{
			name: "start only leaves end and durations blank",
			req:  dto.DeriveDatesRequest{StartDate: "2024-01-15"},
			want: dto.DeriveDatesResponse{StartDate: "2024-01-15"},
		},
		{
			name: "duration without unit leaves end blank",
			req:  dto.DeriveDatesRequest{StartDate: "2024-01-15", Duration: 3},
			want: dto.DeriveDatesResponse{StartDate: "2024-01-15"},
		},
		{
			name: "unparseable end is treated as blank",
			req:  dto.DeriveDatesRequest{StartDate: "2024-01-15", EndDate: "2024-13-45"},
			want: dto.DeriveDatesResponse{StartDate: "2024-01-15"},
		},
		{
			name: "same day floors at one",
			req:  dto.DeriveDatesRequest{StartDate: "2024-01-15", EndDate: "2024-01-15"},
			want: dto.DeriveDatesResponse{StartDate: "2024-01-15", EndDate: "2024-01-15", DurationMonths: 1, DurationDays: 1},
		},
		{
			name: "end before start floors at one",
			req:  dto.DeriveDatesRequest{StartDate: "2024-02-01", EndDate: "2024-01-20"},
			want: dto.DeriveDatesResponse{StartDate: "2024-02-01", EndDate: "2024-01-20", DurationMonths: 1, DurationDays: 1},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.Derive(ctx, tc.req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, *got)
		})
	}
}

func TestPlannerServiceRefreshJob(t *testing.T) {
	svc, semesters, cacheRepo := newPlannerFixture(true)
	ctx := context.Background()

	_, _, err := svc.Progress(ctx, testSession, "ic-1")
	require.NoError(t, err)

	semesters.items = semesters.items[:2]
	err = svc.HandleRefreshJob(ctx, jobs.Job{ID: "job-1", Type: JobTypeRefreshProgress, Payload: RefreshPayload{TenantID: "tenant-1", IntakeCourseID: "ic-1"}})
	require.NoError(t, err)
	assert.Contains(t, cacheRepo.deleted, progressKey("tenant-1", "ic-1"))

	progress, hit, err := svc.Progress(ctx, testSession, "ic-1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, progress.SemesterCount)
	assert.Equal(t, 8, progress.TotalDurationMonths)
}

func TestPlannerServiceRefreshIgnoresUnknownCourse(t *testing.T) {
	svc, _, _ := newPlannerFixture(true)
	assert.NoError(t, svc.Refresh(context.Background(), "tenant-1", "missing"))
	assert.NoError(t, svc.HandleRefreshJob(context.Background(), jobs.Job{ID: "job-2", Payload: "garbage"}))
}
