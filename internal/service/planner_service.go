package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campushub-api/internal/dto"
	"github.com/noah-isme/campushub-api/internal/models"
	"github.com/noah-isme/campushub-api/internal/planner"
	appErrors "github.com/noah-isme/campushub-api/pkg/errors"
	"github.com/noah-isme/campushub-api/pkg/jobs"
)

const (
	// JobTypeRefreshProgress recomputes the cached progress of one intake course.
	JobTypeRefreshProgress = "planner.refresh_progress"

	dateLayout = "2006-01-02"
)

// RefreshPayload identifies the intake course a refresh job recomputes.
type RefreshPayload struct {
	TenantID       string
	IntakeCourseID string
}

type semesterReader interface {
	ListByIntakeCourse(ctx context.Context, tenantID, intakeCourseID string) ([]models.Semester, error)
}

type courseReader interface {
	FindByIntakeCourse(ctx context.Context, tenantID, intakeCourseID string) (*models.Course, error)
}

// PlannerService computes course progress, semester timelines and form dates.
type PlannerService struct {
	semesters semesterReader
	courses   courseReader
	cache     *CacheService
	metrics   *MetricsService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPlannerService constructs the planner service.
func NewPlannerService(semesters semesterReader, courses courseReader, cache *CacheService, metrics *MetricsService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlannerService{
		semesters: semesters,
		courses:   courses,
		cache:     cache,
		metrics:   metrics,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

func progressKey(tenantID, intakeCourseID string) string {
	return fmt.Sprintf("planner:progress:%s:%s", tenantID, intakeCourseID)
}

// progressGenKey counts semester mutations of an intake course. A cached progress entry
// is only served while its generation matches.
func progressGenKey(tenantID, intakeCourseID string) string {
	return fmt.Sprintf("planner:progress-gen:%s:%s", tenantID, intakeCourseID)
}

type cachedProgress struct {
	Generation int64                      `json:"generation"`
	Progress   dto.CourseProgressResponse `json:"progress"`
}

// Progress returns the course progress of an intake course. The boolean reports a cache hit.
func (s *PlannerService) Progress(ctx context.Context, session *models.Session, intakeCourseID string) (*dto.CourseProgressResponse, bool, error) {
	tenantID, err := tenantOf(session)
	if err != nil {
		return nil, false, err
	}
	key := progressKey(tenantID, intakeCourseID)

	gen, genErr := s.cache.Generation(ctx, progressGenKey(tenantID, intakeCourseID))
	var cached cachedProgress
	if genErr == nil {
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit && cached.Generation == gen {
			return &cached.Progress, true, nil
		}
	}

	result, err := s.computeProgress(ctx, tenantID, intakeCourseID)
	if err != nil {
		return nil, false, err
	}
	if genErr == nil {
		_ = s.cache.Set(ctx, key, cachedProgress{Generation: gen, Progress: *result}, s.cacheTTL)
	}
	return result, false, nil
}

func (s *PlannerService) computeProgress(ctx context.Context, tenantID, intakeCourseID string) (*dto.CourseProgressResponse, error) {
	course, err := s.loadCourse(ctx, tenantID, intakeCourseID)
	if err != nil {
		return nil, err
	}
	semesters, err := s.semesters.ListByIntakeCourse(ctx, tenantID, intakeCourseID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load semesters")
	}

	progress := planner.ComputeProgress(models.PlannerViews(semesters), course.NominalDurationMonths)
	s.metrics.RecordPlannerComputation("progress")

	return &dto.CourseProgressResponse{
		IntakeCourseID:        intakeCourseID,
		CourseID:              course.ID,
		CourseCode:            course.Code,
		CourseName:            course.Name,
		SemesterCount:         len(semesters),
		TotalDurationDays:     progress.TotalDurationDays,
		TotalDurationMonths:   progress.TotalDurationMonths,
		NominalDurationMonths: progress.NominalDurationMonths,
		ProgressPercentage:    progress.ProgressPercentage,
		IsCompleted:           progress.IsCompleted,
		ComputedAt:            s.now().UTC(),
	}, nil
}

// Timeline returns the semesters of an intake course ordered by start date.
func (s *PlannerService) Timeline(ctx context.Context, session *models.Session, intakeCourseID string) (*dto.TimelineResponse, error) {
	tenantID, err := tenantOf(session)
	if err != nil {
		return nil, err
	}
	course, err := s.loadCourse(ctx, tenantID, intakeCourseID)
	if err != nil {
		return nil, err
	}
	semesters, err := s.semesters.ListByIntakeCourse(ctx, tenantID, intakeCourseID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load semesters")
	}

	ordered := planner.BuildTimeline(semesters, models.SemesterKey)
	s.metrics.RecordPlannerComputation("timeline")

	entries := make([]dto.TimelineEntry, len(ordered))
	for i, entry := range ordered {
		duration := planner.ComputeDuration(entry.Semester.StartDate, entry.Semester.EndDate)
		entries[i] = dto.TimelineEntry{
			SortedIndex:    entry.SortedIndex,
			OriginalIndex:  entry.OriginalIndex,
			DurationDays:   duration.Days,
			DurationMonths: duration.Months,
			Semester:       entry.Semester,
		}
	}
	return &dto.TimelineResponse{
		IntakeCourseID: intakeCourseID,
		CourseCode:     course.Code,
		CourseName:     course.Name,
		Entries:        entries,
	}, nil
}

// Derive fills in the dependent semester form fields. Only a missing or unparseable
// start date is rejected: without an end date or duration the end stays blank and both
// durations are 0, and with both dates the durations are floored at 1.
func (s *PlannerService) Derive(ctx context.Context, req dto.DeriveDatesRequest) (*dto.DeriveDatesResponse, error) {
	if err := s.validator.StructCtx(ctx, req); err != nil {
		return nil, appErrors.Validation(err, "invalid derive payload")
	}
	start, ok := planner.ParseDate(req.StartDate)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startDate is not a valid date")
	}

	end, ok := planner.ParseDate(req.EndDate)
	if !ok && req.Duration > 0 {
		end = planner.DeriveEndDate(start, req.Duration, req.DurationUnit)
	}
	s.metrics.RecordPlannerComputation("derive")

	return &dto.DeriveDatesResponse{
		StartDate:      start.Format(dateLayout),
		EndDate:        formatDate(end),
		DurationMonths: planner.DeriveDurationMonths(start, end),
		DurationDays:   planner.DeriveDurationDays(start, end),
	}, nil
}

// Refresh drops and recomputes the cached progress of one intake course.
func (s *PlannerService) Refresh(ctx context.Context, tenantID, intakeCourseID string) error {
	if !s.cache.Enabled() {
		return nil
	}
	key := progressKey(tenantID, intakeCourseID)
	if err := s.cache.Delete(ctx, key); err != nil {
		return err
	}
	gen, err := s.cache.Generation(ctx, progressGenKey(tenantID, intakeCourseID))
	if err != nil {
		return err
	}
	result, err := s.computeProgress(ctx, tenantID, intakeCourseID)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.cache.Set(ctx, key, cachedProgress{Generation: gen, Progress: *result}, s.cacheTTL)
}

// HandleRefreshJob adapts Refresh to the background queue.
func (s *PlannerService) HandleRefreshJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(RefreshPayload)
	if !ok {
		s.logger.Error("dropping refresh job with unexpected payload", zap.String("job_id", job.ID), zap.String("payload_type", fmt.Sprintf("%T", job.Payload)))
		return nil
	}
	if err := s.Refresh(ctx, payload.TenantID, payload.IntakeCourseID); err != nil {
		return fmt.Errorf("refresh progress %s: %w", payload.IntakeCourseID, err)
	}
	s.logger.Debug("progress cache refreshed", zap.String("tenant_id", payload.TenantID), zap.String("intake_course_id", payload.IntakeCourseID))
	return nil
}

func (s *PlannerService) loadCourse(ctx context.Context, tenantID, intakeCourseID string) (*models.Course, error) {
	course, err := s.courses.FindByIntakeCourse(ctx, tenantID, intakeCourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intake course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}
	return course, nil
}

// resolveDateRange parses stored semester dates and derives the end date from a duration
// when no explicit end date is given. The range must be non-empty.
func resolveDateRange(startRaw, endRaw string, duration int, unit planner.DurationUnit) (time.Time, time.Time, error) {
	start, ok := planner.ParseDate(startRaw)
	if !ok {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "startDate is not a valid date")
	}

	var end time.Time
	switch {
	case endRaw != "":
		if end, ok = planner.ParseDate(endRaw); !ok {
			return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "endDate is not a valid date")
		}
	case duration > 0 && unit.Valid():
		end = planner.DeriveEndDate(start, duration, unit)
	default:
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "provide endDate or duration with durationUnit")
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "endDate must be after startDate")
	}
	return start, end, nil
}
