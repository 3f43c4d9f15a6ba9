package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campushub-api/internal/dto"
	"github.com/noah-isme/campushub-api/internal/models"
	"github.com/noah-isme/campushub-api/internal/planner"
	appErrors "github.com/noah-isme/campushub-api/pkg/errors"
	"github.com/noah-isme/campushub-api/pkg/events"
	"github.com/noah-isme/campushub-api/pkg/jobs"
)

type semesterRepository interface {
	List(ctx context.Context, filter models.SemesterFilter) ([]models.Semester, int, error)
	ListByIntakeCourse(ctx context.Context, tenantID, intakeCourseID string) ([]models.Semester, error)
	FindByID(ctx context.Context, tenantID, id string) (*models.Semester, error)
	ExistsNumber(ctx context.Context, tenantID, intakeCourseID string, number int, excludeID string) (bool, error)
	Create(ctx context.Context, semester *models.Semester) error
	Update(ctx context.Context, semester *models.Semester) error
	Delete(ctx context.Context, tenantID, id string) error
}

type intakeCourseFinder interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.IntakeCourse, error)
}

type refreshQueue interface {
	TryEnqueue(job jobs.Job) (bool, error)
}

// SemesterService orchestrates semester workflows.
type SemesterService struct {
	repo          semesterRepository
	intakeCourses intakeCourseFinder
	publisher     events.Publisher
	queue         refreshQueue
	cache         *CacheService
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	now           func() time.Time
}

// NewSemesterService creates a new semester service instance. A nil publisher drops
// lifecycle events and a nil queue skips progress cache warming.
func NewSemesterService(repo semesterRepository, intakeCourses intakeCourseFinder, publisher events.Publisher, queue refreshQueue, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SemesterService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SemesterService{
		repo:          repo,
		intakeCourses: intakeCourses,
		publisher:     publisher,
		queue:         queue,
		cache:         cache,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		now:           time.Now,
	}
}

// List returns paginated semesters of the session tenant.
func (s *SemesterService) List(ctx context.Context, session *models.Session, filter models.SemesterFilter) ([]models.Semester, *models.Pagination, error) {
	tenantID, err := tenantOf(session)
	if err != nil {
		return nil, nil, err
	}
	filter.TenantID = tenantID

	semesters, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list semesters")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return semesters, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a semester by ID.
func (s *SemesterService) Get(ctx context.Context, session *models.Session, id string) (*models.Semester, error) {
	tenantID, err := tenantOf(session)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, tenantID, id)
}

// Create adds a semester to an intake course.
func (s *SemesterService) Create(ctx context.Context, session *models.Session, req dto.CreateSemesterRequest) (*models.Semester, error) {
	tenantID, err := tenantOf(session)
	if err != nil {
		return nil, err
	}
	if err := s.validator.StructCtx(ctx, req); err != nil {
		return nil, appErrors.Validation(err, "invalid semester payload")
	}
	start, end, err := resolveDateRange(req.StartDate, req.EndDate, req.Duration, req.DurationUnit)
	if err != nil {
		return nil, err
	}

	intakeCourseID := req.IntakeCourseID.String()
	if _, err := s.intakeCourses.FindByID(ctx, tenantID, intakeCourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intake course not found")
		}
		return nil, appErrors.Internal(err, "failed to load intake course")
	}

	semester := &models.Semester{
		TenantID:       tenantID,
		IntakeCourseID: intakeCourseID,
		SemesterNumber: req.SemesterNumber,
		Year:           yearOr(req.Year, start),
		StartDate:      start,
		EndDate:        end,
		Status:         statusOr(req.Status),
	}
	if err := s.checkConflicts(ctx, semester); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, semester); err != nil {
		return nil, appErrors.Internal(err, "failed to create semester")
	}

	s.logger.Info("semester created",
		zap.String("tenant_id", tenantID),
		zap.String("semester_id", semester.ID),
		zap.String("intake_course_id", intakeCourseID),
		zap.Int("semester_number", semester.SemesterNumber),
	)
	s.afterMutation(ctx, events.SemesterCreated, semester)
	return semester, nil
}

// Update replaces the mutable fields of a semester.
func (s *SemesterService) Update(ctx context.Context, session *models.Session, id string, req dto.UpdateSemesterRequest) (*models.Semester, error) {
	tenantID, err := tenantOf(session)
	if err != nil {
		return nil, err
	}
	if err := s.validator.StructCtx(ctx, req); err != nil {
		return nil, appErrors.Validation(err, "invalid semester payload")
	}
	semester, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	start, end, err := resolveDateRange(req.StartDate, req.EndDate, req.Duration, req.DurationUnit)
	if err != nil {
		return nil, err
	}

	semester.SemesterNumber = req.SemesterNumber
	semester.Year = yearOr(req.Year, start)
	semester.StartDate = start
	semester.EndDate = end
	if req.Status != "" {
		semester.Status = req.Status
	}
	if err := s.checkConflicts(ctx, semester); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, semester); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Internal(err, "failed to update semester")
	}

	s.logger.Info("semester updated", zap.String("tenant_id", tenantID), zap.String("semester_id", semester.ID))
	s.afterMutation(ctx, events.SemesterUpdated, semester)
	return semester, nil
}

// Delete removes a semester.
func (s *SemesterService) Delete(ctx context.Context, session *models.Session, id string) error {
	tenantID, err := tenantOf(session)
	if err != nil {
		return err
	}
	semester, err := s.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return appErrors.Internal(err, "failed to delete semester")
	}

	s.logger.Info("semester deleted", zap.String("tenant_id", tenantID), zap.String("semester_id", id))
	s.afterMutation(ctx, events.SemesterDeleted, semester)
	return nil
}

func (s *SemesterService) find(ctx context.Context, tenantID, id string) (*models.Semester, error) {
	semester, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Internal(err, "failed to load semester")
	}
	return semester, nil
}

// checkConflicts enforces a unique semester number and non-overlapping date ranges
// within the intake course.
func (s *SemesterService) checkConflicts(ctx context.Context, semester *models.Semester) error {
	exists, err := s.repo.ExistsNumber(ctx, semester.TenantID, semester.IntakeCourseID, semester.SemesterNumber, semester.ID)
	if err != nil {
		return appErrors.Internal(err, "failed to check semester number")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("semester %d already exists for intake course", semester.SemesterNumber))
	}

	siblings, err := s.repo.ListByIntakeCourse(ctx, semester.TenantID, semester.IntakeCourseID)
	if err != nil {
		return appErrors.Internal(err, "failed to load intake course semesters")
	}
	candidate := semester.PlannerView()
	for _, other := range siblings {
		if other.ID == semester.ID {
			continue
		}
		if planner.Overlaps(candidate, other.PlannerView()) {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("semester dates overlap semester %d", other.SemesterNumber))
		}
	}
	return nil
}

// afterMutation retires the cached progress, publishes the lifecycle event and queues
// a cache refresh. None of these steps fail the request.
func (s *SemesterService) afterMutation(ctx context.Context, eventType events.Type, semester *models.Semester) {
	key := progressKey(semester.TenantID, semester.IntakeCourseID)
	_ = s.cache.Bump(ctx, progressGenKey(semester.TenantID, semester.IntakeCourseID))
	_ = s.cache.Delete(ctx, key)

	event := events.Event{
		Type:           eventType,
		TenantID:       semester.TenantID,
		SemesterID:     semester.ID,
		IntakeCourseID: semester.IntakeCourseID,
		OccurredAt:     s.now().UTC(),
	}
	err := s.publisher.Publish(ctx, event)
	s.metrics.RecordEvent(string(eventType), err == nil)
	if err != nil {
		s.logger.Warn("failed to publish semester event", zap.String("type", string(eventType)), zap.String("semester_id", semester.ID), zap.Error(err))
	}

	if s.queue == nil {
		return
	}
	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: JobTypeRefreshProgress,
		Key:  key,
		Payload: RefreshPayload{
			TenantID:       semester.TenantID,
			IntakeCourseID: semester.IntakeCourseID,
		},
	}
	if _, err := s.queue.TryEnqueue(job); err != nil {
		s.logger.Warn("progress refresh dropped", zap.String("intake_course_id", semester.IntakeCourseID), zap.Error(err))
	}
}

func yearOr(year int, start time.Time) int {
	if year > 0 {
		return year
	}
	return start.Year()
}

func statusOr(status models.SemesterStatus) models.SemesterStatus {
	if status == "" {
		return models.SemesterStatusUpcoming
	}
	return status
}
