package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/campushub-api/internal/dto"
	"github.com/noah-isme/campushub-api/internal/models"
	appErrors "github.com/noah-isme/campushub-api/pkg/errors"
)

type intakeCourseRepository interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.IntakeCourse, error)
	ListByIntake(ctx context.Context, tenantID, intakeID string) ([]models.IntakeCourse, error)
}

// IntakeCourseService exposes seat usage of intake courses.
type IntakeCourseService struct {
	repo   intakeCourseRepository
	logger *zap.Logger
}

// NewIntakeCourseService constructs the service.
func NewIntakeCourseService(repo intakeCourseRepository, logger *zap.Logger) *IntakeCourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntakeCourseService{repo: repo, logger: logger}
}

// Capacity returns the seat summary of an intake course.
func (s *IntakeCourseService) Capacity(ctx context.Context, session *models.Session, id string) (*models.Capacity, error) {
	tenantID, err := tenantOf(session)
	if err != nil {
		return nil, err
	}
	ic, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intake course not found")
		}
		return nil, appErrors.Internal(err, "failed to load intake course")
	}
	capacity := ic.Capacity()
	return &capacity, nil
}

// ListByIntake returns the courses of an intake with their seat usage.
func (s *IntakeCourseService) ListByIntake(ctx context.Context, session *models.Session, intakeID string) ([]dto.IntakeCourseSummary, error) {
	tenantID, err := tenantOf(session)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListByIntake(ctx, tenantID, intakeID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list intake courses")
	}
	summaries := make([]dto.IntakeCourseSummary, len(items))
	for i, ic := range items {
		summaries[i] = dto.IntakeCourseSummary{IntakeCourse: ic, Capacity: ic.Capacity()}
	}
	return summaries, nil
}
