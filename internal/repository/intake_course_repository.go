package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campushub-api/internal/models"
)

const intakeCourseColumns = "id, tenant_id, intake_id, course_id, max_students, current_enrolled, fee_amount, duration_months, created_at, updated_at"

// IntakeCourseRepository reads course assignments for intakes.
type IntakeCourseRepository struct {
	db *sqlx.DB
}

// NewIntakeCourseRepository instantiates an intake course repository.
func NewIntakeCourseRepository(db *sqlx.DB) *IntakeCourseRepository {
	return &IntakeCourseRepository{db: db}
}

// FindByID loads an intake course within a tenant.
func (r *IntakeCourseRepository) FindByID(ctx context.Context, tenantID, id string) (*models.IntakeCourse, error) {
	query := fmt.Sprintf("SELECT %s FROM intake_courses WHERE tenant_id = $1 AND id = $2", intakeCourseColumns)
	var ic models.IntakeCourse
	if err := r.db.GetContext(ctx, &ic, query, tenantID, id); err != nil {
		return nil, err
	}
	return &ic, nil
}

// ListByIntake returns the courses offered in an intake.
func (r *IntakeCourseRepository) ListByIntake(ctx context.Context, tenantID, intakeID string) ([]models.IntakeCourse, error) {
	query := fmt.Sprintf("SELECT %s FROM intake_courses WHERE tenant_id = $1 AND intake_id = $2 ORDER BY created_at ASC", intakeCourseColumns)
	var items []models.IntakeCourse
	if err := r.db.SelectContext(ctx, &items, query, tenantID, intakeID); err != nil {
		return nil, fmt.Errorf("list intake courses: %w", err)
	}
	return items, nil
}
