package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campushub-api/internal/models"
)

// CourseRepository reads course definitions.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository instantiates a course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID loads a course by identifier within a tenant.
func (r *CourseRepository) FindByID(ctx context.Context, tenantID, id string) (*models.Course, error) {
	const query = `SELECT id, tenant_id, code, name, nominal_duration_months, created_at, updated_at FROM courses WHERE tenant_id = $1 AND id = $2`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, tenantID, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByIntakeCourse resolves the course assigned to an intake course.
func (r *CourseRepository) FindByIntakeCourse(ctx context.Context, tenantID, intakeCourseID string) (*models.Course, error) {
	const query = `SELECT c.id, c.tenant_id, c.code, c.name, c.nominal_duration_months, c.created_at, c.updated_at
FROM courses c
JOIN intake_courses ic ON ic.course_id = c.id
WHERE ic.tenant_id = $1 AND ic.id = $2`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, tenantID, intakeCourseID); err != nil {
		return nil, err
	}
	return &course, nil
}
