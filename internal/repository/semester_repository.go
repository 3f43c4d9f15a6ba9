package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campushub-api/internal/models"
)

const semesterColumns = "id, tenant_id, intake_course_id, semester_number, year, start_date, end_date, status, created_at, updated_at"

// SemesterRepository handles persistence for intake course semesters.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository instantiates a semester repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// List returns semesters matching provided filters.
func (r *SemesterRepository) List(ctx context.Context, filter models.SemesterFilter) ([]models.Semester, int, error) {
	base := "FROM semesters WHERE tenant_id = $1"
	args := []interface{}{filter.TenantID}
	var conditions []string

	if filter.IntakeCourseID != "" {
		conditions = append(conditions, fmt.Sprintf("intake_course_id = $%d", len(args)+1))
		args = append(args, filter.IntakeCourseID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Year > 0 {
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"start_date":      true,
		"end_date":        true,
		"semester_number": true,
		"year":            true,
		"created_at":      true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "start_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", semesterColumns, base, sortBy, order, size, offset)
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list semesters: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count semesters: %w", err)
	}
	return semesters, total, nil
}

// ListByIntakeCourse returns every semester of an intake course in insertion order.
// Ordering for display is left to the timeline sequencer.
func (r *SemesterRepository) ListByIntakeCourse(ctx context.Context, tenantID, intakeCourseID string) ([]models.Semester, error) {
	query := fmt.Sprintf("SELECT %s FROM semesters WHERE tenant_id = $1 AND intake_course_id = $2 ORDER BY created_at ASC", semesterColumns)
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query, tenantID, intakeCourseID); err != nil {
		return nil, fmt.Errorf("list intake course semesters: %w", err)
	}
	return semesters, nil
}

// FindByID loads a semester by identifier within a tenant.
func (r *SemesterRepository) FindByID(ctx context.Context, tenantID, id string) (*models.Semester, error) {
	query := fmt.Sprintf("SELECT %s FROM semesters WHERE tenant_id = $1 AND id = $2", semesterColumns)
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query, tenantID, id); err != nil {
		return nil, err
	}
	return &semester, nil
}

// ExistsNumber reports whether the semester number is taken within the intake course.
func (r *SemesterRepository) ExistsNumber(ctx context.Context, tenantID, intakeCourseID string, number int, excludeID string) (bool, error) {
	query := "SELECT 1 FROM semesters WHERE tenant_id = $1 AND intake_course_id = $2 AND semester_number = $3"
	args := []interface{}{tenantID, intakeCourseID, number}
	if excludeID != "" {
		query += " AND id <> $4"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check semester number: %w", err)
	}
	return true, nil
}

// Create inserts a new semester.
func (r *SemesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	if semester.ID == "" {
		semester.ID = uuid.NewString()
	}
	if semester.Status == "" {
		semester.Status = models.SemesterStatusUpcoming
	}
	now := time.Now().UTC()
	if semester.CreatedAt.IsZero() {
		semester.CreatedAt = now
	}
	semester.UpdatedAt = now

	const query = `INSERT INTO semesters (id, tenant_id, intake_course_id, semester_number, year, start_date, end_date, status, created_at, updated_at)
VALUES (:id, :tenant_id, :intake_course_id, :semester_number, :year, :start_date, :end_date, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, semester); err != nil {
		return fmt.Errorf("create semester: %w", err)
	}
	return nil
}

// Update modifies an existing semester.
func (r *SemesterRepository) Update(ctx context.Context, semester *models.Semester) error {
	semester.UpdatedAt = time.Now().UTC()
	const query = `UPDATE semesters SET semester_number = :semester_number, year = :year, start_date = :start_date, end_date = :end_date, status = :status, updated_at = :updated_at
WHERE id = :id AND tenant_id = :tenant_id`
	result, err := r.db.NamedExecContext(ctx, query, semester)
	if err != nil {
		return fmt.Errorf("update semester: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("semester rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a semester.
func (r *SemesterRepository) Delete(ctx context.Context, tenantID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM semesters WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete semester: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("semester rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
