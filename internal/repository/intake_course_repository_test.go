package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/campushub-api/pkg/errors"
)

var intakeCourseRowColumns = []string{"id", "tenant_id", "intake_id", "course_id", "max_students", "current_enrolled", "fee_amount", "duration_months", "created_at", "updated_at"}

func TestIntakeCourseRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewIntakeCourseRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM intake_courses WHERE tenant_id = $1 AND id = $2")).
		WithArgs("tenant-1", "ic-1").
		WillReturnRows(sqlmock.NewRows(intakeCourseRowColumns).AddRow("ic-1", "tenant-1", "intake-1", "course-1", 40, 32, 1500.0, 36, now, now))

	ic, err := repo.FindByID(context.Background(), "tenant-1", "ic-1")
	require.NoError(t, err)
	assert.Equal(t, 40, ic.MaxStudents)
	assert.Equal(t, 32, ic.CurrentEnrolled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntakeCourseRepositoryListByIntake(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewIntakeCourseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(intakeCourseRowColumns).
		AddRow("ic-1", "tenant-1", "intake-1", "course-1", 40, 32, 1500.0, 36, now, now).
		AddRow("ic-2", "tenant-1", "intake-1", "course-2", 0, 12, 900.0, 24, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM intake_courses WHERE tenant_id = $1 AND intake_id = $2 ORDER BY created_at ASC")).
		WithArgs("tenant-1", "intake-1").
		WillReturnRows(rows)

	items, err := repo.ListByIntake(context.Background(), "tenant-1", "intake-1")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByIntakeCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("JOIN intake_courses ic ON ic.course_id = c.id")).
		WithArgs("tenant-1", "ic-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "code", "name", "nominal_duration_months", "created_at", "updated_at"}).
			AddRow("course-1", "tenant-1", "BSC-CS", "BSc Computer Science", 36.0, now, now))

	course, err := repo.FindByIntakeCourse(context.Background(), "tenant-1", "ic-1")
	require.NoError(t, err)
	assert.Equal(t, "BSC-CS", course.Code)
	assert.Equal(t, 36.0, course.NominalDurationMonths)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	var dest map[string]int
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", 1, time.Minute))
	assert.NoError(t, repo.Delete(context.Background(), "k"))
	n, err := repo.Incr(context.Background(), "gen")
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, repo.Close())
}
