package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/campushub-api/internal/models"
	appErrors "github.com/noah-isme/campushub-api/pkg/errors"
	"github.com/noah-isme/campushub-api/pkg/events"
	"github.com/noah-isme/campushub-api/pkg/jobs"
)

var testSession = &models.Session{UserID: "user-1", TenantID: "tenant-1", Role: models.RoleAdmin, Email: "admin@campus.test"}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

type stubCacheRepo struct {
	store   map[string][]byte
	deleted []string
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.store, key)
		s.deleted = append(s.deleted, key)
	}
	return nil
}

func (s *stubCacheRepo) Incr(_ context.Context, key string) (int64, error) {
	var n int64
	if payload, ok := s.store[key]; ok {
		if err := json.Unmarshal(payload, &n); err != nil {
			return 0, err
		}
	}
	n++
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, _ := json.Marshal(n)
	s.store[key] = payload
	return n, nil
}

// fakeSemesterRepo keeps semesters in insertion order per tenant.
type fakeSemesterRepo struct {
	items     []models.Semester
	listCalls int
	failWith  error
	// onList runs as ListByIntakeCourse returns, standing in for a concurrent writer.
	onList func()
}

func (f *fakeSemesterRepo) List(_ context.Context, filter models.SemesterFilter) ([]models.Semester, int, error) {
	if f.failWith != nil {
		return nil, 0, f.failWith
	}
	var out []models.Semester
	for _, s := range f.items {
		if s.TenantID == filter.TenantID && (filter.IntakeCourseID == "" || s.IntakeCourseID == filter.IntakeCourseID) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, len(out), nil
}

func (f *fakeSemesterRepo) ListByIntakeCourse(_ context.Context, tenantID, intakeCourseID string) ([]models.Semester, error) {
	f.listCalls++
	if f.onList != nil {
		defer f.onList()
	}
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []models.Semester
	for _, s := range f.items {
		if s.TenantID == tenantID && s.IntakeCourseID == intakeCourseID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSemesterRepo) FindByID(_ context.Context, tenantID, id string) (*models.Semester, error) {
	for _, s := range f.items {
		if s.TenantID == tenantID && s.ID == id {
			cp := s
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSemesterRepo) ExistsNumber(_ context.Context, tenantID, intakeCourseID string, number int, excludeID string) (bool, error) {
	for _, s := range f.items {
		if s.TenantID == tenantID && s.IntakeCourseID == intakeCourseID && s.SemesterNumber == number && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSemesterRepo) Create(_ context.Context, semester *models.Semester) error {
	if semester.ID == "" {
		semester.ID = "sem-new"
	}
	f.items = append(f.items, *semester)
	return nil
}

func (f *fakeSemesterRepo) Update(_ context.Context, semester *models.Semester) error {
	for i, s := range f.items {
		if s.ID == semester.ID && s.TenantID == semester.TenantID {
			f.items[i] = *semester
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeSemesterRepo) Delete(_ context.Context, tenantID, id string) error {
	for i, s := range f.items {
		if s.ID == id && s.TenantID == tenantID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type fakeIntakeCourseRepo struct {
	items map[string]models.IntakeCourse
}

func (f *fakeIntakeCourseRepo) FindByID(_ context.Context, tenantID, id string) (*models.IntakeCourse, error) {
	ic, ok := f.items[id]
	if !ok || ic.TenantID != tenantID {
		return nil, sql.ErrNoRows
	}
	return &ic, nil
}

func (f *fakeIntakeCourseRepo) ListByIntake(_ context.Context, tenantID, intakeID string) ([]models.IntakeCourse, error) {
	var out []models.IntakeCourse
	for _, ic := range f.items {
		if ic.TenantID == tenantID && ic.IntakeID == intakeID {
			out = append(out, ic)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeCourseRepo struct {
	byIntakeCourse map[string]models.Course
}

func (f *fakeCourseRepo) FindByIntakeCourse(_ context.Context, tenantID, intakeCourseID string) (*models.Course, error) {
	c, ok := f.byIntakeCourse[intakeCourseID]
	if !ok || c.TenantID != tenantID {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type recordingQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) TryEnqueue(job jobs.Job) (bool, error) {
	if q.err != nil {
		return false, q.err
	}
	q.jobs = append(q.jobs, job)
	return true, nil
}

// threeSemesterCourse seeds a 36 month course with three 120 day semesters, stored
// out of chronological order.
func threeSemesterCourse() (*fakeSemesterRepo, *fakeCourseRepo, *fakeIntakeCourseRepo) {
	semesters := &fakeSemesterRepo{items: []models.Semester{
		{ID: "sem-2", TenantID: "tenant-1", IntakeCourseID: "ic-1", SemesterNumber: 2, Year: 2024, StartDate: day(2024, 5, 10), EndDate: day(2024, 9, 7), Status: models.SemesterStatusUpcoming},
		{ID: "sem-1", TenantID: "tenant-1", IntakeCourseID: "ic-1", SemesterNumber: 1, Year: 2024, StartDate: day(2024, 1, 8), EndDate: day(2024, 5, 7), Status: models.SemesterStatusCompleted},
		{ID: "sem-3", TenantID: "tenant-1", IntakeCourseID: "ic-1", SemesterNumber: 3, Year: 2024, StartDate: day(2024, 9, 16), EndDate: day(2025, 1, 14), Status: models.SemesterStatusUpcoming},
	}}
	courses := &fakeCourseRepo{byIntakeCourse: map[string]models.Course{
		"ic-1": {ID: "course-1", TenantID: "tenant-1", Code: "BSC-CS", Name: "Computer Science", NominalDurationMonths: 36},
	}}
	intakeCourses := &fakeIntakeCourseRepo{items: map[string]models.IntakeCourse{
		"ic-1": {ID: "ic-1", TenantID: "tenant-1", IntakeID: "intake-1", CourseID: "course-1", MaxStudents: 40, CurrentEnrolled: 30},
	}}
	return semesters, courses, intakeCourses
}
