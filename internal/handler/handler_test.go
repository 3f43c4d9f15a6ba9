package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campushub-api/internal/dto"
	"github.com/noah-isme/campushub-api/internal/middleware"
	"github.com/noah-isme/campushub-api/internal/models"
	"github.com/noah-isme/campushub-api/internal/service"
	appErrors "github.com/noah-isme/campushub-api/pkg/errors"
	"github.com/noah-isme/campushub-api/pkg/export"
)

var adminSession = &models.Session{UserID: "admin", TenantID: "tenant-1", Role: models.RoleAdmin}

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) responseEnvelope {
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newContext(method, target string, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextSessionKey, adminSession)
	return c, w
}

type semesterServiceMock struct {
	lastFilter  models.SemesterFilter
	lastSession *models.Session
	lastCreate  dto.CreateSemesterRequest
	lastID      string
	semester    *models.Semester
	err         error
}

func (m *semesterServiceMock) List(_ context.Context, session *models.Session, filter models.SemesterFilter) ([]models.Semester, *models.Pagination, error) {
	m.lastSession = session
	m.lastFilter = filter
	if m.err != nil {
		return nil, nil, m.err
	}
	return []models.Semester{{ID: "sem-1"}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, nil
}

func (m *semesterServiceMock) Get(_ context.Context, _ *models.Session, id string) (*models.Semester, error) {
	m.lastID = id
	return m.semester, m.err
}

func (m *semesterServiceMock) Create(_ context.Context, _ *models.Session, req dto.CreateSemesterRequest) (*models.Semester, error) {
	m.lastCreate = req
	return m.semester, m.err
}

func (m *semesterServiceMock) Update(_ context.Context, _ *models.Session, id string, _ dto.UpdateSemesterRequest) (*models.Semester, error) {
	m.lastID = id
	return m.semester, m.err
}

func (m *semesterServiceMock) Delete(_ context.Context, _ *models.Session, id string) error {
	m.lastID = id
	return m.err
}

func TestSemesterHandlerListParsesQuery(t *testing.T) {
	svc := &semesterServiceMock{}
	h := NewSemesterHandler(svc)

	c, w := newContext(http.MethodGet, "/semesters?intakeCourseId=ic-1&status=in_progress&year=2024&page=2&limit=5&sort=year&order=desc", "")
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, adminSession, svc.lastSession)
	assert.Equal(t, models.SemesterFilter{
		IntakeCourseID: "ic-1",
		Status:         models.SemesterStatusInProgress,
		Year:           2024,
		Page:           2,
		PageSize:       5,
		SortBy:         "year",
		SortOrder:      "desc",
	}, svc.lastFilter)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.TotalCount)
}

func TestSemesterHandlerListRejectsUnknownStatus(t *testing.T) {
	h := NewSemesterHandler(&semesterServiceMock{})
	c, w := newContext(http.MethodGet, "/semesters?status=archived", "")
	h.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSemesterHandlerCreateNormalisesReference(t *testing.T) {
	svc := &semesterServiceMock{semester: &models.Semester{ID: "sem-9"}}
	h := NewSemesterHandler(svc)

	c, w := newContext(http.MethodPost, "/semesters", `{"intakeCourseId":{"_id":"ic-1"},"semesterNumber":1,"startDate":"2024-01-08","duration":4,"durationUnit":"months"}`)
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.Ref("ic-1"), svc.lastCreate.IntakeCourseID)
	assert.Equal(t, 4, svc.lastCreate.Duration)
}

func TestSemesterHandlerCreateInvalidBody(t *testing.T) {
	h := NewSemesterHandler(&semesterServiceMock{})
	c, w := newContext(http.MethodPost, "/semesters", `{"intakeCourseId":`)
	h.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, w).Error.Code)
}

func TestSemesterHandlerServiceErrors(t *testing.T) {
	svc := &semesterServiceMock{err: appErrors.Clone(appErrors.ErrConflict, "semester dates overlap semester 2")}
	h := NewSemesterHandler(svc)

	c, w := newContext(http.MethodPut, "/semesters/sem-3", `{"semesterNumber":3,"startDate":"2024-08-01","endDate":"2024-12-01"}`)
	c.Params = gin.Params{{Key: "id", Value: "sem-3"}}
	h.Update(c)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "sem-3", svc.lastID)
	assert.Equal(t, "semester dates overlap semester 2", decodeEnvelope(t, w).Error.Message)

	svc.err = appErrors.ErrNotFound
	c, w = newContext(http.MethodDelete, "/semesters/sem-3", "")
	c.Params = gin.Params{{Key: "id", Value: "sem-3"}}
	h.Delete(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSemesterHandlerDelete(t *testing.T) {
	h := NewSemesterHandler(&semesterServiceMock{})
	c, w := newContext(http.MethodDelete, "/semesters/sem-1", "")
	c.Params = gin.Params{{Key: "id", Value: "sem-1"}}
	h.Delete(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
}

type plannerServiceMock struct {
	progress *dto.CourseProgressResponse
	cacheHit bool
	derive   dto.DeriveDatesRequest
	err      error
}

func (m *plannerServiceMock) Progress(context.Context, *models.Session, string) (*dto.CourseProgressResponse, bool, error) {
	return m.progress, m.cacheHit, m.err
}

func (m *plannerServiceMock) Timeline(_ context.Context, _ *models.Session, id string) (*dto.TimelineResponse, error) {
	return &dto.TimelineResponse{IntakeCourseID: id}, m.err
}

func (m *plannerServiceMock) Derive(_ context.Context, req dto.DeriveDatesRequest) (*dto.DeriveDatesResponse, error) {
	m.derive = req
	return &dto.DeriveDatesResponse{StartDate: "2024-01-31", EndDate: "2024-02-29", DurationMonths: 1, DurationDays: 29}, m.err
}

func TestPlannerHandlerProgressReportsCacheHit(t *testing.T) {
	h := NewPlannerHandler(&plannerServiceMock{progress: &dto.CourseProgressResponse{ProgressPercentage: 33.33}, cacheHit: true})
	c, w := newContext(http.MethodGet, "/intake-courses/ic-1/progress", "")
	c.Params = gin.Params{{Key: "id", Value: "ic-1"}}
	h.Progress(c)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
	var progress dto.CourseProgressResponse
	require.NoError(t, json.Unmarshal(env.Data, &progress))
	assert.Equal(t, 33.33, progress.ProgressPercentage)
}

func TestPlannerHandlerDerive(t *testing.T) {
	svc := &plannerServiceMock{}
	h := NewPlannerHandler(svc)
	c, w := newContext(http.MethodPost, "/planner/derive", `{"startDate":"2024-01-31","duration":1,"durationUnit":"months"}`)
	h.Derive(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-01-31", svc.derive.StartDate)
	assert.JSONEq(t, `{"startDate":"2024-01-31","endDate":"2024-02-29","durationMonths":1,"durationDays":29}`, string(decodeEnvelope(t, w).Data))
}

func TestPlannerHandlerTimelineError(t *testing.T) {
	h := NewPlannerHandler(&plannerServiceMock{err: errors.New("boom")})
	c, w := newContext(http.MethodGet, "/intake-courses/ic-1/timeline", "")
	h.Timeline(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

type intakeCourseServiceMock struct{}

func (intakeCourseServiceMock) Capacity(_ context.Context, _ *models.Session, id string) (*models.Capacity, error) {
	return &models.Capacity{IntakeCourseID: id, MaxStudents: 40, Enrolled: 40, IsFull: true}, nil
}

func (intakeCourseServiceMock) ListByIntake(context.Context, *models.Session, string) ([]dto.IntakeCourseSummary, error) {
	return []dto.IntakeCourseSummary{{IntakeCourse: models.IntakeCourse{ID: "ic-1"}}}, nil
}

type exportServiceMock struct {
	format export.Format
}

func (m *exportServiceMock) Timeline(_ context.Context, _ *models.Session, _ string, format export.Format) (*service.ExportFile, error) {
	m.format = format
	if format == "docx" {
		return nil, appErrors.ErrUnsupportedFormat
	}
	return &service.ExportFile{Filename: "bsc-cs-semester-plan.csv", ContentType: "text/csv", Data: []byte("No\n1\n")}, nil
}

func TestIntakeCourseHandlerCapacity(t *testing.T) {
	h := NewIntakeCourseHandler(intakeCourseServiceMock{}, &exportServiceMock{})
	c, w := newContext(http.MethodGet, "/intake-courses/ic-1/capacity", "")
	c.Params = gin.Params{{Key: "id", Value: "ic-1"}}
	h.Capacity(c)

	require.Equal(t, http.StatusOK, w.Code)
	var capacity models.Capacity
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &capacity))
	assert.True(t, capacity.IsFull)
}

func TestIntakeCourseHandlerExport(t *testing.T) {
	exports := &exportServiceMock{}
	h := NewIntakeCourseHandler(intakeCourseServiceMock{}, exports)

	c, w := newContext(http.MethodGet, "/intake-courses/ic-1/export", "")
	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.FormatCSV, exports.format)
	assert.Equal(t, `attachment; filename="bsc-cs-semester-plan.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "No\n1\n", w.Body.String())

	c, w = newContext(http.MethodGet, "/intake-courses/ic-1/export?format=docx", "")
	h.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsHandlerReady(t *testing.T) {
	h := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})
	c, w := newContext(http.MethodGet, "/ready", "")
	h.Ready(c)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable","checks":{"postgres":"ok","redis":"connection refused"}}`, w.Body.String())

	h = NewMetricsHandler(nil, nil)
	c, w = newContext(http.MethodGet, "/ready", "")
	h.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
