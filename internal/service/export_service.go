package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/noah-isme/campushub-api/internal/dto"
	"github.com/noah-isme/campushub-api/internal/models"
	appErrors "github.com/noah-isme/campushub-api/pkg/errors"
	"github.com/noah-isme/campushub-api/pkg/export"
)

const calendarProductID = "-//CampusHub//Semester Planner//EN"

var timelineHeaders = []string{"No", "Semester", "Year", "Start", "End", "Days", "Months", "Status", "Starts"}

type timelineSource interface {
	Timeline(ctx context.Context, session *models.Session, intakeCourseID string) (*dto.TimelineResponse, error)
}

type tableRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type calendarRenderer interface {
	Render(name string, events []export.Event) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the semester plan of an intake course into files.
type ExportService struct {
	timelines timelineSource
	tables    map[export.Format]tableRenderer
	calendar  calendarRenderer
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService with the default renderers.
func NewExportService(timelines timelineSource, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		timelines: timelines,
		tables: map[export.Format]tableRenderer{
			export.FormatCSV:  export.NewCSVExporter(),
			export.FormatPDF:  export.NewPDFExporter(),
			export.FormatXLSX: export.NewXLSXExporter("Semesters"),
		},
		calendar: export.NewICSExporter(calendarProductID),
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Timeline renders the semester timeline in the requested format. An empty format means CSV.
func (s *ExportService) Timeline(ctx context.Context, session *models.Session, intakeCourseID string, format export.Format) (*ExportFile, error) {
	if format == "" {
		format = export.FormatCSV
	}
	format = export.Format(strings.ToLower(string(format)))
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}

	timeline, err := s.timelines.Timeline(ctx, session, intakeCourseID)
	if err != nil {
		return nil, err
	}

	title := planTitle(timeline)
	var data []byte
	if format == export.FormatICS {
		data, err = s.calendar.Render(title, s.calendarEvents(timeline))
	} else {
		data, err = s.tables[format].Render(s.dataset(title, timeline))
	}
	if err != nil {
		s.logger.Error("export render failed", zap.String("format", string(format)), zap.String("intake_course_id", intakeCourseID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to render export")
	}
	s.metrics.RecordExport(string(format))

	return &ExportFile{
		Filename:    planFilename(timeline, format),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

func (s *ExportService) dataset(title string, timeline *dto.TimelineResponse) export.Dataset {
	now := s.now()
	rows := make([]map[string]string, 0, len(timeline.Entries))
	for _, entry := range timeline.Entries {
		sem := entry.Semester
		row := map[string]string{
			"No":       strconv.Itoa(entry.SortedIndex + 1),
			"Semester": strconv.Itoa(sem.SemesterNumber),
			"Year":     strconv.Itoa(sem.Year),
			"Start":    formatDate(sem.StartDate),
			"End":      formatDate(sem.EndDate),
			"Days":     strconv.Itoa(entry.DurationDays),
			"Months":   strconv.Itoa(entry.DurationMonths),
			"Status":   string(sem.Status),
		}
		if !sem.StartDate.IsZero() {
			row["Starts"] = humanize.RelTime(sem.StartDate, now, "ago", "from now")
		}
		rows = append(rows, row)
	}
	return export.Dataset{Title: title, Headers: timelineHeaders, Rows: rows}
}

func (s *ExportService) calendarEvents(timeline *dto.TimelineResponse) []export.Event {
	events := make([]export.Event, 0, len(timeline.Entries))
	for _, entry := range timeline.Entries {
		sem := entry.Semester
		events = append(events, export.Event{
			UID:         sem.ID + "@campushub",
			Summary:     fmt.Sprintf("%s Semester %d", timeline.CourseCode, sem.SemesterNumber),
			Description: fmt.Sprintf("%s, %s, %d days", timeline.CourseName, sem.Status, entry.DurationDays),
			Start:       sem.StartDate,
			End:         sem.EndDate,
		})
	}
	return events
}

func planTitle(timeline *dto.TimelineResponse) string {
	return strings.TrimSpace(fmt.Sprintf("%s %s semester plan", timeline.CourseCode, timeline.CourseName))
}

func planFilename(timeline *dto.TimelineResponse, format export.Format) string {
	name := slug.Make(planTitle(timeline))
	if name == "" {
		name = "semester-plan"
	}
	return name + "." + string(format)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
