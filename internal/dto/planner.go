package dto

import (
	"time"

	"github.com/noah-isme/campushub-api/internal/models"
	"github.com/noah-isme/campushub-api/internal/planner"
)

// DeriveDatesRequest drives the semester form date helpers. With EndDate the
// durations are derived; with Duration and DurationUnit the end date is.
type DeriveDatesRequest struct {
	StartDate    string               `json:"startDate" validate:"required"`
	EndDate      string               `json:"endDate"`
	Duration     int                  `json:"duration" validate:"omitempty,min=1"`
	DurationUnit planner.DurationUnit `json:"durationUnit" validate:"omitempty,oneof=months days"`
}

// DeriveDatesResponse returns form-ready values. Dates are YYYY-MM-DD.
type DeriveDatesResponse struct {
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	DurationMonths int    `json:"durationMonths"`
	DurationDays   int    `json:"durationDays"`
}

// CourseProgressResponse reports how much of a course's nominal length its semesters cover.
type CourseProgressResponse struct {
	IntakeCourseID        string    `json:"intakeCourseId"`
	CourseID              string    `json:"courseId"`
	CourseCode            string    `json:"courseCode"`
	CourseName            string    `json:"courseName"`
	SemesterCount         int       `json:"semesterCount"`
	TotalDurationDays     int       `json:"totalDurationDays"`
	TotalDurationMonths   int       `json:"totalDurationMonths"`
	NominalDurationMonths float64   `json:"nominalDurationMonths"`
	ProgressPercentage    float64   `json:"progressPercentage"`
	IsCompleted           bool      `json:"isCompleted"`
	ComputedAt            time.Time `json:"computedAt"`
}

// TimelineEntry is one semester in display order.
type TimelineEntry struct {
	SortedIndex    int             `json:"sortedIndex"`
	OriginalIndex  int             `json:"originalIndex"`
	DurationDays   int             `json:"durationDays"`
	DurationMonths int             `json:"durationMonths"`
	Semester       models.Semester `json:"semester"`
}

// TimelineResponse is the ordered semester timeline of an intake course.
type TimelineResponse struct {
	IntakeCourseID string          `json:"intakeCourseId"`
	CourseCode     string          `json:"courseCode"`
	CourseName     string          `json:"courseName"`
	Entries        []TimelineEntry `json:"entries"`
}

// IntakeCourseSummary pairs an intake course with its seat usage.
type IntakeCourseSummary struct {
	models.IntakeCourse
	Capacity models.Capacity `json:"capacity"`
}
