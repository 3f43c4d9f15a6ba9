package models

import (
	"time"

	"github.com/noah-isme/campushub-api/internal/planner"
)

// SemesterStatus tracks where a semester is in its academic lifecycle.
type SemesterStatus string

const (
	SemesterStatusUpcoming         SemesterStatus = "upcoming"
	SemesterStatusRegistrationOpen SemesterStatus = "registration_open"
	SemesterStatusInProgress       SemesterStatus = "in_progress"
	SemesterStatusExamPeriod       SemesterStatus = "exam_period"
	SemesterStatusCompleted        SemesterStatus = "completed"
)

// Valid reports whether the status is one of the known lifecycle phases.
func (s SemesterStatus) Valid() bool {
	switch s {
	case SemesterStatusUpcoming, SemesterStatusRegistrationOpen, SemesterStatusInProgress,
		SemesterStatusExamPeriod, SemesterStatusCompleted:
		return true
	}
	return false
}

// Semester is a dated academic term belonging to an intake course.
type Semester struct {
	ID             string         `db:"id" json:"id"`
	TenantID       string         `db:"tenant_id" json:"tenant_id"`
	IntakeCourseID string         `db:"intake_course_id" json:"intake_course_id"`
	SemesterNumber int            `db:"semester_number" json:"semester_number"`
	Year           int            `db:"year" json:"year"`
	StartDate      time.Time      `db:"start_date" json:"start_date"`
	EndDate        time.Time      `db:"end_date" json:"end_date"`
	Status         SemesterStatus `db:"status" json:"status"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// PlannerView strips the record down to what the planner computations need.
func (s Semester) PlannerView() planner.Semester {
	return planner.Semester{ID: s.ID, StartDate: s.StartDate, EndDate: s.EndDate}
}

// SemesterKey orders semesters on a timeline by their start date.
func SemesterKey(s Semester) (string, time.Time) {
	return s.ID, s.StartDate
}

// PlannerViews converts a slice of semesters in order.
func PlannerViews(semesters []Semester) []planner.Semester {
	views := make([]planner.Semester, len(semesters))
	for i, s := range semesters {
		views[i] = s.PlannerView()
	}
	return views
}

// SemesterFilter defines filters supported by semester list endpoints.
type SemesterFilter struct {
	TenantID       string
	IntakeCourseID string
	Status         SemesterStatus
	Year           int
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
