package dto

import (
	"github.com/noah-isme/campushub-api/internal/models"
	"github.com/noah-isme/campushub-api/internal/planner"
)

// CreateSemesterRequest captures the semester create form. Either EndDate or
// Duration with DurationUnit must be supplied; dates accept RFC3339 or YYYY-MM-DD.
type CreateSemesterRequest struct {
	IntakeCourseID models.Ref            `json:"intakeCourseId" validate:"required"`
	SemesterNumber int                   `json:"semesterNumber" validate:"required,min=1"`
	Year           int                   `json:"year" validate:"omitempty,min=1"`
	StartDate      string                `json:"startDate" validate:"required"`
	EndDate        string                `json:"endDate"`
	Duration       int                   `json:"duration" validate:"omitempty,min=1"`
	DurationUnit   planner.DurationUnit  `json:"durationUnit" validate:"omitempty,oneof=months days"`
	Status         models.SemesterStatus `json:"status" validate:"omitempty,oneof=upcoming registration_open in_progress exam_period completed"`
}

// UpdateSemesterRequest replaces the mutable fields of a semester. The owning
// intake course cannot change.
type UpdateSemesterRequest struct {
	SemesterNumber int                   `json:"semesterNumber" validate:"required,min=1"`
	Year           int                   `json:"year" validate:"omitempty,min=1"`
	StartDate      string                `json:"startDate" validate:"required"`
	EndDate        string                `json:"endDate"`
	Duration       int                   `json:"duration" validate:"omitempty,min=1"`
	DurationUnit   planner.DurationUnit  `json:"durationUnit" validate:"omitempty,oneof=months days"`
	Status         models.SemesterStatus `json:"status" validate:"omitempty,oneof=upcoming registration_open in_progress exam_period completed"`
}
