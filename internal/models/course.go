package models

import (
	"math"
	"time"
)

// Course is a programme of study with a nominal length.
type Course struct {
	ID                    string    `db:"id" json:"id"`
	TenantID              string    `db:"tenant_id" json:"tenant_id"`
	Code                  string    `db:"code" json:"code"`
	Name                  string    `db:"name" json:"name"`
	NominalDurationMonths float64   `db:"nominal_duration_months" json:"nominal_duration_months"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// Intake is a recurring admissions cohort period such as "January 2025 Intake".
type Intake struct {
	ID        string    `db:"id" json:"id"`
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	Name      string    `db:"name" json:"name"`
	Month     int       `db:"month" json:"month"`
	Year      int       `db:"year" json:"year"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IntakeCourse assigns a course to an intake with capacity and fee parameters.
type IntakeCourse struct {
	ID              string    `db:"id" json:"id"`
	TenantID        string    `db:"tenant_id" json:"tenant_id"`
	IntakeID        string    `db:"intake_id" json:"intake_id"`
	CourseID        string    `db:"course_id" json:"course_id"`
	MaxStudents     int       `db:"max_students" json:"max_students"`
	CurrentEnrolled int       `db:"current_enrolled" json:"current_enrolled"`
	FeeAmount       float64   `db:"fee_amount" json:"fee_amount"`
	DurationMonths  int       `db:"duration_months" json:"duration_months"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Capacity summarises seat usage for an intake course.
type Capacity struct {
	IntakeCourseID string  `json:"intake_course_id"`
	MaxStudents    int     `json:"max_students"`
	Enrolled       int     `json:"enrolled"`
	Available      int     `json:"available"`
	UtilizationPct float64 `json:"utilization_pct"`
	IsFull         bool    `json:"is_full"`
}

// Capacity derives the seat summary. A MaxStudents of zero means uncapped.
func (ic IntakeCourse) Capacity() Capacity {
	c := Capacity{
		IntakeCourseID: ic.ID,
		MaxStudents:    ic.MaxStudents,
		Enrolled:       ic.CurrentEnrolled,
	}
	if ic.MaxStudents <= 0 {
		return c
	}
	c.Available = ic.MaxStudents - ic.CurrentEnrolled
	if c.Available < 0 {
		c.Available = 0
	}
	c.UtilizationPct = math.Min(float64(ic.CurrentEnrolled)/float64(ic.MaxStudents)*100, 100)
	c.IsFull = c.Available == 0
	return c
}
