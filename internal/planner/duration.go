package planner

import "time"

// Semester is the planner's view of a semester: an identity plus a date range.
// A zero StartDate or EndDate means the date is missing.
type Semester struct {
	ID        string    `json:"id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// HasRange reports whether both dates are present.
func (s Semester) HasRange() bool {
	return !s.StartDate.IsZero() && !s.EndDate.IsZero()
}

// DurationResult is the elapsed time of a date range in days and approximate months.
type DurationResult struct {
	Days   int `json:"days"`
	Months int `json:"months"`
}

// ComputeDuration returns the elapsed days between start and end and the month count
// using 30-day months. Months are approximate on purpose; they feed progress bars and
// must not be used for calendar boundaries.
func ComputeDuration(start, end time.Time) DurationResult {
	if start.IsZero() || end.IsZero() {
		return DurationResult{}
	}
	days := elapsedDays(start, end)
	if days < 0 {
		days = 0
	}
	return DurationResult{Days: days, Months: roundHalfUp(float64(days) / 30)}
}

// Overlaps reports whether two complete date ranges share any instant. Ranges that
// only touch at an endpoint do not overlap.
func Overlaps(a, b Semester) bool {
	if !a.HasRange() || !b.HasRange() {
		return false
	}
	return a.StartDate.Before(b.EndDate) && b.StartDate.Before(a.EndDate)
}
