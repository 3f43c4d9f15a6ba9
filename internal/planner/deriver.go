package planner

import "time"

// DurationUnit selects how a semester form expresses its duration.
type DurationUnit string

const (
	UnitMonths DurationUnit = "months"
	UnitDays   DurationUnit = "days"
)

// Valid reports whether u is a supported unit.
func (u DurationUnit) Valid() bool {
	return u == UnitMonths || u == UnitDays
}

// DeriveEndDate adds the duration to start using calendar arithmetic. Adding months
// clamps the day to the end of the target month, so Jan 31 plus one month is the last
// day of February rather than early March.
func DeriveEndDate(start time.Time, units int, unit DurationUnit) time.Time {
	if start.IsZero() {
		return time.Time{}
	}
	switch unit {
	case UnitMonths:
		return addMonthsClamped(start, units)
	case UnitDays:
		return start.AddDate(0, 0, units)
	default:
		return time.Time{}
	}
}

// DeriveDurationMonths counts whole calendar months from start to end, never less than
// one once both dates are known. Missing dates yield 0 so the form field stays blank.
func DeriveDurationMonths(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 1 {
		return 1
	}
	return months
}

// DeriveDurationDays counts elapsed days rounded up, never less than one once both
// dates are known. Missing dates yield 0.
func DeriveDurationDays(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	days := elapsedDays(start, end)
	if days < 1 {
		return 1
	}
	return days
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := daysIn(firstOfTarget.Year(), firstOfTarget.Month(), t.Location())
	if d > last {
		d = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
