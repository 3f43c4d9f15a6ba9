package planner

// ProgressResult describes how much of a course's nominal duration its semesters cover.
type ProgressResult struct {
	TotalDurationDays     int     `json:"total_duration_days"`
	TotalDurationMonths   int     `json:"total_duration_months"`
	NominalDurationMonths float64 `json:"nominal_duration_months"`
	ProgressPercentage    float64 `json:"progress_percentage"`
	IsCompleted           bool    `json:"is_completed"`
}

// ComputeProgress sums the durations of every semester that has both dates and compares
// the total against the course's nominal duration. The percentage is clamped to 100 even
// when the semesters overrun the course.
func ComputeProgress(semesters []Semester, nominalDurationMonths float64) ProgressResult {
	totalDays := 0
	for _, s := range semesters {
		if !s.HasRange() {
			continue
		}
		totalDays += ComputeDuration(s.StartDate, s.EndDate).Days
	}

	totalMonths := roundHalfUp(float64(totalDays) / 30)

	var pct float64
	if nominalDurationMonths > 0 {
		pct = float64(totalMonths) / nominalDurationMonths * 100
		if pct > 100 {
			pct = 100
		}
	}

	return ProgressResult{
		TotalDurationDays:     totalDays,
		TotalDurationMonths:   totalMonths,
		NominalDurationMonths: nominalDurationMonths,
		ProgressPercentage:    pct,
		IsCompleted:           pct == 100,
	}
}
