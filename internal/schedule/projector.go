package schedule

import "time"

const (
	// DefaultUpcomingLimit is how many upcoming doses the tracker shows.
	DefaultUpcomingLimit = 4
	// DefaultHorizonDays bounds the projection scan for very long or
	// open-ended protocols. A performance safeguard, not a domain rule.
	DefaultHorizonDays = 84
)

// UpcomingDose is one projected dosing day the patient has not yet logged.
type UpcomingDose struct {
	Day  int       `json:"day"`
	Date time.Time `json:"date"`
}

// NextDosingDates projects the next uncompleted dosing dates from today
// forward, ascending by day. Dates strictly in the past are never upcoming,
// and the scan stops as soon as limit matches are found or horizonDays of the
// plan have been examined. Plans without a start date cannot be projected.
func NextDosingDates(p Plan, today time.Time, limit, horizonDays int) []UpcomingDose {
	if p.StartDate == nil || p.DurationDays < 1 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}

	completed := make(map[int]bool, len(p.Days))
	for _, rec := range p.Days {
		if rec.Completed {
			completed[rec.Day] = true
		}
	}

	last := p.DurationDays
	if horizonDays < last {
		last = horizonDays
	}

	var out []UpcomingDose
	for day := 1; day <= last; day++ {
		date := p.StartDate.AddDate(0, 0, day-1)
		if daysBetween(today, date) < 0 {
			continue
		}
		if IsOffDay(day, p.Frequency, p.StartDate) {
			continue
		}
		if completed[day] {
			continue
		}
		out = append(out, UpcomingDose{Day: day, Date: date})
		if len(out) == limit {
			break
		}
	}
	return out
}
