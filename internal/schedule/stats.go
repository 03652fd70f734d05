package schedule

import (
	"math"
	"time"
)

// DayRecord is one tracked day of a protocol. Completed is toggled by the
// patient through the tracker; the aggregator only reads it.
type DayRecord struct {
	Day       int
	Date      time.Time
	Completed bool
}

// Plan is the subset of a protocol the schedule calculations need.
// DurationDays of zero means the protocol is session-based and the adherence
// aggregator does not apply; callers use SessionProgress instead.
type Plan struct {
	StartDate    *time.Time
	DurationDays int
	Frequency    Frequency
	Days         []DayRecord
}

// Stats summarizes adherence for a day-based protocol.
type Stats struct {
	Completed     int `json:"completed"`
	TotalExpected int `json:"total_expected"`
	CurrentDay    int `json:"current_day"`
	CurrentWeek   int `json:"current_week"`
	TotalWeeks    int `json:"total_weeks"`
	Percentage    int `json:"percentage"`
}

// ComputeStats aggregates adherence for a day-based plan as of today.
// Expected and completed counts include dosing days only: a completion logged
// on a rest day is excluded from both sides, since the classifier is the
// single source of truth for what counts. CurrentDay clamps to
// [1, DurationDays] so a finished protocol reports its last valid day.
func ComputeStats(p Plan, today time.Time) Stats {
	var s Stats
	if p.DurationDays < 1 {
		return s
	}

	for day := 1; day <= p.DurationDays; day++ {
		if !IsOffDay(day, p.Frequency, p.StartDate) {
			s.TotalExpected++
		}
	}
	for _, rec := range p.Days {
		if rec.Completed && rec.Day >= 1 && !IsOffDay(rec.Day, p.Frequency, p.StartDate) {
			s.Completed++
		}
	}

	s.CurrentDay = 1
	if p.StartDate != nil {
		s.CurrentDay = daysBetween(*p.StartDate, today) + 1
		if s.CurrentDay < 1 {
			s.CurrentDay = 1
		}
		if s.CurrentDay > p.DurationDays {
			s.CurrentDay = p.DurationDays
		}
	}
	s.CurrentWeek = (s.CurrentDay + 6) / 7
	s.TotalWeeks = (p.DurationDays + 6) / 7

	if s.TotalExpected > 0 {
		s.Percentage = int(math.Round(float64(s.Completed) / float64(s.TotalExpected) * 100))
	}
	return s
}

// SessionProgress is the simpler display calculation for session-based
// protocols (IV, HBOT, in-clinic injections) where no dosing calendar exists.
type SessionProgress struct {
	Completed     int `json:"completed"`
	TotalSessions int `json:"total_sessions"`
	Percentage    int `json:"percentage"`
}

// ComputeSessionProgress counts completed sessions against the purchased
// total. Totals of zero yield a zero percentage, never a division error.
func ComputeSessionProgress(completed, totalSessions int) SessionProgress {
	p := SessionProgress{Completed: completed, TotalSessions: totalSessions}
	if totalSessions > 0 {
		p.Percentage = int(math.Round(float64(completed) / float64(totalSessions) * 100))
	}
	return p
}

// daysBetween returns whole civil days from a to b, negative when b precedes
// a. Both are treated date-only; time-of-day and zone are discarded first so
// a DST transition can never skew the count.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}
