package schedule

import "time"

// cyclePosition returns a day's 1-based position within a repeating 7-day
// pattern, used when no real calendar weekday anchoring is available.
func cyclePosition(dayNumber int) int {
	return ((dayNumber - 1) % 7) + 1
}

// weekdayOf computes the calendar weekday of protocol day dayNumber given the
// protocol's start date. Dates are civil (no time component); dayNumber is
// 1-based, so day 1 falls on the start date itself.
func weekdayOf(start time.Time, dayNumber int) time.Weekday {
	return start.AddDate(0, 0, dayNumber-1).Weekday()
}

// IsOffDay reports whether protocol day dayNumber is a rest day for the given
// cadence. dayNumber must be >= 1. start anchors weekday-specific cadences to
// real calendar weekdays; when nil, those cadences approximate with a 7-day
// cycle position instead. The two branches are intentionally different
// algorithms for the same nominal frequency, so they stay separate here.
func IsOffDay(dayNumber int, freq Frequency, start *time.Time) bool {
	switch freq {
	case FiveOnTwoOff:
		pos := cyclePosition(dayNumber)
		return pos == 6 || pos == 7
	case OnceWeekly:
		return cyclePosition(dayNumber) != 1
	case TwiceWeeklyMonThu:
		if start != nil {
			wd := weekdayOf(*start, dayNumber)
			return wd != time.Monday && wd != time.Thursday
		}
		pos := cyclePosition(dayNumber)
		return pos != 1 && pos != 4
	case TwiceWeeklyTueFri:
		if start != nil {
			wd := weekdayOf(*start, dayNumber)
			return wd != time.Tuesday && wd != time.Friday
		}
		pos := cyclePosition(dayNumber)
		return pos != 2 && pos != 5
	case TwiceWeeklyAny:
		pos := cyclePosition(dayNumber)
		return pos != 1 && pos != 4
	case ThriceWeeklyMWF:
		if start != nil {
			wd := weekdayOf(*start, dayNumber)
			return wd != time.Monday && wd != time.Wednesday && wd != time.Friday
		}
		pos := cyclePosition(dayNumber)
		return pos != 1 && pos != 3 && pos != 5
	case ThriceWeeklyAny:
		pos := cyclePosition(dayNumber)
		return pos != 1 && pos != 3 && pos != 5
	case EveryOtherDay:
		return dayNumber%2 == 0
	case OnceMonthly:
		return (dayNumber-1)%30 != 0
	default:
		return false
	}
}
