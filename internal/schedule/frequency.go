// Package schedule implements the dosing-schedule calculations behind the
// patient protocol tracker: classifying protocol days as dosing vs rest days,
// aggregating adherence statistics, and projecting upcoming dosing dates.
// All functions are pure and take "today" as an explicit parameter.
package schedule

import "strings"

// Frequency is a dosing cadence parsed from the free-text descriptor stored
// on a protocol. Parsing happens once at the data boundary; everything else
// switches over the variant so the same string is never re-interpreted twice.
type Frequency int

const (
	// Daily is also the fallback for empty or unrecognized descriptors:
	// every day is a dosing day.
	Daily Frequency = iota
	FiveOnTwoOff
	OnceWeekly
	TwiceWeeklyMonThu
	TwiceWeeklyTueFri
	TwiceWeeklyAny
	ThriceWeeklyMWF
	ThriceWeeklyAny
	EveryOtherDay
	OnceMonthly
)

func (f Frequency) String() string {
	switch f {
	case FiveOnTwoOff:
		return "5 days on / 2 off"
	case OnceWeekly:
		return "1x weekly"
	case TwiceWeeklyMonThu:
		return "2x weekly (Mon/Thu)"
	case TwiceWeeklyTueFri:
		return "2x weekly (Tue/Fri)"
	case TwiceWeeklyAny:
		return "2x weekly"
	case ThriceWeeklyMWF:
		return "3x weekly (Mon/Wed/Fri)"
	case ThriceWeeklyAny:
		return "3x weekly"
	case EveryOtherDay:
		return "every other day"
	case OnceMonthly:
		return "1x monthly"
	default:
		return "daily"
	}
}

// ParseFrequency maps a raw descriptor string to its Frequency variant.
// Matching is ordered: "5 days on" is a substring check and wins over any
// other pattern the descriptor might also contain. Unrecognized descriptors
// fall back to Daily rather than erroring, so a typo'd cadence shows every
// day as a dosing day instead of breaking the tracker.
func ParseFrequency(raw string) Frequency {
	f := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case f == "":
		return Daily
	case strings.Contains(f, "5 days on"):
		return FiveOnTwoOff
	case f == "1x weekly":
		return OnceWeekly
	case f == "2x weekly (mon/thu)":
		return TwiceWeeklyMonThu
	case f == "2x weekly (tue/fri)":
		return TwiceWeeklyTueFri
	case f == "2x weekly" || strings.Contains(f, "2x weekly (any"):
		return TwiceWeeklyAny
	case f == "3x weekly (mon/wed/fri)":
		return ThriceWeeklyMWF
	case f == "3x weekly" || strings.Contains(f, "3x weekly (any"):
		return ThriceWeeklyAny
	case f == "every other day":
		return EveryOtherDay
	case f == "1x monthly":
		return OnceMonthly
	default:
		return Daily
	}
}
