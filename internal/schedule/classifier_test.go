package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		raw  string
		want Frequency
	}{
		{"", Daily},
		{"   ", Daily},
		{"Daily", Daily},
		{"5 days on, 2 days off", FiveOnTwoOff},
		{"Inject 5 days on then rest", FiveOnTwoOff},
		{"1x weekly", OnceWeekly},
		{"2x weekly (Mon/Thu)", TwiceWeeklyMonThu},
		{"2x weekly (Tue/Fri)", TwiceWeeklyTueFri},
		{"2x weekly", TwiceWeeklyAny},
		{"2x weekly (any days)", TwiceWeeklyAny},
		{"3x weekly (Mon/Wed/Fri)", ThriceWeeklyMWF},
		{"3x weekly", ThriceWeeklyAny},
		{"3x weekly (any days)", ThriceWeeklyAny},
		{"Every other day", EveryOtherDay},
		{"1x monthly", OnceMonthly},
		{"something the front desk typed", Daily},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFrequency(tt.raw))
		})
	}
}

func TestParseFrequencyPriority(t *testing.T) {
	// "5 days on" is a substring match and must win even when the
	// descriptor also mentions another cadence.
	assert.Equal(t, FiveOnTwoOff, ParseFrequency("5 days on (was 3x weekly)"))
}

func TestIsOffDayDaily(t *testing.T) {
	for day := 1; day <= 30; day++ {
		assert.False(t, IsOffDay(day, Daily, nil), "day %d", day)
	}
}

func TestIsOffDayFiveOnTwoOff(t *testing.T) {
	// Exactly 5 on then 2 off, repeating with period 7.
	for cycle := 0; cycle < 4; cycle++ {
		base := cycle * 7
		for pos := 1; pos <= 5; pos++ {
			assert.False(t, IsOffDay(base+pos, FiveOnTwoOff, nil), "day %d", base+pos)
		}
		assert.True(t, IsOffDay(base+6, FiveOnTwoOff, nil), "day %d", base+6)
		assert.True(t, IsOffDay(base+7, FiveOnTwoOff, nil), "day %d", base+7)
	}
}

func TestIsOffDayOnceWeekly(t *testing.T) {
	assert.False(t, IsOffDay(1, OnceWeekly, nil))
	assert.True(t, IsOffDay(2, OnceWeekly, nil))

	// Exactly one on-day per 7-day window.
	for window := 0; window < 5; window++ {
		on := 0
		for pos := 1; pos <= 7; pos++ {
			if !IsOffDay(window*7+pos, OnceWeekly, nil) {
				on++
			}
		}
		assert.Equal(t, 1, on, "window starting day %d", window*7+1)
	}
}

func TestIsOffDayTwiceWeeklyMonThuAnchored(t *testing.T) {
	// 2026-01-04 is a Sunday, so day 2 is Monday and day 5 is Thursday.
	start := datePtr(2026, time.January, 4)
	require.Equal(t, time.Sunday, start.Weekday())

	for day := 1; day <= 7; day++ {
		off := IsOffDay(day, TwiceWeeklyMonThu, start)
		if day == 2 || day == 5 {
			assert.False(t, off, "day %d should be a dosing day", day)
		} else {
			assert.True(t, off, "day %d should be off", day)
		}
	}
}

func TestIsOffDayTwiceWeeklyMonThuFallback(t *testing.T) {
	// Without a start date the cadence approximates cycle positions 1 and 4.
	for day := 1; day <= 7; day++ {
		off := IsOffDay(day, TwiceWeeklyMonThu, nil)
		assert.Equal(t, day != 1 && day != 4, off, "day %d", day)
	}
}

func TestIsOffDayTwiceWeeklyTueFri(t *testing.T) {
	// 2026-01-05 is a Monday; Tuesday is day 2, Friday day 5.
	start := datePtr(2026, time.January, 5)
	require.Equal(t, time.Monday, start.Weekday())

	assert.False(t, IsOffDay(2, TwiceWeeklyTueFri, start))
	assert.False(t, IsOffDay(5, TwiceWeeklyTueFri, start))
	assert.True(t, IsOffDay(1, TwiceWeeklyTueFri, start))
	assert.True(t, IsOffDay(3, TwiceWeeklyTueFri, start))

	// Fallback positions 2 and 5.
	assert.False(t, IsOffDay(2, TwiceWeeklyTueFri, nil))
	assert.False(t, IsOffDay(5, TwiceWeeklyTueFri, nil))
	assert.True(t, IsOffDay(1, TwiceWeeklyTueFri, nil))
}

func TestIsOffDayThriceWeekly(t *testing.T) {
	// 2026-01-05 is a Monday, so days 1/3/5 land on Mon/Wed/Fri.
	start := datePtr(2026, time.January, 5)
	for day := 1; day <= 7; day++ {
		off := IsOffDay(day, ThriceWeeklyMWF, start)
		assert.Equal(t, day != 1 && day != 3 && day != 5, off, "day %d", day)
	}
	// No anchoring attempted for the "any days" variant.
	for day := 1; day <= 7; day++ {
		off := IsOffDay(day, ThriceWeeklyAny, datePtr(2026, time.January, 7))
		assert.Equal(t, day != 1 && day != 3 && day != 5, off, "day %d", day)
	}
}

func TestIsOffDayEveryOtherDay(t *testing.T) {
	for day := 1; day <= 10; day++ {
		assert.Equal(t, day%2 == 0, IsOffDay(day, EveryOtherDay, nil), "day %d", day)
	}
}

func TestIsOffDayOnceMonthly(t *testing.T) {
	assert.False(t, IsOffDay(1, OnceMonthly, nil))
	for day := 2; day <= 30; day++ {
		assert.True(t, IsOffDay(day, OnceMonthly, nil), "day %d", day)
	}
	assert.False(t, IsOffDay(31, OnceMonthly, nil))
	assert.False(t, IsOffDay(61, OnceMonthly, nil))
}

func TestIsOffDayPeriodSeven(t *testing.T) {
	// Cycle-based cadences repeat with period 7 regardless of magnitude.
	cadences := []Frequency{FiveOnTwoOff, OnceWeekly, TwiceWeeklyAny, ThriceWeeklyAny}
	for _, freq := range cadences {
		for day := 1; day <= 14; day++ {
			assert.Equal(t,
				IsOffDay(day, freq, nil),
				IsOffDay(day+7*52, freq, nil),
				"freq %s day %d", freq, day)
		}
	}
}
