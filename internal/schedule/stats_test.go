package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStatsEveryOtherDay(t *testing.T) {
	// 10-day protocol starting 2026-01-01, every other day: on-days are
	// 1,3,5,7,9. Days 1 and 3 logged => 2/5 = 40%.
	start := datePtr(2026, time.January, 1)
	plan := Plan{
		StartDate:    start,
		DurationDays: 10,
		Frequency:    EveryOtherDay,
		Days: []DayRecord{
			{Day: 1, Date: *start, Completed: true},
			{Day: 3, Date: start.AddDate(0, 0, 2), Completed: true},
			{Day: 5, Date: start.AddDate(0, 0, 4), Completed: false},
		},
	}

	s := ComputeStats(plan, date(2026, time.January, 5))
	assert.Equal(t, 5, s.TotalExpected)
	assert.Equal(t, 2, s.Completed)
	assert.Equal(t, 40, s.Percentage)
	assert.Equal(t, 5, s.CurrentDay)
	assert.Equal(t, 1, s.CurrentWeek)
	assert.Equal(t, 2, s.TotalWeeks)
}

func TestComputeStatsAgreesWithClassifier(t *testing.T) {
	// TotalExpected must always equal direct enumeration via IsOffDay.
	start := datePtr(2026, time.March, 2)
	for _, freq := range []Frequency{Daily, FiveOnTwoOff, OnceWeekly, TwiceWeeklyMonThu, ThriceWeeklyMWF, EveryOtherDay, OnceMonthly} {
		plan := Plan{StartDate: start, DurationDays: 60, Frequency: freq}
		want := 0
		for day := 1; day <= plan.DurationDays; day++ {
			if !IsOffDay(day, freq, start) {
				want++
			}
		}
		s := ComputeStats(plan, *start)
		assert.Equal(t, want, s.TotalExpected, "freq %s", freq)
	}
}

func TestComputeStatsExcludesOffDayCompletions(t *testing.T) {
	// A completion logged on a rest day never counts, even if a stray
	// record exists. The classifier decides what counts, not the log.
	start := datePtr(2026, time.January, 1)
	plan := Plan{
		StartDate:    start,
		DurationDays: 14,
		Frequency:    FiveOnTwoOff,
		Days: []DayRecord{
			{Day: 1, Completed: true},
			{Day: 6, Completed: true}, // rest day
			{Day: 7, Completed: true}, // rest day
		},
	}
	s := ComputeStats(plan, *start)
	assert.Equal(t, 10, s.TotalExpected)
	assert.Equal(t, 1, s.Completed)
}

func TestComputeStatsCurrentDayClamped(t *testing.T) {
	start := datePtr(2026, time.January, 1)
	plan := Plan{StartDate: start, DurationDays: 10, Frequency: Daily}

	// Before the protocol starts, day floors at 1.
	s := ComputeStats(plan, date(2025, time.December, 25))
	assert.Equal(t, 1, s.CurrentDay)

	// Long after it ends, day caps at the duration.
	s = ComputeStats(plan, date(2026, time.June, 1))
	assert.Equal(t, 10, s.CurrentDay)
	assert.Equal(t, 2, s.CurrentWeek)
}

func TestComputeStatsZeroExpected(t *testing.T) {
	// Percentage is 0 when nothing is expected, never NaN or a panic.
	plan := Plan{DurationDays: 0, Frequency: Daily}
	s := ComputeStats(plan, date(2026, time.January, 1))
	assert.Equal(t, 0, s.TotalExpected)
	assert.Equal(t, 0, s.Percentage)
}

func TestComputeStatsNoStartDate(t *testing.T) {
	// Weekday cadences degrade to the cycle approximation without a start.
	plan := Plan{DurationDays: 7, Frequency: TwiceWeeklyMonThu}
	s := ComputeStats(plan, date(2026, time.January, 1))
	assert.Equal(t, 2, s.TotalExpected)
	assert.Equal(t, 1, s.CurrentDay)
}

func TestComputeSessionProgress(t *testing.T) {
	p := ComputeSessionProgress(3, 10)
	assert.Equal(t, 30, p.Percentage)

	p = ComputeSessionProgress(0, 0)
	assert.Equal(t, 0, p.Percentage)

	p = ComputeSessionProgress(2, 3)
	assert.Equal(t, 67, p.Percentage)
}

func TestDaysBetween(t *testing.T) {
	require.Equal(t, 0, daysBetween(date(2026, time.January, 1), date(2026, time.January, 1)))
	require.Equal(t, 4, daysBetween(date(2026, time.January, 1), date(2026, time.January, 5)))
	require.Equal(t, -4, daysBetween(date(2026, time.January, 5), date(2026, time.January, 1)))

	// Time-of-day and zone are discarded before counting.
	a := time.Date(2026, time.March, 7, 23, 30, 0, 0, time.FixedZone("PST", -8*3600))
	b := time.Date(2026, time.March, 9, 0, 15, 0, 0, time.UTC)
	require.Equal(t, 2, daysBetween(a, b))
}
