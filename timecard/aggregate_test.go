package timecard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timecard-engine/timecard"
)

func entry(day int, in, out string, hours, brk, pay string) timecard.DailyEntry {
	e := timecard.DailyEntry{
		WorkDate:      march(day),
		HoursWorked:   dec(hours),
		BreakDuration: dec(brk),
		DailyPay:      dec(pay),
	}
	if in != "" {
		e.CheckIn = clk(in)
	}
	if out != "" {
		e.CheckOut = clk(out)
	}
	return e
}

func TestRecomputeTotals_SumsStoredDailyValues(t *testing.T) {
	// GIVEN: Three days already priced to the cent
	// WHEN: Recomputing header totals
	// THEN: Totals are the exact sum of the stored daily values

	entries := []timecard.DailyEntry{
		entry(10, "09:00", "16:20", "7.33", "0", "127.03"),
		entry(11, "09:00", "16:20", "7.33", "0", "127.03"),
		entry(12, "09:00", "16:20", "7.33", "0", "127.03"),
	}

	totals := timecard.RecomputeTotals(entries)

	requireDecimal(t, "21.99", totals.TotalHours)
	requireDecimal(t, "0", totals.TotalBreakDuration)
	requireDecimal(t, "381.09", totals.TotalPay)
}

func TestRecomputeTotals_IsIdempotent(t *testing.T) {
	entries := []timecard.DailyEntry{
		entry(10, "08:00", "17:00", "8.5", "0.5", "170.00"),
		entry(11, "09:00", "", "0", "0", "0"),
	}

	first := timecard.RecomputeTotals(entries)
	second := timecard.RecomputeTotals(entries)

	assert.True(t, first.Equal(second))
	requireDecimal(t, "8.5", first.TotalHours)
	requireDecimal(t, "0.5", first.TotalBreakDuration)
	requireDecimal(t, "170", first.TotalPay)
}

func TestRecomputeTotals_NoEntriesIsZero(t *testing.T) {
	totals := timecard.RecomputeTotals(nil)

	requireDecimal(t, "0", totals.TotalHours)
	requireDecimal(t, "0", totals.TotalBreakDuration)
	requireDecimal(t, "0", totals.TotalPay)
}

func TestSummarize_MultiDayPeriod(t *testing.T) {
	// GIVEN: A three-day period with two worked days and one partial day
	// WHEN: Summarizing
	// THEN: The last day is the show day, averages use period and worked days

	period, err := timecard.NewPeriod(march(10), march(12))
	require.NoError(t, err)
	h := timecard.Header{Period: period}
	entries := []timecard.DailyEntry{
		entry(10, "09:00", "17:00", "8", "0", "160.00"),
		entry(11, "09:00", "13:00", "4", "0", "80.00"),
		entry(12, "09:00", "", "0", "0", "0"),
	}

	s := timecard.Summarize(h, entries)

	assert.Equal(t, 3, s.DaysInPeriod)
	assert.Equal(t, 2, s.DaysWorked)
	assert.Equal(t, "2025-03-12", s.Classification.ShowDay.String())
	require.Len(t, s.Classification.RehearsalDays, 2)
	assert.Equal(t, "2025-03-10", s.Classification.RehearsalDays[0].String())
	requireDecimal(t, "12", s.Totals.TotalHours)
	requireDecimal(t, "4", s.AverageHoursPerDay)
	requireDecimal(t, "80", s.AveragePayPerDay)
	requireDecimal(t, "6", s.AverageHoursPerWorkedDay)
	requireDecimal(t, "120", s.AveragePayPerWorkedDay)
}

func TestSummarize_SingleDayHasNoRehearsals(t *testing.T) {
	period, err := timecard.NewPeriod(march(10), march(10))
	require.NoError(t, err)

	s := timecard.Summarize(timecard.Header{Period: period}, nil)

	assert.Equal(t, 1, s.DaysInPeriod)
	assert.Zero(t, s.DaysWorked)
	assert.Empty(t, s.Classification.RehearsalDays)
	requireDecimal(t, "0", s.AverageHoursPerWorkedDay)
}

func TestNewPeriod_EndBeforeStart(t *testing.T) {
	_, err := timecard.NewPeriod(march(12), march(10))
	assert.ErrorIs(t, err, timecard.ErrInvalidPeriod)
}
