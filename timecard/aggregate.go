package timecard

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PERIOD AGGREGATOR - Header totals as a pure projection of daily entries
// =============================================================================

// RecomputeTotals sums the full, current set of a header's daily entries.
//
// INVARIANT: callers always pass every entry of the header. Totals are
// replaced wholesale, never adjusted by a delta, so a failed or concurrent
// write can't leave them drifting from their daily sources.
func RecomputeTotals(entries []DailyEntry) AggregateTotals {
	totals := AggregateTotals{
		TotalHours:         decimal.Zero,
		TotalBreakDuration: decimal.Zero,
		TotalPay:           decimal.Zero,
	}
	for _, e := range entries {
		totals.TotalHours = totals.TotalHours.Add(e.HoursWorked)
		totals.TotalBreakDuration = totals.TotalBreakDuration.Add(e.BreakDuration)
		totals.TotalPay = totals.TotalPay.Add(e.DailyPay)
	}
	return totals
}

// =============================================================================
// PERIOD SUMMARY - Reporting view (never persisted)
// =============================================================================

// Summary is the multi-day reporting view of a header.
type Summary struct {
	Totals         AggregateTotals
	Classification DayClassification
	DaysInPeriod   int
	DaysWorked     int // days with a complete entry

	// Averages over every day of the period.
	AverageHoursPerDay decimal.Decimal
	AveragePayPerDay   decimal.Decimal

	// Averages over worked days only. Zero when nothing was worked.
	AverageHoursPerWorkedDay decimal.Decimal
	AveragePayPerWorkedDay   decimal.Decimal
}

// Summarize builds the reporting view of a header from its entries.
func Summarize(h Header, entries []DailyEntry) Summary {
	totals := RecomputeTotals(entries)
	s := Summary{
		Totals:                   totals,
		Classification:           h.Period.Classify(),
		DaysInPeriod:             h.Period.Len(),
		AverageHoursPerDay:       decimal.Zero,
		AveragePayPerDay:         decimal.Zero,
		AverageHoursPerWorkedDay: decimal.Zero,
		AveragePayPerWorkedDay:   decimal.Zero,
	}
	for _, e := range entries {
		if e.IsComplete() {
			s.DaysWorked++
		}
	}
	if s.DaysInPeriod > 0 {
		n := decimal.NewFromInt(int64(s.DaysInPeriod))
		s.AverageHoursPerDay = totals.TotalHours.DivRound(n, HoursPlaces)
		s.AveragePayPerDay = totals.TotalPay.DivRound(n, MoneyPlaces)
	}
	if s.DaysWorked > 0 {
		n := decimal.NewFromInt(int64(s.DaysWorked))
		s.AverageHoursPerWorkedDay = totals.TotalHours.DivRound(n, HoursPlaces)
		s.AveragePayPerWorkedDay = totals.TotalPay.DivRound(n, MoneyPlaces)
	}
	return s
}
