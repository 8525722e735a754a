package timecard

// =============================================================================
// PERIOD - The inclusive date range a header covers
// =============================================================================

// Period defines the inclusive [Start, End] range of a timecard header.
//
// Multi-day productions treat the last day as the show day and every earlier
// day as a rehearsal day. That classification is derived here on demand and
// never stored.
type Period struct {
	Start Date
	End   Date
}

// NewPeriod validates and returns a period. End must not precede Start.
func NewPeriod(start, end Date) (Period, error) {
	if end.Before(start) {
		return Period{}, newError(KindInvalidPeriod, "", "%s is before %s", end, start)
	}
	return Period{Start: start, End: end}, nil
}

// Contains returns true if the date is within the period [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns all days in the period.
func (p Period) Days() []Date {
	var days []Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Len returns the number of days in the period.
func (p Period) Len() int {
	return DaysBetween(p.Start, p.End) + 1
}

// DayAt returns the date at zero-based index i, as used by "day_<i>" edit keys.
func (p Period) DayAt(i int) (Date, bool) {
	if i < 0 || i >= p.Len() {
		return Date{}, false
	}
	return p.Start.AddDays(i), true
}

// DayIndex is the inverse of DayAt.
func (p Period) DayIndex(d Date) (int, bool) {
	if !p.Contains(d) {
		return 0, false
	}
	return DaysBetween(p.Start, d), true
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// DAY CLASSIFICATION - Rehearsal vs show days (read-only view)
// =============================================================================

// DayClassification splits a period into its show day and rehearsal days.
type DayClassification struct {
	ShowDay       Date
	RehearsalDays []Date
}

// Classify returns the show/rehearsal split. A single-day period has no rehearsal days.
func (p Period) Classify() DayClassification {
	days := p.Days()
	if len(days) == 0 {
		return DayClassification{ShowDay: p.End}
	}
	return DayClassification{
		ShowDay:       p.End,
		RehearsalDays: days[:len(days)-1],
	}
}

// IsMultiDay reports whether the period spans more than one day.
func (p Period) IsMultiDay() bool {
	return p.End.After(p.Start)
}
