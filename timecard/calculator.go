package timecard

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places kept for pay values.
const MoneyPlaces = 2

// Punches are the raw time values of one day. Any of them may be nil.
type Punches struct {
	CheckIn    *ClockTime
	CheckOut   *ClockTime
	BreakStart *ClockTime
	BreakEnd   *ClockTime
}

// DailyCalculationResult is the output of CalculateDailyEntry.
//
// Validation failures are returned in ValidationErrors rather than as an
// error so batch callers decide whether to abort. ApplyEdit always aborts.
type DailyCalculationResult struct {
	HoursWorked      decimal.Decimal
	BreakDuration    decimal.Decimal
	DailyPay         decimal.Decimal
	IsComplete       bool
	IsValid          bool
	ValidationErrors []*Error
}

// CalculateDailyEntry derives hours, break and pay for one day.
//
// A day missing check-in or check-out is incomplete: zero hours, zero break
// and zero pay, whatever the time type.
func CalculateDailyEntry(p Punches, cfg PayConfig) DailyCalculationResult {
	res := DailyCalculationResult{
		HoursWorked:   decimal.Zero,
		BreakDuration: decimal.Zero,
		DailyPay:      decimal.Zero,
		IsValid:       true,
	}
	if p.CheckIn == nil || p.CheckOut == nil {
		return res
	}
	res.IsComplete = true

	gross, err := Duration(*p.CheckIn, *p.CheckOut)
	if err != nil {
		return res.invalid(newError(KindInvalidSequence, FieldCheckOut,
			"check-out %s is before check-in %s", *p.CheckOut, *p.CheckIn))
	}

	var brk time.Duration
	if p.BreakStart != nil && p.BreakEnd != nil {
		actual, err := Duration(*p.BreakStart, *p.BreakEnd)
		if err != nil {
			return res.invalid(newError(KindNegativeBreak, FieldBreakEnd,
				"break end %s is before break start %s", *p.BreakEnd, *p.BreakStart))
		}
		if *p.BreakStart < *p.CheckIn {
			return res.invalid(newError(KindInvalidSequence, FieldBreakStart,
				"break starts at %s, before check-in %s", *p.BreakStart, *p.CheckIn))
		}
		if *p.BreakEnd > *p.CheckOut {
			return res.invalid(newError(KindInvalidSequence, FieldBreakEnd,
				"break ends at %s, after check-out %s", *p.BreakEnd, *p.CheckOut))
		}
		grace := cfg.GracePeriod
		if grace == 0 {
			grace = DefaultGracePeriod
		}
		brk = ApplyBreakGracePeriod(actual, cfg.DefaultBreak, grace)
	}

	worked := gross - brk
	if worked < 0 {
		return res.invalid(newError(KindNegativeHours, FieldBreakEnd,
			"break of %s exceeds shift of %s", brk, gross))
	}

	res.HoursWorked = Hours(worked)
	res.BreakDuration = Hours(brk)
	res.DailyPay = dailyPay(res.HoursWorked, cfg)
	return res
}

func (r DailyCalculationResult) invalid(err *Error) DailyCalculationResult {
	r.IsValid = false
	r.ValidationErrors = append(r.ValidationErrors, err)
	return r
}

// dailyPay prices a complete day. Hourly pay is the recorded hours times the
// rate, rounded to cents, so a stored row always reproduces its own pay.
// Daily pay is the flat rate.
func dailyPay(hours decimal.Decimal, cfg PayConfig) decimal.Decimal {
	if cfg.TimeType == TimeTypeDaily {
		return cfg.PayRate.Round(MoneyPlaces)
	}
	return hours.Mul(cfg.PayRate).Round(MoneyPlaces)
}

// Recalculate applies CalculateDailyEntry to e and stores the derived values.
// The first validation error is returned attributed to the entry's work date.
func Recalculate(e *DailyEntry, cfg PayConfig) error {
	res := CalculateDailyEntry(e.Punches(), cfg)
	if !res.IsValid {
		return res.ValidationErrors[0].at(e.WorkDate)
	}
	e.HoursWorked = res.HoursWorked
	e.BreakDuration = res.BreakDuration
	e.DailyPay = res.DailyPay
	return nil
}
