package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/warp/timecard-engine/factory"
	"github.com/warp/timecard-engine/timecard"
)

type calcOptions struct {
	checkIn, checkOut    string
	breakStart, breakEnd string
	rate                 string
	timeType             string
	defaultBreak, grace  int
	format               string
}

func newCalcCmd() *cobra.Command {
	var opts calcOptions
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate hours, break and pay for one day",
		Example: `  timecardctl calc --in 09:00 --out 17:00 --break-start 12:00 --break-end 12:30 --rate 25
  timecardctl calc --in 10:00 --out 14:00 --rate 200 --type daily --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalc(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.checkIn, "in", "", "Check-in time (HH:MM)")
	f.StringVar(&opts.checkOut, "out", "", "Check-out time (HH:MM)")
	f.StringVar(&opts.breakStart, "break-start", "", "Break start time (HH:MM)")
	f.StringVar(&opts.breakEnd, "break-end", "", "Break end time (HH:MM)")
	f.StringVar(&opts.rate, "rate", "0", "Pay rate (per hour, or per day for --type daily)")
	f.StringVar(&opts.timeType, "type", string(timecard.TimeTypeHourly), "Time type: hourly, daily")
	f.IntVar(&opts.defaultBreak, "default-break", 30, "Configured break in minutes")
	f.IntVar(&opts.grace, "grace", 5, "Break grace period in minutes")
	f.StringVar(&opts.format, "format", "text", "Output format: text, json")
	return cmd
}

func runCalc(cmd *cobra.Command, opts calcOptions) error {
	rate, err := decimal.NewFromString(opts.rate)
	if err != nil {
		return fmt.Errorf("invalid --rate %q: %w", opts.rate, err)
	}
	cfg, err := factory.FromJSON(factory.PayConfigJSON{
		PayRate:             rate,
		TimeType:            opts.timeType,
		DefaultBreakMinutes: &opts.defaultBreak,
		GraceMinutes:        &opts.grace,
	}, factory.Defaults{DefaultBreak: 30 * time.Minute, GracePeriod: timecard.DefaultGracePeriod})
	if err != nil {
		return err
	}

	var p timecard.Punches
	for _, v := range []struct {
		flag, raw string
		dst       **timecard.ClockTime
	}{
		{"--in", opts.checkIn, &p.CheckIn},
		{"--out", opts.checkOut, &p.CheckOut},
		{"--break-start", opts.breakStart, &p.BreakStart},
		{"--break-end", opts.breakEnd, &p.BreakEnd},
	} {
		if v.raw == "" {
			continue
		}
		c, err := timecard.ParseClockTime(v.raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", v.flag, err)
		}
		*v.dst = &c
	}

	res := timecard.CalculateDailyEntry(p, cfg)
	out := cmd.OutOrStdout()

	if opts.format == "json" {
		errs := make([]string, 0, len(res.ValidationErrors))
		for _, e := range res.ValidationErrors {
			errs = append(errs, e.Error())
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"hours_worked":      res.HoursWorked.StringFixed(timecard.HoursPlaces),
			"break_duration":    res.BreakDuration.StringFixed(timecard.HoursPlaces),
			"daily_pay":         res.DailyPay.StringFixed(timecard.MoneyPlaces),
			"is_complete":       res.IsComplete,
			"is_valid":          res.IsValid,
			"validation_errors": errs,
		})
	}

	fmt.Fprintf(out, "%-16s%s\n", "Hours worked", res.HoursWorked.StringFixed(timecard.HoursPlaces))
	fmt.Fprintf(out, "%-16s%s\n", "Break", res.BreakDuration.StringFixed(timecard.HoursPlaces))
	fmt.Fprintf(out, "%-16s%s\n", "Daily pay", res.DailyPay.StringFixed(timecard.MoneyPlaces))
	fmt.Fprintf(out, "%-16s%t\n", "Complete", res.IsComplete)
	fmt.Fprintf(out, "%-16s%t\n", "Valid", res.IsValid)
	for _, e := range res.ValidationErrors {
		fmt.Fprintf(out, "  ! %s\n", e)
	}
	return nil
}
