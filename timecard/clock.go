package timecard

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CLOCK TIME - A time-of-day punch value
// =============================================================================

// ClockTime is a time of day, stored as seconds since midnight.
// Punches are always same-day values; overnight shifts are not modelled.
type ClockTime int

// NewClockTime builds a ClockTime from hour and minute.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*3600 + minute*60)
}

// ParseClockTime accepts H:MM, HH:MM and HH:MM:SS.
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	limits := []int{23, 59, 59}
	var vals [3]int
	for i, p := range parts {
		if p == "" || len(p) > 2 || (i > 0 && len(p) != 2) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		vals[i] = n
	}
	return ClockTime(vals[0]*3600 + vals[1]*60 + vals[2]), nil
}

// MustParseClockTime is ParseClockTime for literals known to be valid.
func MustParseClockTime(s string) ClockTime {
	c, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns HH:MM, or HH:MM:SS when seconds are set.
func (c ClockTime) String() string {
	h, m, s := int(c)/3600, (int(c)%3600)/60, int(c)%60
	if s != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// Ptr returns a pointer to c, for optional punch fields.
func (c ClockTime) Ptr() *ClockTime { return &c }

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// FormatClock stringifies an optional clock value; nil stays nil.
func FormatClock(c *ClockTime) *string {
	if c == nil {
		return nil
	}
	s := c.String()
	return &s
}

// =============================================================================
// DURATION PRIMITIVES
// =============================================================================

// DefaultGracePeriod is the tolerance applied to break punches.
const DefaultGracePeriod = 5 * time.Minute

// HoursPlaces is the number of decimal places kept for hour values.
const HoursPlaces = 2

// Duration returns end - start. Both are on the same calendar day, so an
// end before start is an InvalidSequence rather than an overnight span.
func Duration(start, end ClockTime) (time.Duration, error) {
	if end < start {
		return 0, newError(KindInvalidSequence, "", "%s is before %s", end, start)
	}
	return time.Duration(end-start) * time.Second, nil
}

// DurationHours is Duration expressed in decimal hours.
func DurationHours(start, end ClockTime) (decimal.Decimal, error) {
	d, err := Duration(start, end)
	if err != nil {
		return decimal.Zero, err
	}
	return Hours(d), nil
}

// Hours converts a duration to decimal hours rounded to HoursPlaces.
func Hours(d time.Duration) decimal.Decimal {
	secs := decimal.NewFromInt(int64(d / time.Second))
	return secs.DivRound(decimal.NewFromInt(3600), HoursPlaces)
}

// ApplyBreakGracePeriod snaps a measured break to the configured default when
// the two differ by at most grace; otherwise the measured value is kept.
func ApplyBreakGracePeriod(actual, configured, grace time.Duration) time.Duration {
	diff := actual - configured
	if diff < 0 {
		diff = -diff
	}
	if diff <= grace {
		return configured
	}
	return actual
}
