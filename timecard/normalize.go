package timecard

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// =============================================================================
// EDIT NORMALIZATION - Two request shapes, one canonical change list
// =============================================================================
//
// Edit requests arrive in one of two shapes:
//
//   day-indexed:  {"day_0": {"check_in_time": "09:30"}, "day_1": {...}}
//   flat:         {"check_in_time_day_0": "09:30"}
//
// Both are reduced here to a sorted []FieldChange. Nothing after this point
// knows which shape the caller used.

// FieldChange is one requested (work_date, field) value.
// A nil NewValue clears the field.
type FieldChange struct {
	WorkDate Date
	Field    Field
	NewValue *ClockTime
}

var fieldAliases = map[string]Field{
	"check_in_time":    FieldCheckIn,
	"break_start_time": FieldBreakStart,
	"break_end_time":   FieldBreakEnd,
	"check_out_time":   FieldCheckOut,
	"check_in":         FieldCheckIn,
	"break_start":      FieldBreakStart,
	"break_end":        FieldBreakEnd,
	"check_out":        FieldCheckOut,
}

// CanonicalField maps a request field name to its canonical Field.
func CanonicalField(name string) (Field, bool) {
	f, ok := fieldAliases[name]
	return f, ok
}

const daySuffix = "_day_"

// NormalizeEdit converts either request shape into canonical changes,
// ordered by work date then field. The same (day, field) given twice with
// different values is a ConflictingChange.
func NormalizeEdit(changes map[string]any, period Period) ([]FieldChange, error) {
	seen := make(map[changeKey]*ClockTime)

	add := func(dayKey, fieldKey string, raw any) error {
		day, err := resolveDay(dayKey, period)
		if err != nil {
			return err
		}
		field, ok := CanonicalField(fieldKey)
		if !ok {
			return (&Error{Kind: KindUnmappedField, Field: Field(fieldKey),
				Message: fmt.Sprintf("%q is not an editable time field", fieldKey)}).at(day)
		}
		val, err := parseValue(raw)
		if err != nil {
			return newError(KindInvalidTime, field, "%v", err).at(day)
		}
		k := changeKey{day: day, field: field}
		if prev, dup := seen[k]; dup && !sameClock(prev, val) {
			return newError(KindConflictingChange, field, "%s given as %s and %s",
				field, clockString(prev), clockString(val)).at(day)
		}
		seen[k] = val
		return nil
	}

	for key, raw := range changes {
		if inner, ok := asFieldMap(raw); ok {
			for fieldKey, v := range inner {
				if err := add(key, fieldKey, v); err != nil {
					return nil, err
				}
			}
			continue
		}

		i := strings.LastIndex(key, daySuffix)
		if i <= 0 {
			return nil, &Error{Kind: KindUnmappedField, Field: Field(key),
				Message: fmt.Sprintf("%q has no day suffix", key)}
		}
		if err := add(key[i+len(daySuffix):], key[:i], raw); err != nil {
			return nil, err
		}
	}

	out := make([]FieldChange, 0, len(seen))
	for k, v := range seen {
		out = append(out, FieldChange{WorkDate: k.day, Field: k.field, NewValue: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].WorkDate.Equal(out[j].WorkDate) {
			return out[i].WorkDate.Before(out[j].WorkDate)
		}
		return fieldOrder(out[i].Field) < fieldOrder(out[j].Field)
	})
	return out, nil
}

type changeKey struct {
	day   Date
	field Field
}

// resolveDay accepts a zero-based index into the period or an ISO date,
// either one optionally prefixed with "day_". Both request shapes resolve
// their day keys here.
func resolveDay(key string, period Period) (Date, error) {
	rest := strings.TrimPrefix(key, "day_")
	if n, err := strconv.Atoi(rest); err == nil {
		d, ok := period.DayAt(n)
		if !ok {
			return Date{}, &Error{Kind: KindOutOfPeriod, Field: Field(key),
				Message: fmt.Sprintf("day %d is outside %s", n, period)}
		}
		return d, nil
	}
	day, err := ParseDate(rest)
	if err != nil {
		return Date{}, &Error{Kind: KindUnmappedField, Field: Field(key),
			Message: fmt.Sprintf("%q is neither a day index nor a date", key)}
	}
	if !period.Contains(day) {
		return Date{}, newError(KindOutOfPeriod, "", "%s is outside %s", day, period).at(day)
	}
	return day, nil
}

func asFieldMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	case map[string]*string:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	}
	return nil, false
}

func parseValue(raw any) (*ClockTime, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case *string:
		if v == nil {
			return nil, nil
		}
		return parseValue(*v)
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		c, err := ParseClockTime(v)
		if err != nil {
			return nil, err
		}
		return &c, nil
	}
	return nil, errors.New("time values must be strings")
}

func fieldOrder(f Field) int {
	for i, tf := range TimeFields {
		if tf == f {
			return i
		}
	}
	return len(TimeFields)
}

func sameClock(a, b *ClockTime) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func clockString(c *ClockTime) string {
	if c == nil {
		return "empty"
	}
	return c.String()
}
