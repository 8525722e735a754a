package timecard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timecard-engine/timecard"
)

func weekPeriod(t *testing.T) timecard.Period {
	t.Helper()
	p, err := timecard.NewPeriod(march(10), march(12))
	require.NoError(t, err)
	return p
}

func requireKind(t *testing.T, err error, kind timecard.ErrorKind) *timecard.Error {
	t.Helper()
	var tcErr *timecard.Error
	require.ErrorAs(t, err, &tcErr)
	require.Equal(t, kind, tcErr.Kind, "error: %v", err)
	return tcErr
}

func TestNormalizeEdit_BothShapesAgree(t *testing.T) {
	// GIVEN: The same edit expressed day-indexed and flat
	// WHEN: Normalizing both
	// THEN: They produce identical canonical change lists

	nested := map[string]any{
		"day_0": map[string]any{"check_in_time": "09:30", "check_out_time": "17:00"},
		"day_2": map[string]any{"break_start": "12:00"},
	}
	flat := map[string]any{
		"check_in_time_day_0":    "09:30",
		"check_out_time_day_0":   "17:00",
		"break_start_time_day_2": "12:00",
	}

	a, err := timecard.NormalizeEdit(nested, weekPeriod(t))
	require.NoError(t, err)
	b, err := timecard.NormalizeEdit(flat, weekPeriod(t))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	require.Len(t, a, 3)
	assert.Equal(t, "2025-03-10", a[0].WorkDate.String())
	assert.Equal(t, timecard.FieldCheckIn, a[0].Field)
	assert.Equal(t, timecard.FieldCheckOut, a[1].Field)
	assert.Equal(t, "2025-03-12", a[2].WorkDate.String())
	assert.Equal(t, timecard.FieldBreakStart, a[2].Field)
}

func TestNormalizeEdit_ISODateKeyAndClear(t *testing.T) {
	changes, err := timecard.NormalizeEdit(map[string]any{
		"2025-03-11": map[string]any{"check_out_time": "", "check_in_time": nil},
	}, weekPeriod(t))
	require.NoError(t, err)

	require.Len(t, changes, 2)
	for _, c := range changes {
		assert.Equal(t, "2025-03-11", c.WorkDate.String())
		assert.Nil(t, c.NewValue)
	}
}

func TestNormalizeEdit_ShapesShareDayVocabulary(t *testing.T) {
	// GIVEN: Flat keys naming days by ISO date and by index
	// WHEN: Normalizing them next to the nested equivalents
	// THEN: Both shapes resolve to the same days

	flat := map[string]any{
		"check_in_time_day_2025-03-11": "09:00",
		"check_out_time_day_2":         "17:00",
	}
	nested := map[string]any{
		"2025-03-11": map[string]any{"check_in_time": "09:00"},
		"day_2":      map[string]any{"check_out_time": "17:00"},
	}

	a, err := timecard.NormalizeEdit(flat, weekPeriod(t))
	require.NoError(t, err)
	b, err := timecard.NormalizeEdit(nested, weekPeriod(t))
	require.NoError(t, err)

	assert.Equal(t, b, a)
	require.Len(t, a, 2)
	assert.Equal(t, "2025-03-11", a[0].WorkDate.String())
	assert.Equal(t, "2025-03-12", a[1].WorkDate.String())

	_, err = timecard.NormalizeEdit(map[string]any{"check_in_time_day_2025-03-20": "09:00"}, weekPeriod(t))
	requireKind(t, err, timecard.KindOutOfPeriod)
}

func TestNormalizeEdit_Errors(t *testing.T) {
	tests := []struct {
		name    string
		changes map[string]any
		kind    timecard.ErrorKind
		day     string
	}{
		{
			name:    "unknown field",
			changes: map[string]any{"day_0": map[string]any{"lunch": "12:00"}},
			kind:    timecard.KindUnmappedField,
			day:     "2025-03-10",
		},
		{
			name:    "flat key without day",
			changes: map[string]any{"check_in_time": "09:00"},
			kind:    timecard.KindUnmappedField,
		},
		{
			name:    "malformed time",
			changes: map[string]any{"check_in_time_day_1": "9am"},
			kind:    timecard.KindInvalidTime,
			day:     "2025-03-11",
		},
		{
			name:    "non-string time",
			changes: map[string]any{"day_1": map[string]any{"check_in_time": 900}},
			kind:    timecard.KindInvalidTime,
			day:     "2025-03-11",
		},
		{
			name:    "day index past the period",
			changes: map[string]any{"check_in_time_day_3": "09:00"},
			kind:    timecard.KindOutOfPeriod,
		},
		{
			name:    "date outside the period",
			changes: map[string]any{"2025-03-20": map[string]any{"check_in_time": "09:00"}},
			kind:    timecard.KindOutOfPeriod,
			day:     "2025-03-20",
		},
		{
			name: "same field twice with different values",
			changes: map[string]any{
				"day_0":               map[string]any{"check_in_time": "09:00"},
				"check_in_time_day_0": "10:00",
			},
			kind: timecard.KindConflictingChange,
			day:  "2025-03-10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := timecard.NormalizeEdit(tt.changes, weekPeriod(t))
			tcErr := requireKind(t, err, tt.kind)
			if tt.day != "" {
				require.NotNil(t, tcErr.WorkDate)
				assert.Equal(t, tt.day, tcErr.WorkDate.String())
			}
		})
	}
}

func TestNormalizeEdit_RepeatedIdenticalValueIsNotAConflict(t *testing.T) {
	changes, err := timecard.NormalizeEdit(map[string]any{
		"day_0":               map[string]any{"check_in": "09:00"},
		"check_in_time_day_0": "09:00",
	}, weekPeriod(t))
	require.NoError(t, err)
	assert.Len(t, changes, 1)
}

func TestCanonicalField(t *testing.T) {
	f, ok := timecard.CanonicalField("break_end_time")
	assert.True(t, ok)
	assert.Equal(t, timecard.FieldBreakEnd, f)

	_, ok = timecard.CanonicalField("hours_worked")
	assert.False(t, ok)
}
