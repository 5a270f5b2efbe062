package domain

import (
	"encoding/json"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStartOfDay_IndependentOfProcessZone evaluates the same absolute instant
// with different process zones and expects identical results.
func TestStartOfDay_IndependentOfProcessZone(t *testing.T) {
	instant := time.Date(2024, time.January, 9, 18, 30, 0, 0, time.UTC) // 2024-01-10 02:30 CST

	original := time.Local                      //nolint:localtime
	t.Cleanup(func() { time.Local = original }) //nolint:localtime

	var results []time.Time
	for _, name := range []string{"America/Los_Angeles", "Asia/Tokyo", "UTC"} {
		loc, err := time.LoadLocation(name)
		require.NoError(t, err)
		time.Local = loc //nolint:localtime

		results = append(results, StartOfDay(instant, DefaultReferenceLocation))
	}

	want := time.Date(2024, time.January, 10, 0, 0, 0, 0, DefaultReferenceLocation)
	for _, got := range results {
		assert.True(t, got.Equal(want), "got %s want %s", got, want)
	}
}

func TestStartOfDay(t *testing.T) {
	instant := time.Date(2024, time.March, 3, 15, 4, 5, 6, DefaultReferenceLocation)

	got := StartOfDay(instant, DefaultReferenceLocation)

	assert.Equal(t, time.Date(2024, time.March, 3, 0, 0, 0, 0, DefaultReferenceLocation), got)
}

func TestDateOf(t *testing.T) {
	instant := time.Date(2024, time.December, 31, 16, 0, 0, 0, time.UTC)

	assert.Equal(t, NewDate(2025, time.January, 1), DateOf(instant, DefaultReferenceLocation))
	assert.Equal(t, NewDate(2024, time.December, 31), DateOf(instant, time.UTC))
}

func TestDate_DaysSinceAcrossDST(t *testing.T) {
	// 2024-03-10 is 23 hours long in zones that start daylight saving that day.
	before := NewDate(2024, time.March, 9)
	after := NewDate(2024, time.March, 11)

	assert.Equal(t, 2, after.DaysSince(before))
	assert.Equal(t, -2, before.DaysSince(after))
	assert.True(t, before.Before(after))
}

func TestDate_DaysSinceFarApart(t *testing.T) {
	ref := time.Date(2024, time.January, 10, 9, 0, 0, 0, DefaultReferenceLocation)

	first, err := ParseDate("0001-01-01", DefaultReferenceLocation)
	require.NoError(t, err)
	assert.Equal(t, 738894, OverdueDays(first, ref, DefaultReferenceLocation))
	assert.Equal(t, DisplayStatus{Kind: DisplayOverdue, OverdueDays: 738894},
		DisplayStatusOf(Task{Status: TaskStatusNotStarted, DueDate: first}, ref, DefaultReferenceLocation))

	last := NewDate(9999, time.December, 31)
	assert.Equal(t, -2913164, OverdueDays(last, ref, DefaultReferenceLocation))
}

func TestDate_AddDays(t *testing.T) {
	assert.Equal(t, NewDate(2024, time.March, 1), NewDate(2024, time.February, 27).AddDays(3))
	assert.Equal(t, NewDate(2023, time.December, 31), NewDate(2024, time.January, 1).AddDays(-1))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want Date
	}{
		{"2024-05-06", NewDate(2024, time.May, 6)},
		{" 2024-05-06 ", NewDate(2024, time.May, 6)},
		{"2024-05-06T10:00:00+08:00", NewDate(2024, time.May, 6)},
		{"2024-05-05T16:00:00Z", NewDate(2024, time.May, 6)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in, DefaultReferenceLocation)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Due Date `json:"due"`
	}

	b, err := json.Marshal(payload{Due: NewDate(2024, time.July, 4)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2024-07-04"}`, string(b))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2025-02-28"}`), &p))
	assert.Equal(t, NewDate(2025, time.February, 28), p.Due)

	err = json.Unmarshal([]byte(`{"due":"28.02.2025"}`), &p)
	assert.ErrorIs(t, err, ErrInvalidDueDate)
}

func TestDate_ZeroString(t *testing.T) {
	assert.Empty(t, Date{}.String())
	assert.True(t, Date{}.IsZero())
}
