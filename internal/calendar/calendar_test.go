package calendar

import (
	"math"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/diary/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func TestStartOfMonth(t *testing.T) {
	cal := New(time.UTC)

	samples := []time.Time{
		time.Date(2024, time.January, 15, 13, 45, 10, 99, time.UTC),
		time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC),
		time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1, time.January, 31, 12, 0, 0, 0, time.UTC),
	}
	for _, d := range samples {
		got := cal.StartOfMonth(d)
		assert.Equal(t, 1, got.Day(), "day of %s", d)
		assert.Equal(t, d.Month(), got.Month())
		assert.Equal(t, d.Year(), got.Year())
		h, m, s := got.Clock()
		assert.Zero(t, h+m+s+got.Nanosecond(), "time of day for %s", d)
	}
}

func TestStartOfMonth_UsesCalendarLocation(t *testing.T) {
	cal := New(newYork(t))

	// 2024-04-01 02:00 UTC is still March 31 in New York.
	got := cal.StartOfMonth(time.Date(2024, time.April, 1, 2, 0, 0, 0, time.UTC))
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, cal.Location(), got.Location())
}

func TestDaysInMonth(t *testing.T) {
	t.Run("lengths", func(t *testing.T) {
		cal := New(time.UTC)
		assert.Len(t, cal.DaysInMonth(date(2024, time.February, 1)), 29)
		assert.Len(t, cal.DaysInMonth(date(2023, time.February, 1)), 28)
		assert.Len(t, cal.DaysInMonth(date(2024, time.April, 1)), 30)
		assert.Len(t, cal.DaysInMonth(date(2024, time.December, 1)), 31)
	})

	t.Run("does not include the first day of the next month", func(t *testing.T) {
		cal := New(time.UTC)
		days := cal.DaysInMonth(date(2024, time.March, 1))
		require.NotEmpty(t, days)
		assert.Equal(t, date(2024, time.March, 31), days[len(days)-1])
	})

	t.Run("strictly increasing by one day across DST", func(t *testing.T) {
		loc := newYork(t)
		cal := New(loc)
		for _, m := range []time.Month{time.March, time.November} {
			ref := time.Date(2024, m, 17, 9, 30, 0, 0, loc)
			start := cal.StartOfMonth(ref)
			days := cal.DaysInMonth(start)
			require.NotEmpty(t, days)
			assert.Equal(t, start, days[0])
			for i, d := range days {
				assert.False(t, d.Before(start), "day %d before month start", i)
				assert.True(t, cal.IsSameMonth(d, start))
				if i > 0 {
					prev := days[i-1]
					assert.True(t, d.After(prev))
					assert.Equal(t, cal.AddDays(prev, 1), d)
					assert.Equal(t, prev.Day()+1, d.Day())
				}
			}
		}
	})

	t.Run("restartable", func(t *testing.T) {
		cal := New(time.UTC)
		ref := date(2024, time.June, 1)
		assert.Equal(t, cal.DaysInMonth(ref), cal.DaysInMonth(ref))
	})
}

func TestDays_StopsWhenConsumerStops(t *testing.T) {
	cal := New(time.UTC)
	var got []time.Time
	for d := range cal.Days(date(2024, time.January, 1), date(2024, time.December, 31)) {
		got = append(got, d)
		if len(got) == 3 {
			break
		}
	}
	assert.Equal(t, []time.Time{
		date(2024, time.January, 1),
		date(2024, time.January, 2),
		date(2024, time.January, 3),
	}, got)
}

func TestDays_EmptyWhenReversed(t *testing.T) {
	cal := New(time.UTC)
	n := 0
	for range cal.Days(date(2024, time.May, 2), date(2024, time.May, 1)) {
		n++
	}
	assert.Zero(t, n)
}

func TestIsSameDay(t *testing.T) {
	cal := New(time.UTC)
	morning := time.Date(2024, time.March, 5, 0, 0, 1, 0, time.UTC)
	night := time.Date(2024, time.March, 5, 23, 59, 59, 0, time.UTC)
	next := time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC)

	assert.True(t, cal.IsSameDay(morning, morning))
	assert.True(t, cal.IsSameDay(morning, night))
	assert.True(t, cal.IsSameDay(night, morning))
	assert.False(t, cal.IsSameDay(night, next))
	assert.False(t, cal.IsSameDay(next, night))
	assert.False(t, cal.IsSameDay(date(2023, time.March, 5), date(2024, time.March, 5)))
}

func TestIsSameDay_ComparesInCalendarLocation(t *testing.T) {
	cal := New(newYork(t))
	// Both instants are March 5 in New York but different UTC days.
	a := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)
	b := time.Date(2024, time.March, 6, 3, 0, 0, 0, time.UTC)
	assert.True(t, cal.IsSameDay(a, b))
}

func TestIsSameMonth(t *testing.T) {
	cal := New(time.UTC)
	assert.True(t, cal.IsSameMonth(date(2024, time.March, 1), date(2024, time.March, 31)))
	assert.False(t, cal.IsSameMonth(date(2024, time.March, 31), date(2024, time.April, 1)))
	assert.False(t, cal.IsSameMonth(date(2023, time.March, 1), date(2024, time.March, 1)))
}

func entryOn(d time.Time, title string) models.Entry {
	return models.Entry{ID: uuid.New(), Date: d, Title: title}
}

func TestHasEntry(t *testing.T) {
	cal := New(time.UTC)
	assert.False(t, cal.HasEntry(nil, date(2024, time.March, 5)))
	assert.False(t, cal.HasEntry([]models.Entry{}, date(2024, time.March, 5)))

	entries := []models.Entry{entryOn(time.Date(2024, time.March, 5, 18, 0, 0, 0, time.UTC), "a")}
	assert.True(t, cal.HasEntry(entries, date(2024, time.March, 5)))
	assert.False(t, cal.HasEntry(entries, date(2024, time.March, 6)))
}

func TestEntriesOnDay(t *testing.T) {
	cal := New(time.UTC)
	first := entryOn(time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC), "first")
	second := entryOn(time.Date(2024, time.March, 7, 9, 0, 0, 0, time.UTC), "second")
	entries := []models.Entry{first, second}

	assert.Equal(t, []models.Entry{first}, cal.EntriesOnDay(entries, date(2024, time.March, 5)))

	none := cal.EntriesOnDay(entries, date(2024, time.March, 6))
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestEntriesOnDay_KeepsInputOrder(t *testing.T) {
	cal := New(time.UTC)
	late := entryOn(time.Date(2024, time.March, 5, 22, 0, 0, 0, time.UTC), "late")
	other := entryOn(time.Date(2024, time.March, 4, 22, 0, 0, 0, time.UTC), "other")
	early := entryOn(time.Date(2024, time.March, 5, 6, 0, 0, 0, time.UTC), "early")

	got := cal.EntriesOnDay([]models.Entry{late, other, early}, date(2024, time.March, 5))
	require.Len(t, got, 2)
	assert.Equal(t, "late", got[0].Title)
	assert.Equal(t, "early", got[1].Title)
}

func TestChangeMonth(t *testing.T) {
	cal := New(time.UTC)

	tests := []struct {
		name  string
		ref   time.Time
		delta int
		want  time.Time
	}{
		{"next", date(2024, time.January, 15), 1, date(2024, time.February, 1)},
		{"year rollover", date(2024, time.December, 15), 1, date(2025, time.January, 1)},
		{"previous across year", date(2024, time.January, 31), -1, date(2023, time.December, 1)},
		{"end of month does not skip", date(2024, time.January, 31), 1, date(2024, time.February, 1)},
		{"zero", date(2024, time.July, 9), 0, date(2024, time.July, 1)},
		{"many", date(2024, time.March, 3), 25, date(2026, time.April, 1)},
		{"many back", date(2024, time.March, 3), -27, date(2021, time.December, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.ChangeMonth(tt.ref, tt.delta))
		})
	}
}

func TestChangeMonth_UnrepresentableIsNoop(t *testing.T) {
	cal := New(time.UTC)
	ref := time.Date(2024, time.May, 20, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, ref, cal.ChangeMonth(ref, math.MaxInt))
	assert.Equal(t, ref, cal.ChangeMonth(ref, math.MinInt))

	lastMonth := date(9999, time.December, 10)
	assert.Equal(t, lastMonth, cal.ChangeMonth(lastMonth, 1))

	firstMonth := date(1, time.January, 10)
	assert.Equal(t, firstMonth, cal.ChangeMonth(firstMonth, -1))
	assert.Equal(t, date(1, time.February, 1), cal.ChangeMonth(firstMonth, 1))
}
