package journal_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/diary/internal/journal"
	"github.com/starford/diary/internal/testutil"
)

func TestMonth_MarksEntriesAndToday(t *testing.T) {
	svc, _, _ := testutil.TestJournal(t, journal.WithClock(testutil.FixedClock(now)))
	ctx := context.Background()

	for _, in := range []journal.EntryInput{
		{Title: "morning", Date: datePtr(2024, 3, 5, 8)},
		{Title: "evening", Date: datePtr(2024, 3, 5, 21)},
		{Title: "leap day", Date: datePtr(2024, 2, 29, 12)},
		{Title: "far away", Date: datePtr(2023, 3, 5, 12)},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	view, err := svc.Month(ctx, time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "March 2024", view.Title)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), view.Previous)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), view.Next)
	assert.Equal(t, []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}, view.Weekdays)
	// March 2024 starts on a Friday: Feb 25 through Apr 6.
	require.Len(t, view.Weeks, 6)

	cells := map[string]journal.DayCell{}
	for _, week := range view.Weeks {
		require.Len(t, week, 7)
		for _, c := range week {
			cells[c.Date.Format("2006-01-02")] = c
		}
	}

	assert.Equal(t, 2, cells["2024-03-05"].EntryCount)
	assert.True(t, cells["2024-03-05"].HasEntry)
	assert.True(t, cells["2024-02-29"].HasEntry)
	assert.False(t, cells["2024-02-29"].InMonth)
	assert.True(t, cells["2024-03-15"].IsToday)
	assert.False(t, cells["2024-03-16"].HasEntry)
	assert.Equal(t, 1, cells["2024-03-01"].Day)
}

func TestDay(t *testing.T) {
	svc, _, _ := testutil.TestJournal(t)
	ctx := context.Background()

	for _, in := range []journal.EntryInput{
		{Title: "second", Date: datePtr(2024, 3, 5, 21)},
		{Title: "first", Date: datePtr(2024, 3, 5, 8)},
		{Title: "next day", Date: datePtr(2024, 3, 6, 0)},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	got, err := svc.Day(ctx, time.Date(2024, time.March, 5, 13, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Title)
	assert.Equal(t, "second", got[1].Title)

	empty, err := svc.Day(ctx, time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestDay_SameTimestampOrderedByID(t *testing.T) {
	svc, _, _ := testutil.TestJournal(t)
	ctx := context.Background()

	low := uuid.MustParse("00000000-0000-4000-8000-000000000001")
	high := uuid.MustParse("ffffffff-0000-4000-8000-000000000001")
	for _, id := range []uuid.UUID{high, low} {
		_, err := svc.Create(ctx, journal.EntryInput{ID: id, Title: id.String(), Date: datePtr(2024, 3, 5, 9)})
		require.NoError(t, err)
	}

	for range 3 {
		got, err := svc.Day(ctx, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, low, got[0].ID)
		assert.Equal(t, high, got[1].ID)
	}
}

func TestNavigate(t *testing.T) {
	svc, _, _ := testutil.TestJournal(t)

	jan31 := time.Date(2024, time.January, 31, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), svc.Navigate(jan31, 1))
	assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), svc.Navigate(jan31, -1))

	edge := time.Date(9999, time.December, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, edge, svc.Navigate(edge, 1))
}
