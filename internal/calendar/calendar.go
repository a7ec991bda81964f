// Package calendar computes month grids and day-scoped entry lookups.
//
// All operations are pure: they read their arguments, never retain them, and
// never fail. When calendar arithmetic cannot represent a result the input is
// returned unchanged.
package calendar

import (
	"iter"
	"math"
	"slices"
	"time"

	"github.com/starford/diary/internal/models"
)

// Representable year range. Entry files store dates as RFC 3339, which
// cannot carry years outside of it.
const (
	minYear = 1
	maxYear = 9999
)

// DaysPerWeek is the number of columns in a month grid.
const DaysPerWeek = 7

// Calendar is a Gregorian calendar bound to a location and a first weekday.
type Calendar struct {
	loc          *time.Location
	firstWeekday time.Weekday
}

// Option configures a Calendar.
type Option func(*Calendar)

// WithFirstWeekday sets the weekday that starts each grid row.
func WithFirstWeekday(d time.Weekday) Option {
	return func(c *Calendar) {
		if d >= time.Sunday && d <= time.Saturday {
			c.firstWeekday = d
		}
	}
}

// New returns a Calendar for loc. A nil loc means time.Local.
// Weeks start on Sunday unless WithFirstWeekday says otherwise.
func New(loc *time.Location, opts ...Option) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	c := &Calendar{loc: loc, firstWeekday: time.Sunday}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location returns the calendar's location.
func (c *Calendar) Location() *time.Location { return c.loc }

// FirstWeekday returns the weekday in the first grid column.
func (c *Calendar) FirstWeekday() time.Weekday { return c.firstWeekday }

// StartOfDay returns local midnight of the day containing t.
func (c *Calendar) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}

// StartOfMonth returns the first instant of the month containing t.
func (c *Calendar) StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.In(c.loc).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, c.loc)
}

// EndOfMonth returns local midnight of the last day of the month containing t.
func (c *Calendar) EndOfMonth(t time.Time) time.Time {
	y, m, _ := t.In(c.loc).Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, c.loc)
}

// AddDays returns local midnight n days after the day containing t.
func (c *Calendar) AddDays(t time.Time, n int) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, c.loc)
}

// Days yields every day from the day containing from through the day
// containing through, inclusive. Iteration stops early if advancing a day
// does not produce a later instant.
func (c *Calendar) Days(from, through time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		day := c.StartOfDay(from)
		last := c.StartOfDay(through)
		for !day.After(last) {
			if !yield(day) {
				return
			}
			next := c.AddDays(day, 1)
			if !next.After(day) {
				return
			}
			day = next
		}
	}
}

// DaysInMonth returns the days of the month containing monthStart, first
// through last.
func (c *Calendar) DaysInMonth(monthStart time.Time) []time.Time {
	start := c.StartOfMonth(monthStart)
	return slices.Collect(c.Days(start, c.EndOfMonth(start)))
}

// IsSameDay reports whether a and b fall on the same local calendar day.
func (c *Calendar) IsSameDay(a, b time.Time) bool {
	ay, am, ad := a.In(c.loc).Date()
	by, bm, bd := b.In(c.loc).Date()
	return ay == by && am == bm && ad == bd
}

// IsSameMonth reports whether a and b fall in the same local year and month.
func (c *Calendar) IsSameMonth(a, b time.Time) bool {
	ay, am, _ := a.In(c.loc).Date()
	by, bm, _ := b.In(c.loc).Date()
	return ay == by && am == bm
}

// HasEntry reports whether any entry is dated on day.
func (c *Calendar) HasEntry(entries []models.Entry, day time.Time) bool {
	return slices.ContainsFunc(entries, func(e models.Entry) bool {
		return c.IsSameDay(e.Date, day)
	})
}

// EntriesOnDay returns the entries dated on day, in input order.
func (c *Calendar) EntriesOnDay(entries []models.Entry, day time.Time) []models.Entry {
	out := make([]models.Entry, 0)
	for _, e := range entries {
		if c.IsSameDay(e.Date, day) {
			out = append(out, e)
		}
	}
	return out
}

// ChangeMonth returns the first day of the month delta months away from the
// month containing ref. If the target month lies outside the representable
// year range, ref is returned unchanged.
func (c *Calendar) ChangeMonth(ref time.Time, delta int) time.Time {
	y, m, _ := ref.In(c.loc).Date()
	ny, nm, ok := shiftMonth(y, m, delta)
	if !ok {
		return ref
	}
	return time.Date(ny, nm, 1, 0, 0, 0, 0, c.loc)
}

func shiftMonth(y int, m time.Month, delta int) (int, time.Month, bool) {
	base := y*12 + int(m) - 1
	if (delta > 0 && base > math.MaxInt-delta) || (delta < 0 && base < math.MinInt-delta) {
		return 0, 0, false
	}
	idx := base + delta
	if idx < minYear*12 || idx > maxYear*12+11 {
		return 0, 0, false
	}
	return idx / 12, time.Month(idx%12 + 1), true
}
