package calendar

import (
	"slices"
	"time"
)

// MonthWindow is the span of days shown by a month grid.
// Start is the first grid day; End is the day after the last grid day.
type MonthWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies within [Start, End).
func (w MonthWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Window returns the full-week window around the month containing ref.
// Leading days reach back to the first weekday; trailing days run to the end
// of the last week.
func (c *Calendar) Window(ref time.Time) MonthWindow {
	first := c.StartOfMonth(ref)
	last := c.EndOfMonth(first)

	lead := (int(first.Weekday()) - int(c.firstWeekday) + DaysPerWeek) % DaysPerWeek
	trail := (int(c.firstWeekday) + DaysPerWeek - 1 - int(last.Weekday())) % DaysPerWeek

	return MonthWindow{
		Start: c.AddDays(first, -lead),
		End:   c.AddDays(last, trail+1),
	}
}

// Grid returns every day in the month window of ref. Its length is always a
// multiple of DaysPerWeek.
func (c *Calendar) Grid(ref time.Time) []time.Time {
	w := c.Window(ref)
	return slices.Collect(c.Days(w.Start, c.AddDays(w.End, -1)))
}

// Weeks splits the grid of ref into rows of DaysPerWeek days.
func (c *Calendar) Weeks(ref time.Time) [][]time.Time {
	return slices.Collect(slices.Chunk(c.Grid(ref), DaysPerWeek))
}

// WeekdaySymbols returns abbreviated weekday names in grid column order.
func (c *Calendar) WeekdaySymbols() []string {
	out := make([]string, DaysPerWeek)
	for i := range out {
		out[i] = time.Weekday((int(c.firstWeekday) + i) % DaysPerWeek).String()[:3]
	}
	return out
}
