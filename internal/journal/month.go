package journal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/starford/diary/internal/calendar"
	"github.com/starford/diary/internal/index"
	"github.com/starford/diary/internal/models"
)

const monthTitleLayout = "January 2006"

// DayCell is one square of a month grid.
type DayCell struct {
	Date       time.Time `json:"date"`
	Day        int       `json:"day"`
	InMonth    bool      `json:"in_month"`
	IsToday    bool      `json:"is_today"`
	HasEntry   bool      `json:"has_entry"`
	EntryCount int       `json:"entry_count"`
}

// MonthView is a rendered month grid with navigation targets.
type MonthView struct {
	Month    time.Time            `json:"month"`
	Title    string               `json:"title"`
	Window   calendar.MonthWindow `json:"window"`
	Previous time.Time            `json:"previous"`
	Next     time.Time            `json:"next"`
	Weekdays []string             `json:"weekdays"`
	Weeks    [][]DayCell          `json:"weeks"`
}

// Month lays out the month containing ref, marking days that have entries.
func (s *Service) Month(_ context.Context, ref time.Time) (*MonthView, error) {
	start := s.cal.StartOfMonth(ref)
	win := s.cal.Window(start)

	rows, err := s.db.EntriesBetween(win.Start, win.End)
	if err != nil {
		return nil, err
	}
	entries := entriesOf(rows)
	today := s.Today()

	weeks := s.cal.Weeks(start)
	view := &MonthView{
		Month:    start,
		Title:    start.Format(monthTitleLayout),
		Window:   win,
		Previous: s.cal.ChangeMonth(start, -1),
		Next:     s.cal.ChangeMonth(start, 1),
		Weekdays: s.cal.WeekdaySymbols(),
		Weeks:    make([][]DayCell, len(weeks)),
	}
	for i, week := range weeks {
		cells := make([]DayCell, len(week))
		for j, day := range week {
			cells[j] = DayCell{
				Date:       day,
				Day:        day.Day(),
				InMonth:    s.cal.IsSameMonth(day, start),
				IsToday:    s.cal.IsSameDay(day, today),
				HasEntry:   s.cal.HasEntry(entries, day),
				EntryCount: len(s.cal.EntriesOnDay(entries, day)),
			}
		}
		view.Weeks[i] = cells
	}
	return view, nil
}

// Day returns the entries dated on day, oldest first. Entries with the same
// timestamp are ordered by id.
func (s *Service) Day(_ context.Context, day time.Time) ([]Summary, error) {
	start := s.cal.StartOfDay(day)
	rows, err := s.db.EntriesBetween(start, s.cal.AddDays(start, 1))
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]index.EntryRow, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	matched := s.cal.EntriesOnDay(entriesOf(rows), start)
	out := make([]Summary, len(matched))
	for i, e := range matched {
		out[i] = summaryOf(byID[e.ID])
	}
	return out, nil
}

// entriesOf converts index rows into body-less entries for the calendar engine.
func entriesOf(rows []index.EntryRow) []models.Entry {
	out := make([]models.Entry, len(rows))
	for i, r := range rows {
		out[i] = models.Entry{ID: r.ID, Date: r.Date, Title: r.Title}
	}
	return out
}
