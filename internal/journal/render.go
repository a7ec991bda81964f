package journal

import (
	"fmt"
	"strings"
)

const cellWidth = 5

// RenderMonth draws v as a plain-text grid. Days with entries carry a "*",
// today is bracketed and days outside the month are left blank.
func RenderMonth(v *MonthView) string {
	var b strings.Builder
	width := cellWidth * len(v.Weekdays)

	pad := max((width-len(v.Title))/2, 0)
	b.WriteString(strings.Repeat(" ", pad) + v.Title + "\n")

	for _, wd := range v.Weekdays {
		fmt.Fprintf(&b, " %-3s ", wd)
	}
	b.WriteString("\n")

	for _, week := range v.Weeks {
		for _, c := range week {
			b.WriteString(renderCell(c))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderCell(c DayCell) string {
	if !c.InMonth {
		return strings.Repeat(" ", cellWidth)
	}
	open, closing, mark := " ", " ", " "
	if c.IsToday {
		open, closing = "[", "]"
	}
	if c.HasEntry {
		mark = "*"
	}
	return fmt.Sprintf("%s%2d%s%s", open, c.Day, closing, mark)
}
