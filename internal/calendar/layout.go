package calendar

import "fmt"

// SizeClass describes the space available to the calendar screen.
type SizeClass int

const (
	// Compact is a narrow, tall screen (phone in portrait).
	Compact SizeClass = iota
	// RegularWide is a wide, short screen (phone in landscape).
	RegularWide
	// RegularTall is a wide and tall screen (tablet).
	RegularTall
)

var sizeClassNames = map[SizeClass]string{
	Compact:     "compact",
	RegularWide: "regular-wide",
	RegularTall: "regular-tall",
}

func (s SizeClass) String() string {
	if n, ok := sizeClassNames[s]; ok {
		return n
	}
	return fmt.Sprintf("SizeClass(%d)", int(s))
}

// ParseSizeClass parses "compact", "regular-wide" or "regular-tall".
// An empty string means Compact.
func ParseSizeClass(s string) (SizeClass, error) {
	if s == "" {
		return Compact, nil
	}
	for sc, n := range sizeClassNames {
		if n == s {
			return sc, nil
		}
	}
	return Compact, fmt.Errorf("calendar: unknown size class %q", s)
}

// Orientation is the arrangement of the calendar and the day's entry list.
type Orientation string

const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
)

// Layout holds presentation hints for a calendar screen.
type Layout struct {
	Name          string      `json:"name"`
	Orientation   Orientation `json:"orientation"`
	CalendarWidth int         `json:"calendar_width,omitempty"` // 0 = fill
	CellPadding   int         `json:"cell_padding"`
	HeaderFont    string      `json:"header_font"`
	BoldWeekdays  bool        `json:"bold_weekdays"`
	AllowDelete   bool        `json:"allow_delete"`
}

// SelectLayout picks the layout tier for a size class.
func SelectLayout(sc SizeClass) Layout {
	switch sc {
	case Compact:
		return Layout{
			Name:        "portrait",
			Orientation: Vertical,
			CellPadding: 8,
			HeaderFont:  "headline",
		}
	case RegularTall:
		return Layout{
			Name:          "wide",
			Orientation:   Vertical,
			CalendarWidth: 750,
			CellPadding:   15,
			HeaderFont:    "title",
			BoldWeekdays:  true,
			AllowDelete:   true,
		}
	default:
		return Layout{
			Name:          "landscape",
			Orientation:   Horizontal,
			CalendarWidth: 350,
			CellPadding:   5,
			HeaderFont:    "subheadline",
		}
	}
}
