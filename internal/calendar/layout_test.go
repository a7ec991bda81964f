package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSizeClass(t *testing.T) {
	for _, sc := range []SizeClass{Compact, RegularWide, RegularTall} {
		got, err := ParseSizeClass(sc.String())
		require.NoError(t, err)
		assert.Equal(t, sc, got)
	}

	got, err := ParseSizeClass("")
	require.NoError(t, err)
	assert.Equal(t, Compact, got)

	_, err = ParseSizeClass("huge")
	assert.Error(t, err)
	assert.Equal(t, "SizeClass(7)", SizeClass(7).String())
}

func TestSelectLayout(t *testing.T) {
	tests := []struct {
		sc          SizeClass
		name        string
		orientation Orientation
		width       int
		padding     int
		allowDelete bool
	}{
		{Compact, "portrait", Vertical, 0, 8, false},
		{RegularTall, "wide", Vertical, 750, 15, true},
		{RegularWide, "landscape", Horizontal, 350, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.sc.String(), func(t *testing.T) {
			l := SelectLayout(tt.sc)
			assert.Equal(t, tt.name, l.Name)
			assert.Equal(t, tt.orientation, l.Orientation)
			assert.Equal(t, tt.width, l.CalendarWidth)
			assert.Equal(t, tt.padding, l.CellPadding)
			assert.Equal(t, tt.allowDelete, l.AllowDelete)
		})
	}
}
