package geometry

import (
	"fmt"

	"github.com/mgilbir/barsmith/chart"
	"github.com/mgilbir/barsmith/internal/document"
	"github.com/mgilbir/barsmith/internal/theme"
)

// Bar styling constants.
const (
	DefaultBorderColor = "#333"
	DefaultBorderWidth = 1.0
	CornerRadius       = 4.0
	PatternSize        = 8.0
	HollowFill         = "none"
)

// Tile paths of the hatched fill patterns.
const (
	gridPath     = "M 8 0 L 0 0 0 8"
	diagonalPath = "M 0 8 L 8 0"
)

// ResolveBorder returns the stroke of a bar: its own border color or
// DefaultBorderColor, and its own non-zero border width or
// DefaultBorderWidth.
func ResolveBorder(bar chart.Bar) (color string, width float64) {
	color = bar.BorderColor
	if color == "" {
		color = DefaultBorderColor
	}
	width = DefaultBorderWidth
	if bar.BorderWidth != nil && *bar.BorderWidth != 0 {
		width = *bar.BorderWidth
	}
	return color, width
}

// ResolvePattern returns the tile for a grid or diagonal bar. id must be
// unique within the document.
func ResolvePattern(bar chart.Bar, id string) (document.Pattern, bool) {
	var path string
	switch bar.FillPattern {
	case chart.FillGrid:
		path = gridPath
	case chart.FillDiagonal:
		path = diagonalPath
	default:
		return document.Pattern{}, false
	}
	stroke, width := ResolveBorder(bar)
	return document.Pattern{
		ID:          id,
		Size:        PatternSize,
		Path:        path,
		Stroke:      stroke,
		StrokeWidth: width,
	}, true
}

// PatternID names the tile of bar slot a, segment or member b.
func PatternID(p chart.FillPattern, a, b int) string {
	return fmt.Sprintf("pattern-%s-%d-%d", p, a, b)
}

// ResolveFill returns the color of a simple bar, trying in order: the
// bar's own color, its group's color, the style sheet rule for the bar's
// configuration index, and DefaultFill.
func ResolveFill(settings chart.ChartSettings, bar chart.Bar, group string, index int, sheet theme.StyleSheet) string {
	if bar.Color != "" {
		return bar.Color
	}
	if c, ok := settings.GroupColor(group); ok && c != "" {
		return c
	}
	if c, ok := sheet.BarFill(index); ok && c != "" {
		return c
	}
	return theme.DefaultFill
}

// SegmentPaint is the resolved fill of one stacked segment.
type SegmentPaint struct {
	Fill    string
	Class   string
	Pattern *document.Pattern
}

// ResolveSegmentFill returns the paint of segment seg of the stacked bar in
// slot slot, trying in order: a hollow fill, the bar-level pattern, the
// segment color, and the palette class for the segment index.
func ResolveSegmentFill(bar chart.Bar, slot, seg int, sheet theme.StyleSheet) SegmentPaint {
	if bar.FillPattern == chart.FillHollow {
		return SegmentPaint{Fill: HollowFill}
	}
	if p, ok := ResolvePattern(bar, PatternID(bar.FillPattern, slot, seg)); ok {
		return SegmentPaint{Fill: p.URL(), Pattern: &p}
	}
	if seg < len(bar.SegmentColors) && bar.SegmentColors[seg] != "" {
		return SegmentPaint{Fill: bar.SegmentColors[seg]}
	}
	k := seg % theme.PaletteSize
	fill, ok := sheet.ClassFill(k)
	if !ok || fill == "" {
		fill = theme.DefaultFill
	}
	return SegmentPaint{Fill: fill, Class: fmt.Sprintf("bar bar-%d", k)}
}
