package document

import (
	"strconv"
	"strings"

	"github.com/mgilbir/barsmith/chart"
	"github.com/mgilbir/barsmith/internal/layout"
	"github.com/mgilbir/barsmith/internal/theme"
)

// NoDataMessage is the placeholder shown when no bar can be drawn.
const NoDataMessage = "无数据可显示"

// NoDataColor is the fill of the placeholder text.
const NoDataColor = "#666"

// Title and axis label offsets in pixels.
const (
	TitleY      = 40
	YLabelX     = 30
	XLabelInset = 30
	TickLength  = 5
	TickLabelDX = 10
	TickLabelDY = 4
)

// Assemble composes the chart in draw order: background, style sheet,
// title, axes, axis labels, ticks with interior grid lines, bars and
// finally group labels. A no-data geometry yields only the placeholder.
func Assemble(cfg chart.Config, g layout.Geometry, sheet theme.StyleSheet, bars BarSet) Document {
	doc := Document{Width: g.Width, Height: g.Height}
	if g.NoData {
		doc.Elements = []Primitive{Text{
			X:       g.Width / 2,
			Y:       g.Height / 2,
			Content: NoDataMessage,
			Anchor:  AnchorMiddle,
			Fill:    NoDataColor,
		}}
		return doc
	}

	var els []Primitive
	if bg := cfg.Style.BackgroundColor; bg != "" && bg != chart.Transparent {
		els = append(els, Rect{Width: g.Width, Height: g.Height, Fill: bg})
	}
	els = append(els, Style{CSS: sheet.CSS()})

	els = append(els, Text{
		X:       g.Width / 2,
		Y:       TitleY,
		Content: cfg.Chart.Title,
		Anchor:  AnchorMiddle,
		Class:   "chart-title",
		Style:   FontStyle(cfg.Chart.TitleFont),
	})

	left, top, base, right := g.Margins.Left, g.Margins.Top, g.Baseline(), g.Right()
	els = append(els,
		Line{X1: left, Y1: top, X2: left, Y2: base, Class: "axis-line"},
		Line{X1: left, Y1: base, X2: right, Y2: base, Class: "axis-line"},
	)

	midY := g.Height / 2
	els = append(els,
		Text{
			X:         YLabelX,
			Y:         midY,
			Content:   cfg.Chart.YAxis.Title(),
			Anchor:    AnchorMiddle,
			Class:     "axis-label",
			Transform: Rotate(-90, YLabelX, midY),
			Style:     FontStyle(cfg.Chart.YAxis.Font()),
		},
		Text{
			X:       g.Width / 2,
			Y:       g.Height - XLabelInset,
			Content: cfg.Chart.XAxis.Title(),
			Anchor:  AnchorMiddle,
			Class:   "axis-label",
			Style:   FontStyle(cfg.Chart.XAxis.Font()),
		},
	)

	for _, tk := range g.Ticks {
		els = append(els,
			Line{X1: left - TickLength, Y1: tk.Y, X2: left, Y2: tk.Y, Class: "tick-line"},
			Text{
				X:       left - TickLabelDX,
				Y:       tk.Y + TickLabelDY,
				Content: tk.Label,
				Anchor:  AnchorEnd,
				Class:   "tick-label",
			},
		)
		if tk.Interior {
			els = append(els, Line{X1: left, Y1: tk.Y, X2: right, Y2: tk.Y, Class: "grid-line"})
		}
	}

	els = append(els, bars.Elements...)
	for _, t := range bars.GroupLabels {
		els = append(els, t)
	}

	doc.Defs = append([]Pattern(nil), bars.Patterns...)
	doc.Elements = els
	return doc
}

// FontStyle renders a font override as inline CSS. Known editor font keys
// are expanded to their family lists.
func FontStyle(f *chart.Font) string {
	if f.IsZero() {
		return ""
	}
	var decls []string
	if f.Family != "" {
		family := f.Family
		if css, ok := theme.LookupFontFamily(family); ok {
			family = css
		}
		decls = append(decls, "font-family: "+family)
	}
	if f.Size > 0 {
		decls = append(decls, "font-size: "+Num(f.Size)+"px")
	}
	if f.Color != "" {
		decls = append(decls, "fill: "+f.Color)
	}
	return strings.Join(decls, "; ")
}

// Rotate formats an SVG rotate transform about (cx, cy).
func Rotate(deg, cx, cy float64) string {
	return "rotate(" + Num(deg) + ", " + Num(cx) + ", " + Num(cy) + ")"
}

// Num formats a coordinate with the shortest exact representation.
func Num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
