// Package geometry turns laid-out bar slots into rectangles and labels.
package geometry

import (
	"math"

	"github.com/mgilbir/barsmith/chart"
	"github.com/mgilbir/barsmith/internal/document"
	"github.com/mgilbir/barsmith/internal/layout"
	"github.com/mgilbir/barsmith/internal/textmeasure"
	"github.com/mgilbir/barsmith/internal/theme"
)

// Label offsets from the baseline and bar top, in pixels.
const (
	NameLabelDY      = 20
	GroupLabelDY     = 40
	ValueLabelDY     = 5
	FittedLabelAngle = -45
)

// Measurer decides whether label text set in a CSS font shorthand fits a
// width in pixels.
type Measurer interface {
	Fits(text, cssFont string, width float64) bool
}

// Options tune Build.
type Options struct {
	// Measurer, when set, rotates name labels that are wider than their
	// bar so that neighbouring labels do not overlap.
	Measurer Measurer
}

// Build produces the rectangles and labels of every slot in g, in data
// order, plus the group labels of a multi-group simple chart.
func Build(cfg chart.Config, g layout.Geometry, sheet theme.StyleSheet, opts Options) document.BarSet {
	var set document.BarSet
	if g.NoData {
		return set
	}
	b := builder{cfg: cfg, g: g, sheet: sheet, opts: opts, set: &set}
	if g.Stacked() {
		for i, s := range g.Slots {
			b.stacked(i, s)
		}
		return set
	}
	for _, s := range g.Slots {
		b.simple(s)
	}
	if len(g.Groups) > 1 {
		for _, span := range g.Groups {
			set.GroupLabels = append(set.GroupLabels, document.Text{
				X:          span.Center(),
				Y:          g.Baseline() + GroupLabelDY,
				Content:    span.Name,
				Anchor:     document.AnchorMiddle,
				Class:      "bar-label",
				FontWeight: "bold",
			})
		}
	}
	return set
}

type builder struct {
	cfg   chart.Config
	g     layout.Geometry
	sheet theme.StyleSheet
	opts  Options
	set   *document.BarSet
}

func (b *builder) emit(p document.Primitive) {
	b.set.Elements = append(b.set.Elements, p)
}

func (b *builder) simple(s layout.Slot) {
	bar := b.cfg.Chart.Bars[s.Bar]
	v, _ := bar.Value.Float()
	v = b.cfg.Chart.GlobalLimits.Clamp(v)
	h := b.g.BarHeight(v)
	y := b.g.Baseline() - h

	stroke, width := ResolveBorder(bar)
	if c, w, ok := b.sheet.BarStroke(s.Bar); ok {
		if bar.BorderColor == "" {
			stroke = c
		}
		if bar.BorderWidth == nil || *bar.BorderWidth == 0 {
			width = w
		}
	}
	rect := document.Rect{
		X:           s.X,
		Y:           y,
		Width:       s.Width,
		Height:      h,
		Stroke:      stroke,
		StrokeWidth: width,
	}
	if bar.FillPattern == chart.FillHollow {
		rect.Fill = HollowFill
	} else if p, ok := ResolvePattern(bar, PatternID(bar.FillPattern, s.GroupIndex, s.IndexInGroup)); ok {
		b.set.Patterns = append(b.set.Patterns, p)
		rect.Fill = p.URL()
	} else {
		rect.Fill = ResolveFill(b.cfg.Chart, bar, s.Group, s.Bar, b.sheet)
	}
	if bar.Shape == chart.ShapeRounded {
		rect.Radius = CornerRadius
	}
	b.emit(rect)
	b.emit(b.nameLabel(s, bar.Name))

	if b.cfg.Chart.ShowValue {
		label := document.Text{
			X:       s.Center(),
			Y:       y - ValueLabelDY,
			Content: layout.FormatValue(v, false, b.cfg.Chart.XAxis, b.cfg.Chart.YAxis),
			Anchor:  document.AnchorMiddle,
			Class:   "value-label",
			Style:   document.FontStyle(b.cfg.Chart.DataLabelFont),
		}
		if b.cfg.Chart.ValuePosition == chart.ValueMiddle {
			label.Y = y + h/2
			label.Class = "value-label-middle"
		}
		b.emit(label)
	}
}

func (b *builder) stacked(i int, s layout.Slot) {
	bar := b.cfg.Chart.Bars[s.Bar]
	entries := bar.Value.Entries()
	fractions := SegmentFractions(entries)
	stroke, width := ResolveBorder(bar)

	var cum float64
	for j, e := range entries {
		if math.IsNaN(e) {
			continue
		}
		h := fractions[j] * b.g.ChartHeight
		paint := ResolveSegmentFill(bar, i, j, b.sheet)
		if paint.Pattern != nil {
			b.set.Patterns = append(b.set.Patterns, *paint.Pattern)
		}
		rect := document.Rect{
			X:           s.X,
			Y:           b.g.Baseline() - cum - h,
			Width:       s.Width,
			Height:      h,
			Fill:        paint.Fill,
			Class:       paint.Class,
			Stroke:      stroke,
			StrokeWidth: width,
		}
		if bar.Shape == chart.ShapeRounded {
			rect.Radius = CornerRadius
		}
		b.emit(rect)
		cum += h
	}
	b.emit(b.nameLabel(s, bar.Name))
}

func (b *builder) nameLabel(s layout.Slot, name string) document.Text {
	t := document.Text{
		X:       s.Center(),
		Y:       b.g.Baseline() + NameLabelDY,
		Content: name,
		Anchor:  document.AnchorMiddle,
		Class:   "bar-label",
	}
	if m := b.opts.Measurer; m != nil && name != "" {
		font := textmeasure.Shorthand(b.sheet.FontFamily, b.sheet.FontSize, false)
		if !m.Fits(name, font, s.Width) {
			t.Anchor = document.AnchorEnd
			t.Transform = document.Rotate(FittedLabelAngle, t.X, t.Y)
		}
	}
	return t
}

// SegmentFractions returns the share of the stack each entry takes. NaN
// entries take nothing, and every share is zero when the numeric entries
// do not sum to a positive total.
func SegmentFractions(entries []float64) []float64 {
	var total float64
	for _, e := range entries {
		if !math.IsNaN(e) {
			total += e
		}
	}
	out := make([]float64, len(entries))
	if total <= 0 {
		return out
	}
	for i, e := range entries {
		if !math.IsNaN(e) {
			out[i] = e / total
		}
	}
	return out
}
