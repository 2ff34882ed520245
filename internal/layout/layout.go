// Package layout computes the pixel geometry of a chart: the canvas and its
// margins, the value domain, the axis ticks and the horizontal slot of every
// renderable bar.
package layout

import (
	"math"
	"strconv"

	"github.com/mgilbir/barsmith/chart"
)

// Canvas size in pixels.
const (
	Width  = 800
	Height = 600
)

// TickCount is the number of intervals on the value axis; TickCount+1
// labelled ticks are drawn.
const TickCount = 5

// DefaultGroup is the bucket of bars that name no group.
const DefaultGroup = "default"

// Gap defaults replace a zero gap setting.
const (
	DefaultIntraGroupGap = 0.1
	DefaultInterGroupGap = 0.3
)

// Stacked bars fill this share of their slot; the rest is spacing.
const StackedBarFraction = 0.7

// Margins are the distances between the canvas edge and the plot area.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// Horizontal returns Left+Right.
func (m Margins) Horizontal() float64 { return m.Left + m.Right }

// Vertical returns Top+Bottom.
func (m Margins) Vertical() float64 { return m.Top + m.Bottom }

var (
	// DefaultMargins frame the interactive chart.
	DefaultMargins = Margins{Top: 80, Right: 60, Bottom: 120, Left: 100}
	// LegacyExportMargins frame charts produced by the export endpoint.
	LegacyExportMargins = Margins{Top: 50, Right: 50, Bottom: 100, Left: 100}
)

// Domain is the value range mapped onto the plot height.
type Domain struct {
	Min, Max float64
}

// Range returns Max-Min.
func (d Domain) Range() float64 { return d.Max - d.Min }

// Tick is one labelled position on the value axis.
type Tick struct {
	Value float64
	Y     float64
	Label string
	// Interior ticks carry a grid line; the first and last do not.
	Interior bool
}

// Slot is the horizontal placement of one bar.
type Slot struct {
	// Bar indexes the bar in the configuration.
	Bar int
	// Group is the group bucket name; empty in stacked mode.
	Group        string
	GroupIndex   int
	IndexInGroup int
	// X is the left edge of the drawn rectangle.
	X float64
	// Width is the drawn width, SlotWidth the width allotted before the
	// bar's own width fraction.
	Width     float64
	SlotWidth float64
}

// Center returns the horizontal middle of the drawn rectangle.
func (s Slot) Center() float64 { return s.X + s.Width/2 }

// GroupSpan is the horizontal extent of one group of bars.
type GroupSpan struct {
	Name       string
	Start, End float64
}

// Center returns the middle of the span.
func (g GroupSpan) Center() float64 { return g.Start + (g.End-g.Start)/2 }

// Geometry is the output of Compute.
type Geometry struct {
	Width, Height float64
	Margins       Margins
	ChartWidth    float64
	ChartHeight   float64
	Type          chart.ChartType
	Domain        Domain
	Ticks         []Tick
	Slots         []Slot
	// Groups is set in simple mode only.
	Groups []GroupSpan
	// IntraGap and InterGap are the effective gaps used for Slots.
	IntraGap, InterGap float64
	// NoData is set when no bar is renderable. Nothing else is populated.
	NoData bool
}

// Stacked reports whether the geometry lays out percentage stacks.
func (g Geometry) Stacked() bool { return g.Type == chart.StackedPercentage }

// Baseline returns the y coordinate of the value axis origin.
func (g Geometry) Baseline() float64 { return g.Height - g.Margins.Bottom }

// Right returns the x coordinate of the right edge of the plot area.
func (g Geometry) Right() float64 { return g.Width - g.Margins.Right }

// BarHeight maps a displayed value to a rectangle height. Values below the
// domain minimum and degenerate domains give zero.
func (g Geometry) BarHeight(v float64) float64 {
	r := g.Domain.Range()
	if r <= 0 || math.IsNaN(v) {
		return 0
	}
	return math.Max(0, (v-g.Domain.Min)/r*g.ChartHeight)
}

// Renderable reports whether bar is drawn in a chart of type t. Simple bars
// need a value and a name. Stacked bars need at least one numeric entry.
func Renderable(t chart.ChartType, bar chart.Bar) bool {
	if t == chart.StackedPercentage {
		return bar.Value.HasNumericEntry()
	}
	_, ok := bar.Value.Float()
	return ok && bar.Name != ""
}

// Compute lays out cfg on the fixed canvas inside margins.
func Compute(cfg chart.Config, margins Margins) Geometry {
	g := Geometry{
		Width:       Width,
		Height:      Height,
		Margins:     margins,
		ChartWidth:  Width - margins.Horizontal(),
		ChartHeight: Height - margins.Vertical(),
		Type:        cfg.Chart.Type,
	}
	if g.Type != chart.StackedPercentage {
		g.Type = chart.Simple
	}

	var renderable []int
	for i, b := range cfg.Chart.Bars {
		if Renderable(g.Type, b) {
			renderable = append(renderable, i)
		}
	}
	if len(renderable) == 0 {
		g.NoData = true
		return g
	}

	g.Domain = domain(cfg, g.Type)
	g.Ticks = ticks(cfg, g)
	if g.Stacked() {
		g.Slots = stackedSlots(g, renderable)
		return g
	}
	g.IntraGap = orDefault(cfg.Chart.BarGaps.IntraGroup, DefaultIntraGroupGap)
	g.InterGap = orDefault(cfg.Chart.BarGaps.InterGroup, DefaultInterGroupGap)
	g.Slots, g.Groups = groupedSlots(cfg.Chart.Bars, renderable, g)
	return g
}

func orDefault(v, def float64) float64 {
	if v == 0 || math.IsNaN(v) {
		return def
	}
	return v
}

func domain(cfg chart.Config, t chart.ChartType) Domain {
	if t == chart.StackedPercentage {
		return Domain{Min: 0, Max: 100}
	}
	limits := cfg.Chart.GlobalLimits
	if limits.Enabled {
		return Domain{Min: limits.Min, Max: limits.Max}
	}
	d := Domain{
		Min: math.Min(0, cfg.Chart.YAxis.Range[0]),
		Max: cfg.Chart.YAxis.Range[1],
	}
	for _, b := range cfg.Chart.Bars {
		if v, ok := b.Value.Float(); ok && v > d.Max {
			d.Max = v
		}
	}
	return d
}

func ticks(cfg chart.Config, g Geometry) []Tick {
	out := make([]Tick, 0, TickCount+1)
	for i := 0; i <= TickCount; i++ {
		v := g.Domain.Min + g.Domain.Range()*float64(i)/TickCount
		out = append(out, Tick{
			Value:    v,
			Y:        g.Baseline() - g.ChartHeight*float64(i)/TickCount,
			Label:    FormatValue(v, g.Stacked(), cfg.Chart.XAxis, cfg.Chart.YAxis),
			Interior: i > 0 && i < TickCount,
		})
	}
	return out
}

// FormatValue formats an axis or value label. Percentages win when the chart
// is stacked or the y axis is in percent. Otherwise the x axis decimal flag
// selects one decimal place, and integers are rounded half up.
func FormatValue(v float64, stacked bool, x, y chart.Axis) string {
	switch {
	case stacked || y.UsePercent:
		return strconv.FormatFloat(v, 'f', 1, 64) + "%"
	case x.UseDecimal:
		return strconv.FormatFloat(v, 'f', 1, 64)
	default:
		r := math.Floor(v + 0.5)
		if r == 0 {
			r = 0 // drop the sign of -0
		}
		return strconv.FormatFloat(r, 'f', -1, 64)
	}
}

func stackedSlots(g Geometry, renderable []int) []Slot {
	n := float64(len(renderable))
	slot := g.ChartWidth / n
	w := slot * StackedBarFraction
	spacing := slot - w
	slots := make([]Slot, len(renderable))
	for i, idx := range renderable {
		slots[i] = Slot{
			Bar:          idx,
			IndexInGroup: i,
			X:            g.Margins.Left + float64(i)*(w+spacing) + spacing/2,
			Width:        w,
			SlotWidth:    slot,
		}
	}
	return slots
}

type bucket struct {
	name string
	bars []int
}

func groupedSlots(bars []chart.Bar, renderable []int, g Geometry) ([]Slot, []GroupSpan) {
	var buckets []*bucket
	byName := make(map[string]*bucket)
	for _, idx := range renderable {
		name := bars[idx].Group
		if name == "" {
			name = DefaultGroup
		}
		b, ok := byName[name]
		if !ok {
			b = &bucket{name: name}
			byName[name] = b
			buckets = append(buckets, b)
		}
		b.bars = append(b.bars, idx)
	}

	nBars := float64(len(renderable))
	nGroups := float64(len(buckets))
	gaps := (nBars-nGroups)*g.IntraGap + math.Max(0, nGroups-1)*g.InterGap
	slot := math.Max(0, g.ChartWidth-gaps) / nBars

	slots := make([]Slot, 0, len(renderable))
	spans := make([]GroupSpan, 0, len(buckets))
	x := g.Margins.Left
	for gi, b := range buckets {
		span := GroupSpan{Name: b.name, Start: x}
		for bi, idx := range b.bars {
			w := slot
			if f := bars[idx].Width; f != nil && *f != 0 {
				w = slot * *f
			}
			slots = append(slots, Slot{
				Bar:          idx,
				Group:        b.name,
				GroupIndex:   gi,
				IndexInGroup: bi,
				X:            x,
				Width:        w,
				SlotWidth:    slot,
			})
			x += w
			if bi < len(b.bars)-1 {
				x += g.IntraGap
			}
		}
		span.End = x
		spans = append(spans, span)
		if gi < len(buckets)-1 {
			x += g.InterGap
		}
	}
	return slots, spans
}
