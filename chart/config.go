// Package chart defines the chart configuration document: the bars,
// groups, axes and style options that the renderer consumes, together
// with the persisted JSON shape of that document.
//
// A Config is a value. Editing helpers return new instances and never
// modify the receiver, so a Config handed to the renderer is an immutable
// snapshot.
package chart

import (
	"encoding/json"
	"strings"
	"time"
)

// ChartType selects the rendering mode.
type ChartType string

const (
	Simple            ChartType = "simple"
	StackedPercentage ChartType = "stackedPercentage"
)

// UnmarshalJSON accepts the canonical names and the legacy "bar" and
// "stacked-percentage" spellings. Anything else is a simple chart.
func (t *ChartType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = Simple
		return nil
	}
	*t = ParseChartType(s)
	return nil
}

// ParseChartType normalises a chart type name.
func ParseChartType(s string) ChartType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stackedpercentage", "stacked-percentage", "stacked_percentage", "stacked":
		return StackedPercentage
	default:
		return Simple
	}
}

// FillPattern is the fill style of a bar.
type FillPattern string

const (
	FillSolid    FillPattern = "solid"
	FillGrid     FillPattern = "grid"
	FillDiagonal FillPattern = "diagonal"
	FillHollow   FillPattern = "hollow"
)

// Shape is the outline of a bar rectangle.
type Shape string

const (
	ShapeRectangle Shape = "rectangle"
	ShapeRounded   Shape = "rounded"
)

// ValuePosition places the value label of a simple bar.
type ValuePosition string

const (
	ValueTop    ValuePosition = "top"
	ValueMiddle ValuePosition = "middle"
)

// Font is an optional font override.
type Font struct {
	Family string  `json:"family,omitempty" yaml:"family,omitempty"`
	Size   float64 `json:"size,omitempty" yaml:"size,omitempty"`
	Color  string  `json:"color,omitempty" yaml:"color,omitempty"`
}

// IsZero reports whether f overrides nothing.
func (f *Font) IsZero() bool {
	return f == nil || (f.Family == "" && f.Size == 0 && f.Color == "")
}

// Axis configures one chart axis.
type Axis struct {
	Label          string     `json:"label"`
	Unit           string     `json:"unit"`
	Range          [2]float64 `json:"range"`
	UseDecimal     bool       `json:"useDecimal,omitempty"`
	UsePercent     bool       `json:"usePercent,omitempty"`
	TreatAsNumeric bool       `json:"treatAsNumeric,omitempty"`
	FontFamily     string     `json:"fontFamily,omitempty"`
	FontSize       float64    `json:"fontSize,omitempty"`
	Color          string     `json:"color,omitempty"`
}

// Title returns "label unit" with surrounding space trimmed.
func (a Axis) Title() string {
	return strings.TrimSpace(a.Label + " " + a.Unit)
}

// Font returns the axis font override, or nil.
func (a Axis) Font() *Font {
	f := &Font{Family: a.FontFamily, Size: a.FontSize, Color: a.Color}
	if f.IsZero() {
		return nil
	}
	return f
}

// Bar is one data bar.
type Bar struct {
	Name          string      `json:"name"`
	Value         Value       `json:"value"`
	Group         string      `json:"group,omitempty"`
	Color         string      `json:"color,omitempty"`
	BorderColor   string      `json:"borderColor,omitempty"`
	BorderWidth   *float64    `json:"borderWidth,omitempty"`
	FillPattern   FillPattern `json:"fillPattern,omitempty"`
	Width         *float64    `json:"width,omitempty"`
	Shape         Shape       `json:"shape,omitempty"`
	SegmentColors []string    `json:"segmentColors,omitempty"`
}

// Clone returns a deep copy of b.
func (b Bar) Clone() Bar {
	out := b
	if b.Value.kind == ValueStacked {
		out.Value = Value{kind: ValueStacked, entries: append([]float64(nil), b.Value.entries...)}
	}
	if b.BorderWidth != nil {
		w := *b.BorderWidth
		out.BorderWidth = &w
	}
	if b.Width != nil {
		w := *b.Width
		out.Width = &w
	}
	if b.SegmentColors != nil {
		out.SegmentColors = append([]string(nil), b.SegmentColors...)
	}
	return out
}

// Group is a named bucket of bars.
type Group struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// BarGaps are the gaps between bars, in chart units.
type BarGaps struct {
	IntraGroup float64 `json:"intraGroup"`
	InterGroup float64 `json:"interGroup"`
}

// GridLines style the horizontal grid.
type GridLines struct {
	Opacity   float64 `json:"opacity"`
	Thickness float64 `json:"thickness"`
}

// Limits clamp displayed values when Enabled.
type Limits struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Enabled bool    `json:"enabled"`
}

// Clamp returns v limited to [Min, Max] when the limits are enabled.
func (l Limits) Clamp(v float64) float64 {
	if !l.Enabled {
		return v
	}
	if v > l.Max {
		v = l.Max
	}
	if v < l.Min {
		v = l.Min
	}
	return v
}

// ChartSettings holds the data and chart-level options.
type ChartSettings struct {
	Type           ChartType     `json:"type"`
	Title          string        `json:"title"`
	TitleFont      *Font         `json:"titleFont,omitempty"`
	XAxis          Axis          `json:"xAxis"`
	YAxis          Axis          `json:"yAxis"`
	Bars           []Bar         `json:"bars"`
	Groups         []Group       `json:"groups,omitempty"`
	BarGaps        BarGaps       `json:"barGaps"`
	GridLines      GridLines     `json:"gridLines"`
	GlobalLimits   Limits        `json:"globalLimits"`
	ShowValue      bool          `json:"showValue,omitempty"`
	ValuePosition  ValuePosition `json:"valuePosition,omitempty"`
	ShowDataLabels bool          `json:"showDataLabels,omitempty"`
	DataLabelFont  *Font         `json:"dataLabelFont,omitempty"`
}

// GroupColor returns the color of the named group, if it is declared.
func (c ChartSettings) GroupColor(name string) (string, bool) {
	for _, g := range c.Groups {
		if g.Name == name {
			return g.Color, true
		}
	}
	return "", false
}

// Label is a free-standing annotation. Labels are carried through
// persistence but not drawn.
type Label struct {
	ID              string  `json:"id"`
	Text            string  `json:"text"`
	Scope           string  `json:"scope"`
	FontFamily      string  `json:"fontFamily"`
	FontSize        float64 `json:"fontSize"`
	Color           string  `json:"color"`
	AutoLineBreak   bool    `json:"autoLineBreak"`
	SmartLineBreak  bool    `json:"smartLineBreak"`
	MaxCharsPerLine int     `json:"maxCharsPerLine,omitempty"`
}

// GlobalScope is the Label scope that applies to the whole chart.
const GlobalScope = "global"

// Style holds document-wide styling.
type Style struct {
	Theme                string  `json:"theme"`
	BackgroundColor      string  `json:"backgroundColor"`
	ChartBackgroundColor string  `json:"chartBackgroundColor,omitempty"`
	FontFamily           string  `json:"fontFamily,omitempty"`
	FontSize             float64 `json:"fontSize,omitempty"`
	BorderWidth          float64 `json:"borderWidth,omitempty"`
	ShowGrid             *bool   `json:"showGrid,omitempty"`
	ShowBorder           *bool   `json:"showBorder,omitempty"`
}

// Transparent is the background value that suppresses the background rect.
const Transparent = "transparent"

// GridVisible reports whether grid lines are displayed. Unset means shown.
func (s Style) GridVisible() bool {
	return s.ShowGrid == nil || *s.ShowGrid
}

// Metadata is the envelope attached at the persistence boundary.
type Metadata struct {
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
	Version   string    `json:"version,omitempty"`
	IsExample bool      `json:"isExample,omitempty"`
}

// Config is the root chart configuration document.
type Config struct {
	Chart    ChartSettings `json:"chart"`
	Labels   []Label       `json:"labels,omitempty"`
	Style    Style         `json:"style"`
	Metadata *Metadata     `json:"metadata,omitempty"`
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	out := c
	if c.Chart.TitleFont != nil {
		f := *c.Chart.TitleFont
		out.Chart.TitleFont = &f
	}
	if c.Chart.DataLabelFont != nil {
		f := *c.Chart.DataLabelFont
		out.Chart.DataLabelFont = &f
	}
	if c.Chart.Bars != nil {
		out.Chart.Bars = make([]Bar, len(c.Chart.Bars))
		for i, b := range c.Chart.Bars {
			out.Chart.Bars[i] = b.Clone()
		}
	}
	if c.Chart.Groups != nil {
		out.Chart.Groups = append([]Group(nil), c.Chart.Groups...)
	}
	if c.Labels != nil {
		out.Labels = append([]Label(nil), c.Labels...)
	}
	if c.Style.ShowGrid != nil {
		v := *c.Style.ShowGrid
		out.Style.ShowGrid = &v
	}
	if c.Style.ShowBorder != nil {
		v := *c.Style.ShowBorder
		out.Style.ShowBorder = &v
	}
	if c.Metadata != nil {
		m := *c.Metadata
		out.Metadata = &m
	}
	return out
}

// WithBars returns a copy of c holding bars.
func (c Config) WithBars(bars ...Bar) Config {
	out := c.Clone()
	out.Chart.Bars = make([]Bar, len(bars))
	for i, b := range bars {
		out.Chart.Bars[i] = b.Clone()
	}
	return out
}

// WithGroups returns a copy of c holding groups.
func (c Config) WithGroups(groups ...Group) Config {
	out := c.Clone()
	out.Chart.Groups = append([]Group(nil), groups...)
	return out
}

// WithChartType returns a copy of c with the chart type replaced.
func (c Config) WithChartType(t ChartType) Config {
	out := c.Clone()
	out.Chart.Type = t
	return out
}

// WithTitle returns a copy of c with the title replaced.
func (c Config) WithTitle(title string) Config {
	out := c.Clone()
	out.Chart.Title = title
	return out
}

// WithStyle returns a copy of c with the style replaced.
func (c Config) WithStyle(s Style) Config {
	out := c.Clone()
	out.Style = s
	if s.ShowGrid != nil {
		v := *s.ShowGrid
		out.Style.ShowGrid = &v
	}
	if s.ShowBorder != nil {
		v := *s.ShowBorder
		out.Style.ShowBorder = &v
	}
	return out
}

// WithTheme returns a copy of c using the named theme.
func (c Config) WithTheme(theme string) Config {
	out := c.Clone()
	out.Style.Theme = theme
	return out
}

// WithGlobalLimits returns a copy of c with the clamping limits replaced.
func (c Config) WithGlobalLimits(l Limits) Config {
	out := c.Clone()
	out.Chart.GlobalLimits = l
	return out
}

// WithoutMetadata strips the persistence envelope.
func (c Config) WithoutMetadata() Config {
	out := c.Clone()
	out.Metadata = nil
	return out
}

// Default returns the configuration a new chart starts from.
func Default() Config {
	return Config{
		Chart: ChartSettings{
			Type:  Simple,
			Title: "示例柱状图",
			XAxis: Axis{
				Label:          "X轴",
				Range:          [2]float64{0, 100},
				UseDecimal:     true,
				TreatAsNumeric: true,
			},
			YAxis: Axis{
				Label:          "Y轴",
				Unit:           "单位",
				Range:          [2]float64{0, 50},
				TreatAsNumeric: true,
			},
			Bars: []Bar{
				{Name: "A", Value: Scalar(10), Group: "group1"},
				{Name: "B", Value: Scalar(20), Group: "group1"},
				{Name: "C", Value: Scalar(30), Group: "group2"},
			},
			Groups: []Group{
				{Name: "group1", Color: "#3b82f6"},
				{Name: "group2", Color: "#ef4444"},
			},
			BarGaps:      BarGaps{IntraGroup: 0.1, InterGroup: 0.3},
			GridLines:    GridLines{Opacity: 0.3, Thickness: 1},
			GlobalLimits: Limits{Min: 0, Max: 100},
		},
		Labels: []Label{
			{
				ID:         "label1",
				Text:       "示例标签",
				Scope:      GlobalScope,
				FontFamily: "times",
				FontSize:   12,
				Color:      "#000000",
			},
		},
		Style: Style{
			Theme:                "default",
			BackgroundColor:      Transparent,
			ChartBackgroundColor: Transparent,
		},
	}
}
