// Package theme maps a theme key and style options to the concrete style
// sheet a chart is drawn with: CSS class rules for text and lines, and the
// fill colors assigned to bars that carry no explicit color.
package theme

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mgilbir/barsmith/chart"
)

// Key names a theme.
type Key string

const (
	Default   Key = "default"
	Nature    Key = "nature"
	Science   Key = "science"
	IEEE      Key = "ieee"
	Minimal   Key = "minimal"
	Grayscale Key = "grayscale"
	PLOS      Key = "plos"
	Cell      Key = "cell"
	NEJM      Key = "nejm"
)

// Keys lists every known theme in display order.
var Keys = []Key{Default, Nature, Science, IEEE, Minimal, Grayscale, PLOS, Cell, NEJM}

// ParseKey returns the theme for s; unknown names resolve to Default.
func ParseKey(s string) Key {
	k := Key(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Keys {
		if k == known {
			return k
		}
	}
	return Default
}

// PaletteSize is the length of every cyclic palette.
const PaletteSize = 5

// DefaultFill is used when no rule yields a color.
const DefaultFill = "#3b82f6"

// TextColor is the color of all chart text and axis lines.
const TextColor = "#000"

// Grayscale intensity bounds: the smallest value maps to MinGray (white),
// the largest to MaxGray.
const (
	MinGray = 255
	MaxGray = 75
)

var palettes = map[Key][PaletteSize]string{
	Default: {"#3b82f6", "#ef4444", "#10b981", "#f59e0b", "#8b5cf6"},
	Nature:  {"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd"},
	Science: {"#2E86AB", "#A23B72", "#F18F01", "#C73E1D", "#592E83"},
	IEEE:    {"#0072CE", "#00A651", "#ED1C24", "#FF8200", "#732982"},
	PLOS:    {"#1B9E77", "#D95F02", "#7570B3", "#E7298A", "#66A61E"},
	Cell:    {"#E31A1C", "#1F78B4", "#33A02C", "#FF7F00", "#6A3D9A"},
	NEJM:    {"#B2182B", "#2166AC", "#5AAE61", "#F46D43", "#762A83"},
	Minimal: {"white", "white", "white", "white", "white"},
}

// Options are the style inputs of a theme.
type Options struct {
	FontFamily    string
	FontSize      float64
	BorderWidth   float64
	GridThickness float64
	GridOpacity   float64
	ShowGrid      bool
}

// OptionsFrom extracts Options from a configuration, applying the
// defaults of the chart editor (times, 12px, border 1, grid 0.5/0.3).
func OptionsFrom(cfg chart.Config) Options {
	opts := Options{
		FontFamily:    cfg.Style.FontFamily,
		FontSize:      cfg.Style.FontSize,
		BorderWidth:   cfg.Style.BorderWidth,
		GridThickness: cfg.Chart.GridLines.Thickness,
		GridOpacity:   cfg.Chart.GridLines.Opacity,
		ShowGrid:      cfg.Style.GridVisible(),
	}
	if opts.FontFamily == "" {
		opts.FontFamily = "times"
	}
	if opts.FontSize == 0 {
		opts.FontSize = 12
	}
	if opts.BorderWidth == 0 {
		opts.BorderWidth = 1
	}
	if opts.GridThickness == 0 {
		opts.GridThickness = 0.5
	}
	if opts.GridOpacity == 0 {
		opts.GridOpacity = 0.3
	}
	return opts
}

// Rule is one CSS rule.
type Rule struct {
	Selector     string
	Declarations []Declaration
}

// Declaration is a CSS property/value pair.
type Declaration struct {
	Property string
	Value    string
}

// BarRule is the fill rule of a ".bar-N" class.
type BarRule struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
}

// StyleSheet is the resolved visual style of one render.
type StyleSheet struct {
	Key Key
	// FontFamily is the CSS font-family list used by every text class.
	FontFamily string
	FontSize   float64
	Base       []Rule
	// Palette holds the cyclic fills of non-grayscale themes.
	Palette []BarRule
	// Fills holds one grayscale rule per valid bar, in valid-bar order.
	Fills []BarRule
	// ordinal maps a configuration bar index to its position in Fills.
	ordinal map[int]int
}

// Resolve builds the style sheet for key. bars is only consulted by the
// grayscale theme. Resolve has no side effects.
func Resolve(key Key, opts Options, bars []chart.Bar) StyleSheet {
	key = ParseKey(string(key))
	sheet := StyleSheet{
		Key:        key,
		FontFamily: FontFamilyCSS(opts.FontFamily),
		FontSize:   opts.FontSize,
		Base:       baseRules(opts),
	}
	if key == Grayscale {
		sheet.Fills, sheet.ordinal = grayscaleFills(bars, opts.BorderWidth)
		return sheet
	}
	p := palettes[key]
	sheet.Palette = make([]BarRule, PaletteSize)
	for i, fill := range p {
		sheet.Palette[i] = BarRule{Fill: fill}
		if key == Minimal {
			sheet.Palette[i].Stroke = TextColor
			sheet.Palette[i].StrokeWidth = opts.BorderWidth + 1
		}
	}
	return sheet
}

// BarFill returns the fallback fill of the configuration bar at index i:
// the grayscale rule of that bar, or the palette color cycled by i.
func (s StyleSheet) BarFill(i int) (string, bool) {
	if s.Key == Grayscale {
		n, ok := s.ordinal[i]
		if !ok {
			return "", false
		}
		return s.Fills[n].Fill, true
	}
	return s.ClassFill(i)
}

// ClassFill returns the fill of the ".bar-k" class, with k taken modulo
// the palette size for cyclic themes.
func (s StyleSheet) ClassFill(k int) (string, bool) {
	if k < 0 {
		return "", false
	}
	if s.Key == Grayscale {
		if k >= len(s.Fills) {
			return "", false
		}
		return s.Fills[k].Fill, true
	}
	if len(s.Palette) == 0 {
		return "", false
	}
	return s.Palette[k%len(s.Palette)].Fill, true
}

// BarStroke returns the outline a cyclic theme gives the ".bar-k" class,
// if any. Only the minimal theme outlines its bars.
func (s StyleSheet) BarStroke(k int) (stroke string, width float64, ok bool) {
	if k < 0 || len(s.Palette) == 0 {
		return "", 0, false
	}
	r := s.Palette[k%len(s.Palette)]
	if r.StrokeWidth <= 0 {
		return "", 0, false
	}
	return r.Stroke, r.StrokeWidth, true
}

// HasBarRules reports whether the sheet carries any bar fill rule.
func (s StyleSheet) HasBarRules() bool {
	return len(s.Palette) > 0 || len(s.Fills) > 0
}

// Gray returns the grayscale level for value within [min, max]. A
// degenerate range yields the neutral mid level.
func Gray(value, min, max float64) int {
	intensity := 0.5
	if r := max - min; r > 0 {
		intensity = (value - min) / r
	}
	return int(math.Round(MinGray - intensity*(MinGray-MaxGray)))
}

// GrayColor formats a gray level as an rgb() color.
func GrayColor(level int) string {
	return fmt.Sprintf("rgb(%d, %d, %d)", level, level, level)
}

func grayscaleFills(bars []chart.Bar, borderWidth float64) ([]BarRule, map[int]int) {
	type valid struct {
		index int
		value float64
	}
	var vs []valid
	for i, b := range bars {
		if b.Value.Kind() != chart.ValueScalar {
			continue
		}
		v, _ := b.Value.Float()
		vs = append(vs, valid{index: i, value: v})
	}
	if len(vs) == 0 {
		return nil, nil
	}
	lo, hi := vs[0].value, vs[0].value
	for _, v := range vs[1:] {
		lo = math.Min(lo, v.value)
		hi = math.Max(hi, v.value)
	}
	fills := make([]BarRule, len(vs))
	ordinal := make(map[int]int, len(vs))
	for n, v := range vs {
		fills[n] = BarRule{
			Fill:        GrayColor(Gray(v.value, lo, hi)),
			Stroke:      "#333",
			StrokeWidth: borderWidth,
		}
		ordinal[v.index] = n
	}
	return fills, ordinal
}

var fontFamilies = map[string]string{
	"times":     "'Times New Roman', serif",
	"arial":     "Arial, sans-serif",
	"helvetica": "Helvetica, Arial, sans-serif",
	"calibri":   "Calibri, Arial, sans-serif",
}

// FontFamilyCSS maps an editor font key to a CSS font-family list. Unknown
// keys fall back to Times.
func FontFamilyCSS(key string) string {
	if css, ok := LookupFontFamily(key); ok {
		return css
	}
	return fontFamilies["times"]
}

// LookupFontFamily returns the CSS list of a known editor font key.
func LookupFontFamily(key string) (string, bool) {
	css, ok := fontFamilies[strings.ToLower(strings.TrimSpace(key))]
	return css, ok
}

func baseRules(o Options) []Rule {
	family := FontFamilyCSS(o.FontFamily)
	text := func(sel string, size float64, extra ...Declaration) Rule {
		decls := []Declaration{
			{"font-family", family},
			{"font-size", px(size)},
		}
		decls = append(decls, extra...)
		if !hasProperty(extra, "fill") {
			decls = append(decls, Declaration{"fill", TextColor})
		}
		return Rule{Selector: sel, Declarations: decls}
	}
	bold := Declaration{"font-weight", "bold"}
	display := "block"
	if !o.ShowGrid {
		display = "none"
	}
	return []Rule{
		text(".chart-title", o.FontSize+6, bold),
		text(".axis-label", o.FontSize+2),
		text(".tick-label", o.FontSize),
		text(".bar-label", o.FontSize),
		text(".value-label", o.FontSize-1, bold),
		text(".value-label-middle", o.FontSize-1, bold, Declaration{"fill", "#fff"}),
		{Selector: ".axis-line", Declarations: []Declaration{
			{"stroke", TextColor},
			{"stroke-width", num(o.BorderWidth + 0.5)},
		}},
		{Selector: ".tick-line", Declarations: []Declaration{
			{"stroke", TextColor},
			{"stroke-width", num(o.BorderWidth)},
		}},
		{Selector: ".grid-line", Declarations: []Declaration{
			{"stroke", "#ddd"},
			{"stroke-width", px(o.GridThickness)},
			{"stroke-opacity", num(o.GridOpacity)},
			{"stroke-dasharray", "2,2"},
			{"display", display},
		}},
	}
}

func hasProperty(decls []Declaration, prop string) bool {
	for _, d := range decls {
		if d.Property == prop {
			return true
		}
	}
	return false
}

// CSS renders the sheet as the text of an inline style element: the base
// rules followed by one ".bar-N" rule per palette entry or grayscale fill.
func (s StyleSheet) CSS() string {
	var b strings.Builder
	for _, r := range s.Base {
		writeRule(&b, r)
	}
	rules := s.Palette
	if s.Key == Grayscale {
		rules = s.Fills
	}
	for i, r := range rules {
		decls := []Declaration{{"fill", r.Fill}}
		if r.Stroke != "" {
			decls = append(decls,
				Declaration{"stroke", r.Stroke},
				Declaration{"stroke-width", num(r.StrokeWidth)},
			)
		}
		writeRule(&b, Rule{Selector: ".bar-" + strconv.Itoa(i), Declarations: decls})
	}
	return b.String()
}

func writeRule(b *strings.Builder, r Rule) {
	b.WriteString(r.Selector)
	b.WriteString(" {")
	for _, d := range r.Declarations {
		b.WriteString(" ")
		b.WriteString(d.Property)
		b.WriteString(": ")
		b.WriteString(d.Value)
		b.WriteString(";")
	}
	b.WriteString(" }\n")
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func px(f float64) string {
	return num(f) + "px"
}
