// Package textmeasure provides text width measurement using go-text/typesetting.
// It parses CSS font strings (e.g. "bold 12px 'Times New Roman', serif") and
// uses HarfBuzz-based shaping to size chart labels.
package textmeasure

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/fontscan"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// FallbackFamily is the embedded family every query falls back to.
const FallbackFamily = "Go"

// MeasurerOption configures a Measurer.
type MeasurerOption func(*measurerConfig)

type measurerConfig struct {
	systemFonts bool
	fonts       []customFont
}

type customFont struct {
	family string
	data   []byte
}

// WithSystemFonts enables scanning of system-installed fonts, so that
// "Times New Roman" or "Arial" measure with their real metrics when present.
func WithSystemFonts() MeasurerOption {
	return func(c *measurerConfig) {
		c.systemFonts = true
	}
}

// WithFont registers a custom TTF font with the given family name.
// Fonts added later take priority over earlier ones.
func WithFont(family string, ttf []byte) MeasurerOption {
	return func(c *measurerConfig) {
		c.fonts = append(c.fonts, customFont{family: family, data: ttf})
	}
}

// Measurer computes text widths using HarfBuzz shaping. Widths are cached
// per font and text, since the same bar names are measured on every render.
// It is safe for concurrent use.
type Measurer struct {
	mu      sync.Mutex
	fontMap *fontscan.FontMap
	shaper  shaping.HarfbuzzShaper
	widths  map[widthKey]float64
}

type widthKey struct {
	font, text string
}

// maxCached bounds the width cache; it is reset when full.
const maxCached = 4096

// embeddedFaces are always available, so metrics do not depend on the host.
var embeddedFaces = []struct {
	data   []byte
	id     string
	family string
}{
	{goregular.TTF, "go-regular", FallbackFamily},
	{gobold.TTF, "go-bold", FallbackFamily},
	{goitalic.TTF, "go-italic", FallbackFamily},
	{gobolditalic.TTF, "go-bolditalic", FallbackFamily},
	{gomono.TTF, "go-mono", "Go Mono"},
	{gomonobold.TTF, "go-mono-bold", "Go Mono"},
}

// New creates a Measurer backed by the embedded Go fonts, plus system and
// custom fonts when requested.
func New(opts ...MeasurerOption) (*Measurer, error) {
	var cfg measurerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	fm := fontscan.NewFontMap(nil)
	for _, f := range embeddedFaces {
		if err := fm.AddFont(bytes.NewReader(f.data), f.id, f.family); err != nil {
			return nil, fmt.Errorf("textmeasure: loading %s: %w", f.id, err)
		}
	}
	if cfg.systemFonts {
		if err := fm.UseSystemFonts(""); err != nil {
			return nil, fmt.Errorf("textmeasure: scanning system fonts: %w", err)
		}
	}
	for i, f := range cfg.fonts {
		id := "custom-" + strconv.Itoa(i) + "-" + f.family
		if err := fm.AddFont(bytes.NewReader(f.data), id, f.family); err != nil {
			return nil, fmt.Errorf("textmeasure: loading custom font %q: %w", f.family, err)
		}
	}

	return &Measurer{fontMap: fm, widths: make(map[widthKey]float64)}, nil
}

// MeasureText returns the width in pixels of text set in cssFont, a CSS
// font shorthand such as "bold 12px Arial, sans-serif".
func (m *Measurer) MeasureText(text, cssFont string) float64 {
	if text == "" {
		return 0
	}
	key := widthKey{font: cssFont, text: text}

	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.widths[key]; ok {
		return w
	}
	w := m.shape(text, ParseCSSFont(cssFont))
	if len(m.widths) >= maxCached {
		clear(m.widths)
	}
	m.widths[key] = w
	return w
}

// Fits reports whether text set in cssFont is no wider than width.
func (m *Measurer) Fits(text, cssFont string, width float64) bool {
	return m.MeasureText(text, cssFont) <= width
}

// shape runs the shaper over text. m.mu must be held.
func (m *Measurer) shape(text string, f CSSFont) float64 {
	families := append(append([]string(nil), f.Family...), FallbackFamily, fontscan.SansSerif)
	m.fontMap.SetQuery(fontscan.Query{
		Families: families,
		Aspect:   font.Aspect{Style: f.Style, Weight: f.Weight},
	})
	m.fontMap.SetScript(language.Latin)

	runes := []rune(text)
	input := shaping.Input{
		Text:      runes,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Size:      fixed.Int26_6(f.Size * 64),
		Script:    language.Latin,
		Language:  language.NewLanguage("en"),
	}

	var total fixed.Int26_6
	for _, run := range shaping.SplitByFace(input, m.fontMap) {
		total += m.shaper.Shape(run).Advance
	}
	return float64(total) / 64
}

// CSSFont represents a parsed CSS font shorthand string.
type CSSFont struct {
	Style  font.Style
	Weight font.Weight
	Size   float64 // in pixels
	Family []string
}

// Shorthand formats a CSS font shorthand for the given family list.
func Shorthand(family string, size float64, bold bool) string {
	s := strconv.FormatFloat(size, 'f', -1, 64) + "px " + family
	if bold {
		return "bold " + s
	}
	return s
}

// cssFontRe matches CSS font shorthand: [style] [weight] size[px|pt|em] family[, family...]
var cssFontRe = regexp.MustCompile(
	`(?i)` +
		`(?:(italic|oblique)\s+)?` +
		`(?:(bold|bolder|lighter|[1-9]00)\s+)?` +
		`([\d.]+)(?:px|pt|em)?\s+` +
		`(.+)`,
)

// ParseCSSFont parses a CSS font shorthand string like "italic bold 14px Arial, sans-serif".
// Unparseable input yields 12px sans-serif.
func ParseCSSFont(s string) CSSFont {
	result := CSSFont{
		Style:  font.StyleNormal,
		Weight: font.WeightNormal,
		Size:   12,
		Family: []string{"sans-serif"},
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return result
	}
	matches := cssFontRe.FindStringSubmatch(s)
	if matches == nil {
		return result
	}

	if matches[1] != "" {
		result.Style = font.StyleItalic
	}
	if matches[2] != "" {
		result.Weight = parseWeight(matches[2])
	}
	if size, err := strconv.ParseFloat(matches[3], 64); err == nil && size > 0 {
		result.Size = size
	}
	if matches[4] != "" {
		result.Family = parseFamilies(matches[4])
	}
	return result
}

func parseWeight(s string) font.Weight {
	switch strings.ToLower(s) {
	case "bold", "bolder":
		return font.WeightBold
	case "lighter":
		return font.WeightLight
	default:
		if w, err := strconv.Atoi(s); err == nil {
			return font.Weight(w)
		}
		return font.WeightNormal
	}
}

func parseFamilies(s string) []string {
	parts := strings.Split(s, ",")
	families := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.Trim(strings.TrimSpace(p), `"'`))
		if p != "" {
			families = append(families, p)
		}
	}
	if len(families) == 0 {
		return []string{"sans-serif"}
	}
	return families
}
