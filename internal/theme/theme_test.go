package theme

import (
	"strings"
	"testing"

	"github.com/mgilbir/barsmith/chart"
)

func defaultOptions() Options {
	return OptionsFrom(chart.Config{})
}

func TestParseKey(t *testing.T) {
	tests := map[string]Key{
		"nature":    Nature,
		"NEJM":      NEJM,
		" ieee ":    IEEE,
		"grayscale": Grayscale,
		"":          Default,
		"neon":      Default,
	}
	for in, want := range tests {
		if got := ParseKey(in); got != want {
			t.Errorf("ParseKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPaletteCycles(t *testing.T) {
	sheet := Resolve(Science, defaultOptions(), nil)
	first, ok := sheet.BarFill(0)
	if !ok || first != "#2E86AB" {
		t.Fatalf("bar 0: got %q, %v", first, ok)
	}
	sixth, _ := sheet.BarFill(5)
	if sixth != first {
		t.Errorf("bar 5 should cycle to bar 0: got %q", sixth)
	}
	if got, _ := sheet.ClassFill(7); got != "#F18F01" {
		t.Errorf("class 7: got %q", got)
	}
}

func TestEveryThemeHasFiveColors(t *testing.T) {
	for _, k := range Keys {
		if k == Grayscale {
			continue
		}
		sheet := Resolve(k, defaultOptions(), nil)
		if len(sheet.Palette) != PaletteSize {
			t.Errorf("%s: got %d palette entries", k, len(sheet.Palette))
		}
	}
}

func TestMinimalThemeStrokes(t *testing.T) {
	sheet := Resolve(Minimal, Options{BorderWidth: 2, FontSize: 12}, nil)
	rule := sheet.Palette[3]
	if rule.Fill != "white" || rule.Stroke != TextColor || rule.StrokeWidth != 3 {
		t.Errorf("unexpected minimal rule: %+v", rule)
	}
	if stroke, width, ok := sheet.BarStroke(8); !ok || stroke != TextColor || width != 3 {
		t.Errorf("BarStroke(8) = %q, %v, %v", stroke, width, ok)
	}
	if _, _, ok := Resolve(Nature, Options{BorderWidth: 2}, nil).BarStroke(0); ok {
		t.Error("nature theme should not outline bars")
	}
}

func scalarBars(values ...float64) []chart.Bar {
	bars := make([]chart.Bar, len(values))
	for i, v := range values {
		bars[i] = chart.Bar{Name: string(rune('A' + i)), Value: chart.Scalar(v)}
	}
	return bars
}

func TestGrayscaleExtremes(t *testing.T) {
	sheet := Resolve(Grayscale, defaultOptions(), scalarBars(30, 10, 20))

	lightest, _ := sheet.BarFill(1)
	darkest, _ := sheet.BarFill(0)
	middle, _ := sheet.BarFill(2)

	if lightest != "rgb(255, 255, 255)" {
		t.Errorf("min value: got %q", lightest)
	}
	if darkest != "rgb(75, 75, 75)" {
		t.Errorf("max value: got %q", darkest)
	}
	if middle != "rgb(165, 165, 165)" {
		t.Errorf("mid value: got %q", middle)
	}
}

func TestGrayscaleTiesAreNeutral(t *testing.T) {
	sheet := Resolve(Grayscale, defaultOptions(), scalarBars(7, 7, 7))
	want := GrayColor(Gray(0, 0, 0))
	for i := 0; i < 3; i++ {
		got, ok := sheet.BarFill(i)
		if !ok || got != want {
			t.Errorf("bar %d: got %q, want %q", i, got, want)
		}
	}
	if want != "rgb(165, 165, 165)" {
		t.Errorf("neutral gray: got %q", want)
	}
}

func TestGrayscaleSkipsInvalidBars(t *testing.T) {
	bars := []chart.Bar{
		{Name: "A", Value: chart.Scalar(0)},
		{Name: "B"},
		{Name: "C", Value: chart.Stacked(1, 2)},
		{Name: "D", Value: chart.Scalar(10)},
	}
	sheet := Resolve(Grayscale, defaultOptions(), bars)
	if len(sheet.Fills) != 2 {
		t.Fatalf("expected 2 fills, got %d", len(sheet.Fills))
	}
	if _, ok := sheet.BarFill(1); ok {
		t.Error("bar without value should have no fill")
	}
	if got, _ := sheet.BarFill(3); got != "rgb(75, 75, 75)" {
		t.Errorf("bar 3: got %q", got)
	}
	if got, _ := sheet.ClassFill(1); got != "rgb(75, 75, 75)" {
		t.Errorf("class 1 is the second valid bar: got %q", got)
	}
}

func TestGrayscaleWithoutBarsHasBaseRulesOnly(t *testing.T) {
	for name, bars := range map[string][]chart.Bar{
		"none":    nil,
		"invalid": {{Name: "A"}},
	} {
		t.Run(name, func(t *testing.T) {
			sheet := Resolve(Grayscale, defaultOptions(), bars)
			if sheet.HasBarRules() {
				t.Error("expected no bar rules")
			}
			if len(sheet.Base) == 0 {
				t.Error("expected base rules")
			}
			if strings.Contains(sheet.CSS(), ".bar-0") {
				t.Error("CSS should not contain bar rules")
			}
		})
	}
}

func TestBaseRulesFollowOptions(t *testing.T) {
	showGrid := false
	cfg := chart.Config{Style: chart.Style{FontFamily: "arial", FontSize: 10, BorderWidth: 2, ShowGrid: &showGrid}}
	css := Resolve(Default, OptionsFrom(cfg), nil).CSS()

	for _, want := range []string{
		".chart-title { font-family: Arial, sans-serif; font-size: 16px; font-weight: bold; fill: #000; }",
		".axis-label { font-family: Arial, sans-serif; font-size: 12px; fill: #000; }",
		".value-label-middle { font-family: Arial, sans-serif; font-size: 9px; font-weight: bold; fill: #fff; }",
		".axis-line { stroke: #000; stroke-width: 2.5; }",
		"display: none;",
		".bar-4 { fill: #8b5cf6; }",
	} {
		if !strings.Contains(css, want) {
			t.Errorf("CSS missing %q\n%s", want, css)
		}
	}
}

func TestFontFamilyCSS(t *testing.T) {
	tests := map[string]string{
		"times":     "'Times New Roman', serif",
		"arial":     "Arial, sans-serif",
		"helvetica": "Helvetica, Arial, sans-serif",
		"calibri":   "Calibri, Arial, sans-serif",
		"unknown":   "'Times New Roman', serif",
	}
	for in, want := range tests {
		if got := FontFamilyCSS(in); got != want {
			t.Errorf("FontFamilyCSS(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveIsPure(t *testing.T) {
	bars := scalarBars(1, 2, 3)
	a := Resolve(Grayscale, defaultOptions(), bars).CSS()
	b := Resolve(Grayscale, defaultOptions(), bars).CSS()
	if a != b {
		t.Error("Resolve should be deterministic")
	}
	if v, _ := bars[0].Value.Float(); v != 1 {
		t.Error("Resolve mutated its input")
	}
}
