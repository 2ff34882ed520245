package barsmith_test

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/mgilbir/barsmith"
	"github.com/mgilbir/barsmith/chart"
)

func loadTestConfig(t *testing.T, name string) chart.Config {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("reading test config: %v", err)
	}
	cfg, err := chart.DecodeFile(name, data)
	if err != nil {
		t.Fatalf("decoding test config: %v", err)
	}
	return cfg
}

func assertWellFormed(t *testing.T, svg []byte) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(svg))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			t.Fatalf("SVG is not well-formed XML: %v\n%s", err, svg)
		}
	}
}

func TestSimpleChartToSVG(t *testing.T) {
	cfg := loadTestConfig(t, "simple.json")

	r, err := barsmith.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	c := r.Render(cfg)
	if c.NoData {
		t.Fatal("expected bars to be drawn")
	}
	if c.Bars != 3 {
		t.Errorf("Bars = %d, want 3", c.Bars)
	}

	svg := c.SVG()
	assertWellFormed(t, svg)
	s := string(svg)
	if !strings.Contains(s, "<svg") || !strings.Contains(s, "</svg>") {
		t.Errorf("expected an SVG document, got: %.100s", s)
	}
	for _, want := range []string{"Gene Expression", ">A<", ">B<", ">C<", "FPKM"} {
		if !strings.Contains(s, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
}

func TestStackedChartToSVG(t *testing.T) {
	cfg := loadTestConfig(t, "stacked.json")

	r, err := barsmith.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	svg := r.SVG(cfg)
	assertWellFormed(t, svg)
	s := string(svg)
	if !strings.Contains(s, "<pattern") {
		t.Error("expected a pattern definition for the diagonal bar")
	}
	if !strings.Contains(s, "100.0%") {
		t.Error("expected percentage tick labels")
	}
}

func TestYAMLConfigToSVG(t *testing.T) {
	cfg := loadTestConfig(t, "grouped.yaml")

	r, err := barsmith.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	svg := string(r.SVG(cfg))
	for _, want := range []string{"#3b82f6", "#ef4444", "group1", "group2"} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
}

func TestNoDataChart(t *testing.T) {
	r, err := barsmith.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	c := r.Render(chart.Default().WithBars())
	if !c.NoData {
		t.Fatal("expected NoData for a chart without bars")
	}
	svg := string(c.SVG())
	if !strings.Contains(svg, "无数据可显示") {
		t.Errorf("expected placeholder message, got: %s", svg)
	}
	if strings.Contains(svg, "<line") {
		t.Error("placeholder must not draw axes")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	cfg := loadTestConfig(t, "simple.json")

	r, err := barsmith.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	first := r.SVG(cfg)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := r.SVG(cfg); !bytes.Equal(got, first) {
				t.Error("concurrent render produced different output")
			}
		}()
	}
	wg.Wait()
}

func TestWithThemeOverridesConfig(t *testing.T) {
	cfg := loadTestConfig(t, "simple.json")

	r, err := barsmith.New(barsmith.WithTheme("grayscale"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	svg := string(r.SVG(cfg))
	if !strings.Contains(svg, "rgb(") {
		t.Errorf("expected grayscale fills, got: %s", svg)
	}
}

func TestWithMargins(t *testing.T) {
	cfg := loadTestConfig(t, "simple.json")

	def, err := barsmith.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer def.Close()
	legacy, err := barsmith.New(barsmith.WithMargins(barsmith.LegacyExportMargins))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer legacy.Close()

	if bytes.Equal(def.SVG(cfg), legacy.SVG(cfg)) {
		t.Error("expected different margins to change the document")
	}
}

func TestWithTextMeasurement(t *testing.T) {
	cfg := loadTestConfig(t, "simple.json")
	cfg.Chart.Bars[0].Name = strings.Repeat("Hippocampus CA1 region ", 6)

	r, err := barsmith.New(barsmith.WithTextMeasurement(true))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	svg := string(r.SVG(cfg))
	if !strings.Contains(svg, "rotate(-45") {
		t.Errorf("expected the long label to be rotated, got: %s", svg)
	}
}

func TestWithLoggerRecordsRender(t *testing.T) {
	var buf bytes.Buffer
	logger := bolt.New(bolt.NewJSONHandler(&buf)).SetLevel(bolt.DEBUG)

	r, err := barsmith.New(barsmith.WithLogger(logger))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	r.Render(loadTestConfig(t, "simple.json"))
	for _, want := range []string{"chart rendered", `"theme":"nature"`, `"drawn":3`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log missing %s: %s", want, buf.String())
		}
	}
}

func TestLoadConfigDeniedByDefault(t *testing.T) {
	r, err := barsmith.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	if _, err := r.LoadConfig(context.Background(), "simple.json"); err == nil {
		t.Fatal("expected the default loader to deny loading")
	}
}

func TestLoadConfigFromFileLoader(t *testing.T) {
	fl, err := barsmith.NewFileLoader("testdata")
	if err != nil {
		t.Fatalf("NewFileLoader: %v", err)
	}
	r, err := barsmith.New(barsmith.WithLoader(fl))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	ctx := context.Background()
	cfg, err := r.LoadConfig(ctx, "grouped.yaml")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Chart.Title != "Treatment Response" {
		t.Errorf("Title = %q", cfg.Chart.Title)
	}
	if len(cfg.Chart.Bars) != 3 {
		t.Errorf("len(Bars) = %d, want 3", len(cfg.Chart.Bars))
	}

	if _, err := r.LoadConfig(ctx, "../go.mod"); err == nil {
		t.Error("expected traversal to be rejected")
	}
}

func TestLoadConfigFromStaticLoader(t *testing.T) {
	static := &barsmith.StaticLoader{Value: chart.Default().WithTitle("Static")}
	r, err := barsmith.New(barsmith.WithLoader(static))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	cfg, err := r.LoadConfig(context.Background(), "inline.json")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Chart.Title != "Static" {
		t.Errorf("Title = %q, want Static", cfg.Chart.Title)
	}
}
