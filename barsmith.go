// Package barsmith renders academic bar charts to SVG from a chart
// configuration document.
//
// Basic usage:
//
//	r, err := barsmith.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	cfg, err := chart.Decode(f)
//	svg := r.SVG(cfg)
//
// Every render is an independent computation over its configuration
// snapshot; a Renderer may be shared between goroutines.
package barsmith

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/mgilbir/barsmith/chart"
	"github.com/mgilbir/barsmith/internal/document"
	"github.com/mgilbir/barsmith/internal/geometry"
	"github.com/mgilbir/barsmith/internal/layout"
	"github.com/mgilbir/barsmith/internal/logging"
	"github.com/mgilbir/barsmith/internal/svgout"
	"github.com/mgilbir/barsmith/internal/textmeasure"
	"github.com/mgilbir/barsmith/internal/theme"
)

// Margins are the distances between the canvas edge and the plot area.
type Margins = layout.Margins

var (
	// DefaultMargins frame the interactive chart.
	DefaultMargins = layout.DefaultMargins
	// LegacyExportMargins reproduce the frame of the original export route.
	LegacyExportMargins = layout.LegacyExportMargins
)

// Renderer turns chart configurations into SVG documents.
type Renderer struct {
	theme    string
	margins  Margins
	measurer *textmeasure.Measurer
	loader   Loader
	logger   *bolt.Logger
}

// New creates a new Renderer with the given options.
func New(opts ...Option) (*Renderer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var measurer *textmeasure.Measurer
	if cfg.textMeasure {
		var err error
		measurer, err = textmeasure.New()
		if err != nil {
			return nil, fmt.Errorf("barsmith: initializing text measurer: %w", err)
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Renderer{
		theme:    cfg.theme,
		margins:  cfg.margins,
		measurer: measurer,
		loader:   cfg.loader,
		logger:   logger,
	}, nil
}

// Close releases all resources held by the Renderer, including the loader
// when it implements io.Closer.
func (r *Renderer) Close() error {
	if c, ok := r.loader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Chart is one assembled chart. It is immutable; exporting it does not
// recompute layout.
type Chart struct {
	doc   document.Document
	title string
	// NoData is set when no bar could be drawn and the chart holds only the
	// placeholder message.
	NoData bool
	// Bars is the number of bars drawn.
	Bars int
}

// Title returns the chart title.
func (c *Chart) Title() string { return c.title }

// SVG serializes the chart.
func (c *Chart) SVG() []byte {
	return svgout.Serialize(c.doc)
}

// WriteSVG streams the chart to w.
func (c *Chart) WriteSVG(w io.Writer) error {
	return svgout.Write(w, c.doc)
}

// Render runs the full pipeline over cfg: theme resolution, layout, bar
// geometry and document assembly. Malformed bars are skipped and never
// produce an error.
func (r *Renderer) Render(cfg chart.Config) *Chart {
	start := time.Now()
	if r.theme != "" {
		cfg = cfg.WithTheme(r.theme)
	}

	key := theme.ParseKey(cfg.Style.Theme)
	sheet := theme.Resolve(key, theme.OptionsFrom(cfg), cfg.Chart.Bars)
	g := layout.Compute(cfg, r.margins)

	var opts geometry.Options
	if r.measurer != nil {
		opts.Measurer = r.measurer
	}
	bars := geometry.Build(cfg, g, sheet, opts)
	doc := document.Assemble(cfg, g, sheet, bars)

	logging.NewEvent(r.logger.Debug()).
		Add(logging.Component("renderer")).
		Add(logging.Theme(string(key))).
		Add(logging.ChartType(string(g.Type))).
		Add(logging.BarCount(len(cfg.Chart.Bars), len(g.Slots))).
		Add(logging.Duration(time.Since(start))).
		Msg("chart rendered")
	if g.NoData {
		logging.NewEvent(r.logger.Warn()).
			Add(logging.Component("renderer")).
			Add(logging.BarCount(len(cfg.Chart.Bars), 0)).
			Msg("no renderable bars")
	}

	return &Chart{
		doc:    doc,
		title:  cfg.Chart.Title,
		NoData: g.NoData,
		Bars:   len(g.Slots),
	}
}

// SVG renders cfg and serializes it.
func (r *Renderer) SVG(cfg chart.Config) []byte {
	return r.Render(cfg).SVG()
}

// LoadConfig fetches a configuration document through the Renderer's
// loader. YAML is accepted for .yaml and .yml URIs.
func (r *Renderer) LoadConfig(ctx context.Context, uri string) (chart.Config, error) {
	sanitized, err := r.loader.Sanitize(ctx, uri)
	if err != nil {
		return chart.Config{}, err
	}
	data, err := r.loader.Load(ctx, sanitized)
	if err != nil {
		return chart.Config{}, err
	}
	cfg, err := chart.DecodeFile(sanitized, data)
	if err != nil {
		return chart.Config{}, fmt.Errorf("barsmith: loading %q: %w", uri, err)
	}
	logging.NewEvent(r.logger.Debug()).
		Add(logging.Component("loader")).
		Add(logging.Path(sanitized)).
		Add(logging.Bytes(len(data))).
		Msg("configuration loaded")
	return cfg, nil
}
