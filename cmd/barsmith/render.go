package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgilbir/barsmith"
	"github.com/mgilbir/barsmith/chart"
	"github.com/mgilbir/barsmith/store"
)

// sourceOptions select where a chart configuration comes from.
type sourceOptions struct {
	input   string
	uri     string
	project string
	useDef  bool
	asYAML  bool
}

func (o *sourceOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.input, "input", "i", "", "configuration file (- or omit for stdin)")
	f.StringVar(&o.uri, "uri", "", "configuration URI fetched through the loader")
	f.StringVarP(&o.project, "project", "p", "", "stored project id")
	f.BoolVar(&o.useDef, "default", false, "use the stored default configuration")
	f.BoolVar(&o.asYAML, "yaml", false, "read stdin as YAML")
	cmd.MarkFlagsMutuallyExclusive("input", "uri", "project", "default")
}

func (a *App) loadSource(ctx context.Context, r *barsmith.Renderer, o *sourceOptions) (chart.Config, error) {
	switch {
	case o.uri != "":
		return r.LoadConfig(ctx, o.uri)
	case o.project != "":
		var cfg chart.Config
		err := a.withStore(func(s store.Store) (err error) {
			cfg, err = s.Load(ctx, o.project)
			return err
		})
		return cfg, err
	case o.useDef:
		var cfg chart.Config
		err := a.withStore(func(s store.Store) (err error) {
			cfg, err = s.LoadDefault(ctx)
			return err
		})
		return cfg, err
	default:
		return a.readConfig(o.input, o.asYAML)
	}
}

type renderOptions struct {
	source sourceOptions
	output string
}

func (a *App) newRenderCmd() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a chart configuration to SVG",
		Long: `Render a chart configuration to SVG.

Examples:
  barsmith render -i chart.json -o chart.svg
  cat chart.yaml | barsmith render --yaml > chart.svg
  barsmith render --project Nature期刊示例_example
  barsmith render --uri https://example.com/chart.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.render(cmd.Context(), opts)
		},
	}
	opts.source.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output SVG file (omit for stdout)")
	return cmd
}

func (a *App) render(ctx context.Context, opts *renderOptions) (err error) {
	r, err := a.newRenderer()
	if err != nil {
		return err
	}
	defer func() {
		if e := r.Close(); e != nil && err == nil {
			err = e
		}
	}()

	cfg, err := a.loadSource(ctx, r, &opts.source)
	if err != nil {
		return err
	}
	return a.writeOutput(opts.output, r.SVG(cfg))
}

type exportOptions struct {
	source sourceOptions
	output string
	format string
}

func (a *App) newExportCmd() *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a chart as a downloadable file",
		Long: `Export a chart as a file named after its title.

Only SVG can be produced. Asking for PNG fails with exit status 2.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.export(cmd.Context(), opts)
		},
	}
	opts.source.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <title>.<format>, - for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "svg", "export format: svg or png")
	return cmd
}

func (a *App) export(ctx context.Context, opts *exportOptions) (err error) {
	format, err := barsmith.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	r, err := a.newRenderer()
	if err != nil {
		return err
	}
	defer func() {
		if e := r.Close(); e != nil && err == nil {
			err = e
		}
	}()

	cfg, err := a.loadSource(ctx, r, &opts.source)
	if err != nil {
		return err
	}
	art, err := r.Export(cfg, format)
	if errors.Is(err, barsmith.ErrUnsupportedFormat) {
		return &exitError{code: 2, err: err}
	}
	if err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		out = art.Filename
	}
	if err := a.writeOutput(out, art.Data); err != nil {
		return err
	}
	if out != "-" {
		fmt.Fprintf(a.stderr, "wrote %s (%d bytes)\n", out, len(art.Data))
	}
	return nil
}
