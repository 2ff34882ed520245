package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgilbir/barsmith/chart"
	"github.com/mgilbir/barsmith/internal/importer"
	"github.com/mgilbir/barsmith/store"
)

type importOptions struct {
	base      string
	output    string
	nameCol   string
	valueCols []string
	sheet     string
}

func (o *importOptions) register(cmd *cobra.Command, table bool) {
	f := cmd.Flags()
	f.StringVar(&o.base, "base", "", "configuration to import into (default: stored default)")
	f.StringVarP(&o.output, "output", "o", "", "output configuration file (omit for stdout)")
	if table {
		f.StringVar(&o.nameCol, "name-col", "", "column holding bar names (default: first)")
		f.StringArrayVar(&o.valueCols, "value-col", nil, "column holding bar values, repeat for stacked bars (default: second)")
	}
}

func (a *App) newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Build a chart configuration from tabular data or a style document",
	}

	csvOpts := &importOptions{}
	csvCmd := &cobra.Command{
		Use:   "csv <file>",
		Short: "Import bars from a comma separated file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			table, err := importer.ParseDelimitedTable(f)
			if err != nil {
				return err
			}
			return a.importTable(cmd.Context(), table, csvOpts)
		},
	}
	csvOpts.register(csvCmd, true)

	xlsxOpts := &importOptions{}
	xlsxCmd := &cobra.Command{
		Use:   "xlsx <file>",
		Short: "Import bars from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := importer.ParseWorkbook(args[0], xlsxOpts.sheet)
			if err != nil {
				return err
			}
			return a.importTable(cmd.Context(), table, xlsxOpts)
		},
	}
	xlsxOpts.register(xlsxCmd, true)
	xlsxCmd.Flags().StringVar(&xlsxOpts.sheet, "sheet", "", "sheet name (default: first sheet)")

	xmlOpts := &importOptions{}
	xmlCmd := &cobra.Command{
		Use:   "xml <file>",
		Short: "Import theme and background from a style document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			style, err := importer.ParseStyleDocument(f)
			if err != nil {
				return err
			}
			base, err := a.importBase(cmd.Context(), xmlOpts.base)
			if err != nil {
				return err
			}
			return a.writeConfig(xmlOpts.output, style.Apply(base))
		},
	}
	xmlOpts.register(xmlCmd, false)

	template := &cobra.Command{
		Use:       "template csv|xml",
		Short:     "Print an import template",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"csv", "xml"},
		RunE: func(cmd *cobra.Command, args []string) error {
			t := importer.CSVTemplate
			if args[0] == "xml" {
				t = importer.StyleTemplate
			}
			_, err := fmt.Fprint(a.stdout, t)
			return err
		},
	}

	cmd.AddCommand(csvCmd, xlsxCmd, xmlCmd, template)
	return cmd
}

// importBase returns the configuration that imported data is merged into.
func (a *App) importBase(ctx context.Context, path string) (chart.Config, error) {
	if path != "" {
		return a.readConfig(path, false)
	}
	var cfg chart.Config
	err := a.withStore(func(s store.Store) (err error) {
		cfg, err = s.LoadDefault(ctx)
		return err
	})
	return cfg, err
}

func (a *App) importTable(ctx context.Context, table importer.Table, opts *importOptions) error {
	bars, err := table.Bars(opts.nameCol, opts.valueCols...)
	if err != nil {
		return err
	}
	base, err := a.importBase(ctx, opts.base)
	if err != nil {
		return err
	}
	cfg := base.WithBars(bars...)
	if len(opts.valueCols) > 1 {
		cfg = cfg.WithChartType(chart.StackedPercentage)
	}
	return a.writeConfig(opts.output, cfg)
}

func (a *App) newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write the example projects into the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s store.Store) error {
				ids, err := store.Seed(cmd.Context(), s)
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(a.stdout, id)
				}
				return nil
			})
		},
	}
}
