package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mgilbir/barsmith/internal/logging"
	"github.com/mgilbir/barsmith/store"
)

type batchOptions struct {
	outDir      string
	concurrency int
}

func (a *App) newBatchCmd() *cobra.Command {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Render every stored project to SVG",
		Long: `Render every project in the store to <id>.svg in the output directory.
Projects are rendered concurrently.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.batch(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.outDir, "output", "o", ".", "output directory")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "c", runtime.NumCPU(), "maximum concurrent renders")
	return cmd
}

func (a *App) batch(ctx context.Context, opts *batchOptions) (err error) {
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
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

	var written atomic.Int64
	err = a.withStore(func(s store.Store) error {
		projects, err := s.List(ctx)
		if err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(ctx)
		if opts.concurrency > 0 {
			g.SetLimit(opts.concurrency)
		}
		for _, p := range projects {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				cfg, err := s.Load(ctx, p.ID)
				if err != nil {
					return fmt.Errorf("project %s: %w", p.ID, err)
				}
				svg := r.SVG(cfg)
				path := filepath.Join(opts.outDir, p.ID+".svg")
				if err := os.WriteFile(path, svg, 0o644); err != nil {
					return err
				}
				written.Add(1)
				logging.NewEvent(a.logger.Info()).
					Add(logging.Component("batch")).
					Add(logging.ProjectID(p.ID)).
					Add(logging.Path(path)).
					Add(logging.Bytes(len(svg))).
					Msg("chart rendered")
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "rendered %d charts to %s\n", written.Load(), opts.outDir)
	return nil
}
