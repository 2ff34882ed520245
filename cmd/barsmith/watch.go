package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/mgilbir/barsmith"
	"github.com/mgilbir/barsmith/internal/logging"
)

type watchOptions struct {
	input  string
	output string
}

func (a *App) newWatchCmd() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render a chart whenever its configuration changes",
		Long: `Render a configuration file, then render it again after every change
until interrupted. Each render replaces the output file completely.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "configuration file (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output SVG file (required)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *App) watch(ctx context.Context, opts *watchOptions) (err error) {
	input, err := filepath.Abs(opts.input)
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

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(input)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", opts.input, err)
	}

	if err := a.redraw(r, input, opts.output); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != input || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			if err := a.redraw(r, input, opts.output); err != nil {
				// Keep the last good output while the file is being edited.
				logging.NewEvent(a.logger.Warn()).
					Add(logging.Component("watch")).
					Add(logging.Path(opts.input)).
					Add(logging.ErrorField(err)).
					Msg("render failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				continue
			}
			return fmt.Errorf("watching %s: %w", opts.input, err)
		}
	}
}

func (a *App) redraw(r *barsmith.Renderer, input, output string) error {
	cfg, err := a.readConfig(input, false)
	if err != nil {
		return err
	}
	svg := r.SVG(cfg)
	if err := a.writeOutput(output, svg); err != nil {
		return err
	}
	logging.NewEvent(a.logger.Info()).
		Add(logging.Component("watch")).
		Add(logging.Path(output)).
		Add(logging.Bytes(len(svg))).
		Msg("chart rendered")
	return nil
}
