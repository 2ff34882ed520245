package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgilbir/barsmith/store"
)

func (a *App) newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage saved chart projects",
	}
	cmd.AddCommand(
		a.newProjectListCmd(),
		a.newProjectShowCmd(),
		a.newProjectSaveCmd(),
		a.newProjectUpdateCmd(),
		a.newProjectDeleteCmd(),
	)
	return cmd
}

func (a *App) newProjectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s store.Store) error {
				projects, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tMODIFIED\tSIZE")
				for _, p := range projects {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.ID, p.Name, p.LastModified.Format(time.RFC3339), p.Size)
				}
				return w.Flush()
			})
		},
	}
}

func (a *App) newProjectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a project's configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s store.Store) error {
				cfg, err := s.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.writeConfig("", cfg)
			})
		},
	}
}

type projectInputOptions struct {
	input  string
	asYAML bool
}

func (o *projectInputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.input, "input", "i", "", "configuration file (- or omit for stdin)")
	cmd.Flags().BoolVar(&o.asYAML, "yaml", false, "read stdin as YAML")
}

func (a *App) newProjectSaveCmd() *cobra.Command {
	opts := &projectInputOptions{}
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a configuration as a new project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.readConfig(opts.input, opts.asYAML)
			if err != nil {
				return err
			}
			return a.withStore(func(s store.Store) error {
				id, err := s.Save(cmd.Context(), args[0], cfg)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, id)
				return nil
			})
		},
	}
	opts.register(cmd)
	return cmd
}

func (a *App) newProjectUpdateCmd() *cobra.Command {
	opts := &projectInputOptions{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a project's configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.readConfig(opts.input, opts.asYAML)
			if err != nil {
				return err
			}
			return a.withStore(func(s store.Store) error {
				return s.Update(cmd.Context(), args[0], cfg)
			})
		},
	}
	opts.register(cmd)
	return cmd
}

func (a *App) newProjectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s store.Store) error {
				return s.Delete(cmd.Context(), args[0])
			})
		},
	}
}

func (a *App) newDefaultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "default",
		Short: "Read or replace the default chart configuration",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s store.Store) error {
				cfg, err := s.LoadDefault(cmd.Context())
				if err != nil {
					return err
				}
				return a.writeConfig("", cfg)
			})
		},
	}

	opts := &projectInputOptions{}
	set := &cobra.Command{
		Use:   "set",
		Short: "Replace the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.readConfig(opts.input, opts.asYAML)
			if err != nil {
				return err
			}
			return a.withStore(func(s store.Store) error {
				return s.SaveDefault(cmd.Context(), cfg)
			})
		},
	}
	opts.register(set)

	cmd.AddCommand(get, set)
	return cmd
}
