package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/spf13/cobra"

	"github.com/mgilbir/barsmith"
	"github.com/mgilbir/barsmith/chart"
	"github.com/mgilbir/barsmith/internal/logging"
	"github.com/mgilbir/barsmith/internal/settings"
	"github.com/mgilbir/barsmith/store"
)

// Version information set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// App is the barsmith command line.
type App struct {
	root   *cobra.Command
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	settingsPath string
	logLevel     string
	logFormat    string
	storeDir     string
	storeBackend string

	settings settings.Settings
	logger   *bolt.Logger
}

// New creates the command tree.
func New() *App {
	a := &App{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	a.root = &cobra.Command{
		Use:   "barsmith",
		Short: "Render publication-style bar charts to SVG",
		Long: `barsmith renders simple and stacked-percentage bar charts from a JSON or
YAML chart configuration, styled with academic journal themes, and keeps
named chart projects in a local store.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := a.root.PersistentFlags()
	pf.StringVar(&a.settingsPath, "config", "", "settings file (default $"+settings.EnvPath+" or "+settings.DefaultPath+")")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: console or json")
	pf.StringVar(&a.storeDir, "store-dir", "", "project store directory")
	pf.StringVar(&a.storeBackend, "store-backend", "", "project store backend: file or badger")

	a.root.AddCommand(
		a.newVersionCmd(),
		a.newRenderCmd(),
		a.newExportCmd(),
		a.newWatchCmd(),
		a.newBatchCmd(),
		a.newProjectCmd(),
		a.newDefaultCmd(),
		a.newImportCmd(),
		a.newSeedCmd(),
	)
	return a
}

// WithIO sets custom input and output streams.
func (a *App) WithIO(stdin io.Reader, stdout, stderr io.Writer) *App {
	a.stdin = stdin
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetIn(stdin)
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the command line until it finishes or is interrupted.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the command line with specific arguments.
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

// setup loads settings, applies flag overrides and builds the logger.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	s, err := settings.Load(a.settingsPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		s.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		s.Log.Format = a.logFormat
	}
	if a.storeDir != "" {
		s.Store.Dir = a.storeDir
	}
	if a.storeBackend != "" {
		s.Store.Backend = a.storeBackend
	}
	if err := s.Validate(); err != nil {
		return err
	}
	a.settings = s

	lc := s.LoggingConfig()
	lc.Output = a.stderr
	a.logger = logging.New(lc)
	logging.NewEvent(a.logger.Debug()).
		Add(logging.Component("cli")).
		Add(logging.Operation(cmd.Name())).
		Msg("settings loaded")
	return nil
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "barsmith version %s\n", Version)
			fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
		},
	}
}

// newRenderer builds a Renderer from the settings. Configuration URIs are
// served from the loader base directory and, when allowed, over HTTP.
func (a *App) newRenderer(opts ...barsmith.Option) (*barsmith.Renderer, error) {
	s := a.settings
	base := []barsmith.Option{barsmith.WithLogger(a.logger)}
	if s.Render.Theme != "" {
		base = append(base, barsmith.WithTheme(s.Render.Theme))
	}
	if s.Render.FitLabels {
		base = append(base, barsmith.WithTextMeasurement(true))
	}
	if s.Render.LegacyMargins {
		base = append(base, barsmith.WithMargins(barsmith.LegacyExportMargins))
	}

	dir := s.Loader.BaseDir
	if dir == "" {
		dir = "."
	}
	loaders := []barsmith.Loader{&barsmith.FileLoader{BaseDir: dir}}
	if s.Loader.AllowHTTP {
		loaders = append(loaders, &barsmith.HTTPLoader{
			AllowedDomains: s.Loader.AllowedDomains,
			BaseURL:        s.Loader.BaseURL,
		})
	}
	base = append(base, barsmith.WithLoader(barsmith.NewFallbackLoader(loaders...)))

	return barsmith.New(append(base, opts...)...)
}

// openStore opens the configured project store.
func (a *App) openStore() (store.Store, error) {
	s := a.settings.Store
	opts := []store.Option{store.WithLogger(a.logger)}
	switch s.Backend {
	case settings.BackendBadger:
		return store.NewBadgerStore(store.BadgerConfig{Dir: filepath.Join(s.Dir, "barsmith.db")}, opts...)
	default:
		return store.NewFileStore(s.Dir, opts...)
	}
}

// withStore runs fn with an open store and closes it afterwards.
func (a *App) withStore(fn func(store.Store) error) (err error) {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() {
		if e := st.Close(); e != nil && err == nil {
			err = e
		}
	}()
	return fn(st)
}

func (a *App) readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(a.stdin)
	}
	return os.ReadFile(path)
}

func (a *App) writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := a.stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// readConfig decodes a configuration file, or stdin for "" and "-". Stdin
// is JSON unless asYAML is set.
func (a *App) readConfig(path string, asYAML bool) (chart.Config, error) {
	data, err := a.readInput(path)
	if err != nil {
		return chart.Config{}, err
	}
	name := path
	if asYAML {
		name = "stdin.yaml"
	}
	return chart.DecodeFile(name, data)
}

func (a *App) writeConfig(path string, cfg chart.Config) error {
	data, err := chart.Marshal(cfg)
	if err != nil {
		return err
	}
	return a.writeOutput(path, append(data, '\n'))
}
