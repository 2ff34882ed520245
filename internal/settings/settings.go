// Package settings loads the barsmith tool configuration file.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mgilbir/barsmith/internal/logging"
)

// EnvPath names the environment variable that overrides the settings path.
const EnvPath = "BARSMITH_CONFIG"

// DefaultPath is read when EnvPath is unset.
const DefaultPath = "barsmith.yaml"

var (
	ErrNotFound = errors.New("settings: file not found")
	ErrInvalid  = errors.New("settings: invalid settings")
)

// Store backends.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

// Settings is the tool configuration.
type Settings struct {
	Store  Store  `yaml:"store"`
	Log    Log    `yaml:"log"`
	Render Render `yaml:"render"`
	Loader Loader `yaml:"loader"`
}

// Store selects the project store.
type Store struct {
	// Backend is "file" or "badger".
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
}

// Log configures logging.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Render holds renderer defaults.
type Render struct {
	// Theme overrides the theme of every rendered configuration.
	Theme         string `yaml:"theme"`
	FitLabels     bool   `yaml:"fitLabels"`
	LegacyMargins bool   `yaml:"legacyMargins"`
}

// Loader controls where configuration documents may be read from.
type Loader struct {
	// BaseDir confines file access. Empty means the working directory.
	BaseDir        string   `yaml:"baseDir"`
	AllowHTTP      bool     `yaml:"allowHTTP"`
	AllowedDomains []string `yaml:"allowedDomains"`
	BaseURL        string   `yaml:"baseURL"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	lc := logging.DefaultConfig()
	return Settings{
		Store: Store{Backend: BackendFile, Dir: "."},
		Log:   Log{Level: lc.Level, Format: lc.Format},
		Loader: Loader{
			BaseDir: ".",
		},
	}
}

// Path returns the settings file path: $BARSMITH_CONFIG or DefaultPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the settings file at path. A missing DefaultPath yields the
// defaults; a missing explicit path is an error.
func Load(path string) (Settings, error) {
	explicit := path != ""
	if !explicit {
		path = Path()
		explicit = os.Getenv(EnvPath) != ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if !explicit {
				return Default(), nil
			}
			return Settings{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Settings{}, fmt.Errorf("settings: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML settings over the defaults, after expanding ${VAR} and
// ${VAR:-default} references.
func Parse(data []byte) (Settings, error) {
	s := Default()
	if err := yaml.Unmarshal([]byte(Expand(string(data))), &s); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks enumerated fields.
func (s Settings) Validate() error {
	switch s.Store.Backend {
	case BackendFile, BackendBadger:
	default:
		return fmt.Errorf("%w: store.backend %q (want file or badger)", ErrInvalid, s.Store.Backend)
	}
	switch strings.ToLower(s.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.format %q (want json or console)", ErrInvalid, s.Log.Format)
	}
	return nil
}

// LoggingConfig converts the log section for logging.New.
func (s Settings) LoggingConfig() logging.Config {
	c := logging.DefaultConfig()
	c.Level = s.Log.Level
	c.Format = strings.ToLower(s.Log.Format)
	return c
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-[^}]*)?\}`)

// Expand replaces ${VAR} with the value of VAR, or the empty string when it
// is unset, and ${VAR:-default} with VAR or default when VAR is unset or
// empty.
func Expand(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		m := envRef.FindStringSubmatch(match)
		value, ok := os.LookupEnv(m[1])
		if m[2] != "" && (!ok || value == "") {
			return m[2][2:]
		}
		return value
	})
}
