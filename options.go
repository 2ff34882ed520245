package barsmith

import (
	"github.com/felixgeelhaar/bolt/v3"
)

// Option configures a Renderer.
type Option func(*config)

type config struct {
	loader      Loader
	theme       string
	margins     Margins
	textMeasure bool
	logger      *bolt.Logger
}

func defaultConfig() *config {
	return &config{
		loader:  DenyLoader{},
		margins: DefaultMargins,
	}
}

// WithLoader sets the loader used by LoadConfig.
// By default, all loading is denied (DenyLoader).
func WithLoader(l Loader) Option {
	return func(c *config) {
		c.loader = l
	}
}

// WithTheme forces a theme key for every render, overriding the theme of
// the configuration.
func WithTheme(key string) Option {
	return func(c *config) {
		c.theme = key
	}
}

// WithMargins sets the canvas margins, e.g. LegacyExportMargins.
func WithMargins(m Margins) Option {
	return func(c *config) {
		c.margins = m
	}
}

// WithTextMeasurement controls label fitting. When enabled, bar name labels
// are measured using go-text/typesetting and rotated when wider than their
// bar. It is disabled by default.
func WithTextMeasurement(enabled bool) Option {
	return func(c *config) {
		c.textMeasure = enabled
	}
}

// WithLogger sets the logger for render diagnostics. By default nothing is
// logged.
func WithLogger(l *bolt.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
