// Package store persists chart configurations as named projects, plus one
// default configuration.
//
// Two backends are provided: FileStore keeps one pretty-printed JSON file
// per project under projects/ and the default under config/, and
// BadgerStore keeps both in an embedded BadgerDB.
package store

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/google/uuid"

	"github.com/mgilbir/barsmith/chart"
	"github.com/mgilbir/barsmith/internal/logging"
)

// Version is stamped into the metadata of every saved project.
const Version = "1.0.0"

var (
	ErrNotFound    = errors.New("store: project not found")
	ErrInvalidName = errors.New("store: project name must not be empty")
	ErrInvalidID   = errors.New("store: invalid project id")
)

// Project describes one stored project.
type Project struct {
	ID   string
	Name string
	// LastModified is the file modification time for FileStore and the
	// metadata update time for BadgerStore.
	LastModified time.Time
	Size         int64
	Config       chart.Config
}

// Store is a project repository. Implementations are safe for concurrent
// use.
type Store interface {
	// List returns every readable project, newest first. Unreadable
	// entries are skipped.
	List(ctx context.Context) ([]Project, error)
	Load(ctx context.Context, id string) (chart.Config, error)
	// Save stores cfg as a new project and returns its id.
	Save(ctx context.Context, name string, cfg chart.Config) (string, error)
	// Update replaces a project, keeping its metadata and bumping
	// updatedAt. A missing project is created.
	Update(ctx context.Context, id string, cfg chart.Config) error
	// Put writes cfg under id as is.
	Put(ctx context.Context, id string, cfg chart.Config) error
	Delete(ctx context.Context, id string) error
	// LoadDefault returns the saved default configuration, or chart.Default
	// when none was saved.
	LoadDefault(ctx context.Context) (chart.Config, error)
	SaveDefault(ctx context.Context, cfg chart.Config) error
	Close() error
}

// Option configures a store.
type Option func(*options)

type options struct {
	logger *bolt.Logger
	now    func() time.Time
	uuids  bool
}

func defaultOptions() options {
	return options{
		logger: logging.Discard(),
		now:    time.Now,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l *bolt.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithUUIDs mints random UUIDs as project ids instead of deriving them from
// the project name.
func WithUUIDs() Option {
	return func(o *options) {
		o.uuids = true
	}
}

var (
	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9\x{4e00}-\x{9fa5}]`)
	validID         = regexp.MustCompile(`^[a-zA-Z0-9_\-\x{4e00}-\x{9fa5}]+$`)
)

// SanitizeName replaces every character outside ASCII letters, digits and
// the CJK unified ideographs with an underscore.
func SanitizeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// NewID derives a project id from its name and creation time.
func NewID(name string, at time.Time) string {
	return SanitizeName(name) + "_" + strconv.FormatInt(at.UnixMilli(), 10)
}

// CheckID rejects ids that could escape the project namespace.
func CheckID(id string) error {
	if !validID.MatchString(id) {
		return ErrInvalidID
	}
	return nil
}

func (o options) newID(name string, at time.Time) string {
	if o.uuids {
		return uuid.NewString()
	}
	return NewID(name, at)
}

// stamp attaches a fresh metadata envelope to a new project.
func stamp(cfg chart.Config, name string, at time.Time) chart.Config {
	out := cfg.Clone()
	out.Metadata = &chart.Metadata{
		Name:      name,
		CreatedAt: at,
		UpdatedAt: at,
		Version:   Version,
	}
	return out
}

// restamp keeps the previous metadata of a project and bumps updatedAt.
func restamp(cfg chart.Config, prev *chart.Metadata, at time.Time) chart.Config {
	out := cfg.Clone()
	m := chart.Metadata{}
	if prev != nil {
		m = *prev
	}
	m.UpdatedAt = at
	out.Metadata = &m
	return out
}

// displayName is the chart title, or the id when the chart is untitled.
func displayName(id string, cfg chart.Config) string {
	if cfg.Chart.Title != "" {
		return cfg.Chart.Title
	}
	return id
}

func sortNewestFirst(ps []Project) {
	sort.SliceStable(ps, func(i, j int) bool {
		return ps[i].LastModified.After(ps[j].LastModified)
	})
}
