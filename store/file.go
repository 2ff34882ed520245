package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mgilbir/barsmith/chart"
	"github.com/mgilbir/barsmith/internal/logging"
)

const (
	projectsDir = "projects"
	configDir   = "config"
	defaultFile = "config/chart-config.json"
)

// FileStore keeps projects as JSON files below a base directory. All file
// access goes through an os.Root, so no id can reach outside it.
type FileStore struct {
	dir  string
	opts options

	mu   sync.Mutex
	root *os.Root
}

// NewFileStore opens dir, creating it and its projects/ and config/
// subdirectories when missing.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	for _, sub := range []string{projectsDir, configDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("store: creating %s: %w", sub, err)
		}
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("store: opening %q: %w", dir, err)
	}
	return &FileStore{dir: dir, opts: applyOptions(opts), root: root}, nil
}

// Dir returns the base directory.
func (s *FileStore) Dir() string { return s.dir }

// Close releases the directory handle. It is safe to call more than once.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.root == nil {
		return nil
	}
	err := s.root.Close()
	s.root = nil
	return err
}

func (s *FileStore) handle() (*os.Root, error) {
	if s.root == nil {
		return nil, errors.New("store: file store is closed")
	}
	return s.root, nil
}

func projectFile(id string) string {
	return path.Join(projectsDir, id+".json")
}

func (s *FileStore) List(ctx context.Context) ([]Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	root, err := s.handle()
	if err != nil {
		return nil, err
	}

	dir, err := root.Open(projectsDir)
	if err != nil {
		return nil, fmt.Errorf("store: listing projects: %w", err)
	}
	entries, err := dir.ReadDir(-1)
	dir.Close()
	if err != nil {
		return nil, fmt.Errorf("store: listing projects: %w", err)
	}

	projects := make([]Project, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		info, err := e.Info()
		if err != nil {
			continue
		}
		cfg, err := s.read(root, projectFile(id))
		if err != nil {
			logging.NewEvent(s.opts.logger.Debug()).
				Add(logging.Component("store")).
				Add(logging.Path(e.Name())).
				Add(logging.ErrorField(err)).
				Msg("skipping unreadable project")
			continue
		}
		projects = append(projects, Project{
			ID:           id,
			Name:         displayName(id, cfg),
			LastModified: info.ModTime(),
			Size:         info.Size(),
			Config:       cfg,
		})
	}
	sortNewestFirst(projects)
	return projects, nil
}

func (s *FileStore) Load(_ context.Context, id string) (chart.Config, error) {
	if err := CheckID(id); err != nil {
		return chart.Config{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	root, err := s.handle()
	if err != nil {
		return chart.Config{}, err
	}
	return s.read(root, projectFile(id))
}

func (s *FileStore) Save(ctx context.Context, name string, cfg chart.Config) (string, error) {
	if name == "" {
		return "", ErrInvalidName
	}
	now := s.opts.now()
	id := s.opts.newID(name, now)
	if err := s.Put(ctx, id, stamp(cfg, name, now)); err != nil {
		return "", err
	}
	logging.NewEvent(s.opts.logger.Info()).
		Add(logging.Component("store")).
		Add(logging.Operation("save")).
		Add(logging.ProjectID(id)).
		Msg("project saved")
	return id, nil
}

func (s *FileStore) Update(ctx context.Context, id string, cfg chart.Config) error {
	if err := CheckID(id); err != nil {
		return err
	}
	// A missing or unreadable project is recreated without history.
	var prev *chart.Metadata
	if existing, err := s.Load(ctx, id); err == nil {
		prev = existing.Metadata
	}
	return s.Put(ctx, id, restamp(cfg, prev, s.opts.now()))
}

func (s *FileStore) Put(_ context.Context, id string, cfg chart.Config) error {
	if err := CheckID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	root, err := s.handle()
	if err != nil {
		return err
	}
	return s.write(root, projectFile(id), cfg)
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	if err := CheckID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	root, err := s.handle()
	if err != nil {
		return err
	}
	if err := root.Remove(projectFile(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("store: deleting %s: %w", id, err)
	}
	logging.NewEvent(s.opts.logger.Info()).
		Add(logging.Component("store")).
		Add(logging.Operation("delete")).
		Add(logging.ProjectID(id)).
		Msg("project deleted")
	return nil
}

func (s *FileStore) LoadDefault(_ context.Context) (chart.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	root, err := s.handle()
	if err != nil {
		return chart.Config{}, err
	}
	cfg, err := s.read(root, defaultFile)
	if errors.Is(err, ErrNotFound) {
		return chart.Default(), nil
	}
	return cfg, err
}

func (s *FileStore) SaveDefault(_ context.Context, cfg chart.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	root, err := s.handle()
	if err != nil {
		return err
	}
	return s.write(root, defaultFile, cfg)
}

func (s *FileStore) read(root *os.Root, name string) (chart.Config, error) {
	f, err := root.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return chart.Config{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return chart.Config{}, fmt.Errorf("store: opening %s: %w", name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return chart.Config{}, fmt.Errorf("store: reading %s: %w", name, err)
	}
	return chart.Unmarshal(data)
}

func (s *FileStore) write(root *os.Root, name string, cfg chart.Config) error {
	data, err := chart.Marshal(cfg)
	if err != nil {
		return err
	}
	f, err := root.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("store: writing %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("store: writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("store: writing %s: %w", name, err)
	}
	return nil
}
