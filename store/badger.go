package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/mgilbir/barsmith/chart"
	"github.com/mgilbir/barsmith/internal/logging"
)

const (
	projectPrefix = "project:"
	defaultKey    = "default"
)

// BadgerConfig configures BadgerDB storage.
type BadgerConfig struct {
	// Dir is the directory to store data in.
	Dir string

	// InMemory uses in-memory storage (useful for testing).
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// KeyPrefix is added to all keys.
	KeyPrefix string

	// Logger is the badger logger to use (nil for silent).
	Logger badger.Logger
}

// BadgerStore keeps projects in an embedded BadgerDB, one JSON value per
// project under the key "project:<id>" and the default under "default".
type BadgerStore struct {
	db     *badger.DB
	prefix string
	opts   options
}

// NewBadgerStore opens a BadgerDB database with the given configuration.
func NewBadgerStore(cfg BadgerConfig, opts ...Option) (*BadgerStore, error) {
	bopts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		bopts = bopts.WithInMemory(true)
	}
	bopts = bopts.WithSyncWrites(cfg.SyncWrites)
	bopts = bopts.WithNumVersionsToKeep(1)
	// A nil logger silences badger.
	bopts = bopts.WithLogger(cfg.Logger)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("store: opening badger: %w", err)
	}
	return &BadgerStore{db: db, prefix: cfg.KeyPrefix, opts: applyOptions(opts)}, nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) projectKey(id string) []byte {
	return []byte(s.prefix + projectPrefix + id)
}

func (s *BadgerStore) List(ctx context.Context) ([]Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(s.prefix + projectPrefix)
	var projects []Project
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			id := string(item.Key()[len(prefix):])
			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			cfg, err := chart.Unmarshal(data)
			if err != nil {
				logging.NewEvent(s.opts.logger.Debug()).
					Add(logging.Component("store")).
					Add(logging.ProjectID(id)).
					Add(logging.ErrorField(err)).
					Msg("skipping unreadable project")
				continue
			}
			p := Project{
				ID:     id,
				Name:   displayName(id, cfg),
				Size:   int64(len(data)),
				Config: cfg,
			}
			if cfg.Metadata != nil {
				p.LastModified = cfg.Metadata.UpdatedAt
			}
			projects = append(projects, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: listing projects: %w", err)
	}
	sortNewestFirst(projects)
	return projects, nil
}

func (s *BadgerStore) Load(ctx context.Context, id string) (chart.Config, error) {
	if err := CheckID(id); err != nil {
		return chart.Config{}, err
	}
	return s.get(ctx, s.projectKey(id))
}

func (s *BadgerStore) Save(ctx context.Context, name string, cfg chart.Config) (string, error) {
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

func (s *BadgerStore) Update(ctx context.Context, id string, cfg chart.Config) error {
	if err := CheckID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	key := s.projectKey(id)
	return s.db.Update(func(txn *badger.Txn) error {
		var prev *chart.Metadata
		if item, err := txn.Get(key); err == nil {
			if data, err := item.ValueCopy(nil); err == nil {
				if existing, err := chart.Unmarshal(data); err == nil {
					prev = existing.Metadata
				}
			}
		}
		data, err := chart.Marshal(restamp(cfg, prev, s.opts.now()))
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

func (s *BadgerStore) Put(ctx context.Context, id string, cfg chart.Config) error {
	if err := CheckID(id); err != nil {
		return err
	}
	return s.set(ctx, s.projectKey(id), cfg)
}

func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	if err := CheckID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	key := s.projectKey(id)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("store: deleting %s: %w", id, err)
	}
	logging.NewEvent(s.opts.logger.Info()).
		Add(logging.Component("store")).
		Add(logging.Operation("delete")).
		Add(logging.ProjectID(id)).
		Msg("project deleted")
	return nil
}

func (s *BadgerStore) LoadDefault(ctx context.Context) (chart.Config, error) {
	cfg, err := s.get(ctx, []byte(s.prefix+defaultKey))
	if errors.Is(err, ErrNotFound) {
		return chart.Default(), nil
	}
	return cfg, err
}

func (s *BadgerStore) SaveDefault(ctx context.Context, cfg chart.Config) error {
	return s.set(ctx, []byte(s.prefix+defaultKey), cfg)
}

func (s *BadgerStore) get(ctx context.Context, key []byte) (chart.Config, error) {
	if err := ctx.Err(); err != nil {
		return chart.Config{}, err
	}
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return chart.Config{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return chart.Config{}, fmt.Errorf("store: reading %s: %w", key, err)
	}
	return chart.Unmarshal(data)
}

func (s *BadgerStore) set(ctx context.Context, key []byte, cfg chart.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := chart.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}
