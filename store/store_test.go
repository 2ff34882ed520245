package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mgilbir/barsmith/chart"
	"github.com/mgilbir/barsmith/store"
)

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	var n atomic.Int64
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		return base.Add(time.Duration(n.Add(1)) * time.Second)
	}
}

type backend struct {
	name string
	open func(t *testing.T, opts ...store.Option) store.Store
}

var backends = []backend{
	{"file", func(t *testing.T, opts ...store.Option) store.Store {
		s, err := store.NewFileStore(t.TempDir(), opts...)
		if err != nil {
			t.Fatalf("NewFileStore: %v", err)
		}
		return s
	}},
	{"badger", func(t *testing.T, opts ...store.Option) store.Store {
		s, err := store.NewBadgerStore(store.BadgerConfig{InMemory: true}, opts...)
		if err != nil {
			t.Fatalf("NewBadgerStore: %v", err)
		}
		return s
	}},
}

func forEachBackend(t *testing.T, fn func(t *testing.T, open func(opts ...store.Option) store.Store)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			fn(t, func(opts ...store.Option) store.Store {
				s := b.open(t, opts...)
				t.Cleanup(func() { s.Close() })
				return s
			})
		})
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"My Chart", "My_Chart"},
		{"Nature期刊示例", "Nature期刊示例"},
		{"a/b\\c..d", "a_b_c__d"},
		{"data-2024", "data_2024"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := store.SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewID(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	if got := store.NewID("My Chart", at); got != "My_Chart_1700000000123" {
		t.Errorf("NewID = %q", got)
	}
}

func TestCheckID(t *testing.T) {
	for _, id := range []string{"My_Chart_1", "Nature期刊示例_example", "0b4f5c1e-9c1d-4f7e-8a51-0a9e4e0d2f10"} {
		if err := store.CheckID(id); err != nil {
			t.Errorf("CheckID(%q) = %v, want nil", id, err)
		}
	}
	for _, id := range []string{"", "../etc", "a/b", "a.json", "a b"} {
		if err := store.CheckID(id); !errors.Is(err, store.ErrInvalidID) {
			t.Errorf("CheckID(%q) = %v, want ErrInvalidID", id, err)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(...store.Option) store.Store) {
		s := open(store.WithClock(stepClock()))
		ctx := context.Background()

		cfg := chart.Default().WithTitle("Expression")
		id, err := s.Save(ctx, "My Chart", cfg)
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if !strings.HasPrefix(id, "My_Chart_") {
			t.Errorf("id = %q, want My_Chart_<millis>", id)
		}

		got, err := s.Load(ctx, id)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got.Chart.Title != "Expression" {
			t.Errorf("Title = %q", got.Chart.Title)
		}
		if len(got.Chart.Bars) != len(cfg.Chart.Bars) {
			t.Errorf("len(Bars) = %d, want %d", len(got.Chart.Bars), len(cfg.Chart.Bars))
		}
		m := got.Metadata
		if m == nil {
			t.Fatal("expected metadata envelope")
		}
		if m.Name != "My Chart" || m.Version != store.Version {
			t.Errorf("metadata = %+v", m)
		}
		if !m.CreatedAt.Equal(m.UpdatedAt) {
			t.Errorf("createdAt %v != updatedAt %v", m.CreatedAt, m.UpdatedAt)
		}
	})
}

func TestSaveRejectsEmptyName(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(...store.Option) store.Store) {
		s := open()
		if _, err := s.Save(context.Background(), "", chart.Default()); !errors.Is(err, store.ErrInvalidName) {
			t.Errorf("Save(\"\") = %v, want ErrInvalidName", err)
		}
	})
}

func TestSaveWithUUIDs(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(...store.Option) store.Store) {
		s := open(store.WithUUIDs())
		id, err := s.Save(context.Background(), "My Chart", chart.Default())
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if len(id) != 36 || strings.Count(id, "-") != 4 {
			t.Errorf("id = %q, want a UUID", id)
		}
	})
}

func TestLoadMissing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(...store.Option) store.Store) {
		s := open()
		ctx := context.Background()
		if _, err := s.Load(ctx, "missing_1"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Load = %v, want ErrNotFound", err)
		}
		if _, err := s.Load(ctx, "../escape"); !errors.Is(err, store.ErrInvalidID) {
			t.Errorf("Load = %v, want ErrInvalidID", err)
		}
	})
}

func TestUpdatePreservesMetadata(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(...store.Option) store.Store) {
		s := open(store.WithClock(stepClock()))
		ctx := context.Background()

		id, err := s.Save(ctx, "Project", chart.Default())
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		before, _ := s.Load(ctx, id)

		if err := s.Update(ctx, id, chart.Default().WithTitle("Renamed")); err != nil {
			t.Fatalf("Update: %v", err)
		}
		after, err := s.Load(ctx, id)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if after.Chart.Title != "Renamed" {
			t.Errorf("Title = %q, want Renamed", after.Chart.Title)
		}
		if after.Metadata.Name != "Project" || after.Metadata.Version != store.Version {
			t.Errorf("metadata not preserved: %+v", after.Metadata)
		}
		if !after.Metadata.CreatedAt.Equal(before.Metadata.CreatedAt) {
			t.Errorf("createdAt changed: %v -> %v", before.Metadata.CreatedAt, after.Metadata.CreatedAt)
		}
		if !after.Metadata.UpdatedAt.After(before.Metadata.UpdatedAt) {
			t.Errorf("updatedAt not bumped: %v -> %v", before.Metadata.UpdatedAt, after.Metadata.UpdatedAt)
		}
	})
}

func TestUpdateCreatesMissing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(...store.Option) store.Store) {
		s := open(store.WithClock(stepClock()))
		ctx := context.Background()

		if err := s.Update(ctx, "fresh_1", chart.Default()); err != nil {
			t.Fatalf("Update: %v", err)
		}
		got, err := s.Load(ctx, "fresh_1")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got.Metadata == nil || got.Metadata.UpdatedAt.IsZero() {
			t.Errorf("expected updatedAt on a created project, got %+v", got.Metadata)
		}
		if got.Metadata.Version != "" {
			t.Errorf("a recreated project has no version, got %q", got.Metadata.Version)
		}
	})
}

func TestDelete(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(...store.Option) store.Store) {
		s := open()
		ctx := context.Background()

		id, err := s.Save(ctx, "Doomed", chart.Default())
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := s.Delete(ctx, id); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Load(ctx, id); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Load after delete = %v, want ErrNotFound", err)
		}
		if err := s.Delete(ctx, id); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("second Delete = %v, want ErrNotFound", err)
		}
	})
}

func TestListNewestFirst(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(...store.Option) store.Store) {
		s := open(store.WithClock(stepClock()))
		ctx := context.Background()

		first, _ := s.Save(ctx, "First", chart.Default().WithTitle("Alpha"))
		second, _ := s.Save(ctx, "Second", chart.Default().WithTitle(""))

		// FileStore orders by mtime; pin it so the order does not depend
		// on filesystem timestamp resolution.
		if fs, ok := s.(*store.FileStore); ok {
			old := time.Now().Add(-time.Hour)
			os.Chtimes(filepath.Join(fs.Dir(), "projects", first+".json"), old, old)
		}

		projects, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(projects) != 2 {
			t.Fatalf("len(projects) = %d, want 2", len(projects))
		}
		if projects[0].ID != second || projects[1].ID != first {
			t.Errorf("order = [%s %s], want [%s %s]", projects[0].ID, projects[1].ID, second, first)
		}
		if projects[1].Name != "Alpha" {
			t.Errorf("Name = %q, want the chart title", projects[1].Name)
		}
		if projects[0].Name != second {
			t.Errorf("Name = %q, want the id of an untitled chart", projects[0].Name)
		}
		if projects[0].Size <= 0 {
			t.Errorf("Size = %d, want > 0", projects[0].Size)
		}
	})
}

func TestFileStoreListSkipsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	if _, err := s.Save(ctx, "Good", chart.Default()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	os.WriteFile(filepath.Join(dir, "projects", "broken.json"), []byte("{not json"), 0o644)
	os.WriteFile(filepath.Join(dir, "projects", "notes.txt"), []byte("ignored"), 0o644)

	projects, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("len(projects) = %d, want 1", len(projects))
	}
}

func TestFileStoreWritesPrettyJSON(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()

	id, err := s.Save(context.Background(), "Pretty", chart.Default())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "projects", id+".json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"chart\": {") {
		t.Errorf("expected two-space indented JSON, got: %.80s", data)
	}
	if !strings.Contains(string(data), `"version": "1.0.0"`) {
		t.Errorf("expected version in metadata: %s", data)
	}
}

func TestDefaultConfig(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(...store.Option) store.Store) {
		s := open()
		ctx := context.Background()

		got, err := s.LoadDefault(ctx)
		if err != nil {
			t.Fatalf("LoadDefault: %v", err)
		}
		if got.Chart.Title != chart.Default().Chart.Title {
			t.Errorf("unsaved default Title = %q, want the built-in default", got.Chart.Title)
		}

		if err := s.SaveDefault(ctx, chart.Default().WithTitle("Mine")); err != nil {
			t.Fatalf("SaveDefault: %v", err)
		}
		got, err = s.LoadDefault(ctx)
		if err != nil {
			t.Fatalf("LoadDefault: %v", err)
		}
		if got.Chart.Title != "Mine" {
			t.Errorf("Title = %q, want Mine", got.Chart.Title)
		}

		projects, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(projects) != 0 {
			t.Errorf("the default must not be listed as a project, got %d", len(projects))
		}
	})
}

func TestSeed(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open func(...store.Option) store.Store) {
		s := open()
		ctx := context.Background()

		ids, err := store.Seed(ctx, s)
		if err != nil {
			t.Fatalf("Seed: %v", err)
		}
		want := []string{"Nature期刊示例_example", "IEEE会议示例_example"}
		if len(ids) != len(want) {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
		for i, id := range want {
			if ids[i] != id {
				t.Errorf("ids[%d] = %q, want %q", i, ids[i], id)
			}
			cfg, err := s.Load(ctx, id)
			if err != nil {
				t.Fatalf("Load(%s): %v", id, err)
			}
			if cfg.Metadata == nil || !cfg.Metadata.IsExample {
				t.Errorf("%s should be marked as an example", id)
			}
			if len(cfg.Chart.Bars) != 4 {
				t.Errorf("%s has %d bars, want 4", id, len(cfg.Chart.Bars))
			}
		}

		// Seeding again replaces the examples.
		if _, err := store.Seed(ctx, s); err != nil {
			t.Fatalf("second Seed: %v", err)
		}
		projects, _ := s.List(ctx)
		if len(projects) != 2 {
			t.Errorf("len(projects) = %d, want 2", len(projects))
		}
	})
}
