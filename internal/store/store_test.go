package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type rec struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(t.TempDir(), true, nil)
}

func TestLoad_MissingFile(t *testing.T) {
	s := newTestStore(t)

	var out []rec
	if err := s.Load(context.Background(), "anime", &out); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty collection, got %d records", len(out))
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := []rec{{ID: "1", Title: "one"}, {ID: "2", Title: "two"}}
	if err := s.Save(ctx, "anime", in); err != nil {
		t.Fatalf("save: %v", err)
	}

	var out []rec
	if err := s.Load(ctx, "anime", &out); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 2 || out[0].ID != "1" || out[1].Title != "two" {
		t.Fatalf("unexpected round trip result: %+v", out)
	}
}

func TestSave_PrettyPrinted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "anime", []rec{{ID: "1", Title: "one"}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(s.Path("anime"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Fatalf("expected indented JSON, got %q", string(data))
	}
}

func TestLoad_CorruptFileDegradesToEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := os.MkdirAll(filepath.Dir(s.Path("anime")), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path("anime"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out []rec
	if err := s.Load(ctx, "anime", &out); err != nil {
		t.Fatalf("expected corrupt file to degrade, got error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty collection, got %+v", out)
	}
}

func TestSave_KeepsBackup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "anime", []rec{{ID: "1"}}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.Save(ctx, "anime", []rec{{ID: "1"}, {ID: "2"}}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	data, err := os.ReadFile(s.Path("anime") + ".backup")
	if err != nil {
		t.Fatalf("expected backup file: %v", err)
	}
	var backup []rec
	if err := json.Unmarshal(data, &backup); err != nil {
		t.Fatalf("backup parse: %v", err)
	}
	if len(backup) != 1 {
		t.Fatalf("expected backup to hold prior version (1 record), got %d", len(backup))
	}
}

func TestSave_FailedWriteLeavesOriginalIntact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "anime", []rec{{ID: "1", Title: "original"}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Occupy the temp path with a directory so the next write fails
	// after the backup step but before the rename.
	if err := os.Mkdir(s.Path("anime")+".tmp", 0o755); err != nil {
		t.Fatal(err)
	}

	if err := s.Save(ctx, "anime", []rec{{ID: "2", Title: "clobber"}}); err == nil {
		t.Fatal("expected save to fail")
	}

	var out []rec
	if err := s.Load(ctx, "anime", &out); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 1 || out[0].Title != "original" {
		t.Fatalf("expected original collection intact, got %+v", out)
	}
}
