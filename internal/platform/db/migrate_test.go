package db

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/rs/zerolog"
)

func newTestMigrator(files fstest.MapFS) *Migrator {
	return NewMigrator(nil, files, zerolog.Nop())
}

func TestLoad_SortsByVersion(t *testing.T) {
	m := newTestMigrator(fstest.MapFS{
		"010_foods.sql":    {Data: []byte("SELECT 10;")},
		"002_charts.sql":   {Data: []byte("SELECT 2;")},
		"001_core.sql":     {Data: []byte("CREATE TABLE patient (id UUID PRIMARY KEY);")},
		"005_analysis.sql": {Data: []byte("SELECT 5;")},
	})

	migrations, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(migrations) != 4 {
		t.Fatalf("expected 4 migrations, got %d", len(migrations))
	}
	for i, want := range []int{1, 2, 5, 10} {
		if migrations[i].Version != want {
			t.Errorf("migration[%d]: expected version %d, got %d", i, want, migrations[i].Version)
		}
	}
	if migrations[0].Name != "001_core.sql" {
		t.Errorf("expected name 001_core.sql, got %s", migrations[0].Name)
	}
	if migrations[0].SQL != "CREATE TABLE patient (id UUID PRIMARY KEY);" {
		t.Errorf("unexpected SQL content: %s", migrations[0].SQL)
	}
}

func TestLoad_SkipsUnversionedFiles(t *testing.T) {
	m := newTestMigrator(fstest.MapFS{
		"001_valid.sql":      {Data: []byte("SELECT 1;")},
		"readme.sql":         {Data: []byte("-- no prefix")},
		"notes.txt":          {Data: []byte("not sql")},
		"abc_invalid.sql":    {Data: []byte("-- non-numeric prefix")},
		"000_zero.sql":       {Data: []byte("-- zero is not a version")},
		"002_also_valid.sql": {Data: []byte("SELECT 2;")},
		"sub/003_nested.sql": {Data: []byte("SELECT 3;")},
	})

	migrations, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 valid migrations, got %d", len(migrations))
	}
	if migrations[1].Name != "002_also_valid.sql" {
		t.Errorf("unexpected second migration %s", migrations[1].Name)
	}
}

func TestLoad_DuplicateVersion(t *testing.T) {
	m := newTestMigrator(fstest.MapFS{
		"001_core.sql": {Data: []byte("SELECT 1;")},
		"1_again.sql":  {Data: []byte("SELECT 1;")},
	})
	if _, err := m.Load(); err == nil {
		t.Error("expected error for duplicate version")
	}
}

func TestLoad_Empty(t *testing.T) {
	migrations, err := newTestMigrator(fstest.MapFS{}).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(migrations) != 0 {
		t.Errorf("expected 0 migrations, got %d", len(migrations))
	}
}

func TestPendingAndStatus(t *testing.T) {
	migrations := []Migration{
		{Version: 1, Name: "001_core.sql"},
		{Version: 2, Name: "002_charts.sql"},
		{Version: 3, Name: "003_foods.sql"},
	}
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	done := map[int]time.Time{1: at}

	pending := Pending(migrations, done)
	if len(pending) != 2 || pending[0].Version != 2 || pending[1].Version != 3 {
		t.Fatalf("unexpected pending set: %+v", pending)
	}

	statuses := BuildStatus(migrations, done)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if !statuses[0].Applied || statuses[0].AppliedAt == nil || !statuses[0].AppliedAt.Equal(at) {
		t.Errorf("expected 001 applied at %v, got %+v", at, statuses[0])
	}
	for _, s := range statuses[1:] {
		if s.Applied || s.AppliedAt != nil {
			t.Errorf("expected %s to be pending, got %+v", s.Name, s)
		}
	}
}
