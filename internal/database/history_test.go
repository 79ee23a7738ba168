package database

import (
	"context"
	"testing"
	"time"

	"github.com/dumpscan/dumpscan/internal/model"
)

// storedAnalysis builds an analysis with non-trivial summary counts.
func storedAnalysis(dumpFile string) *model.Analysis {
	analysis := model.NewAnalysis(dumpFile)
	analysis.Storage = &model.StorageAnalysis{
		Local:   model.StoreStats{TotalKeys: 3},
		Session: model.StoreStats{TotalKeys: 2},
	}
	analysis.IndexedDB = model.IndexedDBAnalysis{
		"app": {
			Version: 2,
			Stores: map[string]model.StoreAnalysis{
				"users": {RecordCount: 10},
			},
		},
	}
	analysis.CodeGraph = &model.CodeGraph{
		Stats: model.GraphStats{TotalComponents: 4, TotalDependencies: 7},
	}
	return analysis
}

// openTestDB opens a history database in a temp directory.
func openTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	hdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := hdb.Close(); err != nil {
			t.Errorf("Close returned error: %v", err)
		}
	})
	return hdb
}

// TestOpenCreateIfNotExists tests database creation behavior.
func TestOpenCreateIfNotExists(t *testing.T) {
	t.Parallel()

	t.Run("creates missing database", func(t *testing.T) {
		t.Parallel()
		openTestDB(t)
	})

	t.Run("refuses missing database when creation disabled", func(t *testing.T) {
		t.Parallel()
		opts := Options{CreateIfNotExists: false}
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Error("expected error for missing database")
		}
	})
}

// TestSaveAndGetRun tests the round trip through the database.
func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	hdb := openTestDB(t)
	ctx := context.Background()

	id, err := hdb.SaveAnalysis(ctx, storedAnalysis("dump.json"))
	if err != nil {
		t.Fatalf("SaveAnalysis returned error: %v", err)
	}
	if id == 0 {
		t.Fatal("SaveAnalysis returned zero ID")
	}

	got, err := hdb.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun returned error: %v", err)
	}
	if got == nil {
		t.Fatal("GetRun returned nil for saved run")
	}
	if got.DumpFile != "dump.json" {
		t.Errorf("DumpFile = %q, want dump.json", got.DumpFile)
	}
	if got.Storage == nil || got.Storage.Local.TotalKeys != 3 {
		t.Error("stored analysis lost storage section")
	}
	if got.TotalRecords() != 10 {
		t.Errorf("TotalRecords = %d, want 10", got.TotalRecords())
	}
}

// TestGetRunUnknownID tests the nil-without-error contract.
func TestGetRunUnknownID(t *testing.T) {
	t.Parallel()

	hdb := openTestDB(t)
	got, err := hdb.GetRun(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetRun returned error: %v", err)
	}
	if got != nil {
		t.Error("GetRun should return nil for unknown ID")
	}
}

// TestGetLatestRun tests that the newest run wins.
func TestGetLatestRun(t *testing.T) {
	t.Parallel()

	hdb := openTestDB(t)
	ctx := context.Background()

	first := storedAnalysis("dump.json")
	if _, err := hdb.SaveAnalysis(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := storedAnalysis("dump.json")
	second.AnalyzedAt = time.Now().Add(time.Minute)
	second.Storage.Local.TotalKeys = 99
	if _, err := hdb.SaveAnalysis(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := hdb.GetLatestRun(ctx, "dump.json")
	if err != nil {
		t.Fatalf("GetLatestRun returned error: %v", err)
	}
	if got == nil {
		t.Fatal("GetLatestRun returned nil")
	}
	if got.Storage.Local.TotalKeys != 99 {
		t.Errorf("TotalKeys = %d, want the later run's 99", got.Storage.Local.TotalKeys)
	}

	missing, err := hdb.GetLatestRun(ctx, "other.json")
	if err != nil {
		t.Fatalf("GetLatestRun returned error: %v", err)
	}
	if missing != nil {
		t.Error("GetLatestRun should return nil for unknown dump")
	}
}

// TestListRuns tests metadata listing and filtering.
func TestListRuns(t *testing.T) {
	t.Parallel()

	hdb := openTestDB(t)
	ctx := context.Background()

	if _, err := hdb.SaveAnalysis(ctx, storedAnalysis("a.json")); err != nil {
		t.Fatal(err)
	}
	if _, err := hdb.SaveAnalysis(ctx, storedAnalysis("a.json")); err != nil {
		t.Fatal(err)
	}
	if _, err := hdb.SaveAnalysis(ctx, storedAnalysis("b.json")); err != nil {
		t.Fatal(err)
	}

	t.Run("filtered by dump file", func(t *testing.T) {
		runs, err := hdb.ListRuns(ctx, "a.json")
		if err != nil {
			t.Fatalf("ListRuns returned error: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("got %d runs, want 2", len(runs))
		}
		if runs[0].ID < runs[1].ID {
			t.Error("runs should be newest first")
		}
		if runs[0].TotalKeys != 5 {
			t.Errorf("TotalKeys = %d, want 5", runs[0].TotalKeys)
		}
		if runs[0].TotalComponents != 4 {
			t.Errorf("TotalComponents = %d, want 4", runs[0].TotalComponents)
		}
	})

	t.Run("all dumps", func(t *testing.T) {
		runs, err := hdb.ListRuns(ctx, "")
		if err != nil {
			t.Fatalf("ListRuns returned error: %v", err)
		}
		if len(runs) != 3 {
			t.Errorf("got %d runs, want 3", len(runs))
		}
	})
}

// TestListDumpFiles tests the distinct dump listing.
func TestListDumpFiles(t *testing.T) {
	t.Parallel()

	hdb := openTestDB(t)
	ctx := context.Background()

	for _, f := range []string{"b.json", "a.json", "a.json"} {
		if _, err := hdb.SaveAnalysis(ctx, storedAnalysis(f)); err != nil {
			t.Fatal(err)
		}
	}

	files, err := hdb.ListDumpFiles(ctx)
	if err != nil {
		t.Fatalf("ListDumpFiles returned error: %v", err)
	}
	if len(files) != 2 || files[0] != "a.json" || files[1] != "b.json" {
		t.Errorf("files = %v, want [a.json b.json]", files)
	}
}
