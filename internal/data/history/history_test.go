package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/slvDev/solwatch/internal/core/app"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndLoadRuns(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := RunRecord{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Version:   "test",
			Files:     10 + i,
			Contracts: 20,
			High:      i,
			Total:     i,
			Duration:  1500 * time.Millisecond,
		}
		if err := store.SaveRun("proj", run); err != nil {
			t.Fatalf("save run %d: %v", i, err)
		}
	}

	runs, err := store.LoadRuns("proj", time.Time{})
	if err != nil {
		t.Fatalf("load runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("runs = %d, want 3", len(runs))
	}
	for i, run := range runs {
		if run.Files != 10+i {
			t.Errorf("run %d out of order: files = %d", i, run.Files)
		}
		if run.RunID == "" {
			t.Errorf("run %d missing generated id", i)
		}
		if run.ProjectKey != "proj" {
			t.Errorf("run %d project = %q", i, run.ProjectKey)
		}
	}
	if runs[0].Duration != 1500*time.Millisecond {
		t.Errorf("duration = %v, want 1.5s", runs[0].Duration)
	}
}

func TestLoadRunsSince(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		run := RunRecord{Timestamp: base.Add(time.Duration(i) * time.Hour)}
		if err := store.SaveRun("", run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.LoadRuns("default", base.Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("runs since cutoff = %d, want 2", len(runs))
	}
}

func TestLatestRun(t *testing.T) {
	store := openTestStore(t)

	latest, err := store.LatestRun("default")
	if err != nil {
		t.Fatal(err)
	}
	if latest != nil {
		t.Fatalf("empty store returned run %+v", latest)
	}

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		run := RunRecord{Timestamp: base.Add(time.Duration(i) * time.Hour), Total: i}
		if err := store.SaveRun("default", run); err != nil {
			t.Fatal(err)
		}
	}

	latest, err = store.LatestRun("default")
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || latest.Total != 1 {
		t.Errorf("latest = %+v, want the second run", latest)
	}
}

func TestNewRunRecordFlattensReport(t *testing.T) {
	report := &app.Report{
		Version:          "9.9.9",
		GeneratedAt:      time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Files:            5,
		Contracts:        7,
		MissingContracts: []string{"A", "B"},
		Summary:          app.Summary{High: 1, Gas: 2, Total: 3},
		Duration:         2 * time.Second,
	}
	run := NewRunRecord(report)

	if run.RunID == "" {
		t.Error("missing run id")
	}
	if run.Files != 5 || run.Contracts != 7 || run.Missing != 2 {
		t.Errorf("counts = %+v", run)
	}
	if run.High != 1 || run.Gas != 2 || run.Total != 3 {
		t.Errorf("summary = %+v", run)
	}
}

func TestOpenRejectsDirectory(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Error("opening a directory should fail")
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SaveRun("proj", RunRecord{Total: 42}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	runs, err := store.LoadRuns("proj", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Total != 42 {
		t.Errorf("runs after reopen = %+v", runs)
	}
}
