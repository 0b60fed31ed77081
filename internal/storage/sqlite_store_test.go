package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/konkalaitzidis/digital-health-app/internal/model"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	store := NewSqliteStore(filepath.Join(t.TempDir(), "runs.sqlite"))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	runID, err := store.CreateRun(ctx, "data/raw/WISDM_clean.txt", map[string]any{"fs": 20.0, "winSec": 5.0})
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	if runID <= 0 {
		t.Fatalf("Expected positive run ID, got %d", runID)
	}

	result := RunResult{
		Samples:      1_000_000,
		Windows:      19_999,
		Accuracy:     0.91,
		MacroF1:      0.88,
		ArtifactPath: "model.json",
	}
	if err = store.CompleteRun(ctx, runID, result); err != nil {
		t.Fatalf("CompleteRun failed: %v", err)
	}

	run, err := store.Run(ctx, runID)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if run == nil {
		t.Fatal("Expected run, got nil")
	}
	if run.DatasetPath != "data/raw/WISDM_clean.txt" {
		t.Errorf("Unexpected dataset path: %q", run.DatasetPath)
	}
	if run.Config == nil {
		t.Error("Expected config to be stored")
	}
	if run.Samples != result.Samples || run.Windows != result.Windows {
		t.Errorf("Unexpected counters: %d samples, %d windows", run.Samples, run.Windows)
	}
	if run.Accuracy == nil || *run.Accuracy != result.Accuracy {
		t.Errorf("Unexpected accuracy: %v", run.Accuracy)
	}
	if run.MacroF1 == nil || *run.MacroF1 != result.MacroF1 {
		t.Errorf("Unexpected macro F1: %v", run.MacroF1)
	}
	if run.ArtifactPath == nil || *run.ArtifactPath != result.ArtifactPath {
		t.Errorf("Unexpected artifact path: %v", run.ArtifactPath)
	}
}

func TestRunNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// Force schema creation so the read connection has a database to open.
	if _, err := store.CreateRun(ctx, "x", nil); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	run, err := store.Run(ctx, 999)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if run != nil {
		t.Errorf("Expected nil for missing run, got %+v", run)
	}

	if err = store.CompleteRun(ctx, 999, RunResult{}); err == nil {
		t.Error("Expected error completing a missing run")
	}
}

func TestClassMetricsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	runID, err := store.CreateRun(ctx, "x", nil)
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	in := []model.ClassMetrics{
		{Class: "Vigorous", Precision: 0.95, Recall: 0.93, F1: 0.94, Support: 120},
		{Class: "Light", Precision: 0.81, Recall: 0.77, F1: 0.79, Support: 45},
	}
	if err = store.StoreClassMetrics(ctx, runID, in); err != nil {
		t.Fatalf("StoreClassMetrics failed: %v", err)
	}

	out, err := store.ClassMetrics(ctx, runID)
	if err != nil {
		t.Fatalf("ClassMetrics failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(out))
	}

	// Ordered by class name.
	if out[0].Class != "Light" || out[1].Class != "Vigorous" {
		t.Errorf("Unexpected order: %q, %q", out[0].Class, out[1].Class)
	}
	if out[1].Precision != 0.95 || out[1].Support != 120 {
		t.Errorf("Unexpected row: %+v", out[1])
	}
}

func TestRunsOrdering(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, path := range []string{"a.txt", "b.txt", "c.txt"} {
		if _, err := store.CreateRun(ctx, path, nil); err != nil {
			t.Fatalf("CreateRun failed: %v", err)
		}
	}

	runs, err := store.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].ID <= runs[i-1].ID {
			t.Errorf("Runs out of order: %d before %d", runs[i-1].ID, runs[i].ID)
		}
	}
}

func TestCloseIdempotent(t *testing.T) {
	store := newTestStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("First Close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Second Close failed: %v", err)
	}
}
