package storage

import (
	"context"

	_ "github.com/mattn/go-sqlite3"

	"github.com/konkalaitzidis/digital-health-app/internal/model"
)

// Store provides an interface for recording training runs and their
// evaluation results. Every training invocation becomes one run with its
// configuration, dataset provenance and metrics, so model regressions can be
// traced back to the run that produced them. All write operations are atomic.
type Store interface {
	// CreateRun registers a new training run and returns its unique identifier.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - datasetPath: Source dataset the run was trained on
	//   - config: Training configuration. Can be string, []byte, or a
	//     JSON-serializable object
	//
	// Returns:
	//   - runID: Unique identifier for the created run
	//   - error: If run creation fails or context is cancelled
	CreateRun(ctx context.Context, datasetPath string, config any) (runID int64, err error)

	// CompleteRun records the outcome of a finished training run: dataset
	// sizes, headline metrics and where the artifact was written.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - runID: ID of the run to complete
	//   - result: Final counters and metrics for the run
	//
	// Returns:
	//   - error: If the update fails or context is cancelled
	CompleteRun(ctx context.Context, runID int64, result RunResult) error

	// StoreClassMetrics saves the per-class evaluation report for a run in a
	// single transaction.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - runID: ID of the run the report belongs to
	//   - metrics: One row per class
	//
	// Returns:
	//   - error: If storage fails or context is cancelled
	StoreClassMetrics(ctx context.Context, runID int64, metrics []model.ClassMetrics) error

	// Run retrieves a specific training run by its ID.
	//
	// Returns:
	//   - run: Pointer to run data, nil if not found
	//   - error: If retrieval fails or context is cancelled
	Run(ctx context.Context, id int64) (run *Run, err error)

	// Runs returns all training runs stored in the database, ordered by
	// start time in ascending order.
	//
	// Returns:
	//   - runs: Slice of pointers to run data
	//   - error: If retrieval fails or context is cancelled
	Runs(ctx context.Context) (runs []*Run, err error)

	// ClassMetrics returns the per-class report stored for a run, ordered by
	// class name.
	ClassMetrics(ctx context.Context, runID int64) ([]model.ClassMetrics, error)

	// Close releases all database connections and resources.
	// After Close is called, the store instance cannot be reused.
	// It is safe to call Close multiple times.
	Close() error
}
