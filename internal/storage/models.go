package storage

import (
	"database/sql"
	"time"
)

// Run represents one recorded training run.
type Run struct {
	ID           int64     `json:"id"`
	StartTime    time.Time `json:"startTime"`
	DatasetPath  string    `json:"datasetPath"`
	Config       *string   `json:"config,omitempty"` // Training configuration in JSON format
	Samples      int64     `json:"samples"`          // Labeled samples consumed
	Windows      int64     `json:"windows"`          // Feature windows extracted
	Accuracy     *float64  `json:"accuracy,omitempty"`
	MacroF1      *float64  `json:"macroF1,omitempty"`
	ArtifactPath *string   `json:"artifactPath,omitempty"`
}

// RunResult carries the final counters and metrics of a finished run.
type RunResult struct {
	Samples      int64
	Windows      int64
	Accuracy     float64
	MacroF1      float64
	ArtifactPath string
}

type runData struct {
	ID           int64
	StartTime    time.Time
	DatasetPath  string
	Config       sql.NullString
	Samples      sql.NullInt64
	Windows      sql.NullInt64
	Accuracy     sql.NullFloat64
	MacroF1      sql.NullFloat64
	ArtifactPath sql.NullString
}

type classMetricData struct {
	RunID     int64
	Class     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int64
}
