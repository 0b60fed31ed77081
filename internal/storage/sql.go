package storage

import (
	_ "embed"
)

const (
	insertRunSQL = `
INSERT INTO runs (
                  start_time,
                  dataset_path,
                  config)
VALUES (CURRENT_TIMESTAMP, ?, ?)`

	completeRunSQL = `
UPDATE runs
SET
    samples = ?,
    windows = ?,
    accuracy = ?,
    macro_f1 = ?,
    artifact_path = ?
WHERE
    id = ?`

	selectRunSQL = `
SELECT
    id,
    start_time,
    dataset_path,
    config,
    samples,
    windows,
    accuracy,
    macro_f1,
    artifact_path
FROM runs
WHERE
    id = ?`

	selectRunsSQL = `
SELECT
    id,
    start_time,
    dataset_path,
    config,
    samples,
    windows,
    accuracy,
    macro_f1,
    artifact_path
FROM runs
ORDER BY start_time`

	insertClassMetricSQL = `
INSERT INTO class_metrics (run_id,
                           class,
                           precision,
                           recall,
                           f1,
                           support)
VALUES (?, ?, ?, ?, ?, ?)`

	selectClassMetricsSQL = `
SELECT
    class,
    precision,
    recall,
    f1,
    support
FROM class_metrics
WHERE
    run_id = ?
ORDER BY class`
)

//go:embed schema.sql
var schemaSQL string
