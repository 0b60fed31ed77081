package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/konkalaitzidis/digital-health-app/internal/model"
)

// SqliteStore implements Store on a single SQLite database file. Read and
// write connections are opened lazily and independently; the write connection
// initializes the schema on first use.
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a store backed by the SQLite database at dbPath.
// The file is created on first write if it does not exist.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, schemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateRun(ctx context.Context, datasetPath string, config any) (runID int64, err error) {
	var configData sql.NullString

	if config != nil {
		switch v := config.(type) {
		case string:
			configData.Valid = true
			configData.String = v

		case []byte:
			configData.Valid = true
			configData.String = string(v)

		default:
			var p []byte
			if p, err = json.Marshal(config); err != nil {
				err = fmt.Errorf("marshaling config: %w", err)
				return
			}

			configData.Valid = true
			configData.String = string(p)
		}
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, datasetPath, configData)
	if err != nil {
		err = fmt.Errorf("inserting run: %w", err)
		return
	}

	runID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting run ID: %w", err)
	}
	return
}

func (s *SqliteStore) CompleteRun(ctx context.Context, runID int64, result RunResult) (err error) {
	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	stmt, err := db.PrepareContext(ctx, completeRunSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	res, err := stmt.ExecContext(ctx,
		result.Samples,
		result.Windows,
		result.Accuracy,
		result.MacroF1,
		result.ArtifactPath,
		runID,
	)
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run %d does not exist", runID)
	}
	return nil
}

func (s *SqliteStore) StoreClassMetrics(ctx context.Context, runID int64, metrics []model.ClassMetrics) (err error) {
	if len(metrics) == 0 {
		return nil
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	stmt, err := tx.PrepareContext(ctx, insertClassMetricSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	for _, m := range metrics {
		if _, err = stmt.ExecContext(ctx, runID, m.Class, m.Precision, m.Recall, m.F1, m.Support); err != nil {
			return fmt.Errorf("inserting class metric %q: %w", m.Class, err)
		}
	}

	return tx.Commit()
}

func (s *SqliteStore) Run(ctx context.Context, id int64) (run *Run, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var data runData
	if err = stmt.QueryRowContext(ctx, id).Scan(
		&data.ID,
		&data.StartTime,
		&data.DatasetPath,
		&data.Config,
		&data.Samples,
		&data.Windows,
		&data.Accuracy,
		&data.MacroF1,
		&data.ArtifactPath,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		err = fmt.Errorf("scanning run: %w", err)
		return
	}

	return toRun(&data), nil
}

func (s *SqliteStore) Runs(ctx context.Context) (runs []*Run, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectRunsSQL)
	if err != nil {
		err = fmt.Errorf("querying runs: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var data runData
		if err = rows.Scan(
			&data.ID,
			&data.StartTime,
			&data.DatasetPath,
			&data.Config,
			&data.Samples,
			&data.Windows,
			&data.Accuracy,
			&data.MacroF1,
			&data.ArtifactPath,
		); err != nil {
			err = fmt.Errorf("scanning run: %w", err)
			return
		}
		runs = append(runs, toRun(&data))
	}
	err = rows.Err()
	return
}

func (s *SqliteStore) ClassMetrics(ctx context.Context, runID int64) (metrics []model.ClassMetrics, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectClassMetricsSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	rows, err := stmt.QueryContext(ctx, runID)
	if err != nil {
		err = fmt.Errorf("querying class metrics: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var data classMetricData
		if err = rows.Scan(&data.Class, &data.Precision, &data.Recall, &data.F1, &data.Support); err != nil {
			err = fmt.Errorf("scanning class metric: %w", err)
			return
		}
		metrics = append(metrics, model.ClassMetrics{
			Class:     data.Class,
			Precision: data.Precision,
			Recall:    data.Recall,
			F1:        data.F1,
			Support:   int(data.Support),
		})
	}
	err = rows.Err()
	return
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.writeDB != nil {
			if err := s.writeDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing write connection: %w", err))
			}
		}
		if s.readDB != nil {
			if err := s.readDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing read connection: %w", err))
			}
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

func toRun(data *runData) *Run {
	run := &Run{
		ID:          data.ID,
		StartTime:   data.StartTime,
		DatasetPath: data.DatasetPath,
	}
	if data.Config.Valid {
		run.Config = &data.Config.String
	}
	if data.Samples.Valid {
		run.Samples = data.Samples.Int64
	}
	if data.Windows.Valid {
		run.Windows = data.Windows.Int64
	}
	if data.Accuracy.Valid {
		run.Accuracy = &data.Accuracy.Float64
	}
	if data.MacroF1.Valid {
		run.MacroF1 = &data.MacroF1.Float64
	}
	if data.ArtifactPath.Valid {
		run.ArtifactPath = &data.ArtifactPath.String
	}
	return run
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && *err == nil {
		*err = cErr
	}
}
