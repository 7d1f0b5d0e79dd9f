package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const runColumns = `id, environment, engine, status, output_path, records, demographics_matched,
	education_matched, white_column, error, started_at, completed_at`

// CreateRun records the start of a run.
func (s *SQLiteStore) CreateRun(ctx context.Context, id, env, engine, outputPath string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	now := time.Now().UTC()
	s.logger.Debug("creating run", "id", id, "environment", env)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, environment, engine, status, output_path, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, env, engine, string(RunStatusRunning), outputPath, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return &Run{
		ID:          id,
		Environment: env,
		Engine:      engine,
		Status:      RunStatusRunning,
		OutputPath:  outputPath,
		StartedAt:   now,
	}, nil
}

// CompleteRun marks a run as finished with the given status.
func (s *SQLiteStore) CompleteRun(ctx context.Context, id string, status RunStatus, outcome Outcome, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	var errorPtr *string
	if errMsg != "" {
		errorPtr = &errMsg
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, records = ?, demographics_matched = ?, education_matched = ?,
			white_column = ?, error = ?, completed_at = ? WHERE id = ?`,
		string(status), outcome.Records, outcome.DemographicsMatched, outcome.EducationMatched,
		outcome.WhiteColumn, errorPtr, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves the most recent runs up to the given limit.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run         Run
		status      string
		errMsg      sql.NullString
		completedAt sql.NullTime
	)
	if err := sc.Scan(&run.ID, &run.Environment, &run.Engine, &status, &run.OutputPath,
		&run.Records, &run.DemographicsMatched, &run.EducationMatched, &run.WhiteColumn,
		&errMsg, &run.StartedAt, &completedAt); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	run.Error = errMsg.String
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return &run, nil
}
