package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ahclip/internal/config"
	"ahclip/internal/pipeline"
)

// ErrRunNotFound reports that no recorded run matches an identifier.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousRun reports a run ID prefix that matches more than one run.
var ErrAmbiguousRun = errors.New("run id prefix is ambiguous")

var _ pipeline.Recorder = (*Store)(nil)

// Store manages the run ledger backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the ledger configured in cfg.History.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.History.Path)
}

// OpenPath initializes or connects to the ledger database at path.
func OpenPath(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Record stores a finished run and all of its row results.
func (s *Store) Record(ctx context.Context, summary pipeline.Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	counts := summary.Counts()
	opts := summary.Options
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (
            run_id, started_at, finished_at, manifest, input_dir, output_dir,
            duration, succeeded, skipped, failed
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID,
		formatTime(summary.Started),
		nullableTime(summary.Finished),
		opts.ManifestPath,
		opts.InputDir,
		opts.OutputDir,
		opts.Duration,
		counts.Succeeded,
		counts.Skipped,
		counts.Failed,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO row_results (
            run_id, row_index, line, subject, status, source, output,
            samples, transcoded, error_kind, error
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare row insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range summary.Results {
		_, err := stmt.ExecContext(ctx,
			summary.RunID,
			i,
			r.Row.Line,
			r.Row.Subject.String(),
			string(r.Status),
			nullableString(r.Source),
			nullableString(r.Output),
			r.Samples,
			boolToInt(r.Transcoded),
			nullableString(r.ErrorKind()),
			nullableString(rowMessage(r)),
		)
		if err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

const runColumns = `run_id, started_at, finished_at, manifest, input_dir, output_dir,
    duration, succeeded, skipped, failed`

// Recent returns up to limit runs, newest first. A limit <= 0 returns all runs.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, run_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Find returns the run whose ID starts with prefix.
func (s *Store) Find(ctx context.Context, prefix string) (Run, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return Run{}, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	pattern := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE run_id LIKE ? ESCAPE '\' ORDER BY started_at DESC LIMIT 2`,
		pattern,
	)
	if err != nil {
		return Run{}, fmt.Errorf("find run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("iterate runs: %w", err)
	}
	switch len(matches) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("%w: %s", ErrAmbiguousRun, prefix)
	}
}

// Rows returns the stored row outcomes for runID in manifest order.
func (s *Store) Rows(ctx context.Context, runID string) ([]RowRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, row_index, line, subject, status, source, output,
                samples, transcoded, error_kind, error
         FROM row_results WHERE run_id = ? ORDER BY row_index`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var out []RowRecord
	for rows.Next() {
		var (
			rec                               RowRecord
			status                            string
			source, output, errorKind, errMsg sql.NullString
			transcoded                        int
		)
		if err := rows.Scan(&rec.RunID, &rec.Index, &rec.Line, &rec.Subject, &status,
			&source, &output, &rec.Samples, &transcoded, &errorKind, &errMsg); err != nil {
			return nil, fmt.Errorf("scan row result: %w", err)
		}
		rec.Status = pipeline.Status(status)
		rec.Source = source.String
		rec.Output = output.String
		rec.Transcoded = transcoded != 0
		rec.ErrorKind = errorKind.String
		rec.Error = errMsg.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate row results: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run      Run
		started  string
		finished sql.NullString
	)
	if err := sc.Scan(&run.ID, &started, &finished, &run.Manifest, &run.InputDir, &run.OutputDir,
		&run.Duration, &run.Counts.Succeeded, &run.Counts.Skipped, &run.Counts.Failed); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(started)
	if finished.Valid {
		run.FinishedAt = parseTime(finished.String)
	}
	return run, nil
}

func rowMessage(r pipeline.Result) string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return r.Reason
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return formatTime(value)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
