// Package diagnostics persists per-region restructuring outcomes — status,
// timing, and error detail — in a small embedded sqlite database, so a
// multi-function job's results survive past the process that produced
// them and can be inspected later by httpapi or the CLI.
package diagnostics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cfgforge/restructure/jobrunner"
	"github.com/cfgforge/restructure/rerrors"
)

// Status is one region's outcome, spec.md §5's "job level" view of §7's
// finer-grained error taxonomy collapsed to what an operator actually
// wants to scan a status table for.
type Status string

const (
	StatusUnrestructured Status = "unrestructured"
	StatusRestructured   Status = "restructured"
	StatusError          Status = "error"
)

// Record is one region's stored outcome.
type Record struct {
	Region       string
	Status       Status
	ErrorKind    string // one of rerrors' RegionKind strings, or "InternalInvariant"; empty unless Status == StatusError
	ErrorMessage string
	Duration     time.Duration
	RecordedAt   time.Time
}

// Store wraps a sqlite-backed connection holding the region_status table.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS region_status (
	region        TEXT PRIMARY KEY,
	status        TEXT NOT NULL,
	error_kind    TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	duration_ms   INTEGER NOT NULL,
	recorded_at   TEXT NOT NULL
);
`

// Open opens (creating if necessary) a sqlite database at path and ensures
// region_status exists. path may be ":memory:" for a process-local store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("diagnostics.Open: %w", err)
	}
	// A single writer keeps region_status consistent without WAL tuning;
	// jobrunner already serializes result recording through one caller.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("diagnostics.Open: ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

const upsertRegionStatus = `
INSERT INTO region_status (region, status, error_kind, error_message, duration_ms, recorded_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(region) DO UPDATE SET
	status = excluded.status,
	error_kind = excluded.error_kind,
	error_message = excluded.error_message,
	duration_ms = excluded.duration_ms,
	recorded_at = excluded.recorded_at
`

// RecordResult converts one jobrunner.Result into a Record and upserts it.
func (s *Store) RecordResult(ctx context.Context, result jobrunner.Result, recordedAt time.Time) error {
	rec := recordFromResult(result, recordedAt)
	_, err := s.db.ExecContext(ctx, upsertRegionStatus,
		rec.Region, string(rec.Status), rec.ErrorKind, rec.ErrorMessage,
		rec.Duration.Milliseconds(), rec.RecordedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("diagnostics.RecordResult(%s): %w", result.Region, err)
	}
	return nil
}

// RecordAll records every result in results, stopping at the first write
// failure (results already recorded before the failure stay recorded).
func (s *Store) RecordAll(ctx context.Context, results []jobrunner.Result, recordedAt time.Time) error {
	for _, r := range results {
		if err := s.RecordResult(ctx, r, recordedAt); err != nil {
			return err
		}
	}
	return nil
}

// recordFromResult classifies a jobrunner.Result into a Status and, for
// errors, the rerrors.RegionKind name (or "InternalInvariant") that best
// describes what went wrong.
func recordFromResult(result jobrunner.Result, recordedAt time.Time) Record {
	rec := Record{
		Region:     result.Region,
		Duration:   result.Duration,
		RecordedAt: recordedAt,
	}
	switch {
	case result.Err == nil:
		rec.Status = StatusRestructured
	case isInternalInvariant(result.Err):
		rec.Status = StatusError
		rec.ErrorKind = "InternalInvariant"
		rec.ErrorMessage = result.Err.Error()
	default:
		rec.Status = StatusError
		if re, ok := rerrors.AsRegionError(result.Err); ok {
			rec.ErrorKind = re.Kind.String()
		}
		rec.ErrorMessage = result.Err.Error()
	}
	return rec
}

func isInternalInvariant(err error) bool {
	_, ok := rerrors.AsInternalInvariantError(err)
	return ok
}

const selectRegionStatus = `
SELECT region, status, error_kind, error_message, duration_ms, recorded_at
FROM region_status WHERE region = ?
`

// Get returns the stored Record for region, or sql.ErrNoRows if it was
// never recorded.
func (s *Store) Get(ctx context.Context, region string) (Record, error) {
	row := s.db.QueryRowContext(ctx, selectRegionStatus, region)
	rec, err := scanRecord(row)
	if err != nil {
		return Record{}, fmt.Errorf("diagnostics.Get(%s): %w", region, err)
	}
	return rec, nil
}

const selectAllRegionStatus = `
SELECT region, status, error_kind, error_message, duration_ms, recorded_at
FROM region_status ORDER BY region
`

// List returns every recorded Record, ordered by region name.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, selectAllRegionStatus)
	if err != nil {
		return nil, fmt.Errorf("diagnostics.List: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("diagnostics.List: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("diagnostics.List: %w", err)
	}
	return out, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (Record, error) {
	var (
		rec          Record
		status       string
		durationMS   int64
		recordedAtTS string
	)
	if err := s.Scan(&rec.Region, &status, &rec.ErrorKind, &rec.ErrorMessage, &durationMS, &recordedAtTS); err != nil {
		return Record{}, err
	}
	rec.Status = Status(status)
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	parsed, err := time.Parse(time.RFC3339Nano, recordedAtTS)
	if err != nil {
		return Record{}, fmt.Errorf("parse recorded_at: %w", err)
	}
	rec.RecordedAt = parsed
	return rec, nil
}
