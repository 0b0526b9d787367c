package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/trigharness/internal/harness"
)

// RunSummary is one row of run history.
type RunSummary struct {
	Seq        int64    `json:"seq"`
	ID         string   `json:"id"`
	Suite      string   `json:"suite"`
	Fixtures   []string `json:"fixtures"`
	Total      int      `json:"total"`
	Passed     int      `json:"passed"`
	Failed     int      `json:"failed"`
	Digest     string   `json:"digest"`
	RecordedAt string   `json:"recorded_at"`
}

// RunNotFoundError is returned when no stored run matches an ID or prefix.
type RunNotFoundError struct {
	RunID string
}

func (e *RunNotFoundError) Error() string {
	return fmt.Sprintf("run %q not found", e.RunID)
}

// AmbiguousRunError is returned when a run ID prefix matches more than one
// stored run.
type AmbiguousRunError struct {
	Prefix  string
	Matches []string
}

func (e *AmbiguousRunError) Error() string {
	return fmt.Sprintf("run prefix %q is ambiguous: %s", e.Prefix, strings.Join(e.Matches, ", "))
}

// ListRuns returns stored runs newest first. A limit of 0 or less returns
// every run. Filtering by suite is optional; empty matches all suites.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context, suite string, limit int) ([]RunSummary, error) {
	query := `
		SELECT seq, id, suite, fixtures, total, passed, failed, digest, recorded_at
		FROM runs
	`
	var args []any
	if suite != "" {
		query += ` WHERE suite = ?`
		args = append(args, suite)
	}
	query += ` ORDER BY seq DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		run, err := scanRunSummary(rows)
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

// ResolveRunID expands a unique prefix to a full run ID. An exact match
// always wins.
func (s *Store) ResolveRunID(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", &RunNotFoundError{RunID: prefix}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM runs
		WHERE substr(id, 1, ?) = ?
		ORDER BY seq ASC
	`, len(prefix), prefix)
	if err != nil {
		return "", fmt.Errorf("resolve run: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("resolve run: %w", err)
		}
		if id == prefix {
			return id, nil
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve run: %w", err)
	}

	switch len(matches) {
	case 0:
		return "", &RunNotFoundError{RunID: prefix}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousRunError{Prefix: prefix, Matches: matches}
	}
}

// ReadRun rebuilds the report of a stored run. idOrPrefix may be a unique
// prefix of the run ID. Results come back in report order.
func (s *Store) ReadRun(ctx context.Context, idOrPrefix string) (*harness.Report, error) {
	id, err := s.ResolveRunID(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT seq, id, suite, fixtures, total, passed, failed, digest, recorded_at
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRunSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &RunNotFoundError{RunID: id}
	}
	if err != nil {
		return nil, err
	}

	results, err := s.readResults(ctx, id)
	if err != nil {
		return nil, err
	}

	return &harness.Report{
		RunID:    run.ID,
		Suite:    run.Suite,
		Fixtures: run.Fixtures,
		Results:  results,
		Summary:  harness.Summarize(run.Fixtures, results),
	}, nil
}

// readResults returns a run's results ordered by seq.
func (s *Store) readResults(ctx context.Context, runID string) ([]harness.RunResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, fixture, marker_index, event_id, kind, line, expected, actual, pass, error_kind, error
		FROM results
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := []harness.RunResult{}
	for rows.Next() {
		var res harness.RunResult
		var pass int
		if err := rows.Scan(
			&res.Seq, &res.Fixture, &res.MarkerIndex, &res.EventID, &res.Kind, &res.Line,
			&res.Expected, &res.Actual, &pass, &res.ErrorKind, &res.Error,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		res.Pass = pass == 1
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

// FailureCount is the number of failed results of one error kind.
type FailureCount struct {
	ErrorKind string `json:"error_kind"`
	Count     int    `json:"count"`
}

// FailuresByKind counts failed results across stored runs, by error kind.
// Results are ordered by error kind.
func (s *Store) FailuresByKind(ctx context.Context, suite string) ([]FailureCount, error) {
	query := `
		SELECT r.error_kind, COUNT(*)
		FROM results r
		JOIN runs ON runs.id = r.run_id
		WHERE r.pass = 0
	`
	var args []any
	if suite != "" {
		query += ` AND runs.suite = ?`
		args = append(args, suite)
	}
	query += ` GROUP BY r.error_kind ORDER BY r.error_kind COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	counts := []FailureCount{}
	for rows.Next() {
		var fc FailureCount
		if err := rows.Scan(&fc.ErrorKind, &fc.Count); err != nil {
			return nil, fmt.Errorf("scan failures: %w", err)
		}
		counts = append(counts, fc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failures: %w", err)
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRunSummary scans a runs row from either *sql.Row or *sql.Rows.
func scanRunSummary(row rowScanner) (RunSummary, error) {
	var run RunSummary
	var fixturesJSON string
	if err := row.Scan(
		&run.Seq, &run.ID, &run.Suite, &fixturesJSON,
		&run.Total, &run.Passed, &run.Failed, &run.Digest, &run.RecordedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunSummary{}, err
		}
		return RunSummary{}, fmt.Errorf("scan run: %w", err)
	}

	fixtures, err := unmarshalFixtures(fixturesJSON)
	if err != nil {
		return RunSummary{}, err
	}
	run.Fixtures = fixtures
	return run, nil
}
