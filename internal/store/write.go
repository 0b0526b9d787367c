package store

import (
	"context"
	"fmt"

	"github.com/roach88/trigharness/internal/harness"
)

// WriteRun stores a report and all of its results in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing the same run
// twice keeps the first copy.
func (s *Store) WriteRun(ctx context.Context, r *harness.Report) error {
	if r.RunID == "" {
		return fmt.Errorf("write run: report has no run ID")
	}

	fixtures, err := marshalFixtures(r.Fixtures)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	digest, err := harness.Digest(r)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, suite, fixtures, total, passed, failed, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.RunID,
		r.Suite,
		fixtures,
		r.Summary.Total,
		r.Summary.Passed,
		r.Summary.Failed,
		digest,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results
		(run_id, seq, fixture, marker_index, event_id, kind, line, expected, actual, pass, error_kind, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write run: prepare results: %w", err)
	}
	defer stmt.Close()

	for _, res := range r.Results {
		_, err := stmt.ExecContext(ctx,
			r.RunID,
			res.Seq,
			res.Fixture,
			res.MarkerIndex,
			res.EventID,
			res.Kind,
			res.Line,
			res.Expected,
			res.Actual,
			boolToInt(res.Pass),
			res.ErrorKind,
			res.Error,
		)
		if err != nil {
			return fmt.Errorf("write run: result %d: %w", res.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

// DeleteRun removes a run and, through the foreign key, its results.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return &RunNotFoundError{RunID: runID}
	}
	return nil
}
