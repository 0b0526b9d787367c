// Package store provides SQLite-backed history of harness runs.
//
// Each run is stored once with its summary and the content hash of its
// report snapshot, and every RunResult is stored under the run in report
// order:
//   - runs: one row per harness run (UUIDv7 id, suite, counts, digest)
//   - results: one row per RunResult, keyed by (run_id, seq)
//
// # Ordering
//
// Runs are listed by their insertion seq, results by their report seq.
// recorded_at is informational and never used for ordering.
//
// # Connections
//
// Every connection runs in WAL mode with synchronous=NORMAL, a 5 second busy
// timeout and foreign keys on, so deleting a run deletes its results. The
// pool holds a single connection.
//
// A database stamped with an unknown schema version is refused.
package store
