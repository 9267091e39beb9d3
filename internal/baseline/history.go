package baseline

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	_ "github.com/glebarez/go-sqlite"
)

// History is a queryable projection of every baseline GENERATE/VERIFY
// run, stored at history.db alongside the baseline JSON. The JSON
// baseline document remains the load-bearing artifact VERIFY reads;
// history.db is rebuildable from scratch (DROP + re-GENERATE replays
// would reconstruct it) and exists only so `shamash baseline history`
// can answer "how has the finding count trended" without re-parsing
// every past JSON baseline.
type History struct {
	db *sql.DB
}

// OpenHistory opens (or creates) the history database in WAL mode so a
// running scan and a `history` query can overlap safely.
func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("baseline: opening history db %s: %w", path, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id        TEXT PRIMARY KEY,
			started_at    TEXT NOT NULL,
			mode          TEXT NOT NULL,
			finding_count INTEGER NOT NULL DEFAULT 0,
			new_count     INTEGER NOT NULL DEFAULT 0,
			suppressed_count INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("baseline: creating history schema: %w", err)
	}

	return &History{db: db}, nil
}

// RunRecord is one completed engine run's baseline summary.
type RunRecord struct {
	RunID            string
	StartedAt        string // RFC3339
	Mode             string
	FindingCount     int
	NewCount         int
	SuppressedCount  int
}

// Record inserts one RunRecord, generating a fresh run id if the
// caller didn't supply one.
func (h *History) Record(r RunRecord) error {
	if r.RunID == "" {
		r.RunID = uuid.NewString()
	}
	_, err := h.db.Exec(
		`INSERT OR REPLACE INTO runs (run_id, started_at, mode, finding_count, new_count, suppressed_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.RunID, r.StartedAt, r.Mode, r.FindingCount, r.NewCount, r.SuppressedCount,
	)
	if err != nil {
		slog.Error("baseline history insert failed", "run_id", r.RunID, "error", err)
	}
	return err
}

// Tail returns the `limit` most recent runs, newest first.
func (h *History) Tail(limit int) ([]RunRecord, error) {
	rows, err := h.db.Query(
		`SELECT run_id, started_at, mode, finding_count, new_count, suppressed_count
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("baseline: querying history: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.Mode, &r.FindingCount, &r.NewCount, &r.SuppressedCount); err != nil {
			return nil, fmt.Errorf("baseline: scanning history row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the underlying database handle.
func (h *History) Close() error {
	return h.db.Close()
}
