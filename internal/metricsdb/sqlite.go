package metricsdb

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSink appends metrics rows to a local sqlite3 database, one table
// shared by every policy label in a run.
type SQLiteSink struct {
	db   *sql.DB
	stmt *sql.Stmt
}

// OpenSQLiteSink opens (creating if necessary) a sqlite3 database at path
// and prepares its metrics table.
func OpenSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("metricsdb: open %s: %w", path, err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS gc_metrics (
	run_id             TEXT NOT NULL,
	policy             TEXT NOT NULL,
	tick               INTEGER NOT NULL,
	gc_invocations     INTEGER NOT NULL,
	total_page_copies  INTEGER NOT NULL,
	valid_page_copies  INTEGER NOT NULL,
	erase_count        INTEGER NOT NULL,
	intensive_gc_count INTEGER NOT NULL,
	early_gc_count     INTEGER NOT NULL,
	read_triggered_gc  INTEGER NOT NULL,
	avg_reward         REAL NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("metricsdb: create schema: %w", err)
	}

	stmt, err := db.Prepare(`INSERT INTO gc_metrics (
		run_id, policy, tick, gc_invocations, total_page_copies,
		valid_page_copies, erase_count, intensive_gc_count, early_gc_count,
		read_triggered_gc, avg_reward
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("metricsdb: prepare insert: %w", err)
	}

	return &SQLiteSink{db: db, stmt: stmt}, nil
}

// Write inserts one metrics row.
func (s *SQLiteSink) Write(row Row) error {
	_, err := s.stmt.Exec(
		row.RunID, row.Policy, row.Tick,
		row.Stats.GCInvocations, row.Stats.TotalPageCopies, row.Stats.ValidPageCopies,
		row.Stats.EraseCount, row.Stats.IntensiveGCCount, row.Stats.EarlyGCCount,
		row.Stats.ReadTriggeredGC, row.Stats.AvgReward,
	)
	return err
}

// Close closes the prepared statement and the underlying database handle.
func (s *SQLiteSink) Close() error {
	s.stmt.Close()
	return s.db.Close()
}
