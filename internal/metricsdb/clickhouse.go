package metricsdb

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouseSink batches metrics rows and flushes them to a ClickHouse
// table, for sweeps that run many policies over many devices and want a
// queryable store instead of per-run flat files. Grounded on the pattern
// the teacher's ClickHouse-backed trace recorder uses: buffer rows, flush
// in batches, one flush also on Close.
type ClickHouseSink struct {
	conn      clickhouse.Conn
	table     string
	buffer    []Row
	batchSize int
}

// OpenClickHouseSink dials addr and prepares table (created if absent).
func OpenClickHouseSink(addr, database, username, password, table string, batchSize int) (*ClickHouseSink, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("metricsdb: dial clickhouse: %w", err)
	}

	ctx := context.Background()
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		run_id String,
		policy String,
		tick UInt64,
		gc_invocations UInt64,
		total_page_copies UInt64,
		valid_page_copies UInt64,
		erase_count UInt64,
		intensive_gc_count UInt64,
		early_gc_count UInt64,
		read_triggered_gc UInt64,
		avg_reward Float64
	) ENGINE = MergeTree() ORDER BY (run_id, policy, tick)`, table)
	if err := conn.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("metricsdb: create table: %w", err)
	}

	if batchSize <= 0 {
		batchSize = 100
	}

	return &ClickHouseSink{conn: conn, table: table, batchSize: batchSize}, nil
}

// Write buffers row, flushing automatically once the batch fills.
func (s *ClickHouseSink) Write(row Row) error {
	s.buffer = append(s.buffer, row)
	if len(s.buffer) >= s.batchSize {
		return s.flush()
	}
	return nil
}

func (s *ClickHouseSink) flush() error {
	if len(s.buffer) == 0 {
		return nil
	}

	ctx := context.Background()
	batch, err := s.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s", s.table))
	if err != nil {
		return fmt.Errorf("metricsdb: prepare batch: %w", err)
	}

	for _, row := range s.buffer {
		if err := batch.Append(
			row.RunID, row.Policy, row.Tick,
			row.Stats.GCInvocations, row.Stats.TotalPageCopies, row.Stats.ValidPageCopies,
			row.Stats.EraseCount, row.Stats.IntensiveGCCount, row.Stats.EarlyGCCount,
			row.Stats.ReadTriggeredGC, row.Stats.AvgReward,
		); err != nil {
			return fmt.Errorf("metricsdb: append row: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("metricsdb: send batch: %w", err)
	}

	s.buffer = s.buffer[:0]
	return nil
}

// Close flushes any buffered rows and closes the connection.
func (s *ClickHouseSink) Close() error {
	if err := s.flush(); err != nil {
		return err
	}
	return s.conn.Close()
}
