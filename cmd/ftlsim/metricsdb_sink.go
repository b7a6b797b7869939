package main

import (
	"fmt"

	"github.com/sarchlab/ftlsim/ftlsim"
	"github.com/sarchlab/ftlsim/internal/metricsdb"
)

// openMetricsSink opens at most one of run's --sqlite-sink/--clickhouse-sink
// external metrics sinks. Both flags empty returns a nil Sink, which
// callers must treat as "no sink attached" rather than dereference.
func openMetricsSink(sqlitePath, clickhouseAddr, clickhouseDatabase, clickhouseTable string) (ftlsim.Sink, error) {
	switch {
	case sqlitePath != "" && clickhouseAddr != "":
		return nil, fmt.Errorf("ftlsim: --sqlite-sink and --clickhouse-sink are mutually exclusive")

	case sqlitePath != "":
		sink, err := metricsdb.OpenSQLiteSink(sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("ftlsim: opening sqlite metrics sink: %w", err)
		}
		return sink, nil

	case clickhouseAddr != "":
		sink, err := metricsdb.OpenClickHouseSink(clickhouseAddr, clickhouseDatabase, "", "", clickhouseTable, 100)
		if err != nil {
			return nil, fmt.Errorf("ftlsim: opening clickhouse metrics sink: %w", err)
		}
		return sink, nil

	default:
		return nil, nil
	}
}
