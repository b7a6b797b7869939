// Package metricsdb provides durable alternates to ftlsim.MetricsCollector's
// flat-file emitter: a local sqlite3 table for single-run analysis, and a
// ClickHouse sink for long multi-policy sweeps. Both backends satisfy
// ftlsim.Sink directly, so either can be handed straight to
// MetricsCollector.AttachSink.
package metricsdb

import "github.com/sarchlab/ftlsim/ftlsim"

// Row and Sink alias ftlsim's own types — MetricsCollector defines them
// since it's the only thing that writes rows, and this package just needs
// to satisfy the same shape without importing-cycling back into ftlsim.
type Row = ftlsim.Row

// Sink aliases ftlsim.Sink; see Row.
type Sink = ftlsim.Sink
