package ftlsim

// Trigger describes a decision to run GC, and in which mode.
type Trigger struct {
	Fire      bool
	Intensive bool
}

// GcPolicy is the uniform capability set five GC policy variants share
// (spec §9): decide when to collect, how many pages to copy, and fold the
// resulting response time back into whatever learning state the policy
// keeps. Implemented as five concrete struct types behind this interface
// (a tagged variant, not a class hierarchy) — RL policies compose a shared
// QTable rather than inheriting from a common RL base.
type GcPolicy interface {
	// ShouldTrigger decides whether GC should run given the current free
	// block count and the current tick.
	ShouldTrigger(freeBlocks uint32, now uint64) Trigger

	// Action selects how many pages to copy for a triggered GC pass.
	Action(freeBlocks uint32) uint32

	// OnResponse folds a completed I/O's response time into the policy's
	// reward/metrics state. Policies with a pending-update protocol
	// resolve the pending (state, action) pair here.
	OnResponse(responseTimeNs uint64)

	// RecordGCInvocation records that a GC pass copied copiedPages total
	// pages, of which validCopies were valid-page reconstructions.
	RecordGCInvocation(copiedPages, validCopies uint64)

	// RecordBlockErase records that a block was erased.
	RecordBlockErase()

	// Metrics exposes the policy's MetricsCollector for finalize/report.
	Metrics() *MetricsCollector
}

// ReadTriggerer is implemented by policies that can additionally decide to
// run GC on a read completion (only RlAggressivePolicy, per spec §4.9).
type ReadTriggerer interface {
	ShouldTriggerOnRead(freeBlocks uint32, now uint64) bool
}
