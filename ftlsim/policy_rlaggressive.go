package ftlsim

// RlAggressivePolicy adds a third, higher free-block threshold (TAGC) that
// triggers an early, max-limited GC before the normal TGC threshold is
// reached, plus an optional read-triggered GC path. Grounded on
// ftl/rl_aggressive_gc/rl_aggressive.cc, composing RlBaselinePolicy's
// Q-table/pending-update machinery rather than re-deriving it.
type RlAggressivePolicy struct {
	*RlBaselinePolicy

	tagcThreshold         uint32
	maxGCOps              uint32
	readTriggeredGCEnabled bool
	earlyGCInvalidThreshold float32

	inIntensiveMode bool
}

// RlAggressiveParams bundles RlAggressivePolicy's construction parameters.
type RlAggressiveParams struct {
	RlBaselineParams
	TAGCThreshold           uint32
	MaxGCOps                uint32
	ReadTriggeredGCEnabled  bool
	EarlyGCInvalidThreshold float32
}

// NewRlAggressivePolicy creates an RlAggressivePolicy over a fresh QTable.
func NewRlAggressivePolicy(p RlAggressiveParams, metrics *MetricsCollector) *RlAggressivePolicy {
	return &RlAggressivePolicy{
		RlBaselinePolicy:        NewRlBaselinePolicy(p.RlBaselineParams, metrics),
		tagcThreshold:           p.TAGCThreshold,
		maxGCOps:                p.MaxGCOps,
		readTriggeredGCEnabled:  p.ReadTriggeredGCEnabled,
		earlyGCInvalidThreshold: p.EarlyGCInvalidThreshold,
	}
}

// ShouldTrigger implements the three-tier rule from spec §4.9: critical
// (<=tigc) forces intensive mode; tgc < free_blocks <= tagc triggers an
// early GC (counted separately); otherwise falls back to "no trigger"
// once free_blocks is above tagc (tagc >= tgc, so the plain tgc branch is
// unreachable once the tagc branch above it has already covered it,
// matching rl_aggressive.cc's own control flow).
func (p *RlAggressivePolicy) ShouldTrigger(freeBlocks uint32, now uint64) Trigger {
	p.updateTiming(now)

	if freeBlocks <= p.tigcThreshold {
		p.inIntensiveMode = true
		return Trigger{Fire: true, Intensive: true}
	}
	p.inIntensiveMode = false

	if freeBlocks <= p.tagcThreshold {
		if freeBlocks > p.tgcThreshold {
			p.metrics.RecordEarlyGC()
		}
		p.updateState()
		return Trigger{Fire: true}
	}

	return Trigger{Fire: false}
}

// ShouldTriggerOnRead implements the read-triggered GC path: only fires
// when enabled, there is sufficient idle time since the last request, and
// free blocks are within 1.5x the normal TGC threshold.
func (p *RlAggressivePolicy) ShouldTriggerOnRead(freeBlocks uint32, now uint64) bool {
	if !p.readTriggeredGCEnabled {
		return false
	}

	interRequestTime := uint64(0)
	if p.lastRequestTime > 0 {
		interRequestTime = now - p.lastRequestTime
	}
	isIdlePeriod := interRequestTime > 0 && DiscretizeCurrInterval(interRequestTime) > 2

	readThreshold := uint32(float64(p.tgcThreshold) * 1.5)
	if freeBlocks <= readThreshold && isIdlePeriod {
		p.metrics.RecordReadTriggeredGC()
		return true
	}
	return false
}

// Action implements rl_aggressive.cc's getGCAction: intensive mode and the
// near-critical band both return the maximum action unconditionally; the
// early-GC band (tgc < free_blocks <= tagc) clamps the Q-table's pick to
// maxGCOps; the normal band enforces a floor of maxPageCopies/2.
func (p *RlAggressivePolicy) Action(freeBlocks uint32) uint32 {
	if p.inIntensiveMode {
		p.metrics.RecordIntensiveGC()
		return p.commitAction(p.maxPageCopies)
	}

	if freeBlocks <= p.tigcThreshold+2 {
		return p.commitAction(p.maxPageCopies)
	}

	if freeBlocks > p.tgcThreshold && freeBlocks <= p.tagcThreshold {
		action := p.q.SelectAction(p.currentState)
		if action > p.maxGCOps {
			action = p.maxGCOps
		}
		return p.commitAction(action)
	}

	action := p.q.SelectAction(p.currentState)
	floor := p.maxPageCopies / 2
	if action < floor {
		action = floor
	}
	if action > p.maxPageCopies {
		action = p.maxPageCopies
	}
	return p.commitAction(action)
}

func (p *RlAggressivePolicy) commitAction(action uint32) uint32 {
	p.lastAction = action
	p.schedulePendingUpdate(p.currentState, action)
	return action
}

// MaxGCAction always returns the maximum action, unconditionally — used
// when this policy is run "in intensive mode, always returns
// maxPageCopies (stronger than Baseline's intensive)" per spec §4.9.
func (p *RlAggressivePolicy) MaxGCAction() uint32 {
	return p.commitAction(p.maxPageCopies)
}
