package ftlsim

// RlIntensivePolicy composes RlBaselinePolicy's Q-learning machinery and
// adds an explicit intensive-mode state machine with named entry
// (free_blocks <= tigcThreshold) and exit (free_blocks > tigcThreshold)
// transitions, per spec §4.8. Grounded on rl_baseline.cc's
// setIntensiveMode/isInIntensiveMode/shouldExitIntensiveMode, which serve
// both the Baseline and Intensive policies in the original source.
type RlIntensivePolicy struct {
	*RlBaselinePolicy
	inIntensiveMode bool
}

// NewRlIntensivePolicy creates an RlIntensivePolicy over a fresh QTable.
func NewRlIntensivePolicy(p RlBaselineParams, metrics *MetricsCollector) *RlIntensivePolicy {
	return &RlIntensivePolicy{RlBaselinePolicy: NewRlBaselinePolicy(p, metrics)}
}

// ShouldTrigger runs the Baseline trigger rule, then updates the explicit
// intensive-mode flag from the resulting free-block level.
func (p *RlIntensivePolicy) ShouldTrigger(freeBlocks uint32, now uint64) Trigger {
	t := p.RlBaselinePolicy.ShouldTrigger(freeBlocks, now)

	if freeBlocks <= p.tigcThreshold {
		p.inIntensiveMode = true
	} else if p.inIntensiveMode && freeBlocks > p.tigcThreshold {
		p.inIntensiveMode = false
	}

	return t
}

// Action returns intensiveCopies whenever the explicit mode flag is set,
// otherwise falls back to Baseline's epsilon-greedy selection.
func (p *RlIntensivePolicy) Action(freeBlocks uint32) uint32 {
	if p.inIntensiveMode {
		p.metrics.RecordIntensiveGC()
		p.lastAction = p.intensiveCopies
		p.schedulePendingUpdate(p.currentState, p.lastAction)
		return p.intensiveCopies
	}
	return p.RlBaselinePolicy.Action(freeBlocks)
}

// IsInIntensiveMode reports the explicit mode flag.
func (p *RlIntensivePolicy) IsInIntensiveMode() bool { return p.inIntensiveMode }
