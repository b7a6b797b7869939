package ftlsim

import "math/rand"

// currIntervalThresholds bins the current inter-request interval (in
// nanoseconds) into 18 buckets: 0 for a zero interval, 1..16 for the
// range 10us..1s partitioned by these thresholds, 17 for >=1s.
var currIntervalThresholds = [...]uint64{
	10_000, 20_000, 50_000, 100_000, 200_000, 500_000,
	1_000_000, 2_000_000, 5_000_000, 10_000_000, 20_000_000, 50_000_000,
	100_000_000, 200_000_000, 500_000_000, 1_000_000_000,
}

const prevIntervalShortLongBoundary = 100_000 // 100us

// State is the RL Q-table state tuple: (prev_interval_bin, curr_interval_bin,
// prev_action_bin). Discretization matches spec §3 and the exact bin tables
// grounded on ftl/rl_baseline_gc/rl_baseline.cc.
type State struct {
	PrevIntervalBin uint32
	CurrIntervalBin uint32
	PrevActionBin   uint32
}

// DiscretizePrevInterval bins a previous inter-request interval into 0
// (short, < 100us) or 1 (long, >= 100us).
func DiscretizePrevInterval(intervalNs uint64) uint32 {
	if intervalNs < prevIntervalShortLongBoundary {
		return 0
	}
	return 1
}

// DiscretizeCurrInterval bins a current inter-request interval into
// 0 (zero interval) .. 17 (>= 1s), per the fixed threshold vector.
func DiscretizeCurrInterval(intervalNs uint64) uint32 {
	if intervalNs == 0 {
		return 0
	}
	for i, t := range currIntervalThresholds {
		if intervalNs < t {
			return uint32(i + 1)
		}
	}
	return uint32(len(currIntervalThresholds) + 1)
}

// DiscretizeAction bins a chosen action into 0 (<= maxPageCopies/2) or
// 1 (above).
func DiscretizeAction(action, maxPageCopies uint32) uint32 {
	if action <= maxPageCopies/2 {
		return 0
	}
	return 1
}

// convergenceWindow is a small ring of recent max-Q-delta samples used to
// smooth the "has it converged" signal; spec §4.7 asks for "a running
// window of deltas" without naming a size, so a modest window matching the
// teacher's other small fixed-size ring buffers (e.g. MetricsCollector's
// percentile ring) is used.
const convergenceWindow = 32

// QTable maps a discretized State to a fixed-length action-value vector,
// with epsilon-greedy action selection and lazily-materialized state
// entries. Convergence tracking has no grounding in the original C++
// sources (see DESIGN.md) and is implemented directly from spec text: after
// every update it records the updated Q-value's absolute change against its
// pre-update value in a small rolling window (whose maximum is reported),
// and folds whether the updated state's argmax action held steady into an
// exponentially smoothed fraction over updates.
type QTable struct {
	alpha, gamma float32
	epsilon      float32
	numActions   uint32
	gcCount      uint64

	table map[State][]float32
	rng   *rand.Rand

	deltas       [convergenceWindow]float32
	deltaCount   int
	deltaCursor  int
	stableArgmax float64
}

// NewQTable creates a table with the given hyperparameters and an explicit
// RNG seed (spec §9: no process-global RNGs).
func NewQTable(alpha, gamma, epsilon float32, numActions uint32, rngSeed int64) *QTable {
	return &QTable{
		alpha:      alpha,
		gamma:      gamma,
		epsilon:    epsilon,
		numActions: numActions,
		table:      make(map[State][]float32),
		rng:        rand.New(rand.NewSource(rngSeed)),
	}
}

func (q *QTable) ensure(s State) []float32 {
	v, ok := q.table[s]
	if !ok {
		v = make([]float32, q.numActions)
		q.table[s] = v
	}
	return v
}

// SelectAction runs epsilon-greedy selection for s, incrementing the
// operation counter that drives the epsilon schedule owned by the caller
// (RlBaselinePolicy et al. call DecayEpsilon separately per spec §4.7's
// explicit two-part schedule).
func (q *QTable) SelectAction(s State) uint32 {
	q.gcCount++

	if q.rng.Float32() < q.epsilon {
		return uint32(q.rng.Intn(int(q.numActions)))
	}

	values, ok := q.table[s]
	if !ok {
		q.table[s] = make([]float32, q.numActions)
		return uint32(q.rng.Intn(int(q.numActions)))
	}

	return argmax(values)
}

func argmax(values []float32) uint32 {
	best := uint32(0)
	bestV := values[0]
	for i, v := range values {
		if v > bestV {
			bestV = v
			best = uint32(i)
		}
	}
	return best
}

// UpdateQ applies the standard Q-learning update rule and refreshes the
// convergence statistics.
func (q *QTable) UpdateQ(s State, action uint32, reward float32, next State) {
	prevArgmax, hadState := q.currentArgmax(s)

	current := q.ensure(s)
	nextValues := q.ensure(next)

	before := current[action]
	maxNext := nextValues[argmax(nextValues)]
	newQ := before + q.alpha*(reward+q.gamma*maxNext-before)
	current[action] = newQ

	q.recordConvergence(before, newQ, s, prevArgmax, hadState)
}

func (q *QTable) currentArgmax(s State) (uint32, bool) {
	v, ok := q.table[s]
	if !ok {
		return 0, false
	}
	return argmax(v), true
}

func (q *QTable) recordConvergence(before, after float32, s State, prevArgmax uint32, hadState bool) {
	delta := after - before
	if delta < 0 {
		delta = -delta
	}
	q.deltas[q.deltaCursor] = delta
	q.deltaCursor = (q.deltaCursor + 1) % convergenceWindow
	if q.deltaCount < convergenceWindow {
		q.deltaCount++
	}

	if !hadState {
		return
	}
	newArgmax, _ := q.currentArgmax(s)
	if newArgmax == prevArgmax {
		q.stableArgmax = q.stableArgmax*0.99 + 0.01
	} else {
		q.stableArgmax = q.stableArgmax * 0.99
	}
}

// Convergence reports the max Q-value delta observed in the rolling window
// and the smoothed fraction of updates whose argmax action stayed put.
// Per spec §4.7 the "converged" signal is maxDelta < 0.01 with
// stableArgmaxFraction >= 0.95.
func (q *QTable) Convergence() (maxDelta float32, stableArgmaxFraction float64) {
	for i := 0; i < q.deltaCount; i++ {
		if q.deltas[i] > maxDelta {
			maxDelta = q.deltas[i]
		}
	}
	return maxDelta, q.stableArgmax
}

// Converged reports whether the table currently satisfies spec §4.7's
// convergence definition.
func (q *QTable) Converged() bool {
	maxDelta, stable := q.Convergence()
	return maxDelta < 0.01 && stable >= 0.95
}

// GetQValue returns the Q-value for (state, action), or 0 for an unknown
// state or out-of-range action.
func (q *QTable) GetQValue(s State, action uint32) float32 {
	if action >= q.numActions {
		return 0
	}
	v, ok := q.table[s]
	if !ok {
		return 0
	}
	return v[action]
}

// DecayEpsilon applies the slow multiplicative decay used for the first
// 1000 GC operations; RlBaselinePolicy clamps epsilon to 0.01 explicitly
// once gcCount reaches 1000 (spec §4.7's two-part schedule), rather than
// this method snapping it itself, so both parts of the schedule are
// visible at the call site.
func (q *QTable) DecayEpsilon() {
	if q.epsilon > 0.01 {
		q.epsilon *= 0.998
		if q.epsilon < 0.01 {
			q.epsilon = 0.01
		}
	}
}

// Epsilon returns the current exploration rate.
func (q *QTable) Epsilon() float32 { return q.epsilon }

// SetEpsilon overrides the exploration rate directly (used by the 1000-op
// clamp in RlBaselinePolicy).
func (q *QTable) SetEpsilon(e float32) { q.epsilon = e }

// GCCount returns the number of SelectAction calls made so far.
func (q *QTable) GCCount() uint64 { return q.gcCount }

// NumActions returns the table's fixed action-space size.
func (q *QTable) NumActions() uint32 { return q.numActions }

// Shape reports len(Q[s]) for every materialized state, used by property
// tests asserting spec §8's "every Q-update preserves table shape".
func (q *QTable) Shape() map[State]int {
	out := make(map[State]int, len(q.table))
	for s, v := range q.table {
		out[s] = len(v)
	}
	return out
}
