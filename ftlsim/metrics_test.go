package ftlsim_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sarchlab/ftlsim/ftlsim"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCollectorPercentileBelowMinSamples(t *testing.T) {
	mc := ftlsim.NewMetricsCollector("test", "", 1000, false)

	for i := 0; i < 50; i++ {
		mc.Record(uint64(i * 1000))
	}

	assert.Equal(t, uint64(0), mc.LatencyPercentile(0.99))
}

func TestMetricsCollectorPercentileAboveMinSamples(t *testing.T) {
	mc := ftlsim.NewMetricsCollector("test", "", 1000, false)

	for i := 1; i <= 200; i++ {
		mc.Record(uint64(i))
	}

	p99 := mc.LatencyPercentile(0.99)
	assert.Greater(t, p99, uint64(0))
	assert.LessOrEqual(t, p99, uint64(200))
}

func TestMetricsCollectorRingWraps(t *testing.T) {
	mc := ftlsim.NewMetricsCollector("test", "", 10, false)

	for i := 1; i <= 25; i++ {
		mc.Record(uint64(i))
	}

	// average should reflect only the most recent 10 samples: 16..25.
	assert.InDelta(t, 20.5, mc.AverageResponseTime(), 0.01)
}

func TestMetricsCollectorRecordGCInvocation(t *testing.T) {
	mc := ftlsim.NewMetricsCollector("test", "", 100, false)

	mc.RecordGCInvocation(10, 7)
	mc.RecordGCInvocation(5, 5)

	snap := mc.Snapshot()
	assert.Equal(t, uint64(2), snap.GCInvocations)
	assert.Equal(t, uint64(15), snap.TotalPageCopies)
	assert.Equal(t, uint64(12), snap.ValidPageCopies)
}

func TestMetricsCollectorRecordGCInvocationNoValidTracking(t *testing.T) {
	mc := ftlsim.NewMetricsCollector("test", "", 100, false)

	mc.RecordGCInvocationNoValidTracking(10)

	snap := mc.Snapshot()
	assert.Equal(t, uint64(1), snap.GCInvocations)
	assert.Equal(t, uint64(10), snap.TotalPageCopies)
	assert.Equal(t, uint64(0), snap.ValidPageCopies)
}

func TestMetricsCollectorRecordRewardRunningMean(t *testing.T) {
	mc := ftlsim.NewMetricsCollector("test", "", 100, false)

	mc.RecordReward(1.0)
	mc.RecordReward(0.0)

	snap := mc.Snapshot()
	assert.InDelta(t, 0.5, snap.AvgReward, 1e-9)
	assert.Equal(t, uint64(2), snap.RewardCount)
}

func TestMetricsCollectorRewardThresholdsNotReadyBelowMinSamples(t *testing.T) {
	mc := ftlsim.NewMetricsCollector("test", "", 1000, false)

	mc.Record(10)
	_, _, _, ready := mc.RewardThresholds()
	assert.False(t, ready)
}

func TestMetricsCollectorFinalizeWritesSummaryNextToMetricsFile(t *testing.T) {
	dir := t.TempDir()
	metricsPath := filepath.Join(dir, "default_metrics.txt")
	mc := ftlsim.NewMetricsCollector("default", metricsPath, 100, true)

	mc.RecordGCInvocation(4, 3)
	mc.RecordBlockErase()
	mc.Finalize()

	summaryPath := filepath.Join(dir, "default_summary.txt")
	contents, err := os.ReadFile(summaryPath)
	assert.NoError(t, err)
	assert.Contains(t, string(contents), "GC Invocations: 1")
	assert.Contains(t, string(contents), "Block Erases: 1")
}
