package main

import (
	"fmt"
	"path/filepath"

	"github.com/sarchlab/ftlsim/ftlsim"
)

// policyLabel returns the human-readable name used for metrics rows and
// dashboard registration for each GCPolicyKind.
func policyLabel(kind ftlsim.GCPolicyKind) string {
	switch kind {
	case ftlsim.GCPolicyDefault:
		return "default"
	case ftlsim.GCPolicyLazyRTGC:
		return "lazy_rtgc"
	case ftlsim.GCPolicyRLBaseline:
		return "rl_baseline"
	case ftlsim.GCPolicyRLIntensive:
		return "rl_intensive"
	case ftlsim.GCPolicyRLAggressive:
		return "rl_aggressive"
	default:
		return "unknown"
	}
}

// buildPolicy constructs the GcPolicy named by cfg.GCPolicy, wiring its
// MetricsCollector to a file under metricsDir named after the policy.
func buildPolicy(cfg *ftlsim.Config, metricsDir string) (ftlsim.GcPolicy, error) {
	label := policyLabel(cfg.GCPolicy)
	metricsPath := filepath.Join(metricsDir, label+"_metrics.txt")

	ringCapacity := 1000
	metrics := ftlsim.NewMetricsCollector(label, metricsPath, ringCapacity, true)

	switch cfg.GCPolicy {
	case ftlsim.GCPolicyDefault:
		return ftlsim.NewDefaultPolicy(cfg.GCThresholdRatio, uint32(cfg.TotalPhysicalBlocks), metrics), nil

	case ftlsim.GCPolicyLazyRTGC:
		return ftlsim.NewLazyRtgcPolicy(cfg.LazyRTGCThreshold, cfg.LazyRTGCMaxPageCopies, metrics), nil

	case ftlsim.GCPolicyRLBaseline:
		return ftlsim.NewRlBaselinePolicy(rlBaselineParams(cfg), metrics), nil

	case ftlsim.GCPolicyRLIntensive:
		return ftlsim.NewRlIntensivePolicy(rlBaselineParams(cfg), metrics), nil

	case ftlsim.GCPolicyRLAggressive:
		return ftlsim.NewRlAggressivePolicy(ftlsim.RlAggressiveParams{
			RlBaselineParams:        rlBaselineParams(cfg),
			TAGCThreshold:           cfg.RLAggTAGCThreshold,
			MaxGCOps:                cfg.RLAggMaxGCOps,
			ReadTriggeredGCEnabled:  cfg.RLAggReadTriggeredGC,
			EarlyGCInvalidThreshold: cfg.RLAggEarlyGCInvalidThreshold,
		}, metrics), nil

	default:
		return nil, fmt.Errorf("ftlsim: unrecognized GC policy kind %d", cfg.GCPolicy)
	}
}

func rlBaselineParams(cfg *ftlsim.Config) ftlsim.RlBaselineParams {
	return ftlsim.RlBaselineParams{
		Alpha:           cfg.RLGCLearningRate,
		Gamma:           cfg.RLGCDiscountFactor,
		Epsilon:         cfg.RLGCInitEpsilon,
		NumActions:      cfg.RLGCNumActions,
		TgcThreshold:    cfg.RLGCTgcThreshold,
		TigcThreshold:   cfg.RLGCTigcThreshold,
		MaxPageCopies:   cfg.RLGCMaxPageCopies,
		IntensiveCopies: cfg.RLGCIntensiveCopies,
		RNGSeed:         cfg.RNGSeed,
	}
}
