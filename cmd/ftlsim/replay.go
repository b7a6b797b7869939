package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/ftlsim/ftlsim"
)

// replayCmd re-runs a workload script against a fresh engine and reports
// its stats, useful for reproducing a run's wear-leveling/GC counters
// under a different policy for comparison.
func replayCmd() *cobra.Command {
	var (
		workloadPath string
		metricsDir   string
		numStreams   uint32
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a workload script against the configured policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(metricsDir, 0o755); err != nil {
				return fmt.Errorf("ftlsim: creating metrics directory: %w", err)
			}

			ops, err := loadWorkload(workloadPath)
			if err != nil {
				return err
			}

			policy, err := buildPolicy(cfg, metricsDir)
			if err != nil {
				return err
			}

			pal, dram, cpu := defaultTimingModel()
			engine := ftlsim.NewEngine(cfg, pal, dram, cpu, policy, numStreams)

			simulate(engine, ops)

			policy.Metrics().Finalize()
			printSummary("replay", engine, policyLabel(cfg.GCPolicy))

			return nil
		},
	}

	cmd.Flags().StringVar(&workloadPath, "workload", "", "path to a workload script (required)")
	cmd.Flags().StringVar(&metricsDir, "metrics-dir", "./metrics", "directory to write per-policy metrics files")
	cmd.Flags().Uint32Var(&numStreams, "streams", 1, "number of parallel write-allocation streams")
	cmd.MarkFlagRequired("workload")

	return cmd
}
