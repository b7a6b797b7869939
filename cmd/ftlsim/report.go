package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/pprof/profile"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

// reportCmd prints a policy's summary report to stdout and, with --open,
// opens it in the local browser.
func reportCmd() *cobra.Command {
	var (
		metricsDir  string
		policy      string
		open        bool
		profilePath string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print (and optionally open) a policy's summary report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if profilePath != "" {
				return printProfileSummary(profilePath)
			}

			metricsPath := filepath.Join(metricsDir, policy+"_metrics.txt")
			summaryPath := summaryPathForReport(metricsPath)

			contents, err := os.ReadFile(summaryPath)
			if err != nil {
				return fmt.Errorf("ftlsim: reading summary report %s: %w", summaryPath, err)
			}
			fmt.Print(string(contents))

			if open {
				if err := browser.OpenFile(summaryPath); err != nil {
					return fmt.Errorf("ftlsim: opening summary report: %w", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&metricsDir, "metrics-dir", "./metrics", "directory metrics files were written to")
	cmd.Flags().StringVar(&policy, "policy", "default", "policy label whose report to show")
	cmd.Flags().BoolVar(&open, "open", false, "open the report in the local browser")
	cmd.Flags().StringVar(&profilePath, "profile", "", "instead of a metrics summary, print a CPU profile captured via 'run --profile-out'")

	return cmd
}

// printProfileSummary parses a pprof-format CPU profile captured by
// runtime/pprof and prints its per-function sample-count breakdown,
// reusing google/pprof's own profile decoder rather than re-implementing
// the format.
func printProfileSummary(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("ftlsim: opening profile %s: %w", path, err)
	}
	defer f.Close()

	prof, err := profile.Parse(f)
	if err != nil {
		return fmt.Errorf("ftlsim: parsing profile %s: %w", path, err)
	}

	fmt.Print(prof.String())
	return nil
}

// summaryPathForReport mirrors ftlsim.MetricsCollector's Finalize naming
// convention without importing its unexported helper.
func summaryPathForReport(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if strings.Contains(base, "metrics") {
		return strings.Replace(base, "metrics", "summary", 1) + ".txt"
	}
	return base + "_summary.txt"
}
