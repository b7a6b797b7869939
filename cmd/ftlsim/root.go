package main

import (
	"github.com/spf13/cobra"
)

var configPath string

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ftlsim",
		Short: "Page-mapped FTL garbage-collection policy simulator",
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a .env-style config override file")

	root.AddCommand(runCmd())
	root.AddCommand(replayCmd())
	root.AddCommand(reportCmd())

	return root
}
