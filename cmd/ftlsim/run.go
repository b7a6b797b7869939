package main

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/ftlsim/ftlsim"
	"github.com/sarchlab/ftlsim/internal/dashboard"
)

func runCmd() *cobra.Command {
	var (
		workloadPath       string
		metricsDir         string
		numStreams         uint32
		profileAddr        string
		profileOut         string
		dashboardAddr      string
		sqliteSinkPath     string
		clickhouseSinkAddr string
		clickhouseDatabase string
		clickhouseTable    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the FTL simulator over a scripted workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(workloadPath, metricsDir, numStreams, profileAddr, profileOut, dashboardAddr,
				sqliteSinkPath, clickhouseSinkAddr, clickhouseDatabase, clickhouseTable)
		},
	}

	cmd.Flags().StringVar(&workloadPath, "workload", "", "path to a workload script (required)")
	cmd.Flags().StringVar(&metricsDir, "metrics-dir", "./metrics", "directory to write per-policy metrics files")
	cmd.Flags().Uint32Var(&numStreams, "streams", 1, "number of parallel write-allocation streams")
	cmd.Flags().StringVar(&profileAddr, "profile", "", "if set, serve pprof profiling on this address (e.g. :6060)")
	cmd.Flags().StringVar(&profileOut, "profile-out", "", "if set, capture a CPU profile to this path (read back with 'report --profile')")
	cmd.Flags().StringVar(&dashboardAddr, "dashboard", "", "if set, serve a live metrics dashboard on this address")
	cmd.Flags().StringVar(&sqliteSinkPath, "sqlite-sink", "", "if set, mirror every metrics snapshot into this sqlite3 database")
	cmd.Flags().StringVar(&clickhouseSinkAddr, "clickhouse-sink", "", "if set, mirror every metrics snapshot into this ClickHouse address (e.g. localhost:9000)")
	cmd.Flags().StringVar(&clickhouseDatabase, "clickhouse-database", "default", "ClickHouse database to use with --clickhouse-sink")
	cmd.Flags().StringVar(&clickhouseTable, "clickhouse-table", "gc_metrics", "ClickHouse table to use with --clickhouse-sink")
	cmd.MarkFlagRequired("workload")

	return cmd
}

func runSimulation(workloadPath, metricsDir string, numStreams uint32, profileAddr, profileOut, dashboardAddr string,
	sqliteSinkPath, clickhouseSinkAddr, clickhouseDatabase, clickhouseTable string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case *ftlsim.ConfigError, *ftlsim.InvariantError:
				err = fmt.Errorf("ftlsim: %v", e)
			default:
				panic(r)
			}
		}
	}()

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

	if profileAddr != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "ftlsim: pprof listening on %s\n", profileAddr)
			if err := http.ListenAndServe(profileAddr, nil); err != nil {
				fmt.Fprintf(os.Stderr, "ftlsim: pprof server exited: %v\n", err)
			}
		}()
	}

	if profileOut != "" {
		f, err := os.Create(profileOut)
		if err != nil {
			return fmt.Errorf("ftlsim: creating profile output %s: %w", profileOut, err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("ftlsim: starting CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	pal, dram, cpu := defaultTimingModel()
	engine := ftlsim.NewEngine(cfg, pal, dram, cpu, policy, numStreams)

	sink, err := openMetricsSink(sqliteSinkPath, clickhouseSinkAddr, clickhouseDatabase, clickhouseTable)
	if err != nil {
		return err
	}
	if sink != nil {
		policy.Metrics().AttachSink(sink, engine.RunID)
		atexit.Register(func() {
			if err := sink.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "ftlsim: closing metrics sink: %v\n", err)
			}
		})
	}

	if dashboardAddr != "" {
		dash := dashboard.New(dashboardAddr)
		dash.Register(policyLabel(cfg.GCPolicy), policy.Metrics())
		go func() {
			if err := dash.ListenAndServe(); err != nil {
				fmt.Fprintf(os.Stderr, "ftlsim: dashboard server exited: %v\n", err)
			}
		}()
	}

	atexit.Register(policy.Metrics().Finalize)

	simulate(engine, ops)

	policy.Metrics().Finalize()
	printSummary("run", engine, policyLabel(cfg.GCPolicy))

	atexit.Exit(0)
	return nil
}
