package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/orbislab/featsweep/internal/adapters/driven/artifacts"
	"github.com/orbislab/featsweep/internal/adapters/driven/config/file"
	"github.com/orbislab/featsweep/internal/adapters/driven/runner"
	"github.com/orbislab/featsweep/internal/adapters/driven/slamcfg"
	"github.com/orbislab/featsweep/internal/adapters/driven/storage/memory"
	"github.com/orbislab/featsweep/internal/adapters/driven/storage/sqlite"
	"github.com/orbislab/featsweep/internal/core/ports/driven"
	"github.com/orbislab/featsweep/internal/core/services"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the detector sweep",
	Long: `Runs every detector over every dataset variant in order.

Each trial rewrites the external program's configuration, launches it,
and on success renames the track outputs so they carry the detector and
variant that produced them. A failed trial is recorded and the sweep
moves on to the next combination.`,
	RunE: runSweep,
}

var (
	runConfigPath string
	runDryRun     bool
	runNoStore    bool
)

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "sweep.toml", "path to the sweep configuration")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print the trial plan without executing it")
	runCmd.Flags().BoolVar(&runNoStore, "no-store", false, "do not persist trial history")
	rootCmd.AddCommand(runCmd)
}

// openTrialStore opens the persistent trial store. Swapped in tests.
var openTrialStore = func(dataDir string) (driven.TrialStore, func() error, error) {
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, err
	}
	return store.TrialStore(), store.Close, nil
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfg, err := file.Load(runConfigPath)
	if err != nil {
		return err
	}

	plan, err := cfg.Plan()
	if err != nil {
		return fmt.Errorf("invalid sweep plan: %w", err)
	}

	if runDryRun {
		cmd.Printf("Planned trials (%d):\n", plan.Size())
		for _, trial := range plan.Trials() {
			cmd.Printf("  [%2d] %s on %s (%s)\n",
				trial.Ordinal, trial.Detector, trial.Dataset.Variant, trial.Dataset.BasePath)
		}
		return nil
	}

	var store driven.TrialStore
	if cfg.Store.IsEnabled() && !runNoStore {
		persistent, closeStore, err := openTrialStore(cfg.Store.DataDir)
		if err != nil {
			return fmt.Errorf("open trial store: %w", err)
		}
		defer func() { _ = closeStore() }()
		store = persistent
	} else {
		store = memory.NewTrialStore()
	}

	orchestrator := services.NewSweepOrchestrator(
		slamcfg.New(cfg.Program.TrackerConfig, cfg.Program.DatasetConfig),
		runner.NewExec(cfg.Program.Command, cfg.Program.Args, cfg.Program.Workdir, cfg.Sweep.ResultsDir),
		artifacts.NewFS(cfg.Sweep.ResultsDir, nil),
		store,
		services.SweepOptions{
			Policy:       cfg.RetryPolicy(),
			TrialTimeout: cfg.TrialTimeout(),
			ResultsDir:   cfg.Sweep.ResultsDir,
			Progress: func(format string, args ...any) {
				cmd.Printf(format+"\n", args...)
			},
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Trial failures are part of a completed sweep; only a sweep that
	// could not run to completion is an error here.
	if _, err := orchestrator.Sweep(ctx, plan); err != nil {
		return err
	}
	return nil
}
