package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/orbislab/featsweep/internal/adapters/driven/config/file"
	"github.com/orbislab/featsweep/internal/core/domain"
	"github.com/orbislab/featsweep/internal/core/ports/driven"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded sweep runs",
	Long: `Lists past sweep runs from the trial store. With --run, shows the
per-trial outcomes of one run instead.`,
	RunE: runHistory,
}

var (
	historyConfigPath string
	historyRunID      string
	historyLimit      int
)

func init() {
	historyCmd.Flags().StringVarP(&historyConfigPath, "config", "c", "sweep.toml", "path to the sweep configuration")
	historyCmd.Flags().StringVar(&historyRunID, "run", "", "show the trials of this run ID")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "maximum number of runs to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := file.Load(historyConfigPath)
	if err != nil {
		return err
	}

	store, closeStore, err := openTrialStore(cfg.Store.DataDir)
	if err != nil {
		return fmt.Errorf("open trial store: %w", err)
	}
	defer func() { _ = closeStore() }()

	ctx := context.Background()
	if historyRunID != "" {
		return printRunDetail(ctx, cmd, store, historyRunID)
	}

	runs, err := store.ListRuns(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		cmd.Println("No sweep runs recorded.")
		return nil
	}

	cmd.Printf("%-36s %-20s %8s %7s %7s %10s\n",
		"Run", "Started", "Planned", "Passed", "Failed", "Duration")
	for _, run := range runs {
		cmd.Printf("%-36s %-20s %8d %7d %7d %10s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Planned, run.Passed, run.Failed,
			runDuration(run))
	}
	return nil
}

func printRunDetail(ctx context.Context, cmd *cobra.Command, store driven.TrialStore, runID string) error {
	run, err := store.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("run %s not found", runID)
		}
		return err
	}

	cmd.Printf("Run %s: %d passed, %d failed of %d planned\n",
		run.ID, run.Passed, run.Failed, run.Planned)

	trials, err := store.ListTrials(ctx, runID)
	if err != nil {
		return err
	}

	cmd.Printf("%-4s %-10s %-8s %-7s %9s %5s %10s  %s\n",
		"#", "Detector", "Variant", "Status", "Attempts", "Exit", "Duration", "Error")
	for _, trial := range trials {
		cmd.Printf("%-4d %-10s %-8s %-7s %9d %5d %10s  %s\n",
			trial.Ordinal, trial.Detector, trial.Variant, trial.Status,
			trial.Attempts, trial.ExitCode,
			trial.Duration().Round(time.Millisecond), trial.Error)
	}
	return nil
}

func runDuration(run domain.SweepRun) string {
	if run.EndedAt.IsZero() {
		return "running"
	}
	return run.EndedAt.Sub(run.StartedAt).Round(time.Second).String()
}
