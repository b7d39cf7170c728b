package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orbislab/featsweep/internal/adapters/driven/config/file"
	"github.com/orbislab/featsweep/internal/adapters/driven/report"
	"github.com/orbislab/featsweep/internal/core/domain"
	"github.com/orbislab/featsweep/internal/core/ports/driven"
	"github.com/orbislab/featsweep/internal/core/ports/driving"
	"github.com/orbislab/featsweep/internal/core/services"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compare track statistics across detectors",
	Long: `Reads the harvested track exports and prints a comparison table
of track statistics per detector and dataset variant, including the
degradation of each detector relative to the baseline variant.

A comparison chart is written next to the exports; --html additionally
writes an interactive page.`,
	RunE: runAnalyze,
}

var (
	analyzeConfigPath string
	analyzeResultsDir string
	analyzeHTML       bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfigPath, "config", "c", "sweep.toml", "path to the sweep configuration")
	analyzeCmd.Flags().StringVar(&analyzeResultsDir, "results", "", "results directory (overrides the configuration)")
	analyzeCmd.Flags().BoolVar(&analyzeHTML, "html", false, "also write an interactive HTML report")
	rootCmd.AddCommand(analyzeCmd)
}

// newAnalyzer builds the analysis service. Swapped in tests.
var newAnalyzer = func(resultsDir string) driving.Analyzer {
	return services.NewAnalyzer(resultsDir)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := file.Load(analyzeConfigPath)
	if err != nil {
		return err
	}

	resultsDir := cfg.Sweep.ResultsDir
	if analyzeResultsDir != "" {
		resultsDir = analyzeResultsDir
	}

	plan, err := cfg.Plan()
	if err != nil {
		return fmt.Errorf("invalid sweep plan: %w", err)
	}

	ctx := context.Background()
	rep, err := newAnalyzer(resultsDir).Analyze(ctx, plan.Detectors, plan.Variants())
	if err != nil {
		if errors.Is(err, domain.ErrNoResults) {
			return fmt.Errorf("no track exports found in %s; run a sweep first", resultsDir)
		}
		return err
	}

	printComparison(cmd, rep)

	renderers := []driven.ReportRenderer{report.NewPNG(resultsDir)}
	if analyzeHTML {
		renderers = append(renderers, report.NewHTML(resultsDir))
	}
	for _, r := range renderers {
		paths, err := r.Render(ctx, rep)
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		for _, p := range paths {
			cmd.Printf("Chart written: %s\n", p)
		}
	}
	return nil
}

// printComparison writes the per-combination statistics table followed by
// the best performer per variant and the most robust detector overall.
func printComparison(cmd *cobra.Command, rep *domain.ComparisonReport) {
	baseline := rep.Variants[0]

	cmd.Println("=== Feature Tracker Comparison ===")
	cmd.Printf("%-10s %-8s %8s %8s %8s %6s   %s\n",
		"Detector", "Variant", "Tracks", "Mean", "Median", "Max", "Degradation")

	for _, d := range rep.Detectors {
		base, okBase := rep.Lookup(d, baseline)
		for i, v := range rep.Variants {
			s, ok := rep.Lookup(d, v)
			if !ok {
				cmd.Printf("%-10s %-8s %8s\n", d, v, "N/A")
				continue
			}

			degradation := "-"
			switch {
			case i == 0:
				degradation = "baseline"
			case okBase && base.MeanTrackLength > 0:
				degradation = fmt.Sprintf("%.1f%%", domain.Degradation(base.MeanTrackLength, s.MeanTrackLength))
			}

			cmd.Printf("%-10s %-8s %8d %8.2f %8.2f %6d   %s\n",
				d, v, s.TotalTracks, s.MeanTrackLength, s.MedianTrackLength, s.MaxTrackLength, degradation)
		}
	}
	cmd.Println()

	for _, v := range rep.Variants {
		if d, ok := rep.Best(v); ok {
			cmd.Printf("Best on %-6s %s\n", string(v)+":", d)
		}
	}
	if d, mean, ok := services.MostRobust(rep); ok {
		cmd.Printf("Most robust: %s (mean degradation %.1f%%)\n", d, mean)
	}
	if len(rep.Missing) > 0 {
		cmd.Printf("Missing exports: %s\n", strings.Join(rep.Missing, ", "))
	}
}
