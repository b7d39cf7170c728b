package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/orbislab/featsweep/internal/core/domain"
	"github.com/orbislab/featsweep/internal/core/ports/driven"
)

// HTMLFilename is the name of the rendered interactive report.
const HTMLFilename = "comparison_all_detectors.html"

// Ensure HTMLRenderer implements the interface.
var _ driven.ReportRenderer = (*HTMLRenderer)(nil)

// HTMLRenderer writes an interactive go-echarts page with the same three
// panels as the PNG renderer.
type HTMLRenderer struct {
	outDir string
}

// NewHTML creates a renderer writing into outDir.
func NewHTML(outDir string) *HTMLRenderer {
	return &HTMLRenderer{outDir: outDir}
}

// Render writes the comparison page and returns its path.
func (r *HTMLRenderer) Render(ctx context.Context, rep *domain.ComparisonReport) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rep == nil || len(rep.Detectors) == 0 || len(rep.Variants) == 0 {
		return nil, domain.ErrNoResults
	}

	page := components.NewPage()
	page.PageTitle = "Feature Tracker Comparison"
	page.AddCharts(
		r.metricChart(rep, "Mean Track Length", func(s domain.TrackStats) float64 {
			return s.MeanTrackLength
		}),
		r.degradationChart(rep),
		r.metricChart(rep, "Max Track Length", func(s domain.TrackStats) float64 {
			return float64(s.MaxTrackLength)
		}),
	)

	if err := os.MkdirAll(r.outDir, 0755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(r.outDir, HTMLFilename)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return nil, fmt.Errorf("render %s: %w", path, err)
	}
	return []string{path}, nil
}

// metricChart builds one grouped bar chart: a series per variant, a bar
// per detector. Missing combinations render as zero-height bars.
func (r *HTMLRenderer) metricChart(rep *domain.ComparisonReport, title string, metric func(domain.TrackStats) float64) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(detectorNames(rep))

	for _, v := range rep.Variants {
		data := make([]opts.BarData, 0, len(rep.Detectors))
		for _, d := range rep.Detectors {
			var value float64
			if s, ok := rep.Lookup(d, v); ok {
				value = metric(s)
			}
			data = append(data, opts.BarData{Value: value})
		}
		bar.AddSeries(string(v), data)
	}
	return bar
}

func (r *HTMLRenderer) degradationChart(rep *domain.ComparisonReport) *charts.Bar {
	baseline := rep.Variants[0]

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Degradation of Mean Track Length",
			Subtitle: fmt.Sprintf("relative to the %s variant, in percent", baseline),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(detectorNames(rep))

	for _, v := range rep.Variants[1:] {
		data := make([]opts.BarData, 0, len(rep.Detectors))
		for _, d := range rep.Detectors {
			var value float64
			base, okBase := rep.Lookup(d, baseline)
			s, ok := rep.Lookup(d, v)
			if okBase && ok {
				value = domain.Degradation(base.MeanTrackLength, s.MeanTrackLength)
			}
			data = append(data, opts.BarData{Value: value})
		}
		bar.AddSeries(string(v), data)
	}
	return bar
}

func detectorNames(rep *domain.ComparisonReport) []string {
	names := make([]string, len(rep.Detectors))
	for i, d := range rep.Detectors {
		names[i] = string(d)
	}
	return names
}
