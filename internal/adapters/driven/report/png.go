// Package report renders comparison charts from aggregated track
// statistics. Two renderers are provided: a static PNG built with
// gonum/plot and an interactive HTML page built with go-echarts.
package report

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/orbislab/featsweep/internal/core/domain"
	"github.com/orbislab/featsweep/internal/core/ports/driven"
)

// PNGFilename is the name of the rendered comparison chart.
const PNGFilename = "comparison_all_detectors.png"

// Per-variant bar colors. Indexed modulo, so long variant lists cycle.
var palette = []color.Color{
	color.RGBA{R: 0x43, G: 0x76, B: 0xb5, A: 0xff},
	color.RGBA{R: 0xe6, G: 0x8a, B: 0x2e, A: 0xff},
	color.RGBA{R: 0x6d, G: 0x6d, B: 0x6d, A: 0xff},
	color.RGBA{R: 0x4f, G: 0xa3, B: 0x5c, A: 0xff},
	color.RGBA{R: 0xb0, G: 0x4a, B: 0x8e, A: 0xff},
}

// Ensure PNGRenderer implements the interface.
var _ driven.ReportRenderer = (*PNGRenderer)(nil)

// PNGRenderer writes a single three-panel PNG comparing detectors across
// dataset variants: mean track length, degradation against the baseline
// variant, and max track length.
type PNGRenderer struct {
	outDir string
}

// NewPNG creates a renderer writing into outDir.
func NewPNG(outDir string) *PNGRenderer {
	return &PNGRenderer{outDir: outDir}
}

// Render writes the comparison chart and returns its path.
func (r *PNGRenderer) Render(ctx context.Context, rep *domain.ComparisonReport) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rep == nil || len(rep.Detectors) == 0 || len(rep.Variants) == 0 {
		return nil, domain.ErrNoResults
	}

	names := make([]string, len(rep.Detectors))
	for i, d := range rep.Detectors {
		names[i] = string(d)
	}

	meanPanel := newBarPanel("Mean Track Length", "Frames", names)
	degPanel := newBarPanel(fmt.Sprintf("Degradation vs %s", rep.Variants[0]), "Percent", names)
	maxPanel := newBarPanel("Max Track Length", "Frames", names)

	barWidth := vg.Points(10)
	for vi, v := range rep.Variants {
		mean := make(plotter.Values, len(rep.Detectors))
		max := make(plotter.Values, len(rep.Detectors))
		for di, d := range rep.Detectors {
			if s, ok := rep.Lookup(d, v); ok {
				mean[di] = s.MeanTrackLength
				max[di] = float64(s.MaxTrackLength)
			}
		}

		off := barOffset(vi, len(rep.Variants), barWidth)
		c := palette[vi%len(palette)]
		if err := addBars(meanPanel, mean, barWidth, off, string(v), c); err != nil {
			return nil, err
		}
		if err := addBars(maxPanel, max, barWidth, off, string(v), c); err != nil {
			return nil, err
		}
	}

	// Degradation is relative to the first variant, so it only has bars
	// for the remaining ones.
	baseline := rep.Variants[0]
	for vi, v := range rep.Variants[1:] {
		vals := make(plotter.Values, len(rep.Detectors))
		for di, d := range rep.Detectors {
			base, okBase := rep.Lookup(d, baseline)
			s, ok := rep.Lookup(d, v)
			if okBase && ok {
				vals[di] = domain.Degradation(base.MeanTrackLength, s.MeanTrackLength)
			}
		}

		off := barOffset(vi, len(rep.Variants)-1, barWidth)
		c := palette[(vi+1)%len(palette)]
		if err := addBars(degPanel, vals, barWidth, off, string(v), c); err != nil {
			return nil, err
		}
	}

	img := vgimg.New(18*vg.Inch, 6*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: 1, Cols: 3, PadX: vg.Points(14), PadY: vg.Points(8)}
	panels := [][]*plot.Plot{{meanPanel, degPanel, maxPanel}}
	canvases := plot.Align(panels, tiles, dc)
	for col, p := range panels[0] {
		p.Draw(canvases[0][col])
	}

	if err := os.MkdirAll(r.outDir, 0755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(r.outDir, PNGFilename)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return []string{path}, nil
}

func newBarPanel(title, yLabel string, names []string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel
	p.NominalX(names...)
	p.Legend.Top = true
	p.Legend.Left = false
	return p
}

// barOffset centers the variant group of bars around each nominal tick.
func barOffset(i, n int, w vg.Length) vg.Length {
	return (vg.Length(i) - vg.Length(n-1)/2) * w
}

func addBars(p *plot.Plot, vals plotter.Values, w, off vg.Length, label string, c color.Color) error {
	bars, err := plotter.NewBarChart(vals, w)
	if err != nil {
		return err
	}
	bars.LineStyle.Width = 0
	bars.Color = c
	bars.Offset = off
	p.Add(bars)
	p.Legend.Add(label, bars)
	return nil
}
