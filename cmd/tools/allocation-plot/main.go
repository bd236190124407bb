// Command allocation-plot renders a planned-vs-realized allocation bar chart
// from a sampling result JSON file (as written by `auditsample sample -out`).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/auditsample/internal/sampling"
)

func main() {
	input := flag.String("in", "", "Sampling result JSON file (required)")
	output := flag.String("out", "allocation.png", "Output PNG path")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		log.Fatal("allocation-plot: -in is required")
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *input, err)
	}

	var result sampling.Result
	if err := json.Unmarshal(data, &result); err != nil {
		log.Fatalf("failed to parse result JSON: %v", err)
	}

	dist := result.Summary.Distribution
	if len(dist) == 0 {
		log.Fatal("result has no distribution data")
	}

	if err := renderAllocationChart(result.Summary, *output); err != nil {
		log.Fatalf("failed to render chart: %v", err)
	}
	fmt.Printf("wrote %s (%d strata)\n", *output, len(dist))
}

// renderAllocationChart draws grouped planned/realized bars, one pair per
// stratum, and saves them as a PNG.
func renderAllocationChart(summary sampling.Summary, path string) error {
	dist := summary.Distribution

	keys := make([]string, len(dist))
	planned := make(plotter.Values, len(dist))
	realized := make(plotter.Values, len(dist))
	for i, d := range dist {
		keys[i] = d.Key
		planned[i] = float64(d.PlannedCount)
		realized[i] = float64(d.RealizedCount)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Stratum Allocation (%s, seed %d)", summary.Method, summary.Seed)
	p.Y.Label.Text = "records"
	p.NominalX(keys...)

	w := vg.Points(18)

	plannedBars, err := plotter.NewBarChart(planned, w)
	if err != nil {
		return fmt.Errorf("failed to build planned bars: %w", err)
	}
	plannedBars.LineStyle.Width = vg.Length(0)
	plannedBars.Color = color.RGBA{R: 64, G: 110, B: 170, A: 255}
	plannedBars.Offset = -w / 2

	realizedBars, err := plotter.NewBarChart(realized, w)
	if err != nil {
		return fmt.Errorf("failed to build realized bars: %w", err)
	}
	realizedBars.LineStyle.Width = vg.Length(0)
	realizedBars.Color = color.RGBA{R: 220, G: 150, B: 60, A: 255}
	realizedBars.Offset = w / 2

	p.Add(plannedBars, realizedBars)
	p.Legend.Add("planned", plannedBars)
	p.Legend.Add("realized", realizedBars)
	p.Legend.Top = true

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
