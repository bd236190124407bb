package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/auditsample/internal/httputil"
)

// showAllocationChart renders a quick bar chart (HTML) of planned vs realized
// allocations for a stored run using go-echarts. This is a debugging-only
// endpoint to visually inspect stratum balance without a frontend.
// Query params:
//   - run_id (required)
func (s *Server) showAllocationChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.db == nil {
		httputil.InternalServerError(w, "no database configured")
		return
	}

	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		httputil.BadRequest(w, "Missing 'run_id' parameter")
		return
	}

	run, err := s.db.GetRun(runID)
	if err != nil {
		httputil.NotFound(w, fmt.Sprintf("run %s not found", runID))
		return
	}
	if run.Result == nil || len(run.Result.Summary.Distribution) == 0 {
		httputil.NotFound(w, "run has no distribution data")
		return
	}

	dist := run.Result.Summary.Distribution
	keys := make([]string, 0, len(dist))
	planned := make([]opts.BarData, 0, len(dist))
	realized := make([]opts.BarData, 0, len(dist))
	for _, d := range dist {
		keys = append(keys, d.Key)
		planned = append(planned, opts.BarData{Value: d.PlannedCount})
		realized = append(realized, opts.BarData{Value: d.RealizedCount})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Sample Allocation", Theme: "dark", Width: "1100px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Stratum Allocation",
			Subtitle: fmt.Sprintf("run=%s method=%s seed=%d strata=%d", run.ID, run.Method, run.Seed, len(dist)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "stratum", AxisLabel: &opts.AxisLabel{Rotate: 30, Show: opts.Bool(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "records"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	bar.SetXAxis(keys).
		AddSeries("planned", planned).
		AddSeries("realized", realized)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
