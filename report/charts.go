// Package report renders session history as HTML charts and serves it,
// with the raw history as JSON, over HTTP.
package report

import (
	"fmt"
	"io"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"hush/session"
	"hush/store"
	"hush/zone"
)

// AssetsHost serves the echarts javascript.
var AssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

var stateColors = map[zone.State]string{
	zone.Silent:  "#6c757d",
	zone.Low:     "#4dabf7",
	zone.Optimal: "#40c057",
	zone.Warning: "#fab005",
	zone.Danger:  "#fa5252",
}

// StateBar charts how often each state was entered during rec.
func StateBar(rec session.Record) *charts.Bar {
	counts := rec.StateCounts()
	x := make([]string, 0, len(zone.States))
	y := make([]opts.BarData, 0, len(zone.States))
	for _, s := range zone.States {
		x = append(x, s.String())
		y = append(y, opts.BarData{
			Value:     counts[s],
			ItemStyle: &opts.ItemStyle{Color: stateColors[s]},
		})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Latest session",
			Subtitle: fmt.Sprintf("%s  success %s  consistency %d", session.FormatClock(rec.TotalDuration), session.FormatPercent(rec.SuccessRate()), rec.ConsistencyScore),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("transitions", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

// HistoryLine charts success rate and consistency per session, oldest
// first. recs are expected most recent first, as ListSessions returns them.
func HistoryLine(recs []session.Record) *charts.Line {
	ordered := slices.Clone(recs)
	slices.Reverse(ordered)

	x := make([]string, 0, len(ordered))
	success := make([]opts.LineData, 0, len(ordered))
	consistency := make([]opts.LineData, 0, len(ordered))
	for _, r := range ordered {
		x = append(x, r.StartTime.Local().Format("01-02 15:04"))
		success = append(success, opts.LineData{Value: int(r.SuccessRate() + 0.5)})
		consistency = append(consistency, opts.LineData{Value: r.ConsistencyScore})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "History", Subtitle: fmt.Sprintf("last %d sessions", len(ordered))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100}),
	)
	line.SetXAxis(x).
		AddSeries("success %", success).
		AddSeries("consistency", consistency)
	return line
}

// StatsBar charts the aggregate totals in minutes.
func StatsBar(st store.Stats) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "280px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Totals",
			Subtitle: fmt.Sprintf("%d sessions  average success %s", st.Count, session.FormatPercent(st.AvgSuccessRate)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis([]string{"total", "in target"}).
		AddSeries("minutes", []opts.BarData{
			{Value: st.TotalTime / 60},
			{Value: st.TotalGreenTime / 60, ItemStyle: &opts.ItemStyle{Color: stateColors[zone.Optimal]}},
		}, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}

// Render writes an HTML page for recs (most recent first) and st.
func Render(w io.Writer, recs []session.Record, st store.Stats) error {
	page := components.NewPage()
	page.SetAssetsHost(AssetsHost)
	page.PageTitle = "hush report"
	if len(recs) > 0 {
		page.AddCharts(StateBar(recs[0]), HistoryLine(recs), StatsBar(st))
	} else {
		page.AddCharts(StatsBar(st))
	}
	return page.Render(w)
}
