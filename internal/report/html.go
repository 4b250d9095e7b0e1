package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/survey.planner/internal/units"
)

// Summary is the one-line stats text shown under the chart titles.
func Summary(in Input) string {
	if in.Stats == nil {
		return ""
	}
	s := in.Stats
	du := units.DistanceUnitFor(in.SpeedUnits)
	parts := []string{
		fmt.Sprintf("%d waypoints", s.Waypoints),
		fmt.Sprintf("%d photos", s.Photos),
		fmt.Sprintf("%.2f %s", units.ConvertDistance(s.DistanceM, du), du),
		units.FormatDuration(s.TotalSeconds),
		fmt.Sprintf("battery %.1f%%", s.BatteryPercent),
	}
	if in.Segment != nil && in.Segment.Speed > 0 {
		su := in.SpeedUnits
		if !units.IsValid(su) {
			su = units.MPS
		}
		parts = append(parts, fmt.Sprintf("cruise %.1f %s", units.ConvertSpeed(in.Segment.Speed, su), su))
	}
	if s.BatteryCapped {
		parts = append(parts, "exceeds one battery")
	}
	return strings.Join(parts, " | ")
}

func initOpts(in Input) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle:  in.title(),
		Width:      "100%",
		Height:     "720px",
		AssetsHost: in.AssetsHost,
	})
}

func planChart(in Input) *charts.Line {
	wps := in.Segment.Waypoints
	path := make([]opts.LineData, len(wps))
	var captures []opts.ScatterData
	for i, w := range wps {
		path[i] = opts.LineData{Value: []interface{}{w.Local.X, w.Local.Y}}
		if w.HasCapture() {
			captures = append(captures, opts.ScatterData{Value: []interface{}{w.Local.X, w.Local.Y}})
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts(in),
		charts.WithTitleOpts(opts.Title{Title: in.title(), Subtitle: Summary(in)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "X (m)", NameLocation: "middle", NameGap: 25, Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Y (m)", Scale: opts.Bool(true)}),
	)

	if len(in.Target) >= 3 {
		ring := make([]opts.LineData, 0, len(in.Target)+1)
		for _, v := range in.Target {
			ring = append(ring, opts.LineData{Value: []interface{}{v.X, v.Y}})
		}
		ring = append(ring, ring[0])
		line.AddSeries("target", ring, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}
	line.AddSeries("flight path", path, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	if len(captures) > 0 {
		sc := charts.NewScatter()
		sc.AddSeries("photo", captures, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))
		line.Overlap(sc)
	}
	return line
}

func altitudeChart(in Input) *charts.Line {
	wps := in.Segment.Waypoints
	du := units.DistanceUnitFor(in.SpeedUnits)
	data := make([]opts.LineData, len(wps))
	along := 0.0
	for i, w := range wps {
		if i > 0 {
			along += wps[i-1].Local.Distance(w.Local)
		}
		data[i] = opts.LineData{Value: []interface{}{units.ConvertDistance(along, du), w.Altitude}}
	}

	ref := "relative"
	if len(wps) > 0 && wps[0].AltitudeRef != "" {
		ref = strings.ToLower(string(wps[0].AltitudeRef))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts(in),
		charts.WithTitleOpts(opts.Title{Title: "Altitude profile", Subtitle: "altitude " + ref}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "distance (" + du + ")", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "altitude (m)"}),
	)
	line.AddSeries("altitude", data)
	return line
}

// RenderHTML writes a page with the plan view and the altitude profile.
func RenderHTML(in Input, w io.Writer) error {
	if in.Segment == nil || len(in.Segment.Waypoints) == 0 {
		return ErrNothingToDraw
	}
	page := components.NewPage()
	page.SetPageTitle(in.title())
	if in.AssetsHost != "" {
		page.SetAssetsHost(in.AssetsHost)
	}
	page.AddCharts(planChart(in), altitudeChart(in))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}
