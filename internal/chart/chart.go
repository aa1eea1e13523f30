// Package chart renders record trends as a standalone HTML page.
package chart

import (
	"errors"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/renalog/renalog/internal/clinical"
	"github.com/renalog/renalog/internal/model"
)

// ErrNoRecords is returned when there is nothing to chart.
var ErrNoRecords = errors.New("no records to chart")

// limitLineStyle is the dashed gray style for reference lines.
var limitLineStyle = opts.MarkLineStyle{
	Symbol: []string{"none", "none"},
	LineStyle: &opts.LineStyle{
		Color: "rgba(128, 128, 128, 0.6)",
		Type:  "dashed",
		Width: 1.5,
	},
}

// Render writes the trend page for records to w. Records are charted in
// chronological order; age selects the blood-pressure limits.
func Render(w io.Writer, records []*model.HealthRecord, age int) error {
	page, err := Build(records, age)
	if err != nil {
		return err
	}
	return page.Render(w)
}

// Build assembles the weight, blood-pressure and fluid-removal charts.
func Build(records []*model.HealthRecord, age int) (*components.Page, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	sorted := make([]*model.HealthRecord, len(records))
	copy(sorted, records)
	model.SortRecords(sorted)

	dates := make([]string, 0, len(sorted))
	for _, r := range sorted {
		dates = append(dates, r.Date)
	}

	page := components.NewPage()
	page.PageTitle = "renalog trends"
	page.AddCharts(
		weightChart(dates, sorted),
		pressureChart(dates, sorted, age),
		fluidChart(dates, sorted),
	)
	return page, nil
}

func newLine(title, unit string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: unit,
		}),
	)
	return line
}

func weightChart(dates []string, records []*model.HealthRecord) *charts.Line {
	weight := make([]opts.LineData, 0, len(records))
	dry := make([]opts.LineData, 0, len(records))
	for _, r := range records {
		weight = append(weight, opts.LineData{Value: r.Weight})
		dry = append(dry, opts.LineData{Value: r.DryWeight})
	}

	line := newLine("Weight", "kg")
	line.SetXAxis(dates).
		AddSeries("Weight", weight,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(true)}),
			charts.WithMarkPointNameTypeItemOpts(
				opts.MarkPointNameTypeItem{Name: "Max", Type: "max"},
			),
		).
		AddSeries("Dry weight", dry,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		)
	return line
}

func pressureChart(dates []string, records []*model.HealthRecord, age int) *charts.Line {
	sys := make([]opts.LineData, 0, len(records))
	dia := make([]opts.LineData, 0, len(records))
	for _, r := range records {
		s, d := r.Pressure()
		if s == nil {
			// A nil value leaves a gap in the line
			sys = append(sys, opts.LineData{Value: nil})
			dia = append(dia, opts.LineData{Value: nil})
			continue
		}
		sys = append(sys, opts.LineData{Value: *s})
		dia = append(dia, opts.LineData{Value: *d})
	}

	sysLimit, diaLimit := clinical.Limits(age)

	line := newLine("Blood pressure", "mmHg")
	line.SetXAxis(dates).
		AddSeries("Systolic", sys,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
			withLimits(
				opts.MarkLineNameYAxisItem{Name: "Systolic limit", YAxis: sysLimit},
				opts.MarkLineNameYAxisItem{Name: "Hypotension", YAxis: clinical.HypotensionSystolic},
			),
		).
		AddSeries("Diastolic", dia,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
			withLimits(
				opts.MarkLineNameYAxisItem{Name: "Diastolic limit", YAxis: diaLimit},
				opts.MarkLineNameYAxisItem{Name: "Hypotension", YAxis: clinical.HypotensionDiastolic},
			),
		)
	return line
}

func fluidChart(dates []string, records []*model.HealthRecord) *charts.Line {
	pct := make([]opts.LineData, 0, len(records))
	for _, r := range records {
		a := clinical.CheckFluidRemoval(r.DryWeight, r.FluidRemoval)
		if !a.Evaluated {
			pct = append(pct, opts.LineData{Value: nil})
			continue
		}
		pct = append(pct, opts.LineData{Value: math.Round(a.Percent()*100) / 100})
	}

	line := newLine("Fluid removal", "% of dry weight")
	line.SetXAxis(dates).
		AddSeries("Fluid removal", pct,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
			withLimits(
				opts.MarkLineNameYAxisItem{Name: "Limit", YAxis: clinical.FluidRemovalLimit * 100},
			),
		)
	return line
}

// withLimits draws horizontal reference lines on a series.
func withLimits(items ...opts.MarkLineNameYAxisItem) charts.SeriesOpts {
	data := make([]interface{}, 0, len(items))
	for _, it := range items {
		data = append(data, it)
	}
	return func(s *charts.SingleSeries) {
		s.MarkLines = &opts.MarkLines{
			Data:          data,
			MarkLineStyle: limitLineStyle,
		}
	}
}
