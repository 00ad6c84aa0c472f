package report

import (
	"github.com/seenimoa/donutreport/pkg/models"
	"github.com/seenimoa/donutreport/pkg/utils"
)

// ChartSpec describes one chart: its file name, labels and the value plotted
// for each record.
type ChartSpec struct {
	Name   string // file name without extension
	Title  string
	YLabel string
	Value  func(models.Record) float64
	// Format renders y-axis tick labels in SVG output and the HTML report.
	Format func(float64) string
}

// DefaultCharts returns the four charts of the distribution report.
func DefaultCharts() []ChartSpec {
	return []ChartSpec{
		{
			Name:   "dozens_over_time",
			Title:  "Dozens Distributed Over Time",
			YLabel: "Dozens",
			Value:  func(r models.Record) float64 { return r.Dozens },
			Format: utils.FormatQuantity,
		},
		{
			Name:   "daily_total_price",
			Title:  "Total Price per Distribution",
			YLabel: "USD",
			Value:  func(r models.Record) float64 { return r.TotalPrice },
			Format: utils.FormatUSDCompact,
		},
		{
			Name:   "cumulative_total",
			Title:  "Cumulative Total Revenue",
			YLabel: "USD (running total)",
			Value:  func(r models.Record) float64 { return r.CumulativeTotal },
			Format: utils.FormatUSDCompact,
		},
		{
			Name:   "price_per_dozen",
			Title:  "Price per Dozen",
			YLabel: "USD per dozen",
			Value:  func(r models.Record) float64 { return r.PricePerDozen },
			Format: utils.FormatUSDCompact,
		},
	}
}

// Points projects the dataset onto the chart's value.
func (s ChartSpec) Points(ds models.Dataset) []TimePoint {
	out := make([]TimePoint, len(ds.Records))
	for i, r := range ds.Records {
		out[i] = TimePoint{Time: r.Date, Value: s.Value(r)}
	}
	return out
}
