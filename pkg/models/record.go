package models

import (
	"math"
	"time"
)

// DonutsPerDozen converts per-dozen amounts to per-donut amounts.
const DonutsPerDozen = 12

// Record is one distribution observation plus its derived metrics.
type Record struct {
	Date       time.Time `json:"date"        yaml:"date"`
	Dozens     float64   `json:"dozens"      yaml:"dozens"`
	TotalPrice float64   `json:"total_price" yaml:"total_price"`

	// Derived fields, filled in by the normalizer.
	PricePerDozen   float64 `json:"price_per_dozen"  yaml:"price_per_dozen"`
	PricePerDonut   float64 `json:"price_per_donut"  yaml:"price_per_donut"`
	CumulativeTotal float64 `json:"cumulative_total" yaml:"cumulative_total"`
}

// HasUnitPrice reports whether the per-dozen and per-donut metrics are finite.
// They are not when the record has zero dozens.
func (r Record) HasUnitPrice() bool {
	return isFinite(r.PricePerDozen) && isFinite(r.PricePerDonut)
}

// Dataset is an ascending-by-date sequence of records.
type Dataset struct {
	Records []Record `json:"records" yaml:"records"`
}

// Len returns the number of records.
func (d Dataset) Len() int { return len(d.Records) }

// Dates returns the record dates in order.
func (d Dataset) Dates() []time.Time {
	out := make([]time.Time, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.Date
	}
	return out
}

// Series extracts one value per record using fn.
func (d Dataset) Series(fn func(Record) float64) []float64 {
	out := make([]float64, len(d.Records))
	for i, r := range d.Records {
		out[i] = fn(r)
	}
	return out
}

// Summary holds dataset-level aggregates for reports.
type Summary struct {
	Rows              int       `json:"rows"                yaml:"rows"`
	FirstDate         time.Time `json:"first_date"          yaml:"first_date"`
	LastDate          time.Time `json:"last_date"           yaml:"last_date"`
	TotalDozens       float64   `json:"total_dozens"        yaml:"total_dozens"`
	TotalRevenue      float64   `json:"total_revenue"       yaml:"total_revenue"`
	AvgPricePerDozen  float64   `json:"avg_price_per_dozen" yaml:"avg_price_per_dozen"`
	UndefinedUnitRows int       `json:"undefined_unit_rows" yaml:"undefined_unit_rows"`
}

// Summarize computes aggregates over the dataset. AvgPricePerDozen is the mean
// over records with a finite unit price; it is NaN when there are none.
func (d Dataset) Summarize() Summary {
	s := Summary{Rows: len(d.Records), AvgPricePerDozen: math.NaN()}
	if len(d.Records) == 0 {
		return s
	}
	s.FirstDate = d.Records[0].Date
	s.LastDate = d.Records[len(d.Records)-1].Date

	var sum float64
	var n int
	for _, r := range d.Records {
		s.TotalDozens += r.Dozens
		s.TotalRevenue += r.TotalPrice
		if !r.HasUnitPrice() {
			s.UndefinedUnitRows++
			continue
		}
		sum += r.PricePerDozen
		n++
	}
	if n > 0 {
		s.AvgPricePerDozen = sum / float64(n)
	}
	return s
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
