package normalize

import "github.com/seenimoa/donutreport/pkg/models"

// Derive fills the per-record unit prices and the running total. Records must
// already be in date order. Zero dozens gives +Inf (or NaN for 0/0) unit
// prices for that record only.
func Derive(records []models.Record) models.Dataset {
	out := make([]models.Record, len(records))
	var running float64
	for i, r := range records {
		r.PricePerDozen = r.TotalPrice / r.Dozens
		r.PricePerDonut = r.PricePerDozen / models.DonutsPerDozen
		running += r.TotalPrice
		r.CumulativeTotal = running
		out[i] = r
	}
	return models.Dataset{Records: out}
}
