// Package app wires the data source, the normalizer and the chart writers
// into the build pipeline used by the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/seenimoa/donutreport/internal/config"
	"github.com/seenimoa/donutreport/internal/datasource"
	"github.com/seenimoa/donutreport/internal/normalize"
	"github.com/seenimoa/donutreport/internal/report"
)

// Pipeline runs fetch → normalize → render for one configuration.
type Pipeline struct {
	cfg *config.Config

	// newSource is swapped in tests.
	newSource func(datasource.Options) (datasource.Source, error)
}

// New validates cfg and returns a pipeline for it.
func New(cfg *config.Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &Pipeline{cfg: cfg, newSource: datasource.New}, nil
}

// Loaded is a normalized dataset plus where it came from.
type Loaded struct {
	Source string // display form; sheet URLs are masked
	*normalize.Result
}

// Load fetches the table and normalizes it. A *normalize.MissingColumnError
// is returned unchanged so callers can print its diagnostics.
func (p *Pipeline) Load(ctx context.Context) (*Loaded, error) {
	format, err := datasource.ParseFormat(strings.ToLower(p.cfg.Source.Format))
	if err != nil {
		return nil, err
	}
	src, err := p.newSource(datasource.Options{
		URL:     p.cfg.Source.URL,
		File:    p.cfg.Source.File,
		Format:  format,
		Timeout: p.cfg.Source.Timeout,
		Retries: p.cfg.Source.Retries,
	})
	if err != nil {
		return nil, err
	}
	display := config.DescribeSource(p.cfg).Value

	start := time.Now()
	table, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", display, err)
	}
	slog.Info("table fetched",
		"source", src.Name(),
		"rows", table.Len(),
		"columns", len(table.Headers),
		"duration", time.Since(start).Round(time.Millisecond))

	policy, err := normalize.ParseZeroDozensPolicy(strings.ToLower(p.cfg.Metrics.ZeroDozens))
	if err != nil {
		return nil, err
	}
	res, err := normalize.Normalize(table, normalize.Options{
		Candidates: candidates(p.cfg.Columns),
		ZeroDozens: policy,
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("columns resolved", "columns", res.Columns.String())
	logDrops(res)
	if res.Dataset.Len() == 0 {
		slog.Warn("no usable rows; charts will be empty", "source", display)
	}
	return &Loaded{Source: display, Result: res}, nil
}

// Output lists the files a build wrote.
type Output struct {
	Charts []report.Written `json:"charts"`
	HTML   string           `json:"html,omitempty"`
	Rows   int              `json:"rows"`
	Drops  int              `json:"dropped"`
}

// Build loads the dataset and writes every chart, plus report.html when
// output.html_report is set.
func (p *Pipeline) Build(ctx context.Context) (*Output, error) {
	loaded, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}
	return p.Render(ctx, loaded)
}

// Render writes the outputs for an already loaded dataset.
func (p *Pipeline) Render(ctx context.Context, loaded *Loaded) (*Output, error) {
	out := p.cfg.Output
	renderer, err := report.NewRenderer(report.ImageFormat(out.Format), report.RenderOptions{
		Width:  out.Width,
		Height: out.Height,
		DPI:    out.DPI,
	})
	if err != nil {
		return nil, err
	}

	written, err := report.WriteCharts(ctx, loaded.Dataset, report.WriteOptions{
		Dir:         out.Dir,
		Renderer:    renderer,
		Concurrency: out.Concurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("writing charts: %w", err)
	}
	result := &Output{Charts: written, Rows: loaded.Dataset.Len(), Drops: len(loaded.Dropped)}

	if out.HTMLReport {
		chart := report.DefaultChartConfig()
		chart.Width, chart.Height = out.Width, out.Height
		path, err := report.WriteHTML(out.Dir, loaded.Dataset, report.HTMLOptions{
			Source:      loaded.Source,
			DroppedRows: len(loaded.Dropped),
			Chart:       chart,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("html report written", "path", path)
		result.HTML = path
	}
	return result, nil
}

func candidates(c config.ColumnsConfig) normalize.Candidates {
	return normalize.Candidates{
		normalize.FieldDate:       c.Date,
		normalize.FieldDozens:     c.Dozens,
		normalize.FieldTotalPrice: c.TotalPrice,
	}
}

func logDrops(res *normalize.Result) {
	if len(res.Dropped) == 0 {
		return
	}
	slog.Info("rows skipped",
		"total", len(res.Dropped),
		"bad_date", res.DroppedBy(normalize.ErrBadDate),
		"bad_number", res.DroppedBy(normalize.ErrBadNumber),
		"zero_dozens", res.DroppedBy(normalize.ErrZeroDozen))
	for _, d := range res.Dropped {
		slog.Debug("row skipped", "row", d.Row, "field", d.Field, "value", d.Value, "err", d.Err)
	}
}
