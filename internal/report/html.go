package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/seenimoa/donutreport/pkg/models"
	"github.com/seenimoa/donutreport/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// HTML Summary Report
// ════════════════════════════════════════════════════════════════════

// HTMLOptions controls GenerateHTML.
type HTMLOptions struct {
	Title       string      // default: "Donut Distribution Report"
	Source      string      // shown in the header; mask URLs before passing
	DroppedRows int         // rows skipped during normalization
	Specs       []ChartSpec // default: DefaultCharts()
	Chart       ChartConfig // inline SVG sizing
	GeneratedAt time.Time   // default: now
}

// ReportData is the template payload.
type ReportData struct {
	Title       string
	Source      string
	GeneratedAt string

	Rows         int
	DroppedRows  int
	DateRange    string
	TotalDozens  string
	TotalRevenue string
	AvgPerDozen  string
	AvgPerDonut  string
	Undefined    int

	Charts  []ChartBlock
	Records []RecordRow
}

// ChartBlock is one inline chart.
type ChartBlock struct {
	Title string
	SVG   template.HTML
}

// RecordRow is one formatted table row.
type RecordRow struct {
	Date            string
	Dozens          string
	TotalPrice      string
	PricePerDozen   string
	PricePerDonut   string
	CumulativeTotal string
}

// GenerateHTML renders a self-contained HTML report with inline SVG charts,
// headline aggregates and the derived table.
func GenerateHTML(ds models.Dataset, opts HTMLOptions) (string, error) {
	data := buildReportData(ds, opts)

	tmpl, err := template.New("report").Parse(ReportTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// HTMLFileName is the report file written next to the charts.
const HTMLFileName = "report.html"

// WriteHTML generates the report and writes it to dir/report.html.
func WriteHTML(dir string, ds models.Dataset, opts HTMLOptions) (string, error) {
	html, err := GenerateHTML(ds, opts)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, HTMLFileName)
	err = writeFileAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, html)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("writing html report: %w", err)
	}
	return path, nil
}

func buildReportData(ds models.Dataset, opts HTMLOptions) ReportData {
	if opts.Title == "" {
		opts.Title = "Donut Distribution Report"
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}
	specs := opts.Specs
	if specs == nil {
		specs = DefaultCharts()
	}

	s := ds.Summarize()
	data := ReportData{
		Title:        opts.Title,
		Source:       opts.Source,
		GeneratedAt:  opts.GeneratedAt.Format("02 Jan 2006, 15:04 MST"),
		Rows:         s.Rows,
		DroppedRows:  opts.DroppedRows,
		DateRange:    "-",
		TotalDozens:  utils.FormatQuantity(s.TotalDozens),
		TotalRevenue: utils.FormatUSD(s.TotalRevenue),
		AvgPerDozen:  utils.FormatUSD(s.AvgPricePerDozen),
		AvgPerDonut:  utils.FormatUSD(s.AvgPricePerDozen / models.DonutsPerDozen),
		Undefined:    s.UndefinedUnitRows,
	}
	if s.Rows > 0 {
		data.DateRange = utils.FormatDate(s.FirstDate) + " → " + utils.FormatDate(s.LastDate)
	}

	svg := SVGRenderer{Config: opts.Chart}
	for _, spec := range specs {
		// TimeSeriesChart escapes every text node it emits.
		data.Charts = append(data.Charts, ChartBlock{
			Title: spec.Title,
			SVG:   template.HTML(svg.SVG(spec, ds)),
		})
	}

	for _, r := range ds.Records {
		data.Records = append(data.Records, RecordRow{
			Date:            utils.FormatDate(r.Date),
			Dozens:          utils.FormatQuantity(r.Dozens),
			TotalPrice:      utils.FormatUSD(r.TotalPrice),
			PricePerDozen:   utils.FormatUSD(r.PricePerDozen),
			PricePerDonut:   utils.FormatUSD(r.PricePerDonut),
			CumulativeTotal: utils.FormatUSD(r.CumulativeTotal),
		})
	}
	return data
}
