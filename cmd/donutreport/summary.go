package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/donutreport/internal/app"
	"github.com/seenimoa/donutreport/internal/normalize"
	"github.com/seenimoa/donutreport/pkg/utils"
)

// --- Summary Command ---

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the normalized dataset and its totals",
	Long: `Fetch and normalize the distribution table without drawing charts.

Formats:
  table  aligned terminal table (default)
  json   machine-readable; undefined unit prices are null
  yaml   same shape as json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		format = strings.ToLower(format)
		if format != "table" && format != "json" && format != "yaml" {
			return fmt.Errorf("unsupported summary format %q (want table, json or yaml)", format)
		}

		p, err := app.New(cfg)
		if err != nil {
			return err
		}
		loaded, err := p.Load(cmd.Context())
		if err != nil {
			return err
		}
		return writeSummary(os.Stdout, format, newSummaryView(loaded))
	},
}

func init() {
	summaryCmd.Flags().String("format", "table", "output format: table, json or yaml")
}

// summaryView is the printable shape of a loaded dataset. JSON cannot carry
// NaN or Inf, so undefined metrics become nil.
type summaryView struct {
	Source            string            `json:"source"              yaml:"source"`
	Columns           map[string]string `json:"columns"             yaml:"columns"`
	Rows              int               `json:"rows"                yaml:"rows"`
	Dropped           int               `json:"dropped"             yaml:"dropped"`
	FirstDate         string            `json:"first_date"          yaml:"first_date"`
	LastDate          string            `json:"last_date"           yaml:"last_date"`
	TotalDozens       float64           `json:"total_dozens"        yaml:"total_dozens"`
	TotalRevenue      float64           `json:"total_revenue"       yaml:"total_revenue"`
	AvgPricePerDozen  *float64          `json:"avg_price_per_dozen" yaml:"avg_price_per_dozen"`
	UndefinedUnitRows int               `json:"undefined_unit_rows" yaml:"undefined_unit_rows"`
	Records           []recordView      `json:"records"             yaml:"records"`
}

type recordView struct {
	Date            string   `json:"date"             yaml:"date"`
	Dozens          float64  `json:"dozens"           yaml:"dozens"`
	TotalPrice      float64  `json:"total_price"      yaml:"total_price"`
	PricePerDozen   *float64 `json:"price_per_dozen"  yaml:"price_per_dozen"`
	PricePerDonut   *float64 `json:"price_per_donut"  yaml:"price_per_donut"`
	CumulativeTotal float64  `json:"cumulative_total" yaml:"cumulative_total"`
}

func newSummaryView(l *app.Loaded) summaryView {
	s := l.Dataset.Summarize()
	v := summaryView{
		Source:            l.Source,
		Columns:           make(map[string]string, len(l.Columns)),
		Rows:              s.Rows,
		Dropped:           len(l.Dropped),
		TotalDozens:       s.TotalDozens,
		TotalRevenue:      s.TotalRevenue,
		AvgPricePerDozen:  finite(s.AvgPricePerDozen),
		UndefinedUnitRows: s.UndefinedUnitRows,
		Records:           make([]recordView, 0, l.Dataset.Len()),
	}
	if s.Rows > 0 {
		v.FirstDate = utils.FormatDate(s.FirstDate)
		v.LastDate = utils.FormatDate(s.LastDate)
	}
	for _, f := range normalize.Fields() {
		v.Columns[string(f)] = l.Columns[f].Header
	}
	for _, r := range l.Dataset.Records {
		v.Records = append(v.Records, recordView{
			Date:            utils.FormatDate(r.Date),
			Dozens:          r.Dozens,
			TotalPrice:      r.TotalPrice,
			PricePerDozen:   finite(r.PricePerDozen),
			PricePerDonut:   finite(r.PricePerDonut),
			CumulativeTotal: r.CumulativeTotal,
		})
	}
	return v
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func writeSummary(w io.Writer, format string, v summaryView) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		writeSummaryTable(w, v)
		return nil
	}
}

func writeSummaryTable(w io.Writer, v summaryView) {
	fmt.Fprintf(w, "Source: %s\n", v.Source)
	fmt.Fprintf(w, "Columns: date=%q dozens=%q total_price=%q\n\n",
		v.Columns[string(normalize.FieldDate)],
		v.Columns[string(normalize.FieldDozens)],
		v.Columns[string(normalize.FieldTotalPrice)])

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Date", "Dozens", "Total Price", "Per Dozen", "Per Donut", "Cumulative"})
	for _, r := range v.Records {
		t.AppendRow(table.Row{
			r.Date,
			utils.FormatQuantity(r.Dozens),
			utils.FormatUSD(r.TotalPrice),
			formatOptionalUSD(r.PricePerDozen),
			formatOptionalUSD(r.PricePerDonut),
			utils.FormatUSD(r.CumulativeTotal),
		})
	}
	avg := formatOptionalUSD(v.AvgPricePerDozen)
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d rows", v.Rows),
		utils.FormatQuantity(v.TotalDozens),
		utils.FormatUSD(v.TotalRevenue),
		"avg " + avg,
		"",
		"",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()

	if v.Dropped > 0 {
		fmt.Fprintf(w, "%d row(s) skipped (unparseable date or number)\n", v.Dropped)
	}
	if v.UndefinedUnitRows > 0 {
		fmt.Fprintf(w, "%d row(s) with zero dozens have no unit price\n", v.UndefinedUnitRows)
	}
}

func formatOptionalUSD(f *float64) string {
	if f == nil {
		return "n/a"
	}
	return utils.FormatUSD(*f)
}
