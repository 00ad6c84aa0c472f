package datasource

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/donutreport/pkg/models"
)

var csvHeaders = map[string]string{
	"Accept":          "text/csv, */*",
	"Accept-Language": "en-US,en;q=0.9",
}

var htmlHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml",
	"Accept-Language": "en-US,en;q=0.9",
}

// ════════════════════════════════════════════════════════════════════
// Published sheet, CSV export
// ════════════════════════════════════════════════════════════════════

// SheetCSV reads a sheet published with "output=csv".
type SheetCSV struct {
	url    string
	client fetcher
}

// NewSheetCSV creates a CSV sheet source.
func NewSheetCSV(url string, client fetcher) *SheetCSV {
	return &SheetCSV{url: url, client: client}
}

func (s *SheetCSV) Name() string { return "sheet-csv" }

// Fetch downloads and parses the CSV export.
func (s *SheetCSV) Fetch(ctx context.Context) (*models.Table, error) {
	start := time.Now()
	body, err := s.client.Get(ctx, s.url, csvHeaders)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet csv: %w", err)
	}
	slog.Debug("fetched sheet", "source", s.Name(), "bytes", len(body), "took", time.Since(start))

	// Sheets serves the HTML sign-in page with 200 when the sheet is not
	// published; report that instead of a confusing CSV parse result.
	if looksLikeHTML(body) {
		return nil, fmt.Errorf("fetch sheet csv: got an HTML page, is the sheet published as CSV?")
	}
	return ParseCSV(bytes.NewReader(body))
}

func looksLikeHTML(body []byte) bool {
	head := strings.ToLower(strings.TrimSpace(string(body[:min(len(body), 512)])))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

// ════════════════════════════════════════════════════════════════════
// Published sheet, HTML export
// ════════════════════════════════════════════════════════════════════

// SheetHTML reads the first table of a "pubhtml" page.
type SheetHTML struct {
	url    string
	client fetcher
}

// NewSheetHTML creates an HTML sheet source.
func NewSheetHTML(url string, client fetcher) *SheetHTML {
	return &SheetHTML{url: url, client: client}
}

func (s *SheetHTML) Name() string { return "sheet-html" }

// Fetch downloads the page and extracts the first table with data.
func (s *SheetHTML) Fetch(ctx context.Context) (*models.Table, error) {
	start := time.Now()
	body, err := s.client.Get(ctx, s.url, htmlHeaders)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet html: %w", err)
	}
	slog.Debug("fetched sheet", "source", s.Name(), "bytes", len(body), "took", time.Since(start))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse sheet html: %w", err)
	}
	return ParseHTMLTable(doc)
}

// ParseHTMLTable extracts the first non-empty <table> in doc.
//
// Google's pubhtml tables ("waffle" class) carry spreadsheet column letters in
// <thead> and row numbers in a leading <th> per row; the real header is the
// first row of <td> cells. Other tables use <thead><th> as the header when
// present.
func ParseHTMLTable(doc *goquery.Document) (*models.Table, error) {
	var table *models.Table
	doc.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		var headers []string
		if !tbl.HasClass("waffle") {
			tbl.Find("thead th").Each(func(_ int, th *goquery.Selection) {
				headers = append(headers, cellText(th))
			})
		}

		var rows [][]string
		tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td")
			if cells.Length() == 0 {
				return
			}
			row := make([]string, 0, cells.Length())
			cells.Each(func(_ int, td *goquery.Selection) {
				row = append(row, cellText(td))
			})
			if blankRow(row) {
				return
			}
			rows = append(rows, row)
		})

		if len(headers) == 0 || blankRow(headers) {
			if len(rows) == 0 {
				return true
			}
			headers, rows = rows[0], rows[1:]
		}
		table = models.NewTable(headers, rows)
		return false
	})

	if table == nil {
		return nil, ErrNoTable
	}
	return table, nil
}

func cellText(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}
