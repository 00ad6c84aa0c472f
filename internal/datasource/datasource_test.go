package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"github.com/seenimoa/donutreport/internal/infra"
	"github.com/seenimoa/donutreport/pkg/models"
)

const sampleCSV = "\ufeffDate Distributed,Dozens of Donut,Prices\n" +
	"2024-01-02,2,24\n" +
	"\n" +
	"2024-01-01,1,\"$10\"\n" +
	",,\n"

const samplePubHTML = `<!DOCTYPE html><html><body>
<div id="sheets-viewport"><table class="waffle" cellspacing="0" cellpadding="0">
<thead><tr><th class="row-header freezebar-origin-ltr"></th><th id="0C0">A</th><th id="0C1">B</th><th id="0C2">C</th></tr></thead>
<tbody>
<tr><th class="row-headers-background"><div class="row-header-wrapper">1</div></th><td class="s0">Date Distributed</td><td class="s0">Dozens of Donut</td><td class="s0">Prices</td></tr>
<tr><th class="row-headers-background"><div class="row-header-wrapper">2</div></th><td>1/2/2024</td><td>2</td><td>$24.00</td></tr>
<tr><th class="row-headers-background"><div class="row-header-wrapper">3</div></th><td>1/1/2024</td><td>1</td><td>$10.00</td></tr>
<tr><th class="row-headers-background"><div class="row-header-wrapper">4</div></th><td></td><td></td><td></td></tr>
</tbody></table></div></body></html>`

func testClient() *infra.HTTPClient {
	return infra.NewHTTPClient(infra.HTTPOptions{Timeout: 5 * time.Second})
}

// --- CSV parsing ---

func TestParseCSV(t *testing.T) {
	tbl, err := ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	want := &models.Table{
		Headers: []string{"Date Distributed", "Dozens of Donut", "Prices"},
		Rows: [][]string{
			{"2024-01-02", "2", "24"},
			{"2024-01-01", "1", "$10"},
		},
	}
	if diff := cmp.Diff(want, tbl); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCSV_RaggedRows(t *testing.T) {
	tbl, err := ParseCSV(strings.NewReader("Date,Dozens,Price\n2024-01-01,1\n2024-01-02,2,3,extra\n"))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.Len())
	}
	if tbl.Cell(0, 2) != "" {
		t.Errorf("short row cell: got %q", tbl.Cell(0, 2))
	}
}

func TestParseCSV_Empty(t *testing.T) {
	for _, in := range []string{"", "\n\n", ",,\n"} {
		if _, err := ParseCSV(strings.NewReader(in)); !errors.Is(err, ErrEmptyTable) {
			t.Errorf("ParseCSV(%q): expected ErrEmptyTable, got %v", in, err)
		}
	}
}

// --- Format detection ---

func TestDetectFormat(t *testing.T) {
	for _, tc := range []struct {
		url  string
		want Format
	}{
		{"https://docs.google.com/spreadsheets/d/e/KEY/pub?output=csv", FormatCSV},
		{"https://docs.google.com/spreadsheets/d/e/KEY/pub?gid=0&output=csv", FormatCSV},
		{"https://docs.google.com/spreadsheets/d/e/KEY/pubhtml", FormatHTML},
		{"https://docs.google.com/spreadsheets/d/e/KEY/pub?output=html", FormatHTML},
		{"https://example.com/export/donuts.csv", FormatCSV},
		{"https://example.com/some/endpoint", FormatCSV},
	} {
		if got := DetectFormat(tc.url); got != tc.want {
			t.Errorf("DetectFormat(%q): got %s, want %s", tc.url, got, tc.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatAuto, "auto": FormatAuto, "CSV": FormatCSV, "html": FormatHTML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q): got (%s, %v)", in, got, err)
		}
	}
	if _, err := ParseFormat("xlsx"); err == nil {
		t.Error("expected error for xlsx")
	}
}

// --- Source selection ---

func TestNew(t *testing.T) {
	src, err := New(Options{File: "data.csv", URL: "https://example.com/x?output=csv"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := src.(*File); !ok {
		t.Errorf("expected *File when a file is set, got %T", src)
	}

	src, err = New(Options{URL: "https://docs.google.com/spreadsheets/d/e/KEY/pubhtml"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := src.(*SheetHTML); !ok {
		t.Errorf("expected *SheetHTML for pubhtml URL, got %T", src)
	}

	src, err = New(Options{URL: "https://docs.google.com/spreadsheets/d/e/KEY/pubhtml", Format: FormatCSV})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := src.(*SheetCSV); !ok {
		t.Errorf("expected explicit csv format to win, got %T", src)
	}

	if _, err := New(Options{}); err == nil {
		t.Error("expected error without URL or file")
	}
}

// --- Remote sources ---

func TestSheetCSVFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("output") != "csv" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	src := NewSheetCSV(srv.URL+"/pub?output=csv", testClient())
	tbl, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if tbl.Len() != 2 || tbl.Headers[0] != "Date Distributed" {
		t.Errorf("unexpected table: %+v", tbl)
	}
}

func TestSheetCSVFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	_, err := NewSheetCSV(srv.URL, testClient()).Fetch(context.Background())
	var httpErr *infra.ErrHTTP
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *infra.ErrHTTP, got %v", err)
	}
	if httpErr.StatusCode != http.StatusGone {
		t.Errorf("StatusCode: got %d", httpErr.StatusCode)
	}
}

func TestSheetCSVFetch_UnpublishedSheet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<!DOCTYPE html><html><body>Sign in</body></html>"))
	}))
	defer srv.Close()

	_, err := NewSheetCSV(srv.URL, testClient()).Fetch(context.Background())
	if err == nil || !strings.Contains(err.Error(), "HTML page") {
		t.Errorf("expected HTML page error, got %v", err)
	}
}

func TestSheetHTMLFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(samplePubHTML))
	}))
	defer srv.Close()

	tbl, err := NewSheetHTML(srv.URL+"/pubhtml", testClient()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := &models.Table{
		Headers: []string{"Date Distributed", "Dozens of Donut", "Prices"},
		Rows: [][]string{
			{"1/2/2024", "2", "$24.00"},
			{"1/1/2024", "1", "$10.00"},
		},
	}
	if diff := cmp.Diff(want, tbl); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHTMLTable_THeadHeaders(t *testing.T) {
	page := `<table><thead><tr><th>Date</th><th>Dozens</th><th>Price</th></tr></thead>
<tbody><tr><td>2024-01-01</td><td>3</td><td>30</td></tr></tbody></table>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("goquery: %v", err)
	}
	tbl, err := ParseHTMLTable(doc)
	if err != nil {
		t.Fatalf("ParseHTMLTable: %v", err)
	}
	if diff := cmp.Diff([]string{"Date", "Dozens", "Price"}, tbl.Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
	if tbl.Len() != 1 || tbl.Cell(0, 1) != "3" {
		t.Errorf("rows: %+v", tbl.Rows)
	}
}

func TestParseHTMLTable_NoTable(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body><p>nothing</p></body></html>"))
	if err != nil {
		t.Fatalf("goquery: %v", err)
	}
	if _, err := ParseHTMLTable(doc); !errors.Is(err, ErrNoTable) {
		t.Errorf("expected ErrNoTable, got %v", err)
	}
}

// --- File source ---

func TestFileFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "donuts.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	src := NewFile(path)
	if !strings.Contains(src.Name(), "donuts.csv") {
		t.Errorf("Name: got %q", src.Name())
	}
	tbl, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if tbl.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", tbl.Len())
	}
}

func TestFileFetch_Missing(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "nope.csv")).Fetch(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
