// Package datasource provides the inputs of the reporting pipeline.
// It defines a common Source interface and implements concrete sources for a
// published Google Sheet (CSV or HTML export) and a local CSV file.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/donutreport/internal/infra"
	"github.com/seenimoa/donutreport/pkg/models"
)

// Source defines the common interface that all data sources must implement.
type Source interface {
	// Name returns a short human-readable description of the source.
	Name() string

	// Fetch returns the raw table. It never interprets cell contents.
	Fetch(ctx context.Context) (*models.Table, error)
}

// --- Sentinel errors ---

// ErrEmptyTable is returned when a source yields no header row.
var ErrEmptyTable = errors.New("source returned no header row")

// ErrNoTable is returned when an HTML page contains no usable <table>.
var ErrNoTable = errors.New("no table found in HTML page")

// Format selects how a remote sheet is read.
type Format string

const (
	FormatAuto Format = "auto"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// ParseFormat validates a format name. Empty means auto.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatHTML:
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown source format %q (want auto, csv or html)", s)
	}
}

// DetectFormat guesses the export format from a published-sheet URL.
// "pubhtml" links and "output=html" render an HTML table; everything else is
// treated as CSV.
func DetectFormat(url string) Format {
	u := strings.ToLower(url)
	switch {
	case strings.Contains(u, "output=csv"), strings.HasSuffix(u, ".csv"):
		return FormatCSV
	case strings.Contains(u, "/pubhtml"), strings.Contains(u, "output=html"), strings.HasSuffix(u, ".html"):
		return FormatHTML
	default:
		return FormatCSV
	}
}

// Options selects and configures a source.
type Options struct {
	URL     string
	File    string // wins over URL when set
	Format  Format
	Timeout time.Duration
	Retries int
}

// New returns the source described by opts.
func New(opts Options) (Source, error) {
	if opts.File != "" {
		return NewFile(opts.File), nil
	}
	if opts.URL == "" {
		return nil, errors.New("datasource: either a URL or a file is required")
	}

	client := infra.NewHTTPClient(infra.HTTPOptions{
		Timeout: opts.Timeout,
		Retries: opts.Retries,
	})

	format := opts.Format
	if format == "" || format == FormatAuto {
		format = DetectFormat(opts.URL)
	}
	switch format {
	case FormatCSV:
		return NewSheetCSV(opts.URL, client), nil
	case FormatHTML:
		return NewSheetHTML(opts.URL, client), nil
	default:
		return nil, fmt.Errorf("datasource: unsupported format %q", format)
	}
}

// fetcher is the subset of infra.HTTPClient used by remote sources.
type fetcher interface {
	Get(ctx context.Context, url string, headers map[string]string) ([]byte, error)
}
