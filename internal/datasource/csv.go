package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/seenimoa/donutreport/pkg/models"
)

// ParseCSV reads CSV text into a Table. The first non-blank record is the
// header row. Ragged rows are kept as-is and rows whose cells are all blank
// are skipped.
func ParseCSV(r io.Reader) (*models.Table, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // variable fields

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	var headers []string
	var rows [][]string
	for _, rec := range records {
		if blankRow(rec) {
			continue
		}
		if headers == nil {
			headers = rec
			continue
		}
		rows = append(rows, rec)
	}
	if headers == nil {
		return nil, ErrEmptyTable
	}
	return models.NewTable(headers, rows), nil
}

func blankRow(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
