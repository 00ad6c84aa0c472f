// Package models defines the core data structures used throughout donutreport.
package models

import "strings"

// Table is raw tabular text as delivered by a data source: one header row
// followed by data rows. Cells are untrimmed strings; rows may be ragged.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// NewTable builds a Table, trimming headers and stripping a leading UTF-8 BOM
// from the first one (Google Sheets exports sometimes carry it).
func NewTable(headers []string, rows [][]string) *Table {
	clean := make([]string, len(headers))
	for i, h := range headers {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		clean[i] = strings.TrimSpace(h)
	}
	return &Table{Headers: clean, Rows: rows}
}

// Cell returns the value at (row, col), or "" when the row is too short.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }
