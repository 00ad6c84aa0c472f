// Package normalize turns a raw sheet export into a clean, date-sorted dataset
// with derived unit-price and running-total metrics.
//
// The pipeline is a pure function of its input: resolve the three semantic
// columns, parse and drop unusable rows, stable-sort by date, derive metrics.
package normalize

import (
	"fmt"
	"strings"
)

// Field is a semantic column the pipeline needs.
type Field string

const (
	FieldDate       Field = "date"
	FieldDozens     Field = "dozens"
	FieldTotalPrice Field = "total_price"
)

// Fields returns the semantic fields in resolution order.
func Fields() []Field {
	return []Field{FieldDate, FieldDozens, FieldTotalPrice}
}

// Candidates lists, per field, the preferred header names in priority order.
// Matching is case-insensitive; a candidate that matches no header exactly is
// retried as a substring.
type Candidates map[Field][]string

// DefaultCandidates returns the header names used by the distribution sheet
// and its common variants.
func DefaultCandidates() Candidates {
	return Candidates{
		FieldDate:       {"date distributed", "date"},
		FieldDozens:     {"dozens of donut", "dozens of donuts", "dozens", "dozen"},
		FieldTotalPrice: {"total price", "prices", "price", "total"},
	}
}

// withDefaults fills fields that have no candidates with the defaults.
func (c Candidates) withDefaults() Candidates {
	def := DefaultCandidates()
	out := make(Candidates, len(def))
	for _, f := range Fields() {
		if names := c[f]; len(names) > 0 {
			out[f] = names
		} else {
			out[f] = def[f]
		}
	}
	return out
}

// Column is a resolved header.
type Column struct {
	Index  int    `json:"index"`
	Header string `json:"header"`
}

// Columns maps each semantic field to the header it resolved to.
type Columns map[Field]Column

// ResolveColumns picks a header for every semantic field. Exact
// (case-insensitive) matches on any candidate win over substring matches.
// When one or more fields cannot be matched, a *MissingColumnError lists them
// along with every available header.
func ResolveColumns(headers []string, cands Candidates) (Columns, error) {
	cands = cands.withDefaults()
	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	cols := make(Columns, 3)
	var missing []Field
	for _, f := range Fields() {
		idx := resolveOne(lower, cands[f])
		if idx < 0 {
			missing = append(missing, f)
			continue
		}
		cols[f] = Column{Index: idx, Header: headers[idx]}
	}

	if len(missing) > 0 {
		return nil, &MissingColumnError{
			Fields:    missing,
			Available: append([]string(nil), headers...),
		}
	}
	return cols, nil
}

// resolveOne returns the index of the best header for names, or -1.
func resolveOne(lowerHeaders []string, names []string) int {
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		for i, h := range lowerHeaders {
			if h == name {
				return i
			}
		}
	}
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		for i, h := range lowerHeaders {
			if strings.Contains(h, name) {
				return i
			}
		}
	}
	return -1
}

// String renders the mapping for logs, e.g. date="Date Distributed".
func (c Columns) String() string {
	parts := make([]string, 0, len(c))
	for _, f := range Fields() {
		if col, ok := c[f]; ok {
			parts = append(parts, fmt.Sprintf("%s=%q", f, col.Header))
		}
	}
	return strings.Join(parts, " ")
}
