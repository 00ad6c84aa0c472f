package normalize

import (
	"errors"
	"fmt"
	"sort"

	"github.com/seenimoa/donutreport/pkg/models"
)

// ZeroDozensPolicy decides what happens to rows with zero dozens, whose unit
// price is undefined.
type ZeroDozensPolicy string

const (
	// ZeroDozensPropagate keeps the row; its unit-price metrics are non-finite.
	ZeroDozensPropagate ZeroDozensPolicy = "propagate"
	// ZeroDozensDrop removes the row before metrics are derived.
	ZeroDozensDrop ZeroDozensPolicy = "drop"
)

// ParseZeroDozensPolicy validates a policy name. Empty means propagate.
func ParseZeroDozensPolicy(s string) (ZeroDozensPolicy, error) {
	switch ZeroDozensPolicy(s) {
	case "", ZeroDozensPropagate:
		return ZeroDozensPropagate, nil
	case ZeroDozensDrop:
		return ZeroDozensDrop, nil
	default:
		return "", fmt.Errorf("unknown zero-dozens policy %q (want %q or %q)", s, ZeroDozensPropagate, ZeroDozensDrop)
	}
}

// Options controls normalization.
type Options struct {
	Candidates Candidates       // nil uses DefaultCandidates
	ZeroDozens ZeroDozensPolicy // empty means propagate
}

// Result is the output of Normalize.
type Result struct {
	Dataset models.Dataset
	Columns Columns
	// Dropped lists every input row that did not make it into the dataset.
	Dropped []RowParseError
}

// DroppedBy counts dropped rows whose cause matches target (errors.Is).
func (r *Result) DroppedBy(target error) int {
	n := 0
	for i := range r.Dropped {
		if errors.Is(&r.Dropped[i], target) {
			n++
		}
	}
	return n
}

// Normalize resolves columns, parses rows, drops unusable ones, sorts the rest
// by date (stable) and derives metrics. Only a *MissingColumnError is returned
// as an error; bad rows are reported in Result.Dropped.
func Normalize(t *models.Table, opts Options) (*Result, error) {
	if t == nil {
		return nil, errors.New("normalize: nil table")
	}
	cols, err := ResolveColumns(t.Headers, opts.Candidates)
	if err != nil {
		return nil, err
	}

	res := &Result{Columns: cols}
	dateCol := cols[FieldDate].Index
	dozCol := cols[FieldDozens].Index
	priceCol := cols[FieldTotalPrice].Index

	records := make([]models.Record, 0, t.Len())
	for i := range t.Rows {
		raw := t.Cell(i, dateCol)
		date, ok := ParseDate(raw)
		if !ok {
			res.Dropped = append(res.Dropped, RowParseError{Row: i, Field: FieldDate, Value: raw, Err: ErrBadDate})
			continue
		}
		raw = t.Cell(i, dozCol)
		dozens, ok := ParseNumber(raw)
		if !ok {
			res.Dropped = append(res.Dropped, RowParseError{Row: i, Field: FieldDozens, Value: raw, Err: ErrBadNumber})
			continue
		}
		raw = t.Cell(i, priceCol)
		total, ok := ParseNumber(raw)
		if !ok {
			res.Dropped = append(res.Dropped, RowParseError{Row: i, Field: FieldTotalPrice, Value: raw, Err: ErrBadNumber})
			continue
		}
		if dozens == 0 && opts.ZeroDozens == ZeroDozensDrop {
			res.Dropped = append(res.Dropped, RowParseError{Row: i, Field: FieldDozens, Value: t.Cell(i, dozCol), Err: ErrZeroDozen})
			continue
		}
		records = append(records, models.Record{Date: date, Dozens: dozens, TotalPrice: total})
	}

	sort.SliceStable(records, func(a, b int) bool {
		return records[a].Date.Before(records[b].Date)
	})

	res.Dataset = Derive(records)
	return res, nil
}
