package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ErrMissingColumn is returned when a source lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// table is a header-indexed CSV file held in memory.
type table struct {
	name   string
	header map[string]int
	rows   [][]string
}

func readTable(name string, r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("error reading %s: no header row", name)
	}

	t := &table{
		name:   name,
		header: make(map[string]int, len(records[0])),
		rows:   records[1:],
	}
	for i, h := range records[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		t.header[h] = i
	}
	return t, nil
}

func (t *table) has(col string) bool {
	_, ok := t.header[col]
	return ok
}

func (t *table) require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !t.has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: %w: %s", t.name, ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// str returns the trimmed cell, empty when the column or cell is absent.
func (t *table) str(row int, col string) string {
	i, ok := t.header[col]
	if !ok || i >= len(t.rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.rows[row][i])
}

// strOr returns def when the column is missing from the file.
func (t *table) strOr(row int, col, def string) string {
	if !t.has(col) {
		return def
	}
	return t.str(row, col)
}

// lookup parses the cell. ok is false for blank cells.
func (t *table) lookup(row int, col string) (v float64, ok bool, err error) {
	s := t.str(row, col)
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, t.cellErr(row, col, fmt.Errorf("not a number: %q", s))
	}
	return v, true, nil
}

// num is a required numeric cell.
func (t *table) num(row int, col string) (float64, error) {
	v, ok, err := t.lookup(row, col)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, t.cellErr(row, col, errors.New("value required"))
	}
	return v, nil
}

// numOr substitutes def for blank cells.
func (t *table) numOr(row int, col string, def float64) (float64, error) {
	v, ok, err := t.lookup(row, col)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// coerce treats blank and non-numeric cells as 0.
func (t *table) coerce(row int, col string) float64 {
	v, ok, err := t.lookup(row, col)
	if err != nil || !ok {
		return 0
	}
	return v
}

// median of the parseable cells in col, 0 when there are none.
func (t *table) median(col string) float64 {
	vals := make([]float64, 0, len(t.rows))
	for i := range t.rows {
		if v, ok, err := t.lookup(i, col); err == nil && ok && !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 0
	}
	slices.Sort(vals)
	m := len(vals) / 2
	if len(vals)%2 == 0 {
		return (vals[m-1] + vals[m]) / 2
	}
	return vals[m]
}

// data rows are reported 1-based after the header, like a spreadsheet
func (t *table) cellErr(row int, col string, err error) error {
	return fmt.Errorf("%s row %d column %s: %w", t.name, row+2, col, err)
}

func splitCertifications(s string) []string {
	var list []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" && !strings.EqualFold(c, "nan") {
			list = append(list, c)
		}
	}
	return list
}
