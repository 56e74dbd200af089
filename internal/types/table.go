package types

import (
	"math"
	"strconv"
	"strings"
)

// =============================================================================
// TABULAR SOURCE
// =============================================================================

// Table is a decoded spreadsheet: a header row plus header-keyed data rows.
// Both the XLSX and the CSV parser produce it.
type Table struct {
	// Headers are the cleaned header cells in column order.
	Headers []string

	// Rows contains the non-empty data rows.
	Rows []Row
}

// Row is one data row keyed by header. A key is present when the column
// exists in the sheet, even if this row's cell is blank.
type Row struct {
	// Number is the 1-based row number in the source sheet.
	Number int

	Cells map[string]string
}

// Lookup returns the raw cell value and whether the column exists.
func (r Row) Lookup(field string) (string, bool) {
	v, ok := r.Cells[field]
	return v, ok
}

// Text returns the cell value, or "" when the column is absent.
func (r Row) Text(field string) string {
	return r.Cells[field]
}

// Trimmed returns the cell value with surrounding whitespace removed.
func (r Row) Trimmed(field string) string {
	return strings.TrimSpace(r.Cells[field])
}

// TrimmedOr returns the trimmed cell value, or def when it is blank.
func (r Row) TrimmedOr(field, def string) string {
	if v := r.Trimmed(field); v != "" {
		return v
	}
	return def
}

// Optional returns a pointer to the cell value when the column exists and
// nil when it does not.
func (r Row) Optional(field string) *string {
	v, ok := r.Cells[field]
	if !ok {
		return nil
	}
	return &v
}

// Int parses the cell as an integer. Blank or unparseable text yields 0.
// Decimal text such as "2021.0" is truncated.
func (r Row) Int(field string) int {
	s := r.Trimmed(field)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

// Float parses the cell as a real number. Blank, unparseable or non-finite
// text yields 0.
func (r Row) Float(field string) float64 {
	s := r.Trimmed(field)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// IsRowEmpty checks if a row contains only empty cells.
func IsRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// NewTable builds a Table from raw rows where rows[0] is the header row.
// Empty data rows are skipped. When a header repeats, the first column wins.
func NewTable(rows [][]string) *Table {
	table := &Table{}
	if len(rows) == 0 {
		return table
	}

	table.Headers = CleanHeaders(rows[0])

	for i := 1; i < len(rows); i++ {
		raw := rows[i]
		if len(raw) == 0 || IsRowEmpty(raw) {
			continue
		}

		cells := make(map[string]string, len(table.Headers))
		for col, header := range table.Headers {
			if header == "" {
				continue
			}
			if _, dup := cells[header]; dup {
				continue
			}
			value := ""
			if col < len(raw) {
				value = raw[col]
			}
			cells[header] = value
		}

		table.Rows = append(table.Rows, Row{Number: i + 1, Cells: cells})
	}

	return table
}

// CleanHeaders trims header cells and strips a UTF-8 byte order mark from
// the first one.
func CleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		cleaned[i] = strings.TrimSpace(h)
	}
	return cleaned
}
