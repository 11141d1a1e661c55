// Package dataset holds the in-memory table types shared by loaders,
// analysis and rendering.
package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrEmptyData reports a table, series or matrix with zero elements.
var ErrEmptyData = errors.New("data is empty")

// MissingTokens are cell values treated as absent when a table is built.
var MissingTokens = []string{"", "NA", "NaN", "N/A", "null", "<nil>"}

// Table is a column-labelled, row-indexed table backed by a gota DataFrame.
type Table struct {
	df dataframe.DataFrame
}

// FromRecords builds a Table from string records whose first row is the header.
// Cells are trimmed of surrounding whitespace in place. A header without data
// rows yields an empty Table.
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, errors.New("no columns to parse")
	}
	for _, rec := range records {
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
	}
	if len(records) == 1 {
		return emptyTable(records[0]), nil
	}
	df := dataframe.LoadRecords(records, dataframe.NaNValues(MissingTokens))
	if df.Err != nil {
		return nil, fmt.Errorf("build table: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// FromMaps builds a Table from flat objects. Columns are the union of keys.
func FromMaps(rows []map[string]interface{}) (*Table, error) {
	if len(rows) == 0 {
		return &Table{}, nil
	}
	df := dataframe.LoadMaps(rows, dataframe.NaNValues(MissingTokens))
	if df.Err != nil {
		return nil, fmt.Errorf("build table: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// FromFrame wraps an existing DataFrame.
func FromFrame(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	return &Table{df: df}, nil
}

func emptyTable(header []string) *Table {
	cols := make([]series.Series, 0, len(header))
	for _, name := range header {
		cols = append(cols, series.New([]string{}, series.String, name))
	}
	return &Table{df: dataframe.New(cols...)}
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	if t == nil {
		return 0
	}
	return t.df.Nrow()
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	if t == nil || t.df.Ncol() == 0 {
		return nil
	}
	return t.df.Names()
}

// HasColumn reports whether a column with the exact name exists.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns() {
		if c == name {
			return true
		}
	}
	return false
}

// Column returns the named column as a Series.
func (t *Table) Column(name string) (*Series, error) {
	if !t.HasColumn(name) {
		return nil, fmt.Errorf("column %q not found", name)
	}
	return &Series{s: t.df.Col(name)}, nil
}

// Series returns every column in table order.
func (t *Table) Series() []*Series {
	names := t.Columns()
	out := make([]*Series, 0, len(names))
	for _, n := range names {
		out = append(out, &Series{s: t.df.Col(n)})
	}
	return out
}

// NumericColumns returns the names of Int and Float columns in table order.
func (t *Table) NumericColumns() []string {
	var out []string
	for _, s := range t.Series() {
		if s.IsNumeric() {
			out = append(out, s.Name())
		}
	}
	return out
}

// Head returns up to n leading rows as strings, header first. Floats use
// the shortest representation and absent cells are blank.
func (t *Table) Head(n int) [][]string {
	if t.Rows() == 0 || n <= 0 {
		return nil
	}
	if n > t.Rows() {
		n = t.Rows()
	}
	cols := t.Series()
	out := make([][]string, n+1)
	out[0] = t.Columns()
	for i := 1; i <= n; i++ {
		out[i] = make([]string, len(cols))
	}
	for j, s := range cols {
		for i := 0; i < n; i++ {
			out[i+1][j] = s.cell(i)
		}
	}
	return out
}

// Frame exposes the underlying DataFrame.
func (t *Table) Frame() dataframe.DataFrame { return t.df }
