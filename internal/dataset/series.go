package dataset

import (
	"math"
	"strconv"

	"github.com/go-gota/gota/series"
)

// Series is a read-only view of one named column.
type Series struct {
	s series.Series
}

// NewSeries wraps a gota series.
func NewSeries(s series.Series) *Series { return &Series{s: s} }

// Name returns the column name.
func (s *Series) Name() string { return s.s.Name }

// Len returns the number of rows, present or not.
func (s *Series) Len() int { return s.s.Len() }

// Type returns the inferred gota type.
func (s *Series) Type() series.Type { return s.s.Type() }

// IsNumeric reports whether the column holds Int or Float values.
func (s *Series) IsNumeric() bool {
	t := s.s.Type()
	return t == series.Int || t == series.Float
}

// Missing counts absent cells.
func (s *Series) Missing() int {
	n := 0
	for _, nan := range s.s.IsNaN() {
		if nan {
			n++
		}
	}
	return n
}

// Floats returns the present numeric values in row order. Non-numeric
// series yield nil.
func (s *Series) Floats() []float64 {
	if !s.IsNumeric() {
		return nil
	}
	raw := s.s.Float()
	out := make([]float64, 0, len(raw))
	for _, v := range raw {
		if math.IsNaN(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// RowFloats returns every row as float64 with NaN for absent cells, so
// values from two series line up by row. Non-numeric series yield nil.
func (s *Series) RowFloats() []float64 {
	if !s.IsNumeric() {
		return nil
	}
	return s.s.Float()
}

func (s *Series) cell(i int) string {
	e := s.s.Elem(i)
	if e.IsNA() {
		return ""
	}
	if s.s.Type() == series.Float {
		return strconv.FormatFloat(e.Float(), 'g', -1, 64)
	}
	return e.String()
}
