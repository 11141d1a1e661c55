package dataset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// CorrelationMatrix holds a symmetric Pearson correlation matrix across
// numeric columns, with the number of complete rows behind each pair.
type CorrelationMatrix struct {
	columns []string
	values  *mat.SymDense
	counts  [][]int
}

// PairCorr is a single off-diagonal entry.
type PairCorr struct {
	A, B   string
	R      float64
	N      int
	PValue float64
}

// NewCorrelationMatrix builds a matrix over columns. values must be
// len(columns) square; counts may be nil.
func NewCorrelationMatrix(columns []string, values *mat.SymDense, counts [][]int) *CorrelationMatrix {
	return &CorrelationMatrix{columns: columns, values: values, counts: counts}
}

// Columns returns the column names, in row/column order.
func (m *CorrelationMatrix) Columns() []string { return m.columns }

// Size returns the number of rows (and columns).
func (m *CorrelationMatrix) Size() int {
	if m == nil {
		return 0
	}
	return len(m.columns)
}

// At returns r for the i-th and j-th columns.
func (m *CorrelationMatrix) At(i, j int) float64 { return m.values.At(i, j) }

// N returns the complete-row count behind entry (i, j); 0 when unknown.
func (m *CorrelationMatrix) N(i, j int) int {
	if m.counts == nil {
		return 0
	}
	return m.counts[i][j]
}

// Value looks an entry up by column names.
func (m *CorrelationMatrix) Value(a, b string) (float64, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.At(i, j), true
}

func (m *CorrelationMatrix) index(name string) int {
	for i, c := range m.columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Rows returns the matrix as row-major slices.
func (m *CorrelationMatrix) Rows() [][]float64 {
	n := m.Size()
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

// TopPairs lists up to k distinct pairs ordered by |r| descending. k <= 0
// returns every pair.
func (m *CorrelationMatrix) TopPairs(k int) []PairCorr {
	n := m.Size()
	var pairs []PairCorr
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := m.At(i, j)
			cnt := m.N(i, j)
			pairs = append(pairs, PairCorr{A: m.columns[i], B: m.columns[j], R: r, N: cnt, PValue: pValue(r, cnt)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if k > 0 && len(pairs) > k {
		pairs = pairs[:k]
	}
	return pairs
}

// pValue is the two-tailed significance of r over n complete rows.
func pValue(r float64, n int) float64 {
	if n < 3 {
		return math.NaN()
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - dist.CDF(math.Abs(t)))
}
