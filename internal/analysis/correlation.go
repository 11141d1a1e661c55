package analysis

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/tablelens/internal/dataset"
)

// correlate builds the Pearson matrix over numeric columns using, for each
// pair, only the rows where both values are present.
func correlate(t *dataset.Table) (*dataset.CorrelationMatrix, error) {
	var names []string
	var cols [][]float64
	for _, s := range t.Series() {
		if !s.IsNumeric() {
			continue
		}
		names = append(names, s.Name())
		cols = append(cols, s.RowFloats())
	}
	if len(names) == 0 {
		return nil, ErrNoNumericData
	}

	n := len(names)
	vals := mat.NewSymDense(n, nil)
	counts := make([][]int, n)
	for i := range counts {
		counts[i] = make([]int, n)
	}
	for i := 0; i < n; i++ {
		vals.SetSym(i, i, 1)
		counts[i][i] = present(cols[i])
		for j := i + 1; j < n; j++ {
			x, y := completePairs(cols[i], cols[j])
			counts[i][j], counts[j][i] = len(x), len(x)
			vals.SetSym(i, j, pearson(x, y))
		}
	}
	return dataset.NewCorrelationMatrix(names, vals, counts), nil
}

// pearson returns r clamped to [-1, 1]; undefined correlations are 0.
func pearson(x, y []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}

func completePairs(a, b []float64) (x, y []float64) {
	for k := range a {
		if math.IsNaN(a[k]) || math.IsNaN(b[k]) {
			continue
		}
		x = append(x, a[k])
		y = append(y, b[k])
	}
	return x, y
}

func present(a []float64) int {
	n := 0
	for _, v := range a {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}
