package analysis

import (
	"math"
	"sort"
	"strconv"
)

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func robustOutlierStats(vals []float64, threshold float64) (count int, maxAbs float64) {
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	med := quantile(cp, 0.5)
	devs := make([]float64, len(cp))
	for i, v := range cp {
		devs[i] = math.Abs(v - med)
	}
	sort.Float64s(devs)
	mad := quantile(devs, 0.5)
	if mad == 0 {
		return 0, 0
	}
	for _, v := range cp {
		az := math.Abs(0.6745 * (v - med) / mad)
		if az > threshold {
			count++
		}
		if az > maxAbs {
			maxAbs = az
		}
	}
	return
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func sampleStd(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

func correlation(x, y []float64) float64 {
	mx, my := mean(x), mean(y)
	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	return sxy / math.Sqrt(sxx*syy)
}

func minFloat(vals []float64) float64 {
	m := math.Inf(1)
	for _, v := range vals {
		if v < m {
			m = v
		}
	}
	return m
}

func maxFloat(vals []float64) float64 {
	m := math.Inf(-1)
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}

func almostEqual(a, b, tol float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	return math.Abs(a-b) <= tol
}
