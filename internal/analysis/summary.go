package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/tablelens/internal/dataset"
)

// ColumnStats captures descriptive statistics for one numeric column.
type ColumnStats struct {
	Name    string
	Count   int
	Missing int
	Mean    float64
	Std     float64 // sample standard deviation (n-1)
	Min     float64
	Q25     float64
	Median  float64
	Q75     float64
	Max     float64
	// Outliers (robust Z via MAD); zero unless enabled and Count >= 8
	OutliersCount   int
	OutliersMaxAbsZ float64
}

// SummaryReport holds per-numeric-column statistics.
type SummaryReport struct {
	Rows             int
	Columns          []ColumnStats
	OutlierThreshold float64 // 0 when outlier detection is off
}

// Column returns the stats for name.
func (r *SummaryReport) Column(name string) (ColumnStats, bool) {
	for _, c := range r.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnStats{}, false
}

func summarize(t *dataset.Table, opt Options) (*SummaryReport, error) {
	rep := &SummaryReport{Rows: t.Rows()}
	if opt.Outliers {
		rep.OutlierThreshold = opt.OutlierThreshold
	}
	for _, s := range t.Series() {
		if !s.IsNumeric() {
			continue
		}
		vals := s.Floats()
		if len(vals) == 0 {
			continue
		}
		cs, err := describe(s.Name(), vals)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", s.Name(), err)
		}
		cs.Missing = s.Missing()
		if opt.Outliers && len(vals) >= 8 {
			cs.OutliersCount, cs.OutliersMaxAbsZ = robustOutliers(vals, opt.OutlierThreshold)
		}
		rep.Columns = append(rep.Columns, cs)
	}
	return rep, nil
}

func describe(name string, vals []float64) (ColumnStats, error) {
	cs := ColumnStats{Name: name, Count: len(vals)}
	var err error
	if cs.Mean, err = stats.Mean(vals); err != nil {
		return cs, err
	}
	if len(vals) > 1 {
		if cs.Std, err = stats.StandardDeviationSample(vals); err != nil {
			return cs, err
		}
	} else {
		cs.Std = math.NaN()
	}
	if cs.Min, err = stats.Min(vals); err != nil {
		return cs, err
	}
	if cs.Max, err = stats.Max(vals); err != nil {
		return cs, err
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	cs.Q25 = quantile(sorted, 0.25)
	cs.Median = quantile(sorted, 0.5)
	cs.Q75 = quantile(sorted, 0.75)
	return cs, nil
}

// robustOutliers counts values whose robust Z-score exceeds thr.
func robustOutliers(vals []float64, thr float64) (count int, maxAbsZ float64) {
	median, mad := medianMAD(vals)
	if mad == 0 {
		return 0, 0
	}
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > thr {
			count++
		}
		if az > maxAbsZ {
			maxAbsZ = az
		}
	}
	return count, maxAbsZ
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

// quantile interpolates linearly between closest ranks of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
