package visual

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/tablelens/internal/dataset"
)

// PlotDistribution renders a histogram of s with a Gaussian KDE overlay.
// An empty color means blue.
func (v *Visualizer) PlotDistribution(s *dataset.Series, title, xLabel, color string) error {
	if err := Check(s); err != nil {
		return err
	}
	if !s.IsNumeric() {
		return fmt.Errorf("%w: series %q is not numeric", ErrInvalidDataType, s.Name())
	}
	vals := s.Floats()
	if len(vals) == 0 {
		return fmt.Errorf("%w: series %q has no values", dataset.ErrEmptyData, s.Name())
	}
	col, err := parseColor(color)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "Frequency"
	p.Add(plotter.NewGrid())

	h, err := plotter.NewHist(plotter.Values(vals), sturgesBins(len(vals)))
	if err != nil {
		return fmt.Errorf("build histogram: %w", err)
	}
	h.FillColor = withAlpha(col, 0x99)
	h.LineStyle.Color = col
	p.Add(h)

	if kde := densityCurve(vals, h.Width); kde != nil {
		kde.Color = col
		kde.Width = vg.Points(2)
		p.Add(kde)
	}
	return v.emit(Figure{Kind: KindDistribution, Title: title, Plot: p, Width: 8 * vg.Inch, Height: 6 * vg.Inch})
}

// sturgesBins returns ceil(log2(n)) + 1.
func sturgesBins(n int) int {
	if n <= 1 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}

// densityCurve returns a Gaussian KDE (Scott bandwidth) scaled to histogram
// counts, or nil when the bandwidth is undefined.
func densityCurve(vals []float64, binWidth float64) *plotter.Function {
	n := float64(len(vals))
	if n < 2 || binWidth <= 0 {
		return nil
	}
	sd := stat.StdDev(vals, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	bw := sd * math.Pow(n, -0.2)
	scale := n * binWidth
	lo, hi := vals[0], vals[0]
	for _, x := range vals {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	f := plotter.NewFunction(func(x float64) float64 {
		var d float64
		for _, xi := range vals {
			d += distuv.UnitNormal.Prob((x - xi) / bw)
		}
		return d / (n * bw) * scale
	})
	f.XMin, f.XMax = lo, hi
	f.Samples = 200
	return f
}
