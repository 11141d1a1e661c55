package visual

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/tablelens/internal/dataset"
)

// corrGrid adapts a CorrelationMatrix to plotter.GridXYZ. Matrix row 0 is
// drawn at the top.
type corrGrid struct {
	m *dataset.CorrelationMatrix
}

func (g corrGrid) Dims() (c, r int)   { return g.m.Size(), g.m.Size() }
func (g corrGrid) Z(c, r int) float64 { return g.m.At(r, c) }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(g.m.Size() - 1 - r) }

// PlotCorrelationMatrix renders an annotated heatmap on a diverging
// blue-red scale fixed to [-1, 1].
func (v *Visualizer) PlotCorrelationMatrix(m *dataset.CorrelationMatrix, title string) error {
	if err := Check(m); err != nil {
		return err
	}
	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)

	p := plot.New()
	p.Title.Text = title

	hm := plotter.NewHeatMap(corrGrid{m: m}, cmap.Palette(255))
	hm.Min, hm.Max = -1, 1
	p.Add(hm)

	n := m.Size()
	labels := plotter.XYLabels{XYs: make(plotter.XYs, 0, n*n), Labels: make([]string, 0, n*n)}
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(c), Y: float64(n - 1 - r)})
			labels.Labels = append(labels.Labels, fmt.Sprintf("%.2f", m.At(r, c)))
		}
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return fmt.Errorf("build annotations: %w", err)
	}
	p.Add(l)

	p.NominalX(m.Columns()...)
	p.NominalY(topDown(m.Columns())...)
	return v.emit(Figure{Kind: KindHeatmap, Title: title, Plot: p, Width: 10 * vg.Inch, Height: 8 * vg.Inch})
}

// topDown reverses names so NominalY lists the first column at the top.
func topDown(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[len(names)-1-i] = n
	}
	return out
}
