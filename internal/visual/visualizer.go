// Package visual renders distribution histograms and correlation heatmaps
// with gonum/plot and counts every successful render.
package visual

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/tablelens/internal/dataset"
)

var (
	// ErrNoData is returned when a plot is requested without data.
	ErrNoData = errors.New("no data provided for plotting")
	// ErrInvalidDataType is returned for data that cannot be plotted.
	ErrInvalidDataType = errors.New("invalid data type for plotting")
	// ErrUnknownColor is returned for an unrecognized color name.
	ErrUnknownColor = errors.New("unknown color")
)

// Figure kinds.
const (
	KindDistribution = "distribution"
	KindHeatmap      = "heatmap"
)

// Figure is one rendered plot with its intended size.
type Figure struct {
	Kind   string
	Title  string
	Plot   *plot.Plot
	Width  vg.Length
	Height vg.Length
}

// Visualizer renders figures into a Sink.
type Visualizer struct {
	sink     Sink
	rendered int
	width    vg.Length
	height   vg.Length
}

// New returns a Visualizer writing to sink. A nil sink discards figures.
func New(sink Sink) *Visualizer {
	if sink == nil {
		sink = DiscardSink{}
	}
	return &Visualizer{sink: sink}
}

// SetFigureSize overrides the default figure size, in inches. Non-positive
// values restore the per-kind defaults.
func (v *Visualizer) SetFigureSize(widthIn, heightIn float64) {
	if widthIn <= 0 || heightIn <= 0 {
		v.width, v.height = 0, 0
		return
	}
	v.width, v.height = vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch
}

// TotalPlots returns the number of successful plot calls.
func (v *Visualizer) TotalPlots() int { return v.rendered }

// Check validates plot input: presence, then type, then emptiness.
func Check(data any) error {
	switch d := data.(type) {
	case nil:
		return ErrNoData
	case *dataset.Series:
		if d == nil {
			return ErrNoData
		}
		if d.Len() == 0 {
			return dataset.ErrEmptyData
		}
	case *dataset.Table:
		if d == nil {
			return ErrNoData
		}
		if d.Rows() == 0 {
			return dataset.ErrEmptyData
		}
	case *dataset.CorrelationMatrix:
		if d == nil {
			return ErrNoData
		}
		if d.Size() == 0 {
			return dataset.ErrEmptyData
		}
	default:
		return fmt.Errorf("%w: %T", ErrInvalidDataType, data)
	}
	return nil
}

func (v *Visualizer) emit(fig Figure) error {
	if v.width > 0 {
		fig.Width, fig.Height = v.width, v.height
	}
	if err := v.sink.Render(fig); err != nil {
		return fmt.Errorf("render %s %q: %w", fig.Kind, fig.Title, err)
	}
	v.rendered++
	return nil
}
