// Package pipeline runs the fixed exploratory sequence over one source:
// load, report missing values, summarize, correlate, then plot key metrics.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/KaramelBytes/tablelens/internal/analysis"
	"github.com/KaramelBytes/tablelens/internal/ctxlog"
	"github.com/KaramelBytes/tablelens/internal/visual"
)

// KeyMetric names a column that gets its own distribution plot.
type KeyMetric struct {
	Column string
	Title  string
	Label  string
	Color  string
}

// DefaultKeyMetrics is the built-in allowlist, plotted in this order.
func DefaultKeyMetrics() []KeyMetric {
	return []KeyMetric{
		{Column: "tip", Title: "Tip distribution", Label: "Tip", Color: "green"},
		{Column: "total_bill", Title: "Total bill distribution", Label: "Total bill", Color: "purple"},
	}
}

// ParseKeyMetric parses "column=title:label:color". Everything after the
// column is optional; missing parts fall back to the column name and blue.
func ParseKeyMetric(s string) (KeyMetric, error) {
	col, rest, _ := strings.Cut(s, "=")
	col = strings.TrimSpace(col)
	if col == "" {
		return KeyMetric{}, fmt.Errorf("invalid key column %q: want column=title:label:color", s)
	}
	km := KeyMetric{Column: col}
	parts := strings.SplitN(rest, ":", 3)
	if len(parts) > 0 {
		km.Title = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		km.Label = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		km.Color = strings.TrimSpace(parts[2])
	}
	if km.Title == "" {
		km.Title = col + " distribution"
	}
	if km.Label == "" {
		km.Label = col
	}
	return km, nil
}

// Result describes one run.
type Result struct {
	RunID  uuid.UUID
	Source string
	Plots  int
	Err    error
}

// OK reports whether the run completed.
func (r *Result) OK() bool { return r.Err == nil }

// Pipeline wires an Analyzer to a Visualizer and writes the text report to Out.
type Pipeline struct {
	Analyzer   *analysis.Analyzer
	Visualizer *visual.Visualizer
	KeyMetrics []KeyMetric
	Out        io.Writer
	SampleRows int
	TopPairs   int
}

// New returns a Pipeline with the default key metrics writing to stdout.
func New(a *analysis.Analyzer, v *visual.Visualizer) *Pipeline {
	return &Pipeline{
		Analyzer:   a,
		Visualizer: v,
		KeyMetrics: DefaultKeyMetrics(),
		Out:        os.Stdout,
		TopPairs:   10,
	}
}

// Analyze runs every step against source and stops at the first failure.
// Failures are reported on Out and in Result.Err; nothing is returned as an
// error and output already written stays.
func (p *Pipeline) Analyze(ctx context.Context, source string) *Result {
	res := &Result{RunID: uuid.New(), Source: source}
	log := ctxlog.FromContext(ctx).With("run_id", res.RunID.String(), "source", source)
	ctx = ctxlog.WithLogger(ctx, log)

	err := p.run(ctx, source)
	res.Plots = p.Visualizer.TotalPlots()
	if err != nil {
		res.Err = err
		fmt.Fprintf(p.out(), "✗ Error: %v\n", err)
		log.Error("analysis failed", "error", err, "plots", res.Plots)
		return res
	}
	log.Debug("analysis finished", "plots", res.Plots)
	return res
}

func (p *Pipeline) run(ctx context.Context, source string) error {
	w := p.out()
	if _, err := p.Analyzer.LoadAndProcess(ctx, source); err != nil {
		return err
	}

	missing, err := p.Analyzer.MissingValues()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, missing.Markdown())

	summary, err := p.Analyzer.NumericSummary()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, summary.Markdown())

	if p.SampleRows > 0 {
		if md := analysis.SampleMarkdown(p.Analyzer.Table().Head(p.SampleRows)); md != "" {
			fmt.Fprintln(w, md)
		}
	}

	corr, err := p.Analyzer.Correlations()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, analysis.CorrelationMarkdown(corr, p.TopPairs))
	if err := p.Visualizer.PlotCorrelationMatrix(corr, "Correlation matrix"); err != nil {
		return err
	}

	t := p.Analyzer.Table()
	for _, km := range p.KeyMetrics {
		if !t.HasColumn(km.Column) {
			ctxlog.FromContext(ctx).Debug("key metric not present", "column", km.Column)
			continue
		}
		s, err := t.Column(km.Column)
		if err != nil {
			return err
		}
		if err := p.Visualizer.PlotDistribution(s, km.Title, km.Label, km.Color); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "Total plots created: %d\n", p.Visualizer.TotalPlots())
	return nil
}

func (p *Pipeline) out() io.Writer {
	if p.Out == nil {
		return io.Discard
	}
	return p.Out
}
