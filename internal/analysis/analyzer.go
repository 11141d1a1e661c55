// Package analysis computes missing-value counts, descriptive statistics
// and Pearson correlations over one loaded table.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/KaramelBytes/tablelens/internal/ctxlog"
	"github.com/KaramelBytes/tablelens/internal/dataset"
	"github.com/KaramelBytes/tablelens/internal/loader"
)

var (
	// ErrNotLoaded is returned when analysis is requested before a successful load.
	ErrNotLoaded = errors.New("data is not loaded")
	// ErrNoNumericData is returned when correlations are requested on a table without numeric columns.
	ErrNoNumericData = errors.New("no numeric data to correlate")
)

// ProcessingError wraps any failure of LoadAndProcess.
type ProcessingError struct {
	Source string
	Err    error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("load and process data: %v", e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// Options controls analysis behavior.
type Options struct {
	// Outliers enables robust Z-score (MAD) outlier counts in the summary.
	Outliers bool
	// OutlierThreshold is the |z| above which a value counts as an outlier.
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults.
func DefaultOptions() Options {
	return Options{Outliers: true, OutlierThreshold: 3.5}
}

// Analyzer holds at most one loaded table.
type Analyzer struct {
	loader  loader.Loader
	opt     Options
	current *dataset.Table
}

// New returns an Analyzer that loads through l.
func New(l loader.Loader, opt Options) *Analyzer {
	if opt.OutlierThreshold <= 0 {
		opt.OutlierThreshold = 3.5
	}
	return &Analyzer{loader: l, opt: opt}
}

// LoadAndProcess loads source and replaces the current table. On failure
// the current table is left untouched.
func (a *Analyzer) LoadAndProcess(ctx context.Context, source string) (*Analyzer, error) {
	t, err := a.loader.Load(ctx, source)
	if err != nil {
		return nil, &ProcessingError{Source: source, Err: err}
	}
	if t.Rows() == 0 {
		return nil, &ProcessingError{Source: source, Err: dataset.ErrEmptyData}
	}
	a.current = t
	ctxlog.FromContext(ctx).Debug("table loaded", "source", source, "loader", a.loader.Name(), "rows", t.Rows(), "columns", len(t.Columns()))
	return a, nil
}

// Table returns the loaded table, or nil.
func (a *Analyzer) Table() *dataset.Table { return a.current }

// MissingValues counts absent cells per column.
func (a *Analyzer) MissingValues() (*MissingReport, error) {
	if a.current == nil {
		return nil, ErrNotLoaded
	}
	rep := &MissingReport{Rows: a.current.Rows()}
	for _, s := range a.current.Series() {
		rep.Counts = append(rep.Counts, MissingCount{Column: s.Name(), Missing: s.Missing()})
	}
	return rep, nil
}

// NumericSummary computes descriptive statistics for every numeric column.
func (a *Analyzer) NumericSummary() (*SummaryReport, error) {
	if a.current == nil {
		return nil, ErrNotLoaded
	}
	return summarize(a.current, a.opt)
}

// Correlations computes the pairwise Pearson matrix over numeric columns.
func (a *Analyzer) Correlations() (*dataset.CorrelationMatrix, error) {
	if a.current == nil {
		return nil, ErrNotLoaded
	}
	return correlate(a.current)
}
