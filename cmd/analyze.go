package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/tablelens/internal/analysis"
	cfgpkg "github.com/KaramelBytes/tablelens/internal/config"
	"github.com/KaramelBytes/tablelens/internal/loader"
	"github.com/KaramelBytes/tablelens/internal/pipeline"
	"github.com/KaramelBytes/tablelens/internal/visual"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// analysisFlags are shared by analyze and analyze-batch.
type analysisFlags struct {
	format      string
	delimiter   string
	recordsPath string
	sheetName   string
	sheetIndex  int
	outDir      string
	sampleRows  int
	topPairs    int
	outliers    bool
	outlierThr  float64
	keyColumns  []string
}

var anaFlags analysisFlags

var analyzeCmd = &cobra.Command{
	Use:   "analyze [source]",
	Short: "Analyze a CSV/JSON/XLSX file or URL and render its figures",
	Long: `Analyze loads one table and prints missing values, a numeric summary and the
strongest correlations, then renders a correlation heatmap and distribution
plots for key columns. With no source, the configured default_source is used.

Failures are reported on stdout and do not change the exit code.`,
	Example: `  tablelens analyze
  tablelens analyze data/sales.xlsx --sheet-name Q3 --out figures
  tablelens analyze https://example.com/api/rows --format json --records-path data.items
  tablelens analyze tips.csv --key-column "size=Party size:Guests:orange"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := ensureConfig()
		source := c.DefaultSource
		if len(args) == 1 {
			source = args[0]
		}
		run, err := newRunner(cmd, &anaFlags, c)
		if err != nil {
			return err
		}
		_, paths := run.analyze(cmd.Context(), cmd.OutOrStdout(), source, "")
		printWritten(cmd.OutOrStdout(), paths)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addAnalysisFlags(analyzeCmd.Flags(), &anaFlags)
}

func addAnalysisFlags(f *pflag.FlagSet, af *analysisFlags) {
	f.StringVar(&af.format, "format", "", "input format: csv | json | xlsx (default by extension)")
	f.StringVar(&af.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab'")
	f.StringVar(&af.recordsPath, "records-path", "", "JSON: path to the records array (gjson syntax)")
	f.StringVar(&af.sheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	f.IntVar(&af.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	f.StringVarP(&af.outDir, "out", "o", "", "directory to write PNG figures (overrides config)")
	f.IntVar(&af.sampleRows, "sample-rows", 0, "number of sample rows to include (overrides config)")
	f.IntVar(&af.topPairs, "top-pairs", 10, "number of correlation pairs to list, 0 = all (overrides config)")
	f.BoolVar(&af.outliers, "outliers", true, "compute robust outlier counts (MAD)")
	f.Float64Var(&af.outlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	f.StringArrayVar(&af.keyColumns, "key-column", nil, "key column to plot as column=title:label:color (repeatable; replaces defaults)")
}

// runner builds a fresh pipeline per source from merged config and flags.
type runner struct {
	loaderOpt  loader.Options
	format     string
	anaOpt     analysis.Options
	keyMetrics []pipeline.KeyMetric
	outDir     string
	sampleRows int
	topPairs   int
	figW, figH float64
}

func newRunner(cmd *cobra.Command, af *analysisFlags, c *cfgpkg.Global) (*runner, error) {
	f := cmd.Flags()
	r := &runner{
		format:     strings.ToLower(strings.TrimSpace(af.format)),
		outDir:     c.OutputDir,
		sampleRows: c.SampleRows,
		topPairs:   c.TopPairs,
		figW:       c.FigureWidthIn,
		figH:       c.FigureHeightIn,
		anaOpt: analysis.Options{
			Outliers:         c.Outliers,
			OutlierThreshold: c.OutlierThreshold,
		},
	}
	delim := c.CSVDelimiter
	if f.Changed("delimiter") {
		delim = af.delimiter
	}
	d, err := cfgpkg.ParseDelimiter(delim)
	if err != nil {
		return nil, err
	}
	r.loaderOpt = loader.Options{
		HTTPClient:  httpClient(c),
		Delimiter:   d,
		RecordsPath: af.recordsPath,
		SheetName:   af.sheetName,
		SheetIndex:  af.sheetIndex,
	}
	if r.format != "" {
		if _, err := loader.New(r.format, r.loaderOpt); err != nil {
			return nil, err
		}
	}
	if f.Changed("out") {
		r.outDir = af.outDir
	}
	if f.Changed("sample-rows") {
		r.sampleRows = af.sampleRows
	}
	if f.Changed("top-pairs") {
		r.topPairs = af.topPairs
	}
	if f.Changed("outliers") {
		r.anaOpt.Outliers = af.outliers
	}
	if f.Changed("outlier-threshold") && af.outlierThr > 0 {
		r.anaOpt.OutlierThreshold = af.outlierThr
	}

	specs := c.KeyColumns
	if f.Changed("key-column") {
		specs = af.keyColumns
	}
	if len(specs) == 0 {
		r.keyMetrics = pipeline.DefaultKeyMetrics()
	}
	for _, s := range specs {
		km, err := pipeline.ParseKeyMetric(s)
		if err != nil {
			return nil, err
		}
		r.keyMetrics = append(r.keyMetrics, km)
	}
	return r, nil
}

// analyze runs one pipeline and returns the figure files it wrote.
func (r *runner) analyze(ctx context.Context, w io.Writer, source, prefix string) (*pipeline.Result, []string) {
	var sink visual.Sink = &visual.MemorySink{}
	var files *visual.FileSink
	if r.outDir != "" {
		files = visual.NewFileSink(r.outDir, prefix)
		sink = files
	}
	l, err := loader.ForSource(source, r.format, r.loaderOpt)
	if err != nil {
		fmt.Fprintf(w, "✗ Error: %v\n", err)
		return &pipeline.Result{Source: source, Err: err}, nil
	}
	vis := visual.New(sink)
	vis.SetFigureSize(r.figW, r.figH)

	p := pipeline.New(analysis.New(l, r.anaOpt), vis)
	p.Out = w
	p.KeyMetrics = r.keyMetrics
	p.SampleRows = r.sampleRows
	p.TopPairs = r.topPairs

	res := p.Analyze(ctx, source)
	if files == nil {
		return res, nil
	}
	return res, files.Paths()
}

func printWritten(w io.Writer, paths []string) {
	for _, p := range paths {
		fmt.Fprintf(w, "✓ Wrote figure %s\n", filepath.ToSlash(p))
	}
}
