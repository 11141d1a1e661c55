package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const tipsCSV = `total_bill,tip,sex,size
16.99,1.01,Female,2
10.34,1.66,Male,3
21.01,3.5,Male,3
23.68,3.31,Male,2
24.59,3.61,Female,4
25.29,4.71,Male,4
8.77,2.0,Male,2
26.88,3.12,Male,4
15.04,1.96,Male,2
14.78,3.23,Male,2
`

// resetFlags clears values and Changed state that persist across Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg = nil
	resetFlags(rootCmd)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestCLI_AnalyzeWritesFigures(t *testing.T) {
	home := isolateHome(t)
	src := writeFile(t, filepath.Join(home, "tips.csv"), tipsCSV)
	outDir := filepath.Join(home, "figs")

	out := runCmd(t, "analyze", src, "--out", outDir, "--sample-rows", "3")

	for _, want := range []string{"[MISSING VALUES]", "[NUMERIC SUMMARY]", "[HEAD AND SAMPLE ROWS]", "[CORRELATIONS]", "Total plots created: 3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	for _, name := range []string{"correlation-matrix.png", "tip-distribution.png", "total-bill-distribution.png"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("expected figure %s: %v", name, err)
		}
	}
	if got := strings.Count(out, "✓ Wrote figure"); got != 3 {
		t.Fatalf("wrote-figure lines = %d, want 3", got)
	}
}

func TestCLI_AnalyzeMissingFileExitsCleanly(t *testing.T) {
	home := isolateHome(t)
	out := runCmd(t, "analyze", filepath.Join(home, "absent.csv"))
	if !strings.Contains(out, "✗ Error:") {
		t.Fatalf("expected error line, got:\n%s", out)
	}
	if strings.Contains(out, "Total plots created") {
		t.Fatalf("pipeline should halt before the plot count:\n%s", out)
	}
}

func TestCLI_AnalyzeReportsFiguresWrittenBeforeFailure(t *testing.T) {
	home := isolateHome(t)
	src := writeFile(t, filepath.Join(home, "mixed.csv"), "tip,total_bill\nlow,10\nhigh,20\nmid,15\n")
	outDir := filepath.Join(home, "figs")

	out := runCmd(t, "analyze", src, "--out", outDir)
	if !strings.Contains(out, "✗ Error:") {
		t.Fatalf("expected the text tip column to fail the run:\n%s", out)
	}
	if !strings.Contains(out, "✓ Wrote figure") || !strings.Contains(out, "correlation-matrix.png") {
		t.Fatalf("heatmap written before the failure was not reported:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(outDir, "correlation-matrix.png")); err != nil {
		t.Fatalf("expected heatmap on disk: %v", err)
	}
}

func TestCLI_AnalyzeRemoteJSONRecordsPath(t *testing.T) {
	isolateHome(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"items":[{"tip":1,"total_bill":10},{"tip":2,"total_bill":18},{"tip":3.5,"total_bill":31}]}}`))
	}))
	defer srv.Close()

	out := runCmd(t, "analyze", srv.URL+"/rows", "--format", "json", "--records-path", "data.items", "--http-timeout", "5")
	if !strings.Contains(out, "Total plots created: 3") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "- tip ~ total_bill: r=") && !strings.Contains(out, "- total_bill ~ tip: r=") {
		t.Fatalf("expected a correlation pair:\n%s", out)
	}
}

func TestCLI_AnalyzeKeyColumnReplacesDefaults(t *testing.T) {
	home := isolateHome(t)
	src := writeFile(t, filepath.Join(home, "tips.csv"), tipsCSV)
	out := runCmd(t, "analyze", src, "--key-column", "size=Party size:Guests:orange")
	if !strings.Contains(out, "Total plots created: 2") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCLI_AnalyzeRejectsUnknownFormat(t *testing.T) {
	home := isolateHome(t)
	src := writeFile(t, filepath.Join(home, "tips.csv"), tipsCSV)
	if _, err := execCmd(t, "analyze", src, "--format", "parquet"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestCLI_AnalyzeBatchPrefixesAndContinues(t *testing.T) {
	home := isolateHome(t)
	body := "x,y\n1,2\n2,4\n3,7\n"
	writeFile(t, filepath.Join(home, "d1", "metrics.csv"), body)
	writeFile(t, filepath.Join(home, "d2", "metrics.csv"), body)
	bad := writeFile(t, filepath.Join(home, "bad", "empty.csv"), "x,y\n")
	outDir := filepath.Join(home, "figs")

	out := runCmd(t, "analyze-batch", filepath.Join(home, "d*", "metrics.csv"), bad, "--out", outDir)

	if !strings.Contains(out, "[1/3] Processing empty.csv...") || !strings.Contains(out, "[3/3] Processing metrics.csv...") {
		t.Fatalf("missing progress lines:\n%s", out)
	}
	if !strings.Contains(out, "⚠ Analyzed 2 of 3 files (1 failed)") {
		t.Fatalf("missing batch summary:\n%s", out)
	}
	for _, name := range []string{"metrics-correlation-matrix.png", "metrics-correlation-matrix__2.png"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("expected figure %s: %v", name, err)
		}
	}
}

func TestCLI_AnalyzeBatchQuiet(t *testing.T) {
	home := isolateHome(t)
	src := writeFile(t, filepath.Join(home, "tips.csv"), tipsCSV)
	out := runCmd(t, "analyze-batch", src, "--quiet")
	if strings.Contains(out, "Processing") || strings.Contains(out, "[NUMERIC SUMMARY]") {
		t.Fatalf("quiet mode leaked output:\n%s", out)
	}
	if !strings.Contains(out, "✓ Analyzed 1 file(s)") {
		t.Fatalf("missing summary:\n%s", out)
	}
}

func TestCLI_AnalyzeBatchNoMatches(t *testing.T) {
	home := isolateHome(t)
	if _, err := execCmd(t, "analyze-batch", filepath.Join(home, "*.csv")); err == nil {
		t.Fatalf("expected error when nothing matches")
	}
}

func TestCLI_Formats(t *testing.T) {
	out := runCmd(t, "formats")
	for _, want := range []string{"csv    .csv, .tsv, .txt", "json   .json", "xlsx   .xlsx"} {
		if !strings.Contains(out, want) {
			t.Fatalf("formats output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_ConfigSetThenShow(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(home, "cfg.yaml")

	runCmd(t, "--config", path, "config", "set", "top_pairs", "4")
	out := runCmd(t, "--config", path, "config", "show")
	if !strings.Contains(out, "top_pairs: 4\n") {
		t.Fatalf("expected saved value in:\n%s", out)
	}
	if _, err := execCmd(t, "--config", path, "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}
