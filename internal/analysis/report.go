package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/tablelens/internal/dataset"
)

// Markdown renders the report as a two-column [Column, Missing] table.
func (r *MissingReport) Markdown() string {
	var b strings.Builder
	b.WriteString("[MISSING VALUES]\n")
	b.WriteString("| Column | Missing |\n")
	b.WriteString("| --- | --- |\n")
	for _, c := range r.Counts {
		b.WriteString(fmt.Sprintf("| %s | %d |\n", safeName(c.Column), c.Missing))
	}
	return b.String()
}

// Markdown renders one row per numeric column.
func (r *SummaryReport) Markdown() string {
	var b strings.Builder
	b.WriteString("[NUMERIC SUMMARY]\n")
	if len(r.Columns) == 0 {
		b.WriteString("(no numeric columns)\n")
		return b.String()
	}
	b.WriteString("| Column | count | mean | std | min | 25% | 50% | 75% | max |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- | --- |\n")
	for _, c := range r.Columns {
		b.WriteString(fmt.Sprintf("| %s | %d | %.4g | %.4g | %.4g | %.4g | %.4g | %.4g | %.4g |\n",
			safeName(c.Name), c.Count, c.Mean, c.Std, c.Min, c.Q25, c.Median, c.Q75, c.Max))
	}
	if r.OutlierThreshold > 0 {
		for _, c := range r.Columns {
			if c.OutliersCount == 0 {
				continue
			}
			b.WriteString(fmt.Sprintf("- %s: outliers: %d above |z|>%.1f (max |z|≈%.2f)\n",
				safeName(c.Name), c.OutliersCount, r.OutlierThreshold, c.OutliersMaxAbsZ))
		}
	}
	return b.String()
}

// CorrelationMarkdown lists the top k pairs by |r|. Matrices with a single
// column have no pairs to list.
func CorrelationMarkdown(m *dataset.CorrelationMatrix, k int) string {
	var b strings.Builder
	b.WriteString("[CORRELATIONS]\n")
	pairs := m.TopPairs(k)
	if len(pairs) == 0 {
		b.WriteString(fmt.Sprintf("(single numeric column: %s)\n", strings.Join(m.Columns(), ", ")))
		return b.String()
	}
	for _, p := range pairs {
		if math.IsNaN(p.PValue) {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f (n=%d)\n", p.A, p.B, p.R, p.N))
			continue
		}
		b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f (n=%d, p=%.3g)\n", p.A, p.B, p.R, p.N, p.PValue))
	}
	return b.String()
}

// SampleMarkdown renders head rows (header first) as a table.
func SampleMarkdown(head [][]string) string {
	if len(head) < 2 {
		return ""
	}
	var b strings.Builder
	b.WriteString("[HEAD AND SAMPLE ROWS]\n")
	header := head[0]
	b.WriteString("| ")
	for i, c := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeName(c))
	}
	b.WriteString(" |\n| ")
	for i := range header {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range head[1:] {
		b.WriteString("| ")
		for i := range header {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			if r := []rune(val); len(r) > 80 {
				val = string(r[:77]) + "..."
			}
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return safeVal(s)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
