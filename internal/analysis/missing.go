package analysis

// MissingCount is one row of the missing-value report.
type MissingCount struct {
	Column  string
	Missing int
}

// MissingReport lists absent-cell counts per column, in table order.
type MissingReport struct {
	Rows   int
	Counts []MissingCount
}

// Total sums missing cells across columns.
func (r *MissingReport) Total() int {
	n := 0
	for _, c := range r.Counts {
		n += c.Missing
	}
	return n
}

// Lookup returns the count for column.
func (r *MissingReport) Lookup(column string) (int, bool) {
	for _, c := range r.Counts {
		if c.Column == column {
			return c.Missing, true
		}
	}
	return 0, false
}
