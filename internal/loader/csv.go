package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/KaramelBytes/tablelens/internal/dataset"
)

// CSV loads delimited text whose first row is the header.
type CSV struct {
	opt Options
}

// NewCSV returns a CSV loader.
func NewCSV(opt Options) *CSV { return &CSV{opt: opt} }

func (*CSV) Name() string { return "csv" }

func (*CSV) CanLoad(source string) bool {
	return hasExtension(source, ".csv", ".tsv", ".txt")
}

// Load reads and parses source.
func (l *CSV) Load(ctx context.Context, source string) (*dataset.Table, error) {
	t, err := l.load(ctx, source)
	if err != nil {
		return nil, &LoadError{Format: l.Name(), Source: source, Err: err}
	}
	return t, nil
}

func (l *CSV) load(ctx context.Context, source string) (*dataset.Table, error) {
	rc, err := open(ctx, l.opt.HTTPClient, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	delim := l.opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(source)
	}
	r := csv.NewReader(rc)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	var records [][]string
	width := 0
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(records)+1, err)
		}
		if len(records) == 0 {
			width = len(rec)
		}
		rec, err = padRecord(rec, width, len(records)+1)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return dataset.FromRecords(records)
}

func sniffDelimiter(source string) rune {
	if extension(source) == ".tsv" {
		return '\t'
	}
	return ','
}

// padRecord fills a short row up to width cells. A row wider than the
// header is malformed.
func padRecord(rec []string, width, row int) ([]string, error) {
	switch {
	case len(rec) == width:
		return rec, nil
	case len(rec) > width:
		return nil, fmt.Errorf("row %d: expected %d fields, saw %d", row, width, len(rec))
	}
	out := make([]string, width)
	copy(out, rec)
	return out, nil
}
