package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/tablelens/internal/dataset"
)

// XLSX loads one worksheet of an Excel workbook. The first row is the header.
type XLSX struct {
	opt Options
}

// NewXLSX returns an XLSX loader.
func NewXLSX(opt Options) *XLSX { return &XLSX{opt: opt} }

func (*XLSX) Name() string { return "xlsx" }

func (*XLSX) CanLoad(source string) bool { return hasExtension(source, ".xlsx") }

// Load reads and parses source.
func (l *XLSX) Load(ctx context.Context, source string) (*dataset.Table, error) {
	t, err := l.load(ctx, source)
	if err != nil {
		return nil, &LoadError{Format: l.Name(), Source: source, Err: err}
	}
	return t, nil
}

func (l *XLSX) load(ctx context.Context, source string) (*dataset.Table, error) {
	rc, err := open(ctx, l.opt.HTTPClient, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	f, err := excelize.OpenReader(rc)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f.GetSheetList(), l.opt.SheetName, l.opt.SheetIndex)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return dataset.FromRecords(nil)
	}
	width := len(rows[0])
	records := make([][]string, 0, len(rows))
	for i, r := range rows {
		rec, err := padRecord(r, width, i+1)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}
		records = append(records, rec)
	}
	return dataset.FromRecords(records)
}

// pickSheet resolves a sheet by case-insensitive name, else by 1-based index.
func pickSheet(sheets []string, name string, index int) (string, error) {
	if name != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, name) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet %q not found; available sheets: %s", name, strings.Join(sheets, ", "))
	}
	if index <= 0 {
		index = 1
	}
	if index > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range; workbook has %d sheet(s)", index, len(sheets))
	}
	return sheets[index-1], nil
}
