package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const tipsCSV = "total_bill,tip,sex\n" +
	"16.99,1.01,Female\n" +
	"10.34,1.66,Male\n" +
	"21.01,3.5,Male\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestCSV_LoadFile(t *testing.T) {
	p := writeFile(t, "tips.csv", tipsCSV)
	tbl, err := NewCSV(Options{}).Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Rows())
	assert.Equal(t, []string{"total_bill", "tip"}, tbl.NumericColumns())
}

func TestCSV_SniffsTabForTSV(t *testing.T) {
	p := writeFile(t, "tips.tsv", "a\tb\n1\t2\n3\t4\n")
	tbl, err := NewCSV(Options{}).Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Columns())
}

func TestCSV_ExplicitDelimiterAndRaggedRows(t *testing.T) {
	p := writeFile(t, "semi.csv", "a;b;c\n1;2;3\n4;5\n")
	tbl, err := NewCSV(Options{Delimiter: ';'}).Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Rows())
	c, err := tbl.Column("c")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Missing())
}

func TestCSV_RowWiderThanHeaderIsLoadError(t *testing.T) {
	p := writeFile(t, "wide.csv", "a,b\n1,2\n3,4,99\n5,6\n")
	_, err := NewCSV(Options{}).Load(context.Background(), p)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, err.Error(), "row 3: expected 2 fields, saw 3")
}

func TestCSV_TrailingSpacesKeepColumnNumeric(t *testing.T) {
	p := writeFile(t, "spaced.csv", "a,b\n1 ,2\n3 ,5\n4,7\n")
	tbl, err := NewCSV(Options{}).Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.NumericColumns())
	a, err := tbl.Column("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 4}, a.Floats())
}

func TestCSV_HeaderOnlyYieldsEmptyTable(t *testing.T) {
	p := writeFile(t, "empty.csv", "a,b\n")
	tbl, err := NewCSV(Options{}).Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Rows())
}

func TestCSV_EmptyFileIsLoadError(t *testing.T) {
	p := writeFile(t, "blank.csv", "")
	_, err := NewCSV(Options{}).Load(context.Background(), p)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "csv", le.Format)
	assert.Contains(t, err.Error(), "no columns to parse")
}

func TestCSV_MissingFileIsLoadError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.csv")
	_, err := NewCSV(Options{}).Load(context.Background(), missing)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, missing, le.Source)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCSV_RemoteSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tips.csv" {
			http.Error(w, "no such dataset", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(tipsCSV))
	}))
	defer srv.Close()

	l := NewCSV(Options{HTTPClient: srv.Client()})
	tbl, err := l.Load(context.Background(), srv.URL+"/tips.csv")
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Rows())

	_, err = l.Load(context.Background(), srv.URL+"/missing.csv")
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "no such dataset")
}

func TestJSON_LoadArrayOfObjects(t *testing.T) {
	p := writeFile(t, "tips.json", `[{"tip":1,"total_bill":15},{"tip":2,"total_bill":25}]`)
	tbl, err := NewJSON(Options{}).Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Rows())
	assert.Equal(t, []string{"tip", "total_bill"}, tbl.Columns())
	assert.Equal(t, []string{"tip", "total_bill"}, tbl.NumericColumns())
}

func TestJSON_NullsAndAbsentKeysAreMissing(t *testing.T) {
	p := writeFile(t, "rows.json", `[{"a":1,"b":null},{"a":2},{"a":3,"b":4.5}]`)
	tbl, err := NewJSON(Options{}).Load(context.Background(), p)
	require.NoError(t, err)
	b, err := tbl.Column("b")
	require.NoError(t, err)
	assert.Equal(t, 2, b.Missing())
	assert.Equal(t, []float64{4.5}, b.Floats())
}

func TestJSON_RecordsPath(t *testing.T) {
	p := writeFile(t, "wrapped.json", `{"meta":{"n":2},"data":{"rows":[{"x":1},{"x":2}]}}`)
	tbl, err := NewJSON(Options{RecordsPath: "data.rows"}).Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Rows())

	_, err = NewJSON(Options{RecordsPath: "data.nope"}).Load(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `records path "data.nope" not found`)
}

func TestJSON_RejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"malformed": `[{"a":1},`,
		"object":    `{"a":1}`,
		"scalars":   `[1,2,3]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			p := writeFile(t, name+".json", body)
			_, err := NewJSON(Options{}).Load(context.Background(), p)
			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, "json", le.Format)
		})
	}
}

func TestJSON_EmptyArrayYieldsEmptyTable(t *testing.T) {
	p := writeFile(t, "empty.json", `[]`)
	tbl, err := NewJSON(Options{}).Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Rows())
}

func TestJSON_RemoteSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"tip":1,"total_bill":15}]`))
	}))
	defer srv.Close()

	tbl, err := NewJSON(Options{HTTPClient: srv.Client()}).Load(context.Background(), srv.URL+"/tips")
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Rows())
}

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"label"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"ignored"}))
	_, err := f.NewSheet("Data")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Data", "A1", &[]interface{}{"total_bill", "tip", "day"}))
	require.NoError(t, f.SetSheetRow("Data", "A2", &[]interface{}{16.99, 1.01, "Sun"}))
	require.NoError(t, f.SetSheetRow("Data", "A3", &[]interface{}{10.34, 1.66}))
	p := filepath.Join(t.TempDir(), "tips.xlsx")
	require.NoError(t, f.SaveAs(p))
	return p
}

func TestXLSX_SheetSelection(t *testing.T) {
	p := writeWorkbook(t)

	byName, err := NewXLSX(Options{SheetName: "data"}).Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 2, byName.Rows())
	assert.Equal(t, []string{"total_bill", "tip"}, byName.NumericColumns())
	day, err := byName.Column("day")
	require.NoError(t, err)
	assert.Equal(t, 1, day.Missing())

	byIndex, err := NewXLSX(Options{SheetIndex: 2}).Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, byName.Columns(), byIndex.Columns())

	first, err := NewXLSX(Options{}).Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"label"}, first.Columns())
}

func TestXLSX_UnknownSheet(t *testing.T) {
	p := writeWorkbook(t)
	_, err := NewXLSX(Options{SheetName: "Summary"}).Load(context.Background(), p)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, err.Error(), "available sheets: Sheet1, Data")

	_, err = NewXLSX(Options{SheetIndex: 5}).Load(context.Background(), p)
	require.ErrorAs(t, err, &le)
}

func TestXLSX_RowWiderThanHeaderIsLoadError(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"a", "b"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{1, 2, 3}))
	p := filepath.Join(t.TempDir(), "wide.xlsx")
	require.NoError(t, f.SaveAs(p))

	_, err := NewXLSX(Options{}).Load(context.Background(), p)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, err.Error(), "expected 2 fields, saw 3")
}

func TestXLSX_NotAWorkbook(t *testing.T) {
	p := writeFile(t, "fake.xlsx", "not a zip")
	_, err := NewXLSX(Options{}).Load(context.Background(), p)
	var le *LoadError
	require.ErrorAs(t, err, &le)
}

func TestForSource(t *testing.T) {
	tests := []struct {
		source string
		format string
		want   string
	}{
		{"data/tips.csv", "", "csv"},
		{"data/tips.tsv", "", "csv"},
		{"data/tips.json", "", "json"},
		{"data/TIPS.XLSX", "", "xlsx"},
		{"https://example.com/tips.json?raw=1", "", "json"},
		{"https://example.com/export", "", "csv"},
		{"data/tips.dat", "", "csv"},
		{"data/tips.csv", "json", "json"},
	}
	for _, tt := range tests {
		l, err := ForSource(tt.source, tt.format, Options{})
		require.NoError(t, err, tt.source)
		assert.Equal(t, tt.want, l.Name(), tt.source)
	}

	_, err := ForSource("tips.csv", "parquet", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestFormats_Sorted(t *testing.T) {
	var names []string
	for _, f := range Formats() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"csv", "json", "xlsx"}, names)
}

func TestLoadError_Message(t *testing.T) {
	err := &LoadError{Format: "csv", Source: "a.csv", Err: errors.New("boom")}
	assert.Equal(t, "load csv data from a.csv: boom", err.Error())
	assert.EqualError(t, errors.Unwrap(err), "boom")
}
