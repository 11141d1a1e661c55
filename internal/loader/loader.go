// Package loader turns a source (local path or http(s) URL) into a
// dataset.Table. Each format is one Loader; a small registry picks the
// loader for a source by explicit format name or by extension.
package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/tablelens/internal/ctxlog"
	"github.com/KaramelBytes/tablelens/internal/dataset"
)

// Loader loads one tabular format.
type Loader interface {
	Name() string
	CanLoad(source string) bool
	Load(ctx context.Context, source string) (*dataset.Table, error)
}

// Options configures every loader variant. Zero values are valid.
type Options struct {
	// HTTPClient fetches http(s) sources; nil uses a client with a 60s timeout.
	HTTPClient *http.Client
	// Delimiter for CSV. If 0, '\t' for .tsv sources and ',' otherwise.
	Delimiter rune
	// RecordsPath is a gjson path to the records array inside a JSON document.
	RecordsPath string
	// XLSX sheet selection; SheetIndex is 1-based and used when SheetName is empty.
	SheetName  string
	SheetIndex int
}

// LoadError reports any failure to read or parse a source.
type LoadError struct {
	Format string
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "load failed"
	}
	return fmt.Sprintf("load %s data from %s: %v", e.Format, e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Factory constructs a Loader from options.
type Factory func(Options) Loader

// Format describes a registered loader.
type Format struct {
	Name       string
	Extensions []string
	New        Factory
}

var registry = map[string]Format{}

// Register adds or replaces a format in the registry.
func Register(f Format) {
	registry[strings.ToLower(f.Name)] = f
}

// Formats returns the registered formats sorted by name.
func Formats() []Format {
	out := make([]Format, 0, len(registry))
	for _, f := range registry {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// New constructs the loader registered under format.
func New(format string, opt Options) (Loader, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return f.New(opt), nil
}

// ForSource picks a loader for source. An explicit format wins; otherwise
// the extension decides, falling back to CSV.
func ForSource(source, format string, opt Options) (Loader, error) {
	if strings.TrimSpace(format) != "" {
		return New(format, opt)
	}
	for _, f := range Formats() {
		l := f.New(opt)
		if l.CanLoad(source) {
			return l, nil
		}
	}
	return New("csv", opt)
}

func init() {
	Register(Format{Name: "csv", Extensions: []string{".csv", ".tsv", ".txt"}, New: func(o Options) Loader { return NewCSV(o) }})
	Register(Format{Name: "json", Extensions: []string{".json"}, New: func(o Options) Loader { return NewJSON(o) }})
	Register(Format{Name: "xlsx", Extensions: []string{".xlsx"}, New: func(o Options) Loader { return NewXLSX(o) }})
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// extension returns the lower-cased extension of a path or URL path.
func extension(source string) string {
	p := source
	if isRemote(source) {
		if u, err := url.Parse(source); err == nil {
			p = u.Path
		}
	}
	return strings.ToLower(filepath.Ext(p))
}

func hasExtension(source string, exts ...string) bool {
	ext := extension(source)
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// open returns a reader over source: an HTTP GET for http(s) URLs, a file
// otherwise.
func open(ctx context.Context, client *http.Client, source string) (io.ReadCloser, error) {
	if !isRemote(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		return f, nil
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("fetching remote source", "url", source)
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("fetch: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	return resp.Body, nil
}
