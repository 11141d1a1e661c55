package loader

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/gjson"

	"github.com/KaramelBytes/tablelens/internal/dataset"
)

// JSON loads an array of flat objects. Columns are the union of keys.
type JSON struct {
	opt Options
}

// NewJSON returns a JSON loader.
func NewJSON(opt Options) *JSON { return &JSON{opt: opt} }

func (*JSON) Name() string { return "json" }

func (*JSON) CanLoad(source string) bool { return hasExtension(source, ".json") }

// Load reads and parses source. Sources without an http(s) prefix are
// read from the filesystem as-is.
func (l *JSON) Load(ctx context.Context, source string) (*dataset.Table, error) {
	t, err := l.load(ctx, source)
	if err != nil {
		return nil, &LoadError{Format: l.Name(), Source: source, Err: err}
	}
	return t, nil
}

func (l *JSON) load(ctx context.Context, source string) (*dataset.Table, error) {
	rc, err := open(ctx, l.opt.HTTPClient, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	rows, err := decodeRecords(body, l.opt.RecordsPath)
	if err != nil {
		return nil, err
	}
	return dataset.FromMaps(rows)
}

func decodeRecords(body []byte, path string) ([]map[string]interface{}, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("malformed JSON document")
	}
	doc := gjson.ParseBytes(body)
	if path != "" {
		doc = gjson.GetBytes(body, path)
		if !doc.Exists() {
			return nil, fmt.Errorf("records path %q not found", path)
		}
	}
	if !doc.IsArray() {
		return nil, errors.New("expected an array of objects")
	}
	elems := doc.Array()
	rows := make([]map[string]interface{}, 0, len(elems))
	for i, el := range elems {
		if !el.IsObject() {
			return nil, fmt.Errorf("record %d: expected an object, got %s", i, el.Type)
		}
		row := make(map[string]interface{})
		el.ForEach(func(k, v gjson.Result) bool {
			row[k.String()] = v.Value()
			return true
		})
		rows = append(rows, row)
	}
	return rows, nil
}
