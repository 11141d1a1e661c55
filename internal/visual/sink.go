package visual

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/KaramelBytes/tablelens/internal/utils"
)

// Sink receives rendered figures.
type Sink interface {
	Render(fig Figure) error
}

// DiscardSink drops every figure.
type DiscardSink struct{}

// Render implements Sink.
func (DiscardSink) Render(Figure) error { return nil }

// MemorySink keeps figures in memory.
type MemorySink struct {
	mu      sync.Mutex
	figures []Figure
}

// Render implements Sink.
func (m *MemorySink) Render(fig Figure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.figures = append(m.figures, fig)
	return nil
}

// Figures returns a copy of the stored figures.
func (m *MemorySink) Figures() []Figure {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Figure(nil), m.figures...)
}

// FileSink writes each figure as <Dir>/<Prefix>-<slug>.png. Existing files are never
// overwritten; a __N suffix is added instead.
type FileSink struct {
	Dir    string
	Prefix string

	mu    sync.Mutex
	paths []string
}

// NewFileSink returns a FileSink writing into dir.
func NewFileSink(dir, prefix string) *FileSink {
	return &FileSink{Dir: dir, Prefix: prefix}
}

// Render implements Sink.
func (f *FileSink) Render(fig Figure) error {
	if fig.Plot == nil {
		return ErrNoData
	}
	wt, err := fig.Plot.WriterTo(fig.Width, fig.Height, "png")
	if err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := utils.EnsureDir(f.Dir); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	base := utils.Slugify(fig.Title, fig.Kind)
	if f.Prefix != "" {
		base = utils.Slugify(f.Prefix, "run") + "-" + base
	}
	path := utils.UniquePath(f.Dir, base, ".png")
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return err
	}
	f.paths = append(f.paths, path)
	return nil
}

// Paths returns the files written so far.
func (f *FileSink) Paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}
