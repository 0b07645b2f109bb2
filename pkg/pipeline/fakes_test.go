package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gardar/ocrbatch/pkg/hocr"
	"github.com/gardar/ocrbatch/pkg/ocr"
	"github.com/gardar/ocrbatch/pkg/raster"
)

type fakeRasterizer struct{}

func (fakeRasterizer) Rasterize(_ context.Context, path string, pageIndex int, dpi int) (raster.Image, error) {
	return raster.Image{Source: path, PageIndex: pageIndex, DPI: dpi, Width: 10, Height: 10}, nil
}

// alwaysFail as a failure budget makes a page fail on every attempt.
const alwaysFail = -1

// fakeRecognizer fails each page a configured number of times before it
// succeeds. Page PDFs are tagged "[p<page>@<attempt>]" so merged output shows
// order and the attempt the bytes came from.
type fakeRecognizer struct {
	mu       sync.Mutex
	failures map[string]int // "<file>#<page>" -> failing attempts before success
	attempts map[string]int
	jitter   time.Duration
}

func newFakeRecognizer(failures map[string]int) *fakeRecognizer {
	if failures == nil {
		failures = map[string]int{}
	}
	return &fakeRecognizer{failures: failures, attempts: map[string]int{}}
}

func pageKey(source string, page int) string {
	return fmt.Sprintf("%s#%d", filepath.Base(source), page)
}

func (f *fakeRecognizer) Recognize(_ context.Context, img raster.Image, _ ocr.Language) (ocr.Recognized, error) {
	key := pageKey(img.Source, img.PageIndex+1)
	f.mu.Lock()
	f.attempts[key]++
	n := f.attempts[key]
	budget := f.failures[key]
	f.mu.Unlock()

	if f.jitter > 0 {
		time.Sleep(rand.N(f.jitter))
	}
	if budget == alwaysFail || n <= budget {
		return ocr.Recognized{}, fmt.Errorf("%w: simulated failure on %s", ocr.ErrRecognition, key)
	}
	word := fmt.Sprintf("p%d", img.PageIndex+1)
	return ocr.Recognized{
		PDF: []byte(fmt.Sprintf("[p%d@%d]", img.PageIndex+1, n)),
		Page: hocr.Page{
			BBox:  hocr.NewBoundingBox(0, 0, 10, 10),
			Lines: []hocr.Line{{Words: []hocr.Word{{Text: word, BBox: hocr.NewBoundingBox(1, 1, 5, 5)}}}},
		},
	}, nil
}

func (f *fakeRecognizer) attemptsFor(source string, page int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts[pageKey(source, page)]
}

func (f *fakeRecognizer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.attempts {
		total += n
	}
	return total
}

// concatMerger joins page bytes so tests can read back the page sequence.
type concatMerger struct{}

func (concatMerger) Merge(pages [][]byte, w io.Writer) error {
	for _, p := range pages {
		if _, err := w.Write(p); err != nil {
			return err
		}
	}
	return nil
}

type failingMerger struct{}

func (failingMerger) Merge([][]byte, io.Writer) error { return errors.New("corrupt page") }

// fakeCounter maps file base names to page counts; unknown files fail to open.
type fakeCounter map[string]int

func (c fakeCounter) PageCount(path string) (int, error) {
	n, ok := c[filepath.Base(path)]
	if !ok {
		return 0, errors.New("not a PDF")
	}
	return n, nil
}

// writeSources creates placeholder source files and returns their paths.
func writeSources(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		if err := os.WriteFile(paths[i], []byte("%PDF-1.4\n% placeholder\n"), 0o644); err != nil {
			t.Fatalf("write source: %v", err)
		}
	}
	return paths
}

// testLogger returns a logger writing text lines into the returned buffer.
func testLogger() (*slog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return slog.New(slog.NewTextHandler(buf, nil)), buf
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return string(data)
}
