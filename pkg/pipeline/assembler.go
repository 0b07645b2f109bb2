package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gardar/ocrbatch/pkg/hocr"
)

// Sidecars selects the extra files written next to an output document.
type Sidecars struct {
	Text bool // <name>.txt, plain text of the included pages
	HOCR bool // <name>.hocr, hOCR of the included pages
}

// Assembly describes a published document.
type Assembly struct {
	Output   string
	Included []int    // 0-based indexes of the pages in the output, ascending
	Skipped  []int    // 0-based indexes of failed pages
	Sidecars []string // Paths of the sidecars written
}

// Assembler merges the successful pages of a document and publishes the result.
type Assembler struct {
	Merger   Merger
	Sidecars Sidecars
	Logger   *slog.Logger
}

// Assemble walks results in index order, merges every succeeded page and
// writes the document to doc.Output via a temporary file and rename.
// Each failed page is logged once as skipped. When no page succeeded nothing
// is written and the error wraps ErrAssembly. Nothing is published once ctx
// is done.
func (a *Assembler) Assemble(ctx context.Context, doc Document, results []PageResult) (Assembly, error) {
	logger := discardIfNil(a.Logger).With("document", doc.Source)
	out := Assembly{Output: doc.Output}

	var pages [][]byte
	var layout []hocr.Page
	for i, r := range results {
		if !r.OK() {
			out.Skipped = append(out.Skipped, i)
			logger.Warn("skipped page", "page", i+1, "attempts", r.Attempts, "error", r.Err)
			continue
		}
		out.Included = append(out.Included, i)
		pages = append(pages, r.PDF)
		p := r.Page
		p.ID = fmt.Sprintf("page_%d", i+1)
		p.PageNumber = i
		layout = append(layout, p)
	}
	if len(pages) == 0 {
		return out, fmt.Errorf("%w: all %d pages of %s failed", ErrAssembly, len(results), doc.Source)
	}

	merger := a.Merger
	if merger == nil {
		merger = PDFMerger{}
	}
	var buf bytes.Buffer
	if err := merger.Merge(pages, &buf); err != nil {
		return out, fmt.Errorf("%w: %s: %w", ErrAssembly, doc.Source, err)
	}

	if err := ctx.Err(); err != nil {
		return out, fmt.Errorf("%s not published: %w", doc.Source, err)
	}
	if err := writeFileAtomic(doc.Output, buf.Bytes()); err != nil {
		return out, fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	logger.Info("saved document", "output", doc.Output, "pages", len(out.Included), "skipped", len(out.Skipped))

	out.Sidecars = a.writeSidecars(logger, doc, layout)
	return out, nil
}

// writeSidecars writes the requested sidecars. Failures are logged; the
// published document stands on its own.
func (a *Assembler) writeSidecars(logger *slog.Logger, doc Document, pages []hocr.Page) []string {
	if !a.Sidecars.Text && !a.Sidecars.HOCR {
		return nil
	}
	hdoc := &hocr.Document{
		Title:    filepath.Base(doc.Source),
		Metadata: map[string]string{"ocr-number-of-pages": fmt.Sprint(len(pages))},
		Pages:    pages,
	}
	base := strings.TrimSuffix(doc.Output, filepath.Ext(doc.Output))

	var written []string
	write := func(path string, data []byte) {
		if err := writeFileAtomic(path, data); err != nil {
			logger.Warn("sidecar not written", "path", path, "error", err)
			return
		}
		written = append(written, path)
	}
	if a.Sidecars.Text {
		write(base+".txt", []byte(hocr.Text(hdoc)))
	}
	if a.Sidecars.HOCR {
		data, err := hocr.Generate(hdoc)
		if err != nil {
			logger.Warn("sidecar not written", "path", base+".hocr", "error", err)
		} else {
			write(base+".hocr", data)
		}
	}
	return written
}
