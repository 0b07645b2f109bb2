// Package pipeline runs batches of documents through page-level OCR.
//
// Documents are processed one after another. Within a document every page is
// an independent task: a fixed pool of workers drains a queue of page tasks,
// each task rasterizes and recognizes its page under a bounded number of
// attempts, and writes its terminal result into the slot reserved for its
// index. Once every slot is terminal the successful pages are merged in
// ascending order into the output document. Failed pages are skipped and
// logged; a document with no successful page produces no output.
//
// Main types:
//
// - Batch: runs a list of documents and reports the Outcome
// - Scheduler: the per-document worker pool
// - Executor: one page, rasterize plus recognize, with retries
// - Assembler: ordered, failure-tolerant merge and atomic publish
// - Tracker: batch-wide progress counter
package pipeline

import (
	"errors"
	"io"
	"log/slog"
)

var (
	// ErrDocumentOpen marks a source that could not be opened or has no pages.
	ErrDocumentOpen = errors.New("cannot open document")
	// ErrAssembly marks a document none of whose pages succeeded, or whose
	// pages could not be merged.
	ErrAssembly = errors.New("cannot assemble document")
	// ErrOutputWrite marks an output that could not be written.
	ErrOutputWrite = errors.New("cannot write output")
)

// DefaultWorkers is the page pool size used when none is configured.
const DefaultWorkers = 4

func discardIfNil(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}
