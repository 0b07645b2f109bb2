package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gardar/ocrbatch/pkg/ocr"
	"github.com/gardar/ocrbatch/pkg/pdfocr"
	"github.com/gardar/ocrbatch/pkg/raster"
	"github.com/gardar/ocrbatch/pkg/retry"
)

// Options configure a batch run.
type Options struct {
	OutputDir   string
	Language    ocr.Language
	Resolution  raster.Resolution
	Workers     int    // Page workers per document; DefaultWorkers when < 1
	MaxAttempts int    // Attempts per page; retry.DefaultMaxAttempts when < 1
	Force       bool   // Process documents that already carry an OCR layer
	LayerName   string // OCR layer name looked for by the existing-OCR check
	Sidecars    Sidecars

	OnProgress ProgressFunc // Called once per finished document
	OnPage     PageFunc     // Called once per finished page
}

// Status is the outcome of one document.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// DocumentReport records what happened to one document.
type DocumentReport struct {
	Source      string
	Output      string // Empty unless the document was published
	Status      Status
	Pages       int
	PagesFailed []int // 1-based
	Sidecars    []string
	Duration    time.Duration
	Err         error
}

// Outcome summarizes a batch run.
type Outcome struct {
	Succeeded int
	Partial   int
	Failed    int
	Skipped   int
	Documents []DocumentReport
}

func (o *Outcome) add(r DocumentReport) {
	switch r.Status {
	case StatusSucceeded:
		o.Succeeded++
	case StatusPartial:
		o.Partial++
	case StatusFailed:
		o.Failed++
	case StatusSkipped:
		o.Skipped++
	}
	o.Documents = append(o.Documents, r)
}

// Batch processes documents into searchable PDFs.
type Batch struct {
	Rasterizer raster.Rasterizer
	Recognizer Recognizer
	Counter    PageCounter // PDFCounter when nil
	Merger     Merger      // PDFMerger when nil
	Options    Options
	Logger     *slog.Logger
}

// run is the state of one Run call.
type run struct {
	scheduler *Scheduler
	assembler *Assembler
	tracker   *Tracker
	counter   PageCounter
	opts      Options
	logger    *slog.Logger

	// published maps output paths written in this run to their source.
	published map[string]string
}

// Run processes paths in order and reports the outcome of each. A document
// failure never stops the batch; the only error returned is failure to
// create the output directory. Progress is recorded exactly once per path.
func (b *Batch) Run(ctx context.Context, paths []string) (Outcome, error) {
	if b.Options.OutputDir == "" {
		return Outcome{}, fmt.Errorf("output directory not set")
	}
	if err := os.MkdirAll(b.Options.OutputDir, 0o755); err != nil {
		return Outcome{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	r := b.newRun(len(paths))
	var outcome Outcome
	for _, path := range paths {
		report := r.document(ctx, path)
		outcome.add(report)
		r.tracker.RecordCompletion()
	}
	r.logger.Info("batch finished",
		"documents", len(paths),
		"succeeded", outcome.Succeeded,
		"partial", outcome.Partial,
		"failed", outcome.Failed,
		"skipped", outcome.Skipped)
	return outcome, nil
}

func (b *Batch) newRun(total int) *run {
	logger := discardIfNil(b.Logger)
	opts := b.Options
	if opts.Language == "" {
		opts.Language = ocr.DefaultLanguage
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = retry.DefaultMaxAttempts
	}
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}
	counter := b.Counter
	if counter == nil {
		counter = PDFCounter{}
	}

	executor := &Executor{
		Rasterizer:  b.Rasterizer,
		Recognizer:  b.Recognizer,
		DPI:         opts.Resolution.DPI(),
		Language:    opts.Language,
		MaxAttempts: opts.MaxAttempts,
		Logger:      logger,
	}
	return &run{
		scheduler: &Scheduler{Executor: executor, Workers: opts.Workers, OnPage: opts.OnPage},
		assembler: &Assembler{Merger: b.Merger, Sidecars: opts.Sidecars, Logger: logger},
		tracker:   NewTracker(total, opts.OnProgress),
		counter:   counter,
		opts:      opts,
		logger:    logger,
		published: make(map[string]string),
	}
}

// document runs one source through count, check, schedule and assemble.
func (r *run) document(ctx context.Context, path string) DocumentReport {
	start := time.Now()
	report := DocumentReport{Source: path}
	logger := r.logger.With("document", path)

	fail := func(err error) DocumentReport {
		report.Status = StatusFailed
		report.Err = err
		report.Duration = time.Since(start)
		logger.Error("document failed", "error", err)
		return report
	}

	output := filepath.Join(r.opts.OutputDir, filepath.Base(path))
	if earlier, ok := r.published[output]; ok {
		return fail(fmt.Errorf("%w: output name %s collides with %s", ErrOutputWrite, filepath.Base(output), earlier))
	}

	pages, err := r.counter.PageCount(path)
	if err != nil {
		return fail(fmt.Errorf("%w: %s: %w", ErrDocumentOpen, path, err))
	}
	if pages <= 0 {
		return fail(fmt.Errorf("%w: %s has no pages", ErrDocumentOpen, path))
	}
	report.Pages = pages

	if !r.opts.Force {
		hasOCR, err := r.hasOCRLayer(path)
		if err != nil {
			return fail(fmt.Errorf("%w: %s: %w", ErrDocumentOpen, path, err))
		}
		if hasOCR {
			report.Status = StatusSkipped
			report.Duration = time.Since(start)
			logger.Info("document already has an OCR layer, skipping")
			return report
		}
	}

	doc := Document{
		Source:    path,
		PageCount: pages,
		Output:    output,
	}
	logger.Info("processing document", "pages", pages, "workers", min(r.opts.Workers, pages))

	results := r.scheduler.Run(ctx, doc)
	assembly, err := r.assembler.Assemble(ctx, doc, results)
	for _, i := range assembly.Skipped {
		report.PagesFailed = append(report.PagesFailed, i+1)
	}
	if err != nil {
		return fail(err)
	}

	r.published[output] = path
	report.Output = assembly.Output
	report.Sidecars = assembly.Sidecars
	report.Status = StatusSucceeded
	if len(assembly.Skipped) > 0 {
		report.Status = StatusPartial
	}
	report.Duration = time.Since(start)
	return report
}

func (r *run) hasOCRLayer(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	cfg := pdfocr.DefaultConfig()
	if r.opts.LayerName != "" {
		cfg.LayerName = r.opts.LayerName
	}
	res, err := pdfocr.DetectOCR(data, cfg)
	if err != nil {
		return false, err
	}
	return res.HasOCR, nil
}
