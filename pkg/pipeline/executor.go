package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gardar/ocrbatch/pkg/ocr"
	"github.com/gardar/ocrbatch/pkg/raster"
	"github.com/gardar/ocrbatch/pkg/retry"
)

// Recognizer turns a rendered page into a searchable one-page PDF.
// ocr.Searchable is the production implementation.
type Recognizer interface {
	Recognize(ctx context.Context, img raster.Image, lang ocr.Language) (ocr.Recognized, error)
}

// Executor processes a single page: rasterize, then recognize, retried as
// one unit.
type Executor struct {
	Rasterizer  raster.Rasterizer
	Recognizer  Recognizer
	DPI         int
	Language    ocr.Language
	MaxAttempts int
	Logger      *slog.Logger
}

// Execute runs the task to a terminal state. A page that exhausts its
// attempts is returned as a Failed result, never as an error.
func (e *Executor) Execute(ctx context.Context, doc Document, task *PageTask) PageResult {
	logger := discardIfNil(e.Logger)
	maxAttempts := e.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = retry.DefaultMaxAttempts
	}

	res := retry.Do(maxAttempts, func(attempt int) (ocr.Recognized, error) {
		task.State = Running
		task.Attempts = attempt
		logger.Debug("page attempt",
			"document", doc.Source,
			"page", task.Index+1,
			"total_pages", doc.PageCount,
			"attempt", attempt)
		return e.attempt(ctx, doc, task)
	}, retry.OnFailure(func(attempt int, err error) {
		logger.Warn("page attempt failed",
			"document", doc.Source,
			"page", task.Index+1,
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", err)
		if attempt < maxAttempts {
			task.State = Retrying
		}
	}))

	result := PageResult{Index: task.Index, Attempts: res.Attempts}
	if !res.OK() {
		task.State = Failed
		result.State = Failed
		result.Err = fmt.Errorf("page %d: %w", task.Index+1, res.Err)
		return result
	}
	task.State = Succeeded
	result.State = Succeeded
	result.PDF = res.Value.PDF
	result.Page = res.Value.Page
	return result
}

// attempt rasterizes and recognizes the page once. A panic in either engine
// fails the attempt instead of the process.
func (e *Executor) attempt(ctx context.Context, doc Document, task *PageTask) (rec ocr.Recognized, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, err = ocr.Recognized{}, fmt.Errorf("%w: page %d panicked: %v", ocr.ErrRecognition, task.Index+1, r)
		}
	}()

	img, err := e.Rasterizer.Rasterize(ctx, doc.Source, task.Index, e.DPI)
	if err != nil {
		return ocr.Recognized{}, err
	}
	return e.Recognizer.Recognize(ctx, img, e.Language)
}
