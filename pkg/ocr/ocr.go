// Package ocr turns rendered page images into searchable one-page PDFs.
//
// An Engine recognizes the text on an image and reports its layout as an
// hOCR page. Searchable wraps an Engine and renders the recognized layout as
// an invisible text layer over the page, ready to be merged into a document.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gardar/ocrbatch/pkg/hocr"
	"github.com/gardar/ocrbatch/pkg/pdfocr"
	"github.com/gardar/ocrbatch/pkg/raster"
)

// ErrRecognition marks a page whose text could not be recognized or rendered.
var ErrRecognition = errors.New("recognition failed")

// Engine recognizes text on a single page image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img raster.Image, lang Language) (hocr.Page, error)
}

// Recognized is a successfully processed page.
type Recognized struct {
	PDF  []byte    // One-page searchable PDF
	Page hocr.Page // Layout the PDF text layer was drawn from
}

// Searchable produces searchable pages from an Engine.
type Searchable struct {
	Engine Engine
	Render pdfocr.OCRConfig

	// Overlay draws the text over the original page imported from
	// img.Source instead of embedding the rendered image.
	Overlay bool
}

// NewSearchable returns a Searchable rendering with the default layer config.
func NewSearchable(engine Engine) *Searchable {
	return &Searchable{Engine: engine, Render: pdfocr.DefaultConfig()}
}

// Recognize runs the engine on img and renders the result. Every failure
// wraps ErrRecognition.
func (s *Searchable) Recognize(ctx context.Context, img raster.Image, lang Language) (Recognized, error) {
	if s.Engine == nil {
		return Recognized{}, fmt.Errorf("%w: no engine configured", ErrRecognition)
	}
	pageNum := img.PageIndex + 1

	page, err := s.Engine.Recognize(ctx, img, lang)
	if err != nil {
		return Recognized{}, fmt.Errorf("%w: %s page %d: %w", ErrRecognition, s.Engine.Name(), pageNum, err)
	}

	var pdf []byte
	if s.Overlay {
		src, readErr := os.ReadFile(img.Source)
		if readErr != nil {
			return Recognized{}, fmt.Errorf("%w: read source for overlay: %w", ErrRecognition, readErr)
		}
		pdf, err = pdfocr.OverlayPage(src, pageNum, page, img.WidthPt(), img.HeightPt(), s.Render)
	} else {
		pdf, err = pdfocr.RenderPage(page, pdfocr.Image{
			Data:     img.PNG,
			WidthPt:  img.WidthPt(),
			HeightPt: img.HeightPt(),
		}, pageNum, s.Render)
	}
	if err != nil {
		return Recognized{}, fmt.Errorf("%w: render page %d: %w", ErrRecognition, pageNum, err)
	}
	return Recognized{PDF: pdf, Page: page}, nil
}
