// Package pdfocr renders searchable PDF pages from hOCR data.
//
// Every function here produces a single-page PDF: the page image (or the
// imported original page) with the recognized text drawn on top in an
// optional content group ("layer"). The text is invisible unless debug mode
// is on, so the result looks like the source but is searchable and
// selectable. Single pages are later merged into full documents.
//
// Main Functions:
//
// - RenderPage: builds a page from a raster image and its hOCR page
// - OverlayPage: imports a page of an existing PDF and lays the OCR text over it
// - DetectOCR: checks whether a PDF already carries an OCR layer
package pdfocr

import (
	"fmt"

	"github.com/gardar/ocrbatch/pkg/hocr"
)

// Image is a page image together with the size of the page it depicts.
type Image struct {
	Data     []byte  // PNG or JPEG
	WidthPt  float64 // Page width in points
	HeightPt float64 // Page height in points
}

// RenderPage creates a one-page searchable PDF from a page image and the hOCR
// recognized on it. pageNum (1-based) names the OCR layer.
func RenderPage(page hocr.Page, img Image, pageNum int, cfg OCRConfig) ([]byte, error) {
	cfg = cfg.withDefaults()
	if len(img.Data) == 0 {
		return nil, fmt.Errorf("page %d: image is empty", pageNum)
	}
	imageType, err := detectImageType(img.Data)
	if err != nil {
		return nil, fmt.Errorf("page %d has invalid image format: %w", pageNum, err)
	}
	if img.WidthPt <= 0 || img.HeightPt <= 0 {
		// No physical size known, fall back to one point per hOCR pixel
		img.WidthPt, img.HeightPt = page.BBox.X2, page.BBox.Y2
	}
	if img.WidthPt <= 0 || img.HeightPt <= 0 {
		return nil, fmt.Errorf("page %d: unknown page size", pageNum)
	}
	return createPageFromImage(page, img, pageNum, imageType, cfg)
}

// OverlayPage imports page pageNum (1-based) of the PDF in src, sized
// widthPt x heightPt, and lays the OCR text of page over it.
func OverlayPage(src []byte, pageNum int, page hocr.Page, widthPt, heightPt float64, cfg OCRConfig) ([]byte, error) {
	cfg = cfg.withDefaults()
	if len(src) == 0 {
		return nil, fmt.Errorf("input PDF data is empty")
	}
	if pageNum < 1 {
		return nil, fmt.Errorf("page number must be at least 1, got %d", pageNum)
	}
	if widthPt <= 0 || heightPt <= 0 {
		return nil, fmt.Errorf("page %d: invalid page size %.1fx%.1f", pageNum, widthPt, heightPt)
	}
	return overlaySourcePage(src, pageNum, page, widthPt, heightPt, cfg)
}
