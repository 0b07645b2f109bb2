package pdfocr

import (
	"bytes"
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"

	"github.com/gardar/ocrbatch/pkg/hocr"
)

// overlaySourcePage imports one page of an existing PDF and overlays the OCR
// text layer on it. srcPage is 1-based.
func overlaySourcePage(src []byte, srcPage int, page hocr.Page, w, h float64, cfg OCRConfig) (out []byte, err error) {
	// gofpdi panics on malformed input instead of returning errors
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("failed to import page %d: %v", srcPage, r)
		}
	}()

	pdf := newDocument()
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(src))

	pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
	tpl := importer.ImportPageFromStream(pdf, &rs, srcPage, "/MediaBox")
	importer.UseImportedTemplate(pdf, tpl, 0, 0, w, h)

	if err := drawOCRLayer(pdf, page, cfg, srcPage, pageTransform(page, w, h)); err != nil {
		return nil, fmt.Errorf("failed to draw OCR layer for page %d: %w", srcPage, err)
	}
	return output(pdf)
}
