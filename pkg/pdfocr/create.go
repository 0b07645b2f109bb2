package pdfocr

import (
	"bytes"
	"fmt"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gardar/ocrbatch/pkg/hocr"
)

// createPageFromImage builds a one-page PDF showing the image with the OCR
// layer on top. This function assumes inputs have been validated by the caller.
func createPageFromImage(page hocr.Page, img Image, pageNum int, imageType string, cfg OCRConfig) ([]byte, error) {
	w, h := img.WidthPt, img.HeightPt
	pdf := newDocument()
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

	imageName := fmt.Sprintf("page%d", pageNum)
	opts := fpdf.ImageOptions{ReadDpi: false, ImageType: imageType}
	pdf.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(img.Data))
	pdf.ImageOptions(imageName, 0, 0, w, h, false, opts, 0, "")

	if err := drawOCRLayer(pdf, page, cfg, pageNum, pageTransform(page, w, h)); err != nil {
		return nil, fmt.Errorf("failed to draw OCR layer for page %d: %w", pageNum, err)
	}
	return output(pdf)
}

// pageTransform maps hOCR pixel coordinates onto a w x h point page.
func pageTransform(page hocr.Page, w, h float64) func(x, y float64) (float64, float64) {
	hocrW, hocrH := page.BBox.X2, page.BBox.Y2
	if hocrW <= 0 || hocrH <= 0 {
		hocrW, hocrH = w, h
	}
	return func(x, y float64) (float64, float64) {
		return normalizeCoords(x, y, hocrW, hocrH, w, h)
	}
}

func newDocument() *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCreator("ocrbatch", true)
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
