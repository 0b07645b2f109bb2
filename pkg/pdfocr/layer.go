package pdfocr

import (
	"fmt"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/ocrbatch/pkg/hocr"
)

// drawOCRLayer draws the OCR text of one page onto its own layer.
// The pageNum parameter is used to create unique layer names for each page.
func drawOCRLayer(
	pdf *fpdf.Fpdf,
	page hocr.Page,
	cfg OCRConfig,
	pageNum int,
	transform func(x, y float64) (float64, float64),
) error {
	layerName := cfg.LayerName
	if pageNum > 0 {
		layerName = fmt.Sprintf("%s (Page %d)", cfg.LayerName, pageNum)
	}

	layer := pdf.AddLayer(layerName, true)
	pdf.BeginLayer(layer)
	pdf.SetFont(cfg.Font.Name, cfg.Font.Style, cfg.Font.Size)

	if cfg.Debug {
		pdf.SetTextColor(255, 0, 0)
		pdf.SetDrawColor(255, 0, 0)
	} else {
		pdf.SetAlpha(0.0, "Normal")
	}

	words := page.Words()
	encodingErrors := 0
	for _, word := range words {
		if word.Text == "" || word.BBox.Width() <= 0 {
			continue
		}
		if !drawWord(pdf, word, transform, cfg) {
			encodingErrors++
		}
	}

	if !cfg.Debug {
		pdf.SetAlpha(1.0, "Normal")
	}
	pdf.EndLayer()

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to draw OCR layer: %w", err)
	}
	if len(words) > 0 && encodingErrors > len(words)/10 {
		return fmt.Errorf("character encoding issues in %d of %d words", encodingErrors, len(words))
	}
	return nil
}

// drawWord renders a single word scaled to its bounding box. It reports
// false when the word could not be represented in the core font encoding.
func drawWord(pdf *fpdf.Fpdf, word hocr.Word, transform func(x, y float64) (float64, float64), cfg OCRConfig) bool {
	x, y := transform(word.BBox.X1, word.BBox.Y1)
	x2, y2 := transform(word.BBox.X2, word.BBox.Y2)
	wordWidth := x2 - x

	// Core fonts only cover ISO-8859-1
	encoded := true
	latin1, err := charmap.ISO8859_1.NewEncoder().String(word.Text)
	if err != nil {
		encoded = false
		latin1 = replaceUnencodable(word.Text)
	}

	pdf.SetFontSize(cfg.Font.Size)
	if strWidth := pdf.GetStringWidth(latin1); strWidth > 0 {
		pdf.SetFontSize(cfg.Font.Size * wordWidth / strWidth)
	}

	fontSize, _ := pdf.GetFontSize()
	pdf.Text(x, y+fontSize*cfg.Font.AscentRatio, latin1)

	if cfg.Debug {
		pdf.Rect(x, y, wordWidth, y2-y, "D")
	}
	pdf.SetFontSize(cfg.Font.Size)
	return encoded
}

// replaceUnencodable substitutes '?' for runes outside ISO-8859-1.
func replaceUnencodable(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			r = '?'
		}
		out = append(out, r)
	}
	latin1, err := charmap.ISO8859_1.NewEncoder().String(string(out))
	if err != nil {
		return ""
	}
	return latin1
}
