package pdfocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// normalizeCoords rescales hOCR bounding box coords (pixels) to PDF coords.
func normalizeCoords(x, y, hocrW, hocrH, pdfW, pdfH float64) (float64, float64) {
	nx := (x / hocrW) * pdfW
	ny := (y / hocrH) * pdfH
	return nx, ny
}

// unescapePDFString resolves the backslash escapes of a PDF literal string.
func unescapePDFString(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// utf16Text decodes PDF text strings written with a UTF-16BE byte order mark.
var utf16Text = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)

func decodeUTF16BE(b []byte) (string, error) {
	out, err := utf16Text.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// detectImageType figures out whether the data is PNG or JPEG, in the form
// fpdf expects for ImageOptions.ImageType.
func detectImageType(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image config: %w", err)
	}
	return strings.ToUpper(format), nil
}
