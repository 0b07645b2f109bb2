package hocr

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"strconv"
	"text/template"
)

//go:embed templates/hocr.tmpl
var templateFS embed.FS

var documentTemplate = template.Must(template.New("hocr.tmpl").Funcs(template.FuncMap{
	"bbox": formatBBox,
	"esc":  html.EscapeString,
	"inc":  func(i int) int { return i + 1 },
	"conf": func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) },
}).ParseFS(templateFS, "templates/hocr.tmpl"))

// Generate renders an hOCR HTML document from a Document.
func Generate(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("hOCR document is nil")
	}
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("error rendering hOCR template: %w", err)
	}
	return buf.Bytes(), nil
}

func formatBBox(b BoundingBox) string {
	return fmt.Sprintf("bbox %d %d %d %d", int(b.X1), int(b.Y1), int(b.X2), int(b.Y2))
}
