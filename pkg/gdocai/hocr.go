package gdocai

import (
	"fmt"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/ocrbatch/pkg/hocr"
)

// CreateHOCRPage converts a single Document AI page to an hOCR page.
// pageNumber is 1-based and only used for element ids.
//
// Blocks become areas, paragraphs and lines are nested by text anchor
// containment. Paragraphs outside every block and lines outside every
// paragraph are attached to the page directly.
func CreateHOCRPage(page *documentaipb.Document_Page, fullText string, pageNumber int) (hocr.Page, error) {
	if page == nil {
		return hocr.Page{}, fmt.Errorf("page %d: no page in response", pageNumber)
	}
	ocrPage := hocr.Page{
		ID:         fmt.Sprintf("page_%d", pageNumber),
		PageNumber: pageNumber - 1,
		Metadata:   map[string]string{"ocr-system": "Document AI OCR"},
	}
	if len(page.DetectedLanguages) > 0 {
		ocrPage.Lang = page.DetectedLanguages[0].LanguageCode
	}
	if dim := page.Dimension; dim != nil && dim.Width > 0 && dim.Height > 0 {
		ocrPage.BBox = hocr.NewBoundingBox(0, 0, float64(dim.Width), float64(dim.Height))
	} else if bbox, ok := boundingBox(page.Layout, page.Dimension); ok {
		ocrPage.BBox = bbox
	} else {
		return hocr.Page{}, fmt.Errorf("page %d: response has no page dimension", pageNumber)
	}

	assignedLines := make(map[string]bool)
	convertParagraph := func(para *documentaipb.Document_Page_Paragraph, id string, blockIdx, paraIdx int) hocr.Paragraph {
		p := hocr.Paragraph{ID: id}
		p.BBox, _ = boundingBox(para.Layout, page.Dimension)
		for lidx, line := range page.Lines {
			if !isElementInParent(line.Layout, para.Layout) {
				continue
			}
			assignedLines[layoutKey(line.Layout)] = true
			p.Lines = append(p.Lines, convertLine(line, page, fullText, pageNumber, blockIdx, paraIdx, lidx))
		}
		return p
	}

	for aidx, block := range page.Blocks {
		area := hocr.Area{ID: fmt.Sprintf("carea_%d_%d", pageNumber, aidx)}
		area.BBox, _ = boundingBox(block.Layout, page.Dimension)
		for pidx, para := range page.Paragraphs {
			if !isElementInParent(para.Layout, block.Layout) {
				continue
			}
			id := fmt.Sprintf("par_%d_%d_%d", pageNumber, aidx, pidx)
			area.Paragraphs = append(area.Paragraphs, convertParagraph(para, id, aidx, pidx))
		}
		ocrPage.Areas = append(ocrPage.Areas, area)
	}

	for pidx, para := range page.Paragraphs {
		if inAnyBlock(para.Layout, page.Blocks) {
			continue
		}
		id := fmt.Sprintf("par_%d_direct_%d", pageNumber, pidx)
		ocrPage.Paragraphs = append(ocrPage.Paragraphs, convertParagraph(para, id, 0, pidx))
	}

	for lidx, line := range page.Lines {
		if !assignedLines[layoutKey(line.Layout)] {
			ocrPage.Lines = append(ocrPage.Lines, convertLine(line, page, fullText, pageNumber, 0, 0, lidx))
		}
	}
	return ocrPage, nil
}

func inAnyBlock(layout *documentaipb.Document_Page_Layout, blocks []*documentaipb.Document_Page_Block) bool {
	for _, block := range blocks {
		if isElementInParent(layout, block.Layout) {
			return true
		}
	}
	return false
}

// boundingBox converts normalized vertices (0-1) to pixel coordinates.
func boundingBox(layout *documentaipb.Document_Page_Layout, dimension *documentaipb.Document_Page_Dimension) (hocr.BoundingBox, bool) {
	if layout == nil || layout.BoundingPoly == nil || dimension == nil || len(layout.BoundingPoly.NormalizedVertices) < 4 {
		return hocr.BoundingBox{}, false
	}
	v := layout.BoundingPoly.NormalizedVertices
	round := func(n, size float32) float64 { return float64(int(n*size + 0.5)) }
	return hocr.NewBoundingBox(
		round(v[0].X, dimension.Width),
		round(v[0].Y, dimension.Height),
		round(v[2].X, dimension.Width),
		round(v[2].Y, dimension.Height),
	), true
}

// isElementInParent reports whether the element's first text segment lies
// within the parent's.
func isElementInParent(elementLayout, parentLayout *documentaipb.Document_Page_Layout) bool {
	if elementLayout == nil || parentLayout == nil ||
		elementLayout.TextAnchor == nil || parentLayout.TextAnchor == nil ||
		len(elementLayout.TextAnchor.TextSegments) == 0 || len(parentLayout.TextAnchor.TextSegments) == 0 {
		return false
	}
	el := elementLayout.TextAnchor.TextSegments[0]
	parent := parentLayout.TextAnchor.TextSegments[0]
	return el.StartIndex >= parent.StartIndex && el.EndIndex <= parent.EndIndex
}

func layoutKey(layout *documentaipb.Document_Page_Layout) string {
	if layout == nil || layout.TextAnchor == nil || len(layout.TextAnchor.TextSegments) == 0 {
		return ""
	}
	seg := layout.TextAnchor.TextSegments[0]
	return fmt.Sprintf("%d-%d", seg.StartIndex, seg.EndIndex)
}

func convertLine(line *documentaipb.Document_Page_Line, page *documentaipb.Document_Page,
	fullText string, pageNum, blockIdx, paraIdx, lineIdx int) hocr.Line {

	ocrLine := hocr.Line{
		ID:    fmt.Sprintf("line_%d_%d_%d_%d", pageNum, blockIdx, paraIdx, lineIdx),
		Class: "ocr_line",
	}
	ocrLine.BBox, _ = boundingBox(line.Layout, page.Dimension)
	if len(line.DetectedLanguages) > 0 {
		ocrLine.Lang = line.DetectedLanguages[0].LanguageCode
	}

	for tidx, token := range page.Tokens {
		if !isElementInParent(token.Layout, line.Layout) {
			continue
		}
		text := cleanTokenText(token, fullText)
		if text == "" {
			continue
		}
		word := hocr.Word{
			ID:   fmt.Sprintf("word_%d_%d_%d_%d_%d", pageNum, blockIdx, paraIdx, lineIdx, tidx),
			Text: text,
		}
		word.BBox, _ = boundingBox(token.Layout, page.Dimension)
		if token.Layout != nil {
			word.Confidence = float64(token.Layout.Confidence * 100)
		}
		if len(token.DetectedLanguages) > 0 {
			word.Lang = token.DetectedLanguages[0].LanguageCode
		}
		ocrLine.Words = append(ocrLine.Words, word)
	}
	return ocrLine
}
