package hocr

import (
	"strings"
)

// Words returns every word on the page in reading order: areas first, then
// paragraphs and lines that have no enclosing area.
func (p Page) Words() []Word {
	var words []Word
	for _, area := range p.Areas {
		words = append(words, area.Words...)
		for _, line := range area.Lines {
			words = append(words, line.Words...)
		}
		for _, par := range area.Paragraphs {
			words = append(words, par.words()...)
		}
	}
	for _, par := range p.Paragraphs {
		words = append(words, par.words()...)
	}
	for _, line := range p.Lines {
		words = append(words, line.Words...)
	}
	return words
}

func (p Paragraph) words() []Word {
	words := append([]Word(nil), p.Words...)
	for _, line := range p.Lines {
		words = append(words, line.Words...)
	}
	return words
}

// Text linearizes a page: one line of output per hOCR line, a blank line
// between paragraphs.
func (p Page) Text() string {
	var b strings.Builder
	writeLines := func(lines []Line) {
		for _, line := range lines {
			writeWords(&b, line.Words)
		}
	}
	writePar := func(par Paragraph) {
		writeLines(par.Lines)
		writeWords(&b, par.Words)
		b.WriteString("\n")
	}
	for _, area := range p.Areas {
		for _, par := range area.Paragraphs {
			writePar(par)
		}
		writeLines(area.Lines)
		writeWords(&b, area.Words)
	}
	for _, par := range p.Paragraphs {
		writePar(par)
	}
	writeLines(p.Lines)
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// Text extracts all text from a document, pages separated by form feeds.
func Text(doc *Document) string {
	pages := make([]string, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		pages = append(pages, page.Text())
	}
	return strings.Join(pages, "\f")
}

func writeWords(b *strings.Builder, words []Word) {
	if len(words) == 0 {
		return
	}
	for i, w := range words {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w.Text)
	}
	b.WriteByte('\n')
}
