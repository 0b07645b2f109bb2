package hocr

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

// lineClasses are the hOCR classes Tesseract uses for line-level elements.
var lineClasses = []string{"ocr_line", "ocr_header", "ocr_caption", "ocr_textfloat"}

// Parse converts raw hOCR data into a Document.
// It fails when the data contains no 'ocr_page' element.
func Parse(data []byte) (Document, error) {
	doc := Document{Metadata: make(map[string]string)}

	decoded, err := decode(data)
	if err != nil {
		return doc, err
	}

	root, err := html.Parse(bytes.NewReader(decoded))
	if err != nil {
		return doc, fmt.Errorf("failed to parse hOCR html: %w", err)
	}

	readHead(&doc, root)

	for _, n := range collect(root, "ocr_page") {
		doc.Pages = append(doc.Pages, parsePage(n))
	}
	if len(doc.Pages) == 0 {
		return doc, fmt.Errorf("no ocr_page elements found in hOCR data")
	}
	return doc, nil
}

// ParsePage parses hOCR data that is expected to describe exactly one page,
// which is what engines return for a single image.
func ParsePage(data []byte) (Page, error) {
	doc, err := Parse(data)
	if err != nil {
		return Page{}, err
	}
	if len(doc.Pages) != 1 {
		return Page{}, fmt.Errorf("expected 1 ocr_page, got %d", len(doc.Pages))
	}
	return doc.Pages[0], nil
}

// ParseTitle breaks down an hOCR title attribute into its properties.
// Example input: "bbox 100 200 300 400; x_wconf 95"
func ParseTitle(title string) map[string][]string {
	result := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(part)
		if len(items) == 0 {
			continue
		}
		result[items[0]] = items[1:]
	}
	return result
}

// ParseBoundingBox extracts the bbox property from a title string.
// It returns false when the title carries no usable bbox.
func ParseBoundingBox(title string) (BoundingBox, bool) {
	bbox, ok := ParseTitle(title)["bbox"]
	if !ok || len(bbox) < 4 {
		return BoundingBox{}, false
	}
	var v [4]float64
	for i := range v {
		f, err := strconv.ParseFloat(bbox[i], 64)
		if err != nil {
			return BoundingBox{}, false
		}
		v[i] = f
	}
	return NewBoundingBox(v[0], v[1], v[2], v[3]), true
}

// decode converts ISO-8859-1 hOCR to UTF-8; anything else is passed through.
func decode(data []byte) ([]byte, error) {
	head := strings.ToLower(string(data[:min(len(data), 1024)]))
	if !strings.Contains(head, "charset=iso-8859-1") && !strings.Contains(head, "charset=latin1") {
		return data, nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode iso-8859-1: %w", err)
	}
	return decoded, nil
}

// readHead extracts document-level metadata from the html and head elements
func readHead(doc *Document, root *html.Node) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "html":
				if lang := attr(n, "lang"); lang != "" {
					doc.Language = lang
				}
			case "title":
				if n.FirstChild != nil {
					doc.Title = n.FirstChild.Data
				}
			case "meta":
				name, content := attr(n, "name"), attr(n, "content")
				if strings.HasPrefix(name, "ocr-") && content != "" {
					doc.Metadata[name] = content
				}
			case "body":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
}

func parsePage(n *html.Node) Page {
	page := Page{
		ID:       attr(n, "id"),
		Lang:     attr(n, "lang"),
		Metadata: make(map[string]string),
	}
	props := ParseTitle(attr(n, "title"))
	page.BBox, _ = ParseBoundingBox(attr(n, "title"))
	for k, v := range props {
		switch k {
		case "bbox":
		case "image":
			if len(v) > 0 {
				page.ImageName = strings.Trim(strings.Join(v, " "), `"`)
			}
		case "ppageno":
			if len(v) > 0 {
				page.PageNumber, _ = strconv.Atoi(v[0])
			}
		case "scan_res":
			if len(v) > 0 {
				page.ScanRes, _ = strconv.ParseFloat(v[0], 64)
			}
		default:
			page.Metadata[k] = strings.Join(v, " ")
		}
	}

	for _, c := range collect(n, withLines("ocr_carea", "ocr_par")...) {
		switch {
		case hasClass(c, "ocr_carea"):
			page.Areas = append(page.Areas, parseArea(c))
		case hasClass(c, "ocr_par"):
			page.Paragraphs = append(page.Paragraphs, parseParagraph(c))
		default:
			page.Lines = append(page.Lines, parseLine(c))
		}
	}
	return page
}

func parseArea(n *html.Node) Area {
	area := Area{ID: attr(n, "id"), Lang: attr(n, "lang")}
	area.BBox, _ = ParseBoundingBox(attr(n, "title"))
	for _, c := range collect(n, withLines("ocr_par", "ocrx_word")...) {
		switch {
		case hasClass(c, "ocr_par"):
			area.Paragraphs = append(area.Paragraphs, parseParagraph(c))
		case hasClass(c, "ocrx_word"):
			area.Words = append(area.Words, parseWord(c))
		default:
			area.Lines = append(area.Lines, parseLine(c))
		}
	}
	return area
}

func parseParagraph(n *html.Node) Paragraph {
	par := Paragraph{ID: attr(n, "id"), Lang: attr(n, "lang")}
	par.BBox, _ = ParseBoundingBox(attr(n, "title"))
	for _, c := range collect(n, withLines("ocrx_word")...) {
		if hasClass(c, "ocrx_word") {
			par.Words = append(par.Words, parseWord(c))
			continue
		}
		par.Lines = append(par.Lines, parseLine(c))
	}
	return par
}

func parseLine(n *html.Node) Line {
	line := Line{ID: attr(n, "id"), Lang: attr(n, "lang")}
	for _, class := range lineClasses {
		if hasClass(n, class) {
			line.Class = class
			break
		}
	}
	title := attr(n, "title")
	line.BBox, _ = ParseBoundingBox(title)
	if baseline, ok := ParseTitle(title)["baseline"]; ok {
		line.Baseline = strings.Join(baseline, " ")
	}
	for _, c := range collect(n, "ocrx_word") {
		line.Words = append(line.Words, parseWord(c))
	}
	return line
}

func parseWord(n *html.Node) Word {
	word := Word{ID: attr(n, "id"), Lang: attr(n, "lang")}
	title := attr(n, "title")
	word.BBox, _ = ParseBoundingBox(title)
	props := ParseTitle(title)
	if conf, ok := props["x_wconf"]; ok && len(conf) > 0 {
		word.Confidence, _ = strconv.ParseFloat(conf[0], 64)
	}
	word.Text = textContent(n)
	return word
}

// withLines appends the line-level classes to classes.
func withLines(classes ...string) []string {
	return append(classes, lineClasses...)
}

// collect returns the outermost descendants of n carrying one of the given
// classes, in document order.
func collect(n *html.Node, classes ...string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && hasAnyClass(c, classes) {
				found = append(found, c)
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return found
}

func hasAnyClass(n *html.Node, classes []string) bool {
	for _, class := range classes {
		if hasClass(n, class) {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// textContent gets all text below a node, whitespace-normalized
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
			b.WriteByte(' ')
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
