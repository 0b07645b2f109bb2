package hocr

// Document is a parsed hOCR document
type Document struct {
	Title    string            // Document title
	Language string            // Document language
	Metadata map[string]string // ocr-system, ocr-capabilities, ...
	Pages    []Page
}

// Page is one page of recognized text (class 'ocr_page')
type Page struct {
	ID         string
	PageNumber int         // ppageno, 0-based as written by Tesseract
	ImageName  string      // image property from the title attribute
	Lang       string      // Language code for this page
	BBox       BoundingBox // Page coordinates in image pixels
	ScanRes    float64     // Horizontal resolution from 'scan_res', 0 if absent
	Areas      []Area
	Paragraphs []Paragraph // Paragraphs without an enclosing area
	Lines      []Line      // Lines without an enclosing paragraph or area
	Metadata   map[string]string
}

// Area represents a content area or column (class 'ocr_carea')
type Area struct {
	ID         string
	Lang       string
	BBox       BoundingBox
	Paragraphs []Paragraph
	Lines      []Line
	Words      []Word
}

// Paragraph represents a paragraph (class 'ocr_par')
type Paragraph struct {
	ID    string
	Lang  string
	BBox  BoundingBox
	Lines []Line
	Words []Word
}

// Line represents a line of text. Tesseract also writes headers, captions and
// floating text as line-level elements; all of them map to Line.
type Line struct {
	ID       string
	Class    string // ocr_line, ocr_header, ocr_caption or ocr_textfloat
	Lang     string
	BBox     BoundingBox
	Baseline string
	Words    []Word
}

// Word is a recognized word with bounding box (class 'ocrx_word')
type Word struct {
	ID         string
	Text       string
	BBox       BoundingBox
	Confidence float64 // x_wconf, 0-100
	Lang       string
}

// BoundingBox is a rectangle in image pixel coordinates, origin top-left.
type BoundingBox struct {
	X1 float64 // Left
	Y1 float64 // Top
	X2 float64 // Right
	Y2 float64 // Bottom
}

// NewBoundingBox creates a bounding box from hOCR 'bbox x1 y1 x2 y2' values.
func NewBoundingBox(x1, y1, x2, y2 float64) BoundingBox {
	return BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Width returns the horizontal extent of the box.
func (b BoundingBox) Width() float64 { return b.X2 - b.X1 }

// Height returns the vertical extent of the box.
func (b BoundingBox) Height() float64 { return b.Y2 - b.Y1 }

// IsZero reports whether the box was never set.
func (b BoundingBox) IsZero() bool { return b == BoundingBox{} }
