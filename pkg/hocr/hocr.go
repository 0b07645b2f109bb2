// Package hocr implements the subset of the hOCR format that ocrbatch needs to
// move recognized text between OCR engines and the PDF text layer.
//
// hOCR is an HTML-based standard for OCR results. Engines such as Tesseract
// emit it directly; other engines (Document AI) are converted into the same
// object model so that every page reaching the PDF renderer looks the same.
//
// The object model follows the hOCR hierarchy:
// Document → Pages → Areas → Paragraphs → Lines → Words.
// Elements that appear outside their usual parent (a line directly under a
// page, a word directly under a paragraph) are kept on the nearest ancestor
// instead of being dropped.
//
// Main Functions:
//
// - Parse: parses hOCR HTML into a Document
// - Generate: renders a Document back to hOCR HTML
// - Text: linearizes the recognized text of a Document
package hocr
