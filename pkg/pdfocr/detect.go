package pdfocr

import (
	"fmt"
	"regexp"
	"strings"
)

// pdfString matches the body of a PDF literal string, escapes included.
const pdfString = `\(((?:\\.|[^\\)])*)\)`

var ocgPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/Type\s*/OCG\s*/Name\s*` + pdfString),
	regexp.MustCompile(`/Name\s*` + pdfString + `\s*/Type\s*/OCG`),
	regexp.MustCompile(`/OCG\s*<<[^>]*?/Name\s*` + pdfString),
}

// detectPDFLayers attempts to find optional content group names in the raw
// PDF data. Groups stored inside compressed object streams are not visible
// to this scan.
func detectPDFLayers(pdfData []byte) ([]string, error) {
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("empty PDF data")
	}

	content := string(pdfData)
	var layers []string
	seen := make(map[string]bool)
	for _, re := range ocgPatterns {
		for _, match := range re.FindAllStringSubmatch(content, -1) {
			name := unescapePDFString(match[1])
			if decoded, err := decodeUTF16BE([]byte(name)); err == nil {
				name = decoded
			}
			if !seen[name] {
				seen[name] = true
				layers = append(layers, name)
			}
		}
	}
	return layers, nil
}

// LayerCheckResult contains the results of checking for OCR layers
type LayerCheckResult struct {
	Layers       []string // All detected layers
	HasOCRLayer  bool     // True if the specified OCR layer exists
	OCRLayerName string   // Name of the detected OCR layer (if any)
	Warnings     []string // Any warnings about potential OCR layers
}

// CheckExistingOCRLayers checks for existing OCR layers in a PDF
func CheckExistingOCRLayers(pdfData []byte, ocrLayerName string) (LayerCheckResult, error) {
	result := LayerCheckResult{}

	layers, err := detectPDFLayers(pdfData)
	if err != nil {
		return result, fmt.Errorf("cannot analyze layers: %w", err)
	}
	result.Layers = layers

	pageLayerPattern := regexp.MustCompile(fmt.Sprintf(`^%s\s*\(Page\s*\d+`, regexp.QuoteMeta(ocrLayerName)))
	for _, layer := range layers {
		if layer == ocrLayerName || pageLayerPattern.MatchString(layer) {
			result.HasOCRLayer = true
			result.OCRLayerName = layer
			break
		}
		if strings.Contains(strings.ToLower(layer), "ocr") {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Existing layer detected that might contain OCR: %s", layer))
		}
	}
	return result, nil
}

// OCRDetectionResult contains OCR detection information
type OCRDetectionResult struct {
	HasOCR    bool             // True if any OCR is detected by any method
	LayerInfo LayerCheckResult // Details from layer detection
	Warnings  []string
}

// DetectOCR reports whether pdfData already carries an OCR layer named after
// cfg.LayerName.
func DetectOCR(pdfData []byte, cfg OCRConfig) (OCRDetectionResult, error) {
	cfg = cfg.withDefaults()
	result := OCRDetectionResult{}

	layerResult, err := CheckExistingOCRLayers(pdfData, cfg.LayerName)
	if err != nil {
		return result, err
	}
	result.LayerInfo = layerResult
	result.HasOCR = layerResult.HasOCRLayer
	result.Warnings = append(result.Warnings, layerResult.Warnings...)
	return result, nil
}
