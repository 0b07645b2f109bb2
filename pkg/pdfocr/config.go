package pdfocr

// OCRConfig holds options for rendering the OCR text layer
type OCRConfig struct {
	Debug     bool   // Draw the text visibly in red with word boxes
	LayerName string // Base name of the OCR layer; the page number is appended
	Font      FontConfig
}

// DefaultLayerName is the optional content group name written to every page,
// formatted as "OCR Text (Page N)".
const DefaultLayerName = "OCR Text"

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() OCRConfig {
	return OCRConfig{
		LayerName: DefaultLayerName,
		Font:      DefaultFont,
	}
}

func (c OCRConfig) withDefaults() OCRConfig {
	if c.LayerName == "" {
		c.LayerName = DefaultLayerName
	}
	if c.Font.Name == "" {
		c.Font = DefaultFont
	}
	return c
}

// FontConfig contains font settings for OCR text rendering
type FontConfig struct {
	Name        string  // Font name (e.g., "Helvetica")
	Style       string  // Font style ("", "B", "I", "BI")
	Size        float64 // Default font size
	AscentRatio float64 // Vertical positioning ratio
}

// DefaultFont is Helvetica, a core font every viewer can map without embedding.
var DefaultFont = FontConfig{
	Name:        "Helvetica",
	Style:       "",
	Size:        10,
	AscentRatio: 0.718,
}
