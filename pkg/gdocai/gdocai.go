// Package gdocai is a cloud OCR engine backed by Google Document AI.
//
// Each page image is sent to an OCR processor as a raw PNG document. The
// returned layout (blocks, paragraphs, lines and tokens with normalized
// bounding polygons) is converted to an hOCR page in image pixel
// coordinates, so it can be rendered exactly like Tesseract output.
//
// Usage Requirements:
//
// - Google Cloud project with Document AI API enabled
// - Document AI processor configured for OCR
// - Credentials via Config.CredentialsFile or GOOGLE_APPLICATION_CREDENTIALS
package gdocai

import (
	"context"
	"fmt"

	"google.golang.org/api/option"

	"github.com/gardar/ocrbatch/pkg/hocr"
	"github.com/gardar/ocrbatch/pkg/ocr"
	"github.com/gardar/ocrbatch/pkg/raster"
)

// Config holds the Document AI processor settings.
type Config struct {
	ProjectID       string `yaml:"project_id"`
	Location        string `yaml:"location"` // "us" or "eu"
	ProcessorID     string `yaml:"processor_id"`
	CredentialsFile string `yaml:"credentials_file"`
	DebugDir        string `yaml:"debug_dir"` // Raw responses are dumped here as JSON when set
}

// Validate checks that the processor can be addressed.
func (c Config) Validate() error {
	switch {
	case c.ProjectID == "":
		return fmt.Errorf("document_ai.project_id is required")
	case c.Location == "":
		return fmt.Errorf("document_ai.location is required")
	case c.ProcessorID == "":
		return fmt.Errorf("document_ai.processor_id is required")
	}
	return nil
}

func (c Config) processorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.Location, c.ProcessorID)
}

// Engine implements ocr.Engine. The client is shared by all workers; gRPC
// clients are safe for concurrent use.
type Engine struct {
	cfg    Config
	client processor
}

// NewEngine connects to the regional Document AI endpoint of cfg.Location.
func NewEngine(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := newClient(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, client: client}, nil
}

func (e *Engine) Name() string { return "documentai" }

// Recognize sends the page image to the processor and converts the single
// returned page to hOCR.
func (e *Engine) Recognize(ctx context.Context, img raster.Image, lang ocr.Language) (hocr.Page, error) {
	if len(img.PNG) == 0 {
		return hocr.Page{}, fmt.Errorf("empty image")
	}
	doc, err := e.process(ctx, img.PNG, lang)
	if err != nil {
		return hocr.Page{}, err
	}
	if e.cfg.DebugDir != "" {
		if err := writeDebug(e.cfg.DebugDir, img, doc); err != nil {
			return hocr.Page{}, err
		}
	}
	if len(doc.GetPages()) != 1 {
		return hocr.Page{}, fmt.Errorf("expected 1 page in result for page %d, got %d", img.PageIndex+1, len(doc.GetPages()))
	}
	return CreateHOCRPage(doc.Pages[0], doc.Text, img.PageIndex+1)
}

// Close releases the client connection.
func (e *Engine) Close() error {
	return e.client.Close()
}
