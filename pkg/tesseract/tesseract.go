// Package tesseract is the local OCR engine, running libtesseract through
// gosseract. It needs the tesseract shared library and the traineddata files
// of every language used.
package tesseract

import (
	"context"
	"fmt"
	"strconv"

	"github.com/otiai10/gosseract/v2"

	"github.com/gardar/ocrbatch/pkg/hocr"
	"github.com/gardar/ocrbatch/pkg/ocr"
	"github.com/gardar/ocrbatch/pkg/raster"
)

// Engine implements ocr.Engine. A gosseract client is not safe for concurrent
// use, so every call gets its own.
type Engine struct {
	TessdataPrefix string // Models directory; TESSDATA_PREFIX when empty
	clientFactory  func() *gosseract.Client
}

// New returns an Engine using the default tessdata location.
func New() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize runs Tesseract on the page image and parses its hOCR output.
func (e *Engine) Recognize(ctx context.Context, img raster.Image, lang ocr.Language) (hocr.Page, error) {
	if err := ctx.Err(); err != nil {
		return hocr.Page{}, err
	}
	if len(img.PNG) == 0 {
		return hocr.Page{}, fmt.Errorf("empty image")
	}

	newClient := e.clientFactory
	if newClient == nil {
		newClient = gosseract.NewClient
	}
	c := newClient()
	defer c.Close()

	if e.TessdataPrefix != "" {
		if err := c.SetTessdataPrefix(e.TessdataPrefix); err != nil {
			return hocr.Page{}, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := c.SetImageFromBytes(img.PNG); err != nil {
		return hocr.Page{}, fmt.Errorf("set image: %w", err)
	}
	if lang == "" {
		lang = ocr.DefaultLanguage
	}
	if err := c.SetLanguage(string(lang)); err != nil {
		return hocr.Page{}, fmt.Errorf("set language: %w", err)
	}
	if img.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(img.DPI)); err != nil {
			return hocr.Page{}, fmt.Errorf("set dpi: %w", err)
		}
	}

	out, err := c.HOCRText()
	if err != nil {
		return hocr.Page{}, fmt.Errorf("recognize page %d: %w", img.PageIndex+1, err)
	}
	page, err := hocr.ParsePage([]byte(out))
	if err != nil {
		return hocr.Page{}, fmt.Errorf("parse tesseract hOCR: %w", err)
	}
	return page, nil
}

// AvailableLanguages lists the traineddata installed in the default
// tessdata directory.
func AvailableLanguages() ([]string, error) {
	return gosseract.GetAvailableLanguages()
}
