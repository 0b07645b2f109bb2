// Package raster renders single pages of a source document to images.
//
// Rendering is delegated to a native engine at a process boundary; this
// package only defines the contract, the resolution presets and the poppler
// (pdftoppm) implementation.
package raster

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrRasterization marks a page that could not be rendered. Callers treat it
// as retryable.
var ErrRasterization = errors.New("rasterization failed")

// Resolution is a rendering preset.
type Resolution string

const (
	ResolutionStandard Resolution = "standard"
	ResolutionLow      Resolution = "low"
)

// DPI returns the dots-per-inch a preset renders at.
func (r Resolution) DPI() int {
	if r == ResolutionLow {
		return 200
	}
	return 300
}

// ParseResolution accepts "standard" or "low" (case-insensitive).
func ParseResolution(s string) (Resolution, error) {
	switch Resolution(strings.ToLower(strings.TrimSpace(s))) {
	case ResolutionStandard, "":
		return ResolutionStandard, nil
	case ResolutionLow:
		return ResolutionLow, nil
	}
	return "", fmt.Errorf("unknown resolution %q (want standard or low)", s)
}

// Image is one rendered page.
type Image struct {
	Source    string // Path of the document the page came from
	PageIndex int    // 0-based page index
	DPI       int
	Width     int    // Pixels
	Height    int    // Pixels
	PNG       []byte // Encoded image
}

// WidthPt and HeightPt give the page size in PDF points.
func (img Image) WidthPt() float64 { return pixelsToPoints(img.Width, img.DPI) }

func (img Image) HeightPt() float64 { return pixelsToPoints(img.Height, img.DPI) }

func pixelsToPoints(px, dpi int) float64 {
	if dpi <= 0 {
		return float64(px)
	}
	return float64(px) * 72 / float64(dpi)
}

// Rasterizer renders one page of a document.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string, pageIndex int, dpi int) (Image, error)
}
