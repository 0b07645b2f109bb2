package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultPopplerBinary is the poppler-utils renderer looked up on PATH.
const DefaultPopplerBinary = "pdftoppm"

// Poppler renders pages by running pdftoppm once per page.
type Poppler struct {
	Binary  string // pdftoppm executable; DefaultPopplerBinary when empty
	TempDir string // Scratch directory for rendered files; os.TempDir() when empty
}

// NewPoppler returns a Poppler that runs the given binary.
func NewPoppler(binary string) *Poppler {
	return &Poppler{Binary: binary}
}

// Rasterize renders the 0-based pageIndex of the PDF at path to PNG.
func (p *Poppler) Rasterize(ctx context.Context, path string, pageIndex int, dpi int) (Image, error) {
	if pageIndex < 0 {
		return Image{}, fmt.Errorf("%w: page index %d out of range", ErrRasterization, pageIndex)
	}
	if dpi <= 0 {
		return Image{}, fmt.Errorf("%w: invalid dpi %d", ErrRasterization, dpi)
	}

	workDir, err := os.MkdirTemp(p.TempDir, "ocrbatch-raster-*")
	if err != nil {
		return Image{}, fmt.Errorf("%w: create scratch dir: %v", ErrRasterization, err)
	}
	defer os.RemoveAll(workDir)

	pageNum := strconv.Itoa(pageIndex + 1)
	prefix := filepath.Join(workDir, "page")
	cmd := exec.CommandContext(ctx, p.binary(),
		"-f", pageNum, "-l", pageNum,
		"-r", strconv.Itoa(dpi),
		"-png", "-singlefile",
		path, prefix,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return Image{}, fmt.Errorf("%w: page %d of %s: %s", ErrRasterization, pageIndex+1, path, msg)
	}

	data, err := os.ReadFile(prefix + ".png")
	if err != nil {
		// pdftoppm exits 0 without output when the page is past the end
		return Image{}, fmt.Errorf("%w: page %d of %s produced no image", ErrRasterization, pageIndex+1, path)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: decode page %d image: %v", ErrRasterization, pageIndex+1, err)
	}

	return Image{
		Source:    path,
		PageIndex: pageIndex,
		DPI:       dpi,
		Width:     cfg.Width,
		Height:    cfg.Height,
		PNG:       data,
	}, nil
}

func (p *Poppler) binary() string {
	if p == nil || strings.TrimSpace(p.Binary) == "" {
		return DefaultPopplerBinary
	}
	return p.Binary
}
