package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Merger concatenates one-page PDFs, in the order given, into w.
type Merger interface {
	Merge(pages [][]byte, w io.Writer) error
}

// PageCounter opens a source document and reports its page count.
type PageCounter interface {
	PageCount(path string) (int, error)
}

func relaxedConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PDFMerger merges pages with pdfcpu.
type PDFMerger struct {
	Conf *model.Configuration // Relaxed validation when nil
}

func (m PDFMerger) Merge(pages [][]byte, w io.Writer) error {
	if len(pages) == 0 {
		return fmt.Errorf("no pages to merge")
	}
	conf := m.Conf
	if conf == nil {
		conf = relaxedConfig()
	}
	if len(pages) == 1 {
		// A single page is already a complete document.
		_, err := w.Write(pages[0])
		return err
	}
	rsc := make([]io.ReadSeeker, len(pages))
	for i, p := range pages {
		rsc[i] = bytes.NewReader(p)
	}
	if err := api.MergeRaw(rsc, w, false, conf); err != nil {
		return fmt.Errorf("pdfcpu merge: %w", err)
	}
	return nil
}

// PDFCounter counts pages with pdfcpu.
type PDFCounter struct {
	Conf *model.Configuration // Relaxed validation when nil
}

func (c PDFCounter) PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	conf := c.Conf
	if conf == nil {
		conf = relaxedConfig()
	}
	n, err := api.PageCount(f, conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu: %w", err)
	}
	return n, nil
}
