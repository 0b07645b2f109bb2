// ocrbatch converts batches of scanned PDFs into searchable PDFs.
//
// Every page is rendered to an image (poppler's pdftoppm), recognized with
// Tesseract or Google Document AI, and redrawn with an invisible text layer.
// Pages of one document are processed concurrently and retried on failure;
// pages that keep failing are left out, the rest of the document is kept.
//
// Usage:
//
//	ocrbatch run [flags] <file.pdf|directory>...
//	ocrbatch languages
//	ocrbatch config init [--path ocrbatch.yaml]
//	ocrbatch config validate
//
// Configuration:
//
// Settings are read from the YAML file given with --config and overridden by
// flags. Create an annotated starting point with 'ocrbatch config init'.
//
// Examples:
//
//	ocrbatch run -o searchable scans/
//	ocrbatch run -l deu --low-res --text invoice.pdf letter.pdf
//	ocrbatch run -c ocrbatch.yaml --engine documentai --mode overlay scans/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
