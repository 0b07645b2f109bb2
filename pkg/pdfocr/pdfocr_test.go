package pdfocr

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/gardar/ocrbatch/pkg/hocr"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testPage() hocr.Page {
	return hocr.Page{
		BBox: hocr.NewBoundingBox(0, 0, 850, 1100),
		Lines: []hocr.Line{{
			BBox: hocr.NewBoundingBox(100, 100, 500, 140),
			Words: []hocr.Word{
				{Text: "Searchable", BBox: hocr.NewBoundingBox(100, 100, 300, 140)},
				{Text: "Straße", BBox: hocr.NewBoundingBox(320, 100, 500, 140)},
			},
		}},
	}
}

func TestRenderPage(t *testing.T) {
	img := Image{Data: testPNG(t, 85, 110), WidthPt: 612, HeightPt: 792}
	for _, debug := range []bool{false, true} {
		cfg := DefaultConfig()
		cfg.Debug = debug
		out, err := RenderPage(testPage(), img, 3, cfg)
		if err != nil {
			t.Fatalf("RenderPage(debug=%v) error = %v", debug, err)
		}
		if !bytes.HasPrefix(out, []byte("%PDF-")) {
			t.Fatalf("output is not a PDF: %q", out[:min(len(out), 16)])
		}

		res, err := DetectOCR(out, cfg)
		if err != nil {
			t.Fatalf("DetectOCR() error = %v", err)
		}
		if !res.HasOCR || res.LayerInfo.OCRLayerName != "OCR Text (Page 3)" {
			t.Errorf("DetectOCR() = %+v, want layer 'OCR Text (Page 3)'", res)
		}
	}
}

func TestRenderPageFallsBackToHOCRSize(t *testing.T) {
	out, err := RenderPage(testPage(), Image{Data: testPNG(t, 10, 10)}, 1, OCRConfig{})
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
}

func TestRenderPageErrors(t *testing.T) {
	tests := []struct {
		name string
		page hocr.Page
		img  Image
	}{
		{"empty image", testPage(), Image{WidthPt: 10, HeightPt: 10}},
		{"not an image", testPage(), Image{Data: []byte("GIF? no"), WidthPt: 10, HeightPt: 10}},
		{"no size", hocr.Page{}, Image{Data: testPNG(t, 2, 2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RenderPage(tt.page, tt.img, 1, DefaultConfig()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestOverlayPage(t *testing.T) {
	src, err := RenderPage(hocr.Page{BBox: hocr.NewBoundingBox(0, 0, 85, 110)},
		Image{Data: testPNG(t, 85, 110), WidthPt: 612, HeightPt: 792}, 1, OCRConfig{LayerName: "Scan"})
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}

	out, err := OverlayPage(src, 1, testPage(), 612, 792, DefaultConfig())
	if err != nil {
		t.Fatalf("OverlayPage() error = %v", err)
	}
	res, err := DetectOCR(out, DefaultConfig())
	if err != nil {
		t.Fatalf("DetectOCR() error = %v", err)
	}
	if !res.HasOCR {
		t.Errorf("overlay output has no OCR layer: %+v", res.LayerInfo)
	}
}

func TestOverlayPageValidation(t *testing.T) {
	if _, err := OverlayPage(nil, 1, testPage(), 10, 10, DefaultConfig()); err == nil {
		t.Error("expected error for empty source")
	}
	if _, err := OverlayPage([]byte("%PDF-1.4"), 0, testPage(), 10, 10, DefaultConfig()); err == nil {
		t.Error("expected error for page 0")
	}
	if _, err := OverlayPage([]byte("%PDF-1.4"), 1, testPage(), 0, 10, DefaultConfig()); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestReplaceUnencodable(t *testing.T) {
	if got := replaceUnencodable("naïve 東京"); got != "na\xefve ??" {
		t.Errorf("replaceUnencodable() = %q", got)
	}
	if !strings.Contains(replaceUnencodable("abc"), "abc") {
		t.Error("ascii should pass through")
	}
}
