package gdocai

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"

	"github.com/gardar/ocrbatch/pkg/ocr"
	"github.com/gardar/ocrbatch/pkg/raster"
)

type fakeProcessor struct {
	doc    *documentaipb.Document
	err    error
	req    *documentaipb.ProcessRequest
	closed bool
}

func (f *fakeProcessor) ProcessDocument(_ context.Context, req *documentaipb.ProcessRequest, _ ...gax.CallOption) (*documentaipb.ProcessResponse, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &documentaipb.ProcessResponse{Document: f.doc}, nil
}

func (f *fakeProcessor) Close() error {
	f.closed = true
	return nil
}

func layout(start, end int64, x1, y1, x2, y2 float32) *documentaipb.Document_Page_Layout {
	return &documentaipb.Document_Page_Layout{
		TextAnchor: &documentaipb.Document_TextAnchor{
			TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{{StartIndex: start, EndIndex: end}},
		},
		Confidence: 0.9,
		BoundingPoly: &documentaipb.BoundingPoly{
			NormalizedVertices: []*documentaipb.NormalizedVertex{
				{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2},
			},
		},
	}
}

// sampleDocument holds "Hello world\nFooter\n": one block with one paragraph
// of one line, and a second line outside any paragraph.
func sampleDocument() *documentaipb.Document {
	return &documentaipb.Document{
		Text: "Hello world\nFooter\n",
		Pages: []*documentaipb.Document_Page{{
			PageNumber: 1,
			Dimension:  &documentaipb.Document_Page_Dimension{Width: 1000, Height: 500, Unit: "pixels"},
			DetectedLanguages: []*documentaipb.Document_Page_DetectedLanguage{
				{LanguageCode: "en", Confidence: 0.99},
			},
			Blocks:     []*documentaipb.Document_Page_Block{{Layout: layout(0, 12, 0.1, 0.1, 0.5, 0.2)}},
			Paragraphs: []*documentaipb.Document_Page_Paragraph{{Layout: layout(0, 12, 0.1, 0.1, 0.5, 0.2)}},
			Lines: []*documentaipb.Document_Page_Line{
				{Layout: layout(0, 12, 0.1, 0.1, 0.5, 0.2)},
				{Layout: layout(12, 19, 0.1, 0.9, 0.3, 0.95)},
			},
			Tokens: []*documentaipb.Document_Page_Token{
				{Layout: layout(0, 6, 0.1, 0.1, 0.25, 0.2)},
				{Layout: layout(6, 12, 0.3, 0.1, 0.5, 0.2)},
				{Layout: layout(12, 19, 0.1, 0.9, 0.3, 0.95)},
			},
		}},
	}
}

func TestCreateHOCRPage(t *testing.T) {
	doc := sampleDocument()
	page, err := CreateHOCRPage(doc.Pages[0], doc.Text, 1)
	if err != nil {
		t.Fatalf("CreateHOCRPage() error = %v", err)
	}
	if page.BBox.Width() != 1000 || page.BBox.Height() != 500 {
		t.Errorf("page bbox = %+v", page.BBox)
	}
	if page.Lang != "en" {
		t.Errorf("Lang = %q", page.Lang)
	}
	if len(page.Areas) != 1 || len(page.Areas[0].Paragraphs) != 1 {
		t.Fatalf("areas = %+v", page.Areas)
	}
	if len(page.Lines) != 1 {
		t.Errorf("direct lines = %d, want 1", len(page.Lines))
	}

	words := page.Words()
	if len(words) != 3 {
		t.Fatalf("words = %+v", words)
	}
	if words[0].Text != "Hello" || words[1].Text != "world" || words[2].Text != "Footer" {
		t.Errorf("word texts = %q %q %q", words[0].Text, words[1].Text, words[2].Text)
	}
	if got := words[1].BBox; got.X1 != 300 || got.Y1 != 50 || got.X2 != 500 || got.Y2 != 100 {
		t.Errorf("world bbox = %+v", got)
	}
	if words[0].Confidence < 89 || words[0].Confidence > 91 {
		t.Errorf("confidence = %v, want ~90", words[0].Confidence)
	}
	if got, want := page.Text(), "Hello world\n\nFooter\n"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestCreateHOCRPageNeedsDimension(t *testing.T) {
	if _, err := CreateHOCRPage(&documentaipb.Document_Page{}, "", 1); err == nil {
		t.Fatal("expected error for page without dimension")
	}
	if _, err := CreateHOCRPage(nil, "", 1); err == nil {
		t.Fatal("expected error for nil page")
	}
}

func TestEngineRecognize(t *testing.T) {
	fake := &fakeProcessor{doc: sampleDocument()}
	debugDir := t.TempDir()
	e := &Engine{
		cfg:    Config{ProjectID: "p", Location: "eu", ProcessorID: "x", DebugDir: debugDir},
		client: fake,
	}
	img := raster.Image{Source: "/in/scan.pdf", PageIndex: 2, PNG: []byte("png")}

	page, err := e.Recognize(context.Background(), img, ocr.German)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if len(page.Words()) != 3 {
		t.Errorf("words = %d, want 3", len(page.Words()))
	}

	if got := fake.req.GetName(); got != "projects/p/locations/eu/processors/x" {
		t.Errorf("processor name = %q", got)
	}
	if got := fake.req.GetRawDocument().GetMimeType(); got != "image/png" {
		t.Errorf("mime type = %q", got)
	}
	hints := fake.req.GetProcessOptions().GetOcrConfig().GetHints().GetLanguageHints()
	if len(hints) != 1 || hints[0] != "de" {
		t.Errorf("language hints = %v, want [de]", hints)
	}
	if _, err := os.Stat(filepath.Join(debugDir, "scan_page3.json")); err != nil {
		t.Errorf("debug dump missing: %v", err)
	}

	if err := e.Close(); err != nil || !fake.closed {
		t.Errorf("Close() = %v, closed = %v", err, fake.closed)
	}
}

func TestEngineRecognizeErrors(t *testing.T) {
	apiErr := errors.New("quota exceeded")
	twoPages := sampleDocument()
	twoPages.Pages = append(twoPages.Pages, twoPages.Pages[0])

	tests := []struct {
		name string
		fake *fakeProcessor
		png  []byte
	}{
		{"api error", &fakeProcessor{err: apiErr}, []byte("png")},
		{"empty response", &fakeProcessor{}, []byte("png")},
		{"two pages", &fakeProcessor{doc: twoPages}, []byte("png")},
		{"empty image", &fakeProcessor{doc: sampleDocument()}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Engine{cfg: Config{ProjectID: "p", Location: "us", ProcessorID: "x"}, client: tt.fake}
			if _, err := e.Recognize(context.Background(), raster.Image{PNG: tt.png}, ocr.English); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{ProjectID: "p", Location: "us", ProcessorID: "x"}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	for _, c := range []Config{
		{Location: "us", ProcessorID: "x"},
		{ProjectID: "p", ProcessorID: "x"},
		{ProjectID: "p", Location: "us"},
	} {
		if err := c.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", c)
		}
	}
}
