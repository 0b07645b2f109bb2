package gdocai

import (
	"context"
	"fmt"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"github.com/gardar/ocrbatch/pkg/ocr"
)

// processor is the part of the Document AI client the engine uses.
type processor interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
	Close() error
}

func newClient(ctx context.Context, cfg Config, opts ...option.ClientOption) (processor, error) {
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)
	clientOpts := []option.ClientOption{option.WithEndpoint(endpoint)}
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}
	return client, nil
}

// process sends one PNG page to the processor and returns the raw Document.
func (e *Engine) process(ctx context.Context, png []byte, lang ocr.Language) (*documentaipb.Document, error) {
	req := &documentaipb.ProcessRequest{
		Name: e.cfg.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  png,
				MimeType: "image/png",
			},
		},
		SkipHumanReview: true,
	}
	if hint := lang.ISO(); hint != "" {
		req.ProcessOptions = &documentaipb.ProcessOptions{
			OcrConfig: &documentaipb.OcrConfig{
				Hints: &documentaipb.OcrConfig_Hints{LanguageHints: []string{hint}},
			},
		}
	}

	resp, err := e.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}
	if resp.GetDocument() == nil {
		return nil, fmt.Errorf("empty response from Document AI")
	}
	return resp.GetDocument(), nil
}
