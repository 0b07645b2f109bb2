package gdocai

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/gardar/ocrbatch/pkg/raster"
)

// writeDebug dumps the raw API response for one page as
// <dir>/<source name>_page<N>.json.
func writeDebug(dir string, img raster.Image, doc *documentaipb.Document) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create debug directory: %w", err)
	}
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal API response: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(img.Source), filepath.Ext(img.Source))
	name := fmt.Sprintf("%s_page%d.json", base, img.PageIndex+1)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write API response: %w", err)
	}
	return nil
}
