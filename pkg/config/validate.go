package config

import (
	"errors"
	"fmt"

	"github.com/gardar/ocrbatch/pkg/ocr"
	"github.com/gardar/ocrbatch/pkg/raster"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output_dir must be set")
	}
	if _, err := ocr.ParseLanguage(c.Language); err != nil {
		return fmt.Errorf("language: %w", err)
	}
	if _, err := raster.ParseResolution(c.Resolution); err != nil {
		return fmt.Errorf("resolution: %w", err)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	switch c.Engine {
	case EngineTesseract:
	case EngineDocumentAI:
		if err := c.DocumentAI.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("engine must be %q or %q, got %q", EngineTesseract, EngineDocumentAI, c.Engine)
	}
	if c.Mode != ModeRaster && c.Mode != ModeOverlay {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeRaster, ModeOverlay, c.Mode)
	}
	if c.LayerName == "" {
		return errors.New("layer_name must not be empty")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("log.format must be auto, text or json, got %q", c.Log.Format)
	}
	return nil
}
