// Package config loads and validates ocrbatch configuration.
//
// Settings come from an optional YAML file layered over Default(); command
// line flags are applied on top by the CLI before Validate is called.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gardar/ocrbatch/pkg/gdocai"
	"github.com/gardar/ocrbatch/pkg/ocr"
	"github.com/gardar/ocrbatch/pkg/pdfocr"
	"github.com/gardar/ocrbatch/pkg/pipeline"
	"github.com/gardar/ocrbatch/pkg/raster"
	"github.com/gardar/ocrbatch/pkg/retry"
)

//go:embed sample_config.yaml
var sampleConfig string

const (
	EngineTesseract  = "tesseract"
	EngineDocumentAI = "documentai"

	ModeRaster  = "raster"
	ModeOverlay = "overlay"
)

// Config holds every setting of a batch run.
type Config struct {
	OutputDir      string        `yaml:"output_dir"`
	Language       string        `yaml:"language"`
	Resolution     string        `yaml:"resolution"` // standard (300 DPI) or low (200 DPI)
	Workers        int           `yaml:"workers"`
	MaxAttempts    int           `yaml:"max_attempts"`
	Engine         string        `yaml:"engine"`
	Mode           string        `yaml:"mode"`
	Force          bool          `yaml:"force"`
	Debug          bool          `yaml:"debug"`
	LayerName      string        `yaml:"layer_name"`
	Pdftoppm       string        `yaml:"pdftoppm"`
	TessdataPrefix string        `yaml:"tessdata_prefix"`
	Sidecar        Sidecar       `yaml:"sidecar"`
	DocumentAI     gdocai.Config `yaml:"document_ai"`
	Log            Log           `yaml:"log"`
}

// Sidecar selects extra outputs written next to each document.
type Sidecar struct {
	Text bool `yaml:"text"`
	HOCR bool `yaml:"hocr"`
}

// Log configures the root logger.
type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // auto, text, json
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		OutputDir:   "ocr_output",
		Language:    string(ocr.DefaultLanguage),
		Resolution:  string(raster.ResolutionStandard),
		Workers:     pipeline.DefaultWorkers,
		MaxAttempts: retry.DefaultMaxAttempts,
		Engine:      EngineTesseract,
		Mode:        ModeRaster,
		LayerName:   pdfocr.DefaultLayerName,
		Pdftoppm:    raster.DefaultPopplerBinary,
		DocumentAI:  gdocai.Config{Location: "us"},
		Log:         Log{Level: "info", Format: "auto"},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
// The result is normalized but not validated; call Validate once flag
// overrides have been applied.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return nil, err
		}
		file, err := os.Open(expanded)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", expanded, err)
		}
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize trims values and expands paths.
func (c *Config) Normalize() error {
	c.Language = strings.TrimSpace(c.Language)
	c.Resolution = strings.ToLower(strings.TrimSpace(c.Resolution))
	c.Engine = strings.ToLower(strings.TrimSpace(c.Engine))
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))

	var err error
	if c.OutputDir, err = ExpandPath(c.OutputDir); err != nil {
		return err
	}
	if c.DocumentAI.CredentialsFile, err = ExpandPath(c.DocumentAI.CredentialsFile); err != nil {
		return err
	}
	if c.DocumentAI.DebugDir, err = ExpandPath(c.DocumentAI.DebugDir); err != nil {
		return err
	}
	return nil
}

// OCRLanguage returns the configured language. Valid after Validate.
func (c *Config) OCRLanguage() ocr.Language {
	lang, _ := ocr.ParseLanguage(c.Language)
	return lang
}

// RasterResolution returns the configured resolution. Valid after Validate.
func (c *Config) RasterResolution() raster.Resolution {
	res, _ := raster.ParseResolution(c.Resolution)
	return res
}

// ExpandPath resolves a leading ~ and makes the path absolute. Empty stays empty.
func ExpandPath(pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return "", nil
	}
	if pathValue == "~" || strings.HasPrefix(pathValue, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		pathValue = filepath.Join(home, strings.TrimPrefix(pathValue[1:], "/"))
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// CreateSample writes the annotated sample configuration to path. It does not
// overwrite an existing file.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create sample config: %w", err)
	}
	if _, err := f.WriteString(sampleConfig); err != nil {
		f.Close()
		return fmt.Errorf("write sample config: %w", err)
	}
	return f.Close()
}
