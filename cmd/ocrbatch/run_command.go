package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/gardar/ocrbatch/pkg/config"
	"github.com/gardar/ocrbatch/pkg/gdocai"
	"github.com/gardar/ocrbatch/pkg/ocr"
	"github.com/gardar/ocrbatch/pkg/pipeline"
	"github.com/gardar/ocrbatch/pkg/raster"
	"github.com/gardar/ocrbatch/pkg/tesseract"
)

var errDocumentsFailed = errors.New("some documents failed")

type runFlags struct {
	output    string
	language  string
	lowRes    bool
	workers   int
	attempts  int
	engine    string
	mode      string
	force     bool
	debug     bool
	text      bool
	hocr      bool
	logLevel  string
	logFormat string
}

func newRunCommand(load func() (*config.Config, error)) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [flags] <file.pdf|directory>...",
		Short: "Make PDFs searchable",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			paths, err := expandInputs(args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBatch(ctx, cfg, paths, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "Output directory")
	f.StringVarP(&flags.language, "language", "l", "", "Recognition language (eng, deu, fra, spa, ita)")
	f.BoolVar(&flags.lowRes, "low-res", false, "Render pages at 200 DPI instead of 300")
	f.IntVarP(&flags.workers, "workers", "w", 0, "Pages processed concurrently per document")
	f.IntVar(&flags.attempts, "attempts", 0, "Attempts per page before it is skipped")
	f.StringVar(&flags.engine, "engine", "", "OCR engine (tesseract, documentai)")
	f.StringVar(&flags.mode, "mode", "", "Output mode (raster, overlay)")
	f.BoolVar(&flags.force, "force", false, "Process documents that already have an OCR layer")
	f.BoolVar(&flags.debug, "debug", false, "Draw the recognized text visibly")
	f.BoolVar(&flags.text, "text", false, "Write a plain text sidecar per document")
	f.BoolVar(&flags.hocr, "hocr", false, "Write an hOCR sidecar per document")
	f.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	f.StringVar(&flags.logFormat, "log-format", "", "Log format (auto, text, json)")
	return cmd
}

// apply overrides cfg with the flags that were set on the command line.
func (f runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if changed("output") {
		cfg.OutputDir = f.output
	}
	if changed("language") {
		cfg.Language = f.language
	}
	if changed("low-res") {
		cfg.Resolution = string(raster.ResolutionStandard)
		if f.lowRes {
			cfg.Resolution = string(raster.ResolutionLow)
		}
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("attempts") {
		cfg.MaxAttempts = f.attempts
	}
	if changed("engine") {
		cfg.Engine = f.engine
	}
	if changed("mode") {
		cfg.Mode = f.mode
	}
	if changed("force") {
		cfg.Force = f.force
	}
	if changed("debug") {
		cfg.Debug = f.debug
	}
	if changed("text") {
		cfg.Sidecar.Text = f.text
	}
	if changed("hocr") {
		cfg.Sidecar.HOCR = f.hocr
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	return cfg.Normalize()
}

func runBatch(ctx context.Context, cfg *config.Config, paths []string, stdout, stderr io.Writer) error {
	showProgress := isTerminal(stderr) && cfg.Log.Level != "debug"
	logCfg := cfg.Log
	if showProgress {
		logCfg = progressLogConfig(logCfg)
	}
	logger, err := newLogger(stderr, logCfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	unlock, err := lockOutputDir(cfg.OutputDir)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := exec.LookPath(cfg.Pdftoppm); err != nil {
		return fmt.Errorf("pdftoppm not found (install poppler-utils): %w", err)
	}

	engine, closeEngine, err := newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeEngine()

	recognizer := ocr.NewSearchable(engine)
	recognizer.Render.Debug = cfg.Debug
	recognizer.Render.LayerName = cfg.LayerName
	recognizer.Overlay = cfg.Mode == config.ModeOverlay

	opts := pipeline.Options{
		OutputDir:   cfg.OutputDir,
		Language:    cfg.OCRLanguage(),
		Resolution:  cfg.RasterResolution(),
		Workers:     cfg.Workers,
		MaxAttempts: cfg.MaxAttempts,
		Force:       cfg.Force,
		LayerName:   cfg.LayerName,
		Sidecars:    pipeline.Sidecars{Text: cfg.Sidecar.Text, HOCR: cfg.Sidecar.HOCR},
	}
	var bar *progressbar.ProgressBar
	if showProgress {
		bar = newProgressBar(stderr, len(paths))
		opts.OnProgress = func(completed, total int) { _ = bar.Set(completed) }
		opts.OnPage = func(source string, done, total int) {
			bar.Describe(fmt.Sprintf("%s %d/%d", filepath.Base(source), done, total))
		}
	}

	logger.Info("starting batch",
		"documents", len(paths),
		"engine", engine.Name(),
		"language", string(opts.Language),
		"dpi", opts.Resolution.DPI(),
		"output_dir", cfg.OutputDir)

	batch := &pipeline.Batch{
		Rasterizer: raster.NewPoppler(cfg.Pdftoppm),
		Recognizer: recognizer,
		Options:    opts,
		Logger:     logger,
	}
	outcome, err := batch.Run(ctx, paths)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	fmt.Fprint(stdout, renderSummary(outcome))
	if err := ctx.Err(); err != nil {
		return err
	}
	if outcome.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", errDocumentsFailed, outcome.Failed, len(paths))
	}
	return nil
}

// newEngine builds the configured OCR engine and a function releasing it.
func newEngine(ctx context.Context, cfg *config.Config) (ocr.Engine, func(), error) {
	switch cfg.Engine {
	case config.EngineDocumentAI:
		engine, err := gdocai.NewEngine(ctx, cfg.DocumentAI)
		if err != nil {
			return nil, nil, err
		}
		return engine, func() { _ = engine.Close() }, nil
	default:
		engine := tesseract.New()
		engine.TessdataPrefix = cfg.TessdataPrefix
		return engine, func() {}, nil
	}
}

// progressLogConfig keeps info lines from breaking up the progress bar,
// which shares the terminal with the log.
func progressLogConfig(cfg config.Log) config.Log {
	if cfg.Level == "" || cfg.Level == "info" {
		cfg.Level = "warn"
	}
	return cfg
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("documents"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
}
