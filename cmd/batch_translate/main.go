// Batch translate PDFs: extract body text with GROBID, translate it, write outputs
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"paper-translator/internal/config"
	"paper-translator/internal/grobid"
	"paper-translator/internal/logger"
	"paper-translator/internal/pdf"
	"paper-translator/internal/pipeline"
	"paper-translator/internal/render"
	"paper-translator/internal/results"
	"paper-translator/internal/translator"
	"paper-translator/internal/types"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitFatal  = 2
)

func main() {
	app := &cli.App{
		Name:  "batch_translate",
		Usage: "extract body text from every PDF in a directory and translate it",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "directory holding the input PDFs (default $" + config.EnvInputDir + ")"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output root directory (default $" + config.EnvOutputDir + ")"},
			&cli.IntFlag{Name: "chunk-max", Usage: "maximum characters per translation request"},
			&cli.BoolFlag{Name: "refresh-markup", Usage: "ask GROBID again even when stored markup exists"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFatal)
	}
}

func run(c *cli.Context) error {
	config.LoadDotEnv()
	cfg := config.FromEnv()
	applyFlags(c, cfg)

	if err := logger.Init(&logger.Config{
		LogFilePath: cfg.LogFile,
		MaxFileSize: 10 * 1024 * 1024,
		MaxBackups:  5,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Console:     os.Stderr,
	}); err != nil {
		return cli.Exit(fmt.Sprintf("failed to initialize logger: %v", err), exitFatal)
	}
	defer logger.Close()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", err)
		return cli.Exit(err.Error(), exitFatal)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := build(ctx, cfg)
	if err != nil {
		logger.Error("failed to set up pipeline", err)
		return cli.Exit(err.Error(), exitFatal)
	}

	report, err := p.Run(ctx)
	if report != nil {
		printSummary(report)
	}
	code := exitCode(report, err)
	if code == exitFatal {
		logger.Error("run aborted", err)
		return cli.Exit(err.Error(), code)
	}
	if code != exitOK {
		return cli.Exit("", code)
	}
	return nil
}

// applyFlags lets explicitly set flags override the environment.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("input") {
		cfg.InputDir = c.String("input")
	}
	if c.IsSet("output") {
		cfg.OutputDir = c.String("output")
	}
	if c.IsSet("chunk-max") {
		cfg.ChunkMaxChars = c.Int("chunk-max")
	}
	if c.IsSet("refresh-markup") {
		cfg.RefreshMarkup = c.Bool("refresh-markup")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
}

func build(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, error) {
	tr, err := translator.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	extractor := grobid.NewClient(grobid.Config{
		URL:         cfg.GrobidURL,
		Timeout:     cfg.GrobidTimeout,
		Consolidate: cfg.GrobidConsolidate,
	})
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if !extractor.IsAlive(probeCtx) {
		logger.Warn("GROBID is not answering; documents will fail at the extract stage", logger.String("url", cfg.GrobidURL))
	}

	pc := pipeline.Config{
		InputDir:      cfg.InputDir,
		OutputDir:     cfg.OutputDir,
		ChunkMaxChars: cfg.ChunkMaxChars,
		RefreshMarkup: cfg.RefreshMarkup,
		Extractor:     extractor,
		Translator:    tr,
		Inspector:     pdf.NewInspector(pdf.DefaultProbePages),
	}
	if cfg.RenderEnabled() {
		pc.Renderer = render.NewRenderer(cfg.RenderFontPath)
	}
	return pipeline.New(pc)
}

func printSummary(report *results.Report) {
	fmt.Println(report.Summary.String())
	for _, d := range report.Failed() {
		fmt.Printf("  failed: %s [%s] %s\n", d.Name, d.Stage, d.Error)
	}
}

// exitCode maps a run outcome to the process exit status.
func exitCode(report *results.Report, err error) int {
	if err != nil && !pipeline.IsInterrupted(err) {
		if types.CodeOf(err).IsFatal() || report == nil {
			return exitFatal
		}
	}
	if err != nil || (report != nil && report.HasFailures()) {
		return exitFailed
	}
	return exitOK
}
