// Package pipeline runs the batch: discover, extract, parse, chunk, translate
// and write, one document at a time.
package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"paper-translator/internal/chunker"
	"paper-translator/internal/document"
	"paper-translator/internal/failures"
	"paper-translator/internal/logger"
	"paper-translator/internal/pdf"
	"paper-translator/internal/render"
	"paper-translator/internal/results"
	"paper-translator/internal/storage"
	"paper-translator/internal/tei"
	"paper-translator/internal/translator"
	"paper-translator/internal/types"
)

// Extractor turns a PDF into TEI markup.
type Extractor interface {
	ProcessFulltext(ctx context.Context, filename string, pdf io.Reader) ([]byte, error)
}

// Inspector reads basic facts about a PDF.
type Inspector interface {
	Inspect(path string) (*pdf.PDFInfo, error)
}

// Renderer lays out translated content as a PDF.
type Renderer interface {
	Render(c *render.Content) ([]byte, error)
}

// Config wires a Pipeline. Inspector and Renderer are optional.
type Config struct {
	InputDir      string
	OutputDir     string
	ChunkMaxChars int
	RefreshMarkup bool

	Extractor  Extractor
	Translator translator.Translator
	Inspector  Inspector
	Renderer   Renderer
}

// Pipeline processes every PDF of an input directory.
type Pipeline struct {
	cfg    Config
	layout *document.Layout
	ledger *failures.Ledger
}

// New validates cfg and creates a Pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Extractor == nil || cfg.Translator == nil {
		return nil, types.NewAppError(types.ErrConfig, "pipeline needs an extractor and a translator", nil)
	}
	if cfg.ChunkMaxChars <= 0 {
		cfg.ChunkMaxChars = chunker.DefaultMaxChars
	}
	return &Pipeline{
		cfg:    cfg,
		layout: document.NewLayout(cfg.OutputDir),
	}, nil
}

// failure is a per-document error tagged with the stage it happened in.
type failure struct {
	stage failures.Stage
	err   error
}

func fail(stage failures.Stage, err error) *failure {
	return &failure{stage: stage, err: err}
}

// Run processes all documents. Only filesystem and configuration problems
// abort the run; per-document failures are recorded in the report and the
// failure ledger. When ctx is cancelled the remaining documents are not
// started and ctx's error is returned along with the partial report.
func (p *Pipeline) Run(ctx context.Context) (*results.Report, error) {
	docs, err := document.Discover(p.cfg.InputDir)
	if err != nil {
		return nil, err
	}
	if err := p.layout.Ensure(); err != nil {
		return nil, err
	}
	ledger, err := failures.NewLedger(p.layout.LedgerPath())
	if err != nil {
		return nil, err
	}
	p.ledger = ledger

	report := results.NewReport(p.cfg.InputDir, p.cfg.OutputDir)
	logger.Info("run started",
		logger.String("runId", report.RunID),
		logger.String("input", p.cfg.InputDir),
		logger.String("output", p.cfg.OutputDir),
		logger.Int("documents", len(docs)))

	for i, doc := range docs {
		if ctx.Err() != nil {
			logger.Warn("run interrupted", logger.Int("notStarted", len(docs)-i))
			break
		}
		result := p.processDocument(ctx, doc)
		report.Add(result)
		p.track(result)
	}

	report.Finish()
	if err := report.Save(p.layout.ReportPath()); err != nil {
		logger.Error("failed to save run report", err, logger.String("path", p.layout.ReportPath()))
	}
	logger.Info("run finished",
		logger.String("runId", report.RunID),
		logger.String("summary", report.Summary.String()),
		logger.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)))

	return report, ctx.Err()
}

// track prints the per-document status line and updates the ledger.
func (p *Pipeline) track(r results.DocumentResult) {
	switch r.Status {
	case results.StatusSkipped:
		logger.Info("skipped", logger.String("file", r.Name), logger.String("reason", "translated output exists"))
	case results.StatusProcessed:
		logger.Info("processed", logger.String("file", r.Name),
			logger.Int("chunks", r.Chunks), logger.Duration("elapsed", r.Duration))
		if err := p.ledger.Resolve(r.Name); err != nil {
			logger.Warn("failed to update failure ledger", logger.Err(err))
		}
	case results.StatusFailed:
		logger.Warn("failed", logger.String("file", r.Name),
			logger.String("stage", string(r.Stage)), logger.String("error", r.Error))
	}
}

func (p *Pipeline) processDocument(ctx context.Context, doc document.Document) results.DocumentResult {
	start := time.Now()
	result := results.DocumentResult{Name: doc.Name}

	// An existing final output means the document is done.
	if p.layout.Done(doc) {
		result.Status = results.StatusSkipped
		return result
	}

	result.Pages = p.inspect(doc)

	chunks, f := p.translateDocument(ctx, doc)
	result.Duration = time.Since(start)
	if f != nil {
		result.Status = results.StatusFailed
		result.Stage = f.stage
		result.Error = f.err.Error()
		if types.HasCode(f.err, types.ErrTranslationQuota) {
			logger.Warn("translation quota exhausted; remaining documents will fail until it resets")
		}
		if err := p.ledger.Record(doc.Name, f.stage, f.err); err != nil {
			logger.Warn("failed to update failure ledger", logger.Err(err))
		}
		return result
	}

	result.Status = results.StatusProcessed
	result.Chunks = chunks
	return result
}

// inspect logs what the PDF looks like. It never fails the document.
func (p *Pipeline) inspect(doc document.Document) int {
	if p.cfg.Inspector == nil {
		return 0
	}
	info, err := p.cfg.Inspector.Inspect(doc.Path)
	if err != nil {
		logger.Warn("could not inspect PDF", logger.String("file", doc.Name), logger.Err(err))
		return 0
	}
	if !info.HasTextLayer {
		logger.Warn("PDF has no text layer; body text may be empty", logger.String("file", doc.Name))
	}
	logger.Debug("inspected PDF",
		logger.String("file", doc.Name),
		logger.Int("pages", info.PageCount),
		logger.Int64("bytes", info.FileSize))
	return info.PageCount
}

// translateDocument runs every stage after the skip check and returns the
// number of translated chunks.
func (p *Pipeline) translateDocument(ctx context.Context, doc document.Document) (int, *failure) {
	markup, f := p.markup(ctx, doc)
	if f != nil {
		return 0, f
	}

	parsed, err := tei.Parse(markup)
	if err != nil {
		// Drop the stored markup so the next run asks the service again.
		if rmErr := storage.Remove(p.layout.MarkupPath(doc)); rmErr != nil {
			logger.Warn("failed to remove markup", logger.Err(rmErr))
		}
		return 0, fail(failures.StageParse, err)
	}

	plain := parsed.PlainText()
	if err := storage.WriteFileAtomic(p.layout.TextPath(doc), []byte(plain)); err != nil {
		return 0, fail(failures.StageWrite, types.NewAppError(types.ErrFilesystem, "failed to write extracted text", err))
	}

	chunks := chunker.Split(plain, p.cfg.ChunkMaxChars)
	logger.Debug("text chunked",
		logger.String("file", doc.Name),
		logger.Int("paragraphs", len(parsed.Paragraphs)),
		logger.Int("chunks", len(chunks)))

	translated, err := translator.TranslateChunks(ctx, p.cfg.Translator, chunks)
	if err != nil {
		return 0, fail(failures.StageTranslate, err)
	}
	output := chunker.Join(translated)

	if p.cfg.Renderer != nil {
		if f := p.render(ctx, doc, parsed, output); f != nil {
			return 0, f
		}
	}

	// Written last: its existence is the skip signal.
	if err := storage.WriteFileAtomic(p.layout.OutputPath(doc), []byte(output)); err != nil {
		return 0, fail(failures.StageWrite, types.NewAppError(types.ErrFilesystem, "failed to write translated text", err))
	}
	return len(chunks), nil
}

// markup returns the stored TEI for doc, or asks the service and stores it.
func (p *Pipeline) markup(ctx context.Context, doc document.Document) ([]byte, *failure) {
	path := p.layout.MarkupPath(doc)

	if !p.cfg.RefreshMarkup && storage.Exists(path) {
		data, err := storage.ReadFile(path)
		if err == nil {
			logger.Debug("reusing stored markup", logger.String("file", doc.Name))
			return data, nil
		}
		logger.Warn("stored markup unreadable; extracting again", logger.String("file", doc.Name), logger.Err(err))
	}

	f, err := os.Open(doc.Path)
	if err != nil {
		return nil, fail(failures.StageExtract, types.NewAppError(types.ErrFilesystem, "failed to open PDF", err))
	}
	defer f.Close()

	markup, err := p.cfg.Extractor.ProcessFulltext(ctx, doc.Name, f)
	if err != nil {
		return nil, fail(failures.StageExtract, err)
	}
	if err := storage.WriteFileAtomic(path, markup); err != nil {
		return nil, fail(failures.StageWrite, types.NewAppError(types.ErrFilesystem, "failed to write markup", err))
	}
	return markup, nil
}

// render translates the title and writes the translated PDF.
func (p *Pipeline) render(ctx context.Context, doc document.Document, parsed *tei.Document, output string) *failure {
	content := &render.Content{
		OriginalTitle: parsed.Title,
		Paragraphs:    strings.Split(output, chunker.Separator),
		References:    parsed.References,
	}
	if parsed.Title != "" {
		title, err := translator.TranslateChunks(ctx, p.cfg.Translator, []string{parsed.Title})
		if err != nil {
			return fail(failures.StageTranslate, err)
		}
		content.Title = title[0]
	}

	data, err := p.cfg.Renderer.Render(content)
	if err != nil {
		if !types.IsCode(err, types.ErrRender) {
			err = types.NewAppError(types.ErrRender, "failed to render PDF", err)
		}
		return fail(failures.StageRender, err)
	}
	if err := storage.WriteFileAtomic(p.layout.RenderPath(doc), data); err != nil {
		return fail(failures.StageRender, types.NewAppError(types.ErrRender, "failed to write rendered PDF", err))
	}
	return nil
}

// IsInterrupted reports whether err comes from a cancelled run.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
