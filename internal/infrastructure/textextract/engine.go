// Package textextract turns stored documents into plain text. PDFs are
// read through their embedded text layer first; scanned PDFs and images
// go through pdftoppm and tesseract.
package textextract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/avezina/propdocs/internal/core/domain"
)

const (
	MethodPDFText  = "pdf-text"
	MethodPDFOCR   = "pdf-ocr"
	MethodImageOCR = "image-ocr"
)

type Config struct {
	Pdftoppm      string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 144
	PSM           int    // tesseract page segmentation mode, default 6
	MinTextChars  int    // text-layer yield below this triggers OCR, default 50
	MaxPages      int    // 0 = no limit
}

// Recorder counts extraction outcomes per method.
type Recorder interface {
	RecordTextExtraction(method string, pages int)
	RecordOCRPageFailure()
}

type Options struct {
	Runner   Runner
	Recorder Recorder
}

type Engine struct {
	cfg      Config
	runner   Runner
	logger   *slog.Logger
	recorder Recorder

	// injectable so tests can run without PDF fixtures
	pdfTextLayer func(path string) (string, int, error)
}

func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	return NewEngineWithOptions(cfg, logger, Options{})
}

func NewEngineWithOptions(cfg Config, logger *slog.Logger, options Options) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 144
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = 50
	}
	runner := options.Runner
	if runner == nil {
		runner = execRunner{logger: logger}
	}
	return &Engine{
		cfg:          cfg,
		runner:       runner,
		logger:       logger,
		recorder:     options.Recorder,
		pdfTextLayer: readPDFTextLayer,
	}
}

// Extract dispatches on the document's media kind. The document must be
// stored on the local filesystem: the OCR toolchain works on file paths.
func (e *Engine) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	switch doc.MediaKind {
	case domain.MediaPDF:
		return e.extractPDF(ctx, doc)
	case domain.MediaImage:
		return e.extractImage(ctx, doc)
	default:
		return "", domain.WrapError(domain.ErrUnsupportedMedia, "extract text", fmt.Errorf("media kind %q", doc.MediaKind))
	}
}

func (e *Engine) extractPDF(ctx context.Context, doc *domain.Document) (string, error) {
	text, pages, err := e.pdfTextLayer(doc.StoragePath)
	switch {
	case err != nil:
		e.logger.Warn("pdf text layer unreadable, falling back to ocr",
			"document_id", doc.ID, "error", err)
	case len(strings.TrimSpace(text)) >= e.cfg.MinTextChars:
		e.record(MethodPDFText, pages)
		e.logger.Debug("extracted pdf text layer",
			"document_id", doc.ID, "pages", pages, "chars", len(text))
		return text, nil
	default:
		e.logger.Info("pdf text layer too small, falling back to ocr",
			"document_id", doc.ID, "chars", len(strings.TrimSpace(text)))
	}

	ocrText, rendered, err := e.ocrPDF(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("ocr pdf %s: %w", doc.ID, err)
	}
	e.record(MethodPDFOCR, rendered)
	return ocrText, nil
}

func (e *Engine) extractImage(ctx context.Context, doc *domain.Document) (string, error) {
	text, err := e.tesseract(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("ocr image %s: %w", doc.ID, err)
	}
	e.record(MethodImageOCR, 1)
	return text, nil
}

func (e *Engine) ocrPDF(ctx context.Context, path string) (string, int, error) {
	tmpDir, err := os.MkdirTemp("", "propdocs-render-*")
	if err != nil {
		return "", 0, fmt.Errorf("create render dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("remove render dir", "path", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, stderr, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", strconv.Itoa(e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", 0, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(stderr), 512))
	}

	// rendered pages land as page-1.png, page-2.png, ...
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, fmt.Errorf("pdftoppm rendered no pages")
	}

	var b strings.Builder
	for _, img := range matches {
		pageText, err := e.tesseract(ctx, img)
		if err != nil {
			e.logger.Warn("ocr page failed", "image", filepath.Base(img), "error", err)
			if e.recorder != nil {
				e.recorder.RecordOCRPageFailure()
			}
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n")
		}
		b.WriteString(pageText)
	}
	return b.String(), len(matches), nil
}

func (e *Engine) tesseract(ctx context.Context, path string) (string, error) {
	// tesseract <file> stdout -l <lang> --psm <n>
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}

	out, stderr, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(stderr), 512))
	}
	return strings.TrimSpace(string(out)), nil
}

func (e *Engine) record(method string, pages int) {
	if e.recorder != nil {
		e.recorder.RecordTextExtraction(method, pages)
	}
}
