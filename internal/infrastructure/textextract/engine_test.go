package textextract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/avezina/propdocs/internal/core/domain"
)

type runnerStub struct {
	t        *testing.T
	calls    []string
	lastArgs map[string][]string
	pages    int
	failOCR  bool
}

func (r *runnerStub) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.calls = append(r.calls, name)
	if r.lastArgs == nil {
		r.lastArgs = map[string][]string{}
	}
	r.lastArgs[name] = args

	switch name {
	case "pdftoppm":
		prefix := args[len(args)-1]
		for i := 1; i <= r.pages; i++ {
			if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i), []byte("png"), 0o644); err != nil {
				r.t.Errorf("write fake page: %v", err)
			}
		}
		return nil, nil, nil
	case "tesseract":
		if r.failOCR {
			return nil, []byte("no text found"), errors.New("exit status 1")
		}
		return []byte("text of " + filepath.Base(args[0]) + "\n"), nil, nil
	default:
		return nil, nil, fmt.Errorf("unexpected command %s", name)
	}
}

func (r *runnerStub) countCalls(name string) int {
	n := 0
	for _, c := range r.calls {
		if c == name {
			n++
		}
	}
	return n
}

type recorderStub struct {
	method       string
	pages        int
	pageFailures int
}

func (r *recorderStub) RecordTextExtraction(method string, pages int) {
	r.method = method
	r.pages = pages
}

func (r *recorderStub) RecordOCRPageFailure() {
	r.pageFailures++
}

func newTestEngine(t *testing.T, runner *runnerStub, recorder *recorderStub) *Engine {
	t.Helper()
	opts := Options{Runner: runner}
	if recorder != nil {
		opts.Recorder = recorder
	}
	return NewEngineWithOptions(Config{}, slog.New(slog.DiscardHandler), opts)
}

func TestExtractUsesTextLayerWhenSufficient(t *testing.T) {
	runner := &runnerStub{t: t}
	recorder := &recorderStub{}
	engine := newTestEngine(t, runner, recorder)
	engine.pdfTextLayer = func(string) (string, int, error) {
		return strings.Repeat("invoice text layer ", 5), 2, nil
	}

	doc := &domain.Document{ID: "doc-1", MediaKind: domain.MediaPDF, StoragePath: "/data/doc-1.pdf"}
	text, err := engine.Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(text, "invoice text layer") {
		t.Fatalf("unexpected text %q", text)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("text layer hit must not shell out, got %v", runner.calls)
	}
	if recorder.method != MethodPDFText {
		t.Fatalf("recorded method = %q, want %q", recorder.method, MethodPDFText)
	}
}

func TestExtractFallsBackToOCRWhenTextLayerThin(t *testing.T) {
	runner := &runnerStub{t: t, pages: 2}
	recorder := &recorderStub{}
	engine := newTestEngine(t, runner, recorder)
	engine.pdfTextLayer = func(string) (string, int, error) { return "short", 1, nil }

	doc := &domain.Document{ID: "doc-2", MediaKind: domain.MediaPDF, StoragePath: "/data/doc-2.pdf"}
	text, err := engine.Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(text, "text of page-1.png") || !strings.Contains(text, "text of page-2.png") {
		t.Fatalf("expected both pages in output, got %q", text)
	}
	if !strings.Contains(text, "\f") {
		t.Fatalf("expected page break marker in %q", text)
	}
	if got := runner.countCalls("tesseract"); got != 2 {
		t.Fatalf("tesseract calls = %d, want 2", got)
	}
	ppmArgs := runner.lastArgs["pdftoppm"]
	if len(ppmArgs) < 2 || ppmArgs[0] != "-r" || ppmArgs[1] != "144" {
		t.Fatalf("unexpected pdftoppm args %v", ppmArgs)
	}
	if recorder.method != MethodPDFOCR || recorder.pages != 2 {
		t.Fatalf("recorded %q/%d, want %q/2", recorder.method, recorder.pages, MethodPDFOCR)
	}
}

func TestExtractFallsBackWhenTextLayerUnreadable(t *testing.T) {
	runner := &runnerStub{t: t, pages: 1}
	engine := newTestEngine(t, runner, nil)
	engine.pdfTextLayer = func(string) (string, int, error) { return "", 0, errors.New("malformed xref") }

	doc := &domain.Document{ID: "doc-3", MediaKind: domain.MediaPDF, StoragePath: "/data/doc-3.pdf"}
	if _, err := engine.Extract(context.Background(), doc); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := runner.countCalls("pdftoppm"); got != 1 {
		t.Fatalf("pdftoppm calls = %d, want 1", got)
	}
}

func TestExtractPDFErrorsWhenNoPagesRendered(t *testing.T) {
	runner := &runnerStub{t: t, pages: 0}
	engine := newTestEngine(t, runner, nil)
	engine.pdfTextLayer = func(string) (string, int, error) { return "", 0, nil }

	doc := &domain.Document{ID: "doc-4", MediaKind: domain.MediaPDF, StoragePath: "/data/doc-4.pdf"}
	_, err := engine.Extract(context.Background(), doc)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "no pages") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestExtractHonorsMaxPages(t *testing.T) {
	runner := &runnerStub{t: t, pages: 3}
	recorder := &recorderStub{}
	engine := NewEngineWithOptions(Config{MaxPages: 2}, slog.New(slog.DiscardHandler), Options{Runner: runner, Recorder: recorder})
	engine.pdfTextLayer = func(string) (string, int, error) { return "", 0, nil }

	doc := &domain.Document{ID: "doc-5", MediaKind: domain.MediaPDF, StoragePath: "/data/doc-5.pdf"}
	if _, err := engine.Extract(context.Background(), doc); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := runner.countCalls("tesseract"); got != 2 {
		t.Fatalf("tesseract calls = %d, want capped 2", got)
	}
	if recorder.pages != 2 {
		t.Fatalf("recorded pages = %d, want 2", recorder.pages)
	}
}

func TestExtractImageRunsTesseract(t *testing.T) {
	runner := &runnerStub{t: t}
	recorder := &recorderStub{}
	engine := newTestEngine(t, runner, recorder)

	doc := &domain.Document{ID: "doc-6", MediaKind: domain.MediaImage, StoragePath: "/data/scan.png"}
	text, err := engine.Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "text of scan.png" {
		t.Fatalf("unexpected text %q", text)
	}
	args := runner.lastArgs["tesseract"]
	if len(args) < 6 || args[1] != "stdout" || args[3] != "eng" || args[5] != "6" {
		t.Fatalf("unexpected tesseract args %v", args)
	}
	if recorder.method != MethodImageOCR {
		t.Fatalf("recorded method = %q, want %q", recorder.method, MethodImageOCR)
	}
}

func TestExtractImageSurfacesOCRFailure(t *testing.T) {
	runner := &runnerStub{t: t, failOCR: true}
	engine := newTestEngine(t, runner, nil)

	doc := &domain.Document{ID: "doc-7", MediaKind: domain.MediaImage, StoragePath: "/data/scan.png"}
	_, err := engine.Extract(context.Background(), doc)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "no text found") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestExtractRejectsUnknownMediaKind(t *testing.T) {
	engine := newTestEngine(t, &runnerStub{t: t}, nil)

	doc := &domain.Document{ID: "doc-8", MediaKind: "", StoragePath: "/data/doc-8.bin"}
	_, err := engine.Extract(context.Background(), doc)
	if !domain.IsKind(err, domain.ErrUnsupportedMedia) {
		t.Fatalf("expected unsupported media error, got %v", err)
	}
}
