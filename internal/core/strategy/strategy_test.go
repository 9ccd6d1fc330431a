package strategy

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/avezina/propdocs/internal/core/domain"
)

type classifierStub struct {
	name      string
	available bool
	docType   domain.DocumentType
	err       error
	calls     int
}

func (s *classifierStub) Name() string    { return s.name }
func (s *classifierStub) Available() bool { return s.available }

func (s *classifierStub) Classify(context.Context, string) (domain.DocumentType, error) {
	s.calls++
	if s.err != nil {
		return domain.TypeUnknown, s.err
	}
	return s.docType, nil
}

type extractorStub struct {
	name      string
	available bool
	rec       domain.EntityRecord
	err       error
	calls     int
}

func (s *extractorStub) Name() string    { return s.name }
func (s *extractorStub) Available() bool { return s.available }

func (s *extractorStub) Extract(context.Context, string, domain.DocumentType) (domain.EntityRecord, error) {
	s.calls++
	if s.err != nil {
		return domain.EntityRecord{}, s.err
	}
	return s.rec, nil
}

type recorderStub struct {
	classifications []string
	extractions     []string
	fallthroughs    []string
}

func (r *recorderStub) RecordClassification(_ domain.DocumentType, strategy string) {
	r.classifications = append(r.classifications, strategy)
}

func (r *recorderStub) RecordExtraction(_ domain.DocumentType, strategy string) {
	r.extractions = append(r.extractions, strategy)
}

func (r *recorderStub) RecordFallthrough(stage, strategy string) {
	r.fallthroughs = append(r.fallthroughs, stage+"/"+strategy)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestClassifierChainFirstAvailableWins(t *testing.T) {
	remote := &classifierStub{name: "remote", available: true, docType: domain.TypeInvoice}
	keyword := &classifierStub{name: "keyword", available: true, docType: domain.TypeInsurance}
	rec := &recorderStub{}

	chain := NewClassifierChain(testLogger(), rec, remote, keyword)
	docType, err := chain.Classify(context.Background(), "text")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if docType != domain.TypeInvoice {
		t.Fatalf("docType = %s, want invoice from first strategy", docType)
	}
	if keyword.calls != 0 {
		t.Fatal("second strategy called although first succeeded")
	}
	if len(rec.classifications) != 1 || rec.classifications[0] != "remote" {
		t.Fatalf("recorded classifications = %v", rec.classifications)
	}
}

func TestClassifierChainSkipsUnavailable(t *testing.T) {
	remote := &classifierStub{name: "remote", available: false, docType: domain.TypeInvoice}
	keyword := &classifierStub{name: "keyword", available: true, docType: domain.TypeID}

	chain := NewClassifierChain(testLogger(), nil, remote, keyword)
	docType, err := chain.Classify(context.Background(), "text")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if docType != domain.TypeID {
		t.Fatalf("docType = %s, want id from available strategy", docType)
	}
	if remote.calls != 0 {
		t.Fatal("unavailable strategy was invoked")
	}
}

func TestClassifierChainFallsThroughOnError(t *testing.T) {
	remote := &classifierStub{name: "remote", available: true, err: errors.New("upstream 503")}
	keyword := &classifierStub{name: "keyword", available: true, docType: domain.TypeInsurance}
	rec := &recorderStub{}

	chain := NewClassifierChain(testLogger(), rec, remote, keyword)
	docType, err := chain.Classify(context.Background(), "text")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if docType != domain.TypeInsurance {
		t.Fatalf("docType = %s, want fallback result", docType)
	}
	if len(rec.fallthroughs) != 1 || rec.fallthroughs[0] != "classify/remote" {
		t.Fatalf("recorded fallthroughs = %v", rec.fallthroughs)
	}
}

func TestClassifierChainExhaustedReturnsUnknown(t *testing.T) {
	chain := NewClassifierChain(testLogger(), nil,
		&classifierStub{name: "a", available: false},
		&classifierStub{name: "b", available: true, err: errors.New("boom")},
	)
	docType, err := chain.Classify(context.Background(), "text")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if docType != domain.TypeUnknown {
		t.Fatalf("docType = %s, want unknown for exhausted chain", docType)
	}
}

func TestExtractorChainRefusesUnknownType(t *testing.T) {
	strat := &extractorStub{name: "remote", available: true}
	chain := NewExtractorChain(testLogger(), nil, strat)

	_, err := chain.Extract(context.Background(), "text", domain.TypeUnknown)
	if !domain.IsKind(err, domain.ErrUnknownDocumentType) {
		t.Fatalf("error = %v, want ErrUnknownDocumentType", err)
	}
	if strat.calls != 0 {
		t.Fatal("strategy invoked for unknown type")
	}
}

func TestExtractorChainFallsThroughOnError(t *testing.T) {
	want := domain.EntityRecord{
		Type:   domain.TypeInvoice,
		Fields: map[string]any{"invoice_number": "1234"},
		Source: domain.SourceFallback,
	}
	remote := &extractorStub{name: "remote", available: true, err: errors.New("bad json")}
	rules := &extractorStub{name: "rules", available: true, rec: want}
	rec := &recorderStub{}

	chain := NewExtractorChain(testLogger(), rec, remote, rules)
	got, err := chain.Extract(context.Background(), "text", domain.TypeInvoice)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Source != domain.SourceFallback {
		t.Fatalf("source = %s, want fallback", got.Source)
	}
	if len(rec.extractions) != 1 || rec.extractions[0] != "rules" {
		t.Fatalf("recorded extractions = %v", rec.extractions)
	}
}

func TestExtractorChainExhaustedErrors(t *testing.T) {
	chain := NewExtractorChain(testLogger(), nil, &extractorStub{name: "remote", available: false})
	if _, err := chain.Extract(context.Background(), "text", domain.TypeInvoice); err == nil {
		t.Fatal("expected error for exhausted extractor chain")
	}
}
