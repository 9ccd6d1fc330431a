// Package strategy wires the ordered fallback chains behind the
// classification and extraction stages. The first available strategy
// serves the request; a strategy error falls through to the next one.
package strategy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avezina/propdocs/internal/core/domain"
)

// Classifier is one way of assigning a document type to text.
type Classifier interface {
	Name() string
	Available() bool
	Classify(ctx context.Context, text string) (domain.DocumentType, error)
}

// Extractor is one way of pulling typed entities out of text.
type Extractor interface {
	Name() string
	Available() bool
	Extract(ctx context.Context, text string, docType domain.DocumentType) (domain.EntityRecord, error)
}

// Recorder observes which strategy served each stage.
type Recorder interface {
	RecordClassification(docType domain.DocumentType, strategy string)
	RecordExtraction(docType domain.DocumentType, strategy string)
	RecordFallthrough(stage, strategy string)
}

type ClassifierChain struct {
	strategies []Classifier
	logger     *slog.Logger
	recorder   Recorder
}

func NewClassifierChain(logger *slog.Logger, recorder Recorder, strategies ...Classifier) *ClassifierChain {
	return &ClassifierChain{
		strategies: strategies,
		logger:     logger,
		recorder:   recorder,
	}
}

// Classify walks the chain. When every strategy is unavailable or fails,
// the result is unknown rather than an error.
func (c *ClassifierChain) Classify(ctx context.Context, text string) (domain.DocumentType, error) {
	for _, s := range c.strategies {
		if !s.Available() {
			continue
		}
		docType, err := s.Classify(ctx, text)
		if err != nil {
			c.logger.WarnContext(ctx, "classifier strategy failed, falling through",
				"strategy", s.Name(), "error", err)
			if c.recorder != nil {
				c.recorder.RecordFallthrough("classify", s.Name())
			}
			continue
		}
		if c.recorder != nil {
			c.recorder.RecordClassification(docType, s.Name())
		}
		return docType, nil
	}
	return domain.TypeUnknown, nil
}

type ExtractorChain struct {
	strategies []Extractor
	logger     *slog.Logger
	recorder   Recorder
}

func NewExtractorChain(logger *slog.Logger, recorder Recorder, strategies ...Extractor) *ExtractorChain {
	return &ExtractorChain{
		strategies: strategies,
		logger:     logger,
		recorder:   recorder,
	}
}

// Extract walks the chain for a known document type. Unknown types are
// refused before any strategy runs.
func (c *ExtractorChain) Extract(ctx context.Context, text string, docType domain.DocumentType) (domain.EntityRecord, error) {
	if !docType.Known() {
		return domain.EntityRecord{}, domain.WrapError(
			domain.ErrUnknownDocumentType,
			"extract entities",
			fmt.Errorf("no entity schema for type %q", docType),
		)
	}

	for _, s := range c.strategies {
		if !s.Available() {
			continue
		}
		rec, err := s.Extract(ctx, text, docType)
		if err != nil {
			c.logger.WarnContext(ctx, "extractor strategy failed, falling through",
				"strategy", s.Name(), "doc_type", string(docType), "error", err)
			if c.recorder != nil {
				c.recorder.RecordFallthrough("extract", s.Name())
			}
			continue
		}
		if c.recorder != nil {
			c.recorder.RecordExtraction(docType, s.Name())
		}
		return rec, nil
	}
	return domain.EntityRecord{}, fmt.Errorf("no extraction strategy produced a result for type %q", docType)
}
