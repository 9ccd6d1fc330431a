package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/avezina/propdocs/internal/core/domain"
	"github.com/avezina/propdocs/internal/core/ports"
	"github.com/avezina/propdocs/internal/core/review"
)

// PipelineRecorder observes pipeline outcomes and stage timings.
type PipelineRecorder interface {
	ObservePipeline(status domain.DocumentStatus, elapsed time.Duration)
	ObserveStage(stage string, elapsed time.Duration, err error)
	RecordReviewFlagged(docType domain.DocumentType)
}

type ProcessDocumentUseCase struct {
	repo       ports.DocumentRepository
	records    ports.RecordStore
	extractor  ports.TextExtractor
	classifier ports.DocumentClassifier
	entities   ports.EntityExtractor
	embedder   ports.Embedder
	vectorDB   ports.VectorStore
	policy     review.Policy
	metrics    PipelineRecorder
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	records ports.RecordStore,
	extractor ports.TextExtractor,
	classifier ports.DocumentClassifier,
	entities ports.EntityExtractor,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	policy review.Policy,
	metrics PipelineRecorder,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:       repo,
		records:    records,
		extractor:  extractor,
		classifier: classifier,
		entities:   entities,
		embedder:   embedder,
		vectorDB:   vectorDB,
		policy:     policy,
		metrics:    metrics,
	}
}

// ProcessByID runs the full pipeline for one uploaded document. Any stage
// failure marks the document failed with the error message; reprocessing
// the same ID simply runs the pipeline again.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	start := time.Now()
	if err := uc.markStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if err := uc.processPipeline(ctx, documentID); err != nil {
		uc.observePipeline(domain.StatusFailed, start)
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.markStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	uc.observePipeline(domain.StatusReady, start)
	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) error {
	doc, err := uc.loadDocument(ctx, documentID)
	if err != nil {
		return err
	}

	start := time.Now()
	text, err := uc.extractText(ctx, doc)
	uc.observeStage("extract_text", start, err)
	if err != nil {
		return err
	}

	start = time.Now()
	docType, err := uc.classify(ctx, text)
	uc.observeStage("classify", start, err)
	if err != nil {
		return err
	}

	if err := uc.persistClassification(ctx, doc, docType); err != nil {
		return err
	}

	// The type is on the document row even when processing stops here,
	// so failed unknown documents still show what the classifier said.
	if !docType.Known() {
		return domain.WrapError(
			domain.ErrUnknownDocumentType,
			"process document",
			fmt.Errorf("no entity schema for type %q", docType),
		)
	}

	start = time.Now()
	rec, err := uc.extractEntities(ctx, text, docType)
	uc.observeStage("extract_entities", start, err)
	if err != nil {
		return err
	}
	uc.applyReview(doc, &rec)

	start = time.Now()
	err = uc.persistRecord(ctx, doc, rec)
	uc.observeStage("persist_record", start, err)
	if err != nil {
		return err
	}

	start = time.Now()
	vector, err := uc.embed(ctx, text)
	uc.observeStage("embed", start, err)
	if err != nil {
		return err
	}

	start = time.Now()
	err = uc.index(ctx, doc, text, rec, vector)
	uc.observeStage("index", start, err)
	return err
}

func (uc *ProcessDocumentUseCase) loadDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

func (uc *ProcessDocumentUseCase) extractText(ctx context.Context, doc *domain.Document) (string, error) {
	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	return text, nil
}

func (uc *ProcessDocumentUseCase) classify(ctx context.Context, text string) (domain.DocumentType, error) {
	docType, err := uc.classifier.Classify(ctx, text)
	if err != nil {
		return domain.TypeUnknown, fmt.Errorf("classify document: %w", err)
	}
	return docType, nil
}

func (uc *ProcessDocumentUseCase) persistClassification(ctx context.Context, doc *domain.Document, docType domain.DocumentType) error {
	if err := uc.repo.SaveClassification(ctx, doc.ID, docType); err != nil {
		return fmt.Errorf("save classification: %w", err)
	}
	doc.Type = docType
	return nil
}

func (uc *ProcessDocumentUseCase) extractEntities(ctx context.Context, text string, docType domain.DocumentType) (domain.EntityRecord, error) {
	rec, err := uc.entities.Extract(ctx, text, docType)
	if err != nil {
		return domain.EntityRecord{}, fmt.Errorf("extract entities: %w", err)
	}
	return rec, nil
}

func (uc *ProcessDocumentUseCase) applyReview(doc *domain.Document, rec *domain.EntityRecord) {
	uc.policy.Evaluate(rec)
	doc.Confidence = rec.Confidence
	doc.NeedsReview = rec.NeedsReview
	if rec.NeedsReview && uc.metrics != nil {
		uc.metrics.RecordReviewFlagged(rec.Type)
	}
}

func (uc *ProcessDocumentUseCase) persistRecord(ctx context.Context, doc *domain.Document, rec domain.EntityRecord) error {
	if _, err := uc.records.InsertRecord(ctx, doc.ID, rec); err != nil {
		return fmt.Errorf("persist entity record: %w", err)
	}
	if err := uc.repo.SaveReview(ctx, doc.ID, rec.Confidence, rec.NeedsReview); err != nil {
		return fmt.Errorf("save review outcome: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := uc.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed document text: %w", err)
	}
	if len(vectors) != 1 {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"embed document text",
			fmt.Errorf("got %d vectors for one input", len(vectors)),
		)
	}
	return vectors[0], nil
}

func (uc *ProcessDocumentUseCase) index(ctx context.Context, doc *domain.Document, text string, rec domain.EntityRecord, vector []float32) error {
	if err := uc.vectorDB.IndexDocument(ctx, doc, text, rec, vector); err != nil {
		return fmt.Errorf("index document in vector db: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, documentID, status, errMessage)
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.markStatus(ctx, documentID, domain.StatusFailed, processErr.Error())
}

func (uc *ProcessDocumentUseCase) observePipeline(status domain.DocumentStatus, start time.Time) {
	if uc.metrics != nil {
		uc.metrics.ObservePipeline(status, time.Since(start))
	}
}

func (uc *ProcessDocumentUseCase) observeStage(stage string, start time.Time, err error) {
	if uc.metrics != nil {
		uc.metrics.ObserveStage(stage, time.Since(start), err)
	}
}
