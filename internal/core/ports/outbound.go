package ports

import (
	"context"
	"io"

	"github.com/avezina/propdocs/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveClassification(ctx context.Context, id string, docType domain.DocumentType) error
	SaveReview(ctx context.Context, id string, confidence float64, needsReview bool) error
}

// ObjectStorage stores source documents. Save returns the absolute path
// of the stored file; external OCR tools run against that path.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// DocumentClassifier assigns a document type to extracted text.
type DocumentClassifier interface {
	Classify(ctx context.Context, text string) (domain.DocumentType, error)
}

// EntityExtractor produces the typed entity record for extracted text.
// Implementations reject domain.TypeUnknown with ErrUnknownDocumentType.
type EntityExtractor interface {
	Extract(ctx context.Context, text string, docType domain.DocumentType) (domain.EntityRecord, error)
}

// Embedder builds vectors for document text and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore keeps one point per processed document and serves semantic
// search over it.
type VectorStore interface {
	IndexDocument(ctx context.Context, doc *domain.Document, text string, rec domain.EntityRecord, vector []float32) error
	Search(ctx context.Context, queryVector []float32, limit int, filter domain.SearchFilter) ([]domain.SearchHit, error)
	Stats(ctx context.Context) (domain.CollectionStats, error)
	DeleteByDocumentID(ctx context.Context, documentID string) error
}

// RecordStore persists typed entity records in their per-type tables.
type RecordStore interface {
	InsertRecord(ctx context.Context, documentID string, rec domain.EntityRecord) (int64, error)
	ListByType(ctx context.Context, docType domain.DocumentType, limit, offset int) ([]domain.StoredRecord, error)
	GetByID(ctx context.Context, docType domain.DocumentType, id int64) (*domain.StoredRecord, error)
	// DeleteByID reports the owning document and how many records that
	// document still has, so callers can clean up the vector point.
	DeleteByID(ctx context.Context, docType domain.DocumentType, id int64) (documentID string, remaining int64, err error)
	CountByType(ctx context.Context, docType domain.DocumentType) (int64, error)
}

// RecordExporter renders typed records as a downloadable table.
type RecordExporter interface {
	Render(docType domain.DocumentType, records []domain.StoredRecord, format domain.ExportFormat) (*domain.ExportFile, error)
}
