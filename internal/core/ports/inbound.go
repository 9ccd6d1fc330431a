package ports

import (
	"context"
	"io"

	"github.com/avezina/propdocs/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document metadata and bytes.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	OpenFile(ctx context.Context, id string) (*domain.Document, io.ReadCloser, error)
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DocumentSearcher is the inbound contract for semantic search.
type DocumentSearcher interface {
	Search(ctx context.Context, query string, limit int, filter domain.SearchFilter) ([]domain.SearchHit, error)
	Stats(ctx context.Context) (domain.CollectionStats, error)
}

// RecordBrowser is the inbound contract for typed record access.
type RecordBrowser interface {
	List(ctx context.Context, docType domain.DocumentType, limit, offset int) ([]domain.StoredRecord, error)
	Get(ctx context.Context, docType domain.DocumentType, id int64) (*domain.StoredRecord, error)
	Delete(ctx context.Context, docType domain.DocumentType, id int64) error
	Export(ctx context.Context, docType domain.DocumentType, format domain.ExportFormat) (*domain.ExportFile, error)
	Counts(ctx context.Context) (map[domain.DocumentType]int64, error)
}
