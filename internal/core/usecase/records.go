package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avezina/propdocs/internal/core/domain"
	"github.com/avezina/propdocs/internal/core/ports"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	exportPageSize   = 500
)

type BrowseRecordsUseCase struct {
	records  ports.RecordStore
	vectorDB ports.VectorStore
	exporter ports.RecordExporter
	logger   *slog.Logger
}

func NewBrowseRecordsUseCase(
	records ports.RecordStore,
	vectorDB ports.VectorStore,
	exporter ports.RecordExporter,
	logger *slog.Logger,
) *BrowseRecordsUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowseRecordsUseCase{
		records:  records,
		vectorDB: vectorDB,
		exporter: exporter,
		logger:   logger,
	}
}

func (uc *BrowseRecordsUseCase) List(ctx context.Context, docType domain.DocumentType, limit, offset int) ([]domain.StoredRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return uc.records.ListByType(ctx, docType, limit, offset)
}

func (uc *BrowseRecordsUseCase) Get(ctx context.Context, docType domain.DocumentType, id int64) (*domain.StoredRecord, error) {
	return uc.records.GetByID(ctx, docType, id)
}

// Delete removes the record; when it was the document's last record the
// document's vector point goes too. Vector cleanup is best effort.
func (uc *BrowseRecordsUseCase) Delete(ctx context.Context, docType domain.DocumentType, id int64) error {
	documentID, remaining, err := uc.records.DeleteByID(ctx, docType, id)
	if err != nil {
		return err
	}
	if documentID != "" && remaining == 0 {
		if err := uc.vectorDB.DeleteByDocumentID(ctx, documentID); err != nil {
			uc.logger.WarnContext(ctx, "vector point cleanup failed",
				"document_id", documentID, "doc_type", string(docType), "error", err)
		}
	}
	return nil
}

// Export renders every stored record of one type, paging through the store.
func (uc *BrowseRecordsUseCase) Export(ctx context.Context, docType domain.DocumentType, format domain.ExportFormat) (*domain.ExportFile, error) {
	var all []domain.StoredRecord
	for offset := 0; ; offset += exportPageSize {
		page, err := uc.records.ListByType(ctx, docType, exportPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("collect records for export: %w", err)
		}
		all = append(all, page...)
		if len(page) < exportPageSize {
			break
		}
	}
	return uc.exporter.Render(docType, all, format)
}

// Counts reports how many records each typed table holds.
func (uc *BrowseRecordsUseCase) Counts(ctx context.Context) (map[domain.DocumentType]int64, error) {
	counts := make(map[domain.DocumentType]int64, len(domain.KnownTypes()))
	for _, docType := range domain.KnownTypes() {
		n, err := uc.records.CountByType(ctx, docType)
		if err != nil {
			return nil, fmt.Errorf("count %s records: %w", docType, err)
		}
		counts[docType] = n
	}
	return counts, nil
}
