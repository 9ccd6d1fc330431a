package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avezina/propdocs/internal/core/domain"
	"github.com/avezina/propdocs/internal/core/ports"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 50
)

type SearchDocumentsUseCase struct {
	embedder ports.Embedder
	vectorDB ports.VectorStore
}

func NewSearchDocumentsUseCase(
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
) *SearchDocumentsUseCase {
	return &SearchDocumentsUseCase{
		embedder: embedder,
		vectorDB: vectorDB,
	}
}

// Search embeds the query and returns the closest documents, best first.
func (uc *SearchDocumentsUseCase) Search(
	ctx context.Context,
	query string,
	limit int,
	filter domain.SearchFilter,
) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search documents", errors.New("empty query"))
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := uc.vectorDB.Search(ctx, queryVector, limit, filter)
	if err != nil {
		return nil, fmt.Errorf("search vector db: %w", err)
	}
	return hits, nil
}

// Stats reports what the vector collection currently holds.
func (uc *SearchDocumentsUseCase) Stats(ctx context.Context) (domain.CollectionStats, error) {
	stats, err := uc.vectorDB.Stats(ctx)
	if err != nil {
		return domain.CollectionStats{}, fmt.Errorf("collection stats: %w", err)
	}
	return stats, nil
}
