package mcpadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/avezina/propdocs/internal/core/domain"
)

type searchToolFake struct {
	hits       []domain.SearchHit
	err        error
	lastQuery  string
	lastLimit  int
	lastFilter domain.SearchFilter
}

func (f *searchToolFake) Search(_ context.Context, query string, limit int, filter domain.SearchFilter) ([]domain.SearchHit, error) {
	f.lastQuery = query
	f.lastLimit = limit
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func (f *searchToolFake) Stats(context.Context) (domain.CollectionStats, error) {
	return domain.CollectionStats{}, nil
}

type recordsToolFake struct {
	records   []domain.StoredRecord
	err       error
	lastType  domain.DocumentType
	lastLimit int
}

func (f *recordsToolFake) List(_ context.Context, docType domain.DocumentType, limit, _ int) ([]domain.StoredRecord, error) {
	f.lastType = docType
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *recordsToolFake) Get(context.Context, domain.DocumentType, int64) (*domain.StoredRecord, error) {
	return nil, errors.New("not implemented")
}

func (f *recordsToolFake) Delete(context.Context, domain.DocumentType, int64) error {
	return errors.New("not implemented")
}

func (f *recordsToolFake) Export(context.Context, domain.DocumentType, domain.ExportFormat) (*domain.ExportFile, error) {
	return nil, errors.New("not implemented")
}

func (f *recordsToolFake) Counts(context.Context) (map[domain.DocumentType]int64, error) {
	return nil, errors.New("not implemented")
}

func newTestServer(search *searchToolFake, records *recordsToolFake) *Server {
	return NewServer(search, records, slog.New(slog.DiscardHandler))
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatalf("expected content in result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestSearchDocumentsToolReturnsHits(t *testing.T) {
	search := &searchToolFake{hits: []domain.SearchHit{{
		DocumentID: "doc-1",
		Filename:   "invoice.pdf",
		Type:       domain.TypeInvoice,
		Text:       "ACME Plumbing repair",
		Score:      0.91,
	}}}
	srv := newTestServer(search, &recordsToolFake{})

	result, err := srv.handleSearchDocuments(context.Background(), callRequest(map[string]any{
		"query":    "plumbing repair",
		"doc_type": "invoice",
		"limit":    3,
	}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}
	if search.lastQuery != "plumbing repair" || search.lastLimit != 3 {
		t.Fatalf("delegated %q/%d", search.lastQuery, search.lastLimit)
	}
	if search.lastFilter.Type != domain.TypeInvoice {
		t.Fatalf("filter type = %q", search.lastFilter.Type)
	}
	if text := resultText(t, result); !strings.Contains(text, "doc-1") || !strings.Contains(text, `"count": 1`) {
		t.Fatalf("unexpected payload: %s", text)
	}
}

func TestSearchDocumentsToolRequiresQuery(t *testing.T) {
	srv := newTestServer(&searchToolFake{}, &recordsToolFake{})

	result, err := srv.handleSearchDocuments(context.Background(), callRequest(map[string]any{"limit": 2}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error for missing query")
	}
}

func TestSearchDocumentsToolRejectsUnknownType(t *testing.T) {
	srv := newTestServer(&searchToolFake{}, &recordsToolFake{})

	result, err := srv.handleSearchDocuments(context.Background(), callRequest(map[string]any{
		"query":    "anything",
		"doc_type": "lease",
	}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error for unknown type")
	}
	if text := resultText(t, result); !strings.Contains(text, "lease") {
		t.Fatalf("expected offending type in %q", text)
	}
}

func TestSearchDocumentsToolWrapsBackendFailure(t *testing.T) {
	search := &searchToolFake{err: domain.WrapError(domain.ErrTemporary, "embed query", errors.New("circuit open"))}
	srv := newTestServer(search, &recordsToolFake{})

	result, err := srv.handleSearchDocuments(context.Background(), callRequest(map[string]any{"query": "x"}))
	if err != nil {
		t.Fatalf("expected tool error instead of protocol error, got %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error result")
	}
}

func TestListRecordsToolReturnsRows(t *testing.T) {
	records := &recordsToolFake{records: []domain.StoredRecord{
		{ID: 1, DocumentID: "doc-1", Type: domain.TypeInsurance, Fields: map[string]any{"policy_number": "HOP-1"}},
	}}
	srv := newTestServer(&searchToolFake{}, records)

	result, err := srv.handleListRecords(context.Background(), callRequest(map[string]any{
		"doc_type": "insurance",
		"limit":    25,
	}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}
	if records.lastType != domain.TypeInsurance || records.lastLimit != 25 {
		t.Fatalf("delegated %q/%d", records.lastType, records.lastLimit)
	}
	if text := resultText(t, result); !strings.Contains(text, "HOP-1") {
		t.Fatalf("unexpected payload: %s", text)
	}
}

func TestListRecordsToolRequiresDocType(t *testing.T) {
	srv := newTestServer(&searchToolFake{}, &recordsToolFake{})

	result, err := srv.handleListRecords(context.Background(), callRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error for missing doc_type")
	}
}
