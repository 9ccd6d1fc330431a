package httpadapter

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avezina/propdocs/internal/config"
	"github.com/avezina/propdocs/internal/core/domain"
)

type ingestErrFake struct {
	err error
}

func (f ingestErrFake) Upload(context.Context, string, string, io.Reader) (*domain.Document, error) {
	return nil, f.err
}

type searchErrFake struct {
	err error
}

func (f searchErrFake) Search(context.Context, string, int, domain.SearchFilter) ([]domain.SearchHit, error) {
	return nil, f.err
}

func (f searchErrFake) Stats(context.Context) (domain.CollectionStats, error) {
	return domain.CollectionStats{}, f.err
}

type recordsErrFake struct {
	err error
}

func (f recordsErrFake) List(context.Context, domain.DocumentType, int, int) ([]domain.StoredRecord, error) {
	return nil, f.err
}

func (f recordsErrFake) Get(context.Context, domain.DocumentType, int64) (*domain.StoredRecord, error) {
	return nil, f.err
}

func (f recordsErrFake) Delete(context.Context, domain.DocumentType, int64) error {
	return f.err
}

func (f recordsErrFake) Export(context.Context, domain.DocumentType, domain.ExportFormat) (*domain.ExportFile, error) {
	return nil, f.err
}

func (f recordsErrFake) Counts(context.Context) (map[domain.DocumentType]int64, error) {
	return nil, f.err
}

func TestUploadMapsUnsupportedMediaTo415(t *testing.T) {
	ingest := ingestErrFake{err: domain.WrapError(domain.ErrUnsupportedMedia, "upload", errors.New("text/plain"))}
	handler := newTestHandler(config.Config{}, ingest, docsStubFake{}, searchStubFake{}, recordsStubFake{})

	body, contentType := multipartBody(t, "notes.txt", []byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "unsupported media") {
		t.Fatalf("unexpected body %q", res.Body.String())
	}
}

func TestGetDocumentByIDReturns404ForNotFound(t *testing.T) {
	docs := docsStubFake{err: domain.WrapError(domain.ErrDocumentNotFound, "get", errors.New("id=missing"))}
	handler := newTestHandler(config.Config{}, ingestSuccessFake{}, docs, searchStubFake{}, recordsStubFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestSearchMapsTemporaryTo503(t *testing.T) {
	search := searchErrFake{err: domain.WrapError(domain.ErrTemporary, "embed query", errors.New("circuit open"))}
	handler := newTestHandler(config.Config{}, ingestSuccessFake{}, docsStubFake{}, search, recordsStubFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"query":"plumbing"}`))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestListRecordsUnknownTypeReturns422(t *testing.T) {
	handler := newTestHandler(config.Config{}, ingestSuccessFake{}, docsStubFake{}, searchStubFake{}, recordsStubFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/records/lease", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", res.Code)
	}
}

func TestDeleteRecordMapsRecordNotFoundTo404(t *testing.T) {
	records := recordsErrFake{err: domain.WrapError(domain.ErrRecordNotFound, "delete record", errors.New("id=99"))}
	handler := newTestHandler(config.Config{}, ingestSuccessFake{}, docsStubFake{}, searchStubFake{}, records)

	req := httptest.NewRequest(http.MethodDelete, "/v1/records/invoice/99", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestContractRejectsMissingSearchQuery(t *testing.T) {
	handler := newTestHandler(config.Config{}, ingestSuccessFake{}, docsStubFake{}, searchErrFake{err: errors.New("handler must not run")}, recordsStubFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"limit":3}`))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", res.Code, res.Body.String())
	}
}

func TestContractRejectsMalformedSearchJSON(t *testing.T) {
	handler := newTestHandler(config.Config{}, ingestSuccessFake{}, docsStubFake{}, searchStubFake{}, recordsStubFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/search", bytes.NewReader([]byte(`{"query":`)))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestContractRejectsNonNumericRecordID(t *testing.T) {
	handler := newTestHandler(config.Config{}, ingestSuccessFake{}, docsStubFake{}, searchStubFake{}, recordsStubFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/records/invoice/not-a-number", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestContractRejectsBadListLimit(t *testing.T) {
	handler := newTestHandler(config.Config{}, ingestSuccessFake{}, docsStubFake{}, searchStubFake{}, recordsStubFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/records/invoice?limit=abc", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}
