package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/avezina/propdocs/internal/core/domain"
)

type searchRequest struct {
	Query   string `json:"query"`
	Limit   int    `json:"limit"`
	DocType string `json:"doc_type"`
}

type searchResponse struct {
	Hits []domain.SearchHit `json:"hits"`
}

func (rt *Router) searchDocuments(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}

	var filter domain.SearchFilter
	if req.DocType != "" {
		docType, ok := domain.ParseDocumentType(req.DocType)
		if !ok || !docType.Known() {
			writeError(w, domain.WrapError(domain.ErrUnknownDocumentType, "search filter",
				fmt.Errorf("doc_type %q", req.DocType)))
			return
		}
		filter.Type = docType
	}

	hits, err := rt.search.Search(r.Context(), req.Query, req.Limit, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if hits == nil {
		hits = []domain.SearchHit{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Hits: hits})
}

type statsResponse struct {
	Vector  domain.CollectionStats        `json:"vector"`
	Records map[domain.DocumentType]int64 `json:"records"`
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	vector, err := rt.search.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	records, err := rt.records.Counts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Vector: vector, Records: records})
}
