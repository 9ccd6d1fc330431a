package httpadapter

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/avezina/propdocs/internal/core/domain"
)

type recordListResponse struct {
	Records []domain.StoredRecord `json:"records"`
}

func (rt *Router) listRecords(w http.ResponseWriter, r *http.Request) {
	docType, ok := docTypeFromPath(w, r)
	if !ok {
		return
	}

	limit := queryInt(r, "limit")
	offset := queryInt(r, "offset")
	records, err := rt.records.List(r.Context(), docType, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []domain.StoredRecord{}
	}
	writeJSON(w, http.StatusOK, recordListResponse{Records: records})
}

func (rt *Router) getRecord(w http.ResponseWriter, r *http.Request) {
	docType, ok := docTypeFromPath(w, r)
	if !ok {
		return
	}
	id, ok := recordIDFromPath(w, r)
	if !ok {
		return
	}

	record, err := rt.records.Get(r.Context(), docType, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (rt *Router) deleteRecord(w http.ResponseWriter, r *http.Request) {
	docType, ok := docTypeFromPath(w, r)
	if !ok {
		return
	}
	id, ok := recordIDFromPath(w, r)
	if !ok {
		return
	}

	if err := rt.records.Delete(r.Context(), docType, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) exportRecords(w http.ResponseWriter, r *http.Request) {
	docType, ok := docTypeFromPath(w, r)
	if !ok {
		return
	}
	format, ok := domain.ParseExportFormat(r.URL.Query().Get("format"))
	if !ok {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "parse export format",
			fmt.Errorf("format %q", r.URL.Query().Get("format"))))
		return
	}

	file, err := rt.records.Export(r.Context(), docType, format)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

func docTypeFromPath(w http.ResponseWriter, r *http.Request) (domain.DocumentType, bool) {
	raw := r.PathValue("doc_type")
	docType, ok := domain.ParseDocumentType(raw)
	if !ok || !docType.Known() {
		writeError(w, domain.WrapError(domain.ErrUnknownDocumentType, "parse path",
			fmt.Errorf("doc_type %q", raw)))
		return "", false
	}
	return docType, true
}

func recordIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("record_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "parse path",
			fmt.Errorf("record_id %q", raw)))
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
