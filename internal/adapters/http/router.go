package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/avezina/propdocs/internal/config"
	"github.com/avezina/propdocs/internal/core/ports"
	"github.com/avezina/propdocs/internal/observability/metrics"
)

type Router struct {
	cfg     config.Config
	metrics *metrics.HTTPServerMetrics

	ingest  ports.DocumentIngestor
	docs    ports.DocumentReader
	search  ports.DocumentSearcher
	records ports.RecordBrowser
}

func NewRouter(
	cfg config.Config,
	httpMetrics *metrics.HTTPServerMetrics,
	ingest ports.DocumentIngestor,
	docs ports.DocumentReader,
	search ports.DocumentSearcher,
	records ports.RecordBrowser,
) *Router {
	return &Router{
		cfg:     cfg,
		metrics: httpMetrics,
		ingest:  ingest,
		docs:    docs,
		search:  search,
		records: records,
	}
}

// Handler assembles the route table and the middleware chain: request ID,
// access log, metrics, traffic control, then contract validation.
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /openapi.yaml", serveContract)
	mux.Handle("GET /metrics", rt.metrics.Handler())

	mux.HandleFunc("POST /v1/documents", rt.uploadDocument)
	mux.HandleFunc("GET /v1/documents/{document_id}", rt.getDocumentByID)
	mux.HandleFunc("GET /v1/documents/{document_id}/file", rt.downloadDocumentFile)
	mux.HandleFunc("POST /v1/search", rt.searchDocuments)
	mux.HandleFunc("GET /v1/records/{doc_type}", rt.listRecords)
	mux.HandleFunc("GET /v1/records/{doc_type}/{record_id}", rt.getRecord)
	mux.HandleFunc("DELETE /v1/records/{doc_type}/{record_id}", rt.deleteRecord)
	mux.HandleFunc("GET /v1/export/{doc_type}", rt.exportRecords)
	mux.HandleFunc("GET /v1/stats", rt.stats)

	var handler http.Handler = mux
	handler = contract.middleware(handler)
	if rt.cfg.APIMaxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, rt.cfg.APIQueueWait)
	}
	if rt.cfg.APIRateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	}
	handler = rt.metrics.Middleware(handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), errorResponse{Error: err.Error()})
}
