// Package qdrant keeps one vector point per processed document and serves
// semantic search over Qdrant's REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avezina/propdocs/internal/core/domain"
	"github.com/avezina/propdocs/internal/infrastructure/textwindow"
)

var (
	errNotFound = errors.New("qdrant: not found")
	errConflict = errors.New("qdrant: conflict")
)

// maxPayloadTextChars bounds the text snippet stored on each point.
// Search hits surface this snippet; the full document stays in object
// storage.
const maxPayloadTextChars = 2000

type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

func New(baseURL, collection string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// pointID fingerprints the indexed content. Qdrant only accepts UUIDs or
// integers as point ids, so the fingerprint is folded into a name-based
// UUID.
func pointID(documentID string, docType domain.DocumentType, text string, at time.Time) string {
	prefix := text
	if len(prefix) > 100 {
		prefix = prefix[:100]
	}
	fingerprint := fmt.Sprintf("%s_%s_%s_%s", docType, prefix, at.Format(time.RFC3339Nano), documentID)
	return uuid.NewMD5(uuid.NameSpaceOID, []byte(fingerprint)).String()
}

func (c *Client) IndexDocument(ctx context.Context, doc *domain.Document, text string, rec domain.EntityRecord, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty vector for document %s", doc.ID)
	}
	if err := c.ensureCollection(ctx, len(vector)); err != nil {
		return err
	}

	now := time.Now().UTC()
	payload := map[string]any{
		"doc_id":    doc.ID,
		"filename":  doc.Filename,
		"doc_type":  string(rec.Type),
		"text":      textwindow.Head(text, maxPayloadTextChars),
		"timestamp": now.Format(time.RFC3339),
	}
	for key, value := range rec.MetadataStrings() {
		payload[key] = value
	}

	reqBody := map[string]any{
		"points": []map[string]any{{
			"id":      pointID(doc.ID, rec.Type, text, now),
			"vector":  vector,
			"payload": payload,
		}},
	}
	path := fmt.Sprintf("/collections/%s/points?wait=true", c.collection)
	return c.doJSON(ctx, http.MethodPut, path, reqBody, nil, "upsert")
}

func (c *Client) Search(
	ctx context.Context,
	queryVector []float32,
	limit int,
	filter domain.SearchFilter,
) ([]domain.SearchHit, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        limit,
		"with_payload": true,
	}
	if filter.Type != "" {
		reqBody["filter"] = matchFilter("doc_type", string(filter.Type))
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", c.collection)
	err := c.doJSON(ctx, http.MethodPost, path, reqBody, &searchResp, "search")
	if errors.Is(err, errNotFound) {
		// nothing indexed yet
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	hits := make([]domain.SearchHit, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		hit := domain.SearchHit{
			DocumentID: getStringPayload(r.Payload, "doc_id"),
			Filename:   getStringPayload(r.Payload, "filename"),
			Type:       domain.DocumentType(getStringPayload(r.Payload, "doc_type")),
			Text:       getStringPayload(r.Payload, "text"),
			Score:      r.Score,
			Metadata:   make(map[string]string),
		}
		for key := range r.Payload {
			switch key {
			case "doc_id", "filename", "doc_type", "text":
				continue
			}
			hit.Metadata[key] = getStringPayload(r.Payload, key)
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (c *Client) Stats(ctx context.Context) (domain.CollectionStats, error) {
	total, err := c.count(ctx, "")
	if err != nil {
		return domain.CollectionStats{}, err
	}
	stats := domain.CollectionStats{
		Points: total,
		ByType: make(map[domain.DocumentType]int64, len(domain.KnownTypes())),
	}
	for _, docType := range domain.KnownTypes() {
		n, err := c.count(ctx, docType)
		if err != nil {
			return domain.CollectionStats{}, err
		}
		stats.ByType[docType] = n
	}
	return stats, nil
}

func (c *Client) DeleteByDocumentID(ctx context.Context, documentID string) error {
	reqBody := map[string]any{
		"filter": matchFilter("doc_id", documentID),
	}
	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", c.collection)
	err := c.doJSON(ctx, http.MethodPost, path, reqBody, nil, "delete")
	if errors.Is(err, errNotFound) {
		return nil
	}
	return err
}

func (c *Client) count(ctx context.Context, docType domain.DocumentType) (int64, error) {
	reqBody := map[string]any{"exact": true}
	if docType != "" {
		reqBody["filter"] = matchFilter("doc_type", string(docType))
	}

	var countResp struct {
		Result struct {
			Count int64 `json:"count"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/count", c.collection)
	err := c.doJSON(ctx, http.MethodPost, path, reqBody, &countResp, "count")
	if errors.Is(err, errNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return countResp.Result.Count, nil
}

func (c *Client) ensureCollection(ctx context.Context, vectorSize int) error {
	c.ensureMu.Lock()
	if c.ensuredCollection && c.ensuredVectorSize == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}
	path := fmt.Sprintf("/collections/%s", c.collection)
	err := c.doJSON(ctx, http.MethodPut, path, reqBody, nil, "ensure collection")
	// 409 means the collection already exists (depends on version/config).
	if err != nil && !errors.Is(err, errConflict) {
		return err
	}
	c.markCollectionEnsured(vectorSize)
	return nil
}

func (c *Client) markCollectionEnsured(vectorSize int) {
	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()
	c.ensuredCollection = true
	c.ensuredVectorSize = vectorSize
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode == http.StatusConflict:
		return errConflict
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if trimmed := strings.TrimSpace(string(msg)); trimmed != "" {
			return fmt.Errorf("qdrant %s status: %s: %s", operation, resp.Status, trimmed)
		}
		return fmt.Errorf("qdrant %s status: %s", operation, resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", operation, err)
		}
	}
	return nil
}

func matchFilter(key, value string) map[string]any {
	return map[string]any{
		"must": []map[string]any{
			{"key": key, "match": map[string]any{"value": value}},
		},
	}
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
