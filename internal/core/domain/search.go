package domain

// SearchFilter narrows semantic search to one document type. The zero
// value matches every type.
type SearchFilter struct {
	Type DocumentType
}

type SearchHit struct {
	DocumentID string            `json:"document_id"`
	Filename   string            `json:"filename"`
	Type       DocumentType      `json:"doc_type"`
	Text       string            `json:"text"`
	Score      float64           `json:"score"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type CollectionStats struct {
	Points int64                  `json:"points"`
	ByType map[DocumentType]int64 `json:"by_type"`
}
