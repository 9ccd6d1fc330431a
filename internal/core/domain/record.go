package domain

import (
	"fmt"
	"strconv"
	"time"
)

// ExtractionSource identifies the strategy that produced a record.
type ExtractionSource string

const (
	SourceModel    ExtractionSource = "model"
	SourceFallback ExtractionSource = "fallback"
)

// EntityRecord is the result of entity extraction for one document.
// Fields holds exactly the keys of the type's schema; values are string,
// float64 or nil. Confidence and NeedsReview are computed by the review
// policy and never appear inside Fields.
type EntityRecord struct {
	Type        DocumentType     `json:"doc_type"`
	Fields      map[string]any   `json:"fields"`
	Source      ExtractionSource `json:"source"`
	Confidence  float64          `json:"confidence_score"`
	NeedsReview bool             `json:"needs_review"`
}

// StringField returns the named field when present and a string.
func (r EntityRecord) StringField(name string) (string, bool) {
	v, ok := r.Fields[name].(string)
	return v, ok
}

// NumberField returns the named field when present and numeric.
func (r EntityRecord) NumberField(name string) (float64, bool) {
	v, ok := r.Fields[name].(float64)
	return v, ok
}

// MetadataStrings renders the fields for flat string payloads: numbers
// without exponent, nil as the empty string.
func (r EntityRecord) MetadataStrings() map[string]string {
	out := make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		out[k] = FieldString(v)
	}
	return out
}

// FieldString renders a single field value for string payloads.
func FieldString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// StoredRecord is the relational read model of a persisted entity record.
type StoredRecord struct {
	ID          int64          `json:"id"`
	DocumentID  string         `json:"document_id"`
	Type        DocumentType   `json:"doc_type"`
	Fields      map[string]any `json:"fields"`
	Confidence  float64        `json:"confidence_score"`
	NeedsReview bool           `json:"needs_review"`
	CreatedAt   time.Time      `json:"created_at"`
}
