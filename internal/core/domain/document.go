package domain

import (
	"path/filepath"
	"strings"
	"time"
)

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// MediaKind is the transport-level nature of an uploaded file.
type MediaKind string

const (
	MediaPDF   MediaKind = "pdf"
	MediaImage MediaKind = "image"
)

// MediaKindForMIME resolves the media kind from a Content-Type value.
func MediaKindForMIME(mimeType string) (MediaKind, bool) {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch {
	case strings.Contains(mt, "pdf"):
		return MediaPDF, true
	case strings.HasPrefix(mt, "image/"):
		return MediaImage, true
	default:
		return "", false
	}
}

// MediaKindForFilename resolves the media kind from the file extension.
// Covers uploads arriving with a missing or generic content type.
func MediaKindForFilename(name string) (MediaKind, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MediaPDF, true
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp", ".webp":
		return MediaImage, true
	default:
		return "", false
	}
}

// DocumentType is the semantic class assigned by classification.
type DocumentType string

const (
	TypeInvoice   DocumentType = "invoice"
	TypeInsurance DocumentType = "insurance"
	TypeID        DocumentType = "id"
	TypeUnknown   DocumentType = "unknown"
)

func ParseDocumentType(s string) (DocumentType, bool) {
	switch t := DocumentType(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeInvoice, TypeInsurance, TypeID, TypeUnknown:
		return t, true
	default:
		return "", false
	}
}

// Known reports whether t carries an entity schema.
func (t DocumentType) Known() bool {
	return t == TypeInvoice || t == TypeInsurance || t == TypeID
}

// KnownTypes lists the classes with an entity schema, in priority order.
func KnownTypes() []DocumentType {
	return []DocumentType{TypeInvoice, TypeInsurance, TypeID}
}

type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	MediaKind   MediaKind      `json:"media_kind"`
	StoragePath string         `json:"storage_path"`
	Type        DocumentType   `json:"doc_type,omitempty"`
	Confidence  float64        `json:"confidence_score,omitempty"`
	NeedsReview bool           `json:"needs_review,omitempty"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
