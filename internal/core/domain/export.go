package domain

import "strings"

// ExportFormat selects the rendering of a record export.
type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"
)

func ParseExportFormat(s string) (ExportFormat, bool) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ExportXLSX, ExportCSV:
		return f, true
	case "":
		return ExportXLSX, true
	default:
		return "", false
	}
}

// ExportFile is a rendered record table ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
