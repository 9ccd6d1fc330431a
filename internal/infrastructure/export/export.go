// Package export renders typed entity records as downloadable tables.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/avezina/propdocs/internal/core/domain"
	"github.com/avezina/propdocs/internal/core/schema"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType  = "text/csv"
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render builds the export file for one document type. Column order follows
// the field registry, so exports, prompts and tables stay aligned.
func (r *Renderer) Render(docType domain.DocumentType, records []domain.StoredRecord, format domain.ExportFormat) (*domain.ExportFile, error) {
	specs, err := schema.Fields(docType)
	if err != nil {
		return nil, err
	}

	headers := make([]string, 0, len(specs)+5)
	headers = append(headers, "id", "document_id")
	for _, spec := range specs {
		headers = append(headers, spec.Name)
	}
	headers = append(headers, "confidence_score", "needs_review", "created_at")

	switch format {
	case domain.ExportXLSX:
		data, err := renderXLSX(docType, headers, records)
		if err != nil {
			return nil, err
		}
		return &domain.ExportFile{
			Filename:    exportName(docType) + ".xlsx",
			ContentType: xlsxContentType,
			Data:        data,
		}, nil
	case domain.ExportCSV:
		data, err := renderCSV(headers, records)
		if err != nil {
			return nil, err
		}
		return &domain.ExportFile{
			Filename:    exportName(docType) + ".csv",
			ContentType: csvContentType,
			Data:        data,
		}, nil
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "render export", fmt.Errorf("unsupported format %q", format))
	}
}

func exportName(docType domain.DocumentType) string {
	switch docType {
	case domain.TypeInsurance:
		return "insurance"
	case domain.TypeID:
		return "ids"
	default:
		return "invoices"
	}
}

func renderCSV(headers []string, records []domain.StoredRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(headers); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		row := make([]string, 0, len(headers))
		for _, v := range recordValues(headers, rec) {
			row = append(row, domain.FieldString(v))
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func renderXLSX(docType domain.DocumentType, headers []string, records []domain.StoredRecord) ([]byte, error) {
	f := excelize.NewFile()
	sheet := sheetName(docType)
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for rowIdx, rec := range records {
		for colIdx, v := range recordValues(headers, rec) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, cellValue(v))
		}
	}
	_ = f.SetColWidth(sheet, "A", "B", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func sheetName(docType domain.DocumentType) string {
	switch docType {
	case domain.TypeInsurance:
		return "Insurance"
	case domain.TypeID:
		return "IDs"
	default:
		return "Invoices"
	}
}

// recordValues lists one record's values in header order. The leading and
// trailing headers are fixed; everything between them is a schema field.
func recordValues(headers []string, rec domain.StoredRecord) []any {
	values := make([]any, 0, len(headers))
	values = append(values, rec.ID, rec.DocumentID)
	for _, name := range headers[2 : len(headers)-3] {
		values = append(values, rec.Fields[name])
	}
	values = append(values, rec.Confidence, rec.NeedsReview, rec.CreatedAt.UTC().Format(time.RFC3339))
	return values
}

// cellValue keeps native numbers and booleans in XLSX cells.
func cellValue(v any) any {
	if v == nil {
		return ""
	}
	return v
}
