package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/avezina/propdocs/internal/core/domain"
	"github.com/avezina/propdocs/internal/core/schema"
)

// RecordRepository keeps one table per document type. Columns are derived
// from the field registry, so schema, prompts and DDL cannot drift apart.
type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func recordTable(docType domain.DocumentType) (string, error) {
	switch docType {
	case domain.TypeInvoice:
		return "invoices", nil
	case domain.TypeInsurance:
		return "insurance_policies", nil
	case domain.TypeID:
		return "id_documents", nil
	default:
		return "", domain.WrapError(domain.ErrUnknownDocumentType, "resolve record table", fmt.Errorf("doc type %q", docType))
	}
}

func columnType(kind schema.FieldKind) string {
	if kind == schema.KindNumber {
		return "DOUBLE PRECISION"
	}
	return "TEXT"
}

func (r *RecordRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026081502)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	for _, docType := range domain.KnownTypes() {
		ddl, err := tableDDL(docType)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create %s table: %w", docType, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func tableDDL(docType domain.DocumentType) (string, error) {
	table, err := recordTable(docType)
	if err != nil {
		return "", err
	}
	specs, err := schema.Fields(docType)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", table)
	b.WriteString("\tid BIGSERIAL PRIMARY KEY,\n")
	b.WriteString("\tdocument_id TEXT NOT NULL DEFAULT '',\n")
	for _, spec := range specs {
		fmt.Fprintf(&b, "\t%s %s,\n", spec.Name, columnType(spec.Kind))
	}
	b.WriteString("\tconfidence_score DOUBLE PRECISION NOT NULL DEFAULT 0,\n")
	b.WriteString("\tneeds_review BOOLEAN NOT NULL DEFAULT FALSE,\n")
	b.WriteString("\tcreated_at TIMESTAMPTZ NOT NULL DEFAULT now()\n")
	b.WriteString(");\n")
	fmt.Fprintf(&b, "CREATE INDEX IF NOT EXISTS idx_%s_document_id ON %s(document_id);\n", table, table)
	fmt.Fprintf(&b, "CREATE INDEX IF NOT EXISTS idx_%s_created_at ON %s(created_at DESC);", table, table)
	return b.String(), nil
}

func (r *RecordRepository) InsertRecord(ctx context.Context, documentID string, rec domain.EntityRecord) (int64, error) {
	table, err := recordTable(rec.Type)
	if err != nil {
		return 0, err
	}
	specs, err := schema.Fields(rec.Type)
	if err != nil {
		return 0, err
	}

	columns := make([]string, 0, len(specs)+3)
	placeholders := make([]string, 0, len(specs)+3)
	args := make([]any, 0, len(specs)+3)
	add := func(column string, value any) {
		columns = append(columns, column)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
		args = append(args, value)
	}

	add("document_id", documentID)
	for _, spec := range specs {
		add(spec.Name, rec.Fields[spec.Name])
	}
	add("confidence_score", rec.Confidence)
	add("needs_review", rec.NeedsReview)

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
	)

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert %s record: %w", rec.Type, err)
	}
	return id, nil
}

func (r *RecordRepository) ListByType(ctx context.Context, docType domain.DocumentType, limit, offset int) ([]domain.StoredRecord, error) {
	table, err := recordTable(docType)
	if err != nil {
		return nil, err
	}
	specs, err := schema.Fields(docType)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2",
		strings.Join(selectColumns(specs), ", "), table,
	)
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", docType, err)
	}
	defer rows.Close()

	var out []domain.StoredRecord
	for rows.Next() {
		rec, err := scanRecord(docType, specs, rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s record: %w", docType, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s records: %w", docType, err)
	}
	return out, nil
}

func (r *RecordRepository) GetByID(ctx context.Context, docType domain.DocumentType, id int64) (*domain.StoredRecord, error) {
	table, err := recordTable(docType)
	if err != nil {
		return nil, err
	}
	specs, err := schema.Fields(docType)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE id = $1",
		strings.Join(selectColumns(specs), ", "), table,
	)
	rec, err := scanRecord(docType, specs, r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrRecordNotFound, "get record", fmt.Errorf("%s id %d: %w", docType, id, err))
		}
		return nil, fmt.Errorf("scan %s record: %w", docType, err)
	}
	return &rec, nil
}

// DeleteByID removes one record and reports the owning document plus how
// many records that document still has in the table, so the caller can
// decide whether the vector point should go too.
func (r *RecordRepository) DeleteByID(ctx context.Context, docType domain.DocumentType, id int64) (string, int64, error) {
	table, err := recordTable(docType)
	if err != nil {
		return "", 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var documentID string
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1 RETURNING document_id", table)
	if err := tx.QueryRowContext(ctx, query, id).Scan(&documentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, domain.WrapError(domain.ErrRecordNotFound, "delete record", fmt.Errorf("%s id %d: %w", docType, id, err))
		}
		return "", 0, fmt.Errorf("delete %s record: %w", docType, err)
	}

	var remaining int64
	if documentID != "" {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE document_id = $1", table)
		if err := tx.QueryRowContext(ctx, countQuery, documentID).Scan(&remaining); err != nil {
			return "", 0, fmt.Errorf("count remaining records: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", 0, fmt.Errorf("commit delete tx: %w", err)
	}
	return documentID, remaining, nil
}

func (r *RecordRepository) CountByType(ctx context.Context, docType domain.DocumentType) (int64, error) {
	table, err := recordTable(docType)
	if err != nil {
		return 0, err
	}

	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s records: %w", docType, err)
	}
	return count, nil
}

func selectColumns(specs []schema.FieldSpec) []string {
	columns := make([]string, 0, len(specs)+5)
	columns = append(columns, "id", "document_id")
	for _, spec := range specs {
		columns = append(columns, spec.Name)
	}
	columns = append(columns, "confidence_score", "needs_review", "created_at")
	return columns
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(docType domain.DocumentType, specs []schema.FieldSpec, row rowScanner) (domain.StoredRecord, error) {
	rec := domain.StoredRecord{
		Type:   docType,
		Fields: make(map[string]any, len(specs)),
	}

	dests := make([]any, 0, len(specs)+5)
	dests = append(dests, &rec.ID, &rec.DocumentID)
	holders := make([]any, len(specs))
	for i, spec := range specs {
		if spec.Kind == schema.KindNumber {
			holders[i] = new(sql.NullFloat64)
		} else {
			holders[i] = new(sql.NullString)
		}
		dests = append(dests, holders[i])
	}
	dests = append(dests, &rec.Confidence, &rec.NeedsReview, &rec.CreatedAt)

	if err := row.Scan(dests...); err != nil {
		return domain.StoredRecord{}, err
	}

	for i, spec := range specs {
		switch holder := holders[i].(type) {
		case *sql.NullFloat64:
			if holder.Valid {
				rec.Fields[spec.Name] = holder.Float64
			} else {
				rec.Fields[spec.Name] = nil
			}
		case *sql.NullString:
			if holder.Valid {
				rec.Fields[spec.Name] = holder.String
			} else {
				rec.Fields[spec.Name] = nil
			}
		}
	}
	return rec, nil
}
