// Package schema is the single source of truth for the entity schemas of
// the known document types. Prompt construction, fallback extraction,
// cleaning, validation, table DDL and export headers all consult it.
package schema

import (
	"fmt"

	"github.com/avezina/propdocs/internal/core/domain"
)

type FieldKind int

const (
	KindString FieldKind = iota
	KindNumber
	// KindDate fields hold date strings as extracted; the kind only
	// informs prompt wording and export formatting.
	KindDate
)

type FieldSpec struct {
	Name string
	Kind FieldKind
}

var fieldsByType = map[domain.DocumentType][]FieldSpec{
	domain.TypeInvoice: {
		{Name: "invoice_number", Kind: KindString},
		{Name: "vendor_name", Kind: KindString},
		{Name: "invoice_date", Kind: KindDate},
		{Name: "due_date", Kind: KindDate},
		{Name: "total_amount", Kind: KindNumber},
		{Name: "subtotal", Kind: KindNumber},
		{Name: "tax_amount", Kind: KindNumber},
		{Name: "service_description", Kind: KindString},
		{Name: "vendor_address", Kind: KindString},
		{Name: "vendor_phone", Kind: KindString},
	},
	domain.TypeInsurance: {
		{Name: "policy_number", Kind: KindString},
		{Name: "policyholder_name", Kind: KindString},
		{Name: "insurance_company", Kind: KindString},
		{Name: "policy_type", Kind: KindString},
		{Name: "coverage_amount", Kind: KindNumber},
		{Name: "premium_amount", Kind: KindNumber},
		{Name: "effective_date", Kind: KindDate},
		{Name: "expiry_date", Kind: KindDate},
		{Name: "property_address", Kind: KindString},
		{Name: "deductible", Kind: KindNumber},
	},
	domain.TypeID: {
		{Name: "document_type", Kind: KindString},
		{Name: "id_number", Kind: KindString},
		{Name: "full_name", Kind: KindString},
		{Name: "date_of_birth", Kind: KindDate},
		{Name: "issue_date", Kind: KindDate},
		{Name: "expiry_date", Kind: KindDate},
		{Name: "address", Kind: KindString},
		{Name: "state", Kind: KindString},
		{Name: "country", Kind: KindString},
		{Name: "gender", Kind: KindString},
	},
}

// Fields returns the ordered field specs for a known document type.
func Fields(t domain.DocumentType) ([]FieldSpec, error) {
	specs, ok := fieldsByType[t]
	if !ok {
		return nil, domain.WrapError(domain.ErrUnknownDocumentType, "schema lookup", fmt.Errorf("no entity schema for type %q", t))
	}
	return specs, nil
}

// Names returns the ordered field names for a known document type.
func Names(t domain.DocumentType) ([]string, error) {
	specs, err := Fields(t)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(specs))
	for i, f := range specs {
		names[i] = f.Name
	}
	return names, nil
}

// Size returns the number of schema fields for t, zero for unknown types.
func Size(t domain.DocumentType) int {
	return len(fieldsByType[t])
}
