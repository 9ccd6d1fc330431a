package schema

import (
	"testing"

	"github.com/avezina/propdocs/internal/core/domain"
)

func TestFieldsKnownTypes(t *testing.T) {
	for _, docType := range domain.KnownTypes() {
		specs, err := Fields(docType)
		if err != nil {
			t.Fatalf("Fields(%s): %v", docType, err)
		}
		if len(specs) != 10 {
			t.Fatalf("Fields(%s) returned %d specs, want 10", docType, len(specs))
		}
	}

	if _, err := Fields(domain.TypeUnknown); !domain.IsKind(err, domain.ErrUnknownDocumentType) {
		t.Fatalf("Fields(unknown) error = %v, want ErrUnknownDocumentType", err)
	}
}

func TestFieldOrderStable(t *testing.T) {
	names, err := Names(domain.TypeInvoice)
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	if names[0] != "invoice_number" || names[len(names)-1] != "vendor_phone" {
		t.Fatalf("invoice field order changed: %v", names)
	}
}

func TestCleanNormalizesValues(t *testing.T) {
	raw := map[string]any{
		"invoice_number":      "  INV-42  ",
		"vendor_name":         "None",
		"invoice_date":        "N/A",
		"due_date":            "04/01/2024",
		"total_amount":        "$1,234.50",
		"subtotal":            1000,
		"tax_amount":          nil,
		"service_description": "null",
		"vendor_address":      "UNKNOWN",
		"vendor_phone":        "",
		"hallucinated_field":  "drop me",
	}

	cleaned, err := Clean(domain.TypeInvoice, raw)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}

	if got := cleaned["invoice_number"]; got != "INV-42" {
		t.Errorf("invoice_number = %v, want trimmed string", got)
	}
	for _, name := range []string{"vendor_name", "invoice_date", "service_description", "vendor_address", "vendor_phone"} {
		if cleaned[name] != nil {
			t.Errorf("%s = %v, want nil for placeholder", name, cleaned[name])
		}
	}
	if got := cleaned["due_date"]; got != "04/01/2024" {
		t.Errorf("due_date = %v, want raw date string", got)
	}
	if got := cleaned["total_amount"]; got != 1234.5 {
		t.Errorf("total_amount = %v, want coerced 1234.5", got)
	}
	if _, exists := cleaned["hallucinated_field"]; exists {
		t.Error("unknown key survived cleaning")
	}
}

func TestCleanLeavesUnparsableNumberStrings(t *testing.T) {
	cleaned, err := Clean(domain.TypeInvoice, map[string]any{"total_amount": "five hundred"})
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if got := cleaned["total_amount"]; got != "five hundred" {
		t.Fatalf("total_amount = %v, want original string for validation to reject", got)
	}
}

func TestValidate(t *testing.T) {
	full := func(overrides map[string]any) map[string]any {
		out := map[string]any{}
		names, err := Names(domain.TypeInvoice)
		if err != nil {
			t.Fatalf("Names: %v", err)
		}
		for _, n := range names {
			out[n] = nil
		}
		for k, v := range overrides {
			out[k] = v
		}
		return out
	}

	tests := []struct {
		name    string
		fields  map[string]any
		wantErr bool
	}{
		{
			name:   "all null is valid",
			fields: full(nil),
		},
		{
			name:   "typed values valid",
			fields: full(map[string]any{"invoice_number": "1234", "total_amount": 500.0}),
		},
		{
			name:   "integers normalized before validation",
			fields: full(map[string]any{"total_amount": 500}),
		},
		{
			name: "missing key rejected",
			fields: func() map[string]any {
				f := full(nil)
				delete(f, "subtotal")
				return f
			}(),
			wantErr: true,
		},
		{
			name:    "number in string field rejected",
			fields:  full(map[string]any{"vendor_name": 12.0}),
			wantErr: true,
		},
		{
			name:    "string in number field rejected",
			fields:  full(map[string]any{"total_amount": "lots"}),
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(domain.TypeInvoice, tc.fields)
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestValidateUnknownType(t *testing.T) {
	if err := Validate(domain.TypeUnknown, map[string]any{}); !domain.IsKind(err, domain.ErrUnknownDocumentType) {
		t.Fatalf("Validate(unknown) error = %v, want ErrUnknownDocumentType", err)
	}
}
