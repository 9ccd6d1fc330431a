package rules

import (
	"context"
	"regexp"
	"strings"

	"github.com/avezina/propdocs/internal/core/domain"
	"github.com/avezina/propdocs/internal/core/schema"
)

var (
	invoiceNumberPattern = regexp.MustCompile(`(?i)invoice\s*#?\s*:?\s*(\S+)`)
	vendorNamePattern    = regexp.MustCompile(`(?i)(?:from|vendor)\s*:?\s*([^\n]+)`)
	dueDatePattern       = regexp.MustCompile(`(?i)due\s+date\s*:?\s*([^\n]+)`)

	policyNumberPattern = regexp.MustCompile(`(?i)policy\s*#?\s*:?\s*(\S+)`)
	policyholderPattern = regexp.MustCompile(`(?i)(?:insured|policyholder)\s*:?\s*([^\n]+)`)
	insurerPattern      = regexp.MustCompile(`(?i)(?:company|insurer)\s*:?\s*([^\n]+)`)
	policyExpiryPattern = regexp.MustCompile(`(?i)expir(?:y|ation)\s+date\s*:?\s*([^\n]+)`)

	idNumberPattern  = regexp.MustCompile(`(?i)(?:DL|ID|License|Passport)\s*#?\s*:?\s*(\S+)`)
	fullNamePattern  = regexp.MustCompile(`(?i)name\s*:?\s*([^\n]+)`)
	dobPattern       = regexp.MustCompile(`(?i)(?:dob|date of birth)\s*:?\s*([^\n]+)`)
	issueDatePattern = regexp.MustCompile(`(?i)issue\s+date\s*:?\s*([^\n]+)`)
	idExpiryPattern  = regexp.MustCompile(`(?i)exp(?:iry)?\s+date\s*:?\s*([^\n]+)`)
	addressPattern   = regexp.MustCompile(`(?i)address\s*:?\s*([^\n]+)`)
	statePattern     = regexp.MustCompile(`(?i)state\s*:?\s*([A-Z]{2})\b`)
	genderPattern    = regexp.MustCompile(`(?i)sex\s*:?\s*([MF])\b`)
)

// Extractor pulls entities out of raw text with a fixed regex battery per
// document type. Fields the battery cannot recognize stay null; the
// result always covers the full schema.
type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

func (e *Extractor) Name() string { return "rules" }

func (e *Extractor) Available() bool { return true }

func (e *Extractor) Extract(_ context.Context, text string, docType domain.DocumentType) (domain.EntityRecord, error) {
	names, err := schema.Names(docType)
	if err != nil {
		return domain.EntityRecord{}, err
	}

	fields := make(map[string]any, len(names))
	switch docType {
	case domain.TypeInvoice:
		fields["invoice_number"] = firstCapture(invoiceNumberPattern, text)
		fields["vendor_name"] = firstCapture(vendorNamePattern, text)
		fields["invoice_date"] = firstDate(text)
		fields["due_date"] = firstCapture(dueDatePattern, text)
		fields["total_amount"] = maxAmount(text)
		fields["vendor_phone"] = firstPhone(text)
	case domain.TypeInsurance:
		fields["policy_number"] = firstCapture(policyNumberPattern, text)
		fields["policyholder_name"] = firstCapture(policyholderPattern, text)
		fields["insurance_company"] = firstCapture(insurerPattern, text)
		fields["coverage_amount"] = maxAmount(text)
		fields["effective_date"] = firstDate(text)
		fields["expiry_date"] = firstCapture(policyExpiryPattern, text)
	case domain.TypeID:
		fields["document_type"] = idSubtype(text)
		fields["id_number"] = firstCapture(idNumberPattern, text)
		fields["full_name"] = firstCapture(fullNamePattern, text)
		fields["date_of_birth"] = firstCapture(dobPattern, text)
		fields["issue_date"] = firstCapture(issueDatePattern, text)
		fields["expiry_date"] = firstCapture(idExpiryPattern, text)
		fields["address"] = firstCapture(addressPattern, text)
		fields["state"] = firstCapture(statePattern, text)
		fields["gender"] = upperCapture(genderPattern, text)
	}

	for _, n := range names {
		if _, ok := fields[n]; !ok {
			fields[n] = nil
		}
	}

	return domain.EntityRecord{
		Type:   docType,
		Fields: fields,
		Source: domain.SourceFallback,
	}, nil
}

// idSubtype mirrors the document_type keyword priority: driver license
// wording first, then passport, then state id.
func idSubtype(text string) any {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "driver") || strings.Contains(lower, "license"):
		return "driver_license"
	case strings.Contains(lower, "passport"):
		return "passport"
	case strings.Contains(lower, "state id"):
		return "state_id"
	default:
		return "unknown"
	}
}
