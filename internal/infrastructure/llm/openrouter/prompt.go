package openrouter

import (
	"fmt"
	"strings"

	"github.com/avezina/propdocs/internal/core/domain"
	"github.com/avezina/propdocs/internal/core/schema"
	"github.com/avezina/propdocs/internal/infrastructure/textwindow"
)

const (
	defaultClassifyMaxChars = 2000
	defaultExtractMaxChars  = 3000

	classifyMaxTokens = 10
	extractMaxTokens  = 500
)

const classificationPromptTemplate = `You are a document classifier for a property management company.

Analyze the following document and classify it into ONE of these categories:
- invoice (vendor bills, payment requests)
- insurance (renters insurance policies, coverage documents)
- id (driver's license, passport, state ID, tenant identification)
- unknown (if none of the above)

Document text:
%s

Respond with ONLY the category name in lowercase, nothing else.`

func classificationPrompt(text string, maxChars int) string {
	return fmt.Sprintf(classificationPromptTemplate, textwindow.Head(text, maxChars))
}

const extractionPromptTemplate = `Extract the following information from this %s document. Return ONLY valid JSON with these exact keys:

{
%s}

Document:
%s

Return ONLY the JSON object, no explanation or markdown formatting.`

// extractionPrompt builds the per-type prompt from the field registry, so
// prompt keys and validation keys can never drift apart.
func extractionPrompt(docType domain.DocumentType, text string, maxChars int) (string, error) {
	specs, err := schema.Fields(docType)
	if err != nil {
		return "", err
	}

	var keys strings.Builder
	for i, field := range specs {
		fmt.Fprintf(&keys, "  %q: %q", field.Name, fieldHint(docType, field))
		if i < len(specs)-1 {
			keys.WriteString(",")
		}
		keys.WriteString("\n")
	}

	return fmt.Sprintf(extractionPromptTemplate, docNoun(docType), keys.String(), textwindow.Head(text, maxChars)), nil
}

func docNoun(docType domain.DocumentType) string {
	switch docType {
	case domain.TypeInvoice:
		return "invoice"
	case domain.TypeInsurance:
		return "insurance"
	case domain.TypeID:
		return "ID"
	default:
		return string(docType)
	}
}

func fieldHint(docType domain.DocumentType, field schema.FieldSpec) string {
	if docType == domain.TypeID && field.Name == "document_type" {
		return "string (driver_license, passport, state_id) or null"
	}
	switch field.Kind {
	case schema.KindNumber:
		return "number or null"
	case schema.KindDate:
		return "YYYY-MM-DD or null"
	default:
		return "string or null"
	}
}
