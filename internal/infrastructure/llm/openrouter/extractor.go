package openrouter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avezina/propdocs/internal/core/domain"
	"github.com/avezina/propdocs/internal/core/schema"
)

// Extractor asks the chat model for a JSON object of entity fields and
// accepts the answer only when it passes cleaning and schema validation
// as a whole. A rejected answer surfaces as an error so the chain can
// fall through to the rules extractor.
type Extractor struct {
	client   *Client
	maxChars int
}

func NewExtractor(client *Client, maxChars int) *Extractor {
	if maxChars <= 0 {
		maxChars = defaultExtractMaxChars
	}
	return &Extractor{client: client, maxChars: maxChars}
}

func (e *Extractor) Name() string { return "openrouter" }

func (e *Extractor) Available() bool { return e.client.Configured() }

func (e *Extractor) Extract(ctx context.Context, text string, docType domain.DocumentType) (domain.EntityRecord, error) {
	prompt, err := extractionPrompt(docType, text, e.maxChars)
	if err != nil {
		return domain.EntityRecord{}, err
	}

	content, err := e.client.ChatComplete(ctx, prompt, extractMaxTokens)
	if err != nil {
		return domain.EntityRecord{}, err
	}

	span, ok := extractJSONSpan(content)
	if !ok {
		return domain.EntityRecord{}, fmt.Errorf("extract %s entities: no json object in model response", docType)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return domain.EntityRecord{}, fmt.Errorf("extract %s entities: parse json: %w", docType, err)
	}

	fields, err := schema.Clean(docType, raw)
	if err != nil {
		return domain.EntityRecord{}, err
	}
	if err := schema.Validate(docType, fields); err != nil {
		return domain.EntityRecord{}, fmt.Errorf("extract %s entities: %w", docType, err)
	}

	return domain.EntityRecord{
		Type:   docType,
		Fields: fields,
		Source: domain.SourceModel,
	}, nil
}
