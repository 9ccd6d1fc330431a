package openrouter

import (
	"context"
	"strings"

	"github.com/avezina/propdocs/internal/core/domain"
)

// Classifier asks the chat model for a category name. It is the primary
// strategy in the classification chain; the keyword classifier picks up
// when it is unavailable or fails.
type Classifier struct {
	client   *Client
	maxChars int
}

func NewClassifier(client *Client, maxChars int) *Classifier {
	if maxChars <= 0 {
		maxChars = defaultClassifyMaxChars
	}
	return &Classifier{client: client, maxChars: maxChars}
}

func (c *Classifier) Name() string { return "openrouter" }

func (c *Classifier) Available() bool { return c.client.Configured() }

func (c *Classifier) Classify(ctx context.Context, text string) (domain.DocumentType, error) {
	content, err := c.client.ChatComplete(ctx, classificationPrompt(text, c.maxChars), classifyMaxTokens)
	if err != nil {
		return domain.TypeUnknown, err
	}
	return parseClassification(content), nil
}

// parseClassification is deliberately lenient: the first known category
// name contained anywhere in the lowercased response wins, so answers like
// "Category: invoice." still classify.
func parseClassification(content string) domain.DocumentType {
	lower := strings.ToLower(strings.TrimSpace(content))
	for _, docType := range []domain.DocumentType{domain.TypeInvoice, domain.TypeInsurance, domain.TypeID, domain.TypeUnknown} {
		if strings.Contains(lower, string(docType)) {
			return docType
		}
	}
	return domain.TypeUnknown
}
