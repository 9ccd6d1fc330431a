// Package rules holds the deterministic classification and extraction
// strategies. They are the terminal links of both strategy chains: always
// available, never erroring, producing a best-effort result offline.
package rules

import (
	"context"
	"strings"

	"github.com/avezina/propdocs/internal/core/domain"
)

// minKeywordScore is the minimum winning score; below it the text is
// considered unclassifiable.
const minKeywordScore = 2

// keywordsByType is ordered: on a tie the earlier type wins.
var keywordsByType = []struct {
	docType  domain.DocumentType
	keywords []string
}{
	{domain.TypeInvoice, []string{
		"invoice", "bill", "payment", "amount due", "vendor", "total:", "subtotal", "remit to",
	}},
	{domain.TypeInsurance, []string{
		"insurance", "policy", "coverage", "premium", "insured", "policyholder", "deductible", "liability",
	}},
	{domain.TypeID, []string{
		"driver license", "drivers license", "passport", "state id", "identification",
		"date of birth", "license number", "dl number", "sex:", "height:", "eyes:",
	}},
}

// Classifier scores text against per-type keyword lists; each keyword
// present as a substring counts once.
type Classifier struct{}

func NewClassifier() *Classifier { return &Classifier{} }

func (c *Classifier) Name() string { return "keyword" }

func (c *Classifier) Available() bool { return true }

func (c *Classifier) Classify(_ context.Context, text string) (domain.DocumentType, error) {
	lower := strings.ToLower(text)

	best := domain.TypeUnknown
	bestScore := 0
	for _, entry := range keywordsByType {
		score := 0
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			best = entry.docType
			bestScore = score
		}
	}

	if bestScore < minKeywordScore {
		return domain.TypeUnknown, nil
	}
	return best, nil
}
