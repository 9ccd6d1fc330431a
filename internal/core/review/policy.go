// Package review decides whether an extracted record needs a human look.
package review

import (
	"github.com/avezina/propdocs/internal/core/domain"
	"github.com/avezina/propdocs/internal/core/schema"
)

const DefaultThreshold = 0.7

// Policy computes the synthetic fields of an entity record. Confidence is
// the fraction of schema fields with a non-null value; a record needs
// review when confidence falls below the threshold or when it came from
// the rule-based fallback.
type Policy struct {
	Threshold float64
}

func NewPolicy(threshold float64) Policy {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return Policy{Threshold: threshold}
}

func (p Policy) Evaluate(rec *domain.EntityRecord) {
	total := schema.Size(rec.Type)
	if total == 0 {
		rec.Confidence = 0
		rec.NeedsReview = true
		return
	}

	filled := 0
	for _, v := range rec.Fields {
		if v != nil {
			filled++
		}
	}
	rec.Confidence = float64(filled) / float64(total)
	rec.NeedsReview = rec.Confidence < p.Threshold || rec.Source == domain.SourceFallback
}
