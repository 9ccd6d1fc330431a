package review

import (
	"testing"

	"github.com/avezina/propdocs/internal/core/domain"
	"github.com/avezina/propdocs/internal/core/schema"
)

func invoiceFields(t *testing.T, filled int) map[string]any {
	t.Helper()
	names, err := schema.Names(domain.TypeInvoice)
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	fields := make(map[string]any, len(names))
	for i, n := range names {
		if i < filled {
			fields[n] = "x"
		} else {
			fields[n] = nil
		}
	}
	return fields
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name            string
		filled          int
		source          domain.ExtractionSource
		wantConfidence  float64
		wantNeedsReview bool
	}{
		{"model at threshold", 7, domain.SourceModel, 0.7, false},
		{"model below threshold", 6, domain.SourceModel, 0.6, true},
		{"model complete", 10, domain.SourceModel, 1.0, false},
		{"fallback flagged regardless of confidence", 10, domain.SourceFallback, 1.0, true},
		{"empty record", 0, domain.SourceModel, 0.0, true},
	}

	policy := NewPolicy(DefaultThreshold)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := domain.EntityRecord{
				Type:   domain.TypeInvoice,
				Fields: invoiceFields(t, tc.filled),
				Source: tc.source,
			}
			policy.Evaluate(&rec)

			if rec.Confidence != tc.wantConfidence {
				t.Errorf("confidence = %v, want %v", rec.Confidence, tc.wantConfidence)
			}
			if rec.NeedsReview != tc.wantNeedsReview {
				t.Errorf("needs_review = %v, want %v", rec.NeedsReview, tc.wantNeedsReview)
			}
		})
	}
}

func TestNewPolicyClampsBadThresholds(t *testing.T) {
	for _, bad := range []float64{0, -1, 1.5} {
		if p := NewPolicy(bad); p.Threshold != DefaultThreshold {
			t.Errorf("NewPolicy(%v).Threshold = %v, want default", bad, p.Threshold)
		}
	}
}

func TestEvaluateUnknownTypeAlwaysFlagged(t *testing.T) {
	rec := domain.EntityRecord{Type: domain.TypeUnknown, Source: domain.SourceModel}
	NewPolicy(DefaultThreshold).Evaluate(&rec)
	if !rec.NeedsReview || rec.Confidence != 0 {
		t.Fatalf("unknown type record = %+v, want flagged with zero confidence", rec)
	}
}
