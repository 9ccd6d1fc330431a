package schema

import (
	"strconv"
	"strings"

	"github.com/avezina/propdocs/internal/core/domain"
)

// Placeholder strings a model emits instead of a proper JSON null.
var placeholders = map[string]struct{}{
	"":        {},
	"null":    {},
	"none":    {},
	"n/a":     {},
	"unknown": {},
}

// Clean normalizes raw model output for a document type: keys outside the
// schema are dropped, strings are trimmed, placeholder strings become nil,
// numeric strings on number fields are coerced to float64. Values it
// cannot normalize pass through for validation to reject.
func Clean(t domain.DocumentType, fields map[string]any) (map[string]any, error) {
	specs, err := Fields(t)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(specs))
	for _, spec := range specs {
		v, ok := fields[spec.Name]
		if !ok {
			continue
		}
		out[spec.Name] = cleanValue(spec, v)
	}
	return out, nil
}

func cleanValue(spec FieldSpec, v any) any {
	s, isString := v.(string)
	if !isString {
		return v
	}

	s = strings.TrimSpace(s)
	if _, ok := placeholders[strings.ToLower(s)]; ok {
		return nil
	}
	if spec.Kind == KindNumber {
		if n, ok := parseAmount(s); ok {
			return n
		}
	}
	return s
}

// parseAmount reads a plain or currency-formatted number ("1234.5",
// "$1,234.50").
func parseAmount(s string) (float64, bool) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if cleaned == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
