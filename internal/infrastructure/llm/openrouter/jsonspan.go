package openrouter

import "strings"

// extractJSONSpan returns the first balanced JSON object inside raw. Models
// routinely wrap their output in markdown fences or prose; scanning for a
// balanced brace span tolerates both. String literals and escapes are
// tracked so braces inside field values do not unbalance the scan.
func extractJSONSpan(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}
