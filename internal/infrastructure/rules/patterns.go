package rules

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	amountPattern = regexp.MustCompile(`\$\s*([\d,]+\.?\d*)`)
	phonePattern  = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)

	// Tried in priority order; the first pattern with any match wins.
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{1,2}[-/]\d{1,2}[-/]\d{2,4}`),
		regexp.MustCompile(`\d{4}[-/]\d{1,2}[-/]\d{1,2}`),
		regexp.MustCompile(`(?i)(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d{1,2},?\s+\d{4}`),
	}
)

// firstCapture returns the trimmed first capture group, nil when the
// pattern finds nothing useful.
func firstCapture(re *regexp.Regexp, text string) any {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v := strings.TrimSpace(m[1])
	if v == "" {
		return nil
	}
	return v
}

// maxAmount returns the largest dollar amount in the text; on typical
// documents that is the grand total.
func maxAmount(text string) any {
	matches := amountPattern.FindAllStringSubmatch(text, -1)
	var best float64
	found := false
	for _, m := range matches {
		n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		if !found || n > best {
			best = n
			found = true
		}
	}
	if !found {
		return nil
	}
	return best
}

func firstDate(text string) any {
	for _, re := range datePatterns {
		if m := re.FindString(text); m != "" {
			return m
		}
	}
	return nil
}

func firstPhone(text string) any {
	if m := phonePattern.FindString(text); m != "" {
		return m
	}
	return nil
}

// upperCapture is firstCapture with the value uppercased, for single
// letter codes matched case-insensitively.
func upperCapture(re *regexp.Regexp, text string) any {
	v := firstCapture(re, text)
	if s, ok := v.(string); ok {
		return strings.ToUpper(s)
	}
	return v
}
