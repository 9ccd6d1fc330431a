// Package textwindow bounds the text handed to remote backends. OCR
// output can run to hundreds of kilobytes; prompts, embedding inputs and
// vector payloads all want a bounded leading window of it.
package textwindow

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Head returns at most maxChars bytes from the start of text. The cut
// never splits a UTF-8 sequence and prefers the last word boundary when
// one falls in the final quarter of the window. maxChars <= 0 disables
// the limit.
func Head(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}

	cut := maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	head := text[:cut]

	if idx := strings.LastIndexFunc(head, unicode.IsSpace); idx >= cut*3/4 {
		head = head[:idx]
	}
	return strings.TrimRightFunc(head, unicode.IsSpace)
}
