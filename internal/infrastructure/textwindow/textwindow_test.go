package textwindow

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestHeadKeepsShortText(t *testing.T) {
	if got := Head("invoice total $100", 100); got != "invoice total $100" {
		t.Fatalf("Head() = %q, want input unchanged", got)
	}
	if got := Head("abc", 3); got != "abc" {
		t.Fatalf("Head() = %q, want input unchanged at exact limit", got)
	}
}

func TestHeadDisabledLimit(t *testing.T) {
	text := strings.Repeat("x", 500)
	if got := Head(text, 0); got != text {
		t.Fatalf("Head() with limit 0 truncated to %d bytes", len(got))
	}
	if got := Head(text, -1); got != text {
		t.Fatalf("Head() with negative limit truncated to %d bytes", len(got))
	}
}

func TestHeadCutsAtWordBoundary(t *testing.T) {
	got := Head("hello world foobar", 13)
	if got != "hello world" {
		t.Fatalf("Head() = %q, want %q", got, "hello world")
	}
}

func TestHeadHardCutsSingleLongWord(t *testing.T) {
	text := strings.Repeat("a", 30) + "OVERFLOW"
	got := Head(text, 30)
	if got != strings.Repeat("a", 30) {
		t.Fatalf("Head() = %q, want 30 a's", got)
	}
}

func TestHeadNeverSplitsRunes(t *testing.T) {
	text := strings.Repeat("é", 50)
	for limit := 1; limit < 20; limit++ {
		got := Head(text, limit)
		if !utf8.ValidString(got) {
			t.Fatalf("Head(limit=%d) produced invalid UTF-8 %q", limit, got)
		}
		if len(got) > limit {
			t.Fatalf("Head(limit=%d) returned %d bytes", limit, len(got))
		}
	}
}

func TestHeadIgnoresEarlyBoundary(t *testing.T) {
	// The only space sits in the first quarter of the window; backing up
	// to it would discard most of the window.
	text := "ab " + strings.Repeat("c", 100)
	got := Head(text, 40)
	if len(got) != 40 {
		t.Fatalf("Head() kept %d bytes, want the full window", len(got))
	}
}
