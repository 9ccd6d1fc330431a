package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avezina/propdocs/internal/core/domain"
)

func chatServer(t *testing.T, content string, capture *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		response := map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": content}}},
		}
		_ = json.NewEncoder(w).Encode(response)
	}))
}

func TestClassifierParsesModelAnswer(t *testing.T) {
	cases := []struct {
		content string
		want    domain.DocumentType
	}{
		{"invoice", domain.TypeInvoice},
		{"  Insurance\n", domain.TypeInsurance},
		{"The category is id.", domain.TypeID},
		{"unknown", domain.TypeUnknown},
		{"this is a recipe", domain.TypeUnknown},
	}
	for _, tc := range cases {
		server := chatServer(t, tc.content, nil)
		classifier := NewClassifier(New(server.URL, "sk-test", "model"), 0)
		got, err := classifier.Classify(context.Background(), "some document text")
		server.Close()
		if err != nil {
			t.Fatalf("Classify(%q) error = %v", tc.content, err)
		}
		if got != tc.want {
			t.Fatalf("Classify(%q) = %s, want %s", tc.content, got, tc.want)
		}
	}
}

func TestClassifierPromptAndTokenBudget(t *testing.T) {
	var payload map[string]any
	server := chatServer(t, "invoice", &payload)
	defer server.Close()

	classifier := NewClassifier(New(server.URL, "sk-test", "model"), 0)
	if _, err := classifier.Classify(context.Background(), "ACME invoice #42"); err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if payload["max_tokens"] != float64(classifyMaxTokens) {
		t.Fatalf("unexpected max_tokens %v", payload["max_tokens"])
	}
	messages, _ := payload["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("expected single message, got %d", len(messages))
	}
	message, _ := messages[0].(map[string]any)
	prompt, _ := message["content"].(string)
	if !strings.Contains(prompt, "ACME invoice #42") {
		t.Fatalf("prompt missing document text: %s", prompt)
	}
	if !strings.Contains(prompt, "property management company") {
		t.Fatalf("prompt missing instruction header: %s", prompt)
	}
}

func TestClassifierTruncatesDocumentText(t *testing.T) {
	var payload map[string]any
	server := chatServer(t, "invoice", &payload)
	defer server.Close()

	text := strings.Repeat("a", 30) + "OVERFLOW"
	classifier := NewClassifier(New(server.URL, "sk-test", "model"), 30)
	if _, err := classifier.Classify(context.Background(), text); err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	messages, _ := payload["messages"].([]any)
	message, _ := messages[0].(map[string]any)
	prompt, _ := message["content"].(string)
	if strings.Contains(prompt, "OVERFLOW") {
		t.Fatalf("expected document text truncated, got %s", prompt)
	}
}

func TestClassifierUnavailableWithoutKey(t *testing.T) {
	classifier := NewClassifier(New("http://localhost:0", "", "model"), 0)
	if classifier.Available() {
		t.Fatalf("classifier without key must report unavailable")
	}
	if name := classifier.Name(); name != "openrouter" {
		t.Fatalf("unexpected name %q", name)
	}
}
