// Package openrouter talks to the OpenRouter chat-completions API and
// exposes the remote classification and extraction strategies built on it.
package openrouter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/avezina/propdocs/internal/infrastructure/resilience"
)

const chatTemperature = 0.1

type Client struct {
	baseURL string
	apiKey  string
	model   string

	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
	usage      UsageRecorder
}

// UsageRecorder receives token accounting from successful calls.
type UsageRecorder interface {
	RecordTokenUsage(model string, promptTokens, completionTokens int)
}

type Options struct {
	Timeout            time.Duration
	MaxRequestsPerSec  float64
	ResilienceExecutor *resilience.Executor
	UsageRecorder      UsageRecorder
}

func New(baseURL, apiKey, model string) *Client {
	return NewWithOptions(baseURL, apiKey, model, Options{})
}

func NewWithOptions(baseURL, apiKey, model string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	rps := options.MaxRequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		executor:   options.ResilienceExecutor,
		usage:      options.UsageRecorder,
	}
}

// Configured reports whether a credential is present. Without one the
// strategies built on this client report themselves unavailable and the
// chains never call it.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// ChatComplete sends a single-message prompt and returns the trimmed
// completion. One attempt only: remote failures surface immediately so
// callers can fall through to the local strategy.
func (c *Client) ChatComplete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("openrouter api key not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("openrouter rate limit wait: %w", err)
	}

	request := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: chatTemperature,
		MaxTokens:   maxTokens,
	}

	var response chatResponse
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/chat/completions", request, &response, "chat")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, resilience.OpChatComplete, call, classifyOpenRouterError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("openrouter chat", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("openrouter chat: empty choices in response")
	}
	if c.usage != nil {
		c.usage.RecordTokenUsage(c.model, response.Usage.PromptTokens, response.Usage.CompletionTokens)
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
