package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	minLLMTimeout = 10 * time.Second
	maxLLMTimeout = 30 * time.Second
)

type Config struct {
	APIPort  string
	LogLevel string

	PostgresDSN string

	NATSURL     string
	NATSSubject string

	StoragePath string

	QdrantURL        string
	QdrantCollection string

	OllamaURL        string
	OllamaEmbedModel string

	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenRouterModel   string
	LLMTimeout        time.Duration
	LLMMaxRPS         int

	TesseractBin string
	PdftoppmBin  string
	OCRLanguage  string
	OCRPSM       int
	OCRMaxPages  int
	RenderDPI    int
	MinTextChars int

	ClassifyMaxChars int
	ExtractMaxChars  int
	ReviewThreshold  float64

	MaxUploadBytes    int64
	MaxConns          int
	APIRateLimitRPS   int
	APIRateLimitBurst int
	APIMaxConcurrent  int
	APIQueueWait      time.Duration

	WorkerMetricsPort string
}

// Load reads configuration from the environment, optionally overlaid on a
// flat YAML file named by CONFIG_FILE. Environment values win over file
// values. The three backing-store addresses have no safe default and are
// required.
func Load() (Config, error) {
	src, err := newSource(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIPort:  src.str("API_PORT", "8080"),
		LogLevel: src.str("LOG_LEVEL", "info"),

		PostgresDSN: src.str("POSTGRES_DSN", ""),

		NATSURL:     src.str("NATS_URL", ""),
		NATSSubject: src.str("NATS_SUBJECT", "documents.ingested"),

		StoragePath: src.str("STORAGE_PATH", "./data/storage"),

		QdrantURL:        src.str("QDRANT_URL", ""),
		QdrantCollection: src.str("QDRANT_COLLECTION", "documents"),

		OllamaURL:        src.str("OLLAMA_URL", "http://localhost:11434"),
		OllamaEmbedModel: src.str("OLLAMA_EMBED_MODEL", "nomic-embed-text"),

		OpenRouterAPIKey:  src.str("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL: src.str("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterModel:   src.str("OPENROUTER_MODEL", "google/gemini-2.0-flash-exp:free"),
		LLMTimeout:        src.duration("LLM_TIMEOUT", 20*time.Second),
		LLMMaxRPS:         src.integer("LLM_MAX_RPS", 1),

		TesseractBin: src.str("TESSERACT_BIN", "tesseract"),
		PdftoppmBin:  src.str("PDFTOPPM_BIN", "pdftoppm"),
		OCRLanguage:  src.str("OCR_LANGUAGE", "eng"),
		OCRPSM:       src.integer("OCR_PSM", 6),
		OCRMaxPages:  src.integer("OCR_MAX_PAGES", 0),
		RenderDPI:    src.integer("RENDER_DPI", 144),
		MinTextChars: src.integer("MIN_TEXT_CHARS", 50),

		ClassifyMaxChars: src.integer("CLASSIFY_MAX_CHARS", 2000),
		ExtractMaxChars:  src.integer("EXTRACT_MAX_CHARS", 3000),
		ReviewThreshold:  src.float("REVIEW_THRESHOLD", 0.7),

		MaxUploadBytes:    src.bytes("MAX_UPLOAD_BYTES", 20<<20),
		MaxConns:          src.integer("MAX_CONNS", 256),
		APIRateLimitRPS:   src.integer("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst: src.integer("API_RATE_LIMIT_BURST", 0),
		APIMaxConcurrent:  src.integer("API_MAX_CONCURRENT", 0),
		APIQueueWait:      src.duration("API_QUEUE_WAIT", 100*time.Millisecond),

		WorkerMetricsPort: src.str("WORKER_METRICS_PORT", "9090"),
	}

	if cfg.LLMTimeout < minLLMTimeout {
		cfg.LLMTimeout = minLLMTimeout
	}
	if cfg.LLMTimeout > maxLLMTimeout {
		cfg.LLMTimeout = maxLLMTimeout
	}
	if cfg.APIRateLimitBurst <= 0 {
		cfg.APIRateLimitBurst = cfg.APIRateLimitRPS
	}

	var missing []string
	for _, kv := range []struct{ key, value string }{
		{"POSTGRES_DSN", cfg.PostgresDSN},
		{"NATS_URL", cfg.NATSURL},
		{"QDRANT_URL", cfg.QdrantURL},
	} {
		if strings.TrimSpace(kv.value) == "" {
			missing = append(missing, kv.key)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// source resolves a key from the environment first, then from the
// optional config file.
type source struct {
	file map[string]string
}

func newSource(path string) (source, error) {
	if path == "" {
		return source{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return source{}, fmt.Errorf("read config file: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return source{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return source{file: values}, nil
}

func (s source) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return s.file[key]
}

func (s source) str(key, fallback string) string {
	if v := s.lookup(key); v != "" {
		return v
	}
	return fallback
}

func (s source) integer(key string, fallback int) int {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func (s source) float(key string, fallback float64) float64 {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func (s source) bytes(key string, fallback int64) int64 {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func (s source) duration(key string, fallback time.Duration) time.Duration {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
