// Package bootstrap assembles the dependency graph shared by the api,
// worker and mcp binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avezina/propdocs/internal/config"
	"github.com/avezina/propdocs/internal/core/ports"
	"github.com/avezina/propdocs/internal/core/review"
	"github.com/avezina/propdocs/internal/core/strategy"
	"github.com/avezina/propdocs/internal/core/usecase"
	"github.com/avezina/propdocs/internal/infrastructure/export"
	"github.com/avezina/propdocs/internal/infrastructure/llm/ollama"
	"github.com/avezina/propdocs/internal/infrastructure/llm/openrouter"
	"github.com/avezina/propdocs/internal/infrastructure/queue/nats"
	"github.com/avezina/propdocs/internal/infrastructure/repository/postgres"
	"github.com/avezina/propdocs/internal/infrastructure/resilience"
	"github.com/avezina/propdocs/internal/infrastructure/rules"
	"github.com/avezina/propdocs/internal/infrastructure/storage/localfs"
	"github.com/avezina/propdocs/internal/infrastructure/textextract"
	"github.com/avezina/propdocs/internal/infrastructure/vector/qdrant"
	"github.com/avezina/propdocs/internal/observability/metrics"
)

// processTimeout caps how long a worker may spend on one document before
// its message context is cancelled.
const processTimeout = 5 * time.Minute

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	IngestUC  ports.DocumentIngestor
	DocsUC    ports.DocumentReader
	ProcessUC ports.DocumentProcessor
	SearchUC  ports.DocumentSearcher
	BrowseUC  ports.RecordBrowser
	Metrics   *metrics.WorkerMetrics

	closeFn func()
}

// New wires the full dependency graph. The service name tags the metrics
// of the calling binary.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, service string) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pipelineMetrics := metrics.NewWorkerMetrics(service)
	executor := resilience.NewExecutorWithOverrides(resilience.DefaultConfig(), resilience.PipelineOverrides())

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	docs := postgres.NewDocumentRepository(db)
	if err := docs.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure documents schema: %w", err)
	}
	records := postgres.NewRecordRepository(db)
	if err := records.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure records schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		MessageTimeout:     processTimeout,
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)

	ollamaClient := ollama.NewWithOptions(cfg.OllamaURL, cfg.OllamaEmbedModel, ollama.Options{
		ResilienceExecutor: executor,
	})
	embedder := ollama.NewEmbedder(ollamaClient)

	openRouterClient := openrouter.NewWithOptions(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.OpenRouterModel, openrouter.Options{
		Timeout:            cfg.LLMTimeout,
		MaxRequestsPerSec:  float64(cfg.LLMMaxRPS),
		ResilienceExecutor: executor,
		UsageRecorder:      pipelineMetrics,
	})

	classifier := strategy.NewClassifierChain(logger, pipelineMetrics,
		openrouter.NewClassifier(openRouterClient, cfg.ClassifyMaxChars),
		rules.NewClassifier(),
	)
	entities := strategy.NewExtractorChain(logger, pipelineMetrics,
		openrouter.NewExtractor(openRouterClient, cfg.ExtractMaxChars),
		rules.NewExtractor(),
	)

	textEngine := textextract.NewEngineWithOptions(textextract.Config{
		Pdftoppm:      cfg.PdftoppmBin,
		Tesseract:     cfg.TesseractBin,
		TesseractLang: cfg.OCRLanguage,
		DPI:           cfg.RenderDPI,
		PSM:           cfg.OCRPSM,
		MinTextChars:  cfg.MinTextChars,
		MaxPages:      cfg.OCRMaxPages,
	}, logger, textextract.Options{
		Recorder: pipelineMetrics,
	})

	ingestUC := usecase.NewIngestDocumentUseCase(docs, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(
		docs,
		records,
		textEngine,
		classifier,
		entities,
		embedder,
		vectorDB,
		review.NewPolicy(cfg.ReviewThreshold),
		pipelineMetrics,
	)
	searchUC := usecase.NewSearchDocumentsUseCase(embedder, vectorDB)
	browseUC := usecase.NewBrowseRecordsUseCase(records, vectorDB, export.NewRenderer(), logger)

	return &App{
		Config: cfg,

		Queue:     queue,
		IngestUC:  ingestUC,
		DocsUC:    ingestUC,
		ProcessUC: processUC,
		SearchUC:  searchUC,
		BrowseUC:  browseUC,
		Metrics:   pipelineMetrics,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
