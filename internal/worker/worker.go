package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/translation-api/internal/worker/domain"
	"github.com/cuongbtq/translation-api/shared/rabbitmq"
)

// JobStore is the persistence surface the worker needs to track a
// translation job through its lifecycle.
type JobStore interface {
	GetJob(ctx context.Context, jobID string) (*domain.Job, error)
	ClaimJob(ctx context.Context, jobID string) (*domain.Job, error)
	SetCurrentLanguage(ctx context.Context, jobID, language string) error
	MarkLanguageProcessing(ctx context.Context, jobID, language string) error
	CompleteLanguage(ctx context.Context, jobID, language, downloadURL string) error
	FailLanguage(ctx context.Context, jobID, language, reason string) error
	AddOriginalFile(ctx context.Context, jobID, downloadURL string) error
	FinalizeJob(ctx context.Context, jobID string) (string, error)
}

// DocumentTranslator translates a chunked document into one target language.
type DocumentTranslator interface {
	TranslateDocument(ctx context.Context, chunks []string, source, target string) (string, error)
	MaxChunkSize() int
}

// ArtifactStore uploads translation artifacts and returns their public URL.
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Config holds worker configuration
type Config struct {
	Logger                 *slog.Logger
	Storage                JobStore
	Translator             DocumentTranslator
	Artifacts              ArtifactStore
	RabbitClient           *rabbitmq.Client
	WorkerID               string
	QueueName              string
	Concurrency            int
	PrefetchCount          int
	MaxConcurrentLanguages int
	JobTimeout             time.Duration
}

// Worker consumes translation job messages and drives them to a terminal state
type Worker struct {
	logger                 *slog.Logger
	storage                JobStore
	translator             DocumentTranslator
	artifacts              ArtifactStore
	rabbitClient           *rabbitmq.Client
	workerID               string
	rabbitMQQueueName      string
	concurrency            int
	prefetchCount          int
	maxConcurrentLanguages int
	jobTimeout             time.Duration
	jobsChan               chan *domain.JobMessage
	wg                     sync.WaitGroup
	stopChan               chan struct{}
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	return &Worker{
		logger:                 cfg.Logger,
		storage:                cfg.Storage,
		translator:             cfg.Translator,
		artifacts:              cfg.Artifacts,
		rabbitClient:           cfg.RabbitClient,
		workerID:               cfg.WorkerID,
		rabbitMQQueueName:      cfg.QueueName,
		concurrency:            cfg.Concurrency,
		prefetchCount:          cfg.PrefetchCount,
		maxConcurrentLanguages: cfg.MaxConcurrentLanguages,
		jobTimeout:             cfg.JobTimeout,
		jobsChan:               make(chan *domain.JobMessage),
		stopChan:               make(chan struct{}),
	}
}

// Start begins consuming and processing translation jobs. It blocks until
// the context is canceled or the delivery channel closes.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Int("max_concurrent_languages", w.maxConcurrentLanguages),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	deliveries, err := w.setupConsumer(ctx)
	if err != nil {
		return err
	}

	w.spawnWorkerPool(ctx)
	w.startMessageDispatcher(ctx, deliveries)

	return nil
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
