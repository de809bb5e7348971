package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cuongbtq/translation-api/internal/chunker"
	"github.com/cuongbtq/translation-api/internal/worker/domain"
	"github.com/cuongbtq/translation-api/shared/objectstore"
)

const artifactContentType = "text/plain; charset=utf-8"

// processJob drives a single translation job to a terminal state: claim,
// chunk the source document, translate every target language, store the
// artifacts, and recompute the overall job status.
func (w *Worker) processJob(ctx context.Context, msg *domain.JobMessage) error {
	w.logger.Info("Processing translation job",
		slog.String("job_id", msg.JobID),
		slog.String("worker_id", w.workerID),
	)

	// Claim the job (pending → processing). Losing the race to another
	// worker is not an error worth requeueing.
	job, err := w.storage.ClaimJob(ctx, msg.JobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobAlreadyClaimed) {
			w.logger.Warn("Job already claimed, skipping",
				slog.String("job_id", msg.JobID),
			)
			return fmt.Errorf("job already claimed: %w", err)
		}
		if errors.Is(err, domain.ErrJobNotFound) {
			w.logger.Error("Job not found in database",
				slog.String("job_id", msg.JobID),
			)
			return fmt.Errorf("job not found: %w", err)
		}
		w.logger.Error("Failed to claim job",
			slog.String("job_id", msg.JobID),
			slog.String("error", err.Error()),
		)
		return domain.NewRetryableError(fmt.Errorf("failed to claim job: %w", err))
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	chunks := chunker.Split(job.SourceText, w.translator.MaxChunkSize())
	if len(chunks) == 0 {
		return w.failEmptyJob(ctx, job)
	}

	w.logger.Info("Source document chunked",
		slog.String("job_id", job.JobID),
		slog.Int("chunks", len(chunks)),
		slog.Int("target_languages", len(job.TargetLanguages)),
	)

	// Translate each target language independently. A failed language
	// never blocks its siblings; the semaphore bounds backend pressure.
	sem := make(chan struct{}, w.maxConcurrentLanguages)
	var languageWG sync.WaitGroup

	for _, language := range job.TargetLanguages {
		languageWG.Add(1)
		go func(language string) {
			defer languageWG.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			w.translateLanguage(ctx, jobCtx, job, language, chunks)
		}(language)
	}

	languageWG.Wait()

	w.storeOriginal(ctx, job)

	status, err := w.storage.FinalizeJob(ctx, job.JobID)
	if err != nil {
		w.logger.Error("Failed to finalize job",
			slog.String("job_id", job.JobID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to finalize job: %w", err)
	}

	w.logger.Info("Translation job finished",
		slog.String("job_id", job.JobID),
		slog.String("status", status),
	)

	return nil // terminal state reached - ACK the message
}

// translateLanguage translates the chunked document into one target language
// and records the outcome. jobCtx bounds the translation work; status writes
// use the outer context so a timed-out job can still be marked failed.
func (w *Worker) translateLanguage(ctx, jobCtx context.Context, job *domain.Job, language string, chunks []string) {
	if err := w.storage.SetCurrentLanguage(ctx, job.JobID, language); err != nil {
		w.logger.Warn("Failed to update current processing language",
			slog.String("job_id", job.JobID),
			slog.String("language", language),
			slog.String("error", err.Error()),
		)
	}

	if err := w.storage.MarkLanguageProcessing(ctx, job.JobID, language); err != nil {
		w.logger.Warn("Failed to mark language processing",
			slog.String("job_id", job.JobID),
			slog.String("language", language),
			slog.String("error", err.Error()),
		)
	}

	translated, err := w.translator.TranslateDocument(jobCtx, chunks, job.SourceLanguage, language)
	if err != nil {
		w.logger.Error("Language translation failed",
			slog.String("job_id", job.JobID),
			slog.String("language", language),
			slog.String("error", err.Error()),
		)
		w.recordLanguageFailure(ctx, job.JobID, language, err.Error())
		return
	}

	key := objectstore.ObjectKey(job.OriginalFilename, language)
	downloadURL, err := w.artifacts.Put(jobCtx, key, []byte(translated), artifactContentType)
	if err != nil {
		w.logger.Error("Failed to store translated file",
			slog.String("job_id", job.JobID),
			slog.String("language", language),
			slog.String("error", err.Error()),
		)
		w.recordLanguageFailure(ctx, job.JobID, language, fmt.Sprintf("failed to store translated file: %s", err.Error()))
		return
	}

	if err := w.storage.CompleteLanguage(ctx, job.JobID, language, downloadURL); err != nil {
		w.logger.Error("Failed to mark language completed",
			slog.String("job_id", job.JobID),
			slog.String("language", language),
			slog.String("error", err.Error()),
		)
		return
	}

	w.logger.Info("Language translation completed",
		slog.String("job_id", job.JobID),
		slog.String("language", language),
		slog.String("download_url", downloadURL),
	)
}

// recordLanguageFailure marks one language failed without touching its siblings
func (w *Worker) recordLanguageFailure(ctx context.Context, jobID, language, reason string) {
	if err := w.storage.FailLanguage(ctx, jobID, language, reason); err != nil {
		w.logger.Error("Failed to record language failure",
			slog.String("job_id", jobID),
			slog.String("language", language),
			slog.String("error", err.Error()),
		)
	}
}

// storeOriginal uploads the source document alongside the translations so the
// download listing always includes the original. A storage failure here is
// logged but does not fail the job.
func (w *Worker) storeOriginal(ctx context.Context, job *domain.Job) {
	key := objectstore.ObjectKey(job.OriginalFilename, domain.OriginalLanguage)
	downloadURL, err := w.artifacts.Put(ctx, key, []byte(job.SourceText), artifactContentType)
	if err != nil {
		w.logger.Warn("Failed to store original file",
			slog.String("job_id", job.JobID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := w.storage.AddOriginalFile(ctx, job.JobID, downloadURL); err != nil {
		w.logger.Warn("Failed to record original file",
			slog.String("job_id", job.JobID),
			slog.String("error", err.Error()),
		)
	}
}

// failEmptyJob fails every target language of a job whose source document has
// no translatable content, then finalizes it.
func (w *Worker) failEmptyJob(ctx context.Context, job *domain.Job) error {
	w.logger.Warn("Job has no translatable content",
		slog.String("job_id", job.JobID),
	)

	for _, language := range job.TargetLanguages {
		w.recordLanguageFailure(ctx, job.JobID, language, domain.ErrEmptyDocument.Error())
	}

	if _, err := w.storage.FinalizeJob(ctx, job.JobID); err != nil {
		return fmt.Errorf("failed to finalize empty job: %w", err)
	}

	return nil
}
