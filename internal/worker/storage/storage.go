package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/translation-api/internal/worker/domain"
	"github.com/jmoiron/sqlx"
)

// Storage handles all database operations for the worker. Concurrent
// per-language goroutines for the same job go through single atomic UPDATE
// statements, so progress counters never see interleaved read-modify-write.
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// GetJob loads a job and its target languages for processing
func (s *Storage) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	query := `
		SELECT job_id, original_filename, source_language, source_text, status, total_languages
		FROM translation_jobs
		WHERE job_id = $1
	`

	var job domain.Job
	err := s.db.QueryRowContext(ctx, query, jobID).Scan(
		&job.JobID,
		&job.OriginalFilename,
		&job.SourceLanguage,
		&job.SourceText,
		&job.Status,
		&job.TotalLanguages,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	langQuery := `
		SELECT language
		FROM translation_files
		WHERE job_id = $1 AND language <> $2
		ORDER BY id ASC
	`
	if err := s.db.SelectContext(ctx, &job.TargetLanguages, langQuery, jobID, domain.OriginalLanguage); err != nil {
		return nil, fmt.Errorf("failed to get job languages: %w", err)
	}

	return &job, nil
}

// ClaimJob transitions a pending job to processing and returns it. The
// guarded WHERE clause makes the claim atomic across competing workers.
func (s *Storage) ClaimJob(ctx context.Context, jobID string) (*domain.Job, error) {
	query := `
		UPDATE translation_jobs
		SET status = $2, updated_at = $3
		WHERE job_id = $1 AND status = $4
	`

	res, err := s.db.ExecContext(ctx, query, jobID, domain.JobStatusProcessing, time.Now().UTC(), domain.JobStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check claim result: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetJob(ctx, jobID); err != nil {
			return nil, err
		}
		return nil, domain.ErrJobAlreadyClaimed
	}

	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// SetCurrentLanguage records the language currently in flight. Advisory
// only; with concurrent languages it reflects the most recent starter.
func (s *Storage) SetCurrentLanguage(ctx context.Context, jobID, lang string) error {
	query := `
		UPDATE translation_jobs
		SET current_processing_language = $2, updated_at = $3
		WHERE job_id = $1
	`

	if _, err := s.db.ExecContext(ctx, query, jobID, lang, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set current language: %w", err)
	}
	return nil
}

// MarkLanguageProcessing flips one target language's tracker row to
// processing.
func (s *Storage) MarkLanguageProcessing(ctx context.Context, jobID, lang string) error {
	query := `
		UPDATE translation_files
		SET status = $3, updated_at = $4
		WHERE job_id = $1 AND language = $2
	`

	if _, err := s.db.ExecContext(ctx, query, jobID, lang, domain.LanguageStatusProcessing, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark language processing: %w", err)
	}
	return nil
}

// CompleteLanguage records a stored artifact for one language and bumps
// the job's progress counter.
func (s *Storage) CompleteLanguage(ctx context.Context, jobID, lang, downloadURL string) error {
	now := time.Now().UTC()

	fileQuery := `
		UPDATE translation_files
		SET status = $3, download_url = $4, updated_at = $5
		WHERE job_id = $1 AND language = $2
	`
	if _, err := s.db.ExecContext(ctx, fileQuery, jobID, lang, domain.LanguageStatusCompleted, downloadURL, now); err != nil {
		return fmt.Errorf("failed to complete language %s: %w", lang, err)
	}

	jobQuery := `
		UPDATE translation_jobs
		SET processed_languages = processed_languages + 1, updated_at = $2
		WHERE job_id = $1
	`
	if _, err := s.db.ExecContext(ctx, jobQuery, jobID, now); err != nil {
		return fmt.Errorf("failed to bump processed count: %w", err)
	}

	return nil
}

// FailLanguage records one language's terminal failure. The job-level
// error_message keeps the first failure's reason.
func (s *Storage) FailLanguage(ctx context.Context, jobID, lang, reason string) error {
	now := time.Now().UTC()

	fileQuery := `
		UPDATE translation_files
		SET status = $3, error_message = $4, updated_at = $5
		WHERE job_id = $1 AND language = $2
	`
	if _, err := s.db.ExecContext(ctx, fileQuery, jobID, lang, domain.LanguageStatusFailed, reason, now); err != nil {
		return fmt.Errorf("failed to fail language %s: %w", lang, err)
	}

	jobQuery := `
		UPDATE translation_jobs
		SET processed_languages = processed_languages + 1,
		    error_message = COALESCE(error_message, $2),
		    updated_at = $3
		WHERE job_id = $1
	`
	if _, err := s.db.ExecContext(ctx, jobQuery, jobID, reason, now); err != nil {
		return fmt.Errorf("failed to record language failure: %w", err)
	}

	return nil
}

// AddOriginalFile records the stored source document artifact.
func (s *Storage) AddOriginalFile(ctx context.Context, jobID, downloadURL string) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO translation_files (job_id, language, status, download_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err := s.db.ExecContext(ctx, query, jobID, domain.OriginalLanguage, domain.LanguageStatusCompleted, downloadURL, now, now); err != nil {
		return fmt.Errorf("failed to add original file record: %w", err)
	}
	return nil
}

// FinalizeJob recomputes the job's terminal status from its per-language
// outcomes and returns it. This is the only path that writes a terminal
// overall status.
func (s *Storage) FinalizeJob(ctx context.Context, jobID string) (string, error) {
	var statuses []string
	query := `
		SELECT status
		FROM translation_files
		WHERE job_id = $1 AND language <> $2
		ORDER BY id ASC
	`
	if err := s.db.SelectContext(ctx, &statuses, query, jobID, domain.OriginalLanguage); err != nil {
		return "", fmt.Errorf("failed to load language statuses: %w", err)
	}

	status := domain.OverallStatus(statuses)

	updateQuery := `
		UPDATE translation_jobs
		SET status = $2, current_processing_language = NULL, updated_at = $3
		WHERE job_id = $1
	`
	if _, err := s.db.ExecContext(ctx, updateQuery, jobID, status, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("failed to finalize job: %w", err)
	}

	s.logger.Info("Job finalized",
		slog.String("job_id", jobID),
		slog.String("status", status),
	)

	return status, nil
}
