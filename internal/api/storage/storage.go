package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cuongbtq/translation-api/internal/api/domain"
	"github.com/cuongbtq/translation-api/internal/api/model"
	"github.com/cuongbtq/translation-api/shared/postgresql"
	"github.com/jmoiron/sqlx"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db: pg.GetDB(),
	}
}

// CreateJob inserts the job record together with one pending tracker row
// per target language, atomically.
func (s *Storage) CreateJob(ctx context.Context, job *model.Job, targetLanguages []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO translation_jobs (
			job_id, original_filename, source_language, source_text,
			status, total_languages, processed_languages, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9
		)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		job.JobID,
		job.OriginalFilename,
		job.SourceLanguage,
		job.SourceText,
		job.Status,
		job.TotalLanguages,
		job.ProcessedLanguages,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	fileQuery := `
		INSERT INTO translation_files (job_id, language, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, lang := range targetLanguages {
		if _, err := tx.ExecContext(ctx, fileQuery, job.JobID, lang, domain.FileStatusPending, job.CreatedAt, job.UpdatedAt); err != nil {
			return fmt.Errorf("failed to create language record for %s: %w", lang, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit job creation: %w", err)
	}

	return nil
}

// GetJobByID fetches a job record, without the document body.
func (s *Storage) GetJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	var job model.Job
	query := `
		SELECT
			job_id, original_filename, source_language, '' AS source_text,
			status, total_languages, processed_languages,
			current_processing_language, error_message, created_at, updated_at
		FROM translation_jobs
		WHERE job_id = $1
	`

	err := s.db.GetContext(ctx, &job, query, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// GetJobFiles returns a job's tracker rows in creation order: targets
// first, the original row last once stored.
func (s *Storage) GetJobFiles(ctx context.Context, jobID string) ([]model.File, error) {
	query := `
		SELECT id, job_id, language, status, download_url, error_message, created_at, updated_at
		FROM translation_files
		WHERE job_id = $1
		ORDER BY id ASC
	`

	var files []model.File
	if err := s.db.SelectContext(ctx, &files, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to get job files: %w", err)
	}

	return files, nil
}

// CreateAPIKey persists a freshly generated key.
func (s *Storage) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	query := `
		INSERT INTO api_keys (key, description, created_by, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query, key.Key, key.Description, key.CreatedBy, key.IsActive, key.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}

	return nil
}

// GetActiveAPIKey looks up an active key, returning ErrAPIKeyNotFound for
// unknown or deactivated keys.
func (s *Storage) GetActiveAPIKey(ctx context.Context, key string) (*model.APIKey, error) {
	var apiKey model.APIKey
	query := `
		SELECT id, key, description, created_by, is_active, created_at
		FROM api_keys
		WHERE key = $1 AND is_active = TRUE
	`

	err := s.db.GetContext(ctx, &apiKey, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}

	return &apiKey, nil
}

// ListAPIKeys returns all keys, newest first.
func (s *Storage) ListAPIKeys(ctx context.Context) ([]model.APIKey, error) {
	query := `
		SELECT id, key, description, created_by, is_active, created_at
		FROM api_keys
		ORDER BY created_at DESC
	`

	var keys []model.APIKey
	if err := s.db.SelectContext(ctx, &keys, query); err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}

	return keys, nil
}

// DeactivateAPIKey flips a key inactive; ErrAPIKeyNotFound if no such key.
func (s *Storage) DeactivateAPIKey(ctx context.Context, key string) error {
	query := `UPDATE api_keys SET is_active = FALSE WHERE key = $1`

	res, err := s.db.ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("failed to deactivate api key: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deactivation result: %w", err)
	}
	if affected == 0 {
		return domain.ErrAPIKeyNotFound
	}

	return nil
}
