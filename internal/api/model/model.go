package model

import (
	"database/sql"
	"time"
)

// Job maps the translation_jobs table.
type Job struct {
	JobID                      string         `db:"job_id"`
	OriginalFilename           string         `db:"original_filename"`
	SourceLanguage             string         `db:"source_language"`
	SourceText                 string         `db:"source_text"`
	Status                     string         `db:"status"`
	TotalLanguages             int            `db:"total_languages"`
	ProcessedLanguages         int            `db:"processed_languages"`
	CurrentProcessingLanguage  sql.NullString `db:"current_processing_language"`
	ErrorMessage               sql.NullString `db:"error_message"`
	CreatedAt                  time.Time      `db:"created_at"`
	UpdatedAt                  time.Time      `db:"updated_at"`
}

// File maps the translation_files table: one tracker row per target
// language plus one for the stored original.
type File struct {
	ID           int64          `db:"id"`
	JobID        string         `db:"job_id"`
	Language     string         `db:"language"`
	Status       string         `db:"status"`
	DownloadURL  sql.NullString `db:"download_url"`
	ErrorMessage sql.NullString `db:"error_message"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// APIKey maps the api_keys table.
type APIKey struct {
	ID          int64     `db:"id"`
	Key         string    `db:"key"`
	Description string    `db:"description"`
	CreatedBy   string    `db:"created_by"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
}
