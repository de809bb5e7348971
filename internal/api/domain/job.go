package domain

import (
	"errors"
)

// Overall job statuses.
const (
	JobStatusPending             = "pending"
	JobStatusProcessing          = "processing"
	JobStatusCompleted           = "completed"
	JobStatusCompletedWithErrors = "completed_with_errors"
	JobStatusFailed              = "failed"
)

// Per-language file statuses.
const (
	FileStatusPending    = "pending"
	FileStatusProcessing = "processing"
	FileStatusCompleted  = "completed"
	FileStatusFailed     = "failed"
)

// OriginalLanguage labels the artifact record holding the uploaded source
// document.
const OriginalLanguage = "original"

var (
	ErrJobNotFound      = errors.New("job not found")
	ErrLanguageNotFound = errors.New("language not found for job")
	ErrAPIKeyNotFound   = errors.New("api key not found")
)
