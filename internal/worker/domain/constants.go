package domain

// Overall job status constants
const (
	JobStatusPending             = "pending"
	JobStatusProcessing          = "processing"
	JobStatusCompleted           = "completed"
	JobStatusCompletedWithErrors = "completed_with_errors"
	JobStatusFailed              = "failed"
)

// Per-language status constants
const (
	LanguageStatusPending    = "pending"
	LanguageStatusProcessing = "processing"
	LanguageStatusCompleted  = "completed"
	LanguageStatusFailed     = "failed"
)

// OriginalLanguage labels the stored source document's artifact record
const OriginalLanguage = "original"
