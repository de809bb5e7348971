package domain

// Job is a translation job loaded from the database for processing
type Job struct {
	JobID            string
	OriginalFilename string
	SourceLanguage   string
	SourceText       string
	Status           string
	TotalLanguages   int
	TargetLanguages  []string
}

// JobMessage represents a job message from RabbitMQ
type JobMessage struct {
	JobID       string `json:"job_id"`
	DeliveryTag uint64 `json:"-"`
}

// OverallStatus derives the job's terminal status from its per-language
// outcomes: completed when every language completed, failed when every
// language failed, completed_with_errors for any mix.
func OverallStatus(statuses []string) string {
	if len(statuses) == 0 {
		return JobStatusFailed
	}

	completed := 0
	failed := 0
	for _, s := range statuses {
		switch s {
		case LanguageStatusCompleted:
			completed++
		case LanguageStatusFailed:
			failed++
		}
	}

	switch {
	case completed == len(statuses):
		return JobStatusCompleted
	case failed == len(statuses):
		return JobStatusFailed
	default:
		return JobStatusCompletedWithErrors
	}
}
