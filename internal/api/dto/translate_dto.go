package dto

// TextTranslationRequest is the body of POST /translate/text.
type TextTranslationRequest struct {
	Text           string `json:"text" binding:"required"`
	TargetLanguage string `json:"target_language" binding:"required"`
	SourceLanguage string `json:"source_language"`
}

// TextTranslationResponse is the reply to POST /translate/text.
type TextTranslationResponse struct {
	TranslatedText string `json:"translated_text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

// MultiTranslationRequest is the body of POST /translate/multi.
type MultiTranslationRequest struct {
	Text            string   `json:"text" binding:"required"`
	TargetLanguages []string `json:"target_languages" binding:"required"`
	SourceLanguage  string   `json:"source_language"`
}

// MultiTranslationResponse is the reply to POST /translate/multi.
type MultiTranslationResponse struct {
	Translations   map[string]string `json:"translations"`
	SourceLanguage string            `json:"source_language"`
	OriginalText   string            `json:"original_text"`
}

// FileJobResponse acknowledges an accepted file translation job.
type FileJobResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// JobStatusResponse is the projection returned by
// GET /translation/status/:job_id.
type JobStatusResponse struct {
	JobID                     string            `json:"job_id"`
	Status                    string            `json:"status"`
	Filename                  string            `json:"filename"`
	SourceLanguage            string            `json:"source_language"`
	TotalLanguages            int               `json:"total_languages"`
	ProcessedLanguages        int               `json:"processed_languages"`
	CurrentProcessingLanguage *string           `json:"current_processing_language"`
	ErrorMessage              *string           `json:"error_message"`
	PerLanguageStatus         map[string]string `json:"per_language_status"`
	CreatedAt                 string            `json:"created_at"`
	UpdatedAt                 string            `json:"updated_at"`
	Files                     []FileInfo        `json:"files"`
}

// FileInfo is one artifact entry in a status or download response.
type FileInfo struct {
	Language    string  `json:"language"`
	Status      string  `json:"status"`
	DownloadURL *string `json:"download_url"`
}

// DownloadResponse is the multi-language reply to GET /download/:job_id.
type DownloadResponse struct {
	JobID string     `json:"job_id"`
	Files []FileInfo `json:"files"`
}

// APIKeyCreateRequest is the body of POST /admin/generate-key.
type APIKeyCreateRequest struct {
	Description string `json:"description" binding:"required"`
	CreatedBy   string `json:"created_by" binding:"required"`
}

// APIKeyResponse describes one issued API key.
type APIKeyResponse struct {
	Key         string `json:"key"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	CreatedBy   string `json:"created_by"`
	IsActive    bool   `json:"is_active"`
}
