package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cuongbtq/translation-api/internal/api/domain"
	"github.com/cuongbtq/translation-api/internal/api/dto"
	"github.com/cuongbtq/translation-api/internal/api/model"
	"github.com/cuongbtq/translation-api/internal/language"
	"github.com/cuongbtq/translation-api/internal/translator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListLanguages handles GET /languages
// Returns supported languages grouped by region
func (h *TranslationHandler) ListLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, language.Regions())
}

// ListLanguagesFlat handles GET /languages/flat
// Returns the flat language-name to code mapping
func (h *TranslationHandler) ListLanguagesFlat(c *gin.Context) {
	c.JSON(http.StatusOK, language.Supported())
}

// TranslateText handles POST /translate/text
// Synchronously translates text to a single target language
func (h *TranslationHandler) TranslateText(c *gin.Context) {
	var req dto.TextTranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "text and target_language are required")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		detail(c, http.StatusBadRequest, "text must not be empty")
		return
	}

	if err := language.Validate([]string{req.TargetLanguage}); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}

	source := req.SourceLanguage
	if source == "" {
		source = language.Auto
	}
	if !language.IsSupported(source) {
		detail(c, http.StatusBadRequest, unsupportedLanguage(source))
		return
	}

	translated, err := h.translator.TranslateText(c.Request.Context(), req.Text, req.TargetLanguage, source)
	if err != nil {
		h.internalError(c, "Translation failed: "+err.Error(), err)
		return
	}

	c.JSON(http.StatusOK, dto.TextTranslationResponse{
		TranslatedText: translated,
		SourceLanguage: source,
		TargetLanguage: req.TargetLanguage,
	})
}

// TranslateMulti handles POST /translate/multi
// Synchronously translates text to up to 5 target languages. Any target's
// failure fails the whole request; there is no partial result.
func (h *TranslationHandler) TranslateMulti(c *gin.Context) {
	var req dto.MultiTranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "text and target_languages are required")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		detail(c, http.StatusBadRequest, "text must not be empty")
		return
	}

	if err := validateTargets(req.TargetLanguages); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}

	source := req.SourceLanguage
	if source == "" {
		source = language.Auto
	}
	if !language.IsSupported(source) {
		detail(c, http.StatusBadRequest, unsupportedLanguage(source))
		return
	}

	translations, err := h.translator.TranslateMulti(c.Request.Context(), req.Text, req.TargetLanguages, source)
	if err != nil {
		h.internalError(c, "Translation failed: "+err.Error(), err)
		return
	}

	c.JSON(http.StatusOK, dto.MultiTranslationResponse{
		Translations:   translations,
		SourceLanguage: source,
		OriginalText:   req.Text,
	})
}

// TranslateFile handles POST /translate/file
// Accepts a .txt upload and starts a tracked single-language job
func (h *TranslationHandler) TranslateFile(c *gin.Context) {
	target := c.PostForm("target_language")
	if target == "" {
		detail(c, http.StatusBadRequest, "target_language is required")
		return
	}

	h.submitFileJob(c, []string{target})
}

// TranslateFileMulti handles POST /translate/file/multi
// Accepts a .txt upload and starts a tracked job for 1-5 target languages
func (h *TranslationHandler) TranslateFileMulti(c *gin.Context) {
	targets := c.PostFormArray("target_languages")
	if len(targets) == 0 {
		detail(c, http.StatusBadRequest, "target_languages is required")
		return
	}

	h.submitFileJob(c, targets)
}

// submitFileJob validates the upload, persists the job record with its
// pending per-language rows, and enqueues it for the worker. It returns
// before any translation work happens.
func (h *TranslationHandler) submitFileJob(c *gin.Context, targets []string) {
	if err := validateTargets(targets); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}

	source := c.DefaultPostForm("source_language", language.Auto)
	if !language.IsSupported(source) {
		detail(c, http.StatusBadRequest, unsupportedLanguage(source))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		detail(c, http.StatusBadRequest, "file is required")
		return
	}

	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".txt") {
		detail(c, http.StatusBadRequest, "only .txt files are supported")
		return
	}

	if fileHeader.Size > h.maxFileSize {
		detail(c, http.StatusBadRequest, "file exceeds the maximum allowed size")
		return
	}

	text, err := readUpload(fileHeader, h.maxFileSize)
	if err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	job := &model.Job{
		JobID:            uuid.New().String(),
		OriginalFilename: fileHeader.Filename,
		SourceLanguage:   source,
		SourceText:       text,
		Status:           domain.JobStatusPending,
		TotalLanguages:   len(targets),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := h.storage.CreateJob(c.Request.Context(), job, targets); err != nil {
		h.internalError(c, "Failed to create translation job", err)
		return
	}

	msg, _ := json.Marshal(map[string]string{"job_id": job.JobID})
	if err := h.publisher.PublishWithRetry(c.Request.Context(), msg, "application/json"); err != nil {
		h.internalError(c, "Failed to enqueue translation job", err)
		return
	}

	h.logger.Info("Translation job accepted",
		slog.String("job_id", job.JobID),
		slog.String("filename", job.OriginalFilename),
		slog.Int("target_languages", len(targets)),
	)

	c.JSON(http.StatusOK, dto.FileJobResponse{
		JobID:   job.JobID,
		Message: "Translation job started",
	})
}

// unsupportedLanguage lists the full catalog so callers can self-correct.
func unsupportedLanguage(lang string) string {
	return "language '" + lang + "' is not supported. Supported languages: " +
		strings.Join(language.Names(), ", ")
}

// validateTargets applies the shared target-language rules: 1-5 entries,
// all supported, no duplicates.
func validateTargets(targets []string) error {
	if len(targets) == 0 {
		return errors.New("at least one target language must be specified")
	}
	if len(targets) > translator.MaxTargetLanguages {
		return errors.New("maximum 5 target languages are allowed")
	}
	return language.Validate(targets)
}

// readUpload reads the uploaded document, enforcing the plain-text
// expectation and the size ceiling.
func readUpload(fileHeader *multipart.FileHeader, maxSize int64) (string, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return "", errors.New("failed to read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return "", errors.New("failed to read uploaded file")
	}
	if int64(len(data)) > maxSize {
		return "", errors.New("file exceeds the maximum allowed size")
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return "", errors.New("uploaded file is empty")
	}
	if !utf8.Valid(data) {
		return "", errors.New("uploaded file must be UTF-8 plain text")
	}

	return string(data), nil
}
