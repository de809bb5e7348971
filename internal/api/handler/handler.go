package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/translation-api/internal/api/model"
	"github.com/gin-gonic/gin"
)

// JobStore is the persistence surface the handlers need.
type JobStore interface {
	CreateJob(ctx context.Context, job *model.Job, targetLanguages []string) error
	GetJobByID(ctx context.Context, jobID string) (*model.Job, error)
	GetJobFiles(ctx context.Context, jobID string) ([]model.File, error)
	CreateAPIKey(ctx context.Context, key *model.APIKey) error
	GetActiveAPIKey(ctx context.Context, key string) (*model.APIKey, error)
	ListAPIKeys(ctx context.Context) ([]model.APIKey, error)
	DeactivateAPIKey(ctx context.Context, key string) error
}

// JobPublisher enqueues a job message for the worker service.
type JobPublisher interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// TextTranslator is the synchronous translation path used by the text
// endpoints.
type TextTranslator interface {
	TranslateText(ctx context.Context, text, target, source string) (string, error)
	TranslateMulti(ctx context.Context, text string, targets []string, source string) (map[string]string, error)
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger      *slog.Logger
	Storage     JobStore
	Publisher   JobPublisher
	Translator  TextTranslator
	AdminKey    string
	MaxFileSize int64
}

// TranslationHandler handles translation-related HTTP requests
type TranslationHandler struct {
	logger      *slog.Logger
	storage     JobStore
	publisher   JobPublisher
	translator  TextTranslator
	maxFileSize int64
}

// NewTranslationHandler creates a new TranslationHandler instance
func NewTranslationHandler(deps *Dependencies) *TranslationHandler {
	return &TranslationHandler{
		logger:      deps.Logger,
		storage:     deps.Storage,
		publisher:   deps.Publisher,
		translator:  deps.Translator,
		maxFileSize: deps.MaxFileSize,
	}
}

// detail writes the error body shape shared by every endpoint.
func detail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"detail": message})
}

// internalError logs err and answers with a generic 500 detail.
func (h *TranslationHandler) internalError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg,
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
	)
	detail(c, http.StatusInternalServerError, msg)
}
