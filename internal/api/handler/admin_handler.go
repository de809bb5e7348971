package handler

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cuongbtq/translation-api/internal/api/domain"
	"github.com/cuongbtq/translation-api/internal/api/dto"
	"github.com/cuongbtq/translation-api/internal/api/model"
	"github.com/gin-gonic/gin"
)

// GenerateKey handles POST /admin/generate-key
// Issues a new API key (admin only; enforced by the auth middleware)
func (h *TranslationHandler) GenerateKey(c *gin.Context) {
	var req dto.APIKeyCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "description and created_by are required")
		return
	}

	key, err := newAPIKey()
	if err != nil {
		h.internalError(c, "Failed to generate api key", err)
		return
	}

	record := &model.APIKey{
		Key:         key,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.storage.CreateAPIKey(c.Request.Context(), record); err != nil {
		h.internalError(c, "Failed to store api key", err)
		return
	}

	h.logger.Info("API key generated",
		slog.String("created_by", req.CreatedBy),
		slog.String("description", req.Description),
	)

	c.JSON(http.StatusOK, dto.APIKeyResponse{
		Key:         record.Key,
		Description: record.Description,
		CreatedAt:   record.CreatedAt.Format(time.RFC3339),
		CreatedBy:   record.CreatedBy,
		IsActive:    record.IsActive,
	})
}

// ListKeys handles GET /admin/list-keys
func (h *TranslationHandler) ListKeys(c *gin.Context) {
	keys, err := h.storage.ListAPIKeys(c.Request.Context())
	if err != nil {
		h.internalError(c, "Failed to list api keys", err)
		return
	}

	resp := make([]dto.APIKeyResponse, 0, len(keys))
	for _, key := range keys {
		resp = append(resp, dto.APIKeyResponse{
			Key:         key.Key,
			Description: key.Description,
			CreatedAt:   key.CreatedAt.Format(time.RFC3339),
			CreatedBy:   key.CreatedBy,
			IsActive:    key.IsActive,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// DeactivateKey handles POST /admin/deactivate-key
func (h *TranslationHandler) DeactivateKey(c *gin.Context) {
	var req struct {
		APIKey string `json:"api_key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "api_key is required")
		return
	}

	if err := h.storage.DeactivateAPIKey(c.Request.Context(), req.APIKey); err != nil {
		if errors.Is(err, domain.ErrAPIKeyNotFound) {
			detail(c, http.StatusNotFound, "API key not found")
			return
		}
		h.internalError(c, "Failed to deactivate api key", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "API key deactivated successfully"})
}

// newAPIKey returns a 32-byte URL-safe random token.
func newAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
