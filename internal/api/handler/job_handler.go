package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/cuongbtq/translation-api/internal/api/domain"
	"github.com/cuongbtq/translation-api/internal/api/dto"
	"github.com/cuongbtq/translation-api/internal/api/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetStatus handles GET /translation/status/:job_id
// Returns the tracked job projection, including per-language progress
func (h *TranslationHandler) GetStatus(c *gin.Context) {
	jobID := c.Param("job_id")
	if _, err := uuid.Parse(jobID); err != nil {
		detail(c, http.StatusBadRequest, "job_id must be a valid UUID")
		return
	}

	job, err := h.storage.GetJobByID(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			detail(c, http.StatusNotFound, "Job not found")
			return
		}
		h.internalError(c, "Failed to get job", err)
		return
	}

	files, err := h.storage.GetJobFiles(c.Request.Context(), jobID)
	if err != nil {
		h.internalError(c, "Failed to get job files", err)
		return
	}

	resp := dto.JobStatusResponse{
		JobID:              job.JobID,
		Status:             job.Status,
		Filename:           job.OriginalFilename,
		SourceLanguage:     job.SourceLanguage,
		TotalLanguages:     job.TotalLanguages,
		ProcessedLanguages: job.ProcessedLanguages,
		CreatedAt:          job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          job.UpdatedAt.Format(time.RFC3339),
		PerLanguageStatus:  make(map[string]string),
		Files:              make([]dto.FileInfo, 0, len(files)),
	}
	if job.CurrentProcessingLanguage.Valid {
		resp.CurrentProcessingLanguage = &job.CurrentProcessingLanguage.String
	}
	if job.ErrorMessage.Valid {
		resp.ErrorMessage = &job.ErrorMessage.String
	}

	for _, file := range files {
		resp.Files = append(resp.Files, fileInfo(file))
		if file.Language != domain.OriginalLanguage {
			resp.PerLanguageStatus[file.Language] = file.Status
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Download handles GET /download/:job_id
// Without a language query it lists every artifact; with one it returns
// that language's artifact or 404
func (h *TranslationHandler) Download(c *gin.Context) {
	jobID := c.Param("job_id")
	if _, err := uuid.Parse(jobID); err != nil {
		detail(c, http.StatusBadRequest, "job_id must be a valid UUID")
		return
	}

	if _, err := h.storage.GetJobByID(c.Request.Context(), jobID); err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			detail(c, http.StatusNotFound, "Job not found")
			return
		}
		h.internalError(c, "Failed to get job", err)
		return
	}

	files, err := h.storage.GetJobFiles(c.Request.Context(), jobID)
	if err != nil {
		h.internalError(c, "Failed to get job files", err)
		return
	}

	lang := c.Query("language")
	if lang == "" {
		resp := dto.DownloadResponse{JobID: jobID, Files: make([]dto.FileInfo, 0, len(files))}
		for _, file := range files {
			resp.Files = append(resp.Files, fileInfo(file))
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	for _, file := range files {
		if file.Language != lang {
			continue
		}
		if file.Status != domain.FileStatusCompleted || !file.DownloadURL.Valid {
			detail(c, http.StatusNotFound, "Artifact for language '"+lang+"' is not ready")
			return
		}
		c.JSON(http.StatusOK, fileInfo(file))
		return
	}

	detail(c, http.StatusNotFound, "Language '"+lang+"' is not part of this job")
}

// fileInfo projects a tracker row; the URL is exposed only once the
// artifact is completed.
func fileInfo(file model.File) dto.FileInfo {
	info := dto.FileInfo{
		Language: file.Language,
		Status:   file.Status,
	}
	if file.Status == domain.FileStatusCompleted && file.DownloadURL.Valid {
		info.DownloadURL = &file.DownloadURL.String
	}
	return info
}
