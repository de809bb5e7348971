package router

import (
	"net/http"

	"github.com/cuongbtq/translation-api/internal/api/handler"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "translation-api-service",
		})
	})

	// Initialize translation handler
	translationHandler := handler.NewTranslationHandler(deps)

	// Everything else requires an API key
	authed := r.Group("")
	authed.Use(APIKeyAuthMiddleware(deps.Logger, deps.Storage, deps.AdminKey))
	{
		// Language catalog
		authed.GET("/languages", translationHandler.ListLanguages)
		authed.GET("/languages/flat", translationHandler.ListLanguagesFlat)

		// Synchronous text translation
		authed.POST("/translate/text", translationHandler.TranslateText)
		authed.POST("/translate/multi", translationHandler.TranslateMulti)

		// Tracked file translation jobs
		authed.POST("/translate/file", translationHandler.TranslateFile)
		authed.POST("/translate/file/multi", translationHandler.TranslateFileMulti)

		// Job status and artifact downloads
		authed.GET("/translation/status/:job_id", translationHandler.GetStatus)
		authed.GET("/download/:job_id", translationHandler.Download)

		// Admin-only key management
		admin := authed.Group("/admin")
		admin.Use(RequireAdminMiddleware())
		{
			admin.POST("/generate-key", translationHandler.GenerateKey)
			admin.GET("/list-keys", translationHandler.ListKeys)
			admin.POST("/deactivate-key", translationHandler.DeactivateKey)
		}
	}

	return r
}
