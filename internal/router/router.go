// Package router sets up all HTTP routes for the API.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/certificate-import-api/internal/database"
	"github.com/Shimizu-Technology/certificate-import-api/internal/handlers"
	"github.com/Shimizu-Technology/certificate-import-api/internal/middleware"
	"github.com/Shimizu-Technology/certificate-import-api/internal/services/importer"
	"github.com/Shimizu-Technology/certificate-import-api/internal/services/worker"
)

// Setup creates and configures the Gin router with all routes.
func Setup(db *database.DB, wp *worker.Pool, imp *importer.Service, jwtSecret, stagingDir string, allowedOrigins []string) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS(allowedOrigins))

	h := handlers.NewHandler(db, wp, imp, jwtSecret, stagingDir)

	// --- Public Routes (no auth required) ---
	r.GET("/api/v1/health", h.HealthCheck)
	r.POST("/api/v1/auth/register", h.Register)
	r.POST("/api/v1/auth/login", h.Login)

	// --- JWT-protected routes ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth(db, jwtSecret))
	{
		protected.GET("/auth/me", h.GetMe)

		// Batch imports
		protected.POST("/imports", h.CreateImport)
		protected.GET("/imports", h.ListImports)
		protected.GET("/imports/:id", h.GetImport)

		// Candidate review and correction
		protected.GET("/candidates", h.ListCandidates)
		protected.GET("/candidates/:id", h.GetCandidate)
		protected.PATCH("/candidates/:id", h.CorrectCandidate)
		protected.POST("/candidates/:id/restore", h.RestoreCandidate)
		protected.DELETE("/candidates/:id", h.DeleteCandidate)

		// Import errors
		protected.GET("/errors", h.ListImportErrors)
	}

	return r
}
