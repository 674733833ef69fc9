// errors.go handles import error listing endpoints.
package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/certificate-import-api/internal/middleware"
	"github.com/Shimizu-Technology/certificate-import-api/internal/models"
)

// ListImportErrors returns recent import errors.
// GET /api/v1/errors?session=2024&mine=true&limit=50
func (h *Handler) ListImportErrors(c *gin.Context) {
	session, _ := strconv.Atoi(c.Query("session"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	var uploaderID *string
	if c.Query("mine") == "true" {
		if user := middleware.GetUser(c); user != nil {
			uploaderID = &user.ID
		}
	}

	errs, err := h.DB.ListImportErrors(c.Request.Context(), session, uploaderID, limit)
	if err != nil {
		log.Printf("❌ Failed to list import errors: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to list import errors",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, errs)
}
