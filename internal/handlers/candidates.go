// candidates.go handles candidate review and correction endpoints.
package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/certificate-import-api/internal/models"
)

// ListCandidates returns a paginated, filterable candidate list.
// GET /api/v1/candidates?search=&valid=&page=&per_page=
//
// The valid filter partitions the review queue: ?valid=false shows only
// records awaiting correction.
func (h *Handler) ListCandidates(c *gin.Context) {
	var params models.CandidateListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid query parameters",
			Code:    http.StatusBadRequest,
		})
		return
	}

	candidates, total, err := h.DB.ListCandidates(c.Request.Context(), params)
	if err != nil {
		log.Printf("❌ Failed to list candidates: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to list candidates",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 || params.PerPage > 100 {
		params.PerPage = 20
	}
	totalPages := (total + params.PerPage - 1) / params.PerPage

	c.JSON(http.StatusOK, models.PaginatedResponse[models.Candidate]{
		Data:       candidates,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalItems: total,
		TotalPages: totalPages,
	})
}

// GetCandidate returns one candidate together with its error records.
// GET /api/v1/candidates/:id
func (h *Handler) GetCandidate(c *gin.Context) {
	candidate, err := h.DB.GetCandidate(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Candidate not found",
			Code:    http.StatusNotFound,
		})
		return
	}

	errs, err := h.DB.ListImportErrorsByCandidate(c.Request.Context(), candidate.ID)
	if err != nil {
		log.Printf("❌ Failed to load import errors for %s: %v", candidate.ID, err)
		errs = []models.ImportError{}
	}

	c.JSON(http.StatusOK, models.CandidateDetail{
		Candidate: *candidate,
		Errors:    errs,
	})
}

// CorrectCandidate applies an operator's manual field correction.
// PATCH /api/v1/candidates/:id
//
// The record becomes valid; its error records and the document stay put
// until RestoreCandidate moves the file back and clears them.
func (h *Handler) CorrectCandidate(c *gin.Context) {
	var req models.CorrectCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "candidate_name and candidate_number are required",
			Code:    http.StatusBadRequest,
		})
		return
	}

	candidate, err := h.Importer.MarkCorrected(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
			Code:    http.StatusNotFound,
		})
		return
	}

	c.JSON(http.StatusOK, candidate)
}

// RestoreCandidate moves a corrected candidate's document from the errors
// folder back to success.
// POST /api/v1/candidates/:id/restore
func (h *Handler) RestoreCandidate(c *gin.Context) {
	candidate, err := h.Importer.RestoreToSuccess(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "restore_failed",
			Message: err.Error(),
			Code:    http.StatusConflict,
		})
		return
	}

	c.JSON(http.StatusOK, candidate)
}

// DeleteCandidate removes a candidate record (its error records cascade).
// DELETE /api/v1/candidates/:id
func (h *Handler) DeleteCandidate(c *gin.Context) {
	if err := h.DB.DeleteCandidate(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Candidate not found",
			Code:    http.StatusNotFound,
		})
		return
	}
	c.Status(http.StatusNoContent)
}
