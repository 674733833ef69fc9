// imports.go handles batch upload and import status endpoints.
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Shimizu-Technology/certificate-import-api/internal/middleware"
	"github.com/Shimizu-Technology/certificate-import-api/internal/models"
	"github.com/Shimizu-Technology/certificate-import-api/internal/services/importer"
	"github.com/Shimizu-Technology/certificate-import-api/internal/services/pdfops"
	"github.com/Shimizu-Technology/certificate-import-api/internal/services/worker"
)

// maxUploadBytes caps batch uploads. A 200-page scanned batch at 300 DPI
// comes in well under this.
const maxUploadBytes = 200 << 20 // 200 MB

// CreateImport accepts a scanned batch PDF and queues it for processing.
// POST /api/v1/imports (multipart/form-data: file, session, exam_code, centre_number)
//
// The upload is staged to local disk first — the import runs in the
// background, and the HTTP request must not hold the file in memory while
// it waits in the queue.
func (h *Handler) CreateImport(c *gin.Context) {
	session, err := strconv.Atoi(c.PostForm("session"))
	if err != nil || session <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "session must be a positive year, e.g. 2024",
			Code:    http.StatusBadRequest,
		})
		return
	}
	examCode := c.PostForm("exam_code")
	centreNumber := c.PostForm("centre_number")
	if examCode == "" || centreNumber == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "exam_code and centre_number are required",
			Code:    http.StatusBadRequest,
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "A PDF file is required in the 'file' field",
			Code:    http.StatusBadRequest,
		})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
			Error:   "file_too_large",
			Message: fmt.Sprintf("File exceeds the %d MB upload limit", maxUploadBytes>>20),
			Code:    http.StatusRequestEntityTooLarge,
		})
		return
	}

	stagedPath, err := h.stageUpload(fileHeader)
	if err != nil {
		log.Printf("❌ Failed to stage upload: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "storage_error",
			Message: "Failed to store the uploaded file",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	// Cheap sanity check before a batch record exists: reject non-PDFs at
	// the door instead of queueing a doomed job.
	head, err := stagedHead(stagedPath)
	if err != nil {
		log.Printf("❌ Failed to read back staged upload: %v", err)
		os.Remove(stagedPath)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "storage_error",
			Message: "Failed to read back the uploaded file",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	if !pdfops.ValidatePDF(head) {
		os.Remove(stagedPath)
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_file",
			Message: "Uploaded file is not a PDF document",
			Code:    http.StatusBadRequest,
		})
		return
	}

	var uploaderID *string
	if user := middleware.GetUser(c); user != nil {
		uploaderID = &user.ID
	}

	batch := &models.ImportBatch{
		Session:      session,
		ExamCode:     examCode,
		CentreNumber: centreNumber,
		SourceFile:   stagedPath,
		OriginalName: fileHeader.Filename,
		Status:       models.StatusPending,
		UploaderID:   uploaderID,
	}
	if err := h.DB.CreateImportBatch(c.Request.Context(), batch); err != nil {
		log.Printf("❌ Failed to create batch record: %v", err)
		os.Remove(stagedPath)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to create import batch",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	job := worker.Job{
		Batch: importer.Batch{
			ID:           batch.ID,
			Session:      session,
			ExamCode:     examCode,
			CentreNumber: centreNumber,
			SourcePath:   stagedPath,
			OriginalName: fileHeader.Filename,
			UploaderID:   uploaderID,
		},
	}
	if err := h.Worker.Submit(job); err != nil {
		h.DB.UpdateImportBatchStatus(c.Request.Context(), batch.ID, models.StatusFailed, err.Error())
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "queue_full",
			Message: "Import queue is full; try again shortly",
			Code:    http.StatusServiceUnavailable,
		})
		return
	}

	c.JSON(http.StatusAccepted, batch)
}

// stagedHead reads the leading magic bytes of a staged upload. A file
// shorter than the PDF signature is not a read failure — the short head
// simply fails the caller's signature check.
func stagedHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, 5)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return head[:n], nil
}

// stageUpload copies the multipart upload into the staging directory under
// a unique name and returns the staged path.
func (h *Handler) stageUpload(fileHeader *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(h.StagingDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create staging dir: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	stagedPath := filepath.Join(h.StagingDir, uuid.NewString()+".pdf")
	dst, err := os.Create(stagedPath)
	if err != nil {
		return "", fmt.Errorf("failed to create staged file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(stagedPath)
		return "", fmt.Errorf("failed to write staged file: %w", err)
	}
	return stagedPath, nil
}

// GetImport returns one batch with its current progress.
// GET /api/v1/imports/:id
func (h *Handler) GetImport(c *gin.Context) {
	batch, err := h.DB.GetImportBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Import batch not found",
			Code:    http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, batch)
}

// ListImports returns the authenticated user's recent batches.
// GET /api/v1/imports?limit=20
func (h *Handler) ListImports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	var uploaderID *string
	if user := middleware.GetUser(c); user != nil {
		uploaderID = &user.ID
	}

	batches, err := h.DB.ListImportBatches(c.Request.Context(), uploaderID, limit)
	if err != nil {
		log.Printf("❌ Failed to list batches: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to list import batches",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, batches)
}
