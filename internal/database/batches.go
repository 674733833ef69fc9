// batches.go handles import batch database operations.
//
// Go Pattern: Using a separate table for batches lets us track aggregate
// progress without querying every candidate. The counts are denormalized
// and written once when the import run finishes.
package database

import (
	"context"
	"fmt"

	"github.com/Shimizu-Technology/certificate-import-api/internal/models"
)

// CreateImportBatch inserts a new batch record in the pending state.
func (db *DB) CreateImportBatch(ctx context.Context, b *models.ImportBatch) error {
	query := `
		INSERT INTO import_batches (session, exam_code, centre_number, source_file, original_name, status, messages, uploader_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	if b.Messages == nil {
		b.Messages = []byte("[]")
	}

	return db.QueryRowContext(ctx, query,
		b.Session, b.ExamCode, b.CentreNumber, b.SourceFile,
		b.OriginalName, b.Status, b.Messages, b.UploaderID,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// GetImportBatch retrieves a single batch by ID.
func (db *DB) GetImportBatch(ctx context.Context, id string) (*models.ImportBatch, error) {
	var b models.ImportBatch
	err := db.GetContext(ctx, &b, `SELECT * FROM import_batches WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("import batch not found: %w", err)
	}
	return &b, nil
}

// UpdateImportBatchStatus transitions a batch's status (and error message,
// for failures).
func (db *DB) UpdateImportBatchStatus(ctx context.Context, id string, status models.BatchStatus, errorMessage string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE import_batches SET status = $2, error_message = $3, updated_at = NOW() WHERE id = $1`,
		id, status, errorMessage)
	if err != nil {
		return fmt.Errorf("failed to update batch status: %w", err)
	}
	return nil
}

// FinishImportBatch records the final result of an import run.
func (db *DB) FinishImportBatch(ctx context.Context, b *models.ImportBatch) error {
	query := `
		UPDATE import_batches
		SET status = $2, total_candidates = $3, succeeded_count = $4,
			failed_count = $5, messages = $6, source_file = $7,
			error_message = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	return db.QueryRowContext(ctx, query,
		b.ID, b.Status, b.TotalCandidates, b.SucceededCount,
		b.FailedCount, b.Messages, b.SourceFile, b.ErrorMessage,
	).Scan(&b.UpdatedAt)
}

// ListImportBatches returns recent batches, optionally filtered to one
// uploader.
func (db *DB) ListImportBatches(ctx context.Context, uploaderID *string, limit int) ([]models.ImportBatch, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var batches []models.ImportBatch
	var uploaderValue interface{}
	if uploaderID != nil {
		uploaderValue = *uploaderID
	}
	err := db.SelectContext(ctx, &batches,
		`SELECT * FROM import_batches
		 WHERE ($1::uuid IS NULL OR uploader_id = $1)
		 ORDER BY created_at DESC
		 LIMIT $2`,
		uploaderValue, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import batches: %w", err)
	}
	return batches, nil
}
