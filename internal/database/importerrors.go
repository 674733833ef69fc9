// importerrors.go handles import error record database operations.
package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shimizu-Technology/certificate-import-api/internal/models"
)

// CreateImportError inserts a new import error record.
func (db *DB) CreateImportError(ctx context.Context, e *models.ImportError) error {
	query := `
		INSERT INTO import_errors (candidate_id, file_path, candidate_name, candidate_number, field_name, kind, message, session, uploader_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	return db.QueryRowContext(ctx, query,
		e.CandidateID, e.FilePath, e.CandidateName, e.CandidateNumber,
		e.FieldName, e.Kind, e.Message, e.Session, e.UploaderID,
	).Scan(&e.ID, &e.CreatedAt)
}

// ListImportErrorsByCandidate returns all error records referencing one
// candidate.
func (db *DB) ListImportErrorsByCandidate(ctx context.Context, candidateID string) ([]models.ImportError, error) {
	var errs []models.ImportError
	err := db.SelectContext(ctx, &errs,
		`SELECT * FROM import_errors WHERE candidate_id = $1 ORDER BY created_at ASC`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list import errors: %w", err)
	}
	return errs, nil
}

// DeleteImportErrorsForCandidate clears every error record referencing one
// candidate. Callers clear the whole set and re-insert when re-validating.
func (db *DB) DeleteImportErrorsForCandidate(ctx context.Context, candidateID string) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM import_errors WHERE candidate_id = $1`, candidateID)
	if err != nil {
		return fmt.Errorf("failed to clear import errors: %w", err)
	}
	return nil
}

// ListImportErrors returns recent import errors, optionally filtered by
// session and/or uploader.
func (db *DB) ListImportErrors(ctx context.Context, session int, uploaderID *string, limit int) ([]models.ImportError, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var conditions []string
	var args []interface{}
	argNum := 1

	if session > 0 {
		conditions = append(conditions, fmt.Sprintf("session = $%d", argNum))
		args = append(args, session)
		argNum++
	}
	if uploaderID != nil {
		conditions = append(conditions, fmt.Sprintf("uploader_id = $%d", argNum))
		args = append(args, *uploaderID)
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(
		"SELECT * FROM import_errors %s ORDER BY created_at DESC LIMIT $%d",
		whereClause, argNum)
	args = append(args, limit)

	var errs []models.ImportError
	if err := db.SelectContext(ctx, &errs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list import errors: %w", err)
	}
	return errs, nil
}
