// candidates.go handles candidate record database operations.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Shimizu-Technology/certificate-import-api/internal/models"
)

// CreateCandidate inserts a new candidate record.
// Returns the created candidate with its generated ID and timestamps.
func (db *DB) CreateCandidate(ctx context.Context, c *models.Candidate) error {
	query := `
		INSERT INTO candidates (candidate_name, candidate_number, session, centre_number, form_centre_number, exam_code, file_path, raw_ocr_text, is_valid, batch_id, uploader_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	return db.QueryRowContext(ctx, query,
		c.CandidateName, c.CandidateNumber, c.Session, c.CentreNumber,
		c.FormCentreNumber, c.ExamCode, c.FilePath, c.RawOCRText,
		c.IsValid, c.BatchID, c.UploaderID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// GetCandidate retrieves a single candidate by ID.
func (db *DB) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	var c models.Candidate
	err := db.GetContext(ctx, &c, `SELECT * FROM candidates WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("candidate not found: %w", err)
	}
	return &c, nil
}

// UpdateCandidate updates a candidate's fields after correction or a file
// move.
func (db *DB) UpdateCandidate(ctx context.Context, c *models.Candidate) error {
	query := `
		UPDATE candidates
		SET candidate_name = $2, candidate_number = $3, session = $4,
			centre_number = $5, file_path = $6, is_valid = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	return db.QueryRowContext(ctx, query,
		c.ID, c.CandidateName, c.CandidateNumber, c.Session,
		c.CentreNumber, c.FilePath, c.IsValid,
	).Scan(&c.UpdatedAt)
}

// ListCandidates returns a paginated list of candidates with optional
// filters. The valid/invalid partitions are ordered by identity so the
// review UI pages stably.
func (db *DB) ListCandidates(ctx context.Context, params models.CandidateListParams) ([]models.Candidate, int, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 || params.PerPage > 100 {
		params.PerPage = 20
	}

	var conditions []string
	var args []interface{}
	argNum := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(candidate_name ILIKE $%d OR candidate_number ILIKE $%d OR centre_number ILIKE $%d)", argNum, argNum, argNum))
		args = append(args, "%"+params.Search+"%")
		argNum++
	}

	if params.Valid != nil {
		conditions = append(conditions, fmt.Sprintf("is_valid = $%d", argNum))
		args = append(args, *params.Valid)
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM candidates %s", whereClause)
	var total int
	err := db.GetContext(ctx, &total, countQuery, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			total = 0
		} else {
			return nil, 0, fmt.Errorf("count query failed: %w", err)
		}
	}

	offset := (params.Page - 1) * params.PerPage
	selectQuery := fmt.Sprintf(
		"SELECT * FROM candidates %s ORDER BY id LIMIT $%d OFFSET $%d",
		whereClause, argNum, argNum+1,
	)
	args = append(args, params.PerPage, offset)

	var candidates []models.Candidate
	err = db.SelectContext(ctx, &candidates, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list query failed: %w", err)
	}

	return candidates, total, nil
}

// DeleteCandidate removes a candidate by ID. Its import errors cascade via
// the foreign key.
func (db *DB) DeleteCandidate(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("candidate not found")
	}
	return nil
}
