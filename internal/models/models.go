// Package models defines the data structures used throughout the application.
//
// Go Pattern: Models are plain structs with JSON tags for serialization.
// No ORM magic — the database package handles persistence with raw SQL.
// The `db` tags work with sqlx for database column mapping.
package models

import (
	"encoding/json"
	"time"
)

// BatchStatus represents the processing state of an import batch.
// Go Pattern: We use string constants instead of enums (Go doesn't have
// enums) — define a type alias and named constants.
type BatchStatus string

const (
	StatusPending    BatchStatus = "pending"
	StatusProcessing BatchStatus = "processing"
	StatusCompleted  BatchStatus = "completed"
	StatusFailed     BatchStatus = "failed"
)

// ErrorKind classifies an import failure. The kinds mirror the stages of
// the pipeline: document handling, OCR, field validation, filesystem.
type ErrorKind string

const (
	ErrMalformedDocument  ErrorKind = "MalformedDocument"
	ErrMergeFailure       ErrorKind = "MergeFailure"
	ErrOCRIssue           ErrorKind = "OCRIssue"
	ErrMissingField       ErrorKind = "MissingField"
	ErrInvalidFormat      ErrorKind = "InvalidFormat"
	ErrFileNotFound       ErrorKind = "FileNotFound"
	ErrUnhandledException ErrorKind = "UnhandledException"
)

// Candidate represents one exam-taker's certificate record extracted from a
// batch. IsValid=false records always carry at least one ImportError;
// IsValid=true records have none at creation time.
type Candidate struct {
	ID               string    `json:"id" db:"id"`
	CandidateName    string    `json:"candidate_name" db:"candidate_name"`
	CandidateNumber  string    `json:"candidate_number" db:"candidate_number"`
	Session          int       `json:"session" db:"session"` // Exam year, e.g. 2024
	CentreNumber     string    `json:"centre_number" db:"centre_number"`
	FormCentreNumber string    `json:"form_centre_number" db:"form_centre_number"` // Centre the batch was uploaded for, independent of OCR
	ExamCode         string    `json:"exam_code" db:"exam_code"`
	FilePath         string    `json:"file_path" db:"file_path"`
	RawOCRText       string    `json:"raw_ocr_text" db:"raw_ocr_text"`
	IsValid          bool      `json:"is_valid" db:"is_valid"`
	BatchID          *string   `json:"batch_id,omitempty" db:"batch_id"`      // Pointer = nullable
	UploaderID       *string   `json:"uploader_id,omitempty" db:"uploader_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// ImportError is a field-level or pipeline-level failure recorded during an
// import run. Several ImportErrors may reference one Candidate; clearing
// them is a batch operation, not row-by-row.
type ImportError struct {
	ID              string    `json:"id" db:"id"`
	CandidateID     *string   `json:"candidate_id,omitempty" db:"candidate_id"`
	FilePath        *string   `json:"file_path,omitempty" db:"file_path"`
	CandidateName   *string   `json:"candidate_name,omitempty" db:"candidate_name"`
	CandidateNumber *string   `json:"candidate_number,omitempty" db:"candidate_number"`
	FieldName       string    `json:"field_name" db:"field_name"`
	Kind            ErrorKind `json:"kind" db:"kind"`
	Message         string    `json:"message" db:"message"`
	Session         int       `json:"session" db:"session"`
	UploaderID      *string   `json:"uploader_id,omitempty" db:"uploader_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// ImportBatch represents one uploaded multi-page PDF and its processing
// progress. Counts are denormalized so GET /imports/:id never has to scan
// the candidates table.
type ImportBatch struct {
	ID              string          `json:"id" db:"id"`
	Session         int             `json:"session" db:"session"`
	ExamCode        string          `json:"exam_code" db:"exam_code"`
	CentreNumber    string          `json:"centre_number" db:"centre_number"`
	SourceFile      string          `json:"source_file" db:"source_file"` // Staged upload path until archived
	OriginalName    string          `json:"original_name" db:"original_name"`
	Status          BatchStatus     `json:"status" db:"status"`
	TotalCandidates int             `json:"total_candidates" db:"total_candidates"`
	SucceededCount  int             `json:"succeeded_count" db:"succeeded_count"`
	FailedCount     int             `json:"failed_count" db:"failed_count"`
	Messages        json.RawMessage `json:"messages" db:"messages"` // JSONB — per-candidate error strings
	ErrorMessage    string          `json:"error_message,omitempty" db:"error_message"`
	UploaderID      *string         `json:"uploader_id,omitempty" db:"uploader_id"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// BatchResult is the transient outcome of one orchestration run. It exists
// only for the duration of the run and is folded into the ImportBatch row.
// TotalCandidates counts successfully saved candidates only — it always
// equals len(SavedFiles); candidates that failed any stage are tallied in
// FailedCandidates instead.
type BatchResult struct {
	SavedFiles       []string `json:"saved_files"`
	Errors           []string `json:"errors"`
	TotalCandidates  int      `json:"total_candidates"`
	FailedCandidates int      `json:"failed_candidates"`
}

// User represents an operator account. Uploader identity on batches,
// candidates and import errors refers back to a User.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // "-" means never serialize to JSON
	Name         string    `json:"name" db:"name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// --- Request/Response DTOs (Data Transfer Objects) ---
// Go Pattern: Separate structs for API input/output vs database models.
// This keeps the API contract independent of the database schema.

// RegisterRequest is the JSON body for POST /api/v1/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

// LoginRequest is the JSON body for POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register/login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// CorrectCandidateRequest is the JSON body for PATCH /api/v1/candidates/:id.
// An operator fixes the OCR-mangled fields by hand; the record becomes valid
// but its file is left wherever it currently is.
type CorrectCandidateRequest struct {
	CandidateName   string `json:"candidate_name" binding:"required"`
	CandidateNumber string `json:"candidate_number" binding:"required"`
	Session         int    `json:"session,omitempty"`
	CentreNumber    string `json:"centre_number,omitempty"`
}

// CandidateListParams holds query parameters for listing candidates.
type CandidateListParams struct {
	Search  string `form:"search"`  // Matches name, number or centre
	Valid   *bool  `form:"valid"`   // nil = both partitions
	Page    int    `form:"page"`    // Page number (1-indexed)
	PerPage int    `form:"per_page"`
}

// CandidateDetail bundles a candidate with its error records.
type CandidateDetail struct {
	Candidate Candidate     `json:"candidate"`
	Errors    []ImportError `json:"errors"`
}

// PaginatedResponse wraps a list response with pagination metadata.
type PaginatedResponse[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// ErrorResponse is a standard error format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Workers  int    `json:"workers"`
}
