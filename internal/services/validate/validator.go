// Package validate checks parsed candidate fields before a record is
// persisted. All checks run independently — nothing short-circuits — so a
// badly mangled certificate reports every defect at once instead of one
// per import attempt.
package validate

import (
	"fmt"
	"os"
	"strings"

	"github.com/Shimizu-Technology/certificate-import-api/internal/models"
	"github.com/Shimizu-Technology/certificate-import-api/internal/services/fields"
)

// Session years outside this window are certainly OCR noise. Lower bound
// inclusive, upper bound exclusive.
const (
	minSessionYear = 2000
	maxSessionYear = 2030
)

// Input carries everything the validator may inspect for one candidate.
type Input struct {
	Page1        []byte
	OCRText      string
	Fields       fields.Fields
	SavedPath    string
	BatchSession int // Session year the batch was uploaded for
}

// FieldError is a single validation defect. The orchestrator turns these
// into persisted ImportError records.
type FieldError struct {
	Field   string
	Kind    models.ErrorKind
	Message string
}

// Check runs every applicable check and returns all defects found. A
// candidate is valid exactly when the returned slice is empty.
func Check(in Input) []FieldError {
	var errs []FieldError

	// Candidate number: required, digits only.
	switch {
	case in.Fields.CandidateNumber == "":
		errs = append(errs, FieldError{
			Field:   "CandidateNumber",
			Kind:    models.ErrMissingField,
			Message: "candidate number was not recognized on the certificate",
		})
	case !allDigits(in.Fields.CandidateNumber):
		errs = append(errs, FieldError{
			Field:   "CandidateNumber",
			Kind:    models.ErrInvalidFormat,
			Message: fmt.Sprintf("candidate number %q contains non-digit characters", in.Fields.CandidateNumber),
		})
	}

	// Candidate name: required; "CERTIFICATE" inside the name is a strong
	// signal OCR grabbed a boilerplate heading instead of the name field.
	switch {
	case in.Fields.CandidateName == "":
		errs = append(errs, FieldError{
			Field:   "CandidateName",
			Kind:    models.ErrMissingField,
			Message: "candidate name was not recognized on the certificate",
		})
	case strings.Contains(strings.ToUpper(in.Fields.CandidateName), "CERTIFICATE"):
		errs = append(errs, FieldError{
			Field:   "CandidateName",
			Kind:    models.ErrInvalidFormat,
			Message: fmt.Sprintf("candidate name %q looks like a document heading, not a name", in.Fields.CandidateName),
		})
	}

	// The saved artifact must exist on disk at the recorded path.
	if _, err := os.Stat(in.SavedPath); err != nil {
		errs = append(errs, FieldError{
			Field:   "FilePath",
			Kind:    models.ErrFileNotFound,
			Message: fmt.Sprintf("saved certificate file missing at %s", in.SavedPath),
		})
	}

	// Effective session year: parsed value when present, the batch's
	// declared year otherwise.
	year := in.Fields.SessionYear
	if year == 0 {
		year = in.BatchSession
	}
	if year < minSessionYear || year >= maxSessionYear {
		errs = append(errs, FieldError{
			Field:   "SessionYear",
			Kind:    models.ErrInvalidFormat,
			Message: fmt.Sprintf("session year %d is outside the accepted range [%d, %d)", year, minSessionYear, maxSessionYear),
		})
	}

	return errs
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
