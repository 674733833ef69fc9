package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Shimizu-Technology/certificate-import-api/internal/models"
	"github.com/Shimizu-Technology/certificate-import-api/internal/services/fields"
)

// savedFile creates a real file on disk so the file-existence check passes.
func savedFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candidate.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.7"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func TestCheck(t *testing.T) {
	goodPath := savedFile(t)

	tests := []struct {
		name       string
		fields     fields.Fields
		savedPath  string
		session    int
		wantCount  int
		wantFields []string
		wantKinds  []models.ErrorKind
	}{
		{
			name:      "fully valid candidate",
			fields:    fields.Fields{CandidateName: "JANE DOE", CandidateNumber: "123456", SessionYear: 2024},
			savedPath: goodPath,
			session:   2024,
			wantCount: 0,
		},
		{
			name:       "missing candidate number",
			fields:     fields.Fields{CandidateName: "JANE DOE", SessionYear: 2024},
			savedPath:  goodPath,
			session:    2024,
			wantCount:  1,
			wantFields: []string{"CandidateNumber"},
			wantKinds:  []models.ErrorKind{models.ErrMissingField},
		},
		{
			name:       "non-digit candidate number reports exactly one defect",
			fields:     fields.Fields{CandidateName: "JANE DOE", CandidateNumber: "12A3", SessionYear: 2024},
			savedPath:  goodPath,
			session:    2024,
			wantCount:  1,
			wantFields: []string{"CandidateNumber"},
			wantKinds:  []models.ErrorKind{models.ErrInvalidFormat},
		},
		{
			name:       "missing name",
			fields:     fields.Fields{CandidateNumber: "123456", SessionYear: 2024},
			savedPath:  goodPath,
			session:    2024,
			wantCount:  1,
			wantFields: []string{"CandidateName"},
			wantKinds:  []models.ErrorKind{models.ErrMissingField},
		},
		{
			name:       "name captured a document heading",
			fields:     fields.Fields{CandidateName: "Certificate of Education", CandidateNumber: "123456", SessionYear: 2024},
			savedPath:  goodPath,
			session:    2024,
			wantCount:  1,
			wantFields: []string{"CandidateName"},
			wantKinds:  []models.ErrorKind{models.ErrInvalidFormat},
		},
		{
			name:       "session year before the window",
			fields:     fields.Fields{CandidateName: "JANE DOE", CandidateNumber: "123456", SessionYear: 1999},
			savedPath:  goodPath,
			session:    2024,
			wantCount:  1,
			wantFields: []string{"SessionYear"},
			wantKinds:  []models.ErrorKind{models.ErrInvalidFormat},
		},
		{
			name:       "upper bound is exclusive",
			fields:     fields.Fields{CandidateName: "JANE DOE", CandidateNumber: "123456", SessionYear: 2030},
			savedPath:  goodPath,
			session:    2024,
			wantCount:  1,
			wantFields: []string{"SessionYear"},
			wantKinds:  []models.ErrorKind{models.ErrInvalidFormat},
		},
		{
			name:      "batch session fills in a missing year",
			fields:    fields.Fields{CandidateName: "JANE DOE", CandidateNumber: "123456"},
			savedPath: goodPath,
			session:   2024,
			wantCount: 0,
		},
		{
			name:       "saved file missing",
			fields:     fields.Fields{CandidateName: "JANE DOE", CandidateNumber: "123456", SessionYear: 2024},
			savedPath:  filepath.Join(goodPath, "does-not-exist.pdf"),
			session:    2024,
			wantCount:  1,
			wantFields: []string{"FilePath"},
			wantKinds:  []models.ErrorKind{models.ErrFileNotFound},
		},
		{
			name:       "every defect reported at once",
			fields:     fields.Fields{SessionYear: 1980},
			savedPath:  "/nonexistent/path.pdf",
			session:    2024,
			wantCount:  4,
			wantFields: []string{"CandidateNumber", "CandidateName", "FilePath", "SessionYear"},
			wantKinds: []models.ErrorKind{
				models.ErrMissingField, models.ErrMissingField,
				models.ErrFileNotFound, models.ErrInvalidFormat,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Check(Input{
				Fields:       tt.fields,
				SavedPath:    tt.savedPath,
				BatchSession: tt.session,
			})
			if len(errs) != tt.wantCount {
				t.Fatalf("Check() returned %d defects, want %d: %+v", len(errs), tt.wantCount, errs)
			}
			for i, e := range errs {
				if e.Field != tt.wantFields[i] {
					t.Errorf("defect %d on field %q, want %q", i, e.Field, tt.wantFields[i])
				}
				if e.Kind != tt.wantKinds[i] {
					t.Errorf("defect %d has kind %q, want %q", i, e.Kind, tt.wantKinds[i])
				}
			}
		})
	}
}
