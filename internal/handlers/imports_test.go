package handlers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Shimizu-Technology/certificate-import-api/internal/services/pdfops"
)

func TestStagedHead(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := []struct {
		name      string
		path      string
		wantErr   bool
		wantValid bool
	}{
		{name: "real PDF header", path: write("ok.pdf", []byte("%PDF-1.7 rest of file")), wantValid: true},
		{name: "not a PDF", path: write("text.pdf", []byte("hello world")), wantValid: false},
		{name: "shorter than the signature", path: write("tiny.pdf", []byte("%P")), wantValid: false},
		{name: "empty file", path: write("empty.pdf", nil), wantValid: false},
		{name: "missing file", path: filepath.Join(dir, "nope.pdf"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head, err := stagedHead(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("stagedHead() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := pdfops.ValidatePDF(head); got != tt.wantValid {
				t.Errorf("ValidatePDF(head) = %v, want %v", got, tt.wantValid)
			}
		})
	}
}
