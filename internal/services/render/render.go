// Package render rasterizes PDF pages for OCR using go-fitz (MuPDF).
//
// go-fitz needs CGO and the MuPDF libraries at build time; in exchange we
// get faithful 300-DPI-class rendering of scanned pages, which the pure-Go
// PDF libraries cannot do.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// ErrPageNotFound is returned when the requested page index exceeds the
// document's page count.
var ErrPageNotFound = errors.New("page not found")

// Service renders PDF pages to PNG images.
type Service struct{}

// New creates a renderer.
func New() *Service {
	return &Service{}
}

// Render rasterizes the page at pageIndex (0-based) of the given PDF and
// returns it PNG-encoded.
func (s *Service) Render(pdfBytes []byte, pageIndex int) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for rendering: %w", err)
	}
	defer doc.Close()

	if pageIndex < 0 || pageIndex >= doc.NumPage() {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageNotFound, pageIndex, doc.NumPage())
	}

	img, err := doc.Image(pageIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", pageIndex, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode rendered page: %w", err)
	}
	return buf.Bytes(), nil
}
