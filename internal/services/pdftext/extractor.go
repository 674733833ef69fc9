// Package pdftext probes a PDF page for an embedded text layer.
//
// We use the ledongthuc/pdf library — a pure Go implementation, no CGO.
// Scanned certificates have no text layer and fall through to OCR, but
// digitally produced ones do, and their text layer is both faster and more
// accurate than re-recognizing a rendering of the page.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// minUsableRunes is the smallest text layer we trust. Scanner firmware
// sometimes embeds a handful of stray glyphs; below this size we treat the
// page as image-only.
const minUsableRunes = 20

// FirstPageText returns the text layer of page 1, or "" when the page is
// image-only (or the layer is too small to be a real certificate face).
func FirstPageText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	if reader.NumPage() == 0 {
		return "", nil
	}

	page := reader.Page(1)
	if page.V.IsNull() {
		return "", nil
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		// Some pages carry only images; that's the normal OCR path.
		return "", nil
	}

	text = strings.TrimSpace(text)
	if len([]rune(text)) < minUsableRunes {
		return "", nil
	}
	return text, nil
}
