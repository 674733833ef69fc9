// Package pdfops provides page-level PDF surgery for batch imports.
//
// We use pdfcpu for the structural work: splitting a scanned batch into
// single-page documents and re-assembling candidate pairs. pdfcpu copies
// page content streams structurally — no re-rendering, no lossy
// transcoding — which matters because these are scans headed for OCR.
package pdfops

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Sentinel errors for the two failure modes of this package. Callers map
// these onto the import error taxonomy with errors.Is.
var (
	ErrMalformedDocument = errors.New("malformed document")
	ErrMergeFailure      = errors.New("merge failure")
)

// Pair groups two consecutive scanned pages belonging to one candidate.
// Page2 is nil only for a dangling final odd page.
type Pair struct {
	Index int // 1-based candidate index within the batch
	Page1 []byte
	Page2 []byte
}

// ValidatePDF checks if the data looks like a valid PDF by checking the
// magic bytes. PDF files start with "%PDF-".
func ValidatePDF(data []byte) bool {
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

// PageCount returns the number of pages in the document.
func PageCount(data []byte) (int, error) {
	count, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return count, nil
}

// Split breaks a multi-page PDF into an ordered sequence of single-page
// PDFs, one per source page. Each element is independently a valid,
// openable document carrying that page's content, resources and fonts.
//
// A document that cannot be parsed yields ErrMalformedDocument. A document
// that genuinely has zero pages yields an empty sequence and no error —
// the batch simply has no candidates.
func Split(data []byte) ([][]byte, error) {
	count, err := PageCount(data)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return [][]byte{}, nil
	}

	pages := make([][]byte, 0, count)
	for i := 1; i <= count; i++ {
		var buf bytes.Buffer
		// Trim keeps only the selected page. A fresh reader per page keeps
		// pdfcpu's object tables independent between extractions.
		err := api.Trim(bytes.NewReader(data), &buf, []string{strconv.Itoa(i)}, model.NewDefaultConfiguration())
		if err != nil {
			return nil, fmt.Errorf("%w: extracting page %d: %v", ErrMalformedDocument, i, err)
		}
		pages = append(pages, buf.Bytes())
	}
	return pages, nil
}

// PairPages groups the split sequence into consecutive non-overlapping
// pairs. Candidate index is 1-based: pages 1–2 form candidate 1, pages 3–4
// candidate 2, and so on. Defined for any length including 0 and 1; an odd
// final page produces a pair with Page2 nil.
func PairPages(pages [][]byte) []Pair {
	pairs := make([]Pair, 0, (len(pages)+1)/2)
	for i := 0; i < len(pages); i += 2 {
		p := Pair{Index: i/2 + 1, Page1: pages[i]}
		if i+1 < len(pages) {
			p.Page2 = pages[i+1]
		}
		pairs = append(pairs, p)
	}
	return pairs
}

// Merge combines one or two single-page PDFs into one document, pages
// appended in input order. Each source is parsed independently, so shared
// internal object numbers between the two buffers cannot cross-contaminate.
func Merge(pages ...[]byte) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages to merge", ErrMergeFailure)
	}

	if len(pages) == 1 {
		// Still run it through pdfcpu so an unreadable source fails the
		// same way a two-page merge would.
		if _, err := PageCount(pages[0]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMergeFailure, err)
		}
		out := make([]byte, len(pages[0]))
		copy(out, pages[0])
		return out, nil
	}

	rsc := make([]io.ReadSeeker, len(pages))
	for i, p := range pages {
		rsc[i] = bytes.NewReader(p)
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(rsc, &buf, false, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMergeFailure, err)
	}
	return buf.Bytes(), nil
}
