// pdfops_test.go — Unit tests for batch PDF splitting, pairing and merging.
//
// Test documents are fabricated with gofpdf so every case runs against a
// real, well-formed PDF rather than hand-crafted byte soup.
package pdfops

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// makePDF builds an n-page PDF in memory.
func makePDF(t *testing.T, n int) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 16)
	for i := 1; i <= n; i++ {
		pdf.AddPage()
		pdf.Cell(40, 10, fmt.Sprintf("Page %d", i))
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("failed to build test PDF: %v", err)
	}
	return buf.Bytes()
}

func TestValidatePDF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{name: "real PDF", data: []byte("%PDF-1.7 ..."), want: true},
		{name: "empty", data: []byte{}, want: false},
		{name: "truncated magic", data: []byte("%PD"), want: false},
		{name: "not a PDF", data: []byte("hello world"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidatePDF(tt.data); got != tt.want {
				t.Errorf("ValidatePDF() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPageCount(t *testing.T) {
	doc := makePDF(t, 5)
	count, err := PageCount(doc)
	if err != nil {
		t.Fatalf("PageCount() error = %v", err)
	}
	if count != 5 {
		t.Errorf("PageCount() = %d, want 5", count)
	}
}

func TestPageCount_Malformed(t *testing.T) {
	_, err := PageCount([]byte("%PDF-1.7 but nothing else"))
	if !errors.Is(err, ErrMalformedDocument) {
		t.Errorf("PageCount() error = %v, want ErrMalformedDocument", err)
	}
}

// TestSplit verifies the core split property: an N-page document yields
// exactly N single-page documents, in order, each independently openable.
func TestSplit(t *testing.T) {
	for _, n := range []int{1, 2, 4, 7} {
		t.Run(fmt.Sprintf("%d pages", n), func(t *testing.T) {
			pages, err := Split(makePDF(t, n))
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			if len(pages) != n {
				t.Fatalf("Split() returned %d pages, want %d", len(pages), n)
			}
			for i, page := range pages {
				count, err := PageCount(page)
				if err != nil {
					t.Errorf("page %d is not openable: %v", i+1, err)
					continue
				}
				if count != 1 {
					t.Errorf("page %d has %d pages, want 1", i+1, count)
				}
			}
		})
	}
}

func TestSplit_Malformed(t *testing.T) {
	_, err := Split([]byte("not a pdf at all"))
	if !errors.Is(err, ErrMalformedDocument) {
		t.Errorf("Split() error = %v, want ErrMalformedDocument", err)
	}
}

func TestPairPages(t *testing.T) {
	page := func(n int) []byte { return []byte{byte(n)} }

	tests := []struct {
		name      string
		pages     [][]byte
		wantPairs int
		wantOdd   bool // last pair has nil Page2
	}{
		{name: "empty", pages: [][]byte{}, wantPairs: 0},
		{name: "single page", pages: [][]byte{page(1)}, wantPairs: 1, wantOdd: true},
		{name: "one pair", pages: [][]byte{page(1), page(2)}, wantPairs: 1},
		{name: "two pairs", pages: [][]byte{page(1), page(2), page(3), page(4)}, wantPairs: 2},
		{name: "dangling fifth page", pages: [][]byte{page(1), page(2), page(3), page(4), page(5)}, wantPairs: 3, wantOdd: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs := PairPages(tt.pages)
			if len(pairs) != tt.wantPairs {
				t.Fatalf("PairPages() returned %d pairs, want %d", len(pairs), tt.wantPairs)
			}
			for i, p := range pairs {
				if p.Index != i+1 {
					t.Errorf("pair %d has Index %d, want %d", i, p.Index, i+1)
				}
				if !bytes.Equal(p.Page1, tt.pages[2*i]) {
					t.Errorf("pair %d Page1 mismatch", i)
				}
			}
			if tt.wantPairs > 0 {
				last := pairs[len(pairs)-1]
				if tt.wantOdd && last.Page2 != nil {
					t.Error("last pair should have nil Page2")
				}
				if !tt.wantOdd && last.Page2 == nil {
					t.Error("last pair should have a Page2")
				}
			}
		})
	}
}

// TestMerge_RoundTrip splits a batch and re-merges each pair, checking the
// merged candidate document has the right page count.
func TestMerge_RoundTrip(t *testing.T) {
	pages, err := Split(makePDF(t, 4))
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	for _, pair := range PairPages(pages) {
		merged, err := Merge(pair.Page1, pair.Page2)
		if err != nil {
			t.Fatalf("Merge() error for candidate %d: %v", pair.Index, err)
		}
		count, err := PageCount(merged)
		if err != nil {
			t.Fatalf("merged candidate %d is not openable: %v", pair.Index, err)
		}
		if count != 2 {
			t.Errorf("candidate %d has %d pages, want 2", pair.Index, count)
		}
	}
}

func TestMerge_SinglePage(t *testing.T) {
	pages, err := Split(makePDF(t, 1))
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	merged, err := Merge(pages[0])
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	count, err := PageCount(merged)
	if err != nil {
		t.Fatalf("merged document is not openable: %v", err)
	}
	if count != 1 {
		t.Errorf("merged document has %d pages, want 1", count)
	}
}

func TestMerge_Failures(t *testing.T) {
	tests := []struct {
		name  string
		pages [][]byte
	}{
		{name: "no pages", pages: nil},
		{name: "garbage single page", pages: [][]byte{[]byte("garbage")}},
		{name: "garbage second page", pages: [][]byte{makePDF(t, 1), []byte("garbage")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Merge(tt.pages...)
			if !errors.Is(err, ErrMergeFailure) {
				t.Errorf("Merge() error = %v, want ErrMergeFailure", err)
			}
		})
	}
}
