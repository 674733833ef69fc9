// Package ocr wraps the Tesseract OCR engine via gosseract.
//
// Tesseract must be installed on the system. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr libtesseract-dev
//
// The client is tuned for short structured certificate fields, not prose:
// recognition is restricted to a character whitelist and the dictionary
// lookups that bias output toward English words are disabled.
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// charWhitelist restricts recognition to the characters that actually
// occur in certificate fields: names, candidate numbers, dates and codes.
const charWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-/. "

// Engine performs text recognition on page images.
type Engine struct {
	lang string
}

// New creates an OCR engine using the given tesseract language pack
// (usually "eng").
func New(lang string) *Engine {
	if lang == "" {
		lang = "eng"
	}
	return &Engine{lang: lang}
}

// Recognize runs OCR on an encoded raster image (PNG/JPEG) and returns the
// recognized text.
//
// Contract: the result is never "null" — empty or undecodable input yields
// an empty string and a nil error, so downstream code never tests for
// missing text, only for empty text.
func (e *Engine) Recognize(imageData []byte) (string, error) {
	if len(imageData) == 0 {
		return "", nil
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.lang); err != nil {
		return "", fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetWhitelist(charWhitelist); err != nil {
		return "", fmt.Errorf("failed to set OCR whitelist: %w", err)
	}
	// Dictionary lookups pull recognition toward English words, which is
	// wrong for candidate numbers and centre codes.
	for _, v := range []string{"load_system_dawg", "load_freq_dawg"} {
		if err := client.SetVariable(gosseract.SettableVariable(v), "F"); err != nil {
			return "", fmt.Errorf("failed to set OCR variable %s: %w", v, err)
		}
	}

	if err := client.SetImageFromBytes(imageData); err != nil {
		// Undecodable input degrades to empty text rather than an error —
		// the validator will flag the missing fields downstream.
		return "", nil
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}
