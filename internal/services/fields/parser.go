// Package fields extracts structured candidate fields from raw OCR text.
//
// Everything here is best-effort: OCR output from a certificate scan is
// noisy and any field may come back empty. The validator decides what is
// acceptable; this package only pulls out the most plausible values.
package fields

import (
	"regexp"
	"strconv"
	"strings"
)

// Fields holds the structured values recognized on a certificate face.
// Zero values mean "not found".
type Fields struct {
	CandidateName   string
	CandidateNumber string
	SessionYear     int
	CentreNumber    string
}

var (
	nameRe   = regexp.MustCompile(`(?i)\bNAME\b[.:\s]*([A-Z][A-Z .'-]{2,})`)
	numberRe = regexp.MustCompile(`(?i)\bCANDIDATE\s*(?:NO|NUMBER)?\b[.:\s]*([A-Z0-9]{4,})`)
	centreRe = regexp.MustCompile(`(?i)\bCENTRE\s*(?:NO|NUMBER)?\b[.:\s]*([A-Z0-9]{2,})`)
	yearRe   = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	digitsRe = regexp.MustCompile(`\d{6,}`)
)

// Parse extracts candidate fields from OCR text. All fields are optional;
// absent values stay zero.
func Parse(text string) Fields {
	var f Fields
	if text == "" {
		return f
	}

	if m := nameRe.FindStringSubmatch(text); m != nil {
		f.CandidateName = normalizeName(m[1])
	}
	if f.CandidateName == "" {
		f.CandidateName = guessNameLine(text)
	}

	if m := numberRe.FindStringSubmatch(text); m != nil {
		f.CandidateNumber = CleanNumeric(m[1])
	}
	if f.CandidateNumber == "" {
		// Fallback: the longest digit run anywhere on the page.
		runs := digitsRe.FindAllString(CleanNumeric(text), -1)
		for _, r := range runs {
			if len(r) > len(f.CandidateNumber) {
				f.CandidateNumber = r
			}
		}
	}

	if m := centreRe.FindStringSubmatch(text); m != nil {
		f.CentreNumber = CleanNumeric(m[1])
	}

	if m := yearRe.FindString(CleanNumeric(text)); m != "" {
		if year, err := strconv.Atoi(m); err == nil {
			f.SessionYear = year
		}
	}

	return f
}

// numericSubstitutions maps glyphs tesseract commonly confuses for digits.
// The substitution is applied ONLY when extracting numeric fields — running
// it over name text would corrupt legitimate letters (every O and I).
var numericSubstitutions = strings.NewReplacer(
	"O", "0",
	"o", "0",
	"I", "1",
	"l", "1",
	"S", "5",
	"B", "8",
)

// CleanNumeric applies the digit-confusion substitutions and strips
// everything that still isn't a decimal digit.
func CleanNumeric(s string) string {
	s = numericSubstitutions.Replace(s)
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == ' ' || r == '\n' {
			b.WriteRune(r) // keep word boundaries for run detection
		}
	}
	return b.String()
}

// normalizeName collapses whitespace and trims stray punctuation that OCR
// tacks onto the end of a name line.
func normalizeName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " .:-")
}

// boilerplate words that disqualify a line from being the candidate name.
var boilerplate = []string{"CERTIFICATE", "EXAMINATION", "COUNCIL", "BOARD", "AWARDED", "SESSION", "CENTRE"}

// guessNameLine falls back to the first line that looks like a person's
// name: two or more words, mostly letters, not a boilerplate heading.
func guessNameLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = normalizeName(line)
		if line == "" || len(strings.Fields(line)) < 2 {
			continue
		}
		upper := strings.ToUpper(line)
		skip := false
		for _, word := range boilerplate {
			if strings.Contains(upper, word) {
				skip = true
				break
			}
		}
		if skip || !mostlyLetters(line) {
			continue
		}
		return line
	}
	return ""
}

func mostlyLetters(s string) bool {
	letters := 0
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || r == ' ' {
			letters++
		}
	}
	return len(s) > 0 && letters*10 >= len(s)*8
}
