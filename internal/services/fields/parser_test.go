package fields

import "testing"

func TestCleanNumeric(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already clean", input: "123456", want: "123456"},
		{name: "O confused for zero", input: "1O23O6", want: "102306"},
		{name: "lowercase o", input: "4o5", want: "405"},
		{name: "I and l confused for one", input: "I2l4", want: "1214"},
		{name: "S confused for five", input: "S67", want: "567"},
		{name: "B confused for eight", input: "B90", want: "890"},
		{name: "mixed with punctuation", input: "No. 1O2-3B4", want: "102 384"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanNumeric(tt.input); got != tt.want {
				t.Errorf("CleanNumeric(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_LabeledFields(t *testing.T) {
	text := `GENERAL CERTIFICATE OF EDUCATION
NAME: JANE ANN DOE
CANDIDATE NO: 1O23456
CENTRE NO: 889B
SESSION 2O24`

	f := Parse(text)

	if f.CandidateName != "JANE ANN DOE" {
		t.Errorf("CandidateName = %q, want %q", f.CandidateName, "JANE ANN DOE")
	}
	if f.CandidateNumber != "1023456" {
		t.Errorf("CandidateNumber = %q, want %q", f.CandidateNumber, "1023456")
	}
	if f.CentreNumber != "8898" {
		t.Errorf("CentreNumber = %q, want %q", f.CentreNumber, "8898")
	}
	if f.SessionYear != 2024 {
		t.Errorf("SessionYear = %d, want 2024", f.SessionYear)
	}
}

func TestParse_FallbackNumberIsLongestDigitRun(t *testing.T) {
	text := `EXAMINATION BOARD
JOHN SMITH
ref 123 code 9876543 page 42`

	f := Parse(text)
	if f.CandidateNumber != "9876543" {
		t.Errorf("CandidateNumber = %q, want %q (longest digit run)", f.CandidateNumber, "9876543")
	}
}

func TestParse_NameGuessSkipsBoilerplate(t *testing.T) {
	text := `CERTIFICATE OF SECONDARY EDUCATION
EXAMINATION COUNCIL
MARY JOHNSON
CANDIDATE NO: 445566`

	f := Parse(text)
	if f.CandidateName != "MARY JOHNSON" {
		t.Errorf("CandidateName = %q, want %q", f.CandidateName, "MARY JOHNSON")
	}
}

func TestParse_Empty(t *testing.T) {
	f := Parse("")
	if f.CandidateName != "" || f.CandidateNumber != "" || f.SessionYear != 0 || f.CentreNumber != "" {
		t.Errorf("Parse(\"\") = %+v, want zero value", f)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "  JANE   DOE  ", want: "JANE DOE"},
		{input: "JANE DOE.", want: "JANE DOE"},
		{input: "JANE DOE :-", want: "JANE DOE"},
	}

	for _, tt := range tests {
		if got := normalizeName(tt.input); got != tt.want {
			t.Errorf("normalizeName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
