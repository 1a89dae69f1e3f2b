package core

import (
	"testing"
	"time"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"2024-01-15", "2024-01-15", true},
		{"15/01/2024", "2024-01-15", true},
		{"15-01-2024", "2024-01-15", true},
		{"5/1/2024", "2024-01-05", true},
		{" 2024-03-01 ", "2024-03-01", true},
		{"2024-01-15T10:30:00Z", "2024-01-15", true},
		{"29/02/2024", "2024-02-29", true},
		{"29/02/2023", "29/02/2023", false},
		{"2024-13-01", "2024-13-01", false},
		{"01/15/2024", "01/15/2024", false},
		{"hier", "hier", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := NormalizeDate(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("NormalizeDate(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatDisplayDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2024-01-15", "15/01/2024"},
		{"2023-12-31", "31/12/2023"},
		{"15/01/2024", "15/01/2024"},
		{"not a date", "not a date"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := FormatDisplayDate(tt.input); got != tt.want {
			t.Errorf("FormatDisplayDate(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCivilDate(t *testing.T) {
	loc := time.FixedZone("UTC+1", 3600)
	in := time.Date(2024, 6, 15, 0, 30, 0, 0, loc)
	got := CivilDate(in)
	want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("CivilDate() = %v, want %v", got, want)
	}
}

func TestStripSpaces(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"06 12 34 56 78", "0612345678"},
		{"\t0612345678\n", "0612345678"},
		{"06 12", "0612"},
		{"06-12", "06-12"},
	}
	for _, tt := range tests {
		if got := StripSpaces(tt.input); got != tt.want {
			t.Errorf("StripSpaces(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDigitsOnly(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"06-12-34-56-78", "0612345678"},
		{"06.12.34.56.78", "0612345678"},
		{"(06) 12 34\u00a056 78", "0612345678"},
		{"+212 6 12", "212612"},
		{"n/a", ""},
	}
	for _, tt := range tests {
		if got := DigitsOnly(tt.input); got != tt.want {
			t.Errorf("DigitsOnly(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Alaoui  ", "Alaoui"},
		{`="0612345678"`, "0612345678"},
		{" 148-A-03-41 ", "148-A-03-41"},
		{"=", "="},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanCell(tt.input); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
