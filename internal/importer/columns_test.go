package importer

import "testing"

func TestFindColumnValue_ExactMatch(t *testing.T) {
	row := RawRow{"الاسم الكامل": "Fatima Noor", "Name": "ignored"}

	v, ok := FindColumnValue(row, colFullName)
	if !ok {
		t.Fatal("expected a match")
	}
	if v != "Fatima Noor" {
		t.Errorf("got %v, want the first candidate's cell", v)
	}
}

func TestFindColumnValue_SkipsEmptyCells(t *testing.T) {
	row := RawRow{
		"الكود المرجعي": "   ",
		"Ref Code":      "R-55",
	}

	v, ok := FindColumnValue(row, colReferenceCode)
	if !ok {
		t.Fatal("expected a match")
	}
	if v != "R-55" {
		t.Errorf("got %v, want fallthrough past the blank cell", v)
	}
}

func TestFindColumnValue_NormalizedMatch(t *testing.T) {
	// BOM prefix, non-breaking space, odd casing: none of these match
	// exactly but all normalize onto "reference code".
	row := RawRow{"\ufeffReference\u00a0CODE": "R-77"}

	v, ok := FindColumnValue(row, colReferenceCode)
	if !ok {
		t.Fatal("expected a normalized match")
	}
	if v != "R-77" {
		t.Errorf("got %v, want R-77", v)
	}
}

func TestFindColumnValue_NoMatch(t *testing.T) {
	row := RawRow{"unrelated": "x"}
	if _, ok := FindColumnValue(row, colPassportNumber); ok {
		t.Error("expected no match")
	}
}

func TestFindColumnValue_MixedHeaders(t *testing.T) {
	row := RawRow{"الاسم": "Jane Doe", "Ref Code": "R-55"}

	if v, ok := FindColumnValue(row, colFullName); !ok || v != "Jane Doe" {
		t.Errorf("full name: got %v/%v", v, ok)
	}
	if v, ok := FindColumnValue(row, colReferenceCode); !ok || v != "R-55" {
		t.Errorf("reference code: got %v/%v", v, ok)
	}
}

func TestHasColumn(t *testing.T) {
	// Header present with an empty cell still counts.
	row := RawRow{"الخبرة": ""}
	if !HasColumn(row, colExperience) {
		t.Error("expected HasColumn to see the empty-celled header")
	}

	// Normalized header match.
	row = RawRow{"  سنوات   الخبرة ": "5"}
	if !HasColumn(row, colExperience) {
		t.Error("expected HasColumn to normalize the header")
	}

	row = RawRow{"الاسم": "x"}
	if HasColumn(row, colExperience) {
		t.Error("expected HasColumn to miss")
	}
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Full Name", "full name"},
		{"  Full   Name  ", "full name"},
		{"\ufeffFull\u00a0Name", "full name"},
		{"Full\u200bName", "full name"},
		{"الاسم الكامل", "الاسم الكامل"},
	}
	for _, tt := range tests {
		if got := normalizeHeader(tt.in); got != tt.want {
			t.Errorf("normalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
