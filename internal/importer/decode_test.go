package importer

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDecodeRows_CSV(t *testing.T) {
	data := []byte("الاسم الكامل,رقم الجواز,الكود المرجعي\n" +
		"Fatima Noor,P123,REF-1\n" +
		"Amina Yusuf,,REF-2\n")

	rows, err := DecodeRows(data, "candidates.csv")
	if err != nil {
		t.Fatalf("DecodeRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0]["الاسم الكامل"] != "Fatima Noor" {
		t.Errorf("row 1 name = %v", rows[0]["الاسم الكامل"])
	}
	// Empty cells never enter the row, so column presence checks work.
	if _, ok := rows[1]["رقم الجواز"]; ok {
		t.Error("empty cell must be omitted from the row")
	}
	if rows[1]["الكود المرجعي"] != "REF-2" {
		t.Errorf("row 2 code = %v", rows[1]["الكود المرجعي"])
	}
}

func TestDecodeRows_CSVWithBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Name,Code\nJane,R-1\n")...)

	rows, err := DecodeRows(data, "export.csv")
	if err != nil {
		t.Fatalf("DecodeRows: %v", err)
	}
	if rows[0]["Name"] != "Jane" {
		t.Errorf("BOM not stripped, row = %v", rows[0])
	}
}

func TestDecodeRows_RaggedCSV(t *testing.T) {
	// Rows shorter or longer than the header must not error out.
	data := []byte("Name,Code,Extra\nJane,R-1\nOmar,R-2,x,overflow\n")

	rows, err := DecodeRows(data, "ragged.csv")
	if err != nil {
		t.Fatalf("DecodeRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if _, ok := rows[0]["Extra"]; ok {
		t.Error("short row must not carry a cell for the missing column")
	}
	if rows[1]["Extra"] != "x" {
		t.Errorf("long row Extra = %v", rows[1]["Extra"])
	}
}

func TestDecodeRows_Sentinels(t *testing.T) {
	if _, err := DecodeRows(nil, "a.csv"); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("empty data: %v", err)
	}
	if _, err := DecodeRows([]byte("Name,Code\n"), "a.csv"); !errors.Is(err, ErrNoRows) {
		t.Errorf("header only: %v", err)
	}
	if _, err := DecodeRows([]byte("x"), "a.pdf"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("bad extension: %v", err)
	}
	if _, err := DecodeRows([]byte("x"), "noext"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("no extension: %v", err)
	}
}

func TestDecodeRows_Workbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{"الاسم الكامل", "تاريخ الميلاد", "رقم الجواز", "رقم الهاتف", "الكود المرجعي", "العمر"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			t.Fatal(err)
		}
	}
	f.SetCellStr(sheet, "A2", "Fatima Noor")
	f.SetCellValue(sheet, "B2", 45000)
	f.SetCellStr(sheet, "C2", "0501234")
	f.SetCellStr(sheet, "D2", "+966501234567")
	f.SetCellStr(sheet, "E2", "12345678901234567890")
	f.SetCellValue(sheet, "F2", 29)

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	rows, err := DecodeRows(buf.Bytes(), "batch.xlsx")
	if err != nil {
		t.Fatalf("DecodeRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	row := rows[0]

	// Genuinely numeric cells arrive as float64 so date serials can be
	// told apart from text dates.
	if v, ok := row["تاريخ الميلاد"].(float64); !ok || v != 45000 {
		t.Errorf("date serial = %v (%T), want float64 45000", row["تاريخ الميلاد"], row["تاريخ الميلاد"])
	}
	if v, ok := row["العمر"].(float64); !ok || v != 29 {
		t.Errorf("age = %v (%T), want float64 29", row["العمر"], row["العمر"])
	}

	// Numeric-looking identity text keeps its string form.
	if row["رقم الجواز"] != "0501234" {
		t.Errorf("passport = %v, leading zero must survive", row["رقم الجواز"])
	}
	if row["رقم الهاتف"] != "+966501234567" {
		t.Errorf("phone = %v, plus prefix must survive", row["رقم الهاتف"])
	}
	if row["الكود المرجعي"] != "12345678901234567890" {
		t.Errorf("code = %v, long codes must not go through float64", row["الكود المرجعي"])
	}

	cv, err := MapRow(row, 2)
	if err != nil {
		t.Fatalf("MapRow: %v", err)
	}
	if cv.DateOfBirth == nil || *cv.DateOfBirth != "2023-03-15" {
		t.Errorf("DateOfBirth = %v, want 2023-03-15", cv.DateOfBirth)
	}
	if cv.PassportNumber == nil || *cv.PassportNumber != "0501234" {
		t.Errorf("PassportNumber = %v", cv.PassportNumber)
	}
	if cv.Phone == nil || *cv.Phone != "+966501234567" {
		t.Errorf("Phone = %v", cv.Phone)
	}
}

func TestNumericCell(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		numeric bool
	}{
		{"45000", 45000, true},
		{"29", 29, true},
		{"3.5", 3.5, true},
		{"-12", -12, true},
		{"0", 0, true},
		{"0.5", 0.5, true},
		{"0501234", 0, false},
		{"+966501234567", 0, false},
		{"12345678901234567890", 0, false},
		{"R-55", 0, false},
		{"", 0, false},
		{"-", 0, false},
	}

	for _, tt := range tests {
		got, ok := numericCell(tt.in)
		if ok != tt.numeric || (ok && got != tt.want) {
			t.Errorf("numericCell(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.numeric)
		}
	}
}

func TestDecodeRows_InvalidUTF8Replaced(t *testing.T) {
	data := []byte("Name,Note\nJane,bad\xffbyte\n")

	rows, err := DecodeRows(data, "latin.csv")
	if err != nil {
		t.Fatalf("DecodeRows: %v", err)
	}
	if rows[0]["Note"] != "bad�byte" {
		t.Errorf("Note = %q, want the invalid byte replaced", rows[0]["Note"])
	}
}
