package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Decode failures that callers branch on. Anything else coming out of
// DecodeRows is a format-specific parse error wrapping one of these
// where it applies.
var (
	ErrEmptyFile         = errors.New("empty file")
	ErrNoRows            = errors.New("no data rows after header")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// DecodeRows turns an uploaded spreadsheet into header-keyed rows.
// The format is picked by file extension: CSV cells stay verbatim
// strings, workbook cells that scan as numbers are kept as float64 so
// date serials survive into normalization.
func DecodeRows(data []byte, filename string) ([]RawRow, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		return decodeCSV(data)
	case ".xlsx", ".xls":
		return decodeWorkbook(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func decodeCSV(data []byte) ([]RawRow, error) {
	records, err := parseCSV(sanitizeUTF8(stripBOM(data)))
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	header := records[0]
	if len(records) < 2 {
		return nil, ErrNoRows
	}

	rows := make([]RawRow, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(RawRow, len(header))
		for i, name := range header {
			name = strings.TrimSpace(name)
			if name == "" || i >= len(record) {
				continue
			}
			if cell := record[i]; cell != "" {
				row[name] = cell
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeWorkbook(data []byte) ([]RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	// Raw values keep date cells as their numeric serials, which the
	// date normalizer expects.
	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	header := records[0]
	if len(records) < 2 {
		return nil, ErrNoRows
	}

	rows := make([]RawRow, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(RawRow, len(header))
		for i, name := range header {
			name = strings.TrimSpace(name)
			if name == "" || i >= len(record) {
				continue
			}
			cell := record[i]
			if cell == "" {
				continue
			}
			if n, ok := numericCell(cell); ok {
				row[name] = n
			} else {
				row[name] = cell
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// numericCell decides whether a raw workbook cell is genuinely a
// number. Text that merely looks numeric must keep its string form: a
// leading zero or "+" marks an identity field (passport, phone), and
// an integer longer than 15 digits would silently lose precision in a
// float64. Date serials and ordinary quantities convert as before.
func numericCell(cell string) (float64, bool) {
	if cell == "" || cell[0] == '+' {
		return 0, false
	}
	digits := strings.TrimPrefix(cell, "-")
	if digits == "" {
		return 0, false
	}
	if digits[0] == '0' && len(digits) > 1 && digits[1] != '.' {
		return 0, false
	}
	if len(digits) > 15 && !strings.ContainsAny(digits, ".eE") {
		return 0, false
	}
	n, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}
