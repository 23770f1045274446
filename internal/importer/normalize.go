package importer

// normalize.go provides the cell-level cleaning functions for the
// pipeline. Each function is total and deterministic: given any cell
// value it returns a canonical scalar or nil, never an error.
//
// These functions handle the messy reality of agency-sourced sheets:
//   - Placeholder tokens standing in for "empty" ("N/A", "لا يوجد", "-")
//   - Excel date serials next to already-formatted date strings
//   - Bilingual (Arabic/English) closed vocabularies for enums
//   - Phone numbers decorated with spaces, dashes, and parentheses

import (
	"strconv"
	"strings"
	"time"
)

// excelEpochOffset is the number of days between the spreadsheet epoch
// (1899-12-30) and the Unix epoch.
const excelEpochOffset = 25569

// secondsPerDay converts a day count to a Unix timestamp.
const secondsPerDay = 86400

// placeholderEmpty lists the tokens that mean "no value" when they
// appear alone in a cell, across the data sources we ingest.
var placeholderEmpty = map[string]bool{
	"غير مستخدم": true,
	"غير متوفر":  true,
	"لا يوجد":    true,
	"N/A":        true,
	"n/a":        true,
	"NA":         true,
	"na":         true,
	"NULL":       true,
	"null":       true,
	"-":          true,
	"--":         true,
	"---":        true,
	"":           true,
}

// cellString renders a raw cell value as a string. Floats print
// without a trailing ".0" so that numeric reference codes and phone
// numbers survive the round trip through a numeric cell.
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// CleanString trims a cell and maps placeholder-empty tokens to nil.
func CleanString(v any) *string {
	s := strings.TrimSpace(cellString(v))
	if placeholderEmpty[s] {
		return nil
	}
	return &s
}

// CleanDate canonicalizes a date cell. Numeric cells are interpreted
// as spreadsheet day serials and formatted as YYYY-MM-DD; string cells
// are trimmed and returned verbatim (sheets arrive with dates already
// formatted in too many layouts to reparse safely), or nil if empty.
func CleanDate(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		secs := (t - excelEpochOffset) * secondsPerDay
		formatted := time.Unix(int64(secs), 0).UTC().Format("2006-01-02")
		return &formatted
	default:
		s := strings.TrimSpace(cellString(v))
		if s == "" {
			return nil
		}
		return &s
	}
}

// CleanNumber parses a float from a string or numeric cell. Returns
// nil when the cell is empty or not a number.
func CleanNumber(v any) *float64 {
	if f, ok := v.(float64); ok {
		return &f
	}
	s := strings.TrimSpace(cellString(v))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// CleanPhone strips every character that is not a digit or a leading
// "+". Returns nil if nothing remains.
func CleanPhone(v any) *string {
	raw := cellString(v)
	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return nil
	}
	s := b.String()
	return &s
}

// NormalizeSkill maps the bilingual skill vocabulary to a SkillLevel.
// Unrecognized input yields nil, not an error.
func NormalizeSkill(v any) *SkillLevel {
	s := strings.ToUpper(strings.TrimSpace(cellString(v)))
	if s == "" {
		return nil
	}
	var level SkillLevel
	switch s {
	case "YES", "نعم", "1", "Y":
		level = SkillYes
	case "NO", "لا", "0", "N":
		level = SkillNo
	case "WILLING", "راغب", "مستعد", "مستعدة":
		level = SkillWilling
	default:
		return nil
	}
	return &level
}

// NormalizeMarital maps the bilingual marital-status vocabulary.
// Unrecognized input yields nil.
func NormalizeMarital(v any) *MaritalStatus {
	s := strings.ToUpper(strings.TrimSpace(cellString(v)))
	if s == "" {
		return nil
	}
	var ms MaritalStatus
	switch s {
	case "SINGLE", "أعزب", "عزباء":
		ms = MaritalSingle
	case "MARRIED", "متزوج", "متزوجة":
		ms = MaritalMarried
	case "DIVORCED", "مطلق", "مطلقة":
		ms = MaritalDivorced
	case "WIDOWED", "أرمل", "أرملة":
		ms = MaritalWidowed
	default:
		return nil
	}
	return &ms
}

// NormalizePriority maps the bilingual priority vocabulary. Unlike the
// other enum normalizers this one is total: unrecognized or absent
// input defaults to PriorityMedium.
func NormalizePriority(v any) Priority {
	switch strings.ToLower(strings.TrimSpace(cellString(v))) {
	case "high", "عالية", "مرتفعة", "عالي":
		return PriorityHigh
	case "low", "منخفضة", "قليلة", "منخفض":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// NormalizeStatus maps the bilingual workflow-status vocabulary. Also
// total: unrecognized or absent input defaults to StatusNew.
func NormalizeStatus(v any) Status {
	switch strings.ToUpper(strings.TrimSpace(cellString(v))) {
	case "BOOKED", "محجوز", "محجوزة":
		return StatusBooked
	case "HIRED", "متعاقد", "متعاقدة":
		return StatusHired
	case "REJECTED", "مرفوض", "مرفوضة":
		return StatusRejected
	case "RETURNED", "معاد", "معادة":
		return StatusReturned
	case "ARCHIVED", "مؤرشف", "مؤرشفة":
		return StatusArchived
	default:
		return StatusNew
	}
}

// NormalizeLanguageLevel maps language-proficiency cells onto the
// skill vocabulary. The mapping is deliberately asymmetric:
//
//	excellent / ممتاز / نعم    → YES
//	good / متوسط / جيد         → WILLING
//	weak / poor / ضعيف          → nil   (rated poor)
//	no / none / لا / empty cell → NO
//
// A nil result therefore means "rated poor" or "no data"; the business
// currently treats the two the same and downstream code must not
// invent a distinction the stored data cannot support.
func NormalizeLanguageLevel(v any) *SkillLevel {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(cellString(v))
	var level SkillLevel
	switch strings.ToLower(s) {
	case "ممتاز", "نعم", "excellent", "yes":
		level = SkillYes
	case "جيد", "متوسط", "good", "average":
		level = SkillWilling
	case "ضعيف", "weak", "poor":
		return nil
	case "لا", "", "no", "none":
		level = SkillNo
	default:
		return nil
	}
	return &level
}

// noExperiencePhrases are the closed set of cell values meaning
// "explicitly no experience". They normalize to a cleared TextCell so
// an update writes NULL through instead of leaving a stale value.
var noExperiencePhrases = map[string]bool{
	"لا يوجد":       true,
	"لايوجد":        true,
	"غير محدد":      true,
	"بدون خبرة":     true,
	"none":          true,
	"no":            true,
	"no experience": true,
	"n/a":           true,
	"-":             true,
	"--":            true,
}

// experienceKeywords are tokens whose presence marks a cell as a real
// experience description even when it carries no digits.
var experienceKeywords = []string{
	"خبرة", "سنة", "سنوات", "شهر", "أشهر",
	"experience", "year", "month", "عمل", "work",
}

// ClassifyExperience classifies a free-text experience cell. found
// reports whether the column resolver located a cell at all; a sheet
// without the column yields an absent TextCell so updates leave the
// stored value untouched.
//
// A present cell is classified, never dropped silently:
//
//   - a closed "no experience" phrase → cleared (write NULL through)
//   - the bare literal "خبرة"/"experience" → kept verbatim
//   - anything containing a digit → kept (assumed to encode a duration)
//   - anything containing an experience keyword → kept
//   - anything else → kept as a fallback
func ClassifyExperience(v any, found bool) TextCell {
	if !found {
		return TextCell{}
	}
	s := strings.TrimSpace(cellString(v))
	if s == "" {
		return ClearedText()
	}
	lower := strings.ToLower(s)
	if noExperiencePhrases[lower] {
		return ClearedText()
	}
	if lower == "خبرة" || lower == "experience" {
		return SomeText(s)
	}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return SomeText(s)
		}
	}
	for _, kw := range experienceKeywords {
		if strings.Contains(lower, kw) {
			return SomeText(s)
		}
	}
	return SomeText(s)
}
