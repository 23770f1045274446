package importer

// columns.go is the only place allowed to do fuzzy key lookup against
// a RawRow. Sheets arrive from several agencies with headers that vary
// in language, spacing, and encoding artifacts; every logical field
// therefore carries an ordered candidate-name list, most-trusted
// spelling first.

import (
	"strings"
)

// FindColumnValue resolves the cell for a logical field by trying the
// candidate header names in order. Exact key matches win first (fast
// and deterministic); if none hit, headers and candidates are
// normalized (trimmed, inner whitespace collapsed, zero-width and BOM
// runes stripped) and compared case-insensitively. The first candidate
// with a match wins, so callers must order the list by trust.
//
// Cells that are nil or empty after trimming are skipped, so a sheet
// carrying both "Code" and "الكود المرجعي" falls through to whichever
// column actually holds a value.
func FindColumnValue(row RawRow, candidates []string) (any, bool) {
	for _, name := range candidates {
		if v, ok := row[name]; ok && !emptyCell(v) {
			return v, true
		}
	}

	normalized := make(map[string]string, len(row))
	for key := range row {
		normalized[normalizeHeader(key)] = key
	}
	for _, name := range candidates {
		if key, ok := normalized[normalizeHeader(name)]; ok {
			if v := row[key]; !emptyCell(v) {
				return v, true
			}
		}
	}
	return nil, false
}

// HasColumn reports whether the sheet carries any of the candidate
// headers at all, regardless of whether the cell holds a value. The
// experience field needs this distinction: an empty cell under a
// present header clears the stored value, while a sheet without the
// header leaves it untouched.
func HasColumn(row RawRow, candidates []string) bool {
	for _, name := range candidates {
		if _, ok := row[name]; ok {
			return true
		}
	}
	for key := range row {
		nk := normalizeHeader(key)
		for _, name := range candidates {
			if nk == normalizeHeader(name) {
				return true
			}
		}
	}
	return false
}

// emptyCell reports whether a cell carries no usable value.
func emptyCell(v any) bool {
	if v == nil {
		return true
	}
	return strings.TrimSpace(cellString(v)) == ""
}

// normalizeHeader canonicalizes a column header for fuzzy matching.
func normalizeHeader(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\ufeff', '\u200b', '\u200c', '\u200d', '\u00a0':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.ToLower(strings.Join(strings.Fields(b.String()), " "))
}

// Candidate header lists per logical field. Arabic template spellings
// come first because the in-house template is the most common source;
// English variants cover sheets exported from partner systems.
var (
	colFullName       = []string{"الاسم الكامل", "الاسم", "Full Name", "Name"}
	colFullNameArabic = []string{"الاسم بالعربية"}
	colEmail          = []string{"البريد الإلكتروني", "Email"}
	colPhone          = []string{"رقم الهاتف", "الهاتف", "Phone"}
	colReferenceCode  = []string{
		"الكود المرجعي", "الرقم المرجعي", "كود مرجعي", "رقم مرجعي",
		"رمز المرجع", "Reference Code", "Ref Code", "Code", "ID",
	}
	colMonthlySalary  = []string{"الراتب الشهري", "Monthly Salary"}
	colContractPeriod = []string{"مدة العقد", "فترة العقد", "Contract Period"}
	colPosition       = []string{"الوظيفة المطلوبة", "المنصب", "الوظيفة", "Position"}
	colPassportNumber = []string{"رقم الجواز", "رقم جواز السفر", "Passport Number", "Passport No"}

	colPassportIssueDate  = []string{"تاريخ إصدار الجواز"}
	colPassportExpiryDate = []string{"تاريخ انتهاء الجواز"}
	colPassportIssuePlace = []string{"مكان إصدار الجواز"}
	colNationality        = []string{"الجنسية", "Nationality"}
	colReligion           = []string{"الديانة", "Religion"}
	colDateOfBirth        = []string{"تاريخ الميلاد", "Date of Birth"}
	colPlaceOfBirth       = []string{"مكان الميلاد"}
	colLivingTown         = []string{"مكان السكن", "مدينة السكن"}
	colMaritalStatus      = []string{"الحالة الاجتماعية", "Marital Status"}
	colNumberOfChildren   = []string{"عدد الأطفال"}
	colWeight             = []string{"الوزن", "Weight"}
	colHeight             = []string{"الطول", "Height"}
	colComplexion         = []string{"لون البشرة"}
	colAge                = []string{"العمر", "Age"}

	colEnglishLevel = []string{
		"مستوى الإنجليزية", "الإنجليزية", "English", "English Level",
		"انجليزي", "انجليزية",
	}
	colArabicLevel = []string{
		"مستوى العربية", "العربية", "Arabic", "Arabic Level",
		"عربي", "عربية",
	}
	colEducationLevel = []string{
		"الدرجة العلمية", "التعليم", "المؤهل العلمي",
		"Education", "Education Level",
	}

	colBabySitting   = []string{"رعاية الأطفال", "عناية الرضع"}
	colChildrenCare  = []string{"رعاية الأطفال", "عناية الأطفال"}
	colTutoring      = []string{"تعليم الأطفال"}
	colDisabledCare  = []string{"رعاية المعوقين", "عناية المعوقين"}
	colCleaning      = []string{"التنظيف"}
	colWashing       = []string{"الغسيل"}
	colIroning       = []string{"كي الملابس", "الكي"}
	colArabicCooking = []string{"الطبخ العربي"}
	colSewing        = []string{"الخياطة"}
	colDriving       = []string{"القيادة"}
	colElderCare     = []string{"رعاية المسنين"}
	colHousekeeping  = []string{"التدبير المنزلي"}
	colCooking       = []string{"الطبخ"}

	colExperience = []string{"الخبرة", "الخبرة في الخارج", "الخبرة السابقة", "سنوات الخبرة"}
	colEducation  = []string{"التعليم"}
	colSkills     = []string{"المهارات", "Skills"}
	colSummary    = []string{"الملخص", "الملخص المهني"}
	colPriority   = []string{"الأولوية", "Priority"}
	colStatus     = []string{"الحالة", "حالة السيرة", "Status"}
	colNotes      = []string{"ملاحظات", "Notes"}

	colProfileImage = []string{
		"رابط الصورة الشخصية", "الصورة الشخصية", "صورة شخصية",
		"رابط الصورة", "صورة", "Image URL", "Profile Image", "Photo", "Picture",
	}
	colCVImageURL = []string{
		"صورة السيرة", "رابط صورة السيرة", "صورة السيرة الكاملة",
		"CV Image", "CV Image URL", "Resume Image",
	}
	colVideoURL = []string{
		"رابط الفيديو", "فيديو", "Video URL", "Video", "Video Link",
	}
)
