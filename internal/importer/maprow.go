package importer

import "fmt"

// MapRow converts one decoded sheet row into a Candidate. Mapping is
// pure: no I/O, no duplicate checks. rowNumber is the 1-based sheet
// row (data starts at 2, after the header) and is carried through so
// every downstream log and error can point at the offending line.
//
// A panic anywhere in the mapping is converted into an error so the
// batch loop can route the row to the error bucket instead of dying.
func MapRow(row RawRow, rowNumber int) (cv *Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			cv = nil
			err = fmt.Errorf("map row %d: %v", rowNumber, r)
		}
	}()

	cv = &Candidate{
		RowNumber: rowNumber,
		Status:    StatusNew,
		Priority:  PriorityMedium,
	}

	if v, ok := FindColumnValue(row, colFullName); ok {
		if s := CleanString(v); s != nil {
			cv.FullName = *s
		}
	}
	cv.FullNameArabic = cleanColumn(row, colFullNameArabic)
	cv.Email = cleanColumn(row, colEmail)
	if v, ok := FindColumnValue(row, colPhone); ok {
		cv.Phone = CleanPhone(v)
	}
	cv.ReferenceCode = cleanColumn(row, colReferenceCode)
	cv.MonthlySalary = cleanColumn(row, colMonthlySalary)
	cv.ContractPeriod = cleanColumn(row, colContractPeriod)
	cv.Position = cleanColumn(row, colPosition)
	cv.PassportNumber = cleanColumn(row, colPassportNumber)
	cv.PassportIssueDate = dateColumn(row, colPassportIssueDate)
	cv.PassportExpiryDate = dateColumn(row, colPassportExpiryDate)
	cv.PassportIssuePlace = cleanColumn(row, colPassportIssuePlace)
	cv.Nationality = cleanColumn(row, colNationality)
	cv.Religion = cleanColumn(row, colReligion)
	cv.DateOfBirth = dateColumn(row, colDateOfBirth)
	cv.PlaceOfBirth = cleanColumn(row, colPlaceOfBirth)
	cv.LivingTown = cleanColumn(row, colLivingTown)
	if v, ok := FindColumnValue(row, colMaritalStatus); ok {
		cv.MaritalStatus = NormalizeMarital(v)
	}
	cv.NumberOfChildren = numberColumn(row, colNumberOfChildren)
	cv.Weight = cleanColumn(row, colWeight)
	cv.Height = cleanColumn(row, colHeight)
	cv.Complexion = cleanColumn(row, colComplexion)
	cv.Age = numberColumn(row, colAge)

	cv.EnglishLevel = languageColumn(row, colEnglishLevel)
	cv.ArabicLevel = languageColumn(row, colArabicLevel)
	cv.EducationLevel = cleanColumn(row, colEducationLevel)

	cv.BabySitting = skillColumn(row, colBabySitting)
	cv.ChildrenCare = skillColumn(row, colChildrenCare)
	cv.Tutoring = skillColumn(row, colTutoring)
	cv.DisabledCare = skillColumn(row, colDisabledCare)
	cv.Cleaning = skillColumn(row, colCleaning)
	cv.Washing = skillColumn(row, colWashing)
	cv.Ironing = skillColumn(row, colIroning)
	cv.ArabicCooking = skillColumn(row, colArabicCooking)
	cv.Sewing = skillColumn(row, colSewing)
	cv.Driving = skillColumn(row, colDriving)
	cv.ElderCare = skillColumn(row, colElderCare)
	cv.Housekeeping = skillColumn(row, colHousekeeping)
	cv.Cooking = skillColumn(row, colCooking)

	if v, ok := FindColumnValue(row, colExperience); ok {
		cv.Experience = ClassifyExperience(v, true)
	} else if HasColumn(row, colExperience) {
		// Header exists but the cell is blank: treat as an explicit
		// clear, same as a "no experience" phrase.
		cv.Experience = ClassifyExperience(nil, true)
	}

	cv.Education = cleanColumn(row, colEducation)
	cv.Skills = cleanColumn(row, colSkills)
	cv.Summary = cleanColumn(row, colSummary)
	if v, ok := FindColumnValue(row, colPriority); ok {
		cv.Priority = NormalizePriority(v)
	}
	if v, ok := FindColumnValue(row, colStatus); ok {
		cv.Status = NormalizeStatus(v)
	}
	cv.Notes = cleanColumn(row, colNotes)

	cv.ProfileImage = cleanColumn(row, colProfileImage)
	cv.CVImageURL = cleanColumn(row, colCVImageURL)
	cv.VideoURL = cleanColumn(row, colVideoURL)

	return cv, nil
}

func cleanColumn(row RawRow, candidates []string) *string {
	v, ok := FindColumnValue(row, candidates)
	if !ok {
		return nil
	}
	return CleanString(v)
}

func dateColumn(row RawRow, candidates []string) *string {
	v, ok := FindColumnValue(row, candidates)
	if !ok {
		return nil
	}
	return CleanDate(v)
}

func numberColumn(row RawRow, candidates []string) *float64 {
	v, ok := FindColumnValue(row, candidates)
	if !ok {
		return nil
	}
	return CleanNumber(v)
}

func skillColumn(row RawRow, candidates []string) *SkillLevel {
	v, ok := FindColumnValue(row, candidates)
	if !ok {
		return nil
	}
	return NormalizeSkill(v)
}

func languageColumn(row RawRow, candidates []string) *SkillLevel {
	v, ok := FindColumnValue(row, candidates)
	if !ok {
		return nil
	}
	return NormalizeLanguageLevel(v)
}
