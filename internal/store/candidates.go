package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staffdesk/cvimport/internal/importer"
)

// Candidates implements importer.CandidateStore over a pgx pool.
type Candidates struct {
	pool *pgxpool.Pool
}

func NewCandidates(pool *pgxpool.Pool) *Candidates {
	return &Candidates{pool: pool}
}

func (c *Candidates) FindByReferenceCode(ctx context.Context, code string) (*importer.ExistingCandidate, error) {
	const q = `SELECT id, full_name FROM cvs WHERE reference_code = $1 LIMIT 1`
	return c.findOne(ctx, q, code)
}

func (c *Candidates) FindByPassport(ctx context.Context, passport string) (*importer.ExistingCandidate, error) {
	const q = `SELECT id, full_name FROM cvs WHERE lower(passport_number) = lower($1) LIMIT 1`
	return c.findOne(ctx, q, passport)
}

func (c *Candidates) FindByFullName(ctx context.Context, name string) (*importer.ExistingCandidate, error) {
	const q = `SELECT id, full_name FROM cvs WHERE lower(full_name) = lower($1) LIMIT 1`
	return c.findOne(ctx, q, name)
}

func (c *Candidates) findOne(ctx context.Context, query string, arg string) (*importer.ExistingCandidate, error) {
	var existing importer.ExistingCandidate
	err := c.pool.QueryRow(ctx, query, arg).Scan(&existing.ID, &existing.FullName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// candidateColumns lists every canonical column in insert order.
// candidateArgs must produce a named arg per entry.
var candidateColumns = []string{
	"full_name", "full_name_arabic", "email", "phone",
	"reference_code", "passport_number",
	"job_position", "monthly_salary", "contract_period",
	"passport_issue_date", "passport_expiry_date", "passport_issue_place",
	"nationality", "religion", "date_of_birth", "place_of_birth",
	"living_town", "marital_status", "number_of_children",
	"weight", "height", "complexion", "age",
	"english_level", "arabic_level", "education_level",
	"baby_sitting", "children_care", "tutoring", "disabled_care",
	"cleaning", "washing", "ironing", "arabic_cooking", "sewing",
	"driving", "elder_care", "housekeeping", "cooking",
	"experience", "education", "skills", "summary", "notes",
	"status", "priority",
	"profile_image", "cv_image_url", "video_url",
}

func candidateArgs(cv *importer.Candidate) pgx.NamedArgs {
	passport := cv.PassportNumber
	if passport != nil {
		trimmed := strings.TrimSpace(*passport)
		if trimmed == "" {
			passport = nil
		} else {
			passport = &trimmed
		}
	}

	return pgx.NamedArgs{
		"full_name":            cv.FullName,
		"full_name_arabic":     pgText(cv.FullNameArabic),
		"email":                pgText(cv.Email),
		"phone":                pgText(cv.Phone),
		"reference_code":       pgText(cv.ReferenceCode),
		"passport_number":      pgText(passport),
		"job_position":         pgText(cv.Position),
		"monthly_salary":       pgText(cv.MonthlySalary),
		"contract_period":      pgText(cv.ContractPeriod),
		"passport_issue_date":  pgText(cv.PassportIssueDate),
		"passport_expiry_date": pgText(cv.PassportExpiryDate),
		"passport_issue_place": pgText(cv.PassportIssuePlace),
		"nationality":          pgText(cv.Nationality),
		"religion":             pgText(cv.Religion),
		"date_of_birth":        pgText(cv.DateOfBirth),
		"place_of_birth":       pgText(cv.PlaceOfBirth),
		"living_town":          pgText(cv.LivingTown),
		"marital_status":       pgMarital(cv.MaritalStatus),
		"number_of_children":   pgFloat8(cv.NumberOfChildren),
		"weight":               pgText(cv.Weight),
		"height":               pgText(cv.Height),
		"complexion":           pgText(cv.Complexion),
		"age":                  pgFloat8(cv.Age),
		"english_level":        pgSkill(cv.EnglishLevel),
		"arabic_level":         pgSkill(cv.ArabicLevel),
		"education_level":      pgText(cv.EducationLevel),
		"baby_sitting":         pgSkill(cv.BabySitting),
		"children_care":        pgSkill(cv.ChildrenCare),
		"tutoring":             pgSkill(cv.Tutoring),
		"disabled_care":        pgSkill(cv.DisabledCare),
		"cleaning":             pgSkill(cv.Cleaning),
		"washing":              pgSkill(cv.Washing),
		"ironing":              pgSkill(cv.Ironing),
		"arabic_cooking":       pgSkill(cv.ArabicCooking),
		"sewing":               pgSkill(cv.Sewing),
		"driving":              pgSkill(cv.Driving),
		"elder_care":           pgSkill(cv.ElderCare),
		"housekeeping":         pgSkill(cv.Housekeeping),
		"cooking":              pgSkill(cv.Cooking),
		"experience":           pgCell(cv.Experience),
		"education":            pgText(cv.Education),
		"skills":               pgText(cv.Skills),
		"summary":              pgText(cv.Summary),
		"notes":                pgText(cv.Notes),
		"status":               string(cv.Status),
		"priority":             string(cv.Priority),
		"profile_image":        pgText(cv.ProfileImage),
		"cv_image_url":         pgText(cv.CVImageURL),
		"video_url":            pgText(cv.VideoURL),
	}
}

func (c *Candidates) Create(ctx context.Context, cv *importer.Candidate, actorID int64, source string) (int64, error) {
	placeholders := make([]string, len(candidateColumns))
	for i, col := range candidateColumns {
		placeholders[i] = "@" + col
	}

	query := fmt.Sprintf(
		`INSERT INTO cvs (%s, source, created_by, updated_by, created_at, updated_at)
		 VALUES (%s, @source, @actor, @actor, now(), now())
		 RETURNING id`,
		strings.Join(candidateColumns, ", "),
		strings.Join(placeholders, ", "),
	)

	args := candidateArgs(cv)
	args["source"] = source
	args["actor"] = actorID

	var id int64
	if err := c.pool.QueryRow(ctx, query, args).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (c *Candidates) Update(ctx context.Context, id int64, cv *importer.Candidate, actorID int64) error {
	assignments := make([]string, 0, len(candidateColumns)+2)
	for _, col := range candidateColumns {
		if col == "experience" {
			// Only touch the column when the sheet carried the field;
			// a cleared cell writes NULL, an absent one keeps the
			// stored value.
			assignments = append(assignments,
				"experience = CASE WHEN @experience_present::bool THEN @experience ELSE experience END")
			continue
		}
		assignments = append(assignments, col+" = @"+col)
	}
	assignments = append(assignments, "updated_by = @actor", "updated_at = now()")

	query := fmt.Sprintf(`UPDATE cvs SET %s WHERE id = @id`, strings.Join(assignments, ", "))

	args := candidateArgs(cv)
	args["experience_present"] = cv.Experience.Present
	args["actor"] = actorID
	args["id"] = id

	tag, err := c.pool.Exec(ctx, query, args)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("candidate %d not found", id)
	}
	return nil
}

func (c *Candidates) GetReconcileState(ctx context.Context, id int64) (*importer.ReconcileState, error) {
	const q = `SELECT status, experience, reference_code FROM cvs WHERE id = $1`

	var (
		status     string
		experience pgtype.Text
		refCode    pgtype.Text
	)
	if err := c.pool.QueryRow(ctx, q, id).Scan(&status, &experience, &refCode); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("candidate %d not found", id)
		}
		return nil, err
	}

	return &importer.ReconcileState{
		Status:        importer.Status(status),
		Experience:    textPtr(experience),
		ReferenceCode: textPtr(refCode),
	}, nil
}
