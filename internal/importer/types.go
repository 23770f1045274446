package importer

import (
	"context"
)

// RawRow is one spreadsheet row as decoded: an open mapping from the
// sheet's own column headers to cell values. Headers vary per uploaded
// file (language, spacing, encoding artifacts), so nothing outside the
// column resolver may index it directly.
//
// Cell values are string, float64, or nil. Numeric cells from xlsx
// sheets arrive as float64 so that date serials can be told apart from
// text dates.
type RawRow map[string]any

// SkillLevel rates one household skill. It also encodes language
// proficiency, where a nil pointer means either "rated poor" or "no
// data" (the business currently conflates the two).
type SkillLevel string

const (
	SkillYes     SkillLevel = "YES"
	SkillNo      SkillLevel = "NO"
	SkillWilling SkillLevel = "WILLING"
)

// MaritalStatus is the normalized marital status vocabulary.
type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "SINGLE"
	MaritalMarried  MaritalStatus = "MARRIED"
	MaritalDivorced MaritalStatus = "DIVORCED"
	MaritalWidowed  MaritalStatus = "WIDOWED"
)

// Priority is the candidate's processing priority. Unrecognized input
// defaults to PriorityMedium, so every Candidate carries a valid value.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Status is the candidate's workflow status. Unrecognized input
// defaults to StatusNew.
type Status string

const (
	StatusNew      Status = "NEW"
	StatusBooked   Status = "BOOKED"
	StatusHired    Status = "HIRED"
	StatusRejected Status = "REJECTED"
	StatusReturned Status = "RETURNED"
	StatusArchived Status = "ARCHIVED"
)

// TextCell is a write-through text value that distinguishes three
// states: not present in the sheet at all (Present false — leave the
// stored value untouched), present but explicitly empty (Present true,
// Valid false — clear the stored value), and present with content.
//
// The experience field depends on this distinction: a cell reading
// "none" must clear a stale value on update, while a file that simply
// lacks the column must not.
type TextCell struct {
	Present bool
	Valid   bool
	String  string
}

// ClearedText returns a TextCell that writes NULL through on commit.
func ClearedText() TextCell {
	return TextCell{Present: true}
}

// SomeText returns a TextCell carrying s.
func SomeText(s string) TextCell {
	return TextCell{Present: true, Valid: true, String: s}
}

// Candidate is the canonical, typed projection of one RawRow. It is
// built once by MapRow and afterwards only annotated: the duplicate
// resolver sets IsUpdate/ExistingID/DuplicateReason, and the executor
// may demote a row to the error bucket on persistence failure.
//
// Optional fields are pointers; nil means the sheet had nothing usable
// for that field.
type Candidate struct {
	RowNumber int    `json:"rowNumber"`
	FullName  string `json:"fullName"`

	// Identity
	FullNameArabic *string `json:"fullNameArabic,omitempty"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	ReferenceCode  *string `json:"referenceCode,omitempty"`
	PassportNumber *string `json:"passportNumber,omitempty"`

	// Employment
	Position       *string `json:"position,omitempty"`
	MonthlySalary  *string `json:"monthlySalary,omitempty"`
	ContractPeriod *string `json:"contractPeriod,omitempty"`

	// Passport / biographic
	PassportIssueDate  *string        `json:"passportIssueDate,omitempty"`
	PassportExpiryDate *string        `json:"passportExpiryDate,omitempty"`
	PassportIssuePlace *string        `json:"passportIssuePlace,omitempty"`
	Nationality        *string        `json:"nationality,omitempty"`
	Religion           *string        `json:"religion,omitempty"`
	DateOfBirth        *string        `json:"dateOfBirth,omitempty"`
	PlaceOfBirth       *string        `json:"placeOfBirth,omitempty"`
	LivingTown         *string        `json:"livingTown,omitempty"`
	MaritalStatus      *MaritalStatus `json:"maritalStatus,omitempty"`
	NumberOfChildren   *float64       `json:"numberOfChildren,omitempty"`
	Weight             *string        `json:"weight,omitempty"`
	Height             *string        `json:"height,omitempty"`
	Complexion         *string        `json:"complexion,omitempty"`
	Age                *float64       `json:"age,omitempty"`

	// Languages. nil means poor proficiency or no data.
	EnglishLevel *SkillLevel `json:"englishLevel,omitempty"`
	ArabicLevel  *SkillLevel `json:"arabicLevel,omitempty"`

	EducationLevel *string `json:"educationLevel,omitempty"`

	// Skills
	BabySitting   *SkillLevel `json:"babySitting,omitempty"`
	ChildrenCare  *SkillLevel `json:"childrenCare,omitempty"`
	Tutoring      *SkillLevel `json:"tutoring,omitempty"`
	DisabledCare  *SkillLevel `json:"disabledCare,omitempty"`
	Cleaning      *SkillLevel `json:"cleaning,omitempty"`
	Washing       *SkillLevel `json:"washing,omitempty"`
	Ironing       *SkillLevel `json:"ironing,omitempty"`
	ArabicCooking *SkillLevel `json:"arabicCooking,omitempty"`
	Sewing        *SkillLevel `json:"sewing,omitempty"`
	Driving       *SkillLevel `json:"driving,omitempty"`
	ElderCare     *SkillLevel `json:"elderCare,omitempty"`
	Housekeeping  *SkillLevel `json:"housekeeping,omitempty"`
	Cooking       *SkillLevel `json:"cooking,omitempty"`

	// Free text
	Experience TextCell `json:"experience"`
	Education  *string  `json:"education,omitempty"`
	Skills     *string  `json:"skills,omitempty"`
	Summary    *string  `json:"summary,omitempty"`
	Notes      *string  `json:"notes,omitempty"`

	// Workflow
	Status   Status   `json:"status"`
	Priority Priority `json:"priority"`

	// Media
	ProfileImage *string `json:"profileImage,omitempty"`
	CVImageURL   *string `json:"cvImageUrl,omitempty"`
	VideoURL     *string `json:"videoUrl,omitempty"`

	// Reconciliation result, filled in by the duplicate resolver and
	// the executor.
	IsUpdate        bool   `json:"isUpdate"`
	ExistingID      *int64 `json:"existingId,omitempty"`
	DuplicateReason string `json:"duplicateReason,omitempty"`
}

// BatchOutcome is the result of one analysis pass over a whole sheet.
// Invariant: TotalRows == NewRecords + UpdatedRecords + SkippedRecords
// + ErrorRecords once Reconcile returns. Rows never vanish; a row that
// fails to map becomes an ErrorCVs entry instead.
type BatchOutcome struct {
	TotalRows      int `json:"totalRows"`
	NewRecords     int `json:"newRecords"`
	UpdatedRecords int `json:"updatedRecords"`
	SkippedRecords int `json:"skippedRecords"`
	ErrorRecords   int `json:"errorRecords"`

	NewCVs     []*Candidate `json:"newCVs"`
	UpdatedCVs []*Candidate `json:"updatedCVs"`
	SkippedCVs []*Candidate `json:"skippedCVs"`
	ErrorCVs   []*Candidate `json:"errorCVs"`

	Summary string `json:"summary"`

	// Reference code statistics, informational only.
	ReferenceCodeCounts    map[string]int `json:"referenceCodeCounts,omitempty"`
	DistinctReferenceCodes int            `json:"distinctReferenceCodes"`
}

// ExistingCandidate is the slice of a persisted record the duplicate
// resolver needs: a stable id and the name used in skip reasons.
type ExistingCandidate struct {
	ID       int64
	FullName string
}

// ReconcileState is the persisted state re-fetched before an update to
// detect status transitions and preserve write-through semantics.
type ReconcileState struct {
	Status        Status
	Experience    *string
	ReferenceCode *string
}

// CandidateFinder is the read side of the persisted-candidate store
// consulted during duplicate resolution. Implementations return
// (nil, nil) when no record matches.
type CandidateFinder interface {
	// FindByReferenceCode looks up the exact reference code (unique key).
	FindByReferenceCode(ctx context.Context, code string) (*ExistingCandidate, error)
	// FindByPassport matches the passport number case-insensitively.
	FindByPassport(ctx context.Context, passport string) (*ExistingCandidate, error)
	// FindByFullName matches the full name case-insensitively.
	FindByFullName(ctx context.Context, name string) (*ExistingCandidate, error)
}

// CandidateWriter is the write side of the persisted-candidate store
// used by the commit executor.
type CandidateWriter interface {
	Create(ctx context.Context, cv *Candidate, actorID int64, source string) (int64, error)
	Update(ctx context.Context, id int64, cv *Candidate, actorID int64) error
	GetReconcileState(ctx context.Context, id int64) (*ReconcileState, error)
}

// CandidateStore combines both sides of the persisted-candidate store.
type CandidateStore interface {
	CandidateFinder
	CandidateWriter
}

// PipelineStore deactivates a candidate's active sales-pipeline
// assignments and records activity entries.
type PipelineStore interface {
	DeactivateAssignments(ctx context.Context, cvID int64, actorID int64, reason string) (int64, error)
	LogActivity(ctx context.Context, entry ActivityEntry) error
}

// ActivityEntry is one audit-log record.
type ActivityEntry struct {
	ActorID     int64
	Action      string
	Description string
	TargetType  string
	TargetID    string
	TargetName  string
	Metadata    map[string]any
}

// ImageResolver fetches an externally supplied image URL and persists
// it as a local asset, returning a stable reference path. On failure
// callers keep the raw URL in the record instead of failing the row.
type ImageResolver interface {
	Resolve(ctx context.Context, imageURL string) (string, error)
}

// ImportSummary is the aggregate event emitted once per executed batch.
type ImportSummary struct {
	BatchID                string
	FileName               string
	ActorID                int64
	TotalRows              int
	NewRecords             int
	UpdatedRecords         int
	SkippedRecords         int
	ErrorRecords           int
	DistinctReferenceCodes int
	Elapsed                string
}

// Notifier receives the aggregate batch summary after execution.
type Notifier interface {
	NotifyImport(ctx context.Context, summary ImportSummary) error
}
