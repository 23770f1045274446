// Package store persists candidates, pipeline assignments, and audit
// activity in PostgreSQL. All SQL lives here; the importer package only
// sees the interfaces it defines.
package store

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/staffdesk/cvimport/internal/importer"
)

// Conversion helpers between the importer's optional fields and pgtype
// values. Valid=false always writes NULL.

func pgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func pgFloat8(f *float64) pgtype.Float8 {
	if f == nil {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: *f, Valid: true}
}

func pgSkill(s *importer.SkillLevel) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: string(*s), Valid: true}
}

func pgMarital(m *importer.MaritalStatus) pgtype.Text {
	if m == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: string(*m), Valid: true}
}

// pgCell maps a text cell to its column value. A cleared cell becomes
// NULL; callers decide separately whether an absent cell should touch
// the column at all.
func pgCell(c importer.TextCell) pgtype.Text {
	if !c.Present || !c.Valid {
		return pgtype.Text{}
	}
	return pgtype.Text{String: c.String, Valid: true}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}
