package importer

import (
	"context"
	"log/slog"
	"strings"
)

// Resolution is the outcome of a duplicate check for one candidate.
// Three shapes occur: no duplicate (IsDuplicate false), an update
// target (IsDuplicate true with ExistingID set), and an intra-batch
// collision (IsDuplicate true, ExistingID nil) which the caller must
// discard rather than update.
type Resolution struct {
	IsDuplicate bool
	ExistingID  *int64
	Reason      string
}

// PassportSet tracks passport numbers already claimed by earlier rows
// of the current batch. Scoped to one import request.
type PassportSet map[string]struct{}

func NewPassportSet() PassportSet { return make(PassportSet) }

func (s PassportSet) Has(passport string) bool {
	_, ok := s[normalizePassport(passport)]
	return ok
}

func (s PassportSet) Add(passport string) {
	s[normalizePassport(passport)] = struct{}{}
}

func normalizePassport(p string) string {
	return strings.ToUpper(strings.TrimSpace(p))
}

// Resolver decides whether an incoming candidate duplicates a
// persisted record or an earlier row in the same batch.
type Resolver struct {
	finder CandidateFinder
	log    *slog.Logger
}

func NewResolver(finder CandidateFinder, log *slog.Logger) *Resolver {
	return &Resolver{finder: finder, log: log}
}

// Resolve runs the identity checks in strict priority order:
//
//  1. reference code, exact match against the unique key
//  2. passport number, intra-batch set first, then a
//     case-insensitive store lookup
//  3. full name, case-insensitive, only when the row has no passport
//
// Each check is fail-open: a store error is logged and treated as "no
// match" so a storage hiccup degrades into a possible duplicate row
// instead of blocking the whole import. The unique constraint on
// reference codes backstops the worst case.
func (r *Resolver) Resolve(ctx context.Context, cv *Candidate, seen PassportSet) Resolution {
	if code := deref(cv.ReferenceCode); strings.TrimSpace(code) != "" {
		existing, err := r.finder.FindByReferenceCode(ctx, strings.TrimSpace(code))
		switch {
		case err != nil:
			r.log.WarnContext(ctx, "reference code lookup failed, continuing",
				"row", cv.RowNumber, "error", err)
		case existing != nil:
			id := existing.ID
			return Resolution{
				IsDuplicate: true,
				ExistingID:  &id,
				Reason:      "reference code already registered to " + existing.FullName,
			}
		}
	}

	if passport := deref(cv.PassportNumber); strings.TrimSpace(passport) != "" {
		normalized := normalizePassport(passport)
		if seen.Has(normalized) {
			return Resolution{
				IsDuplicate: true,
				Reason:      "passport number appears earlier in the same file",
			}
		}
		existing, err := r.finder.FindByPassport(ctx, normalized)
		switch {
		case err != nil:
			r.log.WarnContext(ctx, "passport lookup failed, continuing",
				"row", cv.RowNumber, "error", err)
		case existing != nil:
			id := existing.ID
			return Resolution{
				IsDuplicate: true,
				ExistingID:  &id,
				Reason:      "passport number already registered to " + existing.FullName,
			}
		}
		// Claim the passport for the remainder of the batch even when
		// the lookup errored; a second row with the same number is an
		// in-file duplicate either way.
		seen.Add(normalized)
		return Resolution{}
	}

	// No passport at all: fall back to the full name.
	if name := strings.TrimSpace(cv.FullName); name != "" {
		existing, err := r.finder.FindByFullName(ctx, name)
		switch {
		case err != nil:
			r.log.WarnContext(ctx, "full name lookup failed, continuing",
				"row", cv.RowNumber, "error", err)
		case existing != nil:
			id := existing.ID
			return Resolution{
				IsDuplicate: true,
				ExistingID:  &id,
				Reason:      "full name already registered and the row carries no passport number",
			}
		}
	}

	return Resolution{}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
