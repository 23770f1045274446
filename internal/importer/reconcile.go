package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Reconciler runs the analyze pass: every decoded row is mapped,
// deduplicated, and placed in exactly one outcome bucket. The pass
// performs no writes, so callers can preview a file and then execute
// the same plan.
type Reconciler struct {
	resolver *Resolver
	log      *slog.Logger
}

func NewReconciler(resolver *Resolver, log *slog.Logger) *Reconciler {
	return &Reconciler{resolver: resolver, log: log}
}

// Reconcile classifies all rows in file order. Rows are processed
// strictly sequentially: the passport set accumulates row by row and
// each row's duplicate check must observe every earlier claim.
//
// The counters always conserve the total: len(rows) equals new +
// updated + skipped + error.
func (r *Reconciler) Reconcile(ctx context.Context, rows []RawRow) *BatchOutcome {
	out := &BatchOutcome{
		TotalRows:           len(rows),
		ReferenceCodeCounts: make(map[string]int),
		NewCVs:              []*Candidate{},
		UpdatedCVs:          []*Candidate{},
		SkippedCVs:          []*Candidate{},
		ErrorCVs:            []*Candidate{},
	}
	seen := NewPassportSet()

	for i, row := range rows {
		rowNumber := i + 2 // sheet row 1 is the header

		cv, err := MapRow(row, rowNumber)
		if err != nil {
			errCV := &Candidate{
				RowNumber:       rowNumber,
				FullName:        fallbackName(row, rowNumber),
				DuplicateReason: "row mapping failed: " + err.Error(),
			}
			out.ErrorCVs = append(out.ErrorCVs, errCV)
			out.ErrorRecords++
			continue
		}

		// Blank rows are skipped outright; no point paying for a
		// duplicate lookup.
		if strings.TrimSpace(cv.FullName) == "" {
			cv.DuplicateReason = "empty row"
			out.SkippedCVs = append(out.SkippedCVs, cv)
			out.SkippedRecords++
			continue
		}

		if code := deref(cv.ReferenceCode); strings.TrimSpace(code) != "" {
			out.ReferenceCodeCounts[strings.TrimSpace(code)]++
		}

		res := r.resolver.Resolve(ctx, cv, seen)
		switch {
		case res.IsDuplicate && res.ExistingID != nil:
			cv.IsUpdate = true
			cv.ExistingID = res.ExistingID
			cv.DuplicateReason = res.Reason
			out.UpdatedCVs = append(out.UpdatedCVs, cv)
			out.UpdatedRecords++
		case res.IsDuplicate:
			cv.DuplicateReason = res.Reason
			out.SkippedCVs = append(out.SkippedCVs, cv)
			out.SkippedRecords++
		default:
			out.NewCVs = append(out.NewCVs, cv)
			out.NewRecords++
		}
	}

	out.DistinctReferenceCodes = len(out.ReferenceCodeCounts)
	out.Summary = summarize(out)
	return out
}

// fallbackName recovers a label for a row whose mapping blew up, so
// the error bucket still tells the operator which person was affected.
func fallbackName(row RawRow, rowNumber int) string {
	if v, ok := FindColumnValue(row, colFullName); ok {
		if s := strings.TrimSpace(cellString(v)); s != "" {
			return s
		}
	}
	return fmt.Sprintf("row %d", rowNumber)
}

func summarize(out *BatchOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "analyzed %d rows: %d new, %d updated, %d skipped, %d errors",
		out.TotalRows, out.NewRecords, out.UpdatedRecords, out.SkippedRecords, out.ErrorRecords)

	if len(out.ReferenceCodeCounts) > 0 {
		fmt.Fprintf(&b, "\ndistinct reference codes: %d", out.DistinctReferenceCodes)
		codes := make([]string, 0, len(out.ReferenceCodeCounts))
		for code := range out.ReferenceCodeCounts {
			codes = append(codes, code)
		}
		sort.Slice(codes, func(i, j int) bool {
			if out.ReferenceCodeCounts[codes[i]] != out.ReferenceCodeCounts[codes[j]] {
				return out.ReferenceCodeCounts[codes[i]] > out.ReferenceCodeCounts[codes[j]]
			}
			return codes[i] < codes[j]
		})
		for _, code := range codes {
			fmt.Fprintf(&b, "\n  %s: %d", code, out.ReferenceCodeCounts[code])
		}
	}
	return b.String()
}
