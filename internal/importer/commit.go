package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// candidateSource tags records created through the bulk import so
// their origin survives in the persisted row.
const candidateSource = "Excel Smart Import"

// StageForStatus maps a candidate status to its sales-pipeline stage.
// NEW has no stage here: fresh candidates are routed by a separate
// mechanism, so redistribution skips them entirely.
func StageForStatus(s Status) (string, bool) {
	switch s {
	case StatusBooked:
		return "bookings", true
	case StatusHired:
		return "contracts", true
	case StatusRejected:
		return "rejected", true
	case StatusReturned:
		return "returned", true
	case StatusArchived:
		return "archived", true
	default:
		return "", false
	}
}

// ExecuteOptions carries the per-request context of an execute run.
type ExecuteOptions struct {
	FileName string
	ActorID  int64
}

// Executor commits a reconciled plan: creates the new candidates,
// updates the matched ones, and routes status changes through the
// pipeline. One failing row never aborts the batch; the row moves to
// the error bucket, the counters are adjusted, and the loop continues.
type Executor struct {
	store    CandidateStore
	pipeline PipelineStore
	images   ImageResolver
	notifier Notifier
	log      *slog.Logger
}

func NewExecutor(store CandidateStore, pipeline PipelineStore, images ImageResolver, notifier Notifier, log *slog.Logger) *Executor {
	return &Executor{store: store, pipeline: pipeline, images: images, notifier: notifier, log: log}
}

// Execute mutates out in place and returns the per-row execution
// errors. After it returns, the counters again conserve the total and
// the summary reflects the post-execution counts.
func (e *Executor) Execute(ctx context.Context, out *BatchOutcome, opts ExecuteOptions) []string {
	start := time.Now()
	batchID := uuid.NewString()
	var errs []string

	e.log.InfoContext(ctx, "executing import",
		"batch", batchID, "file", opts.FileName,
		"new", out.NewRecords, "updated", out.UpdatedRecords)

	kept := out.NewCVs[:0]
	for _, cv := range out.NewCVs {
		if err := e.createOne(ctx, cv, opts); err != nil {
			e.log.ErrorContext(ctx, "create failed",
				"row", cv.RowNumber, "name", cv.FullName, "error", err)
			cv.DuplicateReason = "save failed: " + err.Error()
			out.ErrorCVs = append(out.ErrorCVs, cv)
			out.ErrorRecords++
			out.NewRecords--
			errs = append(errs, fmt.Sprintf("row %d (%s): %v", cv.RowNumber, cv.FullName, err))
			continue
		}
		kept = append(kept, cv)
	}
	out.NewCVs = kept

	kept = out.UpdatedCVs[:0]
	for _, cv := range out.UpdatedCVs {
		if cv.ExistingID == nil {
			kept = append(kept, cv)
			continue
		}
		if err := e.updateOne(ctx, cv, opts); err != nil {
			e.log.ErrorContext(ctx, "update failed",
				"row", cv.RowNumber, "id", *cv.ExistingID, "error", err)
			cv.DuplicateReason = "update failed: " + err.Error()
			out.ErrorCVs = append(out.ErrorCVs, cv)
			out.ErrorRecords++
			out.UpdatedRecords--
			errs = append(errs, fmt.Sprintf("row %d (%s): %v", cv.RowNumber, cv.FullName, err))
			continue
		}
		kept = append(kept, cv)
	}
	out.UpdatedCVs = kept

	e.notify(ctx, batchID, out, opts, start)
	e.logBatch(ctx, out, opts, start)

	out.Summary = summarize(out)
	if len(errs) > 0 {
		out.Summary += fmt.Sprintf(" - execution errors: %d", len(errs))
	}
	return errs
}

func (e *Executor) createOne(ctx context.Context, cv *Candidate, opts ExecuteOptions) error {
	e.resolveImage(ctx, cv)
	e.checkVideoURL(ctx, cv)

	id, err := e.store.Create(ctx, cv, opts.ActorID, candidateSource)
	if err != nil {
		return fmt.Errorf("create candidate: %w", err)
	}
	cv.ExistingID = &id

	e.logActivity(ctx, ActivityEntry{
		ActorID:     opts.ActorID,
		Action:      "CV_CREATED",
		Description: fmt.Sprintf("created candidate %s via import", cv.FullName),
		TargetType:  "CV",
		TargetID:    fmt.Sprintf("%d", id),
		TargetName:  cv.FullName,
		Metadata: map[string]any{
			"source":        candidateSource,
			"fileName":      opts.FileName,
			"rowNumber":     cv.RowNumber,
			"referenceCode": deref(cv.ReferenceCode),
			"hasVideo":      cv.VideoURL != nil,
		},
	})

	e.redistribute(ctx, id, cv.Status, opts.ActorID)
	return nil
}

func (e *Executor) updateOne(ctx context.Context, cv *Candidate, opts ExecuteOptions) error {
	id := *cv.ExistingID

	// The stored status decides whether redistribution fires; it must
	// run only on an actual transition.
	prior, err := e.store.GetReconcileState(ctx, id)
	if err != nil {
		return fmt.Errorf("read current state: %w", err)
	}

	// A sheet that omits these fields must not wipe them: the stored
	// reference code is the unique identity key, and an absent
	// experience column keeps the stored text. Carrying them forward
	// also keeps the response buckets showing what is persisted.
	if cv.ReferenceCode == nil {
		cv.ReferenceCode = prior.ReferenceCode
	}
	if !cv.Experience.Present && prior.Experience != nil {
		cv.Experience = SomeText(*prior.Experience)
	}

	e.resolveImage(ctx, cv)
	e.checkVideoURL(ctx, cv)

	if err := e.store.Update(ctx, id, cv, opts.ActorID); err != nil {
		return fmt.Errorf("update candidate: %w", err)
	}

	e.logActivity(ctx, ActivityEntry{
		ActorID:     opts.ActorID,
		Action:      "CV_UPDATED",
		Description: fmt.Sprintf("updated candidate %s via import", cv.FullName),
		TargetType:  "CV",
		TargetID:    fmt.Sprintf("%d", id),
		TargetName:  cv.FullName,
		Metadata: map[string]any{
			"source":        candidateSource,
			"fileName":      opts.FileName,
			"rowNumber":     cv.RowNumber,
			"referenceCode": deref(cv.ReferenceCode),
			"hasVideo":      cv.VideoURL != nil,
			"updateReason":  cv.DuplicateReason,
		},
	})

	if prior.Status != cv.Status {
		e.redistribute(ctx, id, cv.Status, opts.ActorID)
	}
	return nil
}

// resolveImage swaps an external profile image URL for a locally
// stored asset path. A failed fetch keeps the raw URL; the row is
// committed either way.
func (e *Executor) resolveImage(ctx context.Context, cv *Candidate) {
	if cv.ProfileImage == nil || strings.TrimSpace(*cv.ProfileImage) == "" {
		return
	}
	stored, err := e.images.Resolve(ctx, *cv.ProfileImage)
	if err != nil {
		e.log.WarnContext(ctx, "profile image fetch failed, keeping source URL",
			"row", cv.RowNumber, "url", *cv.ProfileImage, "error", err)
		return
	}
	cv.ProfileImage = &stored
}

// videoHosts and videoExtensions are the sources video links usually
// come from. Anything else is stored as-is but logged for review.
var videoHosts = []string{"youtube.com", "youtu.be", "vimeo.com", "drive.google.com", "dropbox.com"}

var videoExtensions = []string{".mp4", ".mov", ".webm", ".avi", ".mkv"}

// checkVideoURL flags unrecognized video links. Log-only: the URL is
// persisted verbatim either way.
func (e *Executor) checkVideoURL(ctx context.Context, cv *Candidate) {
	if cv.VideoURL == nil {
		return
	}
	u := strings.ToLower(strings.TrimSpace(*cv.VideoURL))
	for _, host := range videoHosts {
		if strings.Contains(u, host) {
			return
		}
	}
	for _, ext := range videoExtensions {
		if strings.HasSuffix(u, ext) {
			return
		}
	}
	e.log.DebugContext(ctx, "unrecognized video url source",
		"row", cv.RowNumber, "url", *cv.VideoURL)
}

// redistribute moves the candidate out of its active pipeline stages
// after a status change. Best-effort: the record is already saved, so
// failures are logged and swallowed.
func (e *Executor) redistribute(ctx context.Context, cvID int64, status Status, actorID int64) {
	stage, ok := StageForStatus(status)
	if !ok {
		return
	}

	reason := fmt.Sprintf("status changed to %s, moved to %s", status, stage)
	n, err := e.pipeline.DeactivateAssignments(ctx, cvID, actorID, reason)
	if err != nil {
		e.log.ErrorContext(ctx, "pipeline redistribution failed",
			"cv", cvID, "stage", stage, "error", err)
		return
	}

	e.logActivity(ctx, ActivityEntry{
		ActorID:     actorID,
		Action:      "CV_REDISTRIBUTED",
		Description: fmt.Sprintf("deactivated %d pipeline assignments, target stage %s", n, stage),
		TargetType:  "CV",
		TargetID:    fmt.Sprintf("%d", cvID),
		Metadata: map[string]any{
			"stage":       stage,
			"status":      string(status),
			"deactivated": n,
		},
	})
}

func (e *Executor) logActivity(ctx context.Context, entry ActivityEntry) {
	if err := e.pipeline.LogActivity(ctx, entry); err != nil {
		e.log.WarnContext(ctx, "activity log write failed",
			"action", entry.Action, "target", entry.TargetID, "error", err)
	}
}

func (e *Executor) notify(ctx context.Context, batchID string, out *BatchOutcome, opts ExecuteOptions, start time.Time) {
	if e.notifier == nil {
		return
	}
	err := e.notifier.NotifyImport(ctx, ImportSummary{
		BatchID:                batchID,
		FileName:               opts.FileName,
		ActorID:                opts.ActorID,
		TotalRows:              out.TotalRows,
		NewRecords:             out.NewRecords,
		UpdatedRecords:         out.UpdatedRecords,
		SkippedRecords:         out.SkippedRecords,
		ErrorRecords:           out.ErrorRecords,
		DistinctReferenceCodes: out.DistinctReferenceCodes,
		Elapsed:                time.Since(start).Round(time.Millisecond).String(),
	})
	if err != nil {
		e.log.WarnContext(ctx, "import notification failed", "error", err)
	}
}

func (e *Executor) logBatch(ctx context.Context, out *BatchOutcome, opts ExecuteOptions, start time.Time) {
	e.logActivity(ctx, ActivityEntry{
		ActorID:    opts.ActorID,
		Action:     "EXCEL_IMPORT",
		TargetType: "SYSTEM",
		TargetName: opts.FileName,
		Description: fmt.Sprintf("imported %q: %d rows, %d new, %d updated, %d skipped, %d errors",
			opts.FileName, out.TotalRows, out.NewRecords, out.UpdatedRecords,
			out.SkippedRecords, out.ErrorRecords),
		Metadata: map[string]any{
			"fileName":       opts.FileName,
			"totalRows":      out.TotalRows,
			"newRecords":     out.NewRecords,
			"updatedRecords": out.UpdatedRecords,
			"skippedRecords": out.SkippedRecords,
			"errorRecords":   out.ErrorRecords,
			"referenceCodes": out.DistinctReferenceCodes,
			"processingMs":   time.Since(start).Milliseconds(),
		},
	})
}
