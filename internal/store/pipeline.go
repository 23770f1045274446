package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staffdesk/cvimport/internal/importer"
)

// Pipeline implements importer.PipelineStore: stage assignments live in
// cv_distributions, audit entries in activity_log.
type Pipeline struct {
	pool *pgxpool.Pool
}

func NewPipeline(pool *pgxpool.Pool) *Pipeline {
	return &Pipeline{pool: pool}
}

// DeactivateAssignments marks every active stage assignment of the
// candidate inactive and returns how many rows were touched. Zero is
// not an error; a fresh candidate simply has no assignments yet.
func (p *Pipeline) DeactivateAssignments(ctx context.Context, cvID int64, actorID int64, reason string) (int64, error) {
	const q = `
		UPDATE cv_distributions
		SET is_active = false,
		    removed_at = now(),
		    removed_by = @actor,
		    notes = @reason
		WHERE cv_id = @cv AND is_active = true`

	tag, err := p.pool.Exec(ctx, q, pgx.NamedArgs{
		"cv":     cvID,
		"actor":  actorID,
		"reason": reason,
	})
	if err != nil {
		return 0, fmt.Errorf("deactivate assignments for cv %d: %w", cvID, err)
	}
	return tag.RowsAffected(), nil
}

func (p *Pipeline) LogActivity(ctx context.Context, entry importer.ActivityEntry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("encode activity metadata: %w", err)
	}

	const q = `
		INSERT INTO activity_log
			(user_id, action, description, target_type, target_id, target_name, metadata, created_at)
		VALUES (@user, @action, @description, @target_type, @target_id, @target_name, @metadata, now())`

	_, err = p.pool.Exec(ctx, q, pgx.NamedArgs{
		"user":        entry.ActorID,
		"action":      entry.Action,
		"description": entry.Description,
		"target_type": entry.TargetType,
		"target_id":   entry.TargetID,
		"target_name": entry.TargetName,
		"metadata":    metadata,
	})
	if err != nil {
		return fmt.Errorf("insert activity %s: %w", entry.Action, err)
	}
	return nil
}
