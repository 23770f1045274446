package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staffdesk/cvimport/internal/importer"
)

// Notifier writes one aggregate notification row per executed import,
// picked up by the operator dashboard.
type Notifier struct {
	pool *pgxpool.Pool
}

func NewNotifier(pool *pgxpool.Pool) *Notifier {
	return &Notifier{pool: pool}
}

func (n *Notifier) NotifyImport(ctx context.Context, summary importer.ImportSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode import summary: %w", err)
	}

	message := fmt.Sprintf("imported %q: %d rows, %d new, %d updated, %d skipped, %d errors",
		summary.FileName, summary.TotalRows, summary.NewRecords,
		summary.UpdatedRecords, summary.SkippedRecords, summary.ErrorRecords)

	const q = `
		INSERT INTO notifications (user_id, type, title, message, metadata, created_at)
		VALUES (@user, 'IMPORT_COMPLETED', @title, @message, @metadata, now())`

	_, err = n.pool.Exec(ctx, q, pgx.NamedArgs{
		"user":     summary.ActorID,
		"title":    "Spreadsheet import finished",
		"message":  message,
		"metadata": payload,
	})
	if err != nil {
		return fmt.Errorf("insert import notification: %w", err)
	}
	return nil
}
