package store

import (
	"context"
	"fmt"

	"github.com/insuretm/console/internal/model"
)

// ReplaceNotificationSnapshot swaps the cached notification list for
// the given one inside a single transaction. The snapshot is always a
// full overwrite, mirroring the feed's own semantics.
func (s *SQLiteStore) ReplaceNotificationSnapshot(
	ctx context.Context,
	notifications []model.Notification,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM notification_snapshot"); err != nil {
		return fmt.Errorf("clearing notification snapshot: %w", err)
	}

	const query = `
		INSERT INTO notification_snapshot (
			id, type, title, message, is_read, related_object_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range notifications {
		_, err := stmt.ExecContext(ctx,
			n.ID, string(n.Type), n.Title, n.Message,
			n.IsRead, n.RelatedObjectID, n.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("inserting notification %d: %w", n.ID, err)
		}
	}

	return tx.Commit()
}

// NotificationSnapshot returns the cached notification list, newest
// first.
func (s *SQLiteStore) NotificationSnapshot(ctx context.Context) ([]model.Notification, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, type, title, message, is_read, related_object_id, created_at
		FROM notification_snapshot
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying notification snapshot: %w", err)
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		var rawType string
		err := rows.Scan(
			&n.ID, &rawType, &n.Title, &n.Message,
			&n.IsRead, &n.RelatedObjectID, &n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		n.Type = model.NotificationType(rawType)
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}
