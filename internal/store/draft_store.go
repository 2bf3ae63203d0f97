package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EmailDraft is an unsent email kept locally so a half-written message
// survives a restart. Drafts never reach the backend until sent.
type EmailDraft struct {
	ID        string    `db:"id"`
	Recipient string    `db:"recipient"`
	Subject   string    `db:"subject"`
	Body      string    `db:"body"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SaveDraft inserts or updates a draft. A draft without an ID gets a
// fresh one, which is returned.
func (s *SQLiteStore) SaveDraft(ctx context.Context, draft EmailDraft) (string, error) {
	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}

	const query = `
		INSERT INTO email_drafts (id, recipient, subject, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			recipient = excluded.recipient,
			subject = excluded.subject,
			body = excluded.body,
			updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		draft.ID, draft.Recipient, draft.Subject, draft.Body, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("saving draft %s: %w", draft.ID, err)
	}

	return draft.ID, nil
}

// Drafts returns all drafts, most recently edited first.
func (s *SQLiteStore) Drafts(ctx context.Context) ([]EmailDraft, error) {
	drafts := []EmailDraft{}
	err := s.db.SelectContext(ctx, &drafts, `
		SELECT id, recipient, subject, body, updated_at
		FROM email_drafts
		ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying drafts: %w", err)
	}
	return drafts, nil
}

// DeleteDraft removes a draft, typically after a successful send.
func (s *SQLiteStore) DeleteDraft(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM email_drafts WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting draft %s: %w", id, err)
	}
	return nil
}
