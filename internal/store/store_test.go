package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insuretm/console/internal/model"
	"github.com/insuretm/console/internal/store"
	"github.com/insuretm/console/tests/testutil"
)

func TestNotificationSnapshotRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	in := []model.Notification{
		{ID: 1, Type: model.NotificationAnomalyReported, Title: "Anomaly", Message: "broken", IsRead: false, RelatedObjectID: 4, CreatedAt: now.Add(-time.Hour)},
		{ID: 2, Type: model.NotificationCommentPosted, Title: "Comment", IsRead: true, RelatedObjectID: 9, CreatedAt: now},
	}
	require.NoError(t, s.ReplaceNotificationSnapshot(ctx, in))

	out, err := s.NotificationSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)

	// Newest first.
	assert.Equal(t, int64(2), out[0].ID)
	assert.Equal(t, model.NotificationCommentPosted, out[0].Type)
	assert.True(t, out[0].IsRead)
	assert.Equal(t, int64(1), out[1].ID)
	assert.Equal(t, int64(4), out[1].RelatedObjectID)
}

func TestReplaceNotificationSnapshotIsWholesale(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceNotificationSnapshot(ctx, []model.Notification{
		{ID: 1, Title: "old", CreatedAt: time.Now()},
		{ID: 2, Title: "older", CreatedAt: time.Now()},
	}))
	require.NoError(t, s.ReplaceNotificationSnapshot(ctx, []model.Notification{
		{ID: 3, Title: "current", CreatedAt: time.Now()},
	}))

	out, err := s.NotificationSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(3), out[0].ID)
}

func TestReplaceNotificationSnapshotWithEmptyList(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceNotificationSnapshot(ctx, []model.Notification{
		{ID: 1, Title: "gone soon", CreatedAt: time.Now()},
	}))
	require.NoError(t, s.ReplaceNotificationSnapshot(ctx, nil))

	out, err := s.NotificationSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSaveDraftAssignsID(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	id, err := s.SaveDraft(ctx, store.EmailDraft{Subject: "Quarterly report", Body: "Hi,"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	drafts, err := s.Drafts(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, id, drafts[0].ID)
	assert.Equal(t, "Quarterly report", drafts[0].Subject)
}

func TestSaveDraftUpserts(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	id, err := s.SaveDraft(ctx, store.EmailDraft{Subject: "v1"})
	require.NoError(t, err)

	_, err = s.SaveDraft(ctx, store.EmailDraft{ID: id, Subject: "v2", Body: "more text"})
	require.NoError(t, err)

	drafts, err := s.Drafts(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "v2", drafts[0].Subject)
	assert.Equal(t, "more text", drafts[0].Body)
}

func TestDraftsNewestFirst(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	_, err := s.SaveDraft(ctx, store.EmailDraft{ID: "a", Subject: "first"})
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = s.SaveDraft(ctx, store.EmailDraft{ID: "b", Subject: "second"})
	require.NoError(t, err)

	drafts, err := s.Drafts(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "b", drafts[0].ID)
}

func TestDeleteDraft(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	id, err := s.SaveDraft(ctx, store.EmailDraft{Subject: "doomed"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteDraft(ctx, id))
	// Deleting twice is harmless.
	require.NoError(t, s.DeleteDraft(ctx, id))

	drafts, err := s.Drafts(ctx)
	require.NoError(t, err)
	assert.Empty(t, drafts)
}
