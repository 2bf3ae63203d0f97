package compose

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/insuretm/console/internal/api"
	"github.com/insuretm/console/tests/testutil"
)

func TestSaveDraftPersistsHalfWrittenMessage(t *testing.T) {
	st := testutil.NewTestStore(t)

	m := New(api.NewClient("http://localhost:1", zap.NewNop()), st, zap.NewNop(), 80, 24)
	m.subject = "Release notes"
	m.body = "Draft in progress"
	m.saveDraft()

	drafts, err := st.Drafts(context.Background())
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Release notes", drafts[0].Subject)
}

func TestSaveDraftSkipsBlankMessage(t *testing.T) {
	st := testutil.NewTestStore(t)

	m := New(api.NewClient("http://localhost:1", zap.NewNop()), st, zap.NewNop(), 80, 24)
	m.saveDraft()

	drafts, err := st.Drafts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestSaveDraftLogsStorageFailure(t *testing.T) {
	st := testutil.NewTestStore(t)
	require.NoError(t, st.Close())

	core, logs := observer.New(zap.WarnLevel)
	m := New(api.NewClient("http://localhost:1", zap.NewNop()), st, zap.New(core), 80, 24)
	m.subject = "Release notes"
	m.body = "Draft in progress"
	m.saveDraft()

	assert.Equal(t, 1, logs.FilterMessage("saving email draft").Len())
}
