package thread

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAddsOptimisticEntryAtEnd(t *testing.T) {
	var l List
	l.ReplaceAll([]Entry{
		{ID: 1, Sender: "amine", Body: "first"},
		{ID: 2, Sender: "nadia", Body: "second"},
	})

	e := l.Append("nadia", "third", "")

	entries := l.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[2].Body)
	assert.True(t, entries[2].Optimistic)
	assert.True(t, l.HasOptimistic())
	assert.Greater(t, e.ID, int64(1_000_000), "synthetic ids sit far above server ids")
}

func TestRapidSendsGetDistinctIDs(t *testing.T) {
	var l List
	seen := map[int64]bool{}
	for i := 0; i < 100; i++ {
		e := l.Append("nadia", "msg", "")
		assert.False(t, seen[e.ID], "id %d issued twice", e.ID)
		seen[e.ID] = true
	}
}

func TestReplaceAllDropsOptimisticState(t *testing.T) {
	var l List
	l.Append("nadia", "pending", "")
	failed := l.Append("nadia", "broken", "")
	require.True(t, l.MarkFailed(failed.ID))
	require.True(t, l.HasFailed())

	l.ReplaceAll([]Entry{
		{ID: 1, Sender: "nadia", Body: "pending", CreatedAt: time.Now()},
	})

	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Optimistic)
	assert.False(t, l.HasOptimistic())
	assert.False(t, l.HasFailed())
}

func TestReplaceAllCopiesInput(t *testing.T) {
	var l List
	src := []Entry{{ID: 1, Body: "a"}, {ID: 2, Body: "b"}}
	l.ReplaceAll(src)

	src[0].Body = "mutated"
	assert.Equal(t, "a", l.Entries()[0].Body)
}

func TestMarkFailedKeepsEntryVisible(t *testing.T) {
	var l List
	e := l.Append("nadia", "will fail", "")

	require.True(t, l.MarkFailed(e.ID))

	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Failed)
	assert.True(t, entries[0].Optimistic)
}

func TestMarkFailedUnknownID(t *testing.T) {
	var l List
	l.Append("nadia", "msg", "")

	assert.False(t, l.MarkFailed(12345))
	assert.False(t, l.HasFailed())
}

func TestEntriesReturnsCopy(t *testing.T) {
	var l List
	l.ReplaceAll([]Entry{{ID: 1, Body: "original"}})

	entries := l.Entries()
	entries[0].Body = "mutated"

	assert.Equal(t, "original", l.Entries()[0].Body)
}
