package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/insuretm/console/internal/api"
	"github.com/insuretm/console/internal/model"
	"github.com/insuretm/console/internal/nav"
	"github.com/insuretm/console/tests/testutil"
)

// fakeBackend serves a mutable notification list and records mark-read
// calls.
type fakeBackend struct {
	list       atomic.Value // string, JSON array
	markCalls  int32
	markStatus int32 // 0 means 200
	listStatus int32
}

func newFakeBackend(list string) *fakeBackend {
	b := &fakeBackend{}
	b.list.Store(list)
	return b
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/notifications/", func(w http.ResponseWriter, r *http.Request) {
		if s := atomic.LoadInt32(&b.listStatus); s != 0 {
			w.WriteHeader(int(s))
			return
		}
		fmt.Fprint(w, b.list.Load().(string))
	})
	mux.HandleFunc("/notifications/1/mark_read/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.markCalls, 1)
		if s := atomic.LoadInt32(&b.markStatus); s != 0 {
			w.WriteHeader(int(s))
			return
		}
	})
	return mux
}

func newFeed(t *testing.T, b *fakeBackend, cache Cache) *Feed {
	t.Helper()

	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, zap.NewNop())
	f := New(client, cache, time.Hour, zap.NewNop())
	t.Cleanup(f.Stop)
	return f
}

const twoNotifications = `[
	{"id":1,"type":"anomaly_reported","title":"Anomaly","is_read":false,"related_object_id":4},
	{"id":2,"type":"comment_posted","title":"Comment","is_read":true,"related_object_id":9}
]`

func TestStartDeliversInitialFetch(t *testing.T) {
	f := newFeed(t, newFakeBackend(twoNotifications), nil)

	cmd := f.Start()
	require.NotNil(t, cmd)

	msg, ok := cmd().(RefreshedMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Len(t, msg.Notifications, 2)
	assert.Equal(t, 1, msg.Unread)
	assert.Equal(t, 1, f.UnreadCount())
}

func TestStartTwiceIsNoOp(t *testing.T) {
	f := newFeed(t, newFakeBackend(twoNotifications), nil)

	require.NotNil(t, f.Start())
	assert.Nil(t, f.Start())
}

func TestStopIsIdempotent(t *testing.T) {
	f := newFeed(t, newFakeBackend(twoNotifications), nil)

	// Stopping a feed that never started must not panic.
	f.Stop()

	f.Start()
	f.Stop()
	f.Stop()
}

func TestStopUnblocksPendingWaiter(t *testing.T) {
	f := newFeed(t, newFakeBackend(twoNotifications), nil)

	first := f.Start()()
	require.NoError(t, first.(RefreshedMsg).Err)

	done := make(chan tea.Msg, 1)
	go func() { done <- f.WaitForNextResult()() }()

	// Give the waiter time to park on the result channel.
	time.Sleep(50 * time.Millisecond)
	f.Stop()

	select {
	case msg := <-done:
		assert.Nil(t, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter still blocked after Stop")
	}
}

func TestRefreshTriggersImmediateFetch(t *testing.T) {
	b := newFakeBackend(twoNotifications)
	f := newFeed(t, b, nil)

	first := f.Start()()
	require.NoError(t, first.(RefreshedMsg).Err)

	b.list.Store(`[{"id":3,"type":"campaign_assignment","title":"New campaign","is_read":false}]`)
	f.Refresh()

	msg, ok := f.WaitForNextResult()().(RefreshedMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	require.Len(t, msg.Notifications, 1)
	assert.Equal(t, int64(3), msg.Notifications[0].ID)
	assert.Equal(t, 1, f.UnreadCount())
}

func TestFetchErrorIsReported(t *testing.T) {
	b := newFakeBackend(twoNotifications)
	atomic.StoreInt32(&b.listStatus, http.StatusInternalServerError)
	f := newFeed(t, b, nil)

	msg := f.Start()().(RefreshedMsg)
	assert.Error(t, msg.Err)
	assert.Zero(t, f.UnreadCount())
}

func TestSeedFromCache(t *testing.T) {
	cache := testutil.NewTestStore(t)
	seed := []model.Notification{
		{ID: 10, Type: model.NotificationAnomalyReported, Title: "Old anomaly", CreatedAt: time.Now()},
	}
	require.NoError(t, cache.ReplaceNotificationSnapshot(context.Background(), seed))

	b := newFakeBackend(twoNotifications)
	f := newFeed(t, b, cache)

	f.seedFromCache()

	// The snapshot renders before any network round trip.
	got := f.Notifications()
	require.Len(t, got, 1)
	assert.Equal(t, int64(10), got[0].ID)
	assert.Equal(t, 1, f.UnreadCount())
}

func TestFetchReplacesSnapshotWholesale(t *testing.T) {
	cache := testutil.NewTestStore(t)
	stale := []model.Notification{{ID: 99, Title: "Stale", CreatedAt: time.Now()}}
	require.NoError(t, cache.ReplaceNotificationSnapshot(context.Background(), stale))

	f := newFeed(t, newFakeBackend(twoNotifications), cache)

	msg := f.Start()().(RefreshedMsg)
	require.NoError(t, msg.Err)

	snapshot, err := cache.NotificationSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot, 2)
	for _, n := range snapshot {
		assert.NotEqual(t, int64(99), n.ID, "previous snapshot rows must be gone")
	}
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	b := newFakeBackend(twoNotifications)
	f := newFeed(t, b, nil)

	ctx := context.Background()
	f.fetch(ctx)
	require.Equal(t, 1, f.UnreadCount())

	// Pretend a newer fetch already applied; this response is older
	// and must not clobber the list.
	f.mu.Lock()
	f.appliedSeq = f.nextSeq + 10
	f.mu.Unlock()

	b.list.Store(`[]`)
	f.fetch(ctx)

	assert.Len(t, f.Notifications(), 2)
	assert.Equal(t, 1, f.UnreadCount())
}

func TestClickMarksUnreadAndNavigates(t *testing.T) {
	b := newFakeBackend(twoNotifications)
	f := newFeed(t, b, nil)

	n := model.Notification{
		ID:              1,
		Type:            model.NotificationExecutionValidated,
		IsRead:          false,
		RelatedObjectID: 42,
	}
	msg, ok := f.Click(n)().(ClickedMsg)
	require.True(t, ok)

	assert.True(t, msg.Navigate)
	assert.Equal(t, nav.PathAdminExecutions, msg.Target.Path)
	assert.Equal(t, int64(42), msg.Target.Highlight)
	assert.Equal(t, int32(1), atomic.LoadInt32(&b.markCalls))
}

func TestClickSkipsMarkReadWhenAlreadyRead(t *testing.T) {
	b := newFakeBackend(twoNotifications)
	f := newFeed(t, b, nil)

	n := model.Notification{ID: 1, Type: model.NotificationCommentPosted, IsRead: true, RelatedObjectID: 3}
	msg := f.Click(n)().(ClickedMsg)

	assert.True(t, msg.Navigate)
	assert.Zero(t, atomic.LoadInt32(&b.markCalls))
}

func TestClickNavigatesEvenWhenMarkReadFails(t *testing.T) {
	b := newFakeBackend(twoNotifications)
	atomic.StoreInt32(&b.markStatus, http.StatusInternalServerError)
	f := newFeed(t, b, nil)

	n := model.Notification{ID: 1, Type: model.NotificationAnomalyReported, IsRead: false, RelatedObjectID: 7}
	msg := f.Click(n)().(ClickedMsg)

	assert.True(t, msg.Navigate, "acknowledgement failure must not block navigation")
	assert.Equal(t, nav.PathAdminAnomalies, msg.Target.Path)
	assert.Equal(t, int32(1), atomic.LoadInt32(&b.markCalls))
}

func TestClickUnknownTypeStaysPut(t *testing.T) {
	f := newFeed(t, newFakeBackend(twoNotifications), nil)

	n := model.Notification{ID: 1, Type: "reorg_announced", IsRead: true}
	msg := f.Click(n)().(ClickedMsg)

	assert.False(t, msg.Navigate)
}
