// Package feed keeps an up-to-date view of the current user's
// notifications. It polls the backend on an interval, counts unread
// entries, and resolves clicks into navigation targets. A Feed belongs
// to exactly one logged-in session: the app tears it down on logout or
// user change and builds a fresh one after the next login.
package feed

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/insuretm/console/internal/api"
	"github.com/insuretm/console/internal/model"
	"github.com/insuretm/console/internal/nav"
)

// fetchTimeout bounds a single notification fetch.
const fetchTimeout = 15 * time.Second

// RefreshedMsg is sent to the UI after each completed refresh.
type RefreshedMsg struct {
	Notifications []model.Notification
	Unread        int
	Err           error
}

// ClickedMsg is sent after a notification click has been processed.
// Navigate is false for unrecognized notification types; the UI stays
// where it is.
type ClickedMsg struct {
	Target   nav.Target
	Navigate bool
}

// Cache persists the last notification snapshot so the popover renders
// instantly at startup. The first live fetch replaces it wholesale;
// the cache is never merged with live data.
type Cache interface {
	NotificationSnapshot(ctx context.Context) ([]model.Notification, error)
	ReplaceNotificationSnapshot(ctx context.Context, notifications []model.Notification) error
}

// Feed polls notifications for one session.
type Feed struct {
	client   *api.Client
	cache    Cache
	log      *zap.Logger
	interval time.Duration

	mu            sync.Mutex
	notifications []model.Notification
	unread        int
	nextSeq       uint64
	appliedSeq    uint64
	running       bool
	stopCh        chan struct{}
	triggerCh     chan struct{}
	resultCh      chan RefreshedMsg
}

// New creates a feed. cache may be nil (no local snapshot). A
// non-positive interval falls back to 30 seconds.
func New(client *api.Client, cache Cache, interval time.Duration, log *zap.Logger) *Feed {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Feed{
		client:    client,
		cache:     cache,
		log:       log,
		interval:  interval,
		stopCh:    make(chan struct{}),
		triggerCh: make(chan struct{}, 1),
		resultCh:  make(chan RefreshedMsg, 16),
	}
}

// Start seeds the list from the cache, launches the polling goroutine
// (one immediate fetch, then one per interval), and returns a command
// that waits for the first result. Calling Start twice is a no-op.
func (f *Feed) Start() tea.Cmd {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return nil
	}
	f.running = true
	f.mu.Unlock()

	f.seedFromCache()

	go f.loop()

	return f.waitForResult()
}

// Stop halts polling. It is idempotent and safe to call on a feed that
// never started.
func (f *Feed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.running {
		return
	}
	close(f.stopCh)
	f.running = false
}

// Refresh triggers an immediate poll without waiting for the ticker.
func (f *Feed) Refresh() {
	select {
	case f.triggerCh <- struct{}{}:
	default:
	}
}

// Notifications returns a copy of the current list.
func (f *Feed) Notifications() []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]model.Notification, len(f.notifications))
	copy(out, f.notifications)
	return out
}

// UnreadCount returns the number of unread notifications.
func (f *Feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unread
}

// Click processes a notification click: unread entries are
// acknowledged with the backend and the list refreshed, then the
// notification type is resolved to a destination. A failed mark-read
// is logged and the click still navigates; IsRead is never flipped
// locally before the server confirms.
func (f *Feed) Click(n model.Notification) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		if !n.IsRead {
			if err := f.client.MarkNotificationRead(ctx, n.ID); err != nil {
				f.log.Warn("mark-read failed, navigating anyway",
					zap.Int64("notification_id", n.ID),
					zap.Error(err),
				)
			} else {
				f.fetch(ctx)
			}
		}

		target, ok := nav.NotificationTarget(n)
		return ClickedMsg{Target: target, Navigate: ok}
	}
}

// WaitForNextResult returns a command that waits for the next refresh
// result. Call it again after each RefreshedMsg to keep listening.
func (f *Feed) WaitForNextResult() tea.Cmd {
	return f.waitForResult()
}

func (f *Feed) waitForResult() tea.Cmd {
	return func() tea.Msg {
		// Closing resultCh would race with Click's fetch, which can
		// still send after Stop. Selecting on stopCh lets the waiter
		// return instead of parking forever across a logout.
		select {
		case result := <-f.resultCh:
			return result
		case <-f.stopCh:
			return nil
		}
	}
}

// seedFromCache loads the persisted snapshot for instant rendering.
// appliedSeq stays at zero so the first live fetch always wins.
func (f *Feed) seedFromCache() {
	if f.cache == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	snapshot, err := f.cache.NotificationSnapshot(ctx)
	if err != nil {
		f.log.Warn("loading notification snapshot failed", zap.Error(err))
		return
	}

	f.mu.Lock()
	f.notifications = snapshot
	f.unread = countUnread(snapshot)
	f.mu.Unlock()
}

// loop runs the polling loop for this session's feed.
func (f *Feed) loop() {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	f.fetch(ctx)
	cancel()

	for {
		select {
		case <-f.stopCh:
			return
		case <-ticker.C:
		case <-f.triggerCh:
		}

		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		f.fetch(ctx)
		cancel()
	}
}

// fetch performs one full-list refresh. Each fetch gets a sequence
// number; a response that completes after a newer one has already been
// applied is discarded, so an in-flight stale fetch can never clobber
// a later mark-read acknowledgement.
func (f *Feed) fetch(ctx context.Context) {
	f.mu.Lock()
	f.nextSeq++
	seq := f.nextSeq
	f.mu.Unlock()

	notifications, err := f.client.ListNotifications(ctx)
	if err != nil {
		f.sendResult(RefreshedMsg{Err: err})
		return
	}

	f.mu.Lock()
	if seq < f.appliedSeq {
		f.mu.Unlock()
		f.log.Debug("discarding stale notification fetch",
			zap.Uint64("seq", seq),
		)
		return
	}
	f.appliedSeq = seq
	f.notifications = notifications
	f.unread = countUnread(notifications)
	unread := f.unread
	f.mu.Unlock()

	if f.cache != nil {
		if err := f.cache.ReplaceNotificationSnapshot(ctx, notifications); err != nil {
			f.log.Warn("persisting notification snapshot failed", zap.Error(err))
		}
	}

	f.sendResult(RefreshedMsg{
		Notifications: notifications,
		Unread:        unread,
	})
}

func (f *Feed) sendResult(msg RefreshedMsg) {
	select {
	case f.resultCh <- msg:
	default:
		// Drop if the UI is not draining; the next poll supersedes it.
	}
}

func countUnread(notifications []model.Notification) int {
	count := 0
	for _, n := range notifications {
		if !n.IsRead {
			count++
		}
	}
	return count
}
