// Package thread implements the optimistic list used by comment and
// message panels: a locally fabricated entry appears immediately, and
// the whole list is later replaced by the server's authoritative
// version. The list is confined to the UI event loop and needs no
// locking.
package thread

import (
	"sync/atomic"
	"time"
)

// Entry is one row in a discussion thread.
type Entry struct {
	// ID is server-issued for fetched entries and synthetic (large,
	// UnixNano-derived) for optimistic ones; the two spaces never
	// collide.
	ID int64

	Sender     string
	Body       string
	Attachment string
	CreatedAt  time.Time

	// Optimistic marks a locally fabricated entry not yet confirmed
	// by the server.
	Optimistic bool

	// Failed marks an optimistic entry whose write was rejected. It
	// stays visible and is never retried automatically.
	Failed bool
}

// syntheticID is a process-wide monotonic counter seeded with the
// start time in nanoseconds. Rapid consecutive sends therefore always
// get distinct ids, and the values sit far above any server id.
var syntheticID atomic.Int64

func init() {
	syntheticID.Store(time.Now().UnixNano())
}

func nextSyntheticID() int64 {
	return syntheticID.Add(1)
}

// List is an optimistic discussion thread.
type List struct {
	entries []Entry
}

// Entries returns a copy of the current rows in display order.
func (l *List) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of rows.
func (l *List) Len() int {
	return len(l.entries)
}

// Append adds an optimistic entry at the end of the list, after all
// previously fetched rows, and returns it.
func (l *List) Append(sender, body, attachment string) Entry {
	e := Entry{
		ID:         nextSyntheticID(),
		Sender:     sender,
		Body:       body,
		Attachment: attachment,
		CreatedAt:  time.Now(),
		Optimistic: true,
	}
	l.entries = append(l.entries, e)
	return e
}

// ReplaceAll swaps in the server's authoritative list wholesale. No
// optimistic entry survives; the entry either made it to the server
// (and comes back with its real id) or is gone. Incremental patching
// is deliberately not supported.
func (l *List) ReplaceAll(entries []Entry) {
	l.entries = make([]Entry, len(entries))
	copy(l.entries, entries)
	for i := range l.entries {
		l.entries[i].Optimistic = false
		l.entries[i].Failed = false
	}
}

// MarkFailed flags the entry with the given id as failed. It reports
// whether the entry was found.
func (l *List) MarkFailed(id int64) bool {
	for i := range l.entries {
		if l.entries[i].ID == id {
			l.entries[i].Failed = true
			return true
		}
	}
	return false
}

// HasOptimistic reports whether any unconfirmed entry is displayed.
func (l *List) HasOptimistic() bool {
	for _, e := range l.entries {
		if e.Optimistic {
			return true
		}
	}
	return false
}

// HasFailed reports whether any entry is flagged as undelivered.
func (l *List) HasFailed() bool {
	for _, e := range l.entries {
		if e.Failed {
			return true
		}
	}
	return false
}
