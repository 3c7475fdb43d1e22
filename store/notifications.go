// Copyright (c) 2023-present Pinrail, Inc. All Rights Reserved.
// See License for license information.

package store

import (
	"time"

	"github.com/pinrail/pinrail-go/board"
	"github.com/pinrail/pinrail-go/utils"
)

// Notifications is the staleness-aware cache for the notification panel: the
// ordered notification list plus the unread count. The count is maintained
// incrementally, one O(1) adjustment per event, instead of being recomputed
// from the list; it is floored at zero so a double-decrement race can never
// push it negative.
type Notifications struct {
	*Collection[board.Notification]

	// unread is guarded by the embedded Collection's mutex.
	unread int
}

func MakeNotifications(staleAfter time.Duration, log utils.Logger) *Notifications {
	return &Notifications{
		Collection: MakeCollection[board.Notification]("notifications", staleAfter, log),
	}
}

// SetItems replaces the list with a fetched result and recomputes the unread
// count from it. Full refresh is the only place the count is derived from the
// list; every other mutation adjusts it incrementally.
func (n *Notifications) SetItems(items []board.Notification) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.items = make([]board.Notification, len(items))
	copy(n.items, items)
	n.lastFetchedAt = n.now()
	n.fetching = false

	n.unread = 0
	for _, rec := range items {
		if !rec.Read {
			n.unread++
		}
	}
}

// CompleteFetch writes back a claimed fetch and recomputes the unread count,
// refusing a stale generation token just like the embedded gate does.
func (n *Notifications) CompleteFetch(gen uint64, items []board.Notification) bool {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if gen != n.gen {
		return false
	}
	n.items = make([]board.Notification, len(items))
	copy(n.items, items)
	n.lastFetchedAt = n.now()
	n.fetching = false

	n.unread = 0
	for _, rec := range items {
		if !rec.Read {
			n.unread++
		}
	}
	return true
}

// Add inserts a pushed notification at the head of the list. Insertion is
// deduplicated by ID: at-least-once delivery means the same event can arrive
// twice, and the second delivery must be a no-op, not a duplicate entry.
// Reports whether the record was actually inserted.
func (n *Notifications) Add(rec board.Notification) bool {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	for _, existing := range n.items {
		if existing.ID == rec.ID {
			return false
		}
	}
	n.items = append([]board.Notification{rec}, n.items...)
	if !rec.Read {
		n.unread++
	}
	return true
}

// MarkRead flips the read flag on a single record. Marking an already-read
// (or unknown) record changes nothing, so the unread count cannot be
// decremented twice for the same record.
func (n *Notifications) MarkRead(id string) bool {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	for i := range n.items {
		if n.items[i].ID != id {
			continue
		}
		if n.items[i].Read {
			return false
		}
		n.items[i].Read = true
		n.decrementUnread()
		return true
	}
	return false
}

func (n *Notifications) MarkAllRead() {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	for i := range n.items {
		n.items[i].Read = true
	}
	n.unread = 0
}

func (n *Notifications) Remove(id string) bool {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	for i := range n.items {
		if n.items[i].ID != id {
			continue
		}
		if !n.items[i].Read {
			n.decrementUnread()
		}
		n.items = append(n.items[:i], n.items[i+1:]...)
		return true
	}
	return false
}

func (n *Notifications) UnreadCount() int {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.unread
}

func (n *Notifications) Reset() error {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.items = nil
	n.lastFetchedAt = time.Time{}
	n.fetching = false
	n.gen++
	n.unread = 0
	return nil
}

func (n *Notifications) decrementUnread() {
	if n.unread > 0 {
		n.unread--
	}
}
