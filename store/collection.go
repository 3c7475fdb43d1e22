// Copyright (c) 2023-present Pinrail, Inc. All Rights Reserved.
// See License for license information.

package store

import (
	"sync"
	"time"

	"github.com/pinrail/pinrail-go/utils"
)

const (
	// DefaultStaleAfter is the staleness threshold for workspace and board
	// collections.
	DefaultStaleAfter = 60 * time.Second
)

// Clock lets tests control time. Production code uses time.Now.
type Clock func() time.Time

// Collection is the staleness-aware cache for a single synchronized
// collection (workspaces, starred boards, recent boards). It owns its items
// exclusively: consumers read through Items, and only the collection's own
// refresher and the session teardown ever write.
//
// A zero lastFetchedAt means "never fetched"; such a collection is always
// stale. The fetching flag is the in-flight guard: it is flipped inside a
// single critical section by TryBeginFetch so concurrent refreshers can never
// both start a network call for the same collection.
//
// The guard is ownership-checked. TryBeginFetch hands out a generation token
// and Reset bumps the generation, so a fetch that was still in flight when the
// session tore down cannot clear or complete the guard a later fetch now owns.
type Collection[T any] struct {
	name       string
	staleAfter time.Duration
	now        Clock
	log        utils.Logger

	mutex         sync.Mutex
	items         []T
	lastFetchedAt time.Time
	fetching      bool
	gen           uint64
}

func MakeCollection[T any](name string, staleAfter time.Duration, log utils.Logger) *Collection[T] {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	if log == nil {
		log = utils.NilLogger{}
	}
	return &Collection[T]{
		name:       name,
		staleAfter: staleAfter,
		now:        time.Now,
		log:        log.With("store", name),
	}
}

// WithClock replaces the time source. Tests only.
func (c *Collection[T]) WithClock(now Clock) *Collection[T] {
	c.now = now
	return c
}

func (c *Collection[T]) Name() string {
	return c.name
}

// Items returns a copy; the cached slice is never handed out.
func (c *Collection[T]) Items() []T {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}

// SetItems replaces the cached items, stamps the fetch time, and clears the
// in-flight guard. An empty slice is a valid, cache-worthy result: it still
// counts as fresh data, distinct from a failed fetch.
func (c *Collection[T]) SetItems(items []T) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items = make([]T, len(items))
	copy(c.items, items)
	c.lastFetchedAt = c.now()
	c.fetching = false
	c.log.Debugf("cached %v items", len(items))
}

// IsStale reports whether the cached data is older than the staleness
// threshold. Never-fetched is always stale. Pure: no side effects.
func (c *Collection[T]) IsStale() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.isStale()
}

func (c *Collection[T]) isStale() bool {
	if c.lastFetchedAt.IsZero() {
		return true
	}
	return c.now().Sub(c.lastFetchedAt) > c.staleAfter
}

// ShouldFetch is the fetch gate: stale and not already in flight.
func (c *Collection[T]) ShouldFetch() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.isStale() && !c.fetching
}

// TryBeginFetch atomically checks the fetch gate and claims the in-flight
// guard. It must be called before the loader's first await point; a caller
// that gets false must not issue a network request. force skips the staleness
// check (user-initiated refresh) but never the in-flight guard.
//
// The returned generation token identifies the claim. EndFetch and
// CompleteFetch require it: after a Reset the token goes stale and both turn
// into no-ops, so a fetch that outlived the session cannot touch the guard.
func (c *Collection[T]) TryBeginFetch(force bool) (uint64, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.fetching {
		return 0, false
	}
	if !force && !c.isStale() {
		return 0, false
	}
	c.fetching = true
	return c.gen, true
}

// EndFetch clears the in-flight guard without touching lastFetchedAt. This is
// the failure path: a failed fetch must not wedge the collection as "in
// flight", and must not masquerade as fresh data either. A stale generation
// token is ignored; the guard then belongs to a later fetch.
func (c *Collection[T]) EndFetch(gen uint64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if gen != c.gen {
		return
	}
	c.fetching = false
}

// CompleteFetch is the write-back path for a claimed fetch: items, freshness
// stamp, and the guard clear in one critical section, refused wholesale when
// the generation token went stale. Reports whether the result was written.
func (c *Collection[T]) CompleteFetch(gen uint64, items []T) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if gen != c.gen {
		return false
	}
	c.items = make([]T, len(items))
	copy(c.items, items)
	c.lastFetchedAt = c.now()
	c.fetching = false
	c.log.Debugf("cached %v items", len(items))
	return true
}

// Invalidate marks the collection known-dirty without clearing items: a push
// event told us remote state changed, but the stale items remain visible
// until the next fetch overwrites them.
func (c *Collection[T]) Invalidate() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.lastFetchedAt = time.Time{}
}

// Reset returns the collection to its initial empty state. Called on session
// teardown; leaving anything behind here is a cross-user data leak. The
// generation bump orphans any fetch still in flight: its token no longer
// matches, so it can neither clear nor complete the guard from here on.
func (c *Collection[T]) Reset() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items = nil
	c.lastFetchedAt = time.Time{}
	c.fetching = false
	c.gen++
	return nil
}

// LastFetchedAt returns the stamp of the last successful fetch, and false if
// the collection has never been fetched.
func (c *Collection[T]) LastFetchedAt() (time.Time, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.lastFetchedAt, !c.lastFetchedAt.IsZero()
}
