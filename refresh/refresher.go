// Copyright (c) 2023-present Pinrail, Inc. All Rights Reserved.
// See License for license information.

package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/pinrail/pinrail-go/store"
	"github.com/pinrail/pinrail-go/utils"
)

const (
	// DefaultDebounce is the minimum interval between refresh attempts for
	// the same collection. It is a separate, shorter-lived guard than the
	// staleness threshold: its job is to collapse bursts of near-simultaneous
	// triggers (a push event landing while a poll is mid-flight) into one
	// network call.
	DefaultDebounce = 2 * time.Second
)

// EpochSource is the identity epoch; see session.Service.
type EpochSource interface {
	Epoch() uint64
}

// Loader fetches the full collection from the resource API.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Target is the staleness store a Refresher writes back into. Both
// store.Collection and store.Notifications satisfy it. The generation token
// from TryBeginFetch scopes the other two calls to this fetch's claim: after
// a store Reset both become no-ops.
type Target[T any] interface {
	Name() string
	TryBeginFetch(force bool) (uint64, bool)
	EndFetch(gen uint64)
	CompleteFetch(gen uint64, items []T) bool
}

// Refresher is the fetch coordinator for one collection. It serializes
// refresh triggers from any source (initial load, push event, poll tick)
// through a debounce window and the store's in-flight gate, and discards
// results whose identity epoch no longer matches.
//
// Failures never escape a Refresher: a failed background refresh is logged
// and leaves the cache last-known-good, to be retried by the next trigger.
type Refresher[T any] struct {
	target Target[T]
	load   Loader[T]
	epochs EpochSource
	window time.Duration
	now    store.Clock
	log    utils.Logger

	// onItems runs after a successful write-back, outside any store lock.
	onItems func(items []T)

	mutex       sync.Mutex
	lastAttempt time.Time
	lastEpoch   uint64
}

func NewRefresher[T any](target Target[T], load Loader[T], epochs EpochSource, window time.Duration, log utils.Logger) *Refresher[T] {
	if window <= 0 {
		window = DefaultDebounce
	}
	if log == nil {
		log = utils.NilLogger{}
	}
	return &Refresher[T]{
		target: target,
		load:   load,
		epochs: epochs,
		window: window,
		now:    time.Now,
		log:    log.With("store", target.Name()),
	}
}

// WithClock replaces the time source. Tests only.
func (r *Refresher[T]) WithClock(now store.Clock) *Refresher[T] {
	r.now = now
	return r
}

// OnItems registers the post-refresh hook (selection reconciliation).
func (r *Refresher[T]) OnItems(fn func(items []T)) *Refresher[T] {
	r.onItems = fn
	return r
}

// Refresh is the background path: debounced, gated on staleness and the
// in-flight flag.
func (r *Refresher[T]) Refresh(ctx context.Context) {
	r.refresh(ctx, false)
}

// ForceRefresh is the foreground path: user-initiated intent overrides the
// debounce and the staleness check, but never the in-flight guard.
func (r *Refresher[T]) ForceRefresh(ctx context.Context) {
	r.refresh(ctx, true)
}

func (r *Refresher[T]) refresh(ctx context.Context, force bool) {
	now := r.now()
	var epoch uint64
	if r.epochs != nil {
		epoch = r.epochs.Epoch()
	}

	r.mutex.Lock()
	// The debounce window is scoped to one identity: an attempt made under a
	// previous epoch must not suppress the new session's first fetch.
	if !force && epoch == r.lastEpoch &&
		!r.lastAttempt.IsZero() && now.Sub(r.lastAttempt) < r.window {
		r.mutex.Unlock()
		return
	}
	// Claim the in-flight gate before the loader's first await point, inside
	// the same critical section as the debounce check. Losing the claim means
	// another caller's fetch is underway or the cache is fresh; either way
	// this trigger is done.
	gen, ok := r.target.TryBeginFetch(force)
	if !ok {
		r.mutex.Unlock()
		return
	}
	r.lastAttempt = now
	r.lastEpoch = epoch
	r.mutex.Unlock()

	items, err := r.load(ctx)
	if err != nil {
		// Clear the gate without stamping freshness: the collection stays
		// stale and the next trigger retries. The generation token keeps this
		// from clearing a guard a post-teardown fetch now owns.
		r.target.EndFetch(gen)
		r.log.WithError(err).Debugf("refresh failed, keeping last-known-good cache")
		return
	}

	if r.epochs != nil && r.epochs.Epoch() != epoch {
		// The session changed while the request was in flight. Writing the
		// result would resurrect data for a torn-down identity.
		r.target.EndFetch(gen)
		r.log.Debugf("discarded refresh result from a stale identity epoch")
		return
	}

	if !r.target.CompleteFetch(gen, items) {
		// The store was reset between the epoch re-check and the write-back.
		r.log.Debugf("discarded refresh result for a reset collection")
		return
	}
	if r.onItems != nil {
		r.onItems(items)
	}
}
