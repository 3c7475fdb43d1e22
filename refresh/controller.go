// Copyright (c) 2023-present Pinrail, Inc. All Rights Reserved.
// See License for license information.

package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/pinrail/pinrail-go/board"
	"github.com/pinrail/pinrail-go/realtime"
	"github.com/pinrail/pinrail-go/session"
	"github.com/pinrail/pinrail-go/utils"
)

const (
	// DefaultPollInterval is the fallback poll period. While the realtime
	// channel is healthy the ticker does nothing; when the channel drops it
	// is the only source of eventual consistency.
	DefaultPollInterval = 5 * time.Minute
)

// Gate is the controller's read-only view of its staleness store.
type Gate interface {
	Name() string
	ShouldFetch() bool
	Invalidate()
}

// Triggerable is the controller's view of its Refresher.
type Triggerable interface {
	Refresh(ctx context.Context)
}

// Controller reconciles the refresh triggers for one collection (initial
// load, realtime events, and the fallback poll) into a single
// consistent policy. Lifecycle is an explicit Start/Stop pair driven by
// identity transitions; nothing here is tied to UI mount/unmount.
//
// States: uninitialized, subscribed (after Start), torn down (after Stop).
// Both Start and Stop are idempotent.
type Controller struct {
	name      string
	gate      Gate
	refresher Triggerable
	bridge    realtime.Bridge
	events    []board.EventType
	poll      time.Duration
	log       utils.Logger

	// onEvent, when set, may consume an event instead of the default
	// invalidate-and-refresh path. It returns true when it handled the event.
	onEvent func(ctx context.Context, event board.Event) bool

	mutex   sync.Mutex
	started bool
	sub     realtime.Subscription
	cancel  context.CancelFunc
}

func NewController(name string, gate Gate, refresher Triggerable, bridge realtime.Bridge, events []board.EventType, poll time.Duration, log utils.Logger) *Controller {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	if log == nil {
		log = utils.NilLogger{}
	}
	return &Controller{
		name:      name,
		gate:      gate,
		refresher: refresher,
		bridge:    bridge,
		events:    events,
		poll:      poll,
		log:       log.With("controller", name),
	}
}

// OnEvent overrides the default realtime handling. Used by the notification
// panel, which applies pushed records directly instead of refetching.
func (c *Controller) OnEvent(fn func(ctx context.Context, event board.Event) bool) *Controller {
	c.onEvent = fn
	return c
}

// Bind ties the controller's lifecycle to identity transitions: Start on
// login, Stop on logout. Registration is permanent for the service's
// lifetime.
func (c *Controller) Bind(ctx context.Context, sess *session.Service) {
	sess.Watch(func(userID string) {
		if userID == "" {
			c.Stop()
			return
		}
		c.Stop()
		c.Start(ctx, userID)
	})
}

// Start subscribes to the user's push topic, launches the fallback poll
// ticker, and issues the initial fetch iff the store says so. A re-Start for
// the same warm cache does not refetch. A failed realtime subscribe is
// logged, not fatal: the poll ticker alone still converges.
func (c *Controller) Start(ctx context.Context, userID string) {
	c.mutex.Lock()
	if c.started {
		c.mutex.Unlock()
		return
	}
	c.started = true

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	handlers := realtime.HandlerMap{}
	for _, eventType := range c.events {
		handlers[eventType] = func(event board.Event) {
			c.handleEvent(runCtx, event)
		}
	}

	sub, err := c.bridge.Subscribe(runCtx, userID, handlers)
	if err != nil {
		c.log.WithError(err).Warnf("realtime subscribe failed, relying on fallback polling")
		sub = nil
	}
	c.sub = sub
	c.mutex.Unlock()

	go c.pollLoop(runCtx)

	if c.gate.ShouldFetch() {
		c.refresher.Refresh(runCtx)
	}
	c.log.Debugf("started for user %s", userID)
}

// Stop cancels the poll ticker and detaches the realtime subscription. Safe
// to call any number of times, in any state.
func (c *Controller) Stop() {
	c.mutex.Lock()
	if !c.started {
		c.mutex.Unlock()
		return
	}
	c.started = false
	cancel := c.cancel
	sub := c.sub
	c.cancel = nil
	c.sub = nil
	c.mutex.Unlock()

	if cancel != nil {
		cancel()
	}
	if sub != nil {
		_ = sub.Close()
	}
	c.log.Debugf("stopped")
}

// Connected reports realtime channel health; false whenever the controller is
// stopped or the subscribe failed.
func (c *Controller) Connected() bool {
	c.mutex.Lock()
	sub := c.sub
	c.mutex.Unlock()
	return sub != nil && sub.Connected()
}

func (c *Controller) handleEvent(ctx context.Context, event board.Event) {
	if c.onEvent != nil && c.onEvent(ctx, event) {
		return
	}
	// The push told us remote state changed: mark the cache dirty (items stay
	// visible until overwritten) and refresh. The debounce collapses event
	// bursts; duplicate deliveries of the same event are therefore idempotent.
	c.gate.Invalidate()
	c.refresher.Refresh(ctx)
}

func (c *Controller) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.Connected() {
				// Realtime is authoritative while healthy.
				continue
			}
			c.refresher.Refresh(ctx)
		}
	}
}
