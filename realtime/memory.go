// Copyright (c) 2023-present Pinrail, Inc. All Rights Reserved.
// See License for license information.

package realtime

import (
	"context"
	"sync"

	"github.com/pinrail/pinrail-go/board"
)

// MemoryBridge is an in-process Bridge. Tests use it to inject events and to
// flip connection health; the CLI uses it when run without a realtime URL.
type MemoryBridge struct {
	mutex        sync.Mutex
	disconnected bool
	subs         map[*memorySubscription]string
}

var _ Bridge = (*MemoryBridge)(nil)

func NewMemoryBridge() *MemoryBridge {
	return &MemoryBridge{
		subs: map[*memorySubscription]string{},
	}
}

func (b *MemoryBridge) Subscribe(_ context.Context, userID string, handlers HandlerMap) (Subscription, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	sub := &memorySubscription{bridge: b, handlers: handlers}
	b.subs[sub] = userID
	return sub, nil
}

// Deliver pushes an event to every handler subscribed to userID's topic, at
// most once per subscription. Delivering while "disconnected" still works;
// the real transport gives no better guarantee either way.
func (b *MemoryBridge) Deliver(userID string, event board.Event) {
	b.mutex.Lock()
	var targets []Handler
	for sub, id := range b.subs {
		if id != userID {
			continue
		}
		if h, ok := sub.handlers[event.Type]; ok {
			targets = append(targets, h)
		}
	}
	b.mutex.Unlock()

	for _, h := range targets {
		h(event)
	}
}

// SetConnected flips the health flag observed by every subscription.
func (b *MemoryBridge) SetConnected(connected bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.disconnected = !connected
}

// SubscriptionCount reports live (not closed) subscriptions.
func (b *MemoryBridge) SubscriptionCount() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.subs)
}

type memorySubscription struct {
	bridge   *MemoryBridge
	handlers HandlerMap
	once     sync.Once
}

var _ Subscription = (*memorySubscription)(nil)

func (s *memorySubscription) Connected() bool {
	s.bridge.mutex.Lock()
	defer s.bridge.mutex.Unlock()
	_, live := s.bridge.subs[s]
	return live && !s.bridge.disconnected
}

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		s.bridge.mutex.Lock()
		delete(s.bridge.subs, s)
		s.bridge.mutex.Unlock()
	})
	return nil
}
