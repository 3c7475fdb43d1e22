// Copyright (c) 2023-present Pinrail, Inc. All Rights Reserved.
// See License for license information.

package realtime

import (
	"context"

	"github.com/pinrail/pinrail-go/board"
)

// Handler receives one pushed event. Delivery is at-least-once and unordered,
// so handlers must tolerate duplicates and reordering.
type Handler func(event board.Event)

// HandlerMap routes events by type discriminator. Events with no registered
// handler are dropped.
type HandlerMap map[board.EventType]Handler

// Subscription is one live attachment to a user's push topic.
type Subscription interface {
	// Connected reports the channel's health, continuously: consumers watch
	// it to switch to interval polling when the channel drops mid-session.
	Connected() bool

	// Close detaches the subscription. Idempotent: closing twice is a no-op.
	Close() error
}

// Bridge abstracts the server-push transport. The topic is derived from the
// authenticated user's ID; the protocol underneath is deliberately opaque.
type Bridge interface {
	Subscribe(ctx context.Context, userID string, handlers HandlerMap) (Subscription, error)
}
