// Copyright (c) 2023-present Pinrail, Inc. All Rights Reserved.
// See License for license information.

package board

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// EventType is the discriminator on realtime push frames. The transport makes
// no promises beyond it: delivery is at-least-once and unordered, so handlers
// must be idempotent.
type EventType string

const (
	EventMemberAssigned     EventType = "member_assigned"
	EventMemberUnassigned   EventType = "member_unassigned"
	EventPermissionsChanged EventType = "permissions_changed"
	EventNotificationNew    EventType = "notification_created"
	EventBoardStarred       EventType = "board_starred"
	EventBoardUnstarred     EventType = "board_unstarred"
)

type Event struct {
	Type EventType `json:"type"`

	// Payload is the raw document carried by the frame, if any. Consumers
	// decode it with DecodePayload; no schema validation happens before that.
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (e Event) Validate() error {
	if e.Type == "" {
		return errors.New("event type must not be empty")
	}
	return nil
}

func (e Event) String() string {
	return string(e.Type)
}

func (e Event) DecodePayload(v interface{}) error {
	if len(e.Payload) == 0 {
		return errors.Errorf("event %s carries no payload", e.Type)
	}
	return errors.Wrapf(json.Unmarshal(e.Payload, v), "failed to decode %s payload", e.Type)
}
