// Copyright (c) 2023-present Pinrail, Inc. All Rights Reserved.
// See License for license information.

package board

import (
	"time"
)

// WorkspaceID and BoardID are opaque identifiers assigned by the content API.
type WorkspaceID string
type BoardID string

// Workspace is a top-level container of boards the user is a member of.
//
// Workspace should be abbreviated as `ws`.
type Workspace struct {
	ID        WorkspaceID `json:"id"`
	Name      string      `json:"name"`
	Role      string      `json:"role,omitempty"`
	UpdatedAt time.Time   `json:"updated_at,omitempty"`
}

type Board struct {
	ID          BoardID     `json:"id"`
	WorkspaceID WorkspaceID `json:"workspace_id"`
	Name        string      `json:"name"`
	Starred     bool        `json:"starred,omitempty"`
	OpenedAt    time.Time   `json:"opened_at,omitempty"`
}

type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type,omitempty"`
	Message   string    `json:"message,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
