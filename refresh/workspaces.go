// Copyright (c) 2023-present Pinrail, Inc. All Rights Reserved.
// See License for license information.

package refresh

import (
	"context"
	"time"

	"github.com/pinrail/pinrail-go/board"
	"github.com/pinrail/pinrail-go/realtime"
	"github.com/pinrail/pinrail-go/session"
	"github.com/pinrail/pinrail-go/store"
	"github.com/pinrail/pinrail-go/utils"
)

// Options are the per-collection sync knobs. Zero values fall back to the
// observed defaults: 60s staleness, 2s debounce, 5m fallback poll.
type Options struct {
	StaleAfter   time.Duration
	Debounce     time.Duration
	PollInterval time.Duration
}

// WorkspaceLister is the slice of the resource API the workspace subscription
// needs.
type WorkspaceLister interface {
	ListWorkspaces(ctx context.Context) ([]board.Workspace, error)
}

// Workspaces is the global workspace subscription: the reconciliation
// controller for the workspace collection, plus selection reconciliation.
// After a refresh, a selected workspace that is no longer in the collection
// falls back to the first workspace, or to no selection when the collection
// is empty, so the UI never points at an entity the user was removed from.
type Workspaces struct {
	*Controller

	store     *store.Collection[board.Workspace]
	refresher *Refresher[board.Workspace]
	selection *store.Selection
	log       utils.Logger
}

func NewWorkspaces(api WorkspaceLister, bridge realtime.Bridge, sess *session.Service, selection *store.Selection, opts Options, log utils.Logger) *Workspaces {
	if log == nil {
		log = utils.NilLogger{}
	}
	w := &Workspaces{
		selection: selection,
		log:       log,
	}

	w.store = store.MakeCollection[board.Workspace]("workspaces", opts.StaleAfter, log)
	w.refresher = NewRefresher[board.Workspace](w.store, api.ListWorkspaces, sess, opts.Debounce, log).
		OnItems(w.reconcileSelection)
	w.Controller = NewController("workspaces", w.store, w.refresher, bridge,
		[]board.EventType{
			board.EventMemberAssigned,
			board.EventMemberUnassigned,
			board.EventPermissionsChanged,
		},
		opts.PollInterval, log)

	sess.RegisterResetter(w.store)
	if selection != nil {
		sess.RegisterResetter(selection)
	}
	return w
}

func (w *Workspaces) Store() *store.Collection[board.Workspace] {
	return w.store
}

func (w *Workspaces) Workspaces() []board.Workspace {
	return w.store.Items()
}

// Selected returns the persisted selection pointer.
func (w *Workspaces) Selected() (board.WorkspaceID, bool) {
	if w.selection == nil {
		return "", false
	}
	return w.selection.Workspace()
}

// Select persists a user-chosen workspace.
func (w *Workspaces) Select(id board.WorkspaceID) error {
	if w.selection == nil {
		return nil
	}
	return w.selection.SetWorkspace(id)
}

func (w *Workspaces) reconcileSelection(items []board.Workspace) {
	if w.selection == nil {
		return
	}
	current, _ := w.selection.Workspace()
	for _, ws := range items {
		if ws.ID == current {
			return
		}
	}

	fallback := board.WorkspaceID("")
	if len(items) > 0 {
		fallback = items[0].ID
	}
	if err := w.selection.SetWorkspace(fallback); err != nil {
		w.log.WithError(err).Warnf("failed to persist workspace selection fallback")
		return
	}
	if current != "" {
		w.log.Debugf("selected workspace %s is gone, falling back to %q", current, fallback)
	}
}
