// Copyright (c) 2023-present Pinrail, Inc. All Rights Reserved.
// See License for license information.

package refresh

import (
	"context"

	"github.com/pinrail/pinrail-go/board"
	"github.com/pinrail/pinrail-go/realtime"
	"github.com/pinrail/pinrail-go/session"
	"github.com/pinrail/pinrail-go/store"
	"github.com/pinrail/pinrail-go/utils"
)

// NotificationAPI is the slice of the resource API the panel needs.
type NotificationAPI interface {
	ListNotifications(ctx context.Context) ([]board.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
}

// Toaster is the user-facing failure sink for optimistic mutations.
type Toaster interface {
	Error(message string)
}

type logToaster struct {
	log utils.Logger
}

func (t logToaster) Error(message string) {
	t.log.Warnf("toast: %s", message)
}

// Panel is the notification panel controller: the reconciliation controller
// for the notification collection plus its derived unread count.
//
// Mark-read and delete are optimistic: the local mutation applies first and
// is NOT rolled back when the remote call fails. The failure is surfaced
// through the Toaster and local state stays diverged until the next full
// refresh overwrites it. That trade-off is deliberate; see DESIGN.md.
type Panel struct {
	*Controller

	store     *store.Notifications
	refresher *Refresher[board.Notification]
	api       NotificationAPI
	toasts    Toaster
	log       utils.Logger
}

func NewPanel(api NotificationAPI, bridge realtime.Bridge, sess *session.Service, toasts Toaster, opts Options, log utils.Logger) *Panel {
	if log == nil {
		log = utils.NilLogger{}
	}
	if toasts == nil {
		toasts = logToaster{log: log}
	}
	p := &Panel{
		api:    api,
		toasts: toasts,
		log:    log,
	}

	p.store = store.MakeNotifications(opts.StaleAfter, log)
	p.refresher = NewRefresher[board.Notification](p.store, api.ListNotifications, sess, opts.Debounce, log)
	p.Controller = NewController("notifications", p.store, p.refresher, bridge,
		[]board.EventType{board.EventNotificationNew},
		opts.PollInterval, log).
		OnEvent(p.onEvent)

	sess.RegisterResetter(p.store)
	return p
}

func (p *Panel) Store() *store.Notifications {
	return p.store
}

func (p *Panel) Notifications() []board.Notification {
	return p.store.Items()
}

func (p *Panel) UnreadCount() int {
	return p.store.UnreadCount()
}

// Open is the user opening the panel: a foreground refresh that overrides the
// cache regardless of staleness.
func (p *Panel) Open(ctx context.Context) {
	p.refresher.ForceRefresh(ctx)
}

// onEvent applies a pushed notification directly at the head of the list.
// Insertion is deduplicated by ID, so at-least-once delivery is harmless. A
// frame whose payload does not decode falls through to the default
// invalidate-and-refresh path.
func (p *Panel) onEvent(_ context.Context, event board.Event) bool {
	var rec board.Notification
	if err := event.DecodePayload(&rec); err != nil || rec.ID == "" {
		p.log.WithError(err).Debugf("notification push without usable payload, refetching instead")
		return false
	}
	if p.store.Add(rec) {
		p.log.Debugf("notification %s pushed, unread now %v", rec.ID, p.store.UnreadCount())
	}
	return true
}

// MarkRead optimistically flips the local read flag, then tells the server.
// No rollback on failure.
func (p *Panel) MarkRead(ctx context.Context, id string) {
	p.store.MarkRead(id)
	if err := p.api.MarkNotificationRead(ctx, id); err != nil {
		p.log.WithError(err).Warnf("failed to mark notification %s read on the server", id)
		p.toasts.Error("Couldn't mark the notification as read. It may reappear unread.")
	}
}

// MarkAllRead optimistically clears the unread count, then tells the server.
// No rollback on failure.
func (p *Panel) MarkAllRead(ctx context.Context) {
	p.store.MarkAllRead()
	if err := p.api.MarkAllNotificationsRead(ctx); err != nil {
		p.log.WithError(err).Warnf("failed to mark all notifications read on the server")
		p.toasts.Error("Couldn't mark notifications as read. They may reappear unread.")
	}
}

// Delete optimistically removes the record, then tells the server. No
// rollback on failure.
func (p *Panel) Delete(ctx context.Context, id string) {
	p.store.Remove(id)
	if err := p.api.DeleteNotification(ctx, id); err != nil {
		p.log.WithError(err).Warnf("failed to delete notification %s on the server", id)
		p.toasts.Error("Couldn't delete the notification. It may reappear.")
	}
}
