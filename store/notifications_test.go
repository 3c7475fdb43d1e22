package store

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/pinrail/pinrail-go/board"
	"github.com/pinrail/pinrail-go/utils"
)

func notification(id string, read bool) board.Notification {
	return board.Notification{
		ID:        id,
		Message:   "message " + id,
		Read:      read,
		CreatedAt: time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNotificationsSetItemsRecomputesUnread(t *testing.T) {
	n := MakeNotifications(60*time.Second, utils.NewTestLogger())
	n.SetItems([]board.Notification{
		notification("1", false),
		notification("2", true),
		notification("3", false),
	})
	require.Equal(t, 2, n.UnreadCount())
	require.False(t, n.IsStale())
}

func TestNotificationsCompleteFetchRecomputesUnread(t *testing.T) {
	n := MakeNotifications(60*time.Second, utils.NewTestLogger())
	gen, ok := n.TryBeginFetch(false)
	require.True(t, ok)
	require.True(t, n.CompleteFetch(gen, []board.Notification{
		notification("1", false),
		notification("2", true),
	}))
	require.Equal(t, 1, n.UnreadCount())
	require.False(t, n.IsStale())

	// a token from before a reset writes nothing back
	gen, ok = n.TryBeginFetch(true)
	require.True(t, ok)
	require.NoError(t, n.Reset())
	require.False(t, n.CompleteFetch(gen, []board.Notification{notification("3", false)}))
	require.Empty(t, n.Items())
	require.Equal(t, 0, n.UnreadCount())
}

func TestNotificationsAddDeduplicatesByID(t *testing.T) {
	n := MakeNotifications(60*time.Second, utils.NewTestLogger())
	n.SetItems([]board.Notification{notification("1", true)})

	require.True(t, n.Add(notification("2", false)))
	require.Equal(t, 1, n.UnreadCount())

	// at-least-once delivery: the duplicate is a no-op, not a second entry
	require.False(t, n.Add(notification("2", false)))
	require.Equal(t, 1, n.UnreadCount())

	items := n.Items()
	require.Len(t, items, 2)
	require.Equal(t, "2", items[0].ID, "pushed records insert at the head")
}

func TestNotificationsMarkRead(t *testing.T) {
	n := MakeNotifications(60*time.Second, utils.NewTestLogger())
	n.SetItems([]board.Notification{
		notification("1", false),
		notification("2", false),
	})

	require.True(t, n.MarkRead("1"))
	require.Equal(t, 1, n.UnreadCount())

	// two rapid mark-read calls for the same record: count never double
	// decrements
	require.False(t, n.MarkRead("1"))
	require.Equal(t, 1, n.UnreadCount())

	require.False(t, n.MarkRead("missing"))
	require.Equal(t, 1, n.UnreadCount())
}

func TestNotificationsUnreadNeverNegative(t *testing.T) {
	n := MakeNotifications(60*time.Second, utils.NewTestLogger())
	n.SetItems([]board.Notification{notification("1", true)})
	require.Equal(t, 0, n.UnreadCount())

	n.MarkRead("1")
	n.MarkRead("1")
	require.Equal(t, 0, n.UnreadCount())

	n.MarkAllRead()
	require.Equal(t, 0, n.UnreadCount())
}

func TestNotificationsRemove(t *testing.T) {
	n := MakeNotifications(60*time.Second, utils.NewTestLogger())
	n.SetItems([]board.Notification{
		notification("1", false),
		notification("2", true),
	})

	require.True(t, n.Remove("1"))
	require.Equal(t, 0, n.UnreadCount())
	require.False(t, n.Remove("1"))

	expected := []board.Notification{notification("2", true)}
	require.Empty(t, cmp.Diff(expected, n.Items()))
}

func TestNotificationsMarkAllRead(t *testing.T) {
	n := MakeNotifications(60*time.Second, utils.NewTestLogger())
	n.SetItems([]board.Notification{
		notification("1", false),
		notification("2", false),
	})

	n.MarkAllRead()
	require.Equal(t, 0, n.UnreadCount())
	for _, rec := range n.Items() {
		require.True(t, rec.Read)
	}
}

func TestNotificationsReset(t *testing.T) {
	n := MakeNotifications(60*time.Second, utils.NewTestLogger())
	n.SetItems([]board.Notification{notification("1", false)})
	require.Equal(t, 1, n.UnreadCount())

	require.NoError(t, n.Reset())
	require.Empty(t, n.Items())
	require.Equal(t, 0, n.UnreadCount())
	require.True(t, n.ShouldFetch())
}
