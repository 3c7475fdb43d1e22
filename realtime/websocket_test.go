package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/pinrail/pinrail-go/board"
	"github.com/pinrail/pinrail-go/utils"
)

type pushServer struct {
	t        *testing.T
	upgrader websocket.Upgrader

	mutex sync.Mutex
	conns []*websocket.Conn
	paths []string
}

func (s *pushServer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	require.NoError(s.t, err)
	s.mutex.Lock()
	s.conns = append(s.conns, conn)
	s.paths = append(s.paths, req.URL.Path)
	s.mutex.Unlock()
}

func (s *pushServer) push(frame interface{}) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, conn := range s.conns {
		require.NoError(s.t, conn.WriteJSON(frame))
	}
}

func (s *pushServer) dropAll() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
	s.conns = nil
}

func makeDialerFixture(t *testing.T) (*Dialer, *pushServer) {
	t.Helper()
	ps := &pushServer{t: t}
	server := httptest.NewServer(ps)
	t.Cleanup(server.Close)
	t.Cleanup(ps.dropAll)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	d, err := NewDialer(wsURL, "token", utils.NewTestLogger())
	require.NoError(t, err)
	return d, ps
}

func TestDialerDispatchesByType(t *testing.T) {
	d, ps := makeDialerFixture(t)

	received := make(chan board.Event, 4)
	sub, err := d.Subscribe(context.Background(), "user-1", HandlerMap{
		board.EventNotificationNew: func(event board.Event) {
			received <- event
		},
	})
	require.NoError(t, err)
	defer sub.Close()
	require.True(t, sub.Connected())

	ps.mutex.Lock()
	require.Equal(t, []string{"/realtime/users/user-1"}, ps.paths, "topic derives from the user ID")
	ps.mutex.Unlock()

	ps.push(map[string]string{"type": "notification_created"})
	select {
	case event := <-received:
		require.Equal(t, board.EventNotificationNew, event.Type)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	// a frame with no registered handler is dropped, not an error
	ps.push(map[string]string{"type": "board_starred"})
	// a frame without a type discriminator is ignored
	ps.push(map[string]string{"payload": "{}"})
	ps.push(map[string]string{"type": "notification_created"})
	select {
	case event := <-received:
		require.Equal(t, board.EventNotificationNew, event.Type)
	case <-time.After(time.Second):
		t.Fatal("subsequent event not delivered")
	}
}

func TestDialerConnectedDropsOnServerClose(t *testing.T) {
	d, ps := makeDialerFixture(t)

	sub, err := d.Subscribe(context.Background(), "user-1", HandlerMap{})
	require.NoError(t, err)
	defer sub.Close()
	require.True(t, sub.Connected())

	ps.dropAll()
	require.Eventually(t, func() bool { return !sub.Connected() },
		time.Second, 10*time.Millisecond, "consumers must observe the drop to switch to polling")
}

func TestDialerCloseIsIdempotent(t *testing.T) {
	d, _ := makeDialerFixture(t)

	sub, err := d.Subscribe(context.Background(), "user-1", HandlerMap{})
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
	require.False(t, sub.Connected())
}

func TestDialerSubscribeFailure(t *testing.T) {
	d, err := NewDialer("ws://127.0.0.1:1", "token", utils.NewTestLogger())
	require.NoError(t, err)

	_, err = d.Subscribe(context.Background(), "user-1", HandlerMap{})
	require.Error(t, err)
}
