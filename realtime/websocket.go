// Copyright (c) 2023-present Pinrail, Inc. All Rights Reserved.
// See License for license information.

package realtime

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/pinrail/pinrail-go/board"
	"github.com/pinrail/pinrail-go/utils"
)

// Dialer is the websocket Bridge. Each Subscribe dials the per-user topic and
// runs a read loop that decodes JSON frames and dispatches them by type.
type Dialer struct {
	baseURL *url.URL
	token   string
	log     utils.Logger
}

var _ Bridge = (*Dialer)(nil)

func NewDialer(baseURL, token string, log utils.Logger) (*Dialer, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid realtime URL %q", baseURL)
	}
	if log == nil {
		log = utils.NilLogger{}
	}
	return &Dialer{
		baseURL: u,
		token:   token,
		log:     log,
	}, nil
}

func (d *Dialer) Subscribe(ctx context.Context, userID string, handlers HandlerMap) (Subscription, error) {
	u := *d.baseURL
	u.Path = path.Join(u.Path, "realtime", "users", userID)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+d.token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, errors.Wrapf(err, "failed to subscribe to %s (status %v)", u.String(), resp.StatusCode)
		}
		return nil, errors.Wrapf(err, "failed to subscribe to %s", u.String())
	}

	sub := &wsSubscription{
		conn:     conn,
		handlers: handlers,
		log:      d.log.With("topic", userID),
	}
	sub.connected.Store(true)
	go sub.readLoop()
	return sub, nil
}

type wsSubscription struct {
	conn      *websocket.Conn
	handlers  HandlerMap
	log       utils.Logger
	connected atomic.Bool
	closeOnce sync.Once
	closed    atomic.Bool
}

var _ Subscription = (*wsSubscription)(nil)

func (s *wsSubscription) Connected() bool {
	return s.connected.Load()
}

func (s *wsSubscription) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.connected.Store(false)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = s.conn.Close()
	})
	return nil
}

func (s *wsSubscription) readLoop() {
	for {
		var event board.Event
		if err := s.conn.ReadJSON(&event); err != nil {
			// The connected flag is the consumers' cue to fall back to
			// interval polling.
			s.connected.Store(false)
			if !s.closed.Load() {
				s.log.WithError(err).Debugf("realtime channel dropped")
			}
			return
		}
		if err := event.Validate(); err != nil {
			s.log.WithError(err).Debugf("ignored malformed realtime frame")
			continue
		}
		if h, ok := s.handlers[event.Type]; ok {
			h(event)
		}
	}
}
