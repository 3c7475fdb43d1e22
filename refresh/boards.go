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

// BoardLister is the slice of the resource API the board collections need.
type BoardLister interface {
	ListStarredBoards(ctx context.Context) ([]board.Board, error)
	ListRecentBoards(ctx context.Context) ([]board.Board, error)
}

// Boards keeps the starred and recent board collections synchronized. Each
// collection has its own controller: starring is pushed in realtime, recency
// only moves on this client's own navigation, so the recent collection rides
// on staleness alone.
type Boards struct {
	starred *store.Collection[board.Board]
	recent  *store.Collection[board.Board]

	starredCtrl *Controller
	recentCtrl  *Controller
}

func NewBoards(api BoardLister, bridge realtime.Bridge, sess *session.Service, opts Options, log utils.Logger) *Boards {
	if log == nil {
		log = utils.NilLogger{}
	}
	b := &Boards{}

	b.starred = store.MakeCollection[board.Board]("starred_boards", opts.StaleAfter, log)
	starredRefresher := NewRefresher[board.Board](b.starred, api.ListStarredBoards, sess, opts.Debounce, log)
	b.starredCtrl = NewController("starred_boards", b.starred, starredRefresher, bridge,
		[]board.EventType{
			board.EventBoardStarred,
			board.EventBoardUnstarred,
		},
		opts.PollInterval, log)

	b.recent = store.MakeCollection[board.Board]("recent_boards", opts.StaleAfter, log)
	recentRefresher := NewRefresher[board.Board](b.recent, api.ListRecentBoards, sess, opts.Debounce, log)
	b.recentCtrl = NewController("recent_boards", b.recent, recentRefresher, bridge, nil, opts.PollInterval, log)

	sess.RegisterResetter(b.starred, b.recent)
	return b
}

func (b *Boards) Bind(ctx context.Context, sess *session.Service) {
	b.starredCtrl.Bind(ctx, sess)
	b.recentCtrl.Bind(ctx, sess)
}

func (b *Boards) Stop() {
	b.starredCtrl.Stop()
	b.recentCtrl.Stop()
}

func (b *Boards) Starred() []board.Board {
	return b.starred.Items()
}

func (b *Boards) Recent() []board.Board {
	return b.recent.Items()
}

func (b *Boards) StarredStore() *store.Collection[board.Board] {
	return b.starred
}

func (b *Boards) RecentStore() *store.Collection[board.Board] {
	return b.recent
}
