package main

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"

	"github.com/pinrail/pinrail-go/client"
	"github.com/pinrail/pinrail-go/config"
	"github.com/pinrail/pinrail-go/realtime"
	"github.com/pinrail/pinrail-go/refresh"
	"github.com/pinrail/pinrail-go/session"
	"github.com/pinrail/pinrail-go/store"
	"github.com/pinrail/pinrail-go/utils"
)

// stack is the fully wired sync layer, as a UI embedding this module would
// assemble it.
type stack struct {
	conf       config.Config
	sess       *session.Service
	selection  *store.Selection
	workspaces *refresh.Workspaces
	boards     *refresh.Boards
	panel      *refresh.Panel
}

type cliToaster struct{}

func (cliToaster) Error(message string) {
	log.Warn(message)
}

func makeStack(ctx context.Context) (*stack, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if conf.Token == "" {
		return nil, errors.New("no API token. Set PINRAIL_TOKEN or the token config field")
	}

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	zlog := utils.MustMakeCommandLogger(level)

	rc, err := client.New(conf.APIURL, conf.Token, zlog)
	if err != nil {
		return nil, err
	}

	var bridge realtime.Bridge
	if conf.RealtimeURL != "" {
		bridge, err = realtime.NewDialer(conf.RealtimeURL, conf.Token, zlog)
		if err != nil {
			return nil, err
		}
	} else {
		log.Debug("no realtime URL configured, converging on polling alone")
		bridge = realtime.NewMemoryBridge()
	}

	var selection *store.Selection
	if conf.SelectionPath != "" {
		selection, err = store.OpenSelection(conf.SelectionPath, zlog)
		if err != nil {
			return nil, err
		}
	}

	sess := session.NewService(zlog)
	opts := conf.RefreshOptions()

	s := &stack{
		conf:       conf,
		sess:       sess,
		selection:  selection,
		workspaces: refresh.NewWorkspaces(rc, bridge, sess, selection, opts, zlog),
		boards:     refresh.NewBoards(rc, bridge, sess, opts, zlog),
		panel:      refresh.NewPanel(rc, bridge, sess, cliToaster{}, opts, zlog),
	}

	// Controllers start on login and stop on logout.
	s.workspaces.Bind(ctx, sess)
	s.boards.Bind(ctx, sess)
	s.panel.Bind(ctx, sess)

	userID, err := session.UserIDFromToken(conf.Token)
	if err != nil {
		return nil, err
	}
	if err = sess.Login(userID); err != nil {
		return nil, errors.Wrap(err, "failed to start the session")
	}
	return s, nil
}

func (s *stack) close() {
	if err := s.sess.Logout(); err != nil {
		log.WithError(err).Warn("session teardown reported errors")
	}
	if s.selection != nil {
		_ = s.selection.Close()
	}
}
