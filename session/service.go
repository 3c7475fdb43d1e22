// Copyright (c) 2023-present Pinrail, Inc. All Rights Reserved.
// See License for license information.

package session

import (
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"

	"github.com/pinrail/pinrail-go/utils"
)

// Resetter is anything holding per-session state: every staleness store and
// the durable selection store implement it.
type Resetter interface {
	Reset() error
}

// Service owns the authenticated-identity state the whole sync layer keys off:
// the current user ID and the identity epoch.
//
// The epoch is bumped on every identity change. Async operations capture it
// before their first await point and re-check it before writing results, which
// is how a response arriving after logout gets discarded instead of
// resurrecting data for a dead session.
//
// Teardown is synchronous and runs before the new identity is visible: stale
// cached data surviving across users is a data-leakage bug, not a performance
// detail.
type Service struct {
	log utils.Logger

	epoch atomic.Uint64

	mutex     sync.Mutex
	userID    string
	resetters []Resetter
	watchers  []func(userID string)
}

func NewService(log utils.Logger) *Service {
	if log == nil {
		log = utils.NilLogger{}
	}
	return &Service{log: log}
}

// RegisterResetter adds stores to the teardown chain. Registration order is
// preserved; all resetters run even when some fail.
func (s *Service) RegisterResetter(rr ...Resetter) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.resetters = append(s.resetters, rr...)
}

// Watch registers a callback invoked synchronously after every identity
// transition, with the new user ID ("" for logged out). Controllers use it to
// start and stop themselves.
func (s *Service) Watch(fn func(userID string)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.watchers = append(s.watchers, fn)
}

// UserID returns the current authenticated identity, or "" when logged out.
func (s *Service) UserID() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.userID
}

// Epoch returns the current identity epoch.
func (s *Service) Epoch() uint64 {
	return s.epoch.Load()
}

// Login transitions to userID. Logging in as the already-current user is a
// no-op; switching users tears the previous session down first, so the new
// session's first fetch never sees the old one's data.
func (s *Service) Login(userID string) error {
	s.mutex.Lock()
	if userID == "" {
		s.mutex.Unlock()
		return utils.NewInvalidError("login requires a user ID")
	}
	if userID == s.userID {
		s.mutex.Unlock()
		return nil
	}

	err := s.teardownLocked()
	s.userID = userID
	watchers := append([]func(string){}, s.watchers...)
	s.mutex.Unlock()

	s.log.Debugf("session: logged in as %s (epoch %v)", userID, s.Epoch())
	for _, fn := range watchers {
		fn(userID)
	}
	return err
}

// Logout transitions to logged-out and purges every registered store.
// Idempotent: logging out while logged out changes nothing.
func (s *Service) Logout() error {
	s.mutex.Lock()
	if s.userID == "" {
		s.mutex.Unlock()
		return nil
	}

	prev := s.userID
	err := s.teardownLocked()
	s.userID = ""
	watchers := append([]func(string){}, s.watchers...)
	s.mutex.Unlock()

	s.log.Debugf("session: logged out %s (epoch %v)", prev, s.Epoch())
	for _, fn := range watchers {
		fn("")
	}
	return err
}

// teardownLocked bumps the epoch and resets every registered store. The epoch
// bump comes first: any in-flight fetch that completes from here on fails its
// epoch check and discards its result.
func (s *Service) teardownLocked() error {
	s.epoch.Add(1)

	var result *multierror.Error
	for _, r := range s.resetters {
		if err := r.Reset(); err != nil {
			result = multierror.Append(result, err)
			s.log.WithError(err).Errorf("session: store reset failed during teardown")
		}
	}
	return result.ErrorOrNil()
}
