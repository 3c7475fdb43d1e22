package session

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/pinrail/pinrail-go/utils"
)

type fakeResetter struct {
	resets int
	err    error
}

func (f *fakeResetter) Reset() error {
	f.resets++
	return f.err
}

func TestServiceLoginLogout(t *testing.T) {
	s := NewService(utils.NewTestLogger())
	require.Equal(t, "", s.UserID())

	require.NoError(t, s.Login("user-1"))
	require.Equal(t, "user-1", s.UserID())

	require.NoError(t, s.Logout())
	require.Equal(t, "", s.UserID())
}

func TestServiceLoginValidation(t *testing.T) {
	s := NewService(utils.NewTestLogger())
	err := s.Login("")
	require.Error(t, err)
	require.ErrorIs(t, errors.Cause(err), utils.ErrInvalid)
}

func TestServiceEpochBumpsOnEveryTransition(t *testing.T) {
	s := NewService(utils.NewTestLogger())
	start := s.Epoch()

	require.NoError(t, s.Login("user-1"))
	require.Equal(t, start+1, s.Epoch())

	// same user again: no transition, no bump
	require.NoError(t, s.Login("user-1"))
	require.Equal(t, start+1, s.Epoch())

	require.NoError(t, s.Logout())
	require.Equal(t, start+2, s.Epoch())

	// logout while logged out: no transition
	require.NoError(t, s.Logout())
	require.Equal(t, start+2, s.Epoch())

	// switching users directly is one transition
	require.NoError(t, s.Login("user-2"))
	require.NoError(t, s.Login("user-3"))
	require.Equal(t, start+4, s.Epoch())
}

func TestServiceTeardownResetsEveryStore(t *testing.T) {
	s := NewService(utils.NewTestLogger())
	first := &fakeResetter{}
	second := &fakeResetter{}
	s.RegisterResetter(first, second)

	require.NoError(t, s.Login("user-1"))
	require.Equal(t, 1, first.resets)
	require.Equal(t, 1, second.resets)

	require.NoError(t, s.Logout())
	require.Equal(t, 2, first.resets)
	require.Equal(t, 2, second.resets)
}

func TestServiceTeardownRunsAllResettersDespiteFailures(t *testing.T) {
	s := NewService(utils.NewTestLogger())
	failing := &fakeResetter{err: errors.New("disk gone")}
	healthy := &fakeResetter{}
	s.RegisterResetter(failing, healthy)

	require.NoError(t, s.Login("user-1"))
	err := s.Logout()
	require.Error(t, err)
	require.Equal(t, 2, healthy.resets, "one failing store must not skip the others")
	require.Equal(t, "", s.UserID(), "the identity transition happens regardless")
}

func TestServiceWatchers(t *testing.T) {
	s := NewService(utils.NewTestLogger())
	var seen []string
	s.Watch(func(userID string) {
		seen = append(seen, userID)
	})

	require.NoError(t, s.Login("user-1"))
	require.NoError(t, s.Login("user-1")) // no transition
	require.NoError(t, s.Logout())
	require.NoError(t, s.Login("user-2"))

	require.Equal(t, []string{"user-1", "", "user-2"}, seen)
}

func TestServiceUserSwitchTearsDownFirst(t *testing.T) {
	s := NewService(utils.NewTestLogger())
	r := &fakeResetter{}
	s.RegisterResetter(r)

	require.NoError(t, s.Login("user-1"))
	require.NoError(t, s.Login("user-2"))
	require.Equal(t, 2, r.resets, "login as a different user purges the previous session")
	require.Equal(t, "user-2", s.UserID())
}
