package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pinrail/pinrail-go/utils"
)

func TestSelectionPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selection.db")

	s, err := OpenSelection(path, utils.NewTestLogger())
	require.NoError(t, err)
	require.NoError(t, s.SetWorkspace("ws-1"))
	require.NoError(t, s.Close())

	s, err = OpenSelection(path, utils.NewTestLogger())
	require.NoError(t, err)
	defer s.Close()

	id, ok := s.Workspace()
	require.True(t, ok)
	require.EqualValues(t, "ws-1", id)
}

func TestSelectionEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selection.db")
	s, err := OpenSelection(path, utils.NewTestLogger())
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.Workspace()
	require.False(t, ok)

	require.NoError(t, s.SetWorkspace("ws-1"))
	require.NoError(t, s.SetWorkspace(""))
	_, ok = s.Workspace()
	require.False(t, ok)
}

func TestSelectionReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selection.db")
	s, err := OpenSelection(path, utils.NewTestLogger())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetWorkspace("ws-1"))
	require.NoError(t, s.Reset())

	_, ok := s.Workspace()
	require.False(t, ok, "logout clears persisted state wholesale")

	// the store stays usable for the next session
	require.NoError(t, s.SetWorkspace("ws-2"))
	id, ok := s.Workspace()
	require.True(t, ok)
	require.EqualValues(t, "ws-2", id)
}
