// Copyright (c) 2023-present Pinrail, Inc. All Rights Reserved.
// See License for license information.

package store

import (
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/pinrail/pinrail-go/board"
	"github.com/pinrail/pinrail-go/utils"
)

var selectionBucket = []byte("selection")
var workspaceKey = []byte("workspace")

// Selection is the durable local store. It persists only the
// currently-selected workspace pointer, never full collections, and is
// cleared wholesale on logout.
type Selection struct {
	db  *bolt.DB
	log utils.Logger
}

func OpenSelection(path string, log utils.Logger) (*Selection, error) {
	if log == nil {
		log = utils.NilLogger{}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open selection store %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(selectionBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create selection bucket")
	}
	return &Selection{db: db, log: log}, nil
}

func (s *Selection) Workspace() (board.WorkspaceID, bool) {
	var id board.WorkspaceID
	_ = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(selectionBucket).Get(workspaceKey)
		id = board.WorkspaceID(v)
		return nil
	})
	return id, id != ""
}

func (s *Selection) SetWorkspace(id board.WorkspaceID) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(selectionBucket)
		if id == "" {
			return b.Delete(workspaceKey)
		}
		return b.Put(workspaceKey, []byte(id))
	})
	return errors.Wrap(err, "failed to persist workspace selection")
}

// Reset deletes everything persisted. Part of the session teardown chain.
func (s *Selection) Reset() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(selectionBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(selectionBucket)
		return err
	})
	return errors.Wrap(err, "failed to clear selection store")
}

func (s *Selection) Close() error {
	return s.db.Close()
}
