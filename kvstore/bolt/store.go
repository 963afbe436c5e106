// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package bolt implements kvstore.Store on a single bbolt database file.
package bolt

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/sketcd/errors"
	"github.com/tochemey/sketcd/kvstore"
)

var bucketName = []byte("sketcd")

// Store is a bbolt-backed kvstore.Store. All keys live in a single bucket.
type Store struct {
	db     *bbolt.DB
	closed *atomic.Bool
}

var _ kvstore.Store = (*Store)(nil)

// NewStore opens, or creates, the database file at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("kvstore/bolt: path is required")
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, gerrors.NewStoreError(kvstore.OpPing, path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, gerrors.NewStoreError(kvstore.OpPing, path, err)
	}

	return &Store{db: db, closed: atomic.NewBool(false)}, nil
}

// Get implements kvstore.Store.
func (s *Store) Get(_ context.Context, key string) (*kvstore.KeyValue, error) {
	var kv *kvstore.KeyValue
	err := s.db.View(func(tx *bbolt.Tx) error {
		if value := tx.Bucket(bucketName).Get([]byte(key)); value != nil {
			kv = &kvstore.KeyValue{Key: key, Value: bytes.Clone(value)}
		}
		return nil
	})
	if err != nil {
		return nil, gerrors.NewStoreError(kvstore.OpGet, key, err)
	}
	return kv, nil
}

// GetPrefix implements kvstore.Store.
func (s *Store) GetPrefix(_ context.Context, prefix string) ([]*kvstore.KeyValue, error) {
	var kvs []*kvstore.KeyValue
	err := s.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(bucketName).Cursor()
		pfx := []byte(prefix)
		for k, v := cursor.Seek(pfx); k != nil && bytes.HasPrefix(k, pfx); k, v = cursor.Next() {
			kvs = append(kvs, &kvstore.KeyValue{Key: string(k), Value: bytes.Clone(v)})
		}
		return nil
	})
	if err != nil {
		return nil, gerrors.NewStoreError(kvstore.OpGetPrefix, prefix, err)
	}
	slices.Reverse(kvs)
	return kvs, nil
}

// GetFrom implements kvstore.Store.
func (s *Store) GetFrom(_ context.Context, from string) ([]*kvstore.KeyValue, error) {
	var kvs []*kvstore.KeyValue
	err := s.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(bucketName).Cursor()
		start := []byte(from)
		for k, v := cursor.Last(); k != nil && bytes.Compare(k, start) >= 0; k, v = cursor.Prev() {
			kvs = append(kvs, &kvstore.KeyValue{Key: string(k), Value: bytes.Clone(v)})
		}
		return nil
	})
	if err != nil {
		return nil, gerrors.NewStoreError(kvstore.OpGetFrom, from, err)
	}
	return kvs, nil
}

// Put implements kvstore.Store.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
	return gerrors.NewStoreError(kvstore.OpPut, key, err)
}

// Delete implements kvstore.Store.
func (s *Store) Delete(_ context.Context, key string) (int64, error) {
	var deleted int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket.Get([]byte(key)) == nil {
			return nil
		}
		deleted = 1
		return bucket.Delete([]byte(key))
	})
	if err != nil {
		return 0, gerrors.NewStoreError(kvstore.OpDelete, key, err)
	}
	return deleted, nil
}

// DeletePrefix implements kvstore.Store.
func (s *Store) DeletePrefix(_ context.Context, prefix string) (int64, error) {
	var deleted int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		cursor := bucket.Cursor()
		pfx := []byte(prefix)

		var keys [][]byte
		for k, _ := cursor.Seek(pfx); k != nil && bytes.HasPrefix(k, pfx); k, _ = cursor.Next() {
			keys = append(keys, bytes.Clone(k))
		}

		for _, key := range keys {
			if err := bucket.Delete(key); err != nil {
				return err
			}
		}
		deleted = int64(len(keys))
		return nil
	})
	if err != nil {
		return 0, gerrors.NewStoreError(kvstore.OpDeletePrefix, prefix, err)
	}
	return deleted, nil
}

// Ping implements kvstore.Store.
func (s *Store) Ping(context.Context) error {
	if s.closed.Load() {
		return gerrors.NewStoreError(kvstore.OpPing, s.db.Path(), gerrors.ErrStoreClosed)
	}
	return nil
}

// Close closes the database file. Close is idempotent.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
