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

// Package memory provides an in-process ordered kvstore.Store. It keeps no
// data across restarts and is meant for development and tests.
package memory

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/tidwall/btree"

	gerrors "github.com/tochemey/sketcd/errors"
	"github.com/tochemey/sketcd/kvstore"
)

// Store is an in-memory kvstore.Store backed by a B-tree
type Store struct {
	mu     sync.RWMutex
	tree   btree.Map[string, []byte]
	closed bool
}

var _ kvstore.Store = (*Store)(nil)

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{}
}

// Get implements kvstore.Store.
func (s *Store) Get(_ context.Context, key string) (*kvstore.KeyValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, gerrors.NewStoreError(kvstore.OpGet, key, gerrors.ErrStoreClosed)
	}

	value, ok := s.tree.Get(key)
	if !ok {
		return nil, nil
	}
	return entry(key, value), nil
}

// GetPrefix implements kvstore.Store.
func (s *Store) GetPrefix(_ context.Context, prefix string) ([]*kvstore.KeyValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, gerrors.NewStoreError(kvstore.OpGetPrefix, prefix, gerrors.ErrStoreClosed)
	}

	var kvs []*kvstore.KeyValue
	s.tree.Ascend(prefix, func(key string, value []byte) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}
		kvs = append(kvs, entry(key, value))
		return true
	})
	slices.Reverse(kvs)
	return kvs, nil
}

// GetFrom implements kvstore.Store.
func (s *Store) GetFrom(_ context.Context, from string) ([]*kvstore.KeyValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, gerrors.NewStoreError(kvstore.OpGetFrom, from, gerrors.ErrStoreClosed)
	}

	var kvs []*kvstore.KeyValue
	s.tree.Reverse(func(key string, value []byte) bool {
		if key < from {
			return false
		}
		kvs = append(kvs, entry(key, value))
		return true
	})
	return kvs, nil
}

// Put implements kvstore.Store.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return gerrors.NewStoreError(kvstore.OpPut, key, gerrors.ErrStoreClosed)
	}

	s.tree.Set(key, bytes.Clone(value))
	return nil
}

// Delete implements kvstore.Store.
func (s *Store) Delete(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, gerrors.NewStoreError(kvstore.OpDelete, key, gerrors.ErrStoreClosed)
	}

	if _, ok := s.tree.Delete(key); ok {
		return 1, nil
	}
	return 0, nil
}

// DeletePrefix implements kvstore.Store.
func (s *Store) DeletePrefix(_ context.Context, prefix string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, gerrors.NewStoreError(kvstore.OpDeletePrefix, prefix, gerrors.ErrStoreClosed)
	}

	var keys []string
	s.tree.Ascend(prefix, func(key string, _ []byte) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}
		keys = append(keys, key)
		return true
	})

	for _, key := range keys {
		s.tree.Delete(key)
	}
	return int64(len(keys)), nil
}

// Ping implements kvstore.Store.
func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return gerrors.NewStoreError(kvstore.OpPing, "", gerrors.ErrStoreClosed)
	}
	return nil
}

// Close implements kvstore.Store. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.tree = btree.Map[string, []byte]{}
	s.mu.Unlock()
	return nil
}

func entry(key string, value []byte) *kvstore.KeyValue {
	return &kvstore.KeyValue{Key: key, Value: bytes.Clone(value)}
}
