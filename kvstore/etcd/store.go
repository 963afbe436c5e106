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

// Package etcd implements kvstore.Store on top of an etcd v3 cluster.
package etcd

import (
	"context"
	"errors"
	"fmt"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/namespace"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/sketcd/errors"
	"github.com/tochemey/sketcd/kvstore"
)

// Store is an etcd-backed kvstore.Store.
//
// Range reads are sorted by key in descending order on the server side.
// Every provided context is wrapped with the configured per-operation timeout.
type Store struct {
	config    *Config
	client    *clientv3.Client
	kv        clientv3.KV
	closeFunc func(*clientv3.Client) error
	closed    *atomic.Bool
}

var _ kvstore.Store = (*Store)(nil)

// NewStore connects to etcd and checks that the first endpoint answers.
func NewStore(config *Config) (*Store, error) {
	return newStore(config, clientv3.New, func(client *clientv3.Client) error { return client.Close() })
}

func newStore(config *Config, clientFunc func(clientv3.Config) (*clientv3.Client, error), closeFunc func(*clientv3.Client) error) (*Store, error) {
	if config == nil {
		return nil, errors.New("kvstore/etcd: config is nil")
	}

	config.Sanitize()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := clientFunc(clientv3.Config{
		Endpoints:   config.Endpoints,
		DialTimeout: config.DialTimeout,
		TLS:         config.TLS,
		Username:    config.Username,
		Password:    config.Password,
		Context:     config.Context,
	})
	if err != nil {
		return nil, gerrors.NewStoreError(kvstore.OpPing, "", err)
	}

	ctx, cancel := context.WithTimeout(config.Context, config.DialTimeout)
	defer cancel()

	if _, err = client.Status(ctx, config.Endpoints[0]); err != nil {
		if cerr := closeFunc(client); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close etcd client: %w", cerr))
		}
		return nil, gerrors.NewStoreError(kvstore.OpPing, "", err)
	}

	var kv clientv3.KV = client.KV
	if config.Root != "" {
		kv = namespace.NewKV(client.KV, config.Root)
	}

	return &Store{
		config:    config,
		client:    client,
		kv:        kv,
		closeFunc: closeFunc,
		closed:    atomic.NewBool(false),
	}, nil
}

// Get implements kvstore.Store.
func (s *Store) Get(ctx context.Context, key string) (*kvstore.KeyValue, error) {
	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.kv.Get(opCtx, key)
	if err != nil {
		return nil, gerrors.NewStoreError(kvstore.OpGet, key, err)
	}

	if len(resp.Kvs) == 0 {
		return nil, nil
	}
	return &kvstore.KeyValue{Key: string(resp.Kvs[0].Key), Value: resp.Kvs[0].Value}, nil
}

// GetPrefix implements kvstore.Store.
func (s *Store) GetPrefix(ctx context.Context, prefix string) ([]*kvstore.KeyValue, error) {
	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.kv.Get(opCtx, prefix,
		clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortDescend))
	if err != nil {
		return nil, gerrors.NewStoreError(kvstore.OpGetPrefix, prefix, err)
	}
	return toKeyValues(resp), nil
}

// GetFrom implements kvstore.Store.
func (s *Store) GetFrom(ctx context.Context, key string) ([]*kvstore.KeyValue, error) {
	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.kv.Get(opCtx, key,
		clientv3.WithFromKey(),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortDescend))
	if err != nil {
		return nil, gerrors.NewStoreError(kvstore.OpGetFrom, key, err)
	}
	return toKeyValues(resp), nil
}

// Put implements kvstore.Store.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.kv.Put(opCtx, key, string(value)); err != nil {
		return gerrors.NewStoreError(kvstore.OpPut, key, err)
	}
	return nil
}

// Delete implements kvstore.Store.
func (s *Store) Delete(ctx context.Context, key string) (int64, error) {
	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.kv.Delete(opCtx, key)
	if err != nil {
		return 0, gerrors.NewStoreError(kvstore.OpDelete, key, err)
	}
	return resp.Deleted, nil
}

// DeletePrefix implements kvstore.Store.
func (s *Store) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.kv.Delete(opCtx, prefix, clientv3.WithPrefix())
	if err != nil {
		return 0, gerrors.NewStoreError(kvstore.OpDeletePrefix, prefix, err)
	}
	return resp.Deleted, nil
}

// Ping implements kvstore.Store.
func (s *Store) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return gerrors.NewStoreError(kvstore.OpPing, "", gerrors.ErrStoreClosed)
	}

	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.client.Status(opCtx, s.config.Endpoints[0]); err != nil {
		return gerrors.NewStoreError(kvstore.OpPing, "", err)
	}
	return nil
}

// Close releases the underlying etcd client. Close is idempotent.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.closeFunc(s.client)
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = s.config.Context
	}
	return context.WithTimeout(ctx, s.config.Timeout)
}

func toKeyValues(resp *clientv3.GetResponse) []*kvstore.KeyValue {
	kvs := make([]*kvstore.KeyValue, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		kvs = append(kvs, &kvstore.KeyValue{Key: string(kv.Key), Value: kv.Value})
	}
	return kvs
}
