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

// Package kvstore defines the ordered key-value capabilities the users
// repository is built on. Backends live in the etcd, embedded, memory and bolt
// sub-packages.
package kvstore

import (
	"context"
)

const (
	// BackendEtcd selects the etcd backend
	BackendEtcd = "etcd"
	// BackendEmbedded selects an etcd server running in-process
	BackendEmbedded = "embedded"
	// BackendMemory selects the in-process backend
	BackendMemory = "memory"
	// BackendBolt selects the single-file bbolt backend
	BackendBolt = "bolt"
)

// KeyValue is a single entry read from the store.
type KeyValue struct {
	Key   string
	Value []byte
}

// Store is an ordered key-value store.
//
// Implementations must be safe for concurrent use. Every failure to reach the
// underlying storage is reported as an *errors.StoreError. Range reads return
// entries sorted by key in descending byte order.
type Store interface {
	// Get returns the entry stored under key, or nil when absent.
	Get(ctx context.Context, key string) (*KeyValue, error)
	// GetPrefix returns every entry whose key starts with prefix.
	GetPrefix(ctx context.Context, prefix string) ([]*KeyValue, error)
	// GetFrom returns every entry whose key is greater than or equal to key.
	GetFrom(ctx context.Context, key string) ([]*KeyValue, error)
	// Put stores value under key, replacing any existing value.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key and returns how many keys were removed.
	Delete(ctx context.Context, key string) (int64, error)
	// DeletePrefix removes every key starting with prefix and returns the count.
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
	// Close releases the store resources.
	Close() error
}

// Operation names used in errors.StoreError
const (
	OpGet          = "get"
	OpGetPrefix    = "get-prefix"
	OpGetFrom      = "get-from"
	OpPut          = "put"
	OpDelete       = "delete"
	OpDeletePrefix = "delete-prefix"
	OpPing         = "ping"
)
