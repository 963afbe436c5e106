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

// Package kvstoretest checks that a kvstore.Store implementation honours
// the ordering and counting contract shared by every backend.
package kvstoretest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/sketcd/errors"
	"github.com/tochemey/sketcd/kvstore"
)

// Factory returns a fresh, empty store. The store is closed by the caller.
type Factory func(t *testing.T) kvstore.Store

// Run exercises the store contract against stores created by factory.
func Run(t *testing.T, factory Factory) {
	t.Helper()

	t.Run("With exact get", func(t *testing.T) {
		ctx := context.Background()
		store := open(t, factory)

		kv, err := store.Get(ctx, "Users1")
		require.NoError(t, err)
		assert.Nil(t, kv)

		require.NoError(t, store.Put(ctx, "Users1", []byte("one")))
		require.NoError(t, store.Put(ctx, "Users10", []byte("ten")))

		kv, err = store.Get(ctx, "Users1")
		require.NoError(t, err)
		require.NotNil(t, kv)
		assert.Equal(t, "Users1", kv.Key)
		assert.Equal(t, []byte("one"), kv.Value)
	})
	t.Run("With put overwriting", func(t *testing.T) {
		ctx := context.Background()
		store := open(t, factory)

		require.NoError(t, store.Put(ctx, "Usersa", []byte("first")))
		require.NoError(t, store.Put(ctx, "Usersa", []byte("second")))

		kv, err := store.Get(ctx, "Usersa")
		require.NoError(t, err)
		require.NotNil(t, kv)
		assert.Equal(t, []byte("second"), kv.Value)
	})
	t.Run("With prefix scan sorted descending", func(t *testing.T) {
		ctx := context.Background()
		store := open(t, factory)

		for _, key := range []string{"Usersb", "Other", "Usersa", "Usersc", "UserX", "Userz"} {
			require.NoError(t, store.Put(ctx, key, []byte(key)))
		}

		kvs, err := store.GetPrefix(ctx, "Users")
		require.NoError(t, err)
		assert.Equal(t, []string{"Usersc", "Usersb", "Usersa"}, keys(kvs))
		assert.Equal(t, []byte("Usersc"), kvs[0].Value)

		kvs, err = store.GetPrefix(ctx, "Nothing")
		require.NoError(t, err)
		assert.Empty(t, kvs)
	})
	t.Run("With full keyspace scan", func(t *testing.T) {
		ctx := context.Background()
		store := open(t, factory)

		kvs, err := store.GetFrom(ctx, "\x00")
		require.NoError(t, err)
		assert.Empty(t, kvs)

		for _, key := range []string{"b", "Usersa", "a", "config/x"} {
			require.NoError(t, store.Put(ctx, key, []byte("v-"+key)))
		}

		kvs, err = store.GetFrom(ctx, "\x00")
		require.NoError(t, err)
		assert.Equal(t, []string{"config/x", "b", "a", "Usersa"}, keys(kvs))

		kvs, err = store.GetFrom(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []string{"config/x", "b", "a"}, keys(kvs))
	})
	t.Run("With exact delete", func(t *testing.T) {
		ctx := context.Background()
		store := open(t, factory)

		require.NoError(t, store.Put(ctx, "Users1", []byte("one")))
		require.NoError(t, store.Put(ctx, "Users12", []byte("twelve")))

		deleted, err := store.Delete(ctx, "Users1")
		require.NoError(t, err)
		assert.EqualValues(t, 1, deleted)

		deleted, err = store.Delete(ctx, "Users1")
		require.NoError(t, err)
		assert.EqualValues(t, 0, deleted)

		kv, err := store.Get(ctx, "Users12")
		require.NoError(t, err)
		assert.NotNil(t, kv)
	})
	t.Run("With prefix delete", func(t *testing.T) {
		ctx := context.Background()
		store := open(t, factory)

		deleted, err := store.DeletePrefix(ctx, "Users")
		require.NoError(t, err)
		assert.Zero(t, deleted)

		for _, key := range []string{"Usersa", "Usersb", "Usersc", "Other"} {
			require.NoError(t, store.Put(ctx, key, []byte(key)))
		}

		deleted, err = store.DeletePrefix(ctx, "Users")
		require.NoError(t, err)
		assert.EqualValues(t, 3, deleted)

		kvs, err := store.GetFrom(ctx, "\x00")
		require.NoError(t, err)
		assert.Equal(t, []string{"Other"}, keys(kvs))
	})
	t.Run("With ping", func(t *testing.T) {
		store := open(t, factory)
		require.NoError(t, store.Ping(context.Background()))
	})
}

// RunClosed checks that a closed store reports ErrStoreUnavailable.
func RunClosed(t *testing.T, factory Factory) {
	t.Helper()
	ctx := context.Background()
	store := factory(t)
	require.NoError(t, store.Close())

	_, err := store.Get(ctx, "Users1")
	assert.ErrorIs(t, err, gerrors.ErrStoreUnavailable)
	_, err = store.GetPrefix(ctx, "Users")
	assert.ErrorIs(t, err, gerrors.ErrStoreUnavailable)
	_, err = store.GetFrom(ctx, "\x00")
	assert.ErrorIs(t, err, gerrors.ErrStoreUnavailable)
	assert.ErrorIs(t, store.Put(ctx, "Users1", []byte("{}")), gerrors.ErrStoreUnavailable)
	_, err = store.Delete(ctx, "Users1")
	assert.ErrorIs(t, err, gerrors.ErrStoreUnavailable)
	_, err = store.DeletePrefix(ctx, "Users")
	assert.ErrorIs(t, err, gerrors.ErrStoreUnavailable)
	assert.ErrorIs(t, store.Ping(ctx), gerrors.ErrStoreUnavailable)
}

func open(t *testing.T, factory Factory) kvstore.Store {
	t.Helper()
	store := factory(t)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func keys(kvs []*kvstore.KeyValue) []string {
	out := make([]string, 0, len(kvs))
	for _, kv := range kvs {
		out = append(out, kv.Key)
	}
	return out
}
