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

package users

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	gerrors "github.com/tochemey/sketcd/errors"
	"github.com/tochemey/sketcd/kvstore"
	"github.com/tochemey/sketcd/kvstore/memory"
	"github.com/tochemey/sketcd/log"
	mockskvstore "github.com/tochemey/sketcd/mocks/kvstore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newRepository(t *testing.T, store kvstore.Store, opts ...Option) *Repository {
	t.Helper()
	opts = append([]Option{WithLogger(log.DiscardLogger)}, opts...)
	repository, err := NewRepository(store, opts...)
	require.NoError(t, err)
	return repository
}

func TestNewRepository(t *testing.T) {
	t.Run("With nil store", func(t *testing.T) {
		repository, err := NewRepository(nil)
		require.Error(t, err)
		assert.Nil(t, repository)
	})
	t.Run("With default options", func(t *testing.T) {
		repository, err := NewRepository(memory.NewStore())
		require.NoError(t, err)
		assert.Equal(t, DefaultNamespace, repository.Namespace())
	})
	t.Run("With blank namespace", func(t *testing.T) {
		repository := newRepository(t, memory.NewStore(), WithNamespace("  "))
		assert.Equal(t, DefaultNamespace, repository.Namespace())
	})
	t.Run("With custom namespace", func(t *testing.T) {
		repository := newRepository(t, memory.NewStore(), WithNamespace("Books"))
		assert.Equal(t, "Books", repository.Namespace())
	})
}

func TestRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("With create then find", func(t *testing.T) {
		store := memory.NewStore()
		repository := newRepository(t, store)

		created, err := repository.Create(ctx, &User{Title: "Dune", Author: "Herbert"})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.NotEqual(t, uuid.Nil, created.ID)

		found, ok, err := repository.FindOne(ctx, created.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, created, found)
	})
	t.Run("With caller id ignored", func(t *testing.T) {
		repository := newRepository(t, memory.NewStore())
		callerID := uuid.New()
		input := &User{ID: callerID, Title: "Dune", Author: "Herbert"}

		created, err := repository.Create(ctx, input)
		require.NoError(t, err)
		assert.NotEqual(t, callerID, created.ID)
		assert.Equal(t, callerID, input.ID)

		_, ok, err := repository.FindOne(ctx, callerID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("With nil user", func(t *testing.T) {
		repository := newRepository(t, memory.NewStore())
		created, err := repository.Create(ctx, nil)
		require.ErrorIs(t, err, ErrNilUser)
		assert.Nil(t, created)
	})
	t.Run("With record stored under namespace and id", func(t *testing.T) {
		id := uuid.MustParse("7b1f3c2e-8c4d-4f6a-9e2b-1a2b3c4d5e6f")
		store := memory.NewStore()
		repository := newRepository(t, store, WithIDGenerator(func() uuid.UUID { return id }))

		created, err := repository.Create(ctx, &User{Title: "Dune", Author: "Herbert"})
		require.NoError(t, err)
		assert.Equal(t, id, created.ID)

		entry, err := store.Get(ctx, "Users"+id.String())
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.JSONEq(t,
			`{"id":"7b1f3c2e-8c4d-4f6a-9e2b-1a2b3c4d5e6f","title":"Dune","author":"Herbert"}`,
			string(entry.Value))

		require.NoError(t, repository.DeleteOne(ctx, id))
		found, ok, err := repository.FindOne(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, found)
	})
	t.Run("With unknown id", func(t *testing.T) {
		repository := newRepository(t, memory.NewStore())
		id := uuid.New()

		found, ok, err := repository.FindOne(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, found)

		err = repository.DeleteOne(ctx, id)
		require.ErrorIs(t, err, gerrors.ErrUserNotFound)
	})
	t.Run("With list and delete all", func(t *testing.T) {
		store := memory.NewStore()
		repository := newRepository(t, store)
		require.NoError(t, store.Put(ctx, "Other/key", []byte("value")))

		const count = 5
		for range count {
			_, err := repository.Create(ctx, &User{Title: "title", Author: "author"})
			require.NoError(t, err)
		}

		users, err := repository.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, users, count)
		for i := 1; i < len(users); i++ {
			assert.Greater(t, users[i-1].ID.String(), users[i].ID.String())
		}

		deleted, err := repository.DeleteAll(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, count, deleted)

		users, err = repository.ListAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)

		entry, err := store.Get(ctx, "Other/key")
		require.NoError(t, err)
		assert.NotNil(t, entry)
	})
	t.Run("With delete all on empty namespace", func(t *testing.T) {
		repository := newRepository(t, memory.NewStore())
		deleted, err := repository.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
	t.Run("With empty store", func(t *testing.T) {
		repository := newRepository(t, memory.NewStore())

		keys, err := repository.ListRawKeys(ctx)
		require.NoError(t, err)
		assert.Nil(t, keys)

		users, err := repository.ListAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})
	t.Run("With raw keys beyond the namespace", func(t *testing.T) {
		store := memory.NewStore()
		repository := newRepository(t, store)
		require.NoError(t, store.Put(ctx, "Other/key", []byte("value")))

		created, err := repository.Create(ctx, &User{Title: "Dune", Author: "Herbert"})
		require.NoError(t, err)

		keys, err := repository.ListRawKeys(ctx)
		require.NoError(t, err)
		require.Len(t, keys, 2)
		assert.Equal(t, "value", keys["Other/key"])
		assert.Contains(t, keys, Key(DefaultNamespace, created.ID))
	})
	t.Run("With namespaces isolated", func(t *testing.T) {
		store := memory.NewStore()
		users := newRepository(t, store)
		books := newRepository(t, store, WithNamespace("Books"))

		_, err := users.Create(ctx, &User{Title: "Dune", Author: "Herbert"})
		require.NoError(t, err)

		listed, err := books.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, listed)
	})
	t.Run("With concurrent creates", func(t *testing.T) {
		repository := newRepository(t, memory.NewStore())
		const count = 50
		errs := make(chan error, count)
		for range count {
			go func() {
				_, err := repository.Create(ctx, &User{Title: "title", Author: "author"})
				errs <- err
			}()
		}
		for range count {
			require.NoError(t, <-errs)
		}

		users, err := repository.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, users, count)
	})
}

func TestRepositoryDecodeFailures(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	key := Key(DefaultNamespace, id)

	testCases := []struct {
		name  string
		value string
	}{
		{name: "not JSON", value: `not json`},
		{name: "not an object", value: `["a"]`},
		{name: "missing id", value: `{"title":"Dune","author":"Herbert"}`},
		{name: "id not a UUID", value: `{"id":"abc","title":"Dune","author":"Herbert"}`},
		{name: "id not a string", value: `{"id":1,"title":"Dune","author":"Herbert"}`},
		{name: "missing title", value: `{"id":"` + id.String() + `","author":"Herbert"}`},
		{name: "mismatched id", value: `{"id":"` + uuid.NewString() + `","title":"Dune","author":"Herbert"}`},
	}

	for _, tc := range testCases {
		t.Run("With "+tc.name, func(t *testing.T) {
			store := memory.NewStore()
			repository := newRepository(t, store)
			require.NoError(t, store.Put(ctx, key, []byte(tc.value)))

			_, _, err := repository.FindOne(ctx, id)
			require.ErrorIs(t, err, gerrors.ErrDecode)
			var decodeErr *gerrors.DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, key, decodeErr.Key)

			users, err := repository.ListAll(ctx)
			require.ErrorIs(t, err, gerrors.ErrDecode)
			assert.Nil(t, users)
		})
	}
}

func TestRepositoryStoreFailures(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("connection refused")

	t.Run("With list all", func(t *testing.T) {
		store := mockskvstore.NewStore(t)
		store.On("GetPrefix", mock.Anything, DefaultNamespace).
			Return(nil, gerrors.NewStoreError(kvstore.OpGetPrefix, DefaultNamespace, cause))

		users, err := newRepository(t, store).ListAll(ctx)
		require.ErrorIs(t, err, gerrors.ErrStoreUnavailable)
		require.ErrorIs(t, err, cause)
		assert.Nil(t, users)
	})
	t.Run("With create", func(t *testing.T) {
		store := mockskvstore.NewStore(t)
		store.On("Put", mock.Anything, mock.Anything, mock.Anything).
			Return(gerrors.NewStoreError(kvstore.OpPut, "", cause))

		created, err := newRepository(t, store).Create(ctx, &User{Title: "Dune", Author: "Herbert"})
		require.ErrorIs(t, err, gerrors.ErrStoreUnavailable)
		assert.Nil(t, created)
	})
	t.Run("With find one", func(t *testing.T) {
		id := uuid.New()
		store := mockskvstore.NewStore(t)
		store.On("Get", mock.Anything, Key(DefaultNamespace, id)).
			Return(nil, gerrors.NewStoreError(kvstore.OpGet, "", cause))

		found, ok, err := newRepository(t, store).FindOne(ctx, id)
		require.ErrorIs(t, err, gerrors.ErrStoreUnavailable)
		assert.False(t, ok)
		assert.Nil(t, found)
	})
	t.Run("With delete one", func(t *testing.T) {
		id := uuid.New()
		store := mockskvstore.NewStore(t)
		store.On("Delete", mock.Anything, Key(DefaultNamespace, id)).
			Return(int64(0), gerrors.NewStoreError(kvstore.OpDelete, "", cause))

		err := newRepository(t, store).DeleteOne(ctx, id)
		require.ErrorIs(t, err, gerrors.ErrStoreUnavailable)
		assert.NotErrorIs(t, err, gerrors.ErrUserNotFound)
	})
	t.Run("With unexpected delete count", func(t *testing.T) {
		id := uuid.New()
		store := mockskvstore.NewStore(t)
		store.On("Delete", mock.Anything, Key(DefaultNamespace, id)).Return(int64(2), nil)

		err := newRepository(t, store).DeleteOne(ctx, id)
		require.ErrorIs(t, err, gerrors.ErrUnexpectedDeleteCount)
	})
	t.Run("With delete all", func(t *testing.T) {
		store := mockskvstore.NewStore(t)
		store.On("DeletePrefix", mock.Anything, DefaultNamespace).
			Return(int64(0), gerrors.NewStoreError(kvstore.OpDeletePrefix, DefaultNamespace, cause))

		deleted, err := newRepository(t, store).DeleteAll(ctx)
		require.ErrorIs(t, err, gerrors.ErrStoreUnavailable)
		assert.Zero(t, deleted)
	})
	t.Run("With raw keys", func(t *testing.T) {
		store := mockskvstore.NewStore(t)
		store.On("GetFrom", mock.Anything, keyspaceStart).
			Return(nil, gerrors.NewStoreError(kvstore.OpGetFrom, keyspaceStart, cause))

		keys, err := newRepository(t, store).ListRawKeys(ctx)
		require.ErrorIs(t, err, gerrors.ErrStoreUnavailable)
		assert.Nil(t, keys)
	})
	t.Run("With ping", func(t *testing.T) {
		store := mockskvstore.NewStore(t)
		store.On("Ping", mock.Anything).Return(gerrors.NewStoreError(kvstore.OpPing, "", cause))

		err := newRepository(t, store).Ping(ctx)
		require.ErrorIs(t, err, gerrors.ErrStoreUnavailable)
	})
}
