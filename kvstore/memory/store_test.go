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

package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tochemey/sketcd/kvstore"
	"github.com/tochemey/sketcd/kvstore/kvstoretest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStore(t *testing.T) {
	kvstoretest.Run(t, func(*testing.T) kvstore.Store { return NewStore() })
}

func TestClosedStore(t *testing.T) {
	kvstoretest.RunClosed(t, func(*testing.T) kvstore.Store { return NewStore() })
}

func TestStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	value := []byte("original")
	require.NoError(t, store.Put(ctx, "k", value))
	value[0] = 'X'

	kv, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), kv.Value)

	kv.Value[0] = 'Y'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again.Value)
}

func TestStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := "Users" + string(rune('a'+i%26)) + string(rune('a'+i/26))
			assert.NoError(t, store.Put(ctx, key, []byte(key)))
			_, err := store.GetPrefix(ctx, "Users")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	kvs, err := store.GetPrefix(ctx, "Users")
	require.NoError(t, err)
	assert.Len(t, kvs, 50)
}
