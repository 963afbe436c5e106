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

package telemetry

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviders(t *testing.T) {
	t.Run("With traces and metrics", func(t *testing.T) {
		ctx := context.Background()
		traces := new(bytes.Buffer)

		providers, err := NewProviders("sketcd-test", traces)
		require.NoError(t, err)

		tel := providers.Telemetry()
		counter, err := tel.Meter().Int64Counter("sketcd.test.calls")
		require.NoError(t, err)
		counter.Add(ctx, 3)

		_, span := tel.Tracer().Start(ctx, "test-span")
		span.End()

		recorder := httptest.NewRecorder()
		providers.MetricsHandler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, recorder.Code)
		body, err := io.ReadAll(recorder.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "sketcd_test_calls")

		require.NoError(t, providers.Shutdown(ctx))
		assert.Contains(t, traces.String(), "test-span")
		assert.Contains(t, traces.String(), "sketcd-test")
	})
	t.Run("Without trace writer", func(t *testing.T) {
		providers, err := NewProviders("sketcd-test", nil)
		require.NoError(t, err)

		_, span := providers.Telemetry().Tracer().Start(context.Background(), "dropped")
		span.End()
		require.NoError(t, providers.Shutdown(context.Background()))
	})
}
