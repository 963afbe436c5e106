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

package metric

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// OutcomeSuccess labels an operation that completed
	OutcomeSuccess = "success"
	// OutcomeNotFound labels an operation that found nothing to read or delete
	OutcomeNotFound = "not_found"
	// OutcomeFailure labels an operation that returned an error
	OutcomeFailure = "failure"
)

// UsersMetric defines the users repository instrumentation
type UsersMetric struct {
	// Specifies the total number of repository calls
	requests metric.Int64Counter
	// Specifies the latency of repository calls in milliseconds
	duration metric.Float64Histogram
	// Specifies the total number of records deleted
	deleted metric.Int64Counter
}

// NewUsersMetric creates an instance of UsersMetric
func NewUsersMetric(meter metric.Meter) (*UsersMetric, error) {
	usersMetric := new(UsersMetric)
	var err error
	if usersMetric.requests, err = meter.Int64Counter(
		"sketcd.users.requests",
		metric.WithDescription("Total number of users repository calls"),
	); err != nil {
		return nil, fmt.Errorf("failed to create requests instrument, %w", err)
	}

	if usersMetric.duration, err = meter.Float64Histogram(
		"sketcd.users.duration",
		metric.WithDescription("The latency of users repository calls in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("failed to create duration instrument, %w", err)
	}

	if usersMetric.deleted, err = meter.Int64Counter(
		"sketcd.users.deleted",
		metric.WithDescription("Total number of user records deleted"),
	); err != nil {
		return nil, fmt.Errorf("failed to create deleted instrument, %w", err)
	}

	return usersMetric, nil
}

// Record records a single repository call
func (x *UsersMetric) Record(ctx context.Context, op, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	)
	x.requests.Add(ctx, 1, attrs)
	x.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
}

// RecordDeleted adds count to the deleted records counter
func (x *UsersMetric) RecordDeleted(ctx context.Context, count int64) {
	if count > 0 {
		x.deleted.Add(ctx, count)
	}
}
