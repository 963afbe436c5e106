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

// Package users stores User records under a single key prefix of a
// key-value store and exposes the CRUD operations of the service.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	gerrors "github.com/tochemey/sketcd/errors"
	"github.com/tochemey/sketcd/internal/metric"
	"github.com/tochemey/sketcd/kvstore"
	"github.com/tochemey/sketcd/log"
	"github.com/tochemey/sketcd/telemetry"
)

// keyspaceStart is the smallest key of the store. A from-key range starting
// there covers every key.
const keyspaceStart = "\x00"

const (
	opListAll     = "list_all"
	opCreate      = "create"
	opFindOne     = "find_one"
	opDeleteOne   = "delete_one"
	opDeleteAll   = "delete_all"
	opListRawKeys = "list_raw_keys"
)

// ErrNilUser is returned by Create when no record is given
var ErrNilUser = errors.New("user record is required")

// Repository translates User operations into key-value store calls.
// It holds no state besides the store handle and is safe for concurrent use.
type Repository struct {
	store     kvstore.Store
	namespace string
	logger    log.Logger
	telemetry *telemetry.Telemetry
	metric    *metric.UsersMetric
	newID     func() uuid.UUID
}

// NewRepository creates an instance of Repository on top of the given store
func NewRepository(store kvstore.Store, opts ...Option) (*Repository, error) {
	if store == nil {
		return nil, errors.New("users: store is required")
	}

	repository := &Repository{
		store:     store,
		namespace: DefaultNamespace,
		logger:    log.DefaultLogger,
		telemetry: telemetry.New(),
		newID:     uuid.New,
	}

	for _, opt := range opts {
		opt.Apply(repository)
	}

	usersMetric, err := metric.NewUsersMetric(repository.telemetry.Meter())
	if err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}

	repository.metric = usersMetric
	return repository, nil
}

// Namespace returns the key prefix of the repository
func (r *Repository) Namespace() string {
	return r.namespace
}

// ListAll returns every record of the namespace, in descending key order.
// An empty namespace yields an empty slice.
func (r *Repository) ListAll(ctx context.Context) ([]*User, error) {
	ctx, done := r.begin(ctx, opListAll)

	entries, err := r.store.GetPrefix(ctx, r.namespace)
	if err != nil {
		err = fmt.Errorf("failed to list users: %w", err)
		done(metric.OutcomeFailure, err)
		return nil, err
	}

	users := make([]*User, 0, len(entries))
	if len(entries) == 0 {
		r.logger.Warn("failed to retrieve any user")
		done(metric.OutcomeNotFound, nil)
		return users, nil
	}

	for _, entry := range entries {
		user, err := decode(r.namespace, entry.Key, entry.Value)
		if err != nil {
			err = fmt.Errorf("failed to list users: %w", err)
			done(metric.OutcomeFailure, err)
			return nil, err
		}
		users = append(users, user)
	}

	r.logger.Infof("retrieved %d users", len(users))
	done(metric.OutcomeSuccess, nil)
	return users, nil
}

// Create stores a new record with a freshly generated id. Any id set by the
// caller is ignored. The stored record is returned.
func (r *Repository) Create(ctx context.Context, user *User) (*User, error) {
	if user == nil {
		return nil, ErrNilUser
	}

	ctx, done := r.begin(ctx, opCreate)

	created := &User{
		ID:     r.newID(),
		Title:  user.Title,
		Author: user.Author,
	}

	value, err := encode(created)
	if err != nil {
		err = fmt.Errorf("failed to create user %s: %w", created.ID, err)
		done(metric.OutcomeFailure, err)
		return nil, err
	}

	if err := r.store.Put(ctx, Key(r.namespace, created.ID), value); err != nil {
		err = fmt.Errorf("failed to create user %s: %w", created.ID, err)
		done(metric.OutcomeFailure, err)
		return nil, err
	}

	r.logger.Infof("created user %s", created.ID)
	done(metric.OutcomeSuccess, nil)
	return created, nil
}

// FindOne fetches the record with the given id. The boolean is false when
// no such record exists.
func (r *Repository) FindOne(ctx context.Context, id uuid.UUID) (*User, bool, error) {
	ctx, done := r.begin(ctx, opFindOne)

	key := Key(r.namespace, id)
	entry, err := r.store.Get(ctx, key)
	if err != nil {
		err = fmt.Errorf("failed to find user %s: %w", id, err)
		done(metric.OutcomeFailure, err)
		return nil, false, err
	}

	if entry == nil {
		r.logger.Warnf("user %s not found", id)
		done(metric.OutcomeNotFound, nil)
		return nil, false, nil
	}

	user, err := decode(r.namespace, key, entry.Value)
	if err != nil {
		err = fmt.Errorf("failed to find user %s: %w", id, err)
		done(metric.OutcomeFailure, err)
		return nil, false, err
	}

	r.logger.Infof("retrieved user %s", id)
	done(metric.OutcomeSuccess, nil)
	return user, true, nil
}

// DeleteOne removes the record with the given id. It returns ErrUserNotFound
// when nothing was removed.
func (r *Repository) DeleteOne(ctx context.Context, id uuid.UUID) error {
	ctx, done := r.begin(ctx, opDeleteOne)

	deleted, err := r.store.Delete(ctx, Key(r.namespace, id))
	if err != nil {
		err = fmt.Errorf("failed to delete user %s: %w", id, err)
		done(metric.OutcomeFailure, err)
		return err
	}

	switch deleted {
	case 1:
		r.metric.RecordDeleted(ctx, deleted)
		r.logger.Infof("deleted user %s", id)
		done(metric.OutcomeSuccess, nil)
		return nil
	case 0:
		r.logger.Warnf("user %s not found", id)
		err = fmt.Errorf("failed to delete user %s: %w", id, gerrors.ErrUserNotFound)
		done(metric.OutcomeNotFound, nil)
		return err
	default:
		r.metric.RecordDeleted(ctx, deleted)
		err = fmt.Errorf("failed to delete user %s: %w (%d)", id, gerrors.ErrUnexpectedDeleteCount, deleted)
		done(metric.OutcomeFailure, err)
		return err
	}
}

// DeleteAll removes every record of the namespace and returns how many were
// removed.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	ctx, done := r.begin(ctx, opDeleteAll)

	deleted, err := r.store.DeletePrefix(ctx, r.namespace)
	if err != nil {
		err = fmt.Errorf("failed to delete users: %w", err)
		done(metric.OutcomeFailure, err)
		return 0, err
	}

	r.metric.RecordDeleted(ctx, deleted)
	r.logger.Infof("deleted %d users", deleted)
	done(metric.OutcomeSuccess, nil)
	return deleted, nil
}

// ListRawKeys returns every key of the store with its value, regardless of
// the namespace. An empty store yields a nil map.
func (r *Repository) ListRawKeys(ctx context.Context) (map[string]string, error) {
	ctx, done := r.begin(ctx, opListRawKeys)

	entries, err := r.store.GetFrom(ctx, keyspaceStart)
	if err != nil {
		err = fmt.Errorf("failed to list keys: %w", err)
		done(metric.OutcomeFailure, err)
		return nil, err
	}

	if len(entries) == 0 {
		r.logger.Warn("failed to retrieve any key")
		done(metric.OutcomeNotFound, nil)
		return nil, nil
	}

	keys := make(map[string]string, len(entries))
	for _, entry := range entries {
		keys[entry.Key] = string(entry.Value)
	}

	r.logger.Infof("retrieved %d keys", len(keys))
	done(metric.OutcomeSuccess, nil)
	return keys, nil
}

// Ping checks the store is reachable
func (r *Repository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// begin opens the span of op. The returned function ends it and records
// the call metrics.
func (r *Repository) begin(ctx context.Context, op string) (context.Context, func(outcome string, err error)) {
	start := time.Now()
	ctx, span := r.telemetry.Tracer().Start(ctx, "users."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("users.namespace", r.namespace)))

	return ctx, func(outcome string, err error) {
		span.SetAttributes(attribute.String("users.outcome", outcome))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		r.metric.Record(ctx, op, outcome, time.Since(start))
	}
}
