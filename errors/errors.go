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

// Package errors defines the error kinds surfaced by the users repository
// and the key-value store backends.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound is returned when a delete by id removed no record.
	ErrUserNotFound = errors.New("user not found")

	// ErrStoreUnavailable indicates the key-value store could not be reached or
	// refused the request (timeout, connection loss, authentication failure).
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrDecode indicates that a stored value does not hold a valid user record.
	ErrDecode = errors.New("malformed stored record")

	// ErrUnexpectedDeleteCount is returned when an exact-key delete reports a
	// deleted count other than zero or one.
	ErrUnexpectedDeleteCount = errors.New("unexpected deleted count")

	// ErrStoreClosed is returned by a store backend used after Close.
	ErrStoreClosed = errors.New("store is closed")

	// ErrInvalidBackend is returned when the configured store backend is unknown.
	ErrInvalidBackend = errors.New("invalid store backend")
)

// StoreError describes a failed call against the key-value store.
// It always matches ErrStoreUnavailable with errors.Is.
type StoreError struct {
	// Op is the store operation being attempted, e.g. "get" or "delete-prefix"
	Op string
	// Key is the key or prefix the operation targeted
	Key string
	// Err is the underlying transport error
	Err error
}

// NewStoreError wraps err as a StoreError. It returns nil when err is nil.
func NewStoreError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Key: key, Err: err}
}

// Error implements error.
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s key=(%q): %v", ErrStoreUnavailable, e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrStoreUnavailable.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// DecodeError describes a stored value that could not be decoded.
// It always matches ErrDecode with errors.Is.
type DecodeError struct {
	// Key is the store key holding the value
	Key string
	// Err is the decoding failure
	Err error
}

// NewDecodeError creates a DecodeError for the given key.
func NewDecodeError(key string, err error) error {
	return &DecodeError{Key: key, Err: err}
}

// Error implements error.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: key=(%q): %v", ErrDecode, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
