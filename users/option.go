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
	"strings"

	"github.com/google/uuid"

	"github.com/tochemey/sketcd/log"
	"github.com/tochemey/sketcd/telemetry"
)

// DefaultNamespace is the key prefix under which user records are stored
const DefaultNamespace = "Users"

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(repository *Repository)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Repository)

// Apply applies the option
func (f OptionFunc) Apply(repository *Repository) {
	f(repository)
}

// WithNamespace sets the key prefix. Blank values are ignored.
func WithNamespace(namespace string) Option {
	return OptionFunc(func(r *Repository) {
		if strings.TrimSpace(namespace) != "" {
			r.namespace = namespace
		}
	})
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	})
}

// WithTelemetry sets the tracer and meter providers
func WithTelemetry(telemetry *telemetry.Telemetry) Option {
	return OptionFunc(func(r *Repository) {
		if telemetry != nil {
			r.telemetry = telemetry
		}
	})
}

// WithIDGenerator replaces the random id generator
func WithIDGenerator(generator func() uuid.UUID) Option {
	return OptionFunc(func(r *Repository) {
		if generator != nil {
			r.newID = generator
		}
	})
}
