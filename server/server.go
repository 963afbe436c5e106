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

// Package server exposes the users repository over HTTP under the /etcd path.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/atomic"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/tochemey/sketcd/log"
	"github.com/tochemey/sketcd/telemetry"
	"github.com/tochemey/sketcd/users"
)

// Service is the set of user operations served over HTTP.
// *users.Repository implements it.
type Service interface {
	ListAll(ctx context.Context) ([]*users.User, error)
	Create(ctx context.Context, user *users.User) (*users.User, error)
	FindOne(ctx context.Context, id uuid.UUID) (*users.User, bool, error)
	DeleteOne(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) (int64, error)
	ListRawKeys(ctx context.Context) (map[string]string, error)
	Ping(ctx context.Context) error
}

var _ Service = (*users.Repository)(nil)

const (
	// BasePath is the path prefix of every users route
	BasePath = "/etcd"
	// HealthPath is the liveness route
	HealthPath = "/healthz"
	// MetricsPath serves the metrics handler when one is set
	MetricsPath = "/metrics"

	defaultStopTimeout = 30 * time.Second
	idleTimeout        = 120 * time.Second
	// maxBodySize bounds the create request body
	maxBodySize = 1 << 20
)

// Server is the HTTP front of the users service
type Server struct {
	service Service
	host    string
	port    int

	server   *http.Server
	listener net.Listener

	logger      log.Logger
	telemetry   *telemetry.Telemetry
	metrics     http.Handler
	started     atomic.Bool
	stopTimeout time.Duration
	mu          sync.Mutex
}

// New creates an instance of Server
func New(host string, port int, service Service, opts ...Option) *Server {
	server := &Server{
		service:     service,
		host:        host,
		port:        port,
		logger:      log.DefaultLogger,
		telemetry:   telemetry.New(),
		stopTimeout: defaultStopTimeout,
	}

	server.started.Store(false)
	for _, opt := range opts {
		opt.Apply(server)
	}

	return server
}

// Handler returns the routes wrapped with compression and HTTP instrumentation
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+BasePath, s.listAll)
	mux.HandleFunc("POST "+BasePath, s.create)
	mux.HandleFunc("DELETE "+BasePath, s.deleteAll)
	mux.HandleFunc("GET "+BasePath+"/keys", s.listRawKeys)
	mux.HandleFunc("GET "+BasePath+"/{id}", s.findOne)
	mux.HandleFunc("DELETE "+BasePath+"/{id}", s.deleteOne)
	mux.HandleFunc("GET "+HealthPath, s.health)
	if s.metrics != nil {
		mux.Handle("GET "+MetricsPath, s.metrics)
	}

	return otelhttp.NewHandler(
		gzhttp.GzipHandler(mux),
		"sketcd",
		otelhttp.WithTracerProvider(s.telemetry.TraceProvider()),
		otelhttp.WithMeterProvider(s.telemetry.MeterProvider()),
	)
}

// Start binds the listen address and serves requests in the background.
// It returns once the address is bound.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started.Load() {
		return nil
	}

	address := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	s.logger.Infof("starting sketcd server on %s...", address)

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	// reference: https://adam-p.ca/blog/2022/01/golang-http-server-timeouts/
	server := &http.Server{
		// bounds reading the whole request, body included
		ReadTimeout: 10 * time.Second,
		// bounds reading the request headers
		ReadHeaderTimeout: time.Second,
		// covers the handler run, store round trip included
		WriteTimeout: 15 * time.Second,
		// keep-alive connections idle limit
		IdleTimeout: idleTimeout,
		Handler: h2c.NewHandler(s.Handler(), &http2.Server{
			IdleTimeout: idleTimeout,
		}),
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(fmt.Errorf("sketcd server failed: %w", err))
		}
	}()

	s.server = server
	s.listener = listener
	s.started.Store(true)

	s.logger.Infof("sketcd server started on %s", listener.Addr().String())
	return nil
}

// Addr returns the bound address, or an empty string when not started
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started.Load() {
		return nil
	}

	defer s.started.Store(false)

	ctx, cancel := context.WithTimeout(ctx, s.stopTimeout)
	defer cancel()

	s.logger.Info("stopping sketcd server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop sketcd server: %w", err)
	}

	s.server = nil
	s.listener = nil
	s.logger.Info("sketcd server stopped")
	return nil
}
