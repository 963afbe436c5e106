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

// Package embedded runs a single node etcd server inside the process and
// serves it through the etcd backed store. It lets the service run with
// real etcd semantics without an external cluster.
package embedded

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/etcd/server/v3/embed"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	gerrors "github.com/tochemey/sketcd/errors"
	"github.com/tochemey/sketcd/kvstore"
	"github.com/tochemey/sketcd/kvstore/etcd"
	"github.com/tochemey/sketcd/log"
)

// Store is an etcd backed store talking to an in-process etcd server
type Store struct {
	*etcd.Store

	server *embed.Etcd
	logger log.Logger
	closed *atomic.Bool
}

var _ kvstore.Store = (*Store)(nil)

// NewStore starts the etcd server and connects a store to it.
// The server stops when the store is closed.
func NewStore(config *Config) (*Store, error) {
	if config == nil {
		return nil, errors.New("embedded: config is required")
	}

	config.Sanitize()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("embedded: invalid config: %w", err)
	}

	server, err := startServer(config)
	if err != nil {
		return nil, err
	}

	endpoints := make([]string, 0, len(server.Clients))
	for _, listener := range server.Clients {
		endpoints = append(endpoints, listener.Addr().String())
	}

	store, err := etcd.NewStore(&etcd.Config{
		Endpoints:   endpoints,
		DialTimeout: config.StartTimeout,
		Timeout:     config.Timeout,
	})
	if err != nil {
		server.Close()
		return nil, err
	}

	config.Logger.Infof("embedded etcd server %s serving clients on %v", config.Name, endpoints)
	return &Store{
		Store:  store,
		server: server,
		logger: config.Logger,
		closed: atomic.NewBool(false),
	}, nil
}

// Close closes the client then stops the server. Close is idempotent.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	err := s.Store.Close()
	s.server.Close()
	select {
	case serverErr, ok := <-s.server.Err():
		if ok && serverErr != nil {
			err = multierr.Append(err, serverErr)
		}
	default:
	}

	s.logger.Info("embedded etcd server stopped")
	return err
}

// startServer starts the etcd server and waits for it to be ready
func startServer(config *Config) (*embed.Etcd, error) {
	clientURLs, err := parseURLs(config.ClientURLs)
	if err != nil {
		return nil, fmt.Errorf("embedded: invalid client urls: %w", err)
	}

	peerURLs, err := parseURLs(config.PeerURLs)
	if err != nil {
		return nil, fmt.Errorf("embedded: invalid peer urls: %w", err)
	}

	embedConfig := embed.NewConfig()
	embedConfig.Name = config.Name
	embedConfig.Dir = filepath.Join(config.Dir, "etcd.data")
	embedConfig.ListenClientUrls = clientURLs
	embedConfig.AdvertiseClientUrls = clientURLs
	embedConfig.ListenPeerUrls = peerURLs
	embedConfig.AdvertisePeerUrls = peerURLs
	embedConfig.InitialCluster = embedConfig.InitialClusterFromName(config.Name)
	embedConfig.Logger = "zap"
	embedConfig.LogLevel = "error"

	server, err := embed.StartEtcd(embedConfig)
	if err != nil {
		return nil, gerrors.NewStoreError(kvstore.OpPing, "", fmt.Errorf("failed to start embedded etcd: %w", err))
	}

	select {
	case <-server.Server.ReadyNotify():
		return server, nil
	case <-time.After(config.StartTimeout):
		server.Server.Stop()
		server.Close()
		return nil, gerrors.NewStoreError(kvstore.OpPing, "", errors.New("embedded etcd took too long to start"))
	case err := <-server.Err():
		server.Close()
		return nil, gerrors.NewStoreError(kvstore.OpPing, "", fmt.Errorf("embedded etcd failed: %w", err))
	}
}
