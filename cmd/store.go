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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowchartsman/retry"

	"github.com/tochemey/sketcd/config"
	gerrors "github.com/tochemey/sketcd/errors"
	"github.com/tochemey/sketcd/kvstore"
	"github.com/tochemey/sketcd/kvstore/bolt"
	"github.com/tochemey/sketcd/kvstore/embedded"
	"github.com/tochemey/sketcd/kvstore/etcd"
	"github.com/tochemey/sketcd/kvstore/memory"
	"github.com/tochemey/sketcd/log"
	"github.com/tochemey/sketcd/secureconn"
)

const (
	startupMaxTries     = 10
	startupInitialDelay = 100 * time.Millisecond
	startupMaxDelay     = 2 * time.Second
)

// openStore opens the configured backend. A store that cannot be reached yet
// is retried with backoff until cfg.Store.StartupTimeout elapses. Any other
// failure stops right away.
func openStore(ctx context.Context, cfg *config.Config, logger log.Logger) (kvstore.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Store.StartupTimeout)
	defer cancel()

	var store kvstore.Store
	retrier := retry.NewRetrier(startupMaxTries, startupInitialDelay, startupMaxDelay)
	err := retrier.RunContext(ctx, func(context.Context) error {
		opened, err := newStore(cfg, logger)
		if err != nil {
			if errors.Is(err, gerrors.ErrStoreUnavailable) {
				logger.Warnf("%s store is not ready: %v", cfg.Store.Backend, err)
				return err
			}
			return retry.Stop(err)
		}
		store = opened
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}

	logger.Infof("%s store opened", cfg.Store.Backend)
	return store, nil
}

// newStore creates the store of the configured backend
func newStore(cfg *config.Config, logger log.Logger) (kvstore.Store, error) {
	switch cfg.Store.Backend {
	case kvstore.BackendEtcd:
		etcdConfig := cfg.EtcdConfig()
		if cfg.Etcd.TLS.Enabled() {
			conn, err := secureconn.NewSecureConnFromFiles(cfg.Etcd.TLS.CAFile, cfg.Etcd.TLS.CertFile, cfg.Etcd.TLS.KeyFile)
			if err != nil {
				return nil, err
			}
			etcdConfig.TLS = conn.ClientConfig()
		}
		return etcd.NewStore(etcdConfig)
	case kvstore.BackendEmbedded:
		return embedded.NewStore(&embedded.Config{
			Name:       cfg.Embedded.Name,
			Dir:        cfg.Embedded.Dir,
			ClientURLs: []string{cfg.Embedded.ClientURL},
			PeerURLs:   []string{cfg.Embedded.PeerURL},
			Timeout:    cfg.Etcd.Timeout,
			Logger:     logger,
		})
	case kvstore.BackendMemory:
		return memory.NewStore(), nil
	case kvstore.BackendBolt:
		return bolt.NewStore(cfg.Bolt.Path)
	default:
		return nil, fmt.Errorf("%w: %q", gerrors.ErrInvalidBackend, cfg.Store.Backend)
	}
}
