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
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/sketcd/config"
	"github.com/tochemey/sketcd/log"
	"github.com/tochemey/sketcd/server"
	"github.com/tochemey/sketcd/telemetry"
	"github.com/tochemey/sketcd/users"
)

const (
	healthCheckInterval = 30 * time.Second
	flushTimeout        = 5 * time.Second
)

// serveCmd runs the HTTP server until SIGINT or SIGTERM
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the users API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cmd.Flags(), configFile)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, os.Stdout, os.Stderr)
	},
}

func init() {
	flags := serveCmd.Flags()
	flags.String("host", "", "listen host")
	flags.Int("port", 0, "listen port")
	flags.String("backend", "", "store backend: etcd, embedded, memory or bolt")
	flags.String("namespace", "", "key prefix of user records")
	flags.StringSlice("endpoints", nil, "etcd endpoints")
	flags.String("root", "", "key prefix applied to every etcd key")
	flags.String("bolt-path", "", "bolt database file")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	rootCmd.AddCommand(serveCmd)
}

// serve runs the service until ctx is done. Logs go to logOutput and, when
// enabled, spans go to traceOutput.
func serve(ctx context.Context, cfg *config.Config, logOutput, traceOutput io.Writer) error {
	logger := log.NewZap(cfg.LogLevel(), logOutput)
	defer func() { _ = logger.Flush() }()

	if !cfg.Telemetry.Traces {
		traceOutput = nil
	}

	providers, err := telemetry.NewProviders(serviceName, traceOutput)
	if err != nil {
		return err
	}

	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
		defer cancel()
		if err := providers.Shutdown(flushCtx); err != nil {
			logger.Warnf("failed to flush telemetry: %v", err)
		}
	}()

	tel := providers.Telemetry()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := store.Close(); err != nil {
			logger.Error(fmt.Errorf("failed to close store: %w", err))
		}
	}()

	repository, err := users.NewRepository(store,
		users.WithNamespace(cfg.Store.Namespace),
		users.WithLogger(logger),
		users.WithTelemetry(tel))
	if err != nil {
		return err
	}

	options := []server.Option{
		server.WithLogger(logger),
		server.WithTelemetry(tel),
		server.WithStopTimeout(cfg.Server.StopTimeout),
	}

	if cfg.Telemetry.Metrics {
		options = append(options, server.WithMetricsHandler(providers.MetricsHandler()))
	}

	srv := server.New(cfg.Server.Host, cfg.Server.Port, repository, options...)
	if err := srv.Start(ctx); err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		watchStore(groupCtx, repository, logger, healthCheckInterval)
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		return srv.Stop(context.WithoutCancel(ctx))
	})

	return group.Wait()
}

// watchStore pings the store every interval and logs when it cannot be reached
func watchStore(ctx context.Context, repository *users.Repository, logger log.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := repository.Ping(ctx)
			switch {
			case err != nil && healthy:
				logger.Warnf("store is unreachable: %v", err)
				healthy = false
			case err == nil && !healthy:
				logger.Info("store is reachable again")
				healthy = true
			}
		}
	}
}
