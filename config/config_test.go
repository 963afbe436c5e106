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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/sketcd/kvstore"
	"github.com/tochemey/sketcd/log"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sketcd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("With defaults", func(t *testing.T) {
		config, err := Load(nil, "")
		require.NoError(t, err)
		assert.Equal(t, "0.0.0.0", config.Server.Host)
		assert.Equal(t, 8080, config.Server.Port)
		assert.Equal(t, kvstore.BackendEtcd, config.Store.Backend)
		assert.Equal(t, "Users", config.Store.Namespace)
		assert.Equal(t, []string{"127.0.0.1:2379"}, config.Etcd.Endpoints)
		assert.Equal(t, 5*time.Second, config.Etcd.Timeout)
		assert.Equal(t, 30*time.Second, config.Store.StartupTimeout)
		assert.Equal(t, log.InfoLevel, config.LogLevel())
		assert.Equal(t, "0.0.0.0:8080", config.Address())
		assert.False(t, config.Etcd.TLS.Enabled())
		assert.True(t, config.Telemetry.Metrics)
		assert.False(t, config.Telemetry.Traces)
	})
	t.Run("With config file", func(t *testing.T) {
		path := writeFile(t, `
server:
  port: 9090
store:
  backend: bolt
  namespace: Books
bolt:
  path: /tmp/books.db
etcd:
  endpoints:
    - etcd-0:2379
    - etcd-1:2379
  timeout: 2s
log:
  level: debug
`)
		config, err := Load(nil, path)
		require.NoError(t, err)
		assert.Equal(t, 9090, config.Server.Port)
		assert.Equal(t, kvstore.BackendBolt, config.Store.Backend)
		assert.Equal(t, "Books", config.Store.Namespace)
		assert.Equal(t, "/tmp/books.db", config.Bolt.Path)
		assert.Equal(t, []string{"etcd-0:2379", "etcd-1:2379"}, config.Etcd.Endpoints)
		assert.Equal(t, 2*time.Second, config.Etcd.Timeout)
		assert.Equal(t, log.DebugLevel, config.LogLevel())
	})
	t.Run("With missing explicit file", func(t *testing.T) {
		config, err := Load(nil, filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Nil(t, config)
	})
	t.Run("With malformed file", func(t *testing.T) {
		path := writeFile(t, "server: [")
		config, err := Load(nil, path)
		require.Error(t, err)
		assert.Nil(t, config)
	})
	t.Run("With environment", func(t *testing.T) {
		t.Setenv("SKETCD_SERVER_PORT", "7070")
		t.Setenv("SKETCD_STORE_BACKEND", "Memory")
		t.Setenv("SKETCD_ETCD_ENDPOINTS", "a:2379, b:2379")
		t.Setenv("SKETCD_ETCD_USERNAME", "root")
		t.Setenv("SKETCD_ETCD_PASSWORD", "secret")
		t.Setenv("SKETCD_TELEMETRY_TRACES", "true")

		config, err := Load(nil, "")
		require.NoError(t, err)
		assert.Equal(t, 7070, config.Server.Port)
		assert.Equal(t, kvstore.BackendMemory, config.Store.Backend)
		assert.Equal(t, []string{"a:2379", "b:2379"}, config.Etcd.Endpoints)
		assert.Equal(t, "root", config.Etcd.Username)
		assert.Equal(t, "secret", config.Etcd.Password)
		assert.True(t, config.Telemetry.Traces)
	})
	t.Run("With flags over environment", func(t *testing.T) {
		t.Setenv("SKETCD_SERVER_PORT", "7070")
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.Int("port", 8080, "")
		flags.String("backend", "", "")
		require.NoError(t, flags.Parse([]string{"--port", "6060", "--backend", "memory"}))

		config, err := Load(flags, "")
		require.NoError(t, err)
		assert.Equal(t, 6060, config.Server.Port)
		assert.Equal(t, kvstore.BackendMemory, config.Store.Backend)
	})
	t.Run("With unset flags", func(t *testing.T) {
		t.Setenv("SKETCD_SERVER_PORT", "7070")
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.Int("port", 8080, "")
		require.NoError(t, flags.Parse(nil))

		config, err := Load(flags, "")
		require.NoError(t, err)
		assert.Equal(t, 7070, config.Server.Port)
	})
	t.Run("With invalid values", func(t *testing.T) {
		path := writeFile(t, `
server:
  host: ""
store:
  backend: redis
  namespace: "bad namespace"
log:
  level: loud
`)
		config, err := Load(nil, path)
		require.Error(t, err)
		assert.Nil(t, config)
		assert.Contains(t, err.Error(), "invalid address")
		assert.Contains(t, err.Error(), "store.backend")
		assert.Contains(t, err.Error(), "store.namespace")
		assert.Contains(t, err.Error(), "log.level")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		config := &Config{
			Server: Server{Host: "127.0.0.1", Port: 8080},
			Store:  Store{Backend: kvstore.BackendEtcd, Namespace: "Users"},
			Etcd: Etcd{
				Endpoints:   []string{"127.0.0.1:2379"},
				DialTimeout: time.Second,
				Timeout:     time.Second,
			},
		}
		config.Sanitize()
		return config
	}

	t.Run("With valid config", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})
	t.Run("With etcd without endpoints", func(t *testing.T) {
		config := valid()
		config.Etcd.Endpoints = nil
		require.Error(t, config.Validate())
	})
	t.Run("With etcd password without username", func(t *testing.T) {
		config := valid()
		config.Etcd.Password = "secret"
		require.Error(t, config.Validate())
	})
	t.Run("With partial TLS", func(t *testing.T) {
		config := valid()
		config.Etcd.TLS.CertFile = "cert.pem"
		require.Error(t, config.Validate())

		config.Etcd.TLS.KeyFile = "key.pem"
		config.Etcd.TLS.CAFile = "ca.pem"
		require.NoError(t, config.Validate())
	})
	t.Run("With bolt without path", func(t *testing.T) {
		config := valid()
		config.Store.Backend = kvstore.BackendBolt
		require.Error(t, config.Validate())
	})
	t.Run("With embedded without directory", func(t *testing.T) {
		config := valid()
		config.Store.Backend = kvstore.BackendEmbedded
		config.Embedded = Embedded{Name: "sketcd", ClientURL: "http://127.0.0.1:2379", PeerURL: "http://127.0.0.1:2380"}
		require.Error(t, config.Validate())

		config.Embedded.Dir = t.TempDir()
		require.NoError(t, config.Validate())
	})
	t.Run("With memory ignoring etcd", func(t *testing.T) {
		config := valid()
		config.Store.Backend = kvstore.BackendMemory
		config.Etcd.Endpoints = nil
		require.NoError(t, config.Validate())
	})
}

func TestSanitize(t *testing.T) {
	config := &Config{
		Server: Server{Host: " localhost "},
		Store:  Store{Backend: " ETCD ", Namespace: " Users "},
		Etcd:   Etcd{Endpoints: []string{"a:1,b:2", " ", "c:3"}},
		Log:    Log{Level: "WARN"},
	}
	config.Sanitize()

	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, kvstore.BackendEtcd, config.Store.Backend)
	assert.Equal(t, "Users", config.Store.Namespace)
	assert.Equal(t, []string{"a:1", "b:2", "c:3"}, config.Etcd.Endpoints)
	assert.Equal(t, 30*time.Second, config.Server.StopTimeout)
	assert.Equal(t, log.WarningLevel, config.LogLevel())
}
