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

// Package config loads the sketcd configuration from defaults, an optional
// YAML file, SKETCD_ prefixed environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tochemey/sketcd/internal/validation"
	"github.com/tochemey/sketcd/kvstore"
	"github.com/tochemey/sketcd/kvstore/etcd"
	"github.com/tochemey/sketcd/log"
	"github.com/tochemey/sketcd/users"
)

const (
	// EnvPrefix prefixes every environment variable read by Load
	EnvPrefix = "SKETCD"
	// FileName is the config file name searched for, without extension
	FileName = "sketcd"

	namespacePattern = `^[A-Za-z0-9_./-]+$`
)

// Config is the whole sketcd configuration
type Config struct {
	Server    Server    `mapstructure:"server"`
	Store     Store     `mapstructure:"store"`
	Etcd      Etcd      `mapstructure:"etcd"`
	Embedded  Embedded  `mapstructure:"embedded"`
	Bolt      Bolt      `mapstructure:"bolt"`
	Log       Log       `mapstructure:"log"`
	Telemetry Telemetry `mapstructure:"telemetry"`
}

// Server configures the HTTP listener
type Server struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	StopTimeout time.Duration `mapstructure:"stop_timeout"`
}

// Store selects the key-value backend
type Store struct {
	// Backend is one of etcd, embedded, memory or bolt
	Backend string `mapstructure:"backend"`
	// Namespace is the key prefix of user records
	Namespace string `mapstructure:"namespace"`
	// StartupTimeout bounds the wait for the store to answer at startup
	StartupTimeout time.Duration `mapstructure:"startup_timeout"`
}

// Etcd configures the etcd client
type Etcd struct {
	Endpoints   []string      `mapstructure:"endpoints"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	Root        string        `mapstructure:"root"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Timeout     time.Duration `mapstructure:"timeout"`
	TLS         TLS           `mapstructure:"tls"`
}

// TLS holds the PEM files of a mutual TLS connection. It is disabled when
// CertFile is empty.
type TLS struct {
	CAFile   string `mapstructure:"ca_file"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// Enabled reports whether TLS is configured
func (t TLS) Enabled() bool {
	return t.CertFile != ""
}

// Embedded configures the in-process etcd server
type Embedded struct {
	Name      string `mapstructure:"name"`
	Dir       string `mapstructure:"dir"`
	ClientURL string `mapstructure:"client_url"`
	PeerURL   string `mapstructure:"peer_url"`
}

// Bolt configures the single file store
type Bolt struct {
	Path string `mapstructure:"path"`
}

// Log configures the logger
type Log struct {
	Level string `mapstructure:"level"`
}

// Telemetry configures the metrics route and span export
type Telemetry struct {
	// Metrics serves Prometheus metrics on /metrics
	Metrics bool `mapstructure:"metrics"`
	// Traces writes finished spans to stderr
	Traces bool `mapstructure:"traces"`
}

// flagKeys maps command line flag names to configuration keys
var flagKeys = map[string]string{
	"host":      "server.host",
	"port":      "server.port",
	"backend":   "store.backend",
	"namespace": "store.namespace",
	"endpoints": "etcd.endpoints",
	"root":      "etcd.root",
	"bolt-path": "bolt.path",
	"log-level": "log.level",
}

// Defaults returns the default value of every configuration key
func Defaults() map[string]any {
	return map[string]any{
		"server.host":           "0.0.0.0",
		"server.port":           8080,
		"server.stop_timeout":   30 * time.Second,
		"store.backend":         kvstore.BackendEtcd,
		"store.namespace":       users.DefaultNamespace,
		"store.startup_timeout": 30 * time.Second,
		"etcd.endpoints":        []string{"127.0.0.1:2379"},
		"etcd.username":         "",
		"etcd.password":         "",
		"etcd.root":             "",
		"etcd.dial_timeout":     5 * time.Second,
		"etcd.timeout":          5 * time.Second,
		"etcd.tls.ca_file":      "",
		"etcd.tls.cert_file":    "",
		"etcd.tls.key_file":     "",
		"embedded.name":         "sketcd",
		"embedded.dir":          filepath.Join(os.TempDir(), "sketcd-embedded"),
		"embedded.client_url":   "http://127.0.0.1:2379",
		"embedded.peer_url":     "http://127.0.0.1:2380",
		"bolt.path":             "sketcd.db",
		"log.level":             log.InfoLevel.String(),
		"telemetry.metrics":     true,
		"telemetry.traces":      false,
	}
}

// Load reads the configuration. file is an explicit config file path and may
// be empty, in which case sketcd.yaml is searched in the user config
// directory, /etc/sketcd and the working directory. flags may be nil.
func Load(flags *pflag.FlagSet, file string) (*Config, error) {
	v := viper.New()
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	if file != "" {
		v.SetConfigFile(file)
	}

	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, FileName))
	}
	v.AddConfigPath(filepath.Join("/etc", FileName))
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	config := new(Config)
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	config.Sanitize()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Sanitize trims the text values and fills zero durations with defaults
func (c *Config) Sanitize() {
	c.Server.Host = strings.TrimSpace(c.Server.Host)
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	c.Store.Namespace = strings.TrimSpace(c.Store.Namespace)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))

	endpoints := make([]string, 0, len(c.Etcd.Endpoints))
	for _, endpoint := range c.Etcd.Endpoints {
		for _, part := range strings.Split(endpoint, ",") {
			if part = strings.TrimSpace(part); part != "" {
				endpoints = append(endpoints, part)
			}
		}
	}
	c.Etcd.Endpoints = endpoints

	if c.Server.StopTimeout <= 0 {
		c.Server.StopTimeout = 30 * time.Second
	}
	if c.Store.StartupTimeout <= 0 {
		c.Store.StartupTimeout = 30 * time.Second
	}
}

var _ validation.Validator = (*Config)(nil)

// Validate implements validation.Validator. Every failure is reported.
func (c *Config) Validate() error {
	backends := []string{kvstore.BackendEtcd, kvstore.BackendEmbedded, kvstore.BackendMemory, kvstore.BackendBolt}
	_, levelErr := log.ParseLevel(c.Log.Level)

	chain := validation.New(validation.AllErrors()).
		AddValidator(validation.NewTCPAddressValidator(c.Address())).
		AddAssertion(slices.Contains(backends, c.Store.Backend),
			fmt.Sprintf("the [store.backend] must be one of %s", strings.Join(backends, ", "))).
		AddValidator(validation.NewEmptyStringValidator("store.namespace", c.Store.Namespace)).
		AddAssertion(levelErr == nil, fmt.Sprintf("the [log.level] %q is not a log level", c.Log.Level))

	if c.Store.Namespace != "" {
		chain.AddValidator(validation.NewPatternValidator("store.namespace", namespacePattern, c.Store.Namespace))
	}

	switch c.Store.Backend {
	case kvstore.BackendEtcd:
		chain.AddValidator(c.EtcdConfig()).
			AddAssertion(!c.Etcd.TLS.Enabled() || (c.Etcd.TLS.KeyFile != "" && c.Etcd.TLS.CAFile != ""),
				"the [etcd.tls.key_file] and [etcd.tls.ca_file] are required with [etcd.tls.cert_file]")
	case kvstore.BackendEmbedded:
		chain.AddValidator(validation.NewEmptyStringValidator("embedded.name", c.Embedded.Name)).
			AddValidator(validation.NewEmptyStringValidator("embedded.dir", c.Embedded.Dir)).
			AddValidator(validation.NewEmptyStringValidator("embedded.client_url", c.Embedded.ClientURL)).
			AddValidator(validation.NewEmptyStringValidator("embedded.peer_url", c.Embedded.PeerURL))
	case kvstore.BackendBolt:
		chain.AddValidator(validation.NewEmptyStringValidator("bolt.path", c.Bolt.Path))
	}

	return chain.Validate()
}

// Address returns the HTTP listen address
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// LogLevel returns the parsed log level, defaulting to info
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// EtcdConfig returns the etcd store configuration. TLS is left to the caller.
func (c *Config) EtcdConfig() *etcd.Config {
	config := &etcd.Config{
		Endpoints:   c.Etcd.Endpoints,
		Root:        c.Etcd.Root,
		DialTimeout: c.Etcd.DialTimeout,
		Timeout:     c.Etcd.Timeout,
		Username:    c.Etcd.Username,
		Password:    c.Etcd.Password,
	}
	config.Sanitize()
	return config
}
