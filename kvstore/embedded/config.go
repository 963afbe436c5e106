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

package embedded

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	goset "github.com/deckarep/golang-set/v2"

	"github.com/tochemey/sketcd/internal/validation"
	"github.com/tochemey/sketcd/log"
)

const (
	defaultStartTimeout = time.Minute
	defaultTimeout      = 5 * time.Second
)

// Config holds the configuration of the in-process etcd server
type Config struct {
	// Name is the member name of the single node cluster
	Name string
	// Dir is the data directory. Data survives restarts.
	Dir string
	// ClientURLs are the URLs served to etcd clients
	ClientURLs []string
	// PeerURLs are the URLs served to cluster peers
	PeerURLs []string
	// StartTimeout bounds the wait for the server to be ready
	StartTimeout time.Duration
	// Timeout bounds every single store operation
	Timeout time.Duration
	// Logger receives the server lifecycle logs
	Logger log.Logger
}

var _ validation.Validator = (*Config)(nil)

// Validate implements validation.Validator.
func (c *Config) Validate() error {
	return validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("Name", c.Name)).
		AddValidator(validation.NewEmptyStringValidator("Dir", c.Dir)).
		AddAssertion(len(c.ClientURLs) > 0, "ClientURLs must not be empty").
		AddAssertion(len(c.PeerURLs) > 0, "PeerURLs must not be empty").
		Validate()
}

// Sanitize fills the zero values with defaults.
func (c *Config) Sanitize() {
	if c.StartTimeout <= 0 {
		c.StartTimeout = defaultStartTimeout
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Logger == nil {
		c.Logger = log.DefaultLogger
	}
}

// parseURLs parses the given URLs, dropping blanks and duplicates while
// keeping the given order.
func parseURLs(raw []string) ([]url.URL, error) {
	seen := goset.NewThreadUnsafeSet[string]()
	urls := make([]url.URL, 0, len(raw))
	for _, value := range raw {
		value = strings.TrimSpace(value)
		if value == "" || !seen.Add(value) {
			continue
		}

		parsed, err := url.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("invalid url=(%s): %w", value, err)
		}

		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return nil, fmt.Errorf("invalid url=(%s): %w", value, errors.New("scheme must be http or https"))
		}

		if parsed.Host == "" {
			return nil, fmt.Errorf("invalid url=(%s): %w", value, errors.New("host is empty"))
		}

		urls = append(urls, *parsed)
	}

	if len(urls) == 0 {
		return nil, errors.New("no url given")
	}
	return urls, nil
}
