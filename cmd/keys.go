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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	sketcdhttp "github.com/tochemey/sketcd/internal/http"
	"github.com/tochemey/sketcd/server"
)

var (
	keysAddress string
	keysTimeout time.Duration
)

// keysCmd prints every key of the store through a running server
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List every key of the store through a running server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client := sketcdhttp.NewClient(keysTimeout)
		defer client.CloseIdleConnections()

		request, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet,
			strings.TrimSuffix(keysAddress, "/")+server.BasePath+"/keys", nil)
		if err != nil {
			return err
		}

		response, err := client.Do(request)
		if err != nil {
			return fmt.Errorf("failed to reach %s: %w", keysAddress, err)
		}
		defer response.Body.Close()

		body, err := io.ReadAll(response.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if response.StatusCode != http.StatusOK {
			return fmt.Errorf("server answered %s: %s", response.Status, strings.TrimSpace(string(body)))
		}

		var keys map[string]string
		if err := json.Unmarshal(body, &keys); err != nil {
			return fmt.Errorf("malformed response: %w", err)
		}

		return printKeys(cmd.OutOrStdout(), keys)
	},
}

func init() {
	keysCmd.Flags().StringVar(&keysAddress, "address", sketcdhttp.URL("127.0.0.1", 8080), "server base URL")
	keysCmd.Flags().DurationVar(&keysTimeout, "timeout", 10*time.Second, "request timeout")
	rootCmd.AddCommand(keysCmd)
}

// printKeys writes one key=value line per key in descending key order
func printKeys(out io.Writer, keys map[string]string) error {
	if len(keys) == 0 {
		_, err := fmt.Fprintln(out, "no keys")
		return err
	}

	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	slices.Sort(names)
	slices.Reverse(names)

	for _, name := range names {
		if _, err := fmt.Fprintf(out, "%s=%s\n", name, keys[name]); err != nil {
			return err
		}
	}
	return nil
}
