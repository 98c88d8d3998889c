// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration management for listsync with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. List-specific configuration
//  4. Configuration file
//  5. Built-in defaults
//
// Flags are applied by the command layer; this package handles the rest.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sirseerhq/listsync/internal/listsync"
)

// Environment variables read by applyEnvOverrides.
const (
	EnvAPIEndpoint     = "LISTSYNC_API_ENDPOINT"
	EnvGraphQLEndpoint = "LISTSYNC_GRAPHQL_ENDPOINT"
	EnvTransport       = "LISTSYNC_TRANSPORT"
	EnvPageSize        = "LISTSYNC_PAGE_SIZE"
	EnvStateDir        = "LISTSYNC_STATE_DIR"
	EnvLogLevel        = "LISTSYNC_LOG_LEVEL"
)

// MaxPageSize is the largest page the backend serves.
const MaxPageSize = 100

// LoadConfig loads configuration from configPath, or from the first file
// found among:
//   - .listsync.yaml (current directory)
//   - .listsync.yml (current directory)
//   - ~/.listsync/config.yaml
//   - ~/.listsync/config.yml
//
// Environment overrides are applied afterwards and ~ is expanded in the
// state directory. A missing file in the standard locations is not an error.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		home := os.Getenv("HOME")
		defaultPaths := []string{
			".listsync.yaml",
			".listsync.yml",
			filepath.Join(home, ".listsync", "config.yaml"),
			filepath.Join(home, ".listsync", "config.yml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Defaults.StateDir = expandPath(cfg.Defaults.StateDir)
	if cfg.Lists == nil {
		cfg.Lists = make(map[string]ListConfig)
	}

	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies LISTSYNC_* variables. A malformed page size is
// reported rather than ignored.
func applyEnvOverrides(cfg *Config) error {
	if endpoint := os.Getenv(EnvAPIEndpoint); endpoint != "" {
		cfg.API.Endpoint = endpoint
	}
	if endpoint := os.Getenv(EnvGraphQLEndpoint); endpoint != "" {
		cfg.API.GraphQLEndpoint = endpoint
	}
	if transport := os.Getenv(EnvTransport); transport != "" {
		cfg.API.Transport = strings.ToLower(strings.TrimSpace(transport))
	}
	if pageSize := os.Getenv(EnvPageSize); pageSize != "" {
		size, err := parsePositiveInt(pageSize)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPageSize, err)
		}
		cfg.Defaults.PageSize = size
	}
	if stateDir := os.Getenv(EnvStateDir); stateDir != "" {
		cfg.Defaults.StateDir = stateDir
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Logging.Level = level
	}
	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

func parsePositiveInt(s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

// PageSizeFor returns the page size for list, honouring a per-list
// override when one is set.
func (c *Config) PageSizeFor(list string) int {
	if lc, ok := c.Lists[list]; ok && lc.PageSize > 0 {
		return lc.PageSize
	}
	return c.Defaults.PageSize
}

// HasMorePolicyFor returns the has-more policy name for list.
func (c *Config) HasMorePolicyFor(list string) string {
	if lc, ok := c.Lists[list]; ok && lc.HasMorePolicy != "" {
		return lc.HasMorePolicy
	}
	return c.Defaults.HasMorePolicy
}

// Token reads the API token from the environment variable named by
// api.token_env.
func (c *Config) Token() string {
	if c.API.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.API.TokenEnv)
}

// Validate checks the configuration for values the client cannot work with.
// Call it after loading and after applying flag overrides.
func (c *Config) Validate() error {
	if err := validatePageSize("default page size", c.Defaults.PageSize); err != nil {
		return err
	}
	for name, lc := range c.Lists {
		if lc.PageSize != 0 {
			if err := validatePageSize(fmt.Sprintf("page size for list %q", name), lc.PageSize); err != nil {
				return err
			}
		}
		if lc.HasMorePolicy != "" && !validPolicy(lc.HasMorePolicy) {
			return fmt.Errorf("unknown has_more_policy %q for list %q", lc.HasMorePolicy, name)
		}
	}
	if !validPolicy(c.Defaults.HasMorePolicy) {
		return fmt.Errorf("unknown has_more_policy %q (want raw-count or new-count)", c.Defaults.HasMorePolicy)
	}

	switch c.API.Transport {
	case TransportREST:
		if c.API.Endpoint == "" {
			return fmt.Errorf("API endpoint cannot be empty")
		}
	case TransportGraphQL:
		if c.API.GraphQLEndpoint == "" {
			return fmt.Errorf("GraphQL endpoint cannot be empty")
		}
	default:
		return fmt.Errorf("unknown transport %q (want %s or %s)", c.API.Transport, TransportREST, TransportGraphQL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("API timeout cannot be negative, got: %s", c.API.Timeout)
	}

	if c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("rate limit must not be negative, got: %g", c.RateLimit.RequestsPerSecond)
	}
	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit burst must be positive, got: %d", c.RateLimit.Burst)
	}

	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative, got: %d", c.Retry.MaxRetries)
	}
	if c.Retry.MaxRetries > 0 && c.Retry.BackoffMultiplier < 1 {
		return fmt.Errorf("backoff multiplier must be at least 1, got: %g", c.Retry.BackoffMultiplier)
	}

	if c.Breaker.Enabled && (c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1) {
		return fmt.Errorf("breaker failure ratio must be in (0, 1], got: %g", c.Breaker.FailureRatio)
	}

	switch c.Defaults.OutputFormat {
	case "ndjson", "table":
	default:
		return fmt.Errorf("unknown output format %q (want ndjson or table)", c.Defaults.OutputFormat)
	}
	return nil
}

func validatePageSize(what string, n int) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", what, n)
	}
	if n > MaxPageSize {
		return fmt.Errorf("%s %d exceeds API limit of %d", what, n, MaxPageSize)
	}
	return nil
}

func validPolicy(name string) bool {
	_, err := listsync.ParseHasMorePolicy(name)
	return err == nil
}
