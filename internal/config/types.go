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

// Package config types define the configuration structures used throughout
// listsync. These types represent settings that can be loaded from YAML
// configuration files, environment variables, or command-line flags.
package config

import "time"

// Transport names accepted in api.transport.
const (
	TransportREST    = "rest"
	TransportGraphQL = "graphql"
)

// Config is the complete listsync configuration.
type Config struct {
	API       APIConfig             `yaml:"api"`
	Defaults  DefaultsConfig        `yaml:"defaults"`
	Lists     map[string]ListConfig `yaml:"lists"`
	RateLimit RateLimitConfig       `yaml:"rate_limit"`
	Retry     RetryConfig           `yaml:"retry"`
	Breaker   BreakerConfig         `yaml:"breaker"`
	Logging   LoggingConfig         `yaml:"logging"`
}

// APIConfig points listsync at the community backend. Transport selects
// between the REST envelope API and the GraphQL endpoint.
type APIConfig struct {
	Endpoint        string        `yaml:"endpoint"`
	GraphQLEndpoint string        `yaml:"graphql_endpoint"`
	Transport       string        `yaml:"transport"`
	TokenEnv        string        `yaml:"token_env"`
	Timeout         time.Duration `yaml:"timeout"`
}

// DefaultsConfig applies to every list unless a per-list entry overrides it.
type DefaultsConfig struct {
	PageSize      int    `yaml:"page_size"`
	HasMorePolicy string `yaml:"has_more_policy"`
	OutputFormat  string `yaml:"output_format"`
	StateDir      string `yaml:"state_dir"`
}

// ListConfig holds per-list overrides keyed by feed name, for example
// "search". Zero values fall back to the defaults.
type ListConfig struct {
	PageSize      int    `yaml:"page_size"`
	HasMorePolicy string `yaml:"has_more_policy"`
}

// RateLimitConfig throttles outgoing requests. A zero rate disables the
// limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// RetryConfig controls backoff for retryable failures.
type RetryConfig struct {
	MaxRetries        int           `yaml:"max_retries"`
	InitialBackoff    time.Duration `yaml:"initial_backoff"`
	MaxBackoff        time.Duration `yaml:"max_backoff"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
}

// BreakerConfig controls the circuit breaker in front of the backend.
type BreakerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	MaxRequests  uint32        `yaml:"max_requests"`
	Interval     time.Duration `yaml:"interval"`
	Timeout      time.Duration `yaml:"timeout"`
	FailureRatio float64       `yaml:"failure_ratio"`
	MinRequests  uint32        `yaml:"min_requests"`
}

// LoggingConfig selects log level, format (text or json) and destination
// (stderr or stdout).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DefaultConfig returns a Config with defaults suitable for a local
// backend.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Endpoint:        "http://localhost:8080/api",
			GraphQLEndpoint: "http://localhost:8080/graphql",
			Transport:       TransportREST,
			TokenEnv:        "LISTSYNC_TOKEN",
			Timeout:         30 * time.Second,
		},
		Defaults: DefaultsConfig{
			PageSize:      20,
			HasMorePolicy: "raw-count",
			OutputFormat:  "ndjson",
			StateDir:      "~/.listsync/state",
		},
		Lists: make(map[string]ListConfig),
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 10,
			Burst:             5,
		},
		Retry: RetryConfig{
			MaxRetries:        3,
			InitialBackoff:    time.Second,
			MaxBackoff:        30 * time.Second,
			BackoffMultiplier: 2.0,
		},
		Breaker: BreakerConfig{
			Enabled:      true,
			MaxRequests:  1,
			Interval:     60 * time.Second,
			Timeout:      30 * time.Second,
			FailureRatio: 0.6,
			MinRequests:  5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}
