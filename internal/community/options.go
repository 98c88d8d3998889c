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

package community

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sirseerhq/listsync/internal/logging"
)

type clientConfig struct {
	token      string
	timeout    time.Duration
	rps        float64
	burst      int
	breaker    *BreakerSettings
	httpClient *http.Client
	logger     *logrus.Entry
}

// Option configures a RESTClient or GraphQLClient.
type Option func(*clientConfig)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *clientConfig) {
		c.token = token
	}
}

// WithTimeout bounds each HTTP request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithRateLimit spaces requests to at most rps per second with the given
// burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *clientConfig) {
		c.rps = rps
		c.burst = burst
	}
}

// WithBreaker installs a circuit breaker in front of the backend.
func WithBreaker(s BreakerSettings) Option {
	return func(c *clientConfig) {
		c.breaker = &s
	}
}

// WithoutBreaker disables the circuit breaker.
func WithoutBreaker() Option {
	return func(c *clientConfig) {
		c.breaker = nil
	}
}

// WithHTTPClient replaces the HTTP client. Token, timeout and rate limit
// options are then ignored; the caller's client is used as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = hc
	}
}

// WithLogger sets the log destination for request and breaker events.
func WithLogger(l *logrus.Entry) Option {
	return func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

func newClientConfig(opts []Option) clientConfig {
	breaker := DefaultBreakerSettings()
	c := clientConfig{
		timeout: 30 * time.Second,
		breaker: &breaker,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c clientConfig) client() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return newHTTPClient(c.token, c.timeout, c.rps, c.burst)
}
