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
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/sirseerhq/listsync/pkg/version"
)

// maxResponseBytes caps every response body read from the backend.
const maxResponseBytes = 10 * 1024 * 1024

// errResponseTooLarge is returned once a body passes maxResponseBytes. The
// backend answered, so it is not a network failure.
var errResponseTooLarge = errors.New("response size exceeded limit")

// limitedReader fails reads once more than limit bytes have been consumed.
type limitedReader struct {
	io.ReadCloser
	limit int64
	read  int64
}

func (lr *limitedReader) Read(p []byte) (n int, err error) {
	if lr.read >= lr.limit {
		return 0, fmt.Errorf("%w of %d bytes", errResponseTooLarge, lr.limit)
	}

	remaining := lr.limit - lr.read
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err = lr.ReadCloser.Read(p)
	lr.read += int64(n)

	return n, err
}

// authTransport adds the bearer token and User-Agent to each request and
// caps the response body.
type authTransport struct {
	token string
	base  http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	req = req.Clone(req.Context())

	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.Body != nil {
		resp.Body = &limitedReader{
			ReadCloser: resp.Body,
			limit:      maxResponseBytes,
		}
	}

	return resp, nil
}

// rateLimitTransport spaces requests out with a token bucket so that a long
// pull stays under the backend's per-client throttle.
type rateLimitTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func newRateLimitTransport(base http.RoundTripper, rps float64, burst int) http.RoundTripper {
	if rps <= 0 {
		return base
	}
	if burst < 1 {
		burst = 1
	}
	return &rateLimitTransport{
		base:    base,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return t.base.RoundTrip(req)
}

// newHTTPClient builds the client shared by the REST and GraphQL transports.
func newHTTPClient(token string, timeout time.Duration, rps float64, burst int) *http.Client {
	// Create optimized transport with connection pooling
	pooled := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Timeout: timeout,
		Transport: newRateLimitTransport(&authTransport{
			token: token,
			base:  pooled,
		}, rps, burst),
	}
}
