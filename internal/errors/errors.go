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

// Package errors defines sentinel errors shared by the community API clients,
// the list synchronizer's callers and the CLI. Transports wrap these with %w so
// that callers can classify a failure with errors.Is regardless of which
// backend produced it. Each sentinel maps to a CLI exit code.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrInvalidToken indicates the API rejected the credentials.
	// Maps to exit code 2.
	ErrInvalidToken = errors.New("invalid api token")

	// ErrNotFound indicates the requested board, post, group or chat does not
	// exist or is not visible to the caller.
	// Maps to exit code 2.
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimit indicates the API throttled the client.
	// Maps to exit code 2.
	ErrRateLimit = errors.New("api rate limit exceeded")

	// ErrNetworkFailure indicates a transport problem: timeout, refused
	// connection, DNS failure or a dropped response.
	// Maps to exit code 3.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrCircuitOpen indicates requests are being short-circuited after
	// repeated network or server failures.
	// Maps to exit code 3.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrServer indicates the backend answered with a non-success status or
	// result code.
	// Maps to exit code 4.
	ErrServer = errors.New("server error")

	// ErrParse indicates the response body could not be decoded.
	// Maps to exit code 4.
	ErrParse = errors.New("malformed response")
)
