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

package apierror

import (
	"context"
	"errors"

	apperrors "github.com/sirseerhq/listsync/internal/errors"
)

// Kind is the coarse category of a failure.
type Kind string

const (
	KindNone      Kind = ""
	KindCanceled  Kind = "canceled"
	KindAuth      Kind = "auth"
	KindNotFound  Kind = "not_found"
	KindRateLimit Kind = "rate_limit"
	KindNetwork   Kind = "network"
	KindParse     Kind = "parse"
	KindServer    Kind = "server"
	KindUnknown   Kind = "unknown"
)

// KindOf classifies err with the Default inspector.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case Default.IsAuthError(err):
		return KindAuth
	case Default.IsNotFoundError(err):
		return KindNotFound
	case Default.IsRateLimitError(err):
		return KindRateLimit
	case Default.IsParseError(err):
		return KindParse
	case Default.IsNetworkError(err):
		return KindNetwork
	case Default.IsServerError(err):
		return KindServer
	default:
		return KindUnknown
	}
}

// IsRetryable reports whether repeating the request may succeed: network
// failures, throttling and transient server statuses. An open circuit is
// not retryable; the breaker itself decides when to let traffic through.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, apperrors.ErrCircuitOpen) {
		return false
	}
	if Default.IsNetworkError(err) || Default.IsRateLimitError(err) {
		return true
	}
	var temp interface{ Temporary() bool }
	return errors.As(err, &temp) && temp.Temporary()
}
