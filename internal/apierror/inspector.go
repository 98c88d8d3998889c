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
	"strings"

	apperrors "github.com/sirseerhq/listsync/internal/errors"
)

// Inspector provides methods for analyzing community API errors.
type Inspector interface {
	// IsAuthError returns true if the error represents an authentication or authorization failure.
	IsAuthError(err error) bool

	// IsNotFoundError returns true if the error represents a resource not found error.
	IsNotFoundError(err error) bool

	// IsRateLimitError returns true if the error represents a rate limit error.
	IsRateLimitError(err error) bool

	// IsNetworkError returns true if the error represents a network connectivity error.
	IsNetworkError(err error) bool

	// IsServerError returns true if the backend answered with a failure status or code.
	IsServerError(err error) bool

	// IsParseError returns true if the response could not be decoded.
	IsParseError(err error) bool
}

// MessageInspector implements Inspector using the sentinel errors and, when
// those are absent, the error text.
type MessageInspector struct{}

// NewInspector creates a new MessageInspector.
func NewInspector() Inspector {
	return &MessageInspector{}
}

func containsAny(err error, needles ...string) bool {
	errStr := strings.ToLower(err.Error())
	for _, n := range needles {
		if strings.Contains(errStr, n) {
			return true
		}
	}
	return false
}

// IsAuthError checks if the error is an authentication or authorization error.
func (i *MessageInspector) IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, apperrors.ErrInvalidToken) {
		return true
	}
	return containsAny(err, "401", "403", "unauthorized", "forbidden", "token expired", "authentication")
}

// IsNotFoundError checks if the error is a not found error.
func (i *MessageInspector) IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return true
	}
	return containsAny(err, "404", "not found", "does not exist")
}

// IsRateLimitError checks if the error is a rate limit error.
func (i *MessageInspector) IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, apperrors.ErrRateLimit) {
		return true
	}
	return containsAny(err, "rate limit", "429", "too many requests")
}

// IsNetworkError checks if the error is a network connectivity error.
// Deadline expiry counts; an explicit cancellation does not.
func (i *MessageInspector) IsNetworkError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, apperrors.ErrNetworkFailure) ||
		errors.Is(err, apperrors.ErrCircuitOpen) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return containsAny(err,
		"connection refused",
		"connection reset",
		"no such host",
		"timeout",
		"temporary failure",
		"dial tcp",
		"tls handshake",
		"network is unreachable",
		"unexpected eof",
	)
}

// IsServerError checks if the error is a failure reported by the backend.
func (i *MessageInspector) IsServerError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, apperrors.ErrServer) {
		return true
	}
	return containsAny(err, "500", "502", "503", "504", "internal server error", "bad gateway", "service unavailable")
}

// IsParseError checks if the error is a response decoding error.
func (i *MessageInspector) IsParseError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, apperrors.ErrParse) {
		return true
	}
	return containsAny(err, "invalid character", "cannot unmarshal", "unexpected end of json", "malformed")
}

// ErrorChainInspector wraps a base inspector and adds support for checking errors
// in the error chain using errors.As.
type ErrorChainInspector struct {
	base Inspector
}

// NewErrorChainInspector creates a new ErrorChainInspector that checks both
// the error chain and falls back to the base inspector.
func NewErrorChainInspector(base Inspector) Inspector {
	return &ErrorChainInspector{base: base}
}

// IsAuthError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsAuthError(err error) bool {
	var authErr interface{ IsAuthError() bool }
	if errors.As(err, &authErr) && authErr.IsAuthError() {
		return true
	}
	return e.base.IsAuthError(err)
}

// IsNotFoundError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsNotFoundError(err error) bool {
	var notFoundErr interface{ IsNotFoundError() bool }
	if errors.As(err, &notFoundErr) && notFoundErr.IsNotFoundError() {
		return true
	}
	return e.base.IsNotFoundError(err)
}

// IsRateLimitError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsRateLimitError(err error) bool {
	var rateLimitErr interface{ IsRateLimitError() bool }
	if errors.As(err, &rateLimitErr) && rateLimitErr.IsRateLimitError() {
		return true
	}
	return e.base.IsRateLimitError(err)
}

// IsNetworkError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsNetworkError(err error) bool {
	var networkErr interface{ IsNetworkError() bool }
	if errors.As(err, &networkErr) && networkErr.IsNetworkError() {
		return true
	}
	return e.base.IsNetworkError(err)
}

// IsServerError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsServerError(err error) bool {
	var serverErr interface{ IsServerError() bool }
	if errors.As(err, &serverErr) && serverErr.IsServerError() {
		return true
	}
	return e.base.IsServerError(err)
}

// IsParseError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsParseError(err error) bool {
	var parseErr interface{ IsParseError() bool }
	if errors.As(err, &parseErr) && parseErr.IsParseError() {
		return true
	}
	return e.base.IsParseError(err)
}

// Default is the inspector used by KindOf and IsRetryable.
var Default = NewErrorChainInspector(NewInspector())
