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
	"fmt"
	"net/http"

	apperrors "github.com/sirseerhq/listsync/internal/errors"
)

// StatusError is a failure reported by the backend itself, either through the
// HTTP status or through the result code of the response envelope.
type StatusError struct {
	// Op names the call that failed, such as "list posts".
	Op string

	// Status is the HTTP status, or 0 when the transport succeeded and the
	// envelope carried the failure.
	Status int

	// Code is the envelope result code, or 0 when no envelope was decoded.
	Code int

	Message string
}

func (e *StatusError) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s: http %d: %s", e.Op, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s: http %d %s", e.Op, e.Status, http.StatusText(e.Status))
	default:
		return fmt.Sprintf("%s: code %d: %s", e.Op, e.Code, e.Message)
	}
}

// effective returns the status used for classification. Envelope codes
// follow HTTP numbering on this backend.
func (e *StatusError) effective() int {
	if e.Status != 0 {
		return e.Status
	}
	return e.Code
}

// Unwrap exposes the matching sentinel so that errors.Is works on the result.
func (e *StatusError) Unwrap() error {
	switch e.effective() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.ErrInvalidToken
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	case http.StatusTooManyRequests:
		return apperrors.ErrRateLimit
	default:
		return apperrors.ErrServer
	}
}

func (e *StatusError) IsAuthError() bool {
	s := e.effective()
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

func (e *StatusError) IsNotFoundError() bool { return e.effective() == http.StatusNotFound }

func (e *StatusError) IsRateLimitError() bool { return e.effective() == http.StatusTooManyRequests }

func (e *StatusError) IsServerError() bool {
	return !e.IsAuthError() && !e.IsNotFoundError() && !e.IsRateLimitError()
}

// Temporary reports whether the same request may succeed later. Only gateway
// and server-side HTTP failures qualify; envelope codes describe the request.
func (e *StatusError) Temporary() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}
