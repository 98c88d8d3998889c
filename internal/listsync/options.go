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

package listsync

import (
	"github.com/sirupsen/logrus"

	"github.com/sirseerhq/listsync/internal/logging"
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 20

type options struct {
	name      string
	pageSize  int
	maxSize   int
	mode      CursorMode
	policy    HasMorePolicy
	logger    *logrus.Entry
	observers []Observer
}

// Option configures a Synchronizer.
type Option func(*options)

// WithName labels the list in logs and fetch events.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithPageSize sets the number of items requested per page.
// Non-positive values keep DefaultPageSize.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithMaxPageSize caps the page size at n whatever order the options come
// in. Use it when the backend serves at most n items per request, so the
// size requested is also the size a full page is measured against.
func WithMaxPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSize = n
		}
	}
}

// WithTimestampCursor pages by descending order key instead of page number.
func WithTimestampCursor() Option {
	return func(o *options) {
		o.mode = TimestampMode
	}
}

// WithCursorMode sets the cursor mode explicitly.
func WithCursorMode(mode CursorMode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithHasMorePolicy selects how offset-mode pages decide whether more follow.
func WithHasMorePolicy(p HasMorePolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithLogger sets the log destination. Without it the synchronizer is silent.
func WithLogger(l *logrus.Entry) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver registers an observer for fetch events. It may be given
// several times.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

func defaultOptions() options {
	return options{
		name:     "list",
		pageSize: DefaultPageSize,
		mode:     OffsetMode,
		policy:   RawCount,
		logger:   logging.Discard(),
	}
}
