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
	"context"
	"time"
)

// Item is a backend record that can live in a synchronized list.
type Item interface {
	// Key identifies the record. It must be stable across fetches.
	Key() string

	// OrderKey is the value timestamp-mode cursors advance on,
	// typically a creation or send time in unix milliseconds.
	OrderKey() int64
}

// Request describes one page fetch.
type Request[P any] struct {
	Cursor   Cursor
	PageSize int
	Params   P
}

// Page is the result of one fetch. Total is nil when the backend does not
// report a count.
type Page[T Item] struct {
	Items []T
	Total *int
}

// FetchFunc loads one page. Implementations must honour ctx cancellation and
// be safe for concurrent use; the same function may back many synchronizers.
type FetchFunc[T Item, P any] func(ctx context.Context, req Request[P]) (*Page[T], error)

// State is an immutable snapshot of a synchronized list. Callers must not
// modify Items.
type State[T Item] struct {
	Items       []T
	Loading     bool
	LoadingMore bool
	HasMore     bool
	Cursor      Cursor
	Err         error
	Total       *int

	// Generation increases on every Refresh, Reset, Restore and Close.
	Generation uint64
}

// ErrorMessage returns the last failure as text, or "" when there is none.
func (s State[T]) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Len returns the number of accumulated items.
func (s State[T]) Len() int {
	return len(s.Items)
}

// Op names a synchronizer operation in FetchEvents.
type Op string

const (
	OpRefresh  Op = "refresh"
	OpLoadMore Op = "load_more"
)

// FetchEvent describes a completed fetch. Stale events carry no counts: the
// response was discarded because a newer generation had started.
type FetchEvent struct {
	List     string
	Op       Op
	Cursor   Cursor
	Fetched  int
	Added    int
	Duration time.Duration
	Err      error
	Stale    bool

	// OldestKey and NewestKey span the order keys of the fetched page.
	// Both are zero when the page was empty.
	OldestKey int64
	NewestKey int64
}

// Duplicates returns how many fetched items were dropped as already seen.
func (e FetchEvent) Duplicates() int {
	return e.Fetched - e.Added
}

// Observer receives an event for every fetch a synchronizer completes.
// ObserveFetch is called without the synchronizer's lock held and may be
// invoked from several goroutines.
type Observer interface {
	ObserveFetch(ev FetchEvent)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ev FetchEvent)

// ObserveFetch calls f(ev).
func (f ObserverFunc) ObserveFetch(ev FetchEvent) {
	f(ev)
}
