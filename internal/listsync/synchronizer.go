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
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Synchronizer maintains one deduplicated list fed by a FetchFunc.
// All methods are safe for concurrent use. Refresh and LoadMore block until
// their fetch completes; the state they publish while waiting is visible
// through State and Subscribe.
type Synchronizer[T Item, P any] struct {
	fetch FetchFunc[T, P]
	opts  options
	log   *logrus.Entry

	mu          sync.Mutex
	params      P
	items       []T
	seen        map[string]struct{}
	cursor      Cursor
	loading     bool
	loadingMore bool
	hasMore     bool
	err         error
	total       *int

	// gen identifies the operation allowed to write results. Responses
	// tagged with an older value are dropped.
	gen    uint64
	cancel context.CancelFunc
	closed bool

	subs    map[int]chan State[T]
	nextSub int
}

// New returns an empty synchronizer. HasMore starts false, so the first
// call is expected to be Refresh.
func New[T Item, P any](fetch FetchFunc[T, P], opts ...Option) *Synchronizer[T, P] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxSize > 0 && o.pageSize > o.maxSize {
		o.pageSize = o.maxSize
	}

	return &Synchronizer[T, P]{
		fetch:  fetch,
		opts:   o,
		log:    o.logger.WithFields(logrus.Fields{"list": o.name, "mode": o.mode.String()}),
		seen:   make(map[string]struct{}),
		cursor: InitialCursor(o.mode),
		subs:   make(map[int]chan State[T]),
	}
}

// Name returns the list label given with WithName.
func (s *Synchronizer[T, P]) Name() string { return s.opts.name }

// Mode returns the cursor mode the list pages with.
func (s *Synchronizer[T, P]) Mode() CursorMode { return s.opts.mode }

// PageSize returns the number of items requested per page.
func (s *Synchronizer[T, P]) PageSize() int { return s.opts.pageSize }

// Configure stores the request parameters used by subsequent fetches.
// It does not fetch; call Refresh to load the list for the new parameters.
func (s *Synchronizer[T, P]) Configure(params P) {
	s.mu.Lock()
	s.params = params
	s.mu.Unlock()
}

// Params returns the current request parameters.
func (s *Synchronizer[T, P]) Params() P {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// State returns the current snapshot.
func (s *Synchronizer[T, P]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Refresh discards the list and fetches the first page. It supersedes any
// fetch in flight: the older fetch is cancelled and its response ignored.
// The returned state is the one this call produced, or the current state if
// a newer operation overtook it.
func (s *Synchronizer[T, P]) Refresh(ctx context.Context) State[T] {
	s.mu.Lock()
	if s.closed {
		st := s.snapshotLocked()
		s.mu.Unlock()
		return st
	}

	gen := s.supersedeLocked()
	s.clearLocked()
	s.loading = true

	fctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	req := Request[P]{Cursor: s.cursor, PageSize: s.opts.pageSize, Params: s.params}
	s.publishLocked(s.snapshotLocked())
	s.mu.Unlock()
	defer cancel()

	return s.run(fctx, OpRefresh, gen, req)
}

// LoadMore fetches the page at the current cursor and appends the items not
// already present. It does nothing while another fetch is running or when
// no more pages are expected.
func (s *Synchronizer[T, P]) LoadMore(ctx context.Context) State[T] {
	s.mu.Lock()
	if s.closed || s.loading || s.loadingMore || !s.hasMore {
		st := s.snapshotLocked()
		s.mu.Unlock()
		return st
	}

	gen := s.gen
	s.loadingMore = true

	fctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	req := Request[P]{Cursor: s.cursor, PageSize: s.opts.pageSize, Params: s.params}
	s.publishLocked(s.snapshotLocked())
	s.mu.Unlock()
	defer cancel()

	return s.run(fctx, OpLoadMore, gen, req)
}

// Reset clears the list back to its initial state without fetching.
// A fetch in flight is cancelled and its response ignored.
func (s *Synchronizer[T, P]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.supersedeLocked()
	s.clearLocked()
	s.publishLocked(s.snapshotLocked())
}

// Restore resets the list and positions it at c so that the next LoadMore
// continues from a previously saved cursor. Keys in seen are treated as
// already collected; pass the items sitting on a timestamp bound so the
// backend's repeat of them is dropped. Other items fetched before the cursor
// was saved are not known, so duplicates of them are not filtered.
func (s *Synchronizer[T, P]) Restore(c Cursor, seen ...string) error {
	if c.Mode != s.opts.mode {
		return fmt.Errorf("cannot restore %s cursor on a %s list", c.Mode, s.opts.mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("list %s is closed", s.opts.name)
	}

	s.supersedeLocked()
	s.clearLocked()
	s.cursor = c
	for _, k := range seen {
		s.seen[k] = struct{}{}
	}
	s.hasMore = true
	s.publishLocked(s.snapshotLocked())

	s.log.WithField("cursor", c.String()).Debug("restored cursor")
	return nil
}

// Subscribe returns a channel carrying the latest state. The current state
// is available immediately; a slow reader only ever sees the newest
// snapshot. The returned function unsubscribes and closes the channel.
func (s *Synchronizer[T, P]) Subscribe() (<-chan State[T], func()) {
	ch := make(chan State[T], 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	ch <- s.snapshotLocked()
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// Close cancels any fetch in flight, publishes a final state and closes
// every subscription. Later calls to mutators are no-ops.
func (s *Synchronizer[T, P]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.supersedeLocked()
	s.closed = true
	s.loading = false
	s.loadingMore = false

	s.publishLocked(s.snapshotLocked())
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}

// run performs the fetch for an operation already registered under gen and
// applies its result.
func (s *Synchronizer[T, P]) run(ctx context.Context, op Op, gen uint64, req Request[P]) State[T] {
	s.log.WithFields(logrus.Fields{"op": op, "cursor": req.Cursor.String()}).Debug("fetching page")

	start := time.Now()
	page, err := s.fetch(ctx, req)
	elapsed := time.Since(start)

	var fetched []T
	var total *int
	if err == nil && page != nil {
		fetched = page.Items
		total = page.Total
	}

	ev := FetchEvent{
		List:     s.opts.name,
		Op:       op,
		Cursor:   req.Cursor,
		Duration: elapsed,
		Err:      err,
	}

	s.mu.Lock()
	if gen != s.gen || s.closed {
		st := s.snapshotLocked()
		s.mu.Unlock()

		ev.Stale = true
		s.log.WithFields(logrus.Fields{"op": op, "cursor": req.Cursor.String()}).Debug("discarded stale response")
		s.notify(ev)
		return st
	}

	s.cancel = nil
	if op == OpRefresh {
		s.loading = false
	} else {
		s.loadingMore = false
	}

	if err != nil {
		// Items and hasMore stay as they were; after a failed refresh that
		// means an empty list with nothing more to load.
		s.err = err
	} else {
		added := mergeNew(s.seen, fetched)
		s.items = append(s.items, added...)

		next, more := advance(s.cursor, fetched, len(added), s.opts.pageSize, s.opts.policy)
		if total != nil {
			t := *total
			s.total = &t
		}
		if s.total != nil && len(s.items) >= *s.total {
			more = false
		}
		s.cursor = next
		s.hasMore = more
		s.err = nil

		ev.Fetched = len(fetched)
		ev.Added = len(added)
		ev.OldestKey, ev.NewestKey = keySpan(fetched)
	}

	st := s.snapshotLocked()
	s.publishLocked(st)
	s.mu.Unlock()

	entry := s.log.WithFields(logrus.Fields{
		"op":       op,
		"cursor":   req.Cursor.String(),
		"duration": elapsed,
	})
	if err != nil {
		entry.WithError(err).Warn("fetch failed")
	} else {
		entry.WithFields(logrus.Fields{
			"fetched":  ev.Fetched,
			"added":    ev.Added,
			"has_more": st.HasMore,
		}).Debug("page merged")
	}

	s.notify(ev)
	return st
}

// supersedeLocked starts a new generation and cancels the fetch in flight.
func (s *Synchronizer[T, P]) supersedeLocked() uint64 {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return s.gen
}

func (s *Synchronizer[T, P]) clearLocked() {
	s.items = nil
	s.seen = make(map[string]struct{})
	s.cursor = InitialCursor(s.opts.mode)
	s.loading = false
	s.loadingMore = false
	s.hasMore = false
	s.err = nil
	s.total = nil
}

func (s *Synchronizer[T, P]) snapshotLocked() State[T] {
	n := len(s.items)
	st := State[T]{
		// Capping the capacity keeps later appends from showing through.
		Items:       s.items[:n:n],
		Loading:     s.loading,
		LoadingMore: s.loadingMore,
		HasMore:     s.hasMore,
		Cursor:      s.cursor,
		Err:         s.err,
		Generation:  s.gen,
	}
	if s.total != nil {
		t := *s.total
		st.Total = &t
	}
	return st
}

// publishLocked replaces whatever each subscriber has not yet read with st.
func (s *Synchronizer[T, P]) publishLocked(st State[T]) {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
}

func (s *Synchronizer[T, P]) notify(ev FetchEvent) {
	for _, obs := range s.opts.observers {
		obs.ObserveFetch(ev)
	}
}
