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

// Package listsync keeps a locally accumulated, deduplicated list in step with
// a paginated remote source.
//
// A Synchronizer owns one list. It is driven by three mutators:
//
//   - Refresh discards everything and fetches the first page again
//   - LoadMore appends the next page, dropping ids already seen
//   - Reset clears the list without touching the network
//
// Pages are addressed by a Cursor which is either a page number (OffsetMode)
// or an upper time bound (TimestampMode). In timestamp mode the next cursor is
// the smallest order key of the page just fetched, and the list ends as soon
// as that bound stops decreasing, so a misbehaving backend cannot keep a
// "load more" spinner alive forever.
//
// Every fetch is tagged with a generation number. Refresh, Reset and Close
// bump the generation and cancel the outstanding fetch, so a response that
// arrives late is dropped without touching state.
//
// Observers read immutable State snapshots, either by polling State or by
// subscribing to a latest-value channel:
//
//	feed := listsync.New(fetchMessages, listsync.WithTimestampCursor(), listsync.WithPageSize(30))
//	feed.Configure(SearchQuery{ChatID: "c-42", Keyword: "deploy"})
//
//	updates, cancel := feed.Subscribe()
//	defer cancel()
//
//	feed.Refresh(ctx)
//	for st := feed.State(); st.HasMore; st = feed.LoadMore(ctx) {
//	}
//
// Fetch failures never escape as return values; they are recorded on the
// state (State.Err) and the caller retries by repeating the operation.
package listsync
