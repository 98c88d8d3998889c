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

import "fmt"

// HasMorePolicy decides, in offset mode, whether a page was full enough to
// expect another one. Under every policy a page that adds no new item ends
// the list, and so does reaching a server-reported total.
type HasMorePolicy int

const (
	// RawCount expects more while the backend returns full pages, counting
	// duplicates. This is the default.
	RawCount HasMorePolicy = iota

	// NewCount expects more only while a page adds a full page of unseen
	// items, so overlapping pages end the list early.
	NewCount
)

// String returns the policy name.
func (p HasMorePolicy) String() string {
	switch p {
	case RawCount:
		return "raw-count"
	case NewCount:
		return "new-count"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParseHasMorePolicy is the inverse of HasMorePolicy.String.
func ParseHasMorePolicy(s string) (HasMorePolicy, error) {
	switch s {
	case "raw-count":
		return RawCount, nil
	case "new-count":
		return NewCount, nil
	default:
		return RawCount, fmt.Errorf("unknown has-more policy %q (want raw-count or new-count)", s)
	}
}

// mergeNew returns the members of fetched whose keys are not yet in seen, in
// fetch order, and records them in seen. Repeats inside fetched are dropped too.
func mergeNew[T Item](seen map[string]struct{}, fetched []T) []T {
	added := make([]T, 0, len(fetched))
	for _, it := range fetched {
		k := it.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		added = append(added, it)
	}
	return added
}

// keySpan returns the smallest and largest order keys in items.
func keySpan[T Item](items []T) (oldest, newest int64) {
	for i, it := range items {
		k := it.OrderKey()
		if i == 0 || k < oldest {
			oldest = k
		}
		if i == 0 || k > newest {
			newest = k
		}
	}
	return oldest, newest
}

// advance computes the cursor following cur and whether another page is
// expected, given the raw page and the number of items it added.
func advance[T Item](cur Cursor, fetched []T, added, pageSize int, policy HasMorePolicy) (Cursor, bool) {
	if cur.Mode == TimestampMode {
		if len(fetched) == 0 {
			return cur, false
		}
		oldest, _ := keySpan(fetched)
		// A bound that does not strictly decrease would request the same
		// window again.
		if oldest >= cur.Before {
			return cur, false
		}
		return TimestampCursor(oldest), added > 0
	}

	next := OffsetCursor(cur.Page + 1)
	switch policy {
	case NewCount:
		return next, added > 0 && added >= pageSize
	default:
		return next, added > 0 && len(fetched) >= pageSize
	}
}
