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

package checkpoint

import (
	"fmt"
	"time"

	"github.com/sirseerhq/listsync/internal/listsync"
)

// CurrentVersion is the checkpoint schema version.
// Increment this when making breaking changes to Checkpoint.
const CurrentVersion = 1

// Checkpoint is the persisted position of one list for one set of parameters.
type Checkpoint struct {
	// Version is the schema version of this file.
	Version int `json:"version"`

	// Checksum is the SHA256 of the file content with this field empty.
	Checksum string `json:"checksum"`

	// List is the feed name, for example "posts".
	List string `json:"list"`

	// Key identifies the parameters the list was configured with,
	// for example "board=1".
	Key string `json:"key"`

	// Mode is the cursor mode name ("offset" or "timestamp").
	Mode string `json:"mode"`

	// Page is the next page to request in offset mode.
	Page int `json:"page,omitempty"`

	// Before is the inclusive upper bound of the next request in
	// timestamp mode.
	Before int64 `json:"before,omitempty"`

	// Boundary holds the keys of collected items whose order key equals
	// Before. The backend returns them again on the next request.
	Boundary []string `json:"boundary,omitempty"`

	// HasMore records whether the list expected another page.
	HasMore bool `json:"has_more"`

	// ItemCount is the number of distinct items collected so far.
	ItemCount int `json:"item_count"`

	// RunID is the id of the run that wrote the checkpoint.
	RunID string `json:"run_id"`

	// SavedAt is when the checkpoint was written.
	SavedAt time.Time `json:"saved_at"`
}

// New builds a checkpoint for the given list position.
func New(list, key string, c listsync.Cursor, hasMore bool, count int, runID string) *Checkpoint {
	cp := &Checkpoint{
		List:      list,
		Key:       key,
		Mode:      c.Mode.String(),
		HasMore:   hasMore,
		ItemCount: count,
		RunID:     runID,
		SavedAt:   time.Now().UTC(),
	}
	if c.Mode == listsync.TimestampMode {
		cp.Before = c.Before
	} else {
		cp.Page = c.Page
	}
	return cp
}

// BoundaryKeys returns the keys of items whose order key equals a timestamp
// cursor's bound. It is empty for offset cursors.
func BoundaryKeys[T listsync.Item](items []T, c listsync.Cursor) []string {
	if c.Mode != listsync.TimestampMode {
		return nil
	}
	var keys []string
	for _, it := range items {
		if it.OrderKey() == c.Before {
			keys = append(keys, it.Key())
		}
	}
	return keys
}

// Cursor rebuilds the saved cursor.
func (cp *Checkpoint) Cursor() (listsync.Cursor, error) {
	mode, err := listsync.ParseCursorMode(cp.Mode)
	if err != nil {
		return listsync.Cursor{}, fmt.Errorf("checkpoint for %s: %w", cp.List, err)
	}
	if mode == listsync.TimestampMode {
		if cp.Before <= 0 {
			return listsync.Cursor{}, fmt.Errorf("checkpoint for %s has invalid bound %d", cp.List, cp.Before)
		}
		return listsync.TimestampCursor(cp.Before), nil
	}
	return listsync.OffsetCursor(cp.Page), nil
}
