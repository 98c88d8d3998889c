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
	"fmt"
	"math"
	"strconv"
)

// CursorMode selects how a list is paged.
type CursorMode int

const (
	// OffsetMode pages by 1-based page number.
	OffsetMode CursorMode = iota

	// TimestampMode pages backwards through items ordered by a descending
	// time-like key. Each request asks for items at or older than the cursor
	// value, so items sharing the bound come back on the next page.
	TimestampMode
)

// String returns the mode name used in logs and checkpoints.
func (m CursorMode) String() string {
	switch m {
	case OffsetMode:
		return "offset"
	case TimestampMode:
		return "timestamp"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseCursorMode is the inverse of CursorMode.String.
func ParseCursorMode(s string) (CursorMode, error) {
	switch s {
	case "offset":
		return OffsetMode, nil
	case "timestamp":
		return TimestampMode, nil
	default:
		return OffsetMode, fmt.Errorf("unknown cursor mode %q", s)
	}
}

// Infinity is the timestamp sentinel meaning "no upper bound".
const Infinity int64 = math.MaxInt64

// Cursor is a resumable position in a paged list. Only the field matching
// Mode is meaningful.
type Cursor struct {
	Mode   CursorMode
	Page   int
	Before int64
}

// OffsetCursor returns a page-number cursor. Pages below 1 are clamped to 1.
func OffsetCursor(page int) Cursor {
	if page < 1 {
		page = 1
	}
	return Cursor{Mode: OffsetMode, Page: page}
}

// TimestampCursor returns a cursor that fetches items strictly older than v.
func TimestampCursor(v int64) Cursor {
	return Cursor{Mode: TimestampMode, Before: v}
}

// InitialCursor returns the first-page cursor for mode.
func InitialCursor(mode CursorMode) Cursor {
	if mode == TimestampMode {
		return TimestampCursor(Infinity)
	}
	return OffsetCursor(1)
}

// IsInitial reports whether c addresses the first page.
func (c Cursor) IsInitial() bool {
	if c.Mode == TimestampMode {
		return c.Before == Infinity
	}
	return c.Page <= 1
}

// String renders the cursor for logs.
func (c Cursor) String() string {
	if c.Mode == TimestampMode {
		if c.Before == Infinity {
			return "before=+inf"
		}
		return "before=" + strconv.FormatInt(c.Before, 10)
	}
	return "page=" + strconv.Itoa(c.Page)
}
