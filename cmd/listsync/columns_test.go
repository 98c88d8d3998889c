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

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirseerhq/listsync/internal/community"
	"github.com/sirseerhq/listsync/internal/feeds"
	"github.com/sirseerhq/listsync/internal/output"
)

func TestColumnsFor(t *testing.T) {
	mock := community.NewMockClient()
	samples := map[feeds.Kind]interface{}{
		feeds.KindBoards:    mock.Boards[0],
		feeds.KindPosts:     mock.Posts[0],
		feeds.KindUserPosts: mock.Posts[0],
		feeds.KindComments:  mock.Comments[1],
		feeds.KindMembers:   mock.Members[0],
		feeds.KindSearch:    mock.Messages[0],
	}

	for _, kind := range feeds.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			cols := columnsFor(kind)
			if len(cols) == 0 {
				t.Fatalf("no columns for %s", kind)
			}

			var buf bytes.Buffer
			w := output.NewTableWriter(&buf, cols)
			if err := w.Write(samples[kind]); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
			if !strings.Contains(buf.String(), cols[0].Header) {
				t.Errorf("table missing header %q:\n%s", cols[0].Header, buf.String())
			}
			if !strings.Contains(buf.String(), "ago") {
				t.Errorf("table missing relative time:\n%s", buf.String())
			}
		})
	}
}

func TestSince(t *testing.T) {
	if got := since(0); got != "" {
		t.Errorf("since(0) = %q, want empty", got)
	}
}
