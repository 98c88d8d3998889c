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

package output

import (
	"bytes"
	"strings"
	"testing"
)

type author struct {
	Nickname string `json:"nickname"`
}

type post struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Author    author `json:"author"`
	CreatedAt int64  `json:"createdAt"`
}

func TestTableWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewTableWriter(&buf, []Column{
		{Header: "ID", Field: "id"},
		{Header: "Title", Field: "title"},
		{Header: "Author", Field: "author.nickname"},
		{Header: "Created", Field: "createdAt"},
		{Header: "Missing", Field: "nope.deeper"},
		{Header: "Len", Formatter: func(r interface{}) string {
			return strings.Repeat("*", len(r.(post).Title))
		}},
	})

	records := []post{
		{ID: 103, Title: "Office move", Author: author{"alice"}, CreatedAt: 1735691400000},
		{ID: 102, Title: "Sync", Author: author{"bob"}, CreatedAt: 1735690800000},
	}
	for _, r := range records {
		if err := w.Write(r); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if w.Count() != 2 {
		t.Errorf("Count = %d, want 2", w.Count())
	}
	if buf.Len() != 0 {
		t.Error("table rendered before Close")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"ID", "AUTHOR", "103", "Office move", "alice", "1735691400000", "****"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "103") > strings.Index(out, "102") {
		t.Error("rows should keep write order")
	}

	if err := w.Write(records[0]); err == nil {
		t.Error("Write after Close should fail")
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestTableWriter_NonObjectRecord(t *testing.T) {
	w := NewTableWriter(&bytes.Buffer{}, []Column{{Header: "X", Field: "x"}})
	if err := w.Write(42); err == nil {
		t.Error("Expected error for a record that is not a JSON object")
	}
}

func TestLookup(t *testing.T) {
	fields := map[string]interface{}{
		"id":     float64(7),
		"ratio":  1.5,
		"ok":     true,
		"tags":   []interface{}{"a", "b"},
		"author": map[string]interface{}{"nickname": "carol"},
	}

	tests := []struct {
		path string
		want string
	}{
		{"id", "7"},
		{"ratio", "1.5"},
		{"ok", "true"},
		{"tags", `["a","b"]`},
		{"author.nickname", "carol"},
		{"author.missing", ""},
		{"id.deeper", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := lookup(fields, tt.path); got != tt.want {
				t.Errorf("lookup(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
