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
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		format   string
		wantType string
	}{
		{"ndjson", FormatNDJSON, "*output.Writer"},
		{"default format", "", "*output.Writer"},
		{"table", FormatTable, "*output.TableWriter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".out")
			w, err := New(tt.format, path, []Column{{Header: "ID", Field: "id"}})
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if got := typeName(w); got != tt.wantType {
				t.Errorf("New(%q) returned %s, want %s", tt.format, got, tt.wantType)
			}
			if err := w.Write(TestRecord{ID: 9}); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("output not written: %v", err)
			}
			if !strings.Contains(string(data), "9") {
				t.Errorf("output missing record: %q", data)
			}
		})
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.csv")
	if _, err := New("csv", path, nil); err == nil {
		t.Fatal("Expected error for unknown format")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("unknown format should not leave an output file behind")
	}
}

func TestNewStream(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewStream(FormatTable, &buf, []Column{{Header: "ID", Field: "id"}})
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}
	if err := w.Write(TestRecord{ID: 42}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "42") {
		t.Errorf("table missing record: %q", buf.String())
	}

	if _, err := NewStream("xml", &buf, nil); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestNew_NDJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.ndjson")
	w, err := New(FormatNDJSON, path, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 3; i++ {
		if err := w.Write(TestRecord{ID: i}); err != nil {
			t.Fatal(err)
		}
	}
	if w.Count() != 3 {
		t.Errorf("Count = %d, want 3", w.Count())
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	for i, line := range lines {
		var r TestRecord
		if err := json.Unmarshal([]byte(line), &r); err != nil || r.ID != i+1 {
			t.Errorf("line %d = %q", i, line)
		}
	}
}

func typeName(w RecordWriter) string {
	switch w.(type) {
	case *Writer:
		return "*output.Writer"
	case *TableWriter:
		return "*output.TableWriter"
	default:
		return "unknown"
	}
}
