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
	"reflect"
	"strings"
	"testing"
)

type TestRecord struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	if writer == nil {
		t.Fatal("NewWriter returned nil")
	}
	if writer.output != &buf {
		t.Error("Writer output doesn't match provided buffer")
	}
	if writer.Count() != 0 {
		t.Errorf("Initial count should be 0, got %d", writer.Count())
	}
}

func TestWriter_Write(t *testing.T) {
	tests := []struct {
		name    string
		records []TestRecord
		want    []string
	}{
		{
			name: "single record",
			records: []TestRecord{
				{ID: 1, Name: "General", Active: true},
			},
			want: []string{
				`{"id":1,"name":"General","active":true}`,
			},
		},
		{
			name: "multiple records",
			records: []TestRecord{
				{ID: 1, Name: "General", Active: true},
				{ID: 2, Name: "Releases", Active: false},
				{ID: 3, Name: "Off topic", Active: true},
			},
			want: []string{
				`{"id":1,"name":"General","active":true}`,
				`{"id":2,"name":"Releases","active":false}`,
				`{"id":3,"name":"Off topic","active":true}`,
			},
		},
		{
			name:    "empty records",
			records: []TestRecord{},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writer := NewWriter(&buf)

			for _, record := range tt.records {
				if err := writer.Write(record); err != nil {
					t.Fatalf("Write failed: %v", err)
				}
			}

			if writer.Count() != len(tt.records) {
				t.Errorf("Count mismatch: got %d, want %d", writer.Count(), len(tt.records))
			}

			output := strings.TrimSpace(buf.String())
			if output == "" && len(tt.want) == 0 {
				return
			}

			lines := strings.Split(output, "\n")
			if len(lines) != len(tt.want) {
				t.Fatalf("Line count mismatch: got %d, want %d", len(lines), len(tt.want))
			}

			for i, line := range lines {
				var actual, expected map[string]interface{}
				if err := json.Unmarshal([]byte(line), &actual); err != nil {
					t.Fatalf("Failed to parse actual JSON at line %d: %v", i, err)
				}
				if err := json.Unmarshal([]byte(tt.want[i]), &expected); err != nil {
					t.Fatalf("Failed to parse expected JSON at line %d: %v", i, err)
				}
				if !reflect.DeepEqual(actual, expected) {
					t.Errorf("Line %d mismatch:\ngot:  %s\nwant: %s", i, line, tt.want[i])
				}
			}
		})
	}
}

func TestWriter_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	numGoroutines := 10
	recordsPerGoroutine := 100
	totalRecords := numGoroutines * recordsPerGoroutine

	errCh := make(chan error, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(goroutineID int) {
			for j := 0; j < recordsPerGoroutine; j++ {
				record := TestRecord{
					ID:     goroutineID*recordsPerGoroutine + j,
					Name:   "Concurrent Test",
					Active: true,
				}
				if err := writer.Write(record); err != nil {
					errCh <- err
					return
				}
			}
			errCh <- nil
		}(i)
	}

	for i := 0; i < numGoroutines; i++ {
		if err := <-errCh; err != nil {
			t.Fatalf("Concurrent write failed: %v", err)
		}
	}

	if writer.Count() != totalRecords {
		t.Errorf("Count mismatch: got %d, want %d", writer.Count(), totalRecords)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != totalRecords {
		t.Errorf("Line count mismatch: got %d, want %d", len(lines), totalRecords)
	}
	for i, line := range lines {
		var record TestRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Errorf("Invalid JSON at line %d: %v", i, err)
		}
	}
}

func TestNewFileWriter(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test.ndjson")

	writer, err := NewFileWriter(filename)
	if err != nil {
		t.Fatalf("NewFileWriter failed: %v", err)
	}
	defer writer.Close()

	testRecords := []TestRecord{
		{ID: 1, Name: "File Test One", Active: true},
		{ID: 2, Name: "File Test Two", Active: false},
	}
	for _, record := range testRecords {
		if err := writer.Write(record); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// A second Close must not close the file twice.
	if err := writer.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != len(testRecords) {
		t.Fatalf("Line count mismatch: got %d, want %d", len(lines), len(testRecords))
	}
	for i, line := range lines {
		var record TestRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("Failed to parse JSON at line %d: %v", i, err)
		}
		if record.ID != testRecords[i].ID {
			t.Errorf("ID mismatch at line %d: got %d, want %d", i, record.ID, testRecords[i].ID)
		}
	}
}

func TestNewFileWriter_Error(t *testing.T) {
	_, err := NewFileWriter("/non/existent/path/test.ndjson")
	if err == nil {
		t.Error("Expected error for non-existent directory, got nil")
	}
}

func TestWriter_WriteError(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	if err := writer.Write(make(chan int)); err == nil {
		t.Error("Expected error when writing non-marshalable data")
	}
	if writer.Count() != 0 {
		t.Errorf("failed writes must not be counted, got %d", writer.Count())
	}
}
