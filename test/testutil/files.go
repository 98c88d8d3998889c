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

package testutil

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

// WriteConfig writes cfg as YAML to path. Use ConfigPath(dir) for the
// file listsync discovers in its working directory.
func WriteConfig(t *testing.T, path string, cfg map[string]interface{}) {
	t.Helper()

	content, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

// ConfigPath returns the config file listsync looks for in dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, ".listsync.yaml")
}

// CreateTempFile creates a temporary file with the given content
func CreateTempFile(t *testing.T, dir, pattern, content string) string {
	t.Helper()

	file, err := os.CreateTemp(dir, pattern)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	if _, err := file.WriteString(content); err != nil {
		file.Close()
		t.Fatalf("Failed to write to temp file: %v", err)
	}

	if err := file.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	return file.Name()
}

// ReadNDJSON decodes every line of an NDJSON file into a new T.
func ReadNDJSON[T any](t *testing.T, path string) []T {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open file: %v", err)
	}
	defer f.Close()

	var records []T
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r T
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			t.Fatalf("Invalid NDJSON line %q: %v", scanner.Text(), err)
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	return records
}

// AssertFileExists checks that a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Expected file to exist: %s", path)
	}
}
