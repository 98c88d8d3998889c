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

package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sirseerhq/listsync/internal/listsync"
)

func TestTracker_ObserveFetch(t *testing.T) {
	tests := []struct {
		name   string
		events []listsync.FetchEvent
		want   Stats
	}{
		{
			name: "single page",
			events: []listsync.FetchEvent{
				{Op: listsync.OpRefresh, Fetched: 3, Added: 3, OldestKey: 100, NewestKey: 300},
			},
			want: Stats{APICalls: 1, Fetched: 3, Added: 3, OldestKey: 100, NewestKey: 300},
		},
		{
			name: "overlapping pages",
			events: []listsync.FetchEvent{
				{Op: listsync.OpRefresh, Fetched: 2, Added: 2, OldestKey: 90, NewestKey: 100},
				{Op: listsync.OpLoadMore, Fetched: 2, Added: 1, OldestKey: 80, NewestKey: 90},
				{Op: listsync.OpLoadMore, Fetched: 1, Added: 0, OldestKey: 80, NewestKey: 80},
			},
			want: Stats{APICalls: 3, Fetched: 5, Added: 3, Duplicates: 2, OldestKey: 80, NewestKey: 100},
		},
		{
			name: "failures and stale responses carry no counts",
			events: []listsync.FetchEvent{
				{Op: listsync.OpRefresh, Err: errors.New("boom")},
				{Op: listsync.OpLoadMore, Stale: true},
				{Op: listsync.OpRefresh, Fetched: 1, Added: 1, OldestKey: 50, NewestKey: 50},
			},
			want: Stats{APICalls: 3, Failures: 1, Stale: 1, Fetched: 1, Added: 1, OldestKey: 50, NewestKey: 50},
		},
		{
			name: "empty page keeps key span unset",
			events: []listsync.FetchEvent{
				{Op: listsync.OpRefresh},
			},
			want: Stats{APICalls: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := New()
			for _, ev := range tt.events {
				tracker.ObserveFetch(ev)
			}

			if got := tracker.Stats(); got != tt.want {
				t.Errorf("Stats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTracker_RunID(t *testing.T) {
	a, b := New(), New()
	if _, err := uuid.Parse(a.RunID()); err != nil {
		t.Errorf("RunID %q is not a uuid: %v", a.RunID(), err)
	}
	if a.RunID() == b.RunID() {
		t.Error("two trackers share a run id")
	}
}

func TestTracker_ConcurrentObserve(t *testing.T) {
	tracker := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.ObserveFetch(listsync.FetchEvent{Fetched: 2, Added: 1, OldestKey: 1, NewestKey: 2})
		}()
	}
	wg.Wait()

	s := tracker.Stats()
	if s.APICalls != 50 || s.Fetched != 100 || s.Added != 50 || s.Duplicates != 50 {
		t.Errorf("Stats() = %+v after 50 concurrent events", s)
	}
}

func TestTracker_GenerateMetadata(t *testing.T) {
	tracker := New()
	tracker.ObserveFetch(listsync.FetchEvent{Fetched: 20, Added: 20, OldestKey: 10, NewestKey: 900})
	tracker.ObserveFetch(listsync.FetchEvent{Fetched: 20, Added: 18, OldestKey: 5, NewestKey: 10})

	params := RunParams{List: "posts", Key: "board=1", Mode: "offset", PageSize: 20, All: true}
	md := tracker.GenerateMetadata("v1.2.3", "rest", params, 38, false, nil)

	if md.ToolVersion != "v1.2.3" {
		t.Errorf("ToolVersion = %s, want v1.2.3", md.ToolVersion)
	}
	if md.Transport != "rest" {
		t.Errorf("Transport = %s, want rest", md.Transport)
	}
	if md.RunID != tracker.RunID() {
		t.Errorf("RunID = %s, want %s", md.RunID, tracker.RunID())
	}
	if md.Resumed || md.PreviousRun != nil {
		t.Error("a run without a predecessor should not be marked resumed")
	}
	if md.Results.Items != 38 || md.Results.Duplicates != 2 || md.Results.APICalls != 2 {
		t.Errorf("Results = %+v", md.Results)
	}
	if md.Results.OldestKey != 5 || md.Results.NewestKey != 900 {
		t.Errorf("key span = %d..%d, want 5..900", md.Results.OldestKey, md.Results.NewestKey)
	}
	if md.Results.CompletedAt.Before(md.Results.StartedAt) {
		t.Error("CompletedAt precedes StartedAt")
	}
}

func TestTracker_GenerateMetadata_Resumed(t *testing.T) {
	previous := &RunRef{RunID: "prev", CompletedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	md := New().GenerateMetadata("v1.0.0", "graphql", RunParams{List: "search"}, 0, true, previous)

	if !md.Resumed {
		t.Error("Resumed = false, want true")
	}
	if md.PreviousRun == nil || md.PreviousRun.RunID != "prev" {
		t.Errorf("PreviousRun = %+v, want prev", md.PreviousRun)
	}
	if !md.Results.HasMore {
		t.Error("HasMore should be carried into the results")
	}
}

func sampleMetadata(runID, list, key string, completed time.Time) *RunMetadata {
	return &RunMetadata{
		ToolVersion: "v1.2.3",
		Transport:   "rest",
		RunID:       runID,
		Parameters:  RunParams{List: list, Key: key, Mode: "offset", PageSize: 20},
		Results: RunResults{
			Items:       40,
			Fetched:     42,
			Added:       40,
			Duplicates:  2,
			APICalls:    3,
			Duration:    "1.5s",
			StartedAt:   completed.Add(-1500 * time.Millisecond),
			CompletedAt: completed,
		},
	}
}

func TestSaveMetadata(t *testing.T) {
	tmpDir := t.TempDir()
	md := sampleMetadata("run-1", "posts", "board=1", time.Date(2023, 1, 1, 12, 0, 1, 0, time.UTC))

	if err := SaveMetadata(md, tmpDir); err != nil {
		t.Fatalf("SaveMetadata failed: %v", err)
	}

	expectedFile := filepath.Join(tmpDir, "run-metadata-1672574399-run-1.json")
	data, err := os.ReadFile(expectedFile)
	if err != nil {
		t.Fatalf("metadata file not created: %v", err)
	}

	var loaded RunMetadata
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("failed to parse metadata: %v", err)
	}
	if loaded.Results.Duplicates != 2 {
		t.Errorf("Duplicates = %d, want 2", loaded.Results.Duplicates)
	}
	if loaded.Parameters.Key != "board=1" {
		t.Errorf("Key = %s, want board=1", loaded.Parameters.Key)
	}
}

func TestLoadLatestMetadata(t *testing.T) {
	tmpDir := t.TempDir()
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, md := range []*RunMetadata{
		sampleMetadata("old", "posts", "board=1", base),
		sampleMetadata("new", "posts", "board=1", base.Add(time.Hour)),
		sampleMetadata("other-board", "posts", "board=2", base.Add(2*time.Hour)),
		sampleMetadata("other-list", "comments", "post=1", base.Add(3*time.Hour)),
	} {
		if err := SaveMetadata(md, tmpDir); err != nil {
			t.Fatalf("SaveMetadata failed: %v", err)
		}
	}
	// A corrupt report must not hide the valid ones.
	if err := os.WriteFile(filepath.Join(tmpDir, "run-metadata-9-bad.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadLatestMetadata(tmpDir, "posts", "board=1")
	if err != nil {
		t.Fatalf("LoadLatestMetadata failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected metadata, got nil")
	}
	if loaded.RunID != "new" {
		t.Errorf("RunID = %s, want new", loaded.RunID)
	}

	missing, err := LoadLatestMetadata(tmpDir, "members", "group=7")
	if err != nil {
		t.Fatalf("LoadLatestMetadata failed: %v", err)
	}
	if missing != nil {
		t.Error("expected nil metadata for a list without reports")
	}

	all, err := ListMetadata(tmpDir)
	if err != nil {
		t.Fatalf("ListMetadata failed: %v", err)
	}
	if len(all) != 4 || all[0].RunID != "other-list" {
		t.Errorf("ListMetadata returned %d reports, first %v", len(all), all)
	}
}

func TestWriteMetadataToWriter(t *testing.T) {
	md := sampleMetadata("run-1", "posts", "board=1", time.Now())

	var buf bytes.Buffer
	if err := WriteMetadataToWriter(md, &buf); err != nil {
		t.Fatalf("WriteMetadataToWriter failed: %v", err)
	}

	var loaded RunMetadata
	if err := json.Unmarshal(buf.Bytes(), &loaded); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"tool_version\"") {
		t.Error("output should be indented")
	}
}
