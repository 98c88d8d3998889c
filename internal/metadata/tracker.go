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

// Package metadata records statistics about pull runs and persists them as
// JSON reports next to the checkpoints.
//
// A Tracker is registered as a listsync observer for the duration of a run.
// It counts API calls, failures, stale responses, and the items fetched,
// added and dropped as duplicates, and tracks the span of order keys seen.
// At the end of the run GenerateMetadata turns those counters into a
// RunMetadata record.
package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sirseerhq/listsync/internal/listsync"
)

// Stats is a snapshot of the counters kept by a Tracker.
type Stats struct {
	APICalls   int
	Failures   int
	Stale      int
	Fetched    int
	Added      int
	Duplicates int
	OldestKey  int64 // Smallest order key seen, zero before the first item
	NewestKey  int64 // Largest order key seen
}

// Tracker collects statistics for one run. It is safe for concurrent use.
type Tracker struct {
	runID     string
	startTime time.Time

	mu    sync.Mutex
	stats Stats
}

var _ listsync.Observer = (*Tracker)(nil)

// New creates a tracker with a fresh run id and the current time as start.
func New() *Tracker {
	return &Tracker{
		runID:     uuid.NewString(),
		startTime: time.Now(),
	}
}

// RunID returns the id stamped on this run's metadata and checkpoints.
func (t *Tracker) RunID() string {
	return t.runID
}

// ObserveFetch implements listsync.Observer.
func (t *Tracker) ObserveFetch(ev listsync.FetchEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.APICalls++
	switch {
	case ev.Stale:
		t.stats.Stale++
		return
	case ev.Err != nil:
		t.stats.Failures++
		return
	}

	t.stats.Fetched += ev.Fetched
	t.stats.Added += ev.Added
	t.stats.Duplicates += ev.Duplicates()

	if ev.Fetched == 0 {
		return
	}
	if t.stats.OldestKey == 0 || ev.OldestKey < t.stats.OldestKey {
		t.stats.OldestKey = ev.OldestKey
	}
	if ev.NewestKey > t.stats.NewestKey {
		t.stats.NewestKey = ev.NewestKey
	}
}

// Stats returns the counters gathered so far.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// GenerateMetadata builds the run report.
//
// Parameters:
//   - toolVersion: the version of listsync (from version.Version)
//   - transport: "rest" or "graphql"
//   - params: the inputs of the run
//   - items: distinct items held when the run ended
//   - hasMore: whether the list expected more pages
//   - previous: the run this one resumed from, or nil
func (t *Tracker) GenerateMetadata(toolVersion, transport string, params RunParams, items int, hasMore bool, previous *RunRef) *RunMetadata {
	completedAt := time.Now()
	s := t.Stats()

	return &RunMetadata{
		ToolVersion: toolVersion,
		Transport:   transport,
		RunID:       t.runID,
		Parameters:  params,
		Results: RunResults{
			Items:       items,
			Fetched:     s.Fetched,
			Added:       s.Added,
			Duplicates:  s.Duplicates,
			APICalls:    s.APICalls,
			Failures:    s.Failures,
			Stale:       s.Stale,
			OldestKey:   s.OldestKey,
			NewestKey:   s.NewestKey,
			HasMore:     hasMore,
			Duration:    completedAt.Sub(t.startTime).String(),
			StartedAt:   t.startTime,
			CompletedAt: completedAt,
		},
		Resumed:     previous != nil,
		PreviousRun: previous,
	}
}

// SaveMetadata writes md to dir as run-metadata-{unix}-{runid}.json. The file
// is written to a temporary name first and renamed into place.
func SaveMetadata(md *RunMetadata, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	filename := fmt.Sprintf("run-metadata-%d-%s.json", md.Results.StartedAt.Unix(), md.RunID)
	path := filepath.Join(dir, filename)

	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("failed to create metadata file: %w", err)
	}

	if err := WriteMetadataToWriter(md, file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to close metadata file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to save metadata file: %w", err)
	}
	return nil
}

// LoadLatestMetadata returns the most recent report in dir for the given
// list and parameter key, or nil when there is none.
func LoadLatestMetadata(dir, list, key string) (*RunMetadata, error) {
	files, err := filepath.Glob(filepath.Join(dir, "run-metadata-*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata files: %w", err)
	}

	var latest *RunMetadata
	for _, path := range files {
		md, err := readMetadata(path)
		if err != nil {
			// Unreadable reports are skipped; one bad file should not hide
			// the rest of the history.
			continue
		}
		if md.Parameters.List != list || md.Parameters.Key != key {
			continue
		}
		if latest == nil || md.Results.CompletedAt.After(latest.Results.CompletedAt) {
			latest = md
		}
	}
	return latest, nil
}

// ListMetadata returns every readable report in dir, newest first.
func ListMetadata(dir string) ([]*RunMetadata, error) {
	files, err := filepath.Glob(filepath.Join(dir, "run-metadata-*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata files: %w", err)
	}

	out := make([]*RunMetadata, 0, len(files))
	for _, path := range files {
		md, err := readMetadata(path)
		if err != nil {
			continue
		}
		out = append(out, md)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Results.CompletedAt.After(out[j].Results.CompletedAt)
	})
	return out, nil
}

func readMetadata(path string) (*RunMetadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata file: %w", err)
	}
	defer file.Close()

	var md RunMetadata
	if err := json.NewDecoder(file).Decode(&md); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &md, nil
}

// WriteMetadataToWriter writes md as indented JSON.
func WriteMetadataToWriter(md *RunMetadata, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(md)
}
