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
	"time"
)

// RunMetadata is the report written at the end of a pull run. It records
// what was requested, what came back and how the backend behaved, so runs
// can be compared and resumed runs traced to their predecessor.
type RunMetadata struct {
	ToolVersion string     `json:"tool_version"`
	Transport   string     `json:"transport"`
	RunID       string     `json:"run_id"`
	Parameters  RunParams  `json:"parameters"`
	Results     RunResults `json:"results"`
	Resumed     bool       `json:"resumed"`
	PreviousRun *RunRef    `json:"previous_run,omitempty"`
}

// RunParams captures the inputs of a run.
type RunParams struct {
	List     string `json:"list"`
	Key      string `json:"key"`
	Mode     string `json:"mode"`
	PageSize int    `json:"page_size"`
	MaxPages int    `json:"max_pages,omitempty"`
	All      bool   `json:"all"`
}

// RunResults holds the counters gathered by a Tracker.
type RunResults struct {
	Items       int       `json:"items"`
	Fetched     int       `json:"fetched"`
	Added       int       `json:"added"`
	Duplicates  int       `json:"duplicates_dropped"`
	APICalls    int       `json:"api_calls_made"`
	Failures    int       `json:"failures"`
	Stale       int       `json:"stale_discarded"`
	OldestKey   int64     `json:"oldest_order_key,omitempty"`
	NewestKey   int64     `json:"newest_order_key,omitempty"`
	HasMore     bool      `json:"has_more"`
	Duration    string    `json:"duration"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// RunRef points at an earlier run of the same list.
type RunRef struct {
	RunID       string    `json:"run_id"`
	CompletedAt time.Time `json:"completed_at"`
}
