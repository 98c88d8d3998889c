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

// Package checkpoint persists resumable list positions.
//
// A checkpoint records where a paged list stopped: the cursor, how many items
// had been collected, and the run that wrote it. Writes are atomic (temp file
// plus rename) and every file carries a SHA256 checksum so that a truncated or
// hand-edited checkpoint is rejected instead of silently resuming from the
// wrong place.
//
// Example usage:
//
//	cp := checkpoint.New("posts", "board=1", st.Cursor, st.HasMore, len(st.Items), runID)
//	err := checkpoint.Save(cp, checkpoint.FilePath("", "posts", "board=1"))
package checkpoint
