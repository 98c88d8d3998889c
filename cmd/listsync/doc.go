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

// Package main implements the listsync command-line interface.
// It pages through cursor-paginated lists of the community API, merges the
// pages without duplicates and writes the items as NDJSON or a table.
//
// The CLI supports:
//   - Fetching the first page (default), the first N pages (--pages) or the
//     whole list (--all)
//   - Boards, board posts, user posts, comments, group members and chat
//     message search
//   - REST or GraphQL transport with retries, rate limiting and a circuit
//     breaker
//   - Checkpoints after every page and --resume to continue a list
//   - A JSON run report and optional Prometheus metrics
//
// Usage:
//
//	listsync pull <kind> [flags]
//
// Example:
//
//	export LISTSYNC_TOKEN=your_token
//	listsync pull posts --board 12 --all --output posts.ndjson
//	listsync pull search --chat c-42 --keyword deploy --format table
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Authentication, not found or rate limit error
//   - 3: Network error or open circuit
//   - 4: Server error or malformed response
package main
