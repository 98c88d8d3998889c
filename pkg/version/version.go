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

// Package version holds build information injected at link time:
//
//	go build -ldflags "-X github.com/sirseerhq/listsync/pkg/version.Version=v1.2.0 \
//	  -X github.com/sirseerhq/listsync/pkg/version.Commit=$(git rev-parse --short HEAD)"
package version

import "fmt"

var (
	// Version is the release tag, or "dev" for local builds.
	Version = "dev"

	// Commit is the short git revision the binary was built from.
	Commit = "unknown"
)

// UserAgent returns the User-Agent header sent to the community API.
func UserAgent() string {
	return fmt.Sprintf("listsync/%s", Version)
}

// String returns the version line printed by "listsync version".
func String() string {
	return fmt.Sprintf("listsync %s (commit %s)", Version, Commit)
}
