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

package version

import "testing"

func TestStrings(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	defer func() { Version, Commit = oldVersion, oldCommit }()

	Version, Commit = "v1.4.0", "abc1234"

	if got, want := UserAgent(), "listsync/v1.4.0"; got != want {
		t.Errorf("UserAgent() = %q, want %q", got, want)
	}
	if got, want := String(), "listsync v1.4.0 (commit abc1234)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
