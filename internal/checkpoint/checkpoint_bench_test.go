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

package checkpoint

import (
	"path/filepath"
	"testing"

	"github.com/sirseerhq/listsync/internal/listsync"
)

// BenchmarkSave benchmarks checkpoint writes for both cursor modes
func BenchmarkSave(b *testing.B) {
	benchmarks := []struct {
		name   string
		cursor listsync.Cursor
	}{
		{"Offset", listsync.OffsetCursor(500)},
		{"Timestamp", listsync.TimestampCursor(1735695000000)},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			file := filepath.Join(b.TempDir(), "bench.state")
			cp := New("posts", "board=1", bm.cursor, true, 10000, "run-bench")

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if err := Save(cp, file); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkLoad benchmarks checkpoint reads including checksum validation
func BenchmarkLoad(b *testing.B) {
	file := filepath.Join(b.TempDir(), "bench.state")
	if err := Save(New("search", "chat=c-1", listsync.TimestampCursor(1735695000000), true, 5000, "run-bench"), file); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := Load(file); err != nil {
			b.Fatal(err)
		}
	}
}
