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

// Package output writes pulled list items in NDJSON or as a text table.
//
// NDJSON output streams: every record is encoded and flushed as soon as it is
// written, so a long pull never accumulates items in memory. Table output
// needs column widths, so it buffers rows and renders them on Close.
//
// Example usage:
//
//	w, err := output.New(output.FormatNDJSON, "posts.ndjson", nil)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	for _, post := range st.Items {
//	    if err := w.Write(post); err != nil {
//	        return err
//	    }
//	}
package output
