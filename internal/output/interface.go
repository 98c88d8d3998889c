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

package output

import (
	"fmt"
	"io"
	"os"
)

// RecordWriter writes list items in some output format.
type RecordWriter interface {
	// Write writes a single record.
	Write(record interface{}) error

	// Count returns the number of records written so far.
	Count() int

	// Close finishes the output and releases the destination if the
	// writer opened it.
	Close() error
}

// Output formats accepted by New.
const (
	FormatNDJSON = "ndjson"
	FormatTable  = "table"
)

// New returns a writer for format. An empty path or "-" writes to stdout;
// otherwise the file is created. columns is used by the table format only.
func New(format, path string, columns []Column) (RecordWriter, error) {
	if path == "" || path == "-" {
		return NewStream(format, os.Stdout, columns)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	w, err := newFormat(format, file, columns, file.Close)
	if err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return nil, err
	}
	return w, nil
}

// NewStream returns a writer for format that writes to w and leaves it open
// on Close.
func NewStream(format string, w io.Writer, columns []Column) (RecordWriter, error) {
	return newFormat(format, w, columns, nil)
}

func newFormat(format string, dst io.Writer, columns []Column, closeFn func() error) (RecordWriter, error) {
	switch format {
	case FormatNDJSON, "":
		w := NewWriter(dst)
		w.closeFunc = closeFn
		return w, nil
	case FormatTable:
		w := NewTableWriter(dst, columns)
		w.closeFunc = closeFn
		return w, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want %s or %s)", format, FormatNDJSON, FormatTable)
	}
}
