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
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"
)

// Column describes one table column. Field is a dotted path into the
// record's JSON form, for example "author.nickname". Formatter, when set,
// takes precedence over Field.
type Column struct {
	Header    string
	Field     string
	Formatter func(record interface{}) string
}

// TableWriter buffers records and renders them as a bordered text table on
// Close.
type TableWriter struct {
	mu        sync.Mutex
	output    io.Writer
	columns   []Column
	rows      [][]string
	closed    bool
	closeFunc func() error
}

var _ RecordWriter = (*TableWriter)(nil)

// NewTableWriter creates a table writer with the given columns.
func NewTableWriter(w io.Writer, columns []Column) *TableWriter {
	return &TableWriter{output: w, columns: columns}
}

// Write converts record to a row and buffers it.
func (t *TableWriter) Write(record interface{}) error {
	row, err := t.row(record)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return fmt.Errorf("write to closed table")
	}
	t.rows = append(t.rows, row)
	return nil
}

// Count returns the number of buffered rows.
func (t *TableWriter) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// Close renders the table and closes the underlying file, if any.
func (t *TableWriter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true

	table := tablewriter.NewWriter(t.output)
	table.SetBorders(tablewriter.Border{
		Left:   true,
		Right:  true,
		Top:    false,
		Bottom: false,
	})
	table.SetAutoWrapText(false)

	headers := make([]string, len(t.columns))
	for i, c := range t.columns {
		headers[i] = c.Header
	}
	table.SetHeader(headers)
	table.AppendBulk(t.rows)
	table.Render()

	if t.closeFunc != nil {
		return t.closeFunc()
	}
	return nil
}

func (t *TableWriter) row(record interface{}) ([]string, error) {
	var fields map[string]interface{}
	needFields := false
	for _, c := range t.columns {
		if c.Formatter == nil {
			needFields = true
			break
		}
	}
	if needFields {
		data, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("failed to write record: %w", err)
		}
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("table output needs object records: %w", err)
		}
	}

	row := make([]string, len(t.columns))
	for i, c := range t.columns {
		if c.Formatter != nil {
			row[i] = c.Formatter(record)
			continue
		}
		row[i] = lookup(fields, c.Field)
	}
	return row, nil
}

// lookup resolves a dotted path in a decoded JSON object. Missing fields
// render as an empty cell.
func lookup(fields map[string]interface{}, path string) string {
	var cur interface{} = fields
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return ""
		}
		cur = m[part]
	}

	switch v := cur.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		data, _ := json.Marshal(v)
		return string(data)
	}
}
