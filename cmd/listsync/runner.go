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

package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/sirseerhq/listsync/internal/checkpoint"
	"github.com/sirseerhq/listsync/internal/feeds"
	"github.com/sirseerhq/listsync/internal/listsync"
	"github.com/sirseerhq/listsync/internal/output"
)

// job describes one pull: which list, how far to page and where the items
// and checkpoints go.
type job struct {
	kind     feeds.Kind
	key      string
	maxPages int // zero means no limit
	resume   bool
	stateDir string
	runID    string
	writer   output.RecordWriter
	progress *progress
	log      *logrus.Entry
}

// outcome summarizes a finished pull.
type outcome struct {
	written int
	pages   int
	hasMore bool
	resumed bool
	// baseCount is the item count recorded by the checkpoint a resumed run
	// started from.
	baseCount int
}

// drain pages through s until the list ends or the page budget is spent,
// writing each newly merged item to the job's writer. A checkpoint is saved
// after every successful page; a failed page leaves the previous one intact.
func drain[T listsync.Item, P any](ctx context.Context, s *listsync.Synchronizer[T, P], params P, j job) (outcome, error) {
	defer s.Close()
	s.Configure(params)

	var out outcome
	file := checkpoint.FilePath(j.stateDir, string(j.kind), j.key)

	var (
		st listsync.State[T]
		// carried holds boundary keys from the checkpoint while the cursor
		// has not moved past that bound.
		carried []string
		from    listsync.Cursor
	)
	if j.resume {
		cp, err := checkpoint.Load(file)
		if err != nil {
			return out, err
		}
		out.resumed = true
		out.baseCount = cp.ItemCount
		if !cp.HasMore {
			j.log.WithField("items", cp.ItemCount).Info("checkpoint shows the list is complete")
			return out, nil
		}
		cursor, err := cp.Cursor()
		if err != nil {
			return out, err
		}
		if err := s.Restore(cursor, cp.Boundary...); err != nil {
			return out, err
		}
		carried, from = cp.Boundary, cursor
		j.log.WithFields(logrus.Fields{"cursor": cursor.String(), "previous_run": cp.RunID}).Info("resuming from checkpoint")
		st = s.LoadMore(ctx)
	} else {
		st = s.Refresh(ctx)
	}

	for {
		out.pages++
		if st.Err != nil {
			return out, fmt.Errorf("page %d of %s: %w", out.pages, j.kind, st.Err)
		}

		for _, item := range st.Items[out.written:] {
			if err := j.writer.Write(item); err != nil {
				return out, fmt.Errorf("failed to write item: %w", err)
			}
		}
		out.written = len(st.Items)
		out.hasMore = st.HasMore

		cp := checkpoint.New(string(j.kind), j.key, st.Cursor, st.HasMore, out.baseCount+out.written, j.runID)
		cp.Boundary = checkpoint.BoundaryKeys(st.Items, st.Cursor)
		if st.Cursor == from {
			cp.Boundary = append(cp.Boundary, carried...)
		}
		if err := checkpoint.Save(cp, file); err != nil {
			return out, fmt.Errorf("failed to save checkpoint: %w", err)
		}

		j.progress.update(fmt.Sprintf("%s: %s items, page %d", j.kind, humanize.Comma(int64(out.written)), out.pages))

		if !st.HasMore || (j.maxPages > 0 && out.pages >= j.maxPages) {
			return out, nil
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}
		st = s.LoadMore(ctx)
	}
}
