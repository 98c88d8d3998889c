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
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// progress shows a spinner with a status line on stderr. The zero value is
// silent, which is what --quiet and tests get.
type progress struct {
	s *spinner.Spinner
}

func newProgress(w io.Writer, enabled bool) *progress {
	if !enabled {
		return &progress{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Start()
	return &progress{s: s}
}

func (p *progress) update(msg string) {
	if p.s == nil {
		return
	}
	p.s.Lock()
	p.s.Suffix = " " + msg
	p.s.Unlock()
}

func (p *progress) stop() {
	if p.s == nil {
		return
	}
	p.s.Stop()
}
