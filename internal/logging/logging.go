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

// Package logging builds the logrus logger shared by the command and the
// library packages.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// ComponentKey is the field naming the subsystem that emitted a log line.
const ComponentKey = "component"

// Config selects the level (logrus names), format ("text" or "json") and
// output ("stderr" or "stdout").
type Config struct {
	Level  string
	Format string
	Output string
}

// New returns a logger configured by cfg. Empty fields take the defaults:
// info level, text format, stderr.
func New(cfg Config) (*logrus.Logger, error) {
	l := logrus.New()

	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	l.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format %q (want text or json)", cfg.Format)
	}

	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		l.SetOutput(os.Stderr)
	case "stdout":
		l.SetOutput(os.Stdout)
	default:
		return nil, fmt.Errorf("invalid log output %q (want stderr or stdout)", cfg.Output)
	}

	return l, nil
}

// WithComponent returns an entry tagged with the component name.
func WithComponent(l *logrus.Logger, name string) *logrus.Entry {
	return l.WithField(ComponentKey, name)
}

// Discard returns an entry that drops everything.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
