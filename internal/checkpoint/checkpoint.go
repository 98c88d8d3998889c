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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoCheckpoint is returned by Load when no checkpoint file exists.
var ErrNoCheckpoint = errors.New("no checkpoint found")

// DefaultDir returns ~/.listsync/state, or ./.listsync/state when the home
// directory cannot be determined.
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".listsync", "state")
}

// FilePath returns the checkpoint file for a list and parameter key under dir.
// An empty dir means DefaultDir.
// Returns: <dir>/<list>--<key>.state with unsafe characters replaced.
func FilePath(dir, list, key string) string {
	if dir == "" {
		dir = DefaultDir()
	}
	name := sanitize(list)
	if key != "" {
		name += "--" + sanitize(key)
	}
	return filepath.Join(dir, name+".state")
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.', r == '=':
			return r
		default:
			return '-'
		}
	}, s)
}

// Save atomically writes cp to file, stamping the version and checksum.
func Save(cp *Checkpoint, file string) error {
	cp.Version = CurrentVersion

	checksum, err := calculateChecksum(cp)
	if err != nil {
		return fmt.Errorf("failed to calculate checksum: %w", err)
	}
	cp.Checksum = checksum

	if mkdirErr := os.MkdirAll(filepath.Dir(file), 0o755); mkdirErr != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", mkdirErr)
	}

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	// CreateTemp opens the file 0600 with a unique name, so concurrent
	// writers never share a temp file.
	f, err := os.CreateTemp(filepath.Dir(file), filepath.Base(file)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}
	tempFile := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to write temporary checkpoint file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to sync temporary checkpoint file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to close temporary checkpoint file: %w", err)
	}

	if err := os.Rename(tempFile, file); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary checkpoint file: %w", err)
	}
	return nil
}

// Load reads file and verifies its version and checksum.
func Load(file string) (*Checkpoint, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s; run without --resume first", ErrNoCheckpoint, file)
		}
		return nil, fmt.Errorf("failed to read checkpoint %s: %w", file, err)
	}

	var cp Checkpoint
	if unmarshalErr := json.Unmarshal(data, &cp); unmarshalErr != nil {
		return nil, fmt.Errorf("checkpoint is corrupted (invalid JSON): %w", unmarshalErr)
	}

	if cp.Version != CurrentVersion {
		return nil, fmt.Errorf("checkpoint version (%d) is incompatible with current version (%d)",
			cp.Version, CurrentVersion)
	}

	saved := cp.Checksum
	calculated, err := calculateChecksum(&cp)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate checksum for validation: %w", err)
	}
	if saved != calculated {
		return nil, fmt.Errorf("checkpoint is corrupted (checksum mismatch)")
	}

	return &cp, nil
}

// Delete removes file. A missing file is not an error.
func Delete(file string) error {
	err := os.Remove(file)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// calculateChecksum hashes cp with its Checksum field cleared.
func calculateChecksum(cp *Checkpoint) (string, error) {
	c := *cp
	c.Checksum = ""

	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}
