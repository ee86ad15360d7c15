// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package status

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

const (
	// BackupSuffix separates the original name from the timestamp
	BackupSuffix = ".backup_"
	// BackupTimeFormat is the YYYYMMDD_HHMMSS timestamp layout
	BackupTimeFormat = "20060102_150405"
)

// 📦 Backup is an immutable copy of the target taken before it was patched
type Backup struct {
	Path      string    // Location of the copy
	Target    string    // File the copy was taken from
	CreatedAt time.Time // Timestamp encoded in the name
	Seq       int       // Counter for backups taken within the same second
}

// BackupPath returns the backup name for path at time t
func BackupPath(path string, t time.Time) string {
	return path + BackupSuffix + t.Format(BackupTimeFormat)
}

func withSeq(base string, seq int) string {
	return fmt.Sprintf("%s_%d", base, seq)
}

// ListBackups returns every backup sibling of path, oldest first
func (m *Manager) ListBackups(ctx context.Context, path string) ([]Backup, error) {
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	pattern := escapeGlob(name) + BackupSuffix + "*"

	entries, err := afero.ReadDir(m.fs, dir)
	if err != nil {
		return nil, errors.Errorf("reading directory %s: %w", dir, err)
	}

	var backups []Backup
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matched, err := doublestar.Match(pattern, entry.Name())
		if err != nil {
			return nil, errors.Errorf("matching %q: %w", pattern, err)
		}
		if !matched {
			continue
		}

		createdAt, seq, ok := parseBackupName(strings.TrimPrefix(entry.Name(), name+BackupSuffix))
		if !ok {
			zerolog.Ctx(ctx).Debug().Str("file", entry.Name()).Msg("skipping file with unparseable backup suffix")
			continue
		}

		backups = append(backups, Backup{
			Path:      filepath.Join(dir, entry.Name()),
			Target:    path,
			CreatedAt: createdAt,
			Seq:       seq,
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if !backups[i].CreatedAt.Equal(backups[j].CreatedAt) {
			return backups[i].CreatedAt.Before(backups[j].CreatedAt)
		}
		return backups[i].Seq < backups[j].Seq
	})

	return backups, nil
}

// parseBackupName parses "20060102_150405" with an optional "_<n>" counter
func parseBackupName(suffix string) (time.Time, int, bool) {
	if len(suffix) < len(BackupTimeFormat) {
		return time.Time{}, 0, false
	}

	createdAt, err := time.ParseInLocation(BackupTimeFormat, suffix[:len(BackupTimeFormat)], time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}

	rest := suffix[len(BackupTimeFormat):]
	if rest == "" {
		return createdAt, 0, true
	}
	if !strings.HasPrefix(rest, "_") {
		return time.Time{}, 0, false
	}
	seq, err := strconv.Atoi(rest[1:])
	if err != nil || seq < 1 {
		return time.Time{}, 0, false
	}
	return createdAt, seq, true
}

// escapeGlob quotes the characters doublestar treats as meta
func escapeGlob(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '{', '}', '\\':
			sb.WriteRune('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
