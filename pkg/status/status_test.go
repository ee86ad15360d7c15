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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

const target = "src/services/api/dmpApi.js"

func setupTestManager(t *testing.T, now time.Time) (context.Context, afero.Fs, *Manager) {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := logger.WithContext(context.Background())
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("src/services/api", 0755))
	return ctx, fs, New(fs, WithClock(func() time.Time { return now }))
}

func TestBackupFile(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 30, 5, 0, time.Local)
	modTime := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)

	tests := []struct {
		name        string
		setup       func(t *testing.T, fs afero.Fs)
		wantPath    string
		wantErr     bool
		errContains string
	}{
		{
			name: "creates_timestamped_copy",
			setup: func(t *testing.T, fs afero.Fs) {
				require.NoError(t, afero.WriteFile(fs, target, []byte("content"), 0600))
				require.NoError(t, fs.Chtimes(target, modTime, modTime))
			},
			wantPath: target + ".backup_20261015_093005",
		},
		{
			name: "same_second_gets_counter",
			setup: func(t *testing.T, fs afero.Fs) {
				require.NoError(t, afero.WriteFile(fs, target, []byte("content"), 0600))
				require.NoError(t, fs.Chtimes(target, modTime, modTime))
				require.NoError(t, afero.WriteFile(fs, target+".backup_20261015_093005", []byte("older"), 0600))
				require.NoError(t, afero.WriteFile(fs, target+".backup_20261015_093005_1", []byte("older"), 0600))
			},
			wantPath: target + ".backup_20261015_093005_2",
		},
		{
			name:        "missing_source",
			setup:       func(t *testing.T, fs afero.Fs) {},
			wantErr:     true,
			errContains: "checking file existence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, fs, mgr := setupTestManager(t, now)
			tt.setup(t, fs)

			backup, err := mgr.BackupFile(ctx, target)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.ErrorIs(t, err, os.ErrNotExist)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, backup.Path)
			assert.Equal(t, target, backup.Target)
			assert.True(t, now.Equal(backup.CreatedAt))

			content, err := afero.ReadFile(fs, backup.Path)
			require.NoError(t, err)
			assert.Equal(t, "content", string(content), "backup content should match source")

			info, err := fs.Stat(backup.Path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "backup should keep permissions")
			assert.True(t, modTime.Equal(info.ModTime()), "backup should keep modification time")
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	t.Run("keeps_existing_mode", func(t *testing.T) {
		ctx, fs, mgr := setupTestManager(t, time.Now())
		require.NoError(t, afero.WriteFile(fs, target, []byte("old"), 0600))

		require.NoError(t, mgr.WriteFileAtomic(ctx, target, []byte("new")))

		content, err := afero.ReadFile(fs, target)
		require.NoError(t, err)
		assert.Equal(t, "new", string(content))

		info, err := fs.Stat(target)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

		exists, err := afero.Exists(fs, target+".tmp")
		require.NoError(t, err)
		assert.False(t, exists, "temp file should be renamed away")
	})

	t.Run("creates_new_file", func(t *testing.T) {
		ctx, fs, mgr := setupTestManager(t, time.Now())
		require.NoError(t, fs.MkdirAll("src", 0755))

		require.NoError(t, mgr.WriteFileAtomic(ctx, "src/new.js", []byte("x")))

		info, err := fs.Stat("src/new.js")
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
	})
}

// racingFs creates name right before its first open, as another run taking a backup in the same second would
type racingFs struct {
	afero.Fs
	name string
	done bool
}

func (r *racingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if name == r.name && !r.done {
		r.done = true
		if err := afero.WriteFile(r.Fs, name, []byte("other run"), 0600); err != nil {
			return nil, err
		}
	}
	return r.Fs.OpenFile(name, flag, perm)
}

// failingChtimesFs fails every Chtimes call
type failingChtimesFs struct {
	afero.Fs
}

func (f failingChtimesFs) Chtimes(name string, atime, mtime time.Time) error {
	return errors.New("chtimes failed")
}

func TestBackupFileNameTakenConcurrently(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 30, 5, 0, time.Local)
	ctx, fs, _ := setupTestManager(t, now)
	require.NoError(t, afero.WriteFile(fs, target, []byte("content"), 0644))

	base := target + ".backup_20261015_093005"
	mgr := New(&racingFs{Fs: fs, name: base}, WithClock(func() time.Time { return now }))

	backup, err := mgr.BackupFile(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, base+"_1", backup.Path)
	assert.Equal(t, 1, backup.Seq)

	other, err := afero.ReadFile(fs, base)
	require.NoError(t, err)
	assert.Equal(t, "other run", string(other), "the other run's backup should not be overwritten")

	ours, err := afero.ReadFile(fs, backup.Path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(ours))
}

func TestBackupFileFailureLeavesNothing(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 30, 5, 0, time.Local)
	ctx, fs, _ := setupTestManager(t, now)
	require.NoError(t, afero.WriteFile(fs, target, []byte("content"), 0644))

	mgr := New(failingChtimesFs{Fs: fs}, WithClock(func() time.Time { return now }))

	_, err := mgr.BackupFile(ctx, target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "copying file times")

	exists, err := afero.Exists(fs, target+".backup_20261015_093005")
	require.NoError(t, err)
	assert.False(t, exists, "partial backup should be removed")
}

func TestBackupFileRejectsDirectory(t *testing.T) {
	ctx, fs, mgr := setupTestManager(t, time.Now())
	require.NoError(t, fs.MkdirAll(target, 0755))

	_, err := mgr.BackupFile(ctx, target)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotRegular)

	entries, err := afero.ReadDir(fs, "src/services/api")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the directory itself should exist")
}

func TestCopyFileRemovesPartialCopyOnDisk(t *testing.T) {
	dir := t.TempDir()
	fs := afero.NewOsFs()

	src := filepath.Join(dir, "dmpApi.js")
	require.NoError(t, os.Mkdir(src, 0755))
	info, err := os.Stat(src)
	require.NoError(t, err)

	dst := filepath.Join(dir, "dmpApi.js.backup_20261015_093005")
	err = copyFile(fs, src, dst, info)
	require.Error(t, err)

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr), "destination should be removed after a failed copy")
}

func TestRestoreFileFailureKeepsTarget(t *testing.T) {
	ctx, fs, _ := setupTestManager(t, time.Now())
	require.NoError(t, afero.WriteFile(fs, target, []byte("patched"), 0644))
	backupPath := target + ".backup_20261015_093005"
	require.NoError(t, afero.WriteFile(fs, backupPath, []byte("original"), 0644))

	mgr := New(failingChtimesFs{Fs: fs})

	err := mgr.RestoreFile(ctx, target, backupPath)
	require.Error(t, err)

	content, err := afero.ReadFile(fs, target)
	require.NoError(t, err)
	assert.Equal(t, "patched", string(content), "target should be untouched")

	exists, err := afero.Exists(fs, target+".tmp")
	require.NoError(t, err)
	assert.False(t, exists, "temp file should be removed")
}

func TestStatRejectsDirectory(t *testing.T) {
	ctx, _, mgr := setupTestManager(t, time.Now())

	_, err := mgr.Stat(ctx, "src/services")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotRegular)
}

func TestRestoreFile(t *testing.T) {
	ctx, fs, mgr := setupTestManager(t, time.Date(2026, 10, 15, 9, 30, 5, 0, time.Local))
	modTime := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)
	require.NoError(t, afero.WriteFile(fs, target, []byte("original"), 0640))
	require.NoError(t, fs.Chtimes(target, modTime, modTime))

	backup, err := mgr.BackupFile(ctx, target)
	require.NoError(t, err)

	require.NoError(t, mgr.WriteFileAtomic(ctx, target, []byte("patched")))
	require.NoError(t, mgr.RestoreFile(ctx, target, backup.Path))

	content, err := afero.ReadFile(fs, target)
	require.NoError(t, err)
	assert.Equal(t, "original", string(content))

	info, err := fs.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
	assert.True(t, modTime.Equal(info.ModTime()))

	exists, err := afero.Exists(fs, backup.Path)
	require.NoError(t, err)
	assert.True(t, exists, "backup should be kept after restore")

	err = mgr.RestoreFile(ctx, target, target+".backup_missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backup file does not exist")
}

func TestListBackups(t *testing.T) {
	ctx, fs, mgr := setupTestManager(t, time.Now())
	for _, name := range []string{
		target,
		target + ".backup_20261015_093005_1",
		target + ".backup_20261015_093005",
		target + ".backup_20250101_000000",
		target + ".backup_garbage",
		target + ".backup_20261015_093005_x",
		"src/services/api/other.js.backup_20261015_093005",
	} {
		require.NoError(t, afero.WriteFile(fs, name, []byte("x"), 0644))
	}
	require.NoError(t, fs.MkdirAll(target+".backup_20270101_000000", 0755))

	backups, err := mgr.ListBackups(ctx, target)
	require.NoError(t, err)

	var paths []string
	for _, b := range backups {
		paths = append(paths, b.Path)
		assert.Equal(t, target, b.Target)
	}
	assert.Equal(t, []string{
		target + ".backup_20250101_000000",
		target + ".backup_20261015_093005",
		target + ".backup_20261015_093005_1",
	}, paths)
}

func TestListBackupsGlobMetaInName(t *testing.T) {
	ctx, fs, mgr := setupTestManager(t, time.Now())
	name := "src/[id].js"
	require.NoError(t, afero.WriteFile(fs, name, []byte("x"), 0644))
	require.NoError(t, afero.WriteFile(fs, name+".backup_20261015_093005", []byte("x"), 0644))
	require.NoError(t, afero.WriteFile(fs, "src/i.js.backup_20261015_093005", []byte("x"), 0644))

	backups, err := mgr.ListBackups(ctx, name)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, name+".backup_20261015_093005", backups[0].Path)
}

func TestStat(t *testing.T) {
	ctx, fs, mgr := setupTestManager(t, time.Now())
	require.NoError(t, afero.WriteFile(fs, target, []byte("abc"), 0644))

	info, err := mgr.Stat(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", info.Checksum)

	_, err = mgr.Stat(ctx, "missing.js")
	require.Error(t, err)
}

func TestFileStatusString(t *testing.T) {
	assert.Equal(t, "patched", StatusPatched.String())
	assert.Equal(t, "unchanged", StatusUnchanged.String())
	assert.Equal(t, "restored", StatusRestored.String())
	assert.Equal(t, "unknown", FileStatus(99).String())
}
