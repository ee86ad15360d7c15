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
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// 📊 FileStatus represents what happened to the target during a run
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusUnchanged            // Content left as it was
	StatusPatched              // Content rewritten by the rules
	StatusRestored             // Content copied back from a backup
)

// ErrNotRegular is returned when a path exists but is not a regular file
var ErrNotRegular = errors.Base("not a regular file")

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusPatched:
		return "patched"
	case StatusRestored:
		return "restored"
	default:
		return "unknown"
	}
}

// 📄 FileInfo contains metadata about a file
type FileInfo struct {
	Path     string      // Path to the file
	Size     int64       // File size in bytes
	Mode     os.FileMode // File permissions
	ModTime  time.Time   // Last modification time
	Checksum string      // SHA-256 of the content
}

// 💾 FileManager handles all file system operations on the target and its backups
type FileManager interface {
	// Core operations
	FileExists(ctx context.Context, path string) (bool, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Stat(ctx context.Context, path string) (FileInfo, error)

	// Atomic operations
	WriteFileAtomic(ctx context.Context, path string, content []byte) error

	// Backup operations
	BackupFile(ctx context.Context, path string) (*Backup, error)
	RestoreFile(ctx context.Context, path string, backupPath string) error
	ListBackups(ctx context.Context, path string) ([]Backup, error)
}

var _ FileManager = (*Manager)(nil)

// 🔧 Manager implements FileManager on top of an afero filesystem
type Manager struct {
	fs  afero.Fs
	now func() time.Time
}

// Option configures a Manager
type Option func(*Manager)

// WithClock replaces the clock used to name backups
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// 🏭 New creates a new file manager
func New(fs afero.Fs, opts ...Option) *Manager {
	m := &Manager{
		fs:  fs,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// 🔍 calculateChecksum generates a SHA-256 hash of the content
func calculateChecksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func (m *Manager) FileExists(ctx context.Context, path string) (bool, error) {
	exists, err := afero.Exists(m.fs, path)
	if err != nil {
		return false, errors.Errorf("checking file existence: %w", err)
	}
	return exists, nil
}

func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	content, err := afero.ReadFile(m.fs, path)
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	return content, nil
}

func (m *Manager) Stat(ctx context.Context, path string) (FileInfo, error) {
	info, err := m.fs.Stat(path)
	if err != nil {
		return FileInfo{}, errors.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return FileInfo{}, errors.Errorf("stat %s: %w", path, ErrNotRegular)
	}

	content, err := m.ReadFile(ctx, path)
	if err != nil {
		return FileInfo{}, err
	}

	return FileInfo{
		Path:     path,
		Size:     info.Size(),
		Mode:     info.Mode(),
		ModTime:  info.ModTime(),
		Checksum: calculateChecksum(content),
	}, nil
}

// WriteFileAtomic replaces path through a temp file and a rename, keeping the current
// permissions when the file already exists.
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	mode := os.FileMode(0644)
	if info, err := m.fs.Stat(path); err == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(err, os.ErrNotExist) {
		return errors.Errorf("checking file existence: %w", err)
	}

	tempPath := path + ".tmp"

	if err := afero.WriteFile(m.fs, tempPath, content, mode); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}

	// umask may have narrowed the mode on creation
	if err := m.fs.Chmod(tempPath, mode); err != nil {
		_ = m.fs.Remove(tempPath)
		return errors.Errorf("setting temp file mode: %w", err)
	}

	if err := m.fs.Rename(tempPath, path); err != nil {
		_ = m.fs.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(content)).Msg("wrote file")
	return nil
}

// BackupFile copies path to a sibling named <path>.backup_<YYYYMMDD_HHMMSS>, keeping
// content, permissions and modification time. Backups are created exclusively, so an
// existing one is never overwritten: a _<n> counter is appended instead. A failed copy
// leaves nothing behind.
func (m *Manager) BackupFile(ctx context.Context, path string) (*Backup, error) {
	info, err := m.fs.Stat(path)
	if err != nil {
		return nil, errors.Errorf("checking file existence: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.Errorf("backing up %s: %w", path, ErrNotRegular)
	}

	createdAt := m.now()
	base := BackupPath(path, createdAt)
	backupPath := base
	seq := 0
	for {
		err := copyFile(m.fs, path, backupPath, info)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, errors.Errorf("creating backup: %w", err)
		}
		seq++
		backupPath = withSeq(base, seq)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Str("backup", backupPath).Msg("created backup")

	return &Backup{
		Path:      backupPath,
		Target:    path,
		CreatedAt: createdAt,
		Seq:       seq,
	}, nil
}

// RestoreFile copies backupPath over path with the backup's permissions and modification
// time, through a temp file and a rename. The backup itself is left in place.
func (m *Manager) RestoreFile(ctx context.Context, path string, backupPath string) error {
	info, err := m.fs.Stat(backupPath)
	if errors.Is(err, os.ErrNotExist) {
		return errors.Errorf("backup file does not exist: %s", backupPath)
	} else if err != nil {
		return errors.Errorf("checking backup existence: %w", err)
	}
	if !info.Mode().IsRegular() {
		return errors.Errorf("restoring from %s: %w", backupPath, ErrNotRegular)
	}

	tempPath := path + ".tmp"
	if err := m.fs.Remove(tempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Errorf("removing stale temp file: %w", err)
	}

	if err := copyFile(m.fs, backupPath, tempPath, info); err != nil {
		return errors.Errorf("restoring from backup: %w", err)
	}

	if err := m.fs.Rename(tempPath, path); err != nil {
		_ = m.fs.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Str("backup", backupPath).Msg("restored backup")
	return nil
}

// copyFile creates dst exclusively and fills it from src with src's mode and times.
// dst is removed again when any step after its creation fails.
func copyFile(fs afero.Fs, src, dst string, info os.FileInfo) (err error) {
	source, err := fs.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	destination, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = fs.Remove(dst)
		}
	}()

	if _, err := io.Copy(destination, source); err != nil {
		destination.Close()
		return errors.Errorf("copying file: %w", err)
	}
	if err := destination.Close(); err != nil {
		return errors.Errorf("closing destination file: %w", err)
	}

	if err := fs.Chmod(dst, info.Mode().Perm()); err != nil {
		return errors.Errorf("copying file mode: %w", err)
	}
	if err := fs.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return errors.Errorf("copying file times: %w", err)
	}

	return nil
}
