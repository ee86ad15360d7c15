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

package operation

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 📦 RestoreResult is what one Restore run did
type RestoreResult struct {
	Target string
	Backup *status.Backup
	Status status.FileStatus // restored, or unchanged when the target already matched the backup
	Before status.FileInfo   // zero when the target did not exist
	After  status.FileInfo
}

func (o *operator) Restore(ctx context.Context, backupPath string) (*RestoreResult, error) {
	target := o.config.Target

	var backup *status.Backup
	if backupPath == "" {
		backups, err := o.files.ListBackups(ctx, target)
		if err != nil {
			return nil, errors.Errorf("listing backups: %w", err)
		}
		if len(backups) == 0 {
			return nil, errors.Errorf("%w: %s", ErrNoBackup, target)
		}
		backup = &backups[len(backups)-1]
	} else {
		exists, err := o.files.FileExists(ctx, backupPath)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, errors.Errorf("%w: %s", ErrNoBackup, backupPath)
		}
		backup = &status.Backup{Path: backupPath, Target: target}
	}

	result := &RestoreResult{
		Target: target,
		Backup: backup,
		Status: status.StatusRestored,
	}

	exists, err := o.files.FileExists(ctx, target)
	if err != nil {
		return nil, err
	}
	if exists {
		before, err := o.files.Stat(ctx, target)
		if err != nil {
			return nil, errors.Errorf("checking target: %w", err)
		}
		result.Before = before
	}

	if err := o.files.RestoreFile(ctx, target, backup.Path); err != nil {
		return nil, errors.Errorf("restoring %s: %w", target, err)
	}

	after, err := o.files.Stat(ctx, target)
	if err != nil {
		return nil, errors.Errorf("checking restored target: %w", err)
	}
	result.After = after
	if result.Before.Checksum == after.Checksum {
		result.Status = status.StatusUnchanged
	}

	zerolog.Ctx(ctx).Info().
		Str("target", target).
		Str("backup", backup.Path).
		Stringer("status", result.Status).
		Msg("target restored")
	return result, nil
}
