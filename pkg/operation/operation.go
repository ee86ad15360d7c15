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
	"io"

	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/status"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrTargetNotFound is returned before any side effect when the target does not exist
	ErrTargetNotFound = errors.Base("target file not found")
	// ErrNoChanges is returned when no rule altered the content; the backup is kept and nothing is written
	ErrNoChanges = errors.Base("no changes to apply")
	// ErrNoBackup is returned by Restore when there is nothing to restore from
	ErrNoBackup = errors.Base("no backup found")
	// ErrVerificationFailed is returned by Verify when an old pattern is still present
	ErrVerificationFailed = errors.Base("verification failed")
)

// 🎯 Operator defines the main interface for patchrc operations
type Operator interface {
	// Patch backs up the target, applies every rule in order and writes the result on net change
	Patch(ctx context.Context, opts PatchOptions) (*PatchResult, error)
	// Verify re-reads the target and checks the old patterns are gone and the new ones present
	Verify(ctx context.Context) (*VerifyReport, error)
	// Restore copies a backup over the target, the newest one when backupPath is empty
	Restore(ctx context.Context, backupPath string) (*RestoreResult, error)
	// Backups lists the target's backups, oldest first
	Backups(ctx context.Context) ([]status.Backup, error)
}

// 🔄 Replacer runs the ordered rule list over a buffer
type Replacer interface {
	ReplaceText(ctx context.Context, content io.Reader, rules []text.ReplacementRule) (*text.ReplacementResult, error)
}

// 🔧 Options contains configuration for the operator
type Options struct {
	// Config holds the target and the correction rules
	Config *config.Config
	// Files performs every filesystem access
	Files status.FileManager
	// Replacer applies the rules, a RegexpReplacer when nil
	Replacer Replacer
}

// 🏭 New creates a new operator with the given options
func New(opts Options) (Operator, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	if opts.Files == nil {
		return nil, errors.Errorf("file manager is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	if opts.Replacer == nil {
		opts.Replacer = text.NewRegexpReplacer()
	}
	return &operator{
		config:   opts.Config,
		files:    opts.Files,
		replacer: opts.Replacer,
	}, nil
}

// 🎮 operator implements the Operator interface
type operator struct {
	config   *config.Config
	files    status.FileManager
	replacer Replacer
}

// requireTarget stats the target, refusing anything that is not an existing regular file
func (o *operator) requireTarget(ctx context.Context) (status.FileInfo, error) {
	target := o.config.Target
	exists, err := o.files.FileExists(ctx, target)
	if err != nil {
		return status.FileInfo{}, err
	}
	if !exists {
		return status.FileInfo{}, errors.Errorf("%w: %s", ErrTargetNotFound, target)
	}

	info, err := o.files.Stat(ctx, target)
	if errors.Is(err, status.ErrNotRegular) {
		return status.FileInfo{}, errors.Errorf("%w: %s is not a regular file", ErrTargetNotFound, target)
	} else if err != nil {
		return status.FileInfo{}, err
	}
	return info, nil
}

func (o *operator) Backups(ctx context.Context) ([]status.Backup, error) {
	return o.files.ListBackups(ctx, o.config.Target)
}
