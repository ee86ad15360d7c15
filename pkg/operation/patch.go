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
	"bytes"
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/status"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// PatchOptions tunes a single Patch run
type PatchOptions struct {
	// DryRun computes the result without taking a backup or writing the target
	DryRun bool
}

// 📦 PatchResult is what one Patch run did
type PatchResult struct {
	Target  string
	Backup  *status.Backup    // nil on dry run
	Rules   []text.RuleResult // per rule match counts, in order
	Changed bool              // the buffer differs from the file
	Written bool              // the target was overwritten
	DryRun  bool
	Diff    []text.DiffLine
	Status  status.FileStatus // patched once written, unchanged otherwise
	Before  status.FileInfo   // target before the run
	After   status.FileInfo   // target after the run, equal to Before unless written
}

// Replacements returns the total number of matches rewritten
func (r *PatchResult) Replacements() int {
	total := 0
	for _, rr := range r.Rules {
		total += rr.Replaced()
	}
	return total
}

func (o *operator) Patch(ctx context.Context, opts PatchOptions) (*PatchResult, error) {
	logger := zerolog.Ctx(ctx)
	target := o.config.Target

	before, err := o.requireTarget(ctx)
	if err != nil {
		return nil, err
	}

	result := &PatchResult{
		Target: target,
		DryRun: opts.DryRun,
		Status: status.StatusUnchanged,
		Before: before,
		After:  before,
	}

	if !opts.DryRun {
		backup, err := o.files.BackupFile(ctx, target)
		if err != nil {
			return nil, errors.Errorf("backing up %s: %w", target, err)
		}
		result.Backup = backup
		logger.Info().Str("backup", backup.Path).Msg("backup created")
	}

	if err := ctx.Err(); err != nil {
		return result, errors.Errorf("patching: %w", err)
	}

	content, err := o.files.ReadFile(ctx, target)
	if err != nil {
		return result, errors.Errorf("reading target: %w", err)
	}

	replaced, err := o.replacer.ReplaceText(ctx, bytes.NewReader(content), o.config.ReplacementRules())
	if err != nil {
		return result, errors.Errorf("applying rules: %w", err)
	}

	result.Rules = replaced.Rules
	result.Changed = replaced.WasModified
	result.Diff = text.Diff(replaced.OriginalContent, replaced.ModifiedContent)

	for i, rr := range replaced.Rules {
		logger.Debug().
			Int("rule", i+1).
			Str("search", rr.Rule.Search).
			Int("before", rr.Before).
			Int("after", rr.After).
			Msg("rule applied")
	}

	if !result.Changed {
		return result, errors.Errorf("%w: %s", ErrNoChanges, target)
	}

	if opts.DryRun {
		logger.Debug().Str("target", target).Msg("dry run, not writing")
		return result, nil
	}

	if err := o.files.WriteFileAtomic(ctx, target, replaced.ModifiedContent); err != nil {
		return result, errors.Errorf("writing target: %w", err)
	}
	result.Written = true
	result.Status = status.StatusPatched

	after, err := o.files.Stat(ctx, target)
	if err != nil {
		return result, errors.Errorf("checking patched target: %w", err)
	}
	result.After = after

	logger.Info().Str("target", target).Int("replacements", result.Replacements()).Msg("target patched")
	return result, nil
}
