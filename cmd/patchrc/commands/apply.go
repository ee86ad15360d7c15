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

package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewApplyCmd creates a new apply command
func NewApplyCmd(opts *opts.RootOpts) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Back up the target, apply the corrections and verify them",
		Long: `Apply patches the configured target.
It will:
1. Create a timestamped backup next to the target
2. Apply every rule in order and report match counts
3. Write the target only if it changed
4. Verify the result and print the next steps

With --dry-run no backup is taken and nothing is written; the diff is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			console := opts.Console

			op, err := opts.Operator()
			if err != nil {
				return err
			}

			if dryRun {
				console.Header("dry run on " + opts.Config.Target)
			} else {
				console.Header("patching " + opts.Config.Target)
			}

			res, err := op.Patch(ctx, operation.PatchOptions{DryRun: dryRun})
			if res != nil && res.Backup != nil {
				console.Successf("backup created: %s", res.Backup.Path)
			}
			if res != nil {
				logPatch(ctx, console, res)
			}
			if errors.Is(err, operation.ErrNoChanges) {
				console.Warning("no changes needed, the file may already be corrected")
				return err
			}
			if err != nil {
				return err
			}

			if dryRun {
				console.LogNewline()
				console.LogDiff(res.Diff)
				console.LogNewline()
				console.Infof("%d replacements would be made", res.Replacements())
				return nil
			}

			console.Successf("%s %s, %d replacements", res.Target, res.Status, res.Replacements())
			console.Infof("sha256 %s -> %s", shortSum(res.Before.Checksum), shortSum(res.After.Checksum))
			console.LogNewline()

			report, err := op.Verify(ctx)
			if report != nil {
				logReport(ctx, console, report)
			}
			if err != nil {
				return err
			}

			console.Steps("Next steps", opts.Config.NextSteps)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the changes without backing up or writing")

	return cmd
}
