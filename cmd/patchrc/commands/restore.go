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
	"github.com/walteh/patchrc/pkg/status"
)

// NewRestoreCmd creates a new restore command
func NewRestoreCmd(opts *opts.RootOpts) *cobra.Command {
	var backupPath string

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Copy a backup back over the target",
		Long: `Restore replaces the target with a backup, the newest one unless --backup is given.
The backup itself is kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			op, err := opts.Operator()
			if err != nil {
				return err
			}

			opts.Console.Header("restoring " + opts.Config.Target)

			res, err := op.Restore(ctx, backupPath)
			if err != nil {
				return err
			}

			if res.Status == status.StatusUnchanged {
				opts.Console.Infof("%s already matches %s", res.Target, res.Backup.Path)
				return nil
			}
			opts.Console.Successf("restored %s from %s", res.Target, res.Backup.Path)
			opts.Console.Infof("sha256 %s -> %s", shortSum(res.Before.Checksum), shortSum(res.After.Checksum))
			return nil
		},
	}

	cmd.Flags().StringVarP(&backupPath, "backup", "b", "", "backup file to restore (default: newest)")

	return cmd
}

// NewBackupsCmd creates a new backups command
func NewBackupsCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "List the backups of the target, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			op, err := opts.Operator()
			if err != nil {
				return err
			}

			backups, err := op.Backups(ctx)
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				opts.Console.Infof("no backups of %s", opts.Config.Target)
				return nil
			}

			rows := make([][]string, 0, len(backups))
			for _, b := range backups {
				rows = append(rows, []string{b.Path, b.CreatedAt.Format("2006-01-02 15:04:05")})
			}
			return opts.Console.Table([]string{"backup", "created"}, rows)
		},
	}

	return cmd
}
