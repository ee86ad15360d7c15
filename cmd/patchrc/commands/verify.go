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
)

// NewVerifyCmd creates a new verify command
func NewVerifyCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the target without modifying it",
		Long: `Verify re-reads the target and reports, per pattern, whether the old URLs
are gone and the corrected ones present. The target is never modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			op, err := opts.Operator()
			if err != nil {
				return err
			}

			opts.Console.Header("verifying " + opts.Config.Target)

			report, err := op.Verify(ctx)
			if report != nil {
				logReport(ctx, opts.Console, report)
			}
			return err
		},
	}

	return cmd
}
