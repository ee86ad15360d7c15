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

package main

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/commands"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

const defaultConfigFile = ".patchrc.yaml"

// rootFlags holds the persistent flags
type rootFlags struct {
	configFile string
	target     string
	debug      bool
}

// newRootCmd wires every command over fs, printing reports to stdout and structured logs to stderr
func newRootCmd(fs afero.Fs, stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{}
	ro := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "patchrc",
		Short: "Back up, patch and verify a source file with ordered regex corrections",
		Long: `patchrc fixes deprecated URL paths in a single file.
It will:
1. Refuse to run when the target is missing
2. Copy the target to <target>.backup_<YYYYMMDD_HHMMSS>
3. Apply each correction rule in order
4. Write the file only when something changed
5. Verify the old patterns are gone and the new ones present`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(stderr, flags.debug)
			ctx := logger.WithContext(cmd.Context())
			cmd.SetContext(ctx)

			return newRootOpts(ctx, cmd, fs, stdout, flags, ro)
		},
	}

	addRootFlags(cmd, flags)

	cmd.AddCommand(
		commands.NewApplyCmd(ro),
		commands.NewVerifyCmd(ro),
		commands.NewRestoreCmd(ro),
		commands.NewBackupsCmd(ro),
		commands.NewRulesCmd(ro),
		newVersionCmd(),
	)

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	return cmd
}

// newRootOpts loads the config and fills ro with initialized dependencies
func newRootOpts(ctx context.Context, cmd *cobra.Command, fs afero.Fs, stdout io.Writer, flags *rootFlags, ro *opts.RootOpts) error {
	var cfg *config.Config
	var err error
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(ctx, fs, flags.configFile)
	} else {
		cfg, err = config.LoadOrDefault(ctx, fs, flags.configFile)
	}
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	if flags.target != "" {
		cfg.Target = flags.target
		if err := cfg.Validate(); err != nil {
			return errors.Errorf("validating config: %w", err)
		}
	}

	zerolog.Ctx(ctx).Debug().Str("config", cfg.String()).Msg("config loaded")

	ro.Config = cfg
	ro.Files = status.New(fs)
	ro.Console = log.New(stdout, *zerolog.Ctx(ctx))

	return nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", defaultConfigFile, "config file path (yaml, json or hcl)")
	cmd.PersistentFlags().StringVarP(&flags.target, "target", "t", "", "override the file to patch")
	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")
}

// setupLogging builds the structured logger, quiet unless debug is set
func setupLogging(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger()
}
