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

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes, filename is used for diagnostics and relative paths
	Parse(ctx context.Context, filename string, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔄 Rule is one search/replace correction applied to the target
type Rule struct {
	Search      string `json:"search" yaml:"search"`                               // Regular expression to look for
	Replace     string `json:"replace" yaml:"replace"`                             // Replacement text
	Description string `json:"description,omitempty" yaml:"description,omitempty"` // Human readable description
	Impact      string `json:"impact,omitempty" yaml:"impact,omitempty"`           // What the correction fixes
	Expand      bool   `json:"expand,omitempty" yaml:"expand,omitempty"`           // Expand $1/${name} in Replace
}

// 🔍 VerifyArgs controls the post-patch verification
type VerifyArgs struct {
	Absent  []string `json:"absent,omitempty" yaml:"absent,omitempty"`   // Patterns that must be gone
	Present []string `json:"present,omitempty" yaml:"present,omitempty"` // Patterns expected after patching
	Strict  bool     `json:"strict,omitempty" yaml:"strict,omitempty"`   // Missing present patterns fail verification
}

// 📚 Config represents the complete configuration
type Config struct {
	Target    string      `json:"target" yaml:"target"`
	Rules     []Rule      `json:"rules" yaml:"rules"`
	Verify    *VerifyArgs `json:"verify,omitempty" yaml:"verify,omitempty"`
	NextSteps []string    `json:"next_steps,omitempty" yaml:"next_steps,omitempty"`
}

// 🎯 Load loads the configuration from a file on fs
func Load(ctx context.Context, fs afero.Fs, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, path, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🎯 LoadOrDefault loads the config at path, falling back to Default when the file does not exist
func LoadOrDefault(ctx context.Context, fs afero.Fs, path string) (*Config, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, errors.Errorf("checking config file: %w", err)
	}
	if !exists {
		zerolog.Ctx(ctx).Debug().Str("path", path).Msg("config file not found, using built-in rules")
		cfg := Default()
		if err := cfg.Validate(); err != nil {
			return nil, errors.Errorf("validating default config: %w", err)
		}
		return cfg, nil
	}
	return Load(ctx, fs, path)
}

// 🏭 Default returns the built-in DMP auto-mesures URL corrections
func Default() *Config {
	return &Config{
		Target: filepath.Join("src", "services", "api", "dmpApi.js"),
		Rules: []Rule{
			{
				Search:      `/patient/auto-mesures`,
				Replace:     `/patients/dmp/auto-mesures`,
				Description: "CRUD URLs by id",
				Impact:      "getAutoMesureByIdDMP, updateAutoMesureDMP, deleteAutoMesureDMP",
			},
			{
				Search:      `/patient/\$\{patientId\}/auto-mesures/stats`,
				Replace:     `/patients/${patientId}/dmp/auto-mesures/stats`,
				Description: "statistics URL",
				Impact:      "getAutoMesuresStatsDMP",
			},
			{
				Search:      `/patient/\$\{patientId\}/auto-mesures/last`,
				Replace:     `/patients/${patientId}/dmp/auto-mesures/last`,
				Description: "last measurement URL",
				Impact:      "getLastAutoMesureByTypeDMP",
			},
		},
		Verify: &VerifyArgs{
			Present: []string{
				`/patients/dmp/auto-mesures`,
				`/patients/\$\{patientId\}/dmp/auto-mesures/stats`,
				`/patients/\$\{patientId\}/dmp/auto-mesures/last`,
			},
		},
		NextSteps: []string{
			"Reload the application",
			"Check that the auto-mesures 404 is gone",
			"Exercise the AutoMesuresWidget component",
		},
	}
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if cfg.Target == "" {
		return errors.Errorf("target is required")
	}
	if len(cfg.Rules) == 0 {
		return errors.Errorf("at least one rule is required")
	}

	if err := text.ValidateRules(cfg.ReplacementRules()); err != nil {
		return err
	}

	if cfg.Verify != nil {
		for _, p := range append(append([]string{}, cfg.Verify.Absent...), cfg.Verify.Present...) {
			if _, err := regexp.Compile(p); err != nil {
				return errors.Errorf("verify pattern %q: %w", p, err)
			}
		}
	}

	cfg.Target = filepath.Clean(cfg.Target)

	return nil
}

// ReplacementRules converts the configured rules for the replacer, keeping their order
func (cfg *Config) ReplacementRules() []text.ReplacementRule {
	out := make([]text.ReplacementRule, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		out = append(out, text.ReplacementRule{
			Search:      r.Search,
			Replace:     r.Replace,
			Description: r.Description,
			Expand:      r.Expand,
		})
	}
	return out
}

// AbsentPatterns returns the patterns that must not match once the target is patched.
// Without an explicit list every rule's search pattern is used.
func (cfg *Config) AbsentPatterns() []string {
	if cfg.Verify != nil && len(cfg.Verify.Absent) > 0 {
		return cfg.Verify.Absent
	}
	out := make([]string, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		out = append(out, r.Search)
	}
	return out
}

// PresentPatterns returns the patterns expected to match once the target is patched.
// Without an explicit list each literal replacement is quoted; expanding rules are skipped
// since their output is not known up front.
func (cfg *Config) PresentPatterns() []string {
	if cfg.Verify != nil && len(cfg.Verify.Present) > 0 {
		return cfg.Verify.Present
	}
	out := make([]string, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		if r.Expand || r.Replace == "" {
			continue
		}
		out = append(out, regexp.QuoteMeta(r.Replace))
	}
	return out
}

// StrictVerify reports whether missing present patterns fail verification
func (cfg *Config) StrictVerify() bool {
	return cfg.Verify != nil && cfg.Verify.Strict
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s (%d rules)", cfg.Target, len(cfg.Rules))
}
