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
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

// 📝 Parse parses the config from HCL. The variable config_dir holds the directory of the
// config file so targets can be written relative to it.
func (p *HCLParser) Parse(ctx context.Context, filename string, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filepath.Base(filename))
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"config_dir": cty.StringVal(filepath.Dir(filename)),
		},
	}

	// Define HCL schema
	type hclConfig struct {
		Target string `hcl:"target"`
		Rules  []struct {
			Search      string `hcl:"search"`
			Replace     string `hcl:"replace"`
			Description string `hcl:"description,optional"`
			Impact      string `hcl:"impact,optional"`
			Expand      bool   `hcl:"expand,optional"`
		} `hcl:"rule,block"`
		Verify *struct {
			Absent  []string `hcl:"absent,optional"`
			Present []string `hcl:"present,optional"`
			Strict  bool     `hcl:"strict,optional"`
		} `hcl:"verify,block"`
		NextSteps []string `hcl:"next_steps,optional"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{
		Target:    hclCfg.Target,
		NextSteps: hclCfg.NextSteps,
	}
	for _, r := range hclCfg.Rules {
		cfg.Rules = append(cfg.Rules, Rule{
			Search:      r.Search,
			Replace:     r.Replace,
			Description: r.Description,
			Impact:      r.Impact,
			Expand:      r.Expand,
		})
	}
	if hclCfg.Verify != nil {
		cfg.Verify = &VerifyArgs{
			Absent:  hclCfg.Verify.Absent,
			Present: hclCfg.Verify.Present,
			Strict:  hclCfg.Verify.Strict,
		}
	}

	return cfg, nil
}
