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
	"context"

	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/operation"
)

func shortSum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}

func logPatch(ctx context.Context, console *log.Logger, res *operation.PatchResult) {
	for i, rr := range res.Rules {
		console.LogRule(ctx, log.RuleOperation{
			Index:       i + 1,
			Description: rr.Rule.Description,
			Search:      rr.Rule.Search,
			Replace:     rr.Rule.Replace,
			Before:      rr.Before,
			After:       rr.After,
		})
	}
}

func logReport(ctx context.Context, console *log.Logger, report *operation.VerifyReport) {
	checks := make([]log.CheckOperation, 0, len(report.Checks))
	for _, c := range report.Checks {
		checks = append(checks, log.CheckOperation{
			Pattern: c.Pattern,
			Kind:    string(c.Kind),
			Matches: c.Matches,
			Passed:  c.Passed,
		})
	}
	console.LogChecks(ctx, checks)

	switch {
	case !report.AllCorrected:
		console.Error("some old patterns are still present")
	case !report.AllPresent && report.Strict:
		console.Error("some corrected patterns are missing")
	case !report.AllPresent:
		console.Warning("all old patterns are gone, but some corrected patterns were not found")
	default:
		console.Success("all corrections verified")
	}
}
