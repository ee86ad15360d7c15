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
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// CheckKind tells what a verification check expects
type CheckKind string

const (
	CheckAbsent  CheckKind = "absent"  // pattern must not match
	CheckPresent CheckKind = "present" // pattern should match at least once
)

// 🔍 Check is the outcome of one pattern
type Check struct {
	Pattern string
	Kind    CheckKind
	Matches int
	Passed  bool
}

// 📋 VerifyReport is the outcome of a verification pass
type VerifyReport struct {
	Target       string
	Checks       []Check
	AllCorrected bool // no absent pattern matches
	AllPresent   bool // every present pattern matches
	Strict       bool // missing present patterns fail the report
}

// Passed reports the aggregate verdict
func (r *VerifyReport) Passed() bool {
	if r.Strict {
		return r.AllCorrected && r.AllPresent
	}
	return r.AllCorrected
}

// Failed returns the checks that did not hold
func (r *VerifyReport) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}

func (o *operator) Verify(ctx context.Context) (*VerifyReport, error) {
	logger := zerolog.Ctx(ctx)
	target := o.config.Target

	if _, err := o.requireTarget(ctx); err != nil {
		return nil, err
	}

	content, err := o.files.ReadFile(ctx, target)
	if err != nil {
		return nil, errors.Errorf("reading target: %w", err)
	}

	report := &VerifyReport{
		Target:       target,
		AllCorrected: true,
		AllPresent:   true,
		Strict:       o.config.StrictVerify(),
	}

	for _, p := range o.config.AbsentPatterns() {
		n, err := text.CountMatches(p, content)
		if err != nil {
			return nil, errors.Errorf("checking absent pattern: %w", err)
		}
		check := Check{Pattern: p, Kind: CheckAbsent, Matches: n, Passed: n == 0}
		report.AllCorrected = report.AllCorrected && check.Passed
		report.Checks = append(report.Checks, check)
	}

	for _, p := range o.config.PresentPatterns() {
		n, err := text.CountMatches(p, content)
		if err != nil {
			return nil, errors.Errorf("checking present pattern: %w", err)
		}
		check := Check{Pattern: p, Kind: CheckPresent, Matches: n, Passed: n > 0}
		report.AllPresent = report.AllPresent && check.Passed
		report.Checks = append(report.Checks, check)
	}

	logger.Debug().
		Bool("all_corrected", report.AllCorrected).
		Bool("all_present", report.AllPresent).
		Bool("strict", report.Strict).
		Msg("verification done")

	if !report.Passed() {
		return report, errors.Errorf("%w: %d of %d checks failed", ErrVerificationFailed, len(report.Failed()), len(report.Checks))
	}
	return report, nil
}
