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

package text

import (
	"bytes"
	"context"
	"io"
	"regexp"

	"gitlab.com/tozd/go/errors"
)

// 🔄 ReplacementRule is one ordered search/replace step
type ReplacementRule struct {
	Search      string // Regular expression to look for
	Replace     string // Replacement text
	Description string // Human readable description
	Expand      bool   // Expand $1/${name} references in Replace
}

// 📊 RuleResult holds the match counts of one rule
type RuleResult struct {
	Rule   ReplacementRule
	Before int // Matches in the buffer before the rule ran
	After  int // Matches of the same pattern left after the rule ran
}

// Replaced returns how many matches the rule rewrote. Every match found is rewritten;
// After may still be non-zero when the replacement matches the pattern again.
func (r RuleResult) Replaced() int {
	return r.Before
}

// 📦 ReplacementResult is the outcome of running every rule over one buffer
type ReplacementResult struct {
	OriginalContent []byte
	ModifiedContent []byte
	Rules           []RuleResult
	WasModified     bool
}

// RegexpReplacer applies rules in order, each one seeing the output of the previous
type RegexpReplacer struct{}

// NewRegexpReplacer creates a new RegexpReplacer
func NewRegexpReplacer() *RegexpReplacer {
	return &RegexpReplacer{}
}

// ReplaceText reads content and runs every rule over it in memory
func (r *RegexpReplacer) ReplaceText(ctx context.Context, content io.Reader, rules []ReplacementRule) (*ReplacementResult, error) {
	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	result := &ReplacementResult{
		OriginalContent: originalContent,
		ModifiedContent: originalContent,
	}

	current := originalContent
	for i, rule := range rules {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("replacing text: %w", err)
		}

		re, err := regexp.Compile(rule.Search)
		if err != nil {
			return nil, errors.Errorf("rule %d: compiling search: %w", i, err)
		}

		before := len(re.FindAllIndex(current, -1))
		if rule.Expand {
			current = re.ReplaceAll(current, []byte(rule.Replace))
		} else {
			current = re.ReplaceAllLiteral(current, []byte(rule.Replace))
		}
		after := len(re.FindAllIndex(current, -1))

		result.Rules = append(result.Rules, RuleResult{
			Rule:   rule,
			Before: before,
			After:  after,
		})
	}

	result.ModifiedContent = current
	result.WasModified = !bytes.Equal(current, originalContent)
	return result, nil
}

// Replacements returns the total number of matches rewritten by every rule
func (r *ReplacementResult) Replacements() int {
	total := 0
	for _, rr := range r.Rules {
		total += rr.Replaced()
	}
	return total
}

// ValidateRules checks that every rule has a search pattern that compiles
func ValidateRules(rules []ReplacementRule) error {
	for i, rule := range rules {
		if rule.Search == "" {
			return errors.Errorf("rule %d: search is required", i)
		}
		if _, err := regexp.Compile(rule.Search); err != nil {
			return errors.Errorf("rule %d: compiling search: %w", i, err)
		}
	}
	return nil
}

// CountMatches returns the number of non-overlapping matches of pattern in content
func CountMatches(pattern string, content []byte) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, errors.Errorf("compiling %q: %w", pattern, err)
	}
	return len(re.FindAllIndex(content, -1)), nil
}
