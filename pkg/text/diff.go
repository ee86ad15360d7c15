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
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffOp marks a changed line as removed or added
type DiffOp int

const (
	DiffRemoved DiffOp = iota
	DiffAdded
)

// DiffLine is one changed line between two buffers
type DiffLine struct {
	Op   DiffOp
	Text string
}

// String renders the line with a -/+ prefix
func (l DiffLine) String() string {
	if l.Op == DiffAdded {
		return "+ " + l.Text
	}
	return "- " + l.Text
}

// Diff returns the lines removed and added between original and modified, in order.
// Unchanged lines are dropped.
func Diff(original, modified []byte) []DiffLine {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(original), string(modified))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []DiffLine
	for _, d := range diffs {
		var op DiffOp
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = DiffRemoved
		case diffmatchpatch.DiffInsert:
			op = DiffAdded
		default:
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out = append(out, DiffLine{Op: op, Text: line})
		}
	}
	return out
}

// FormatDiff renders lines one per row
func FormatDiff(lines []DiffLine) string {
	var sb strings.Builder
	for _, l := range lines {
		fmt.Fprintln(&sb, l.String())
	}
	return sb.String()
}
