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

package log

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/text"
)

// 🎨 Display configuration
const (
	ruleIndent  = 4  // spaces to indent rule entries
	descWidth   = 35 // Base width for the rule description
	countWidth  = 15 // Width for the replacement count
	statusWidth = 15 // Width for status text
)

// 🎯 RuleOperation is the outcome of one correction rule for logging
type RuleOperation struct {
	Index       int    // 1-based position in the rule list
	Description string // Rule description
	Search      string // Search pattern
	Replace     string // Replacement text
	Before      int    // Matches before the rule ran
	After       int    // Matches left after the rule ran
}

// 🔍 CheckOperation is the outcome of one verification pattern for logging
type CheckOperation struct {
	Pattern string // Pattern checked
	Kind    string // absent or present
	Matches int    // Matches found
	Passed  bool   // Whether the expectation held
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger writing user output to console and records to zlog
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatRuleOperation formats a rule outcome for display
func (l *Logger) formatRuleOperation(op RuleOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	var status string
	switch {
	case op.Before == 0:
		symbol = '-'
		symbolColor = color.FgYellow
		status = "not found"
	case op.After > 0:
		symbol = '⟳'
		symbolColor = color.FgBlue
		status = fmt.Sprintf("%d left", op.After)
	default:
		symbol = '✓'
		symbolColor = color.FgGreen
		status = "corrected"
	}

	desc := op.Description
	if desc == "" {
		desc = op.Search
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", ruleIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", descWidth, fmt.Sprintf("[%d] %s", op.Index, desc)),
		color.New(color.FgCyan).Sprint(fmt.Sprintf("%-*s", countWidth, fmt.Sprintf("%d found", op.Before))),
		fmt.Sprintf("%-*s", statusWidth, status))
}

// 📝 LogRule logs the outcome of one correction rule
func (l *Logger) LogRule(ctx context.Context, op RuleOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatRuleOperation(op))

	l.zlog.Info().
		Int("rule", op.Index).
		Str("description", op.Description).
		Str("search", op.Search).
		Str("replace", op.Replace).
		Int("before", op.Before).
		Int("after", op.After).
		Msg("rule applied")
}

// 📊 LogChecks renders verification outcomes as a table
func (l *Logger) LogChecks(ctx context.Context, checks []CheckOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data := pterm.TableData{{"check", "pattern", "matches", "result"}}
	for _, c := range checks {
		result := "ok"
		if !c.Passed {
			result = "FAIL"
			if c.Kind == "present" {
				result = "missing"
			}
		}
		data = append(data, []string{c.Kind, c.Pattern, strconv.Itoa(c.Matches), result})

		l.zlog.Info().
			Str("kind", c.Kind).
			Str("pattern", c.Pattern).
			Int("matches", c.Matches).
			Bool("passed", c.Passed).
			Msg("verification check")
	}

	if err := l.renderTable(data); err != nil {
		l.zlog.Error().Err(err).Msg("rendering verification table")
	}
}

// 📊 Table renders rows under a header line
func (l *Logger) Table(header []string, rows [][]string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data := pterm.TableData{header}
	data = append(data, rows...)
	return l.renderTable(data)
}

func (l *Logger) renderTable(data pterm.TableData) error {
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(l.console, table)
	return nil
}

// 📝 LogDiff prints removed lines in red and added lines in green
func (l *Logger) LogDiff(lines []text.DiffLine) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, line := range lines {
		c := color.New(color.FgRed)
		if line.Op == text.DiffAdded {
			c = color.New(color.FgGreen)
		}
		fmt.Fprintf(l.console, "%*s%s\n", ruleIndent, "", c.Sprint(line.String()))
	}
	l.zlog.Debug().Int("lines", len(lines)).Str("diff", text.FormatDiff(lines)).Msg("diff")
}

// 📝 Steps logs a numbered list under a title
func (l *Logger) Steps(title string, steps []string) {
	if len(steps) == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "\n%s\n", color.New(color.Bold).Sprint(title))
	for i, step := range steps {
		fmt.Fprintf(l.console, "%*s%d. %s\n", ruleIndent, "", i+1, step)
	}
	l.zlog.Debug().Strs("steps", steps).Msg(title)
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("patchrc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
