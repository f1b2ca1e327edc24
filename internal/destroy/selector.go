// Copyright 2026 Snapsweep Authors
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

package destroy

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// ViewMode tells a Selector how to present its buffer.
type ViewMode int

const (
	// ViewSelect offers the buffer lines for multi-selection.
	ViewSelect ViewMode = iota
	// ViewConsent shows a preview and asks for a yes/no answer.
	ViewConsent
)

func (m ViewMode) String() string {
	switch m {
	case ViewSelect:
		return "select"
	case ViewConsent:
		return "consent"
	default:
		return "unknown"
	}
}

// Selector presents a newline-delimited buffer and returns the chosen lines.
type Selector interface {
	Select(ctx context.Context, buffer string, mode ViewMode) ([]string, error)
}

// TerminalSelector is a line-based Selector on a terminal.
type TerminalSelector struct {
	out     io.Writer
	scanner *bufio.Scanner
}

// NewTerminalSelector reads answers from in and writes prompts to out.
func NewTerminalSelector(in io.Reader, out io.Writer) *TerminalSelector {
	return &TerminalSelector{out: out, scanner: bufio.NewScanner(in)}
}

// Select prints the buffer and reads one line of input. In ViewSelect mode
// the line holds the numbers of the chosen entries, or "all".
func (s *TerminalSelector) Select(ctx context.Context, buffer string, mode ViewMode) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch mode {
	case ViewSelect:
		lines := strings.Split(strings.TrimRight(buffer, "\n"), "\n")
		color.New(color.Bold).Fprintln(s.out, "Select snapshots to destroy:")
		for i, l := range lines {
			fmt.Fprintf(s.out, "%4d  %s\n", i+1, l)
		}
		fmt.Fprint(s.out, "Numbers separated by spaces, or \"all\": ")
		answer, err := s.readLine()
		if err != nil {
			return nil, err
		}
		return pickLines(lines, answer), nil

	case ViewConsent:
		fmt.Fprint(s.out, buffer)
		fmt.Fprint(s.out, "[YES/NO]: ")
		answer, err := s.readLine()
		if err != nil {
			return nil, err
		}
		return []string{answer}, nil
	}
	return nil, fmt.Errorf("unsupported view mode %s", mode)
}

func (s *TerminalSelector) readLine() (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.scanner.Text()), nil
}

// pickLines resolves a selection answer against lines. Out-of-range and
// malformed numbers are ignored.
func pickLines(lines []string, answer string) []string {
	if strings.EqualFold(answer, "all") {
		return append([]string(nil), lines...)
	}
	var out []string
	seen := make(map[int]bool)
	for _, f := range strings.FieldsFunc(answer, func(r rune) bool { return r == ' ' || r == ',' }) {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 || n > len(lines) || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, lines[n-1])
	}
	return out
}
