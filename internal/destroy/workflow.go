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

// Package destroy drives the consent-gated destruction of the snapshots
// holding versions of files.
package destroy

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"snapsweep/internal/common"
	"snapsweep/internal/journal"
	"snapsweep/internal/snapnames"
)

// Kind names the destructive operation.
type Kind string

const (
	KindPurge Kind = "purge"
	KindWipe  Kind = "wipe"
)

// State is a step of the workflow.
type State int

const (
	StateBuildPlan State = iota
	StateInteractiveSelect
	StatePreview
	StateAwaitConsent
	StateExecute
	StateReport
)

var stateNames = map[State]string{
	StateBuildPlan:         "BUILD_PLAN",
	StateInteractiveSelect: "INTERACTIVE_SELECT",
	StatePreview:           "PREVIEW",
	StateAwaitConsent:      "AWAIT_CONSENT",
	StateExecute:           "EXECUTE",
	StateReport:            "REPORT",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Recorder persists finished runs. *journal.Journal implements it.
type Recorder interface {
	Record(ctx context.Context, run journal.Run) error
}

// Config selects the workflow variant.
type Config struct {
	Kind        Kind
	Interactive bool   // down-select targets through the Selector first
	LockPath    string // lock file serialising destroy runs; empty disables
}

// Outcome summarises a run.
type Outcome struct {
	RunID     string
	Targets   []string // planned identifiers, in destroy order
	Destroyed []string // identifiers destroyed before the run ended
	Declined  bool
}

// Workflow is a single-use destroy run.
type Workflow struct {
	cfg      Config
	selector Selector
	executor DestroyExecutor
	recorder Recorder
	out      io.Writer
	now      func() time.Time

	state   State
	visited []State
}

// NewWorkflow returns a workflow reporting to out.
func NewWorkflow(cfg Config, selector Selector, executor DestroyExecutor, out io.Writer) *Workflow {
	if cfg.Kind == "" {
		cfg.Kind = KindPurge
	}
	return &Workflow{
		cfg:      cfg,
		selector: selector,
		executor: executor,
		out:      out,
		now:      time.Now,
	}
}

// WithRecorder journals the run's outcome through r.
func (w *Workflow) WithRecorder(r Recorder) *Workflow {
	w.recorder = r
	return w
}

// State returns the current state.
func (w *Workflow) State() State {
	return w.state
}

// Visited returns the states entered so far, in order.
func (w *Workflow) Visited() []State {
	return w.visited
}

func (w *Workflow) enter(s State) {
	log.Debugf("destroy: %s", s)
	w.state = s
	w.visited = append(w.visited, s)
}

// Run destroys the snapshots in names once the user consents. An executor
// that fails its Check stops the run before anything is shown. Declining is
// not an error. Destruction stops at the first failure; snapshots already
// destroyed stay destroyed.
func (w *Workflow) Run(ctx context.Context, names *snapnames.SnapNameMap) (*Outcome, error) {
	outcome := &Outcome{RunID: uuid.New().String()}
	if c, ok := w.executor.(Checker); ok {
		if err := c.Check(); err != nil {
			return outcome, err
		}
	}
	started := w.now()

	w.enter(StateBuildPlan)
	targets, err := w.buildPlan(ctx, names)
	if err != nil {
		w.record(ctx, outcome, started, journal.StatusFailed, err)
		return outcome, err
	}
	if len(targets) == 0 {
		w.enter(StateReport)
		fmt.Fprintln(w.out, "No snapshots selected. Nothing was destroyed.")
		return outcome, nil
	}
	outcome.Targets = targets

	w.enter(StatePreview)
	preview := w.preview(names.Paths(), targets)

	w.enter(StateAwaitConsent)
	ok, err := w.awaitConsent(ctx, preview)
	if err != nil {
		err = fmt.Errorf("consent not given: %w", err)
		w.record(ctx, outcome, started, journal.StatusFailed, err)
		return outcome, err
	}
	if !ok {
		w.enter(StateReport)
		outcome.Declined = true
		fmt.Fprintf(w.out, "User declined %s. No snapshots were destroyed.\n", w.cfg.Kind)
		w.record(ctx, outcome, started, journal.StatusDeclined, nil)
		return outcome, nil
	}

	w.enter(StateExecute)
	if err := w.execute(ctx, outcome); err != nil {
		w.record(ctx, outcome, started, journal.StatusFailed, err)
		return outcome, err
	}

	w.enter(StateReport)
	color.New(color.FgGreen).Fprintf(w.out, "%s completed successfully.\n", titleCase(string(w.cfg.Kind)))
	w.record(ctx, outcome, started, journal.StatusCompleted, nil)
	return outcome, nil
}

// buildPlan flattens names in key order, optionally narrowed by the user.
func (w *Workflow) buildPlan(ctx context.Context, names *snapnames.SnapNameMap) ([]string, error) {
	all := names.Identifiers()
	if !w.cfg.Interactive || len(all) == 0 {
		return all, nil
	}

	w.enter(StateInteractiveSelect)
	chosen, err := w.selector.Select(ctx, strings.Join(all, "\n"), ViewSelect)
	if err != nil {
		return nil, fmt.Errorf("snapshot selection failed: %w", err)
	}
	picked := make(map[string]bool, len(chosen))
	for _, c := range chosen {
		picked[strings.TrimSpace(c)] = true
	}

	// plan order, not selection order
	var out []string
	for _, id := range all {
		if picked[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (w *Workflow) preview(paths, targets []string) string {
	var b strings.Builder
	b.WriteString("Snapshots of the following files will be destroyed:\n\n")
	for _, p := range paths {
		fmt.Fprintf(&b, "  %s\n", p)
	}
	b.WriteString("\nThe following snapshots will be destroyed:\n\n")
	for _, t := range targets {
		fmt.Fprintf(&b, "  %s\n", t)
	}
	fmt.Fprintf(&b, "\nThis cannot be undone. Proceed with %s?\n\nYES\nNO\n", w.cfg.Kind)
	return b.String()
}

// awaitConsent prompts until the answer is YES/Y or NO/N, in any case.
func (w *Workflow) awaitConsent(ctx context.Context, preview string) (bool, error) {
	for {
		answer, err := w.selector.Select(ctx, preview, ViewConsent)
		if err != nil {
			return false, err
		}
		first := ""
		if len(answer) > 0 {
			first = strings.ToUpper(strings.TrimSpace(answer[0]))
		}
		switch first {
		case "YES", "Y":
			return true, nil
		case "NO", "N":
			return false, nil
		}
		fmt.Fprintln(w.out, "Please answer YES or NO.")
	}
}

// execute destroys the planned snapshots one at a time, in plan order.
func (w *Workflow) execute(ctx context.Context, outcome *Outcome) error {
	if w.cfg.LockPath != "" {
		lock := flock.New(w.cfg.LockPath)
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("failed to acquire destroy lock: %w", err)
		}
		if !locked {
			return fmt.Errorf("%s: %w", w.cfg.LockPath, common.ErrDestroyInProgress)
		}
		defer lock.Unlock()
	}

	for _, id := range outcome.Targets {
		if err := w.executor.Destroy(ctx, id); err != nil {
			return classify(id, err)
		}
		log.Infof("destroyed %s", id)
		fmt.Fprintf(w.out, "Destroyed %s\n", id)
		outcome.Destroyed = append(outcome.Destroyed, id)
	}
	return nil
}

// record journals the run. Journal failures never fail the run.
func (w *Workflow) record(ctx context.Context, outcome *Outcome, started time.Time, status journal.Status, runErr error) {
	if w.recorder == nil {
		return
	}
	destroyed := make(map[string]bool, len(outcome.Destroyed))
	for _, id := range outcome.Destroyed {
		destroyed[id] = true
	}
	run := journal.Run{
		ID:         outcome.RunID,
		Kind:       string(w.cfg.Kind),
		Status:     status,
		StartedAt:  started,
		FinishedAt: w.now(),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	for _, id := range outcome.Targets {
		run.Targets = append(run.Targets, journal.Target{Identifier: id, Destroyed: destroyed[id]})
	}
	if err := w.recorder.Record(ctx, run); err != nil {
		log.WithError(err).Warn("failed to journal destroy run")
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
