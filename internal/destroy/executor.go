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
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"snapsweep/internal/common"
	"snapsweep/internal/util"
)

// DestroyExecutor destroys one snapshot. Implementations return a
// *ToolError when the tool reports a problem.
type DestroyExecutor interface {
	Destroy(ctx context.Context, identifier string) error
}

// ToolError is a failure reported by the external destroy tool.
type ToolError struct {
	Identifier string
	Message    string // the tool's stderr, verbatim
}

func (e *ToolError) Error() string {
	return e.Message
}

// Checker is implemented by executors that can tell, before anything is
// planned or prompted, whether they are able to run at all.
type Checker interface {
	Check() error
}

// ZFSDestroyer runs `<command> destroy <identifier>`.
type ZFSDestroyer struct {
	Command string
}

// NewZFSDestroyer returns an executor invoking command, "zfs" when empty.
func NewZFSDestroyer(command string) *ZFSDestroyer {
	if command == "" {
		command = "zfs"
	}
	return &ZFSDestroyer{Command: command}
}

// Destroy runs the destroy command once. Any output on stderr is a failure
// whatever the exit status.
func (z *ZFSDestroyer) Destroy(ctx context.Context, identifier string) error {
	exe, err := z.lookup()
	if err != nil {
		return err
	}

	log.Debugf("destroy: %s destroy %s", exe, identifier)
	out, err := util.RunCommand(ctx, exe, "destroy", identifier)
	if msg := out.StderrString(); msg != "" {
		return &ToolError{Identifier: identifier, Message: msg}
	}
	if err != nil {
		return &ToolError{Identifier: identifier, Message: err.Error()}
	}
	return nil
}

// Check reports ErrZFSCommandNotFound when the command cannot be found.
func (z *ZFSDestroyer) Check() error {
	_, err := z.lookup()
	return err
}

func (z *ZFSDestroyer) lookup() (string, error) {
	exe, err := util.LookupCommand(z.Command)
	if err != nil {
		return "", fmt.Errorf("%s: %w", z.Command, common.ErrZFSCommandNotFound)
	}
	return exe, nil
}

// classify maps an executor error onto the destroy error sentinels.
func classify(identifier string, err error) error {
	var te *ToolError
	if !errors.As(err, &te) {
		return fmt.Errorf("%s: %w: %w", identifier, common.ErrDestroyFailure, err)
	}
	if strings.Contains(strings.ToLower(te.Message), "permission denied") {
		return fmt.Errorf("%s: %w", identifier, common.ErrDestroyPermissionDenied)
	}
	return fmt.Errorf("%s: %w: %s", identifier, common.ErrDestroyFailure, te.Message)
}
