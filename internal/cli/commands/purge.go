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

package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"snapsweep/internal/destroy"
	"snapsweep/internal/lookup"
	"snapsweep/internal/mounts"
	"snapsweep/internal/settings"
	"snapsweep/internal/snapnames"
)

var purgeCmd = &cobra.Command{
	Use:   "purge <path>...",
	Short: "Destroy the snapshots holding versions of files",
	Long: `Destroy every snapshot holding a distinct version of the given files.

The snapshots to destroy are listed first and nothing happens until you answer
YES. Destroys run one at a time and stop at the first failure; snapshots
already destroyed are not restored.

Examples:
  snapsweep purge ~/secrets.txt
  snapsweep purge --omit 2 ~/secrets.txt     # keep the two newest snapshots
  snapsweep purge --select --name weekly ~/secrets.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPurge,
}

var (
	purgeSelect  bool
	purgeFilters filterFlags
)

func init() {
	purgeCmd.Flags().BoolVar(&purgeSelect, "select", false, "Choose which snapshots to destroy")
	purgeFilters.register(purgeCmd)
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	vm, idx, err := runLookup(ctx, args, lookupOptions(cfg, false, false))
	if err != nil {
		return err
	}
	return runDestroy(ctx, cmd, destroy.KindPurge, purgeSelect, vm, idx, purgeFilters.filters())
}

// runDestroy resolves snapshot names and drives the confirmation workflow
// on the terminal. A missing zfs command fails before any prompt.
func runDestroy(ctx context.Context, cmd *cobra.Command, kind destroy.Kind, interactive bool, vm *lookup.VersionsMap, idx *mounts.Index, f snapnames.Filters) error {
	zfs, err := resolveZFSCommand(cfg.ZFSCommand)
	if err != nil {
		return err
	}

	names, err := snapnames.NewResolver(idx, cfg.Workers).Resolve(ctx, vm, f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := destroy.NewWorkflow(destroy.Config{
		Kind:        kind,
		Interactive: interactive,
		LockPath:    settings.LockPath(),
	}, destroy.NewTerminalSelector(os.Stdin, out), destroy.NewZFSDestroyer(zfs), out)

	if j := openJournal(cfg); j != nil {
		defer j.Close()
		w.WithRecorder(j)
	}

	_, err = w.Run(ctx, names)
	return err
}
