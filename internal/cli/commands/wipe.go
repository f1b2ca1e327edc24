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
	"github.com/spf13/cobra"

	"snapsweep/internal/destroy"
	"snapsweep/internal/lookup"
	"snapsweep/internal/snapnames"
)

var wipeCmd = &cobra.Command{
	Use:   "wipe <path>...",
	Short: "Destroy every snapshot still holding deleted files",
	Long: `Destroy every snapshot that still holds a copy of files you have already
deleted. Each path must no longer exist and must belong to a ZFS dataset;
otherwise nothing is destroyed.

Examples:
  snapsweep wipe ~/old-key.pem
  snapsweep wipe --select ~/old-key.pem`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWipe,
}

var wipeSelect bool

func init() {
	wipeCmd.Flags().BoolVar(&wipeSelect, "select", false, "Choose which snapshots to destroy")
	rootCmd.AddCommand(wipeCmd)
}

func runWipe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	paths, err := absPaths(args)
	if err != nil {
		return err
	}

	idx := buildIndex(ctx, cfg)
	svc := lookup.NewService(rootFS, idx, lookupOptions(cfg, false, false))
	if err := destroy.CheckWipePreconditions(rootFS, svc.Resolver(), cfg.SnapPoint, paths); err != nil {
		return err
	}

	vm, err := svc.Lookup(ctx, paths)
	if err != nil {
		return err
	}
	return runDestroy(ctx, cmd, destroy.KindWipe, wipeSelect, vm, idx, snapnames.Filters{})
}
