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

	"snapsweep/internal/snapnames"
)

var snapNamesCmd = &cobra.Command{
	Use:   "snap-names <path>...",
	Short: "Print the snapshots holding versions of files",
	Long: `Print, for each file, the dataset@snapshot identifiers of the snapshots that
hold a distinct version of it, oldest first.

Examples:
  snapsweep snap-names ~/notes.txt
  snapsweep snap-names --name daily --omit 3 ~/notes.txt
  snapsweep snap-names --exclude 'autosnap_*_hourly' ~/notes.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSnapNames,
}

var snapNamesFilters filterFlags

// filterFlags are the snapshot name filters shared by snap-names and purge.
type filterFlags struct {
	names   []string
	exclude []string
	omit    int
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.names, "name", nil, "Keep snapshots whose name contains any of these")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Drop snapshots whose name matches these gitignore-style patterns")
	cmd.Flags().IntVar(&f.omit, "omit", 0, "Keep the N most recent snapshots of each file")
}

func (f *filterFlags) filters() snapnames.Filters {
	return snapnames.Filters{Names: f.names, Exclude: f.exclude, OmitCount: f.omit}
}

func init() {
	snapNamesFilters.register(snapNamesCmd)
	rootCmd.AddCommand(snapNamesCmd)
}

func runSnapNames(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	vm, idx, err := runLookup(ctx, args, lookupOptions(cfg, false, false))
	if err != nil {
		return err
	}

	names, err := snapnames.NewResolver(idx, cfg.Workers).Resolve(ctx, vm, snapNamesFilters.filters())
	if err != nil {
		return err
	}
	printSnapNames(cmd.OutOrStdout(), names)
	return nil
}
