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
)

var versionsCmd = &cobra.Command{
	Use:   "versions <path>...",
	Short: "List the snapshot versions of files",
	Long: `List every distinct copy of the given files found in the snapshots of the
datasets holding them, oldest first, followed by the live file.

Copies with identical modification time and size are shown once.

Examples:
  snapsweep versions ~/notes.txt
  snapsweep versions --no-live /tank/docs/report.pdf
  snapsweep versions --json --alt-replicated /etc/hosts`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVersions,
}

var (
	versionsNoLive        bool
	versionsAltReplicated bool
	versionsJSON          bool
)

func init() {
	versionsCmd.Flags().BoolVar(&versionsNoLive, "no-live", false, "Omit the live copies")
	versionsCmd.Flags().BoolVar(&versionsAltReplicated, "alt-replicated", false, "Also search replicated datasets")
	versionsCmd.Flags().BoolVar(&versionsJSON, "json", false, "Print JSON")
	rootCmd.AddCommand(versionsCmd)
}

func runVersions(cmd *cobra.Command, args []string) error {
	opts := lookupOptions(cfg, versionsNoLive, versionsAltReplicated)
	vm, _, err := runLookup(cmd.Context(), args, opts)
	if err != nil {
		return err
	}

	if versionsJSON {
		return writeVersionsJSON(cmd.OutOrStdout(), vm)
	}
	printVersions(cmd.OutOrStdout(), vm)
	return nil
}
