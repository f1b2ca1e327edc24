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
	"fmt"

	"github.com/spf13/cobra"
)

var mountsCmd = &cobra.Command{
	Use:   "mounts",
	Short: "Show the datasets snapsweep can search",
	Long: `Show the ZFS and btrfs mounts found in the mount table, with the replicated
datasets searched by --alt-replicated listed under each.`,
	Args: cobra.NoArgs,
	RunE: runMounts,
}

func init() {
	rootCmd.AddCommand(mountsCmd)
}

func runMounts(cmd *cobra.Command, args []string) error {
	idx := buildIndex(cmd.Context(), cfg)
	if idx.Len() == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No snapshot-capable datasets are mounted.")
		return nil
	}
	printMounts(cmd.OutOrStdout(), idx)
	return nil
}
