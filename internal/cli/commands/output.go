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
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"snapsweep/internal/journal"
	"snapsweep/internal/lookup"
	"snapsweep/internal/mounts"
	"snapsweep/internal/snapnames"
)

const timeLayout = "2006-01-02 15:04:05"

var heading = color.New(color.Bold)

func printVersions(w io.Writer, vm *lookup.VersionsMap) {
	live := make(map[string]lookup.PathRecord, len(vm.LiveVersions()))
	for _, r := range vm.LiveVersions() {
		live[r.Path] = r
	}

	for i, e := range vm.Entries() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		heading.Fprintln(w, e.Key.Path)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, v := range e.Versions {
			fmt.Fprintf(tw, "  %s\t%d\t%s\n", v.Metadata.ModTime.Format(timeLayout), v.Metadata.Size, v.Path)
		}
		if r, ok := live[e.Key.Path]; ok {
			if r.IsPhantom() {
				fmt.Fprintf(tw, "  %s\t%s\t%s\n", "deleted", "-", r.Path)
			} else {
				fmt.Fprintf(tw, "  %s\t%d\t%s (live)\n", r.Metadata.ModTime.Format(timeLayout), r.Metadata.Size, r.Path)
			}
		}
		if len(e.Versions) == 0 {
			fmt.Fprintln(tw, "  no snapshot versions")
		}
		tw.Flush()
	}
}

type jsonVersion struct {
	Path     string     `json:"path"`
	Size     *int64     `json:"size,omitempty"`
	Modified *time.Time `json:"modified,omitempty"`
}

type jsonEntry struct {
	Path     string        `json:"path"`
	Versions []jsonVersion `json:"versions"`
	Live     *jsonVersion  `json:"live,omitempty"`
}

func toJSONVersion(r lookup.PathRecord) jsonVersion {
	v := jsonVersion{Path: r.Path}
	if !r.IsPhantom() {
		mt := r.Metadata.ModTime.UTC()
		size := r.Metadata.Size
		v.Size = &size
		v.Modified = &mt
	}
	return v
}

func writeVersionsJSON(w io.Writer, vm *lookup.VersionsMap) error {
	live := make(map[string]lookup.PathRecord, len(vm.LiveVersions()))
	for _, r := range vm.LiveVersions() {
		live[r.Path] = r
	}

	out := make([]jsonEntry, 0, vm.Len())
	for _, e := range vm.Entries() {
		je := jsonEntry{Path: e.Key.Path, Versions: []jsonVersion{}}
		for _, v := range e.Versions {
			je.Versions = append(je.Versions, toJSONVersion(v))
		}
		if r, ok := live[e.Key.Path]; ok {
			lv := toJSONVersion(r)
			je.Live = &lv
		}
		out = append(out, je)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printSnapNames(w io.Writer, m *snapnames.SnapNameMap) {
	for i, e := range m.Entries() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		heading.Fprintln(w, e.Key.Path)
		for _, n := range e.Names {
			fmt.Fprintf(w, "  %s\n", n)
		}
	}
}

func printMounts(w io.Writer, idx *mounts.Index) {
	alts := mounts.NewAltFinder(idx).All()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MOUNT\tDATASET\tKIND")
	for _, e := range idx.Entries() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.MountPath, e.Source, e.Kind)
		if md, ok := alts[e.MountPath]; ok {
			for _, alt := range md.AltMounts {
				fmt.Fprintf(tw, "  replica\t%s\t\n", alt)
			}
		}
	}
	tw.Flush()
}

func printHistory(w io.Writer, runs []journal.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No destroy runs recorded.")
		return
	}
	for i, r := range runs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		heading.Fprintf(w, "%s  %s  %s\n", r.StartedAt.Local().Format(timeLayout), r.Kind, r.Status)
		fmt.Fprintf(w, "  run %s\n", r.ID)
		for _, t := range r.Targets {
			mark := " "
			if t.Destroyed {
				mark = "x"
			}
			fmt.Fprintf(w, "  [%s] %s\n", mark, t.Identifier)
		}
		if r.Error != "" {
			fmt.Fprintf(w, "  error: %s\n", r.Error)
		}
	}
}
