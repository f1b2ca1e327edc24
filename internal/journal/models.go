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

package journal

import (
	"github.com/uptrace/bun"
)

// RunModel represents the runs table.
type RunModel struct {
	bun.BaseModel `bun:"table:runs"`

	ID         string `bun:"id,pk"`
	Kind       string `bun:"kind,notnull"`        // "purge" or "wipe"
	Status     string `bun:"status,notnull"`      // "completed", "declined", "failed"
	StartedAt  int64  `bun:"started_at,notnull"`  // Unix milliseconds
	FinishedAt int64  `bun:"finished_at,notnull"` // Unix milliseconds
	Error      string `bun:"error,notnull"`
}

// RunTargetModel represents the run_targets table: one planned snapshot
// per row, in plan order.
type RunTargetModel struct {
	bun.BaseModel `bun:"table:run_targets"`

	RunID      string `bun:"run_id,pk"`
	Seq        int    `bun:"seq,pk"`
	Identifier string `bun:"identifier,notnull"`
	Destroyed  bool   `bun:"destroyed,notnull"`
}
