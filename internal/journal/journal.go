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

// Package journal keeps an SQLite audit ledger of destroy runs.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	_ "github.com/tursodatabase/go-libsql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"snapsweep/internal/util"
)

// Status is the terminal state of a destroy run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusDeclined  Status = "declined"
	StatusFailed    Status = "failed"
)

// Target is one planned snapshot of a run.
type Target struct {
	Identifier string
	Destroyed  bool
}

// Run is a journaled destroy run.
type Run struct {
	ID         string
	Kind       string
	Status     Status
	StartedAt  time.Time
	FinishedAt time.Time
	Error      string
	Targets    []Target
}

// Journal is an open audit ledger.
type Journal struct {
	db *bun.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Journal, error) {
	sqlDB, err := sql.Open("libsql", buildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := applyPragmas(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := createSchema(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}
	log.Debugf("journal: opened %s", path)
	return &Journal{db: bun.NewDB(sqlDB, sqlitedialect.New())}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores a finished run and its targets. Writes are retried while
// the database is locked by another process.
func (j *Journal) Record(ctx context.Context, run Run) error {
	return util.Retry(ctx, func() error {
		return j.record(ctx, run)
	}, util.DatabaseRetryOptions(ctx)...)
}

func (j *Journal) record(ctx context.Context, run Run) error {
	model := &RunModel{
		ID:         run.ID,
		Kind:       run.Kind,
		Status:     string(run.Status),
		StartedAt:  run.StartedAt.UnixMilli(),
		FinishedAt: run.FinishedAt.UnixMilli(),
		Error:      run.Error,
	}
	targets := make([]RunTargetModel, 0, len(run.Targets))
	for i, t := range run.Targets {
		targets = append(targets, RunTargetModel{
			RunID:      run.ID,
			Seq:        i,
			Identifier: t.Identifier,
			Destroyed:  t.Destroyed,
		})
	}

	return j.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(model).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
		}
		if len(targets) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&targets).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert targets of run %s: %w", run.ID, err)
		}
		return nil
	})
}

// List returns the most recent runs, newest first. limit <= 0 returns all.
func (j *Journal) List(ctx context.Context, limit int) ([]Run, error) {
	var models []RunModel
	q := j.db.NewSelect().Model(&models).Order("started_at DESC", "id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	if len(models) == 0 {
		return nil, nil
	}

	ids := make([]string, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}
	var targets []RunTargetModel
	err := j.db.NewSelect().
		Model(&targets).
		Where("run_id IN (?)", bun.In(ids)).
		Order("run_id", "seq").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list run targets: %w", err)
	}

	byRun := make(map[string][]Target, len(models))
	for _, t := range targets {
		byRun[t.RunID] = append(byRun[t.RunID], Target{Identifier: t.Identifier, Destroyed: t.Destroyed})
	}

	runs := make([]Run, 0, len(models))
	for _, m := range models {
		runs = append(runs, Run{
			ID:         m.ID,
			Kind:       m.Kind,
			Status:     Status(m.Status),
			StartedAt:  time.UnixMilli(m.StartedAt),
			FinishedAt: time.UnixMilli(m.FinishedAt),
			Error:      m.Error,
			Targets:    byRun[m.ID],
		})
	}
	return runs, nil
}
