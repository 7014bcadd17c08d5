//-------------------------------------------------------------------------
//
// pgEdge Sales Warehouse Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// createRunTableSQL holds per-stage statistics of every ETL run.
const createRunTableSQL = `
CREATE TABLE IF NOT EXISTS etl_run_stage (
    run_id      UUID        NOT NULL,
    stage       TEXT        NOT NULL,
    position    INTEGER     NOT NULL,
    extracted   BIGINT      NOT NULL,
    inserted    BIGINT      NOT NULL,
    existing    BIGINT      NOT NULL,
    skipped     BIGINT      NOT NULL,
    unresolved  BIGINT      NOT NULL,
    duration_ms BIGINT      NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (run_id, stage)
)`

// StageRecord is one persisted row of etl_run_stage.
type StageRecord struct {
	RunID      uuid.UUID
	Stage      string
	Position   int
	Extracted  int64
	Inserted   int64
	Existing   int64
	Skipped    int64
	Unresolved int64
	Duration   time.Duration
	FinishedAt time.Time
}

// EnsureRunTable creates the run history table if it doesn't exist.
func EnsureRunTable(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, createRunTableSQL); err != nil {
		return fmt.Errorf("failed to create run table: %w", err)
	}
	return nil
}

// DropRunTable drops the run history table.
func DropRunTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "DROP TABLE IF EXISTS etl_run_stage")
	return err
}

// RecordStage persists the statistics of one completed stage.
func RecordStage(ctx context.Context, pool *pgxpool.Pool, rec StageRecord) error {
	_, err := pool.Exec(ctx, `
        INSERT INTO etl_run_stage
            (run_id, stage, position, extracted, inserted, existing,
             skipped, unresolved, duration_ms)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, rec.RunID, rec.Stage, rec.Position, rec.Extracted, rec.Inserted,
		rec.Existing, rec.Skipped, rec.Unresolved, rec.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to record stage %s: %w", rec.Stage, err)
	}
	return nil
}

// LastRun returns the stage records of the most recently finished run,
// in pipeline order. It returns pgx.ErrNoRows when no run was recorded.
func LastRun(ctx context.Context, pool *pgxpool.Pool) ([]StageRecord, error) {
	rows, err := pool.Query(ctx, `
        SELECT run_id, stage, position, extracted, inserted, existing,
               skipped, unresolved, duration_ms, finished_at
          FROM etl_run_stage
         WHERE run_id = (
                SELECT run_id FROM etl_run_stage
                 ORDER BY finished_at DESC
                 LIMIT 1)
         ORDER BY position
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to query last run: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (StageRecord, error) {
		var rec StageRecord
		var durationMs int64
		err := row.Scan(&rec.RunID, &rec.Stage, &rec.Position, &rec.Extracted,
			&rec.Inserted, &rec.Existing, &rec.Skipped, &rec.Unresolved,
			&durationMs, &rec.FinishedAt)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read last run: %w", err)
	}
	if len(records) == 0 {
		return nil, pgx.ErrNoRows
	}
	return records, nil
}
