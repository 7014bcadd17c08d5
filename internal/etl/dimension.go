//-------------------------------------------------------------------------
//
// pgEdge Sales Warehouse Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package etl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-salesdw/internal/logging"
)

// Stage is one step of the pipeline.
type Stage interface {
	Name() string
	Load(ctx context.Context, src, dw DB) (*Stats, error)
}

// naturalKey is a normalized dimension key.
type naturalKey interface {
	// matchArgs binds the key columns of the shared predicate.
	matchArgs() []any
	// insertArgs binds key columns followed by attribute columns.
	insertArgs() []any
}

// dimension loads one dimension table from distinct source candidates.
// C is the row shape of the extract query, K the normalized key.
type dimension[C any, K naturalKey] struct {
	name    string
	table   dimTable
	extract string
	keyOf   func(C) (K, error)
	// describe renders a candidate for log messages.
	describe func(C) string
	// inspect, when set, sees every accepted candidate with its key.
	inspect func(C, K)
}

func (d *dimension[C, K]) Name() string { return d.name }

// Load extracts candidates from src and inserts the ones whose natural key
// is not yet present in dw.
func (d *dimension[C, K]) Load(ctx context.Context, src, dw DB) (*Stats, error) {
	start := time.Now()
	stats := newStats(d.name)

	rows, err := src.Query(ctx, d.extract)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s candidates: %w", d.name, err)
	}
	candidates, err := pgx.CollectRows(rows, pgx.RowToStructByName[C])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s candidates: %w", d.name, err)
	}
	stats.Extracted = int64(len(candidates))

	insertSQL := d.table.insertSQL()
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		key, err := d.keyOf(c)
		if err != nil {
			logging.Warn().
				Str("dimension", d.name).
				Str("value", d.describe(c)).
				Err(err).
				Msg("Skipping candidate")
			stats.Record(Skipped, skipReason(err))
			continue
		}
		if d.inspect != nil {
			d.inspect(c, key)
		}

		tag, err := dw.Exec(ctx, insertSQL, key.insertArgs()...)
		if err != nil {
			return nil, fmt.Errorf("failed to insert into %s: %w", d.table.name, err)
		}
		if tag.RowsAffected() == 0 {
			stats.Record(Existing, "")
		} else {
			stats.Record(Inserted, "")
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// lookup resolves a normalized key to its surrogate id. A missing row is
// reported through the boolean, any other failure as an error.
func lookup(ctx context.Context, dw DB, t dimTable, key naturalKey) (int32, bool, error) {
	var id int32
	err := dw.QueryRow(ctx, t.lookupSQL(), key.matchArgs()...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up %s: %w", t.name, err)
	}
	return id, true, nil
}
