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
	"fmt"
	"strings"
)

// column is a warehouse column bound to a typed placeholder.
type column struct {
	name     string
	pgType   string
	nullable bool
}

// dimTable describes a dimension table. The natural key columns come first
// and are matched by a single predicate that both the conditional insert
// and the fact lookup reuse, so the two can never disagree.
type dimTable struct {
	name  string
	id    string
	key   []column
	attrs []column
}

// predicate matches the natural key against $1..$n. Nullable columns use
// IS NOT DISTINCT FROM so that NULL equals NULL.
func (t dimTable) predicate() string {
	parts := make([]string, len(t.key))
	for i, c := range t.key {
		op := "="
		if c.nullable {
			op = "IS NOT DISTINCT FROM"
		}
		parts[i] = fmt.Sprintf("%s %s $%d::%s", c.name, op, i+1, c.pgType)
	}
	return strings.Join(parts, " AND ")
}

// insertSQL inserts a row only when no row with the same natural key exists.
// The check and the insert are one statement.
func (t dimTable) insertSQL() string {
	cols := append(append([]column{}, t.key...), t.attrs...)
	names := make([]string, len(cols))
	values := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
		values[i] = fmt.Sprintf("$%d::%s", i+1, c.pgType)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s WHERE NOT EXISTS (SELECT 1 FROM %s WHERE %s)",
		t.name, strings.Join(names, ", "), strings.Join(values, ", "),
		t.name, t.predicate())
}

// lookupSQL returns the surrogate id of the row matching the natural key.
func (t dimTable) lookupSQL() string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s LIMIT 1",
		t.id, t.name, t.predicate(), t.id)
}
