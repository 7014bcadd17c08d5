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

	"github.com/pgEdge/pgedge-salesdw/internal/normalize"
)

var storeTable = dimTable{
	name: "dim_store",
	id:   "store_id",
	key: []column{
		{name: "store_name", pgType: "text"},
		{name: "manager", pgType: "text"},
		{name: "city", pgType: "text"},
		{name: "state", pgType: "text"},
	},
}

const storeExtractSQL = `
SELECT DISTINCT name AS store_name, manager, city, state
FROM store`

type storeCandidate struct {
	StoreName *string `db:"store_name"`
	Manager   *string `db:"manager"`
	City      *string `db:"city"`
	State     *string `db:"state"`
}

// StoreKey is the natural key of dim_store.
type StoreKey struct {
	Name    string
	Manager string
	City    string
	State   string
}

// NewStoreKey normalizes raw store attributes.
func NewStoreKey(name, manager, city, state *string) (StoreKey, error) {
	n, ok := normalize.Name(name)
	if !ok {
		return StoreKey{}, fmt.Errorf("store: %w", ErrBlankName)
	}
	return StoreKey{
		Name:    n,
		Manager: normalize.Text(manager),
		City:    normalize.Text(city),
		State:   normalize.Text(state),
	}, nil
}

func (k StoreKey) matchArgs() []any  { return []any{k.Name, k.Manager, k.City, k.State} }
func (k StoreKey) insertArgs() []any { return k.matchArgs() }

// NewStoreStage returns the stage that populates dim_store.
func NewStoreStage() Stage {
	return &dimension[storeCandidate, StoreKey]{
		name:    "store",
		table:   storeTable,
		extract: storeExtractSQL,
		keyOf: func(c storeCandidate) (StoreKey, error) {
			return NewStoreKey(c.StoreName, c.Manager, c.City, c.State)
		},
		describe: func(c storeCandidate) string { return normalize.Display(c.StoreName) },
	}
}
