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

var productTable = dimTable{
	name: "dim_product",
	id:   "product_id",
	key: []column{
		{name: "product_name", pgType: "text"},
		{name: "category", pgType: "text"},
	},
}

const productExtractSQL = `
SELECT DISTINCT p.name AS product_name, pc.name AS category
FROM product p
LEFT JOIN product_category pc ON pc.product_category_id = p.product_category_id`

type productCandidate struct {
	ProductName *string `db:"product_name"`
	Category    *string `db:"category"`
}

// ProductKey is the natural key of dim_product.
type ProductKey struct {
	Name     string
	Category string
}

// NewProductKey normalizes raw product attributes.
func NewProductKey(name, category *string) (ProductKey, error) {
	n, ok := normalize.Name(name)
	if !ok {
		return ProductKey{}, fmt.Errorf("product: %w", ErrBlankName)
	}
	return ProductKey{Name: n, Category: normalize.Text(category)}, nil
}

func (k ProductKey) matchArgs() []any  { return []any{k.Name, k.Category} }
func (k ProductKey) insertArgs() []any { return k.matchArgs() }

// NewProductStage returns the stage that populates dim_product.
func NewProductStage() Stage {
	return &dimension[productCandidate, ProductKey]{
		name:    "product",
		table:   productTable,
		extract: productExtractSQL,
		keyOf: func(c productCandidate) (ProductKey, error) {
			return NewProductKey(c.ProductName, c.Category)
		},
		describe: func(c productCandidate) string { return normalize.Display(c.ProductName) },
	}
}
