//-------------------------------------------------------------------------
//
// pgEdge Sales Warehouse Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse holds the star schema the ETL pipeline loads into.
package warehouse

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Natural keys are deliberately not declared UNIQUE; deduplication is the
// loader's job. The indexes only speed up the per-row key lookups.
const createSchemaSQL = `
-- Time Dimension
CREATE TABLE IF NOT EXISTS dim_time (
    time_id  SERIAL PRIMARY KEY,
    date     DATE     NOT NULL,
    day      SMALLINT NOT NULL,
    month    SMALLINT NOT NULL,
    year     SMALLINT NOT NULL,
    quarter  SMALLINT NOT NULL
);

-- Product Dimension
CREATE TABLE IF NOT EXISTS dim_product (
    product_id   SERIAL PRIMARY KEY,
    product_name TEXT NOT NULL,
    category     TEXT NOT NULL
);

-- Customer Dimension
CREATE TABLE IF NOT EXISTS dim_customer (
    customer_id   SERIAL PRIMARY KEY,
    customer_name TEXT    NOT NULL,
    age           INTEGER NOT NULL,
    gender        TEXT    NOT NULL,
    category      TEXT    NOT NULL,
    city          TEXT    NOT NULL,
    state         TEXT    NOT NULL,
    region        TEXT    NOT NULL
);

-- Store Dimension
CREATE TABLE IF NOT EXISTS dim_store (
    store_id   SERIAL PRIMARY KEY,
    store_name TEXT NOT NULL,
    manager    TEXT NOT NULL,
    city       TEXT NOT NULL,
    state      TEXT NOT NULL
);

-- Promotion Dimension
CREATE TABLE IF NOT EXISTS dim_promotion (
    promotion_id   SERIAL PRIMARY KEY,
    promotion_name TEXT NOT NULL,
    discount_type  TEXT NOT NULL,
    start_date     DATE,
    end_date       DATE
);

-- Salesperson Dimension
CREATE TABLE IF NOT EXISTS dim_salesperson (
    salesperson_id   SERIAL PRIMARY KEY,
    salesperson_name TEXT NOT NULL
);

-- Sales Fact
CREATE TABLE IF NOT EXISTS fact_sales (
    sale_fact_id   BIGSERIAL PRIMARY KEY,
    time_id        INTEGER NOT NULL REFERENCES dim_time (time_id),
    product_id     INTEGER NOT NULL REFERENCES dim_product (product_id),
    customer_id    INTEGER NOT NULL REFERENCES dim_customer (customer_id),
    store_id       INTEGER NOT NULL REFERENCES dim_store (store_id),
    promotion_id   INTEGER REFERENCES dim_promotion (promotion_id),
    salesperson_id INTEGER NOT NULL REFERENCES dim_salesperson (salesperson_id),
    quantity       BIGINT NOT NULL CHECK (quantity >= 0),
    unit_price     NUMERIC(12,2) NOT NULL,
    total_value    NUMERIC(22,2) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_dim_time_date ON dim_time (date);
CREATE INDEX IF NOT EXISTS idx_dim_product_key ON dim_product (product_name, category);
CREATE INDEX IF NOT EXISTS idx_dim_customer_name ON dim_customer (customer_name);
CREATE INDEX IF NOT EXISTS idx_dim_store_name ON dim_store (store_name);
CREATE INDEX IF NOT EXISTS idx_dim_promotion_name ON dim_promotion (promotion_name);
CREATE INDEX IF NOT EXISTS idx_dim_salesperson_name ON dim_salesperson (salesperson_name);
CREATE INDEX IF NOT EXISTS idx_fact_sales_time ON fact_sales (time_id);
`

const dropSchemaSQL = `
DROP TABLE IF EXISTS fact_sales CASCADE;
DROP TABLE IF EXISTS dim_salesperson CASCADE;
DROP TABLE IF EXISTS dim_promotion CASCADE;
DROP TABLE IF EXISTS dim_store CASCADE;
DROP TABLE IF EXISTS dim_customer CASCADE;
DROP TABLE IF EXISTS dim_product CASCADE;
DROP TABLE IF EXISTS dim_time CASCADE;
`

// Tables lists the warehouse tables in load order.
var Tables = []string{
	"dim_time",
	"dim_product",
	"dim_customer",
	"dim_store",
	"dim_promotion",
	"dim_salesperson",
	"fact_sales",
}

// CreateSchema creates the warehouse star schema.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, createSchemaSQL)
	return err
}

// DropSchema drops the warehouse star schema.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, dropSchemaSQL)
	return err
}

// TableCount is the row count of one warehouse table.
type TableCount struct {
	Table string
	Rows  int64
}

// Counts returns the row count of every warehouse table in load order.
func Counts(ctx context.Context, pool *pgxpool.Pool) ([]TableCount, error) {
	counts := make([]TableCount, 0, len(Tables))
	for _, table := range Tables {
		var n int64
		if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts = append(counts, TableCount{Table: table, Rows: n})
	}
	return counts, nil
}
