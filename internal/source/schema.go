//-------------------------------------------------------------------------
//
// pgEdge Sales Warehouse Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package source creates and populates the operational (CRM) database the
// warehouse is loaded from. The layout is intentionally loose: most columns
// are nullable and dates are free text, as they arrive from the shops.
package source

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS product_category (
    product_category_id SERIAL PRIMARY KEY,
    name                TEXT
);

CREATE TABLE IF NOT EXISTS product (
    product_id          SERIAL PRIMARY KEY,
    name                TEXT,
    product_category_id INTEGER REFERENCES product_category (product_category_id)
);

CREATE TABLE IF NOT EXISTS customer_category (
    customer_category_id SERIAL PRIMARY KEY,
    name                 TEXT
);

CREATE TABLE IF NOT EXISTS location (
    location_id SERIAL PRIMARY KEY,
    city        TEXT,
    state       TEXT,
    region      TEXT
);

CREATE TABLE IF NOT EXISTS customer (
    customer_id          SERIAL PRIMARY KEY,
    name                 TEXT,
    age                  INTEGER,
    gender               TEXT,
    customer_category_id INTEGER REFERENCES customer_category (customer_category_id),
    location_id          INTEGER REFERENCES location (location_id)
);

CREATE TABLE IF NOT EXISTS store (
    store_id SERIAL PRIMARY KEY,
    name     TEXT,
    manager  TEXT,
    city     TEXT,
    state    TEXT
);

CREATE TABLE IF NOT EXISTS promotion (
    promotion_id  SERIAL PRIMARY KEY,
    name          TEXT,
    discount_type TEXT,
    start_date    TEXT,
    end_date      TEXT
);

CREATE TABLE IF NOT EXISTS salesperson (
    salesperson_id SERIAL PRIMARY KEY,
    name           TEXT
);

CREATE TABLE IF NOT EXISTS sale (
    sale_id        SERIAL PRIMARY KEY,
    sale_date      TEXT,
    customer_id    INTEGER REFERENCES customer (customer_id),
    store_id       INTEGER REFERENCES store (store_id),
    salesperson_id INTEGER REFERENCES salesperson (salesperson_id)
);

CREATE TABLE IF NOT EXISTS sale_item (
    sale_item_id SERIAL PRIMARY KEY,
    sale_id      INTEGER NOT NULL REFERENCES sale (sale_id),
    product_id   INTEGER REFERENCES product (product_id),
    promotion_id INTEGER REFERENCES promotion (promotion_id),
    quantity     INTEGER,
    unit_price   NUMERIC(10,2)
);

CREATE INDEX IF NOT EXISTS idx_sale_item_sale ON sale_item (sale_id);
`

const dropSchemaSQL = `
DROP TABLE IF EXISTS sale_item CASCADE;
DROP TABLE IF EXISTS sale CASCADE;
DROP TABLE IF EXISTS salesperson CASCADE;
DROP TABLE IF EXISTS promotion CASCADE;
DROP TABLE IF EXISTS store CASCADE;
DROP TABLE IF EXISTS customer CASCADE;
DROP TABLE IF EXISTS location CASCADE;
DROP TABLE IF EXISTS customer_category CASCADE;
DROP TABLE IF EXISTS product CASCADE;
DROP TABLE IF EXISTS product_category CASCADE;
`

// CreateSchema creates the source database schema.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, createSchemaSQL)
	return err
}

// DropSchema drops the source database schema.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, dropSchemaSQL)
	return err
}
