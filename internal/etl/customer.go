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

var customerTable = dimTable{
	name: "dim_customer",
	id:   "customer_id",
	key: []column{
		{name: "customer_name", pgType: "text"},
		{name: "age", pgType: "integer"},
		{name: "gender", pgType: "text"},
		{name: "category", pgType: "text"},
		{name: "city", pgType: "text"},
		{name: "state", pgType: "text"},
		{name: "region", pgType: "text"},
	},
}

const customerExtractSQL = `
SELECT DISTINCT
    c.name    AS customer_name,
    c.age     AS age,
    c.gender  AS gender,
    cc.name   AS category,
    l.city    AS city,
    l.state   AS state,
    l.region  AS region
FROM customer c
LEFT JOIN customer_category cc ON cc.customer_category_id = c.customer_category_id
LEFT JOIN location l ON l.location_id = c.location_id`

type customerCandidate struct {
	CustomerName *string `db:"customer_name"`
	Age          *int32  `db:"age"`
	Gender       *string `db:"gender"`
	Category     *string `db:"category"`
	City         *string `db:"city"`
	State        *string `db:"state"`
	Region       *string `db:"region"`
}

// CustomerKey is the natural key of dim_customer. Two customers sharing
// every attribute collapse into one dimension row.
type CustomerKey struct {
	Name     string
	Age      int32
	Gender   string
	Category string
	City     string
	State    string
	Region   string
}

// CustomerAttrs are the raw customer attributes as read from the source.
type CustomerAttrs struct {
	Name, Gender, Category, City, State, Region *string
	Age                                         *int32
}

// NewCustomerKey normalizes raw customer attributes.
func NewCustomerKey(a CustomerAttrs) (CustomerKey, error) {
	n, ok := normalize.Name(a.Name)
	if !ok {
		return CustomerKey{}, fmt.Errorf("customer: %w", ErrBlankName)
	}
	return CustomerKey{
		Name:     n,
		Age:      normalize.Age(a.Age),
		Gender:   normalize.Text(a.Gender),
		Category: normalize.Text(a.Category),
		City:     normalize.Text(a.City),
		State:    normalize.Text(a.State),
		Region:   normalize.Text(a.Region),
	}, nil
}

func (k CustomerKey) matchArgs() []any {
	return []any{k.Name, k.Age, k.Gender, k.Category, k.City, k.State, k.Region}
}

func (k CustomerKey) insertArgs() []any { return k.matchArgs() }

// NewCustomerStage returns the stage that populates dim_customer.
func NewCustomerStage() Stage {
	return &dimension[customerCandidate, CustomerKey]{
		name:    "customer",
		table:   customerTable,
		extract: customerExtractSQL,
		keyOf: func(c customerCandidate) (CustomerKey, error) {
			return NewCustomerKey(CustomerAttrs{
				Name:     c.CustomerName,
				Age:      c.Age,
				Gender:   c.Gender,
				Category: c.Category,
				City:     c.City,
				State:    c.State,
				Region:   c.Region,
			})
		},
		describe: func(c customerCandidate) string { return normalize.Display(c.CustomerName) },
	}
}
