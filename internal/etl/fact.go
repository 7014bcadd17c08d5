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
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-salesdw/internal/logging"
	"github.com/pgEdge/pgedge-salesdw/internal/normalize"
)

// One row per sale line item with every attribute a dimension key needs.
const factExtractSQL = `
SELECT
    si.sale_item_id                   AS sale_item_id,
    s.sale_date                       AS sale_date,
    p.name                            AS product_name,
    pc.name                           AS product_category,
    c.name                            AS customer_name,
    c.age                             AS customer_age,
    c.gender                          AS customer_gender,
    cc.name                           AS customer_category,
    l.city                            AS customer_city,
    l.state                           AS customer_state,
    l.region                          AS customer_region,
    st.name                           AS store_name,
    st.manager                        AS store_manager,
    st.city                           AS store_city,
    st.state                          AS store_state,
    pr.name                           AS promotion_name,
    pr.discount_type                  AS promotion_discount_type,
    pr.start_date                     AS promotion_start_date,
    pr.end_date                       AS promotion_end_date,
    sp.name                           AS salesperson_name,
    COALESCE(si.quantity, 0)          AS quantity,
    COALESCE(si.unit_price, 0)        AS unit_price
FROM sale_item si
JOIN sale s ON s.sale_id = si.sale_id
LEFT JOIN product p ON p.product_id = si.product_id
LEFT JOIN product_category pc ON pc.product_category_id = p.product_category_id
LEFT JOIN customer c ON c.customer_id = s.customer_id
LEFT JOIN customer_category cc ON cc.customer_category_id = c.customer_category_id
LEFT JOIN location l ON l.location_id = c.location_id
LEFT JOIN store st ON st.store_id = s.store_id
LEFT JOIN promotion pr ON pr.promotion_id = si.promotion_id
LEFT JOIN salesperson sp ON sp.salesperson_id = s.salesperson_id
ORDER BY si.sale_item_id`

const factInsertSQL = `
INSERT INTO fact_sales (
    time_id, product_id, customer_id, store_id, promotion_id, salesperson_id,
    quantity, unit_price, total_value
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

type saleLine struct {
	SaleItemID            int32           `db:"sale_item_id"`
	SaleDate              *string         `db:"sale_date"`
	ProductName           *string         `db:"product_name"`
	ProductCategory       *string         `db:"product_category"`
	CustomerName          *string         `db:"customer_name"`
	CustomerAge           *int32          `db:"customer_age"`
	CustomerGender        *string         `db:"customer_gender"`
	CustomerCategory      *string         `db:"customer_category"`
	CustomerCity          *string         `db:"customer_city"`
	CustomerState         *string         `db:"customer_state"`
	CustomerRegion        *string         `db:"customer_region"`
	StoreName             *string         `db:"store_name"`
	StoreManager          *string         `db:"store_manager"`
	StoreCity             *string         `db:"store_city"`
	StoreState            *string         `db:"store_state"`
	PromotionName         *string         `db:"promotion_name"`
	PromotionDiscountType *string         `db:"promotion_discount_type"`
	PromotionStartDate    *string         `db:"promotion_start_date"`
	PromotionEndDate      *string         `db:"promotion_end_date"`
	SalespersonName       *string         `db:"salesperson_name"`
	Quantity              int32           `db:"quantity"`
	UnitPrice             decimal.Decimal `db:"unit_price"`
}

// factRow is a fully resolved fact ready for insertion.
type factRow struct {
	TimeID        int32
	ProductID     int32
	CustomerID    int32
	StoreID       int32
	PromotionID   *int32
	SalespersonID int32
	Quantity      int64
	UnitPrice     decimal.Decimal
	TotalValue    decimal.Decimal
}

// Measures returns the recorded quantity and total value of a line item.
// Quantity is always stored as its absolute value.
func Measures(quantity int32, unitPrice decimal.Decimal) (int64, decimal.Decimal) {
	q := int64(quantity)
	if q < 0 {
		q = -q
	}
	return q, unitPrice.Mul(decimal.NewFromInt(q))
}

// FactStage loads fact_sales. It must run after every dimension stage.
type FactStage struct {
	progressInterval int64
}

// NewFactStage returns the fact stage. A positive progressInterval logs
// progress every that many rows.
func NewFactStage(progressInterval int) *FactStage {
	return &FactStage{progressInterval: int64(progressInterval)}
}

// Name implements Stage.
func (f *FactStage) Name() string { return "fact" }

// Load implements Stage.
func (f *FactStage) Load(ctx context.Context, src, dw DB) (*Stats, error) {
	start := time.Now()
	stats := newStats(f.Name())

	rows, err := src.Query(ctx, factExtractSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract sale lines: %w", err)
	}
	lines, err := pgx.CollectRows(rows, pgx.RowToStructByName[saleLine])
	if err != nil {
		return nil, fmt.Errorf("failed to read sale lines: %w", err)
	}
	stats.Extracted = int64(len(lines))

	var progress *logging.ProgressReporter
	if f.progressInterval > 0 {
		progress = logging.NewProgressReporter("fact_sales", stats.Extracted, f.progressInterval)
	}

	for i := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcome, reason, err := f.loadLine(ctx, dw, &lines[i], stats)
		if err != nil {
			return nil, err
		}
		stats.Record(outcome, reason)
		if progress != nil {
			progress.Update(1)
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

func (f *FactStage) loadLine(ctx context.Context, dw DB, line *saleLine, stats *Stats) (Outcome, string, error) {
	row, reason, err := resolve(ctx, dw, line, stats)
	if err != nil || reason != "" {
		return Skipped, reason, err
	}

	_, err = dw.Exec(ctx, factInsertSQL,
		row.TimeID, row.ProductID, row.CustomerID, row.StoreID, row.PromotionID,
		row.SalespersonID, row.Quantity, row.UnitPrice, row.TotalValue)
	if err != nil {
		return 0, "", fmt.Errorf("failed to insert fact for sale item %d: %w", line.SaleItemID, err)
	}
	return Inserted, "", nil
}

// resolve maps a sale line onto surrogate keys. A non-empty reason means
// the line must be skipped.
func resolve(ctx context.Context, dw DB, line *saleLine, stats *Stats) (*factRow, string, error) {
	timeKey, err := NewTimeKey(line.SaleDate)
	if err != nil {
		logging.Warn().
			Int32("sale_item_id", line.SaleItemID).
			Str("sale_date", normalize.Display(line.SaleDate)).
			Err(err).
			Msg("Skipping sale line with invalid date")
		return nil, ReasonInvalidDate, nil
	}

	row := &factRow{}
	var ok bool

	if row.TimeID, ok, err = lookup(ctx, dw, timeTable, timeKey); err != nil || !ok {
		return missing(line, ReasonTimeMissing, err)
	}

	productKey, err := NewProductKey(line.ProductName, line.ProductCategory)
	if err != nil {
		return missing(line, ReasonProductMissing, nil)
	}
	if row.ProductID, ok, err = lookup(ctx, dw, productTable, productKey); err != nil || !ok {
		return missing(line, ReasonProductMissing, err)
	}

	customerKey, err := NewCustomerKey(CustomerAttrs{
		Name:     line.CustomerName,
		Age:      line.CustomerAge,
		Gender:   line.CustomerGender,
		Category: line.CustomerCategory,
		City:     line.CustomerCity,
		State:    line.CustomerState,
		Region:   line.CustomerRegion,
	})
	if err != nil {
		return missing(line, ReasonCustomerMissing, nil)
	}
	if row.CustomerID, ok, err = lookup(ctx, dw, customerTable, customerKey); err != nil || !ok {
		return missing(line, ReasonCustomerMissing, err)
	}

	storeKey, err := NewStoreKey(line.StoreName, line.StoreManager, line.StoreCity, line.StoreState)
	if err != nil {
		return missing(line, ReasonStoreMissing, nil)
	}
	if row.StoreID, ok, err = lookup(ctx, dw, storeTable, storeKey); err != nil || !ok {
		return missing(line, ReasonStoreMissing, err)
	}

	if _, named := normalize.Name(line.PromotionName); named {
		promotionKey, err := NewPromotionKey(line.PromotionName, line.PromotionDiscountType,
			line.PromotionStartDate, line.PromotionEndDate)
		if err != nil {
			return nil, "", err
		}
		id, found, err := lookup(ctx, dw, promotionTable, promotionKey)
		if err != nil {
			return nil, "", err
		}
		if found {
			row.PromotionID = &id
		} else {
			stats.Unresolved++
			logging.Debug().
				Int32("sale_item_id", line.SaleItemID).
				Str("promotion", promotionKey.Name).
				Msg("Promotion not found, loading fact without it")
		}
	}

	salespersonKey, err := NewSalespersonKey(line.SalespersonName)
	if err != nil {
		return missing(line, ReasonSalespersonMissing, nil)
	}
	if row.SalespersonID, ok, err = lookup(ctx, dw, salespersonTable, salespersonKey); err != nil || !ok {
		return missing(line, ReasonSalespersonMissing, err)
	}

	row.UnitPrice = line.UnitPrice
	row.Quantity, row.TotalValue = Measures(line.Quantity, line.UnitPrice)
	return row, "", nil
}

// missing reports an unresolved dimension reference, or passes through a
// lookup failure.
func missing(line *saleLine, reason string, err error) (*factRow, string, error) {
	if err != nil {
		return nil, "", err
	}
	logging.Debug().
		Int32("sale_item_id", line.SaleItemID).
		Str("reason", reason).
		Msg("Skipping sale line")
	return nil, reason, nil
}
