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

	"github.com/pgEdge/pgedge-salesdw/internal/logging"
	"github.com/pgEdge/pgedge-salesdw/internal/normalize"
)

var promotionTable = dimTable{
	name: "dim_promotion",
	id:   "promotion_id",
	key: []column{
		{name: "promotion_name", pgType: "text"},
		{name: "discount_type", pgType: "text"},
		{name: "start_date", pgType: "date", nullable: true},
		{name: "end_date", pgType: "date", nullable: true},
	},
}

const promotionExtractSQL = `
SELECT DISTINCT name AS promotion_name, discount_type, start_date, end_date
FROM promotion`

type promotionCandidate struct {
	PromotionName *string `db:"promotion_name"`
	DiscountType  *string `db:"discount_type"`
	StartDate     *string `db:"start_date"`
	EndDate       *string `db:"end_date"`
}

// PromotionKey is the natural key of dim_promotion. Dates that cannot be
// normalized are kept as nil and stored as NULL.
type PromotionKey struct {
	Name         string
	DiscountType string
	Start        *string
	End          *string
}

// NewPromotionKey normalizes raw promotion attributes.
func NewPromotionKey(name, discountType, start, end *string) (PromotionKey, error) {
	n, ok := normalize.Name(name)
	if !ok {
		return PromotionKey{}, fmt.Errorf("promotion: %w", ErrBlankName)
	}
	return PromotionKey{
		Name:         n,
		DiscountType: normalize.DiscountType(discountType),
		Start:        normalize.OptionalDate(start),
		End:          normalize.OptionalDate(end),
	}, nil
}

func (k PromotionKey) matchArgs() []any {
	return []any{k.Name, k.DiscountType, sqlOptionalDate(k.Start), sqlOptionalDate(k.End)}
}

func (k PromotionKey) insertArgs() []any { return k.matchArgs() }

// NewPromotionStage returns the stage that populates dim_promotion.
func NewPromotionStage() Stage {
	return &dimension[promotionCandidate, PromotionKey]{
		name:    "promotion",
		table:   promotionTable,
		extract: promotionExtractSQL,
		keyOf: func(c promotionCandidate) (PromotionKey, error) {
			return NewPromotionKey(c.PromotionName, c.DiscountType, c.StartDate, c.EndDate)
		},
		describe: func(c promotionCandidate) string { return normalize.Display(c.PromotionName) },
		inspect:  warnDroppedPromotionDates,
	}
}

func warnDroppedPromotionDates(c promotionCandidate, k PromotionKey) {
	if c.StartDate != nil && k.Start == nil {
		logging.Warn().
			Str("promotion", k.Name).
			Str("start_date", *c.StartDate).
			Msg("Unparseable promotion start date stored as NULL")
	}
	if c.EndDate != nil && k.End == nil {
		logging.Warn().
			Str("promotion", k.Name).
			Str("end_date", *c.EndDate).
			Msg("Unparseable promotion end date stored as NULL")
	}
}
