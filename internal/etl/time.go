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
	"time"

	"github.com/pgEdge/pgedge-salesdw/internal/normalize"
)

var timeTable = dimTable{
	name: "dim_time",
	id:   "time_id",
	key:  []column{{name: "date", pgType: "date"}},
	attrs: []column{
		{name: "day", pgType: "smallint"},
		{name: "month", pgType: "smallint"},
		{name: "year", pgType: "smallint"},
		{name: "quarter", pgType: "smallint"},
	},
}

// Every date the fact stage or a promotion may reference.
const timeExtractSQL = `
SELECT raw_date FROM (
    SELECT sale_date AS raw_date FROM sale
    UNION
    SELECT start_date FROM promotion
    UNION
    SELECT end_date FROM promotion
) dates
WHERE raw_date IS NOT NULL`

type timeCandidate struct {
	RawDate *string `db:"raw_date"`
}

// TimeKey is a calendar date in canonical ISO form plus its derived parts.
type TimeKey struct {
	Date  string
	Parts normalize.DateParts
}

// NewTimeKey normalizes a raw source date.
func NewTimeKey(raw *string) (TimeKey, error) {
	iso, err := normalize.DatePtr(raw)
	if err != nil {
		return TimeKey{}, err
	}
	parts, err := normalize.Parts(iso)
	if err != nil {
		return TimeKey{}, err
	}
	return TimeKey{Date: iso, Parts: parts}, nil
}

func (k TimeKey) matchArgs() []any { return []any{sqlDate(k.Date)} }

func (k TimeKey) insertArgs() []any {
	return []any{
		sqlDate(k.Date),
		int16(k.Parts.Day),
		int16(k.Parts.Month),
		int16(k.Parts.Year),
		int16(k.Parts.Quarter),
	}
}

// NewTimeStage returns the stage that populates dim_time.
func NewTimeStage() Stage {
	return &dimension[timeCandidate, TimeKey]{
		name:     "time",
		table:    timeTable,
		extract:  timeExtractSQL,
		keyOf:    func(c timeCandidate) (TimeKey, error) { return NewTimeKey(c.RawDate) },
		describe: func(c timeCandidate) string { return normalize.Display(c.RawDate) },
	}
}

// sqlDate binds a canonical ISO date. Callers only pass normalized values.
func sqlDate(iso string) time.Time {
	t, _ := time.Parse(normalize.ISOLayout, iso)
	return t
}

// sqlOptionalDate binds a nullable canonical ISO date.
func sqlOptionalDate(iso *string) any {
	if iso == nil {
		return nil
	}
	return sqlDate(*iso)
}
