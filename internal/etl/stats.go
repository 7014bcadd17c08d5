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
	"errors"
	"sort"
	"time"

	"github.com/pgEdge/pgedge-salesdw/internal/normalize"
)

// Outcome is what happened to a single candidate or source line.
type Outcome int

const (
	// Inserted means a new warehouse row was written.
	Inserted Outcome = iota + 1
	// Existing means the natural key was already present.
	Existing
	// Skipped means the record was dropped; the reason is recorded.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Existing:
		return "existing"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Skip reasons.
const (
	ReasonInvalidDate        = "invalid date"
	ReasonBlankName          = "blank name"
	ReasonTimeMissing        = "time not found"
	ReasonProductMissing     = "product not found"
	ReasonCustomerMissing    = "customer not found"
	ReasonStoreMissing       = "store not found"
	ReasonSalespersonMissing = "salesperson not found"
	ReasonPromotionMissing   = "promotion not found"
)

// ErrBlankName rejects candidates without a usable identifying name.
var ErrBlankName = errors.New("blank name")

// Stats aggregates per-record outcomes of one stage.
type Stats struct {
	Stage     string
	Extracted int64
	Inserted  int64
	Existing  int64
	Skipped   int64

	// Unresolved counts fact rows loaded with a NULL promotion although the
	// source named one.
	Unresolved int64

	Reasons  map[string]int64
	Duration time.Duration
}

func newStats(stage string) *Stats {
	return &Stats{
		Stage:   stage,
		Reasons: make(map[string]int64),
	}
}

// Record counts one outcome. The reason is only kept for skips.
func (s *Stats) Record(o Outcome, reason string) {
	switch o {
	case Inserted:
		s.Inserted++
	case Existing:
		s.Existing++
	case Skipped:
		s.Skipped++
		s.Reasons[reason]++
	}
}

// ReasonCounts returns skip reasons sorted by descending count.
func (s *Stats) ReasonCounts() []ReasonCount {
	out := make([]ReasonCount, 0, len(s.Reasons))
	for r, n := range s.Reasons {
		out = append(out, ReasonCount{Reason: r, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}

// ReasonCount is one entry of Stats.ReasonCounts.
type ReasonCount struct {
	Reason string
	Count  int64
}

// skipReason classifies a key-building rejection.
func skipReason(err error) string {
	switch {
	case errors.Is(err, ErrBlankName):
		return ReasonBlankName
	case errors.Is(err, normalize.ErrEmpty),
		errors.Is(err, normalize.ErrInvalidMarker),
		errors.Is(err, normalize.ErrUnrecognizedFormat),
		errors.Is(err, normalize.ErrImpossibleDate):
		return ReasonInvalidDate
	default:
		return err.Error()
	}
}
