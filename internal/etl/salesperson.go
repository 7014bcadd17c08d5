package etl

import (
	"fmt"

	"github.com/pgEdge/pgedge-salesdw/internal/normalize"
)

var salespersonTable = dimTable{
	name: "dim_salesperson",
	id:   "salesperson_id",
	key:  []column{{name: "salesperson_name", pgType: "text"}},
}

const salespersonExtractSQL = `SELECT DISTINCT name AS salesperson_name FROM salesperson`

type salespersonCandidate struct {
	SalespersonName *string `db:"salesperson_name"`
}

// SalespersonKey is the natural key of dim_salesperson.
type SalespersonKey struct {
	Name string
}

// NewSalespersonKey normalizes a raw salesperson name.
func NewSalespersonKey(name *string) (SalespersonKey, error) {
	n, ok := normalize.Name(name)
	if !ok {
		return SalespersonKey{}, fmt.Errorf("salesperson: %w", ErrBlankName)
	}
	return SalespersonKey{Name: n}, nil
}

func (k SalespersonKey) matchArgs() []any  { return []any{k.Name} }
func (k SalespersonKey) insertArgs() []any { return k.matchArgs() }

// NewSalespersonStage returns the stage that populates dim_salesperson.
func NewSalespersonStage() Stage {
	return &dimension[salespersonCandidate, SalespersonKey]{
		name:    "salesperson",
		table:   salespersonTable,
		extract: salespersonExtractSQL,
		keyOf: func(c salespersonCandidate) (SalespersonKey, error) {
			return NewSalespersonKey(c.SalespersonName)
		},
		describe: func(c salespersonCandidate) string { return normalize.Display(c.SalespersonName) },
	}
}
