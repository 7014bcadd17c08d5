//-------------------------------------------------------------------------
//
// pgEdge Sales Warehouse Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

//go:build integration
// +build integration

// Integration tests for the warehouse load.
// Run with: go test -tags=integration ./internal/etl/...
// Requires PostgreSQL to be available.
// Set SALESDW_TEST_CONN environment variable to override connection string.

package etl_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/pgEdge/pgedge-salesdw/internal/db"
	"github.com/pgEdge/pgedge-salesdw/internal/etl"
	"github.com/pgEdge/pgedge-salesdw/internal/normalize"
	"github.com/pgEdge/pgedge-salesdw/internal/source"
	"github.com/pgEdge/pgedge-salesdw/internal/testutil"
	"github.com/pgEdge/pgedge-salesdw/internal/warehouse"
)

const scenariosFixture = "../source/testdata/scenarios.yaml"

// setup creates both schemas and loads a dataset into the source.
func setup(t *testing.T, dataset *source.Dataset) *testutil.Databases {
	t.Helper()
	dbs := testutil.NewDatabases(t)
	ctx := context.Background()

	if err := source.CreateSchema(ctx, dbs.Source); err != nil {
		t.Fatalf("source.CreateSchema failed: %v", err)
	}
	if err := warehouse.CreateSchema(ctx, dbs.Warehouse); err != nil {
		t.Fatalf("warehouse.CreateSchema failed: %v", err)
	}
	if err := dataset.Apply(ctx, dbs.Source); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	return dbs
}

func loadFixture(t *testing.T) *source.Dataset {
	t.Helper()
	d, err := source.LoadFixture(scenariosFixture)
	if err != nil {
		t.Fatalf("LoadFixture failed: %v", err)
	}
	return d
}

func loadDimensions(t *testing.T, dbs *testutil.Databases) map[string]*etl.Stats {
	t.Helper()
	out := make(map[string]*etl.Stats)
	for _, stage := range etl.DimensionStages() {
		stats, err := stage.Load(context.Background(), dbs.Source, dbs.Warehouse)
		if err != nil {
			t.Fatalf("%s stage failed: %v", stage.Name(), err)
		}
		out[stage.Name()] = stats
	}
	return out
}

func loadFacts(t *testing.T, dbs *testutil.Databases) *etl.Stats {
	t.Helper()
	stats, err := etl.NewFactStage(0).Load(context.Background(), dbs.Source, dbs.Warehouse)
	if err != nil {
		t.Fatalf("fact stage failed: %v", err)
	}
	return stats
}

func count(t *testing.T, dbs *testutil.Databases, sql string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := dbs.Warehouse.QueryRow(context.Background(), sql, args...).Scan(&n); err != nil {
		t.Fatalf("query %q failed: %v", sql, err)
	}
	return n
}

func TestScenarios(t *testing.T) {
	dbs := setup(t, loadFixture(t))
	ctx := context.Background()

	dims := loadDimensions(t, dbs)

	t.Run("TimeDimension", func(t *testing.T) {
		s := dims["time"]
		if s.Inserted != 6 || s.Existing != 1 || s.Skipped != 2 {
			t.Errorf("time stats = %+v, want 6 inserted, 1 existing, 2 skipped", s)
		}
		if s.Reasons[etl.ReasonInvalidDate] != 2 {
			t.Errorf("time skip reasons = %v", s.Reasons)
		}

		var day, month, year, quarter int
		err := dbs.Warehouse.QueryRow(ctx,
			"SELECT day, month, year, quarter FROM dim_time WHERE date = '2024-03-05'").
			Scan(&day, &month, &year, &quarter)
		if err != nil {
			t.Fatalf("2024-03-05 not in dim_time: %v", err)
		}
		if day != 5 || month != 3 || year != 2024 || quarter != 1 {
			t.Errorf("derived parts = d%d m%d y%d q%d, want d5 m3 y2024 q1", day, month, year, quarter)
		}
	})

	t.Run("ProductDimension", func(t *testing.T) {
		if got := count(t, dbs, "SELECT count(*) FROM dim_product"); got != 2 {
			t.Errorf("dim_product rows = %d, want 2", got)
		}
		if got := count(t, dbs,
			"SELECT count(*) FROM dim_product WHERE product_name = $1 AND category = $2",
			"Widget", normalize.NotInformed); got != 1 {
			t.Errorf("(Widget, Not Informed) rows = %d, want 1", got)
		}
		if dims["product"].Reasons[etl.ReasonBlankName] != 1 {
			t.Errorf("product skip reasons = %v", dims["product"].Reasons)
		}
	})

	t.Run("PromotionDimension", func(t *testing.T) {
		tests := []struct {
			name, discountType string
		}{
			{"Spring Sale", normalize.DiscountPercentage},
			{"Ten Off", normalize.DiscountFixed},
			{"Mystery", normalize.DiscountUnknown},
		}
		for _, tt := range tests {
			var got string
			err := dbs.Warehouse.QueryRow(ctx,
				"SELECT discount_type FROM dim_promotion WHERE promotion_name = $1", tt.name).Scan(&got)
			if err != nil {
				t.Fatalf("promotion %q not loaded: %v", tt.name, err)
			}
			if got != tt.discountType {
				t.Errorf("promotion %q discount type = %q, want %q", tt.name, got, tt.discountType)
			}
		}
		if got := count(t, dbs,
			"SELECT count(*) FROM dim_promotion WHERE promotion_name = 'Ten Off' AND start_date IS NULL AND end_date IS NULL"); got != 1 {
			t.Errorf("Ten Off should be stored with NULL dates")
		}
	})

	t.Run("OtherDimensions", func(t *testing.T) {
		if got := count(t, dbs,
			"SELECT count(*) FROM dim_customer WHERE customer_name = 'Bruno Lima' AND age = 0 AND region = $1",
			normalize.NotInformed); got != 1 {
			t.Errorf("defaulted customer rows = %d, want 1", got)
		}
		if got := count(t, dbs, "SELECT count(*) FROM dim_store"); got != 1 {
			t.Errorf("dim_store rows = %d, want 1", got)
		}
		if got := count(t, dbs, "SELECT count(*) FROM dim_salesperson WHERE salesperson_name = 'Diego'"); got != 1 {
			t.Errorf("trimmed salesperson rows = %d, want 1", got)
		}
	})

	facts := loadFacts(t, dbs)

	t.Run("FactStats", func(t *testing.T) {
		if facts.Extracted != 6 || facts.Inserted != 3 || facts.Skipped != 3 {
			t.Errorf("fact stats = %+v, want 6 extracted, 3 inserted, 3 skipped", facts)
		}
		want := map[string]int64{
			etl.ReasonInvalidDate:        1,
			etl.ReasonSalespersonMissing: 1,
			etl.ReasonProductMissing:     1,
		}
		for reason, n := range want {
			if facts.Reasons[reason] != n {
				t.Errorf("reason %q = %d, want %d (all: %v)", reason, facts.Reasons[reason], n, facts.Reasons)
			}
		}
	})

	t.Run("NegativeQuantity", func(t *testing.T) {
		var qty int
		var price, total string
		err := dbs.Warehouse.QueryRow(ctx, `
            SELECT f.quantity, f.unit_price::text, f.total_value::text
              FROM fact_sales f
              JOIN dim_promotion p ON p.promotion_id = f.promotion_id
             WHERE p.promotion_name = 'Spring Sale'`).Scan(&qty, &price, &total)
		if err != nil {
			t.Fatalf("Spring Sale fact not found: %v", err)
		}
		if qty != 3 || price != "9.50" || total != "28.50" {
			t.Errorf("fact = (%d, %s, %s), want (3, 9.50, 28.50)", qty, price, total)
		}
	})

	t.Run("PromotionWithNullDatesResolves", func(t *testing.T) {
		if got := count(t, dbs, `
            SELECT count(*) FROM fact_sales f
              JOIN dim_promotion p ON p.promotion_id = f.promotion_id
             WHERE p.promotion_name = 'Ten Off'`); got != 1 {
			t.Errorf("facts referencing Ten Off = %d, want 1", got)
		}
	})

	t.Run("MeasureInvariant", func(t *testing.T) {
		if got := count(t, dbs,
			"SELECT count(*) FROM fact_sales WHERE quantity < 0 OR total_value <> unit_price * quantity"); got != 0 {
			t.Errorf("%d fact rows violate the measure invariant", got)
		}
	})

	t.Run("DimensionsIdempotent", func(t *testing.T) {
		again := loadDimensions(t, dbs)
		for name, s := range again {
			if s.Inserted != 0 {
				t.Errorf("second %s load inserted %d rows", name, s.Inserted)
			}
		}
	})
}

func TestUnresolvedPromotionKeepsFact(t *testing.T) {
	dbs := setup(t, loadFixture(t))
	ctx := context.Background()

	loadDimensions(t, dbs)
	if _, err := dbs.Warehouse.Exec(ctx, "DELETE FROM dim_promotion WHERE promotion_name = 'Mystery'"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	facts := loadFacts(t, dbs)
	if facts.Inserted != 3 {
		t.Errorf("inserted = %d, want 3", facts.Inserted)
	}
	if facts.Unresolved != 1 {
		t.Errorf("unresolved = %d, want 1", facts.Unresolved)
	}
	if got := count(t, dbs, "SELECT count(*) FROM fact_sales WHERE promotion_id IS NULL"); got != 1 {
		t.Errorf("facts with NULL promotion = %d, want 1", got)
	}
}

func TestExtremeMeasuresFitFactColumns(t *testing.T) {
	dbs := setup(t, loadFixture(t))
	ctx := context.Background()

	// The Spring Sale line becomes the widest values sale_item can hold.
	_, err := dbs.Source.Exec(ctx, `
        UPDATE sale_item SET quantity = -2147483648, unit_price = 99999999.99
         WHERE promotion_id = (SELECT promotion_id FROM promotion WHERE name = 'Spring Sale')`)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	loadDimensions(t, dbs)
	facts := loadFacts(t, dbs)
	if facts.Inserted != 3 {
		t.Errorf("inserted = %d, want 3", facts.Inserted)
	}

	var qty int64
	var total string
	err = dbs.Warehouse.QueryRow(ctx, `
        SELECT f.quantity, f.total_value::text
          FROM fact_sales f
          JOIN dim_promotion p ON p.promotion_id = f.promotion_id
         WHERE p.promotion_name = 'Spring Sale'`).Scan(&qty, &total)
	if err != nil {
		t.Fatalf("Spring Sale fact not found: %v", err)
	}
	if qty != 2147483648 {
		t.Errorf("quantity = %d, want 2147483648", qty)
	}
	if total != "214748364778525163.52" {
		t.Errorf("total_value = %s, want 214748364778525163.52", total)
	}
}

func TestMissingSalespersonSkipsOnlyItsLines(t *testing.T) {
	dbs := setup(t, loadFixture(t))
	ctx := context.Background()

	loadDimensions(t, dbs)
	if _, err := dbs.Warehouse.Exec(ctx, "DELETE FROM dim_salesperson WHERE salesperson_name = 'Carla'"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	facts := loadFacts(t, dbs)
	if facts.Inserted != 1 {
		t.Errorf("inserted = %d, want 1 (the line sold by Diego)", facts.Inserted)
	}
	if facts.Reasons[etl.ReasonSalespersonMissing] != 3 {
		t.Errorf("salesperson skips = %d, want 3", facts.Reasons[etl.ReasonSalespersonMissing])
	}
	if got := count(t, dbs, `
        SELECT count(*) FROM fact_sales f
          JOIN dim_salesperson s ON s.salesperson_id = f.salesperson_id
         WHERE s.salesperson_name = 'Diego'`); got != 1 {
		t.Errorf("facts sold by Diego = %d, want 1", got)
	}
}

func TestPipelineWithGeneratedData(t *testing.T) {
	gen := source.NewGenerator(source.GeneratorConfig{Sales: 300, Seed: 99, DirtyRatio: 0.1})
	dbs := setup(t, gen.Generate())
	ctx := context.Background()

	if err := db.EnsureRunTable(ctx, dbs.Warehouse); err != nil {
		t.Fatalf("EnsureRunTable failed: %v", err)
	}
	hook := func(ctx context.Context, runID uuid.UUID, position int, s *etl.Stats) error {
		return db.RecordStage(ctx, dbs.Warehouse, db.StageRecord{
			RunID: runID, Stage: s.Stage, Position: position,
			Extracted: s.Extracted, Inserted: s.Inserted, Existing: s.Existing,
			Skipped: s.Skipped, Unresolved: s.Unresolved, Duration: s.Duration,
		})
	}

	report, err := etl.NewPipeline(etl.WithStageHook(hook), etl.WithProgressInterval(100)).
		Run(ctx, dbs.Source, dbs.Warehouse)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Stages) != 7 {
		t.Fatalf("report has %d stages, want 7", len(report.Stages))
	}

	for _, s := range report.Stages {
		if s.Inserted+s.Existing+s.Skipped != s.Extracted {
			t.Errorf("%s: inserted %d + existing %d + skipped %d != extracted %d",
				s.Stage, s.Inserted, s.Existing, s.Skipped, s.Extracted)
		}
	}

	facts := report.Stages[6]
	if got := count(t, dbs, "SELECT count(*) FROM fact_sales"); got != facts.Inserted {
		t.Errorf("fact_sales rows = %d, stats say %d", got, facts.Inserted)
	}
	if got := count(t, dbs,
		"SELECT count(*) FROM fact_sales WHERE quantity < 0 OR total_value <> unit_price * quantity"); got != 0 {
		t.Errorf("%d fact rows violate the measure invariant", got)
	}

	records, err := db.LastRun(ctx, dbs.Warehouse)
	if err != nil {
		t.Fatalf("LastRun failed: %v", err)
	}
	if len(records) != 7 || records[0].RunID != report.RunID {
		t.Errorf("recorded %d stages for run %v, want 7 for %v", len(records), records[0].RunID, report.RunID)
	}
	if records[6].Stage != "fact" || records[6].Inserted != facts.Inserted {
		t.Errorf("last recorded stage = %+v", records[6])
	}

	counts, err := warehouse.Counts(ctx, dbs.Warehouse)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	for _, c := range counts {
		if c.Table == "dim_time" && c.Rows == 0 {
			t.Error("dim_time is empty after a load")
		}
	}
}
