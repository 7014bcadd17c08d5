package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-salesdw/internal/db"
	"github.com/pgEdge/pgedge-salesdw/internal/logging"
	"github.com/pgEdge/pgedge-salesdw/internal/source"
)

var (
	seedSales      int
	seedSeed       uint64
	seedDirtyRatio float64
	seedFixture    string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the source database with sample sales",
	Long: `Populate the operational source database with sample data. By default
realistic data is generated, with a configurable share of deliberately
dirty values (padded or blank names, missing categories, invalid dates,
negative quantities, sales without a salesperson). With --fixture a
hand-written YAML dataset is loaded instead.

Example:
  pgedge-salesdw seed --sales 5000 --dirty-ratio 0.1 --seed 42
  pgedge-salesdw seed --fixture scenarios.yaml`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedSales, "sales", 0,
		"number of sales to generate (default: 1000)")
	seedCmd.Flags().Uint64Var(&seedSeed, "seed", 0,
		"random seed for reproducible data (0 = random)")
	seedCmd.Flags().Float64Var(&seedDirtyRatio, "dirty-ratio", -1,
		"probability (0-1) that a generated value is malformed (default: 0.05)")
	seedCmd.Flags().StringVar(&seedFixture, "fixture", "",
		"YAML dataset to load instead of generated data")
}

func runSeed(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if seedSales > 0 {
		cfg.Seed.Sales = seedSales
	}
	if seedSeed != 0 {
		cfg.Seed.Seed = seedSeed
	}
	if seedDirtyRatio >= 0 {
		cfg.Seed.DirtyRatio = seedDirtyRatio
	}
	if seedFixture != "" {
		cfg.Seed.Fixture = seedFixture
	}

	// Validate configuration
	if err := cfg.ValidateSeed(); err != nil {
		return err
	}

	dataset, err := buildDataset()
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, "source", cfg.Source)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := source.CreateSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to create source schema: %w", err)
	}

	return dataset.Apply(ctx, pool)
}

func buildDataset() (*source.Dataset, error) {
	if cfg.Seed.Fixture != "" {
		logging.Info().Str("fixture", cfg.Seed.Fixture).Msg("Loading fixture")
		return source.LoadFixture(cfg.Seed.Fixture)
	}

	logging.Info().
		Int("sales", cfg.Seed.Sales).
		Uint64("seed", cfg.Seed.Seed).
		Float64("dirty_ratio", cfg.Seed.DirtyRatio).
		Msg("Generating source data")

	gen := source.NewGenerator(source.GeneratorConfig{
		Sales:      cfg.Seed.Sales,
		Seed:       cfg.Seed.Seed,
		DirtyRatio: cfg.Seed.DirtyRatio,
	})
	return gen.Generate(), nil
}
