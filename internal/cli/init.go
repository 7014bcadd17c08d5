package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-salesdw/internal/db"
	"github.com/pgEdge/pgedge-salesdw/internal/logging"
	"github.com/pgEdge/pgedge-salesdw/internal/source"
	"github.com/pgEdge/pgedge-salesdw/internal/warehouse"
	"github.com/pgEdge/pgedge-salesdw/pkg/version"
)

var initDropExisting bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the source and warehouse schemas",
	Long: `Create the operational source schema and the warehouse star schema,
along with the warehouse metadata and run history tables. Existing tables
are left in place unless --drop-existing is given.

Example:
  pgedge-salesdw init --source "postgres://.../crm" --warehouse "postgres://.../dw"`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing schemas (and all their data) before initialization")
}

func runInit(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if initDropExisting {
		cfg.Init.DropExisting = true
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	pair, err := db.ConnectPair(ctx, cfg.Source, cfg.Warehouse)
	if err != nil {
		return err
	}
	defer pair.Close()

	// Refuse to mix schema versions unless asked to start over
	existing, err := db.GetMetadataValue(ctx, pair.Warehouse, "schema_version")
	if err != nil && !db.IsNotFound(err) {
		return fmt.Errorf("failed to read warehouse schema version: %w", err)
	}
	if err == nil && existing != version.SchemaVersion && !cfg.Init.DropExisting {
		return fmt.Errorf(
			"warehouse was initialized with schema version %s but this build uses %s; "+
				"use --drop-existing to reinitialize",
			existing, version.SchemaVersion)
	}

	if cfg.Init.DropExisting {
		logging.Warn().Msg("Dropping existing source and warehouse schemas")
		if err := source.DropSchema(ctx, pair.Source); err != nil {
			return fmt.Errorf("failed to drop source schema: %w", err)
		}
		if err := warehouse.DropSchema(ctx, pair.Warehouse); err != nil {
			return fmt.Errorf("failed to drop warehouse schema: %w", err)
		}
		if err := db.DropRunTable(ctx, pair.Warehouse); err != nil {
			return fmt.Errorf("failed to drop run table: %w", err)
		}
		if err := db.DropMetadata(ctx, pair.Warehouse); err != nil {
			logging.Debug().Err(err).Msg("No metadata table to drop")
		}
	}

	logging.Info().Msg("Creating source schema")
	if err := source.CreateSchema(ctx, pair.Source); err != nil {
		return fmt.Errorf("failed to create source schema: %w", err)
	}

	logging.Info().Msg("Creating warehouse schema")
	if err := warehouse.CreateSchema(ctx, pair.Warehouse); err != nil {
		return fmt.Errorf("failed to create warehouse schema: %w", err)
	}
	if err := db.EnsureRunTable(ctx, pair.Warehouse); err != nil {
		return err
	}

	if err := db.SaveMetadata(ctx, pair.Warehouse, version.SchemaVersion); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().
		Str("schema_version", version.SchemaVersion).
		Msg("Initialization complete")
	return nil
}
