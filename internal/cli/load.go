//-------------------------------------------------------------------------
//
// pgEdge Sales Warehouse Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-salesdw/internal/db"
	"github.com/pgEdge/pgedge-salesdw/internal/etl"
	"github.com/pgEdge/pgedge-salesdw/internal/logging"
	"github.com/pgEdge/pgedge-salesdw/internal/report"
	"github.com/pgEdge/pgedge-salesdw/pkg/version"
)

var (
	loadProgressInterval int
	loadNoRecordRun      bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Run the ETL pipeline from the source into the warehouse",
	Long: `Load every dimension (time, product, customer, store, promotion,
salesperson), in that order, and then the sales facts. Dimension rows that
already exist are left untouched, so the dimension stages can be re-run
safely. Only one load may run against a warehouse at a time.

Example:
  pgedge-salesdw load --source "postgres://.../crm" --warehouse "postgres://.../dw"`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().IntVar(&loadProgressInterval, "progress-interval", -1,
		"log fact progress every N rows, 0 to disable (default: 10000)")
	loadCmd.Flags().BoolVar(&loadNoRecordRun, "no-record-run", false,
		"do not persist per-stage statistics in the warehouse")
}

func runLoad(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if loadProgressInterval >= 0 {
		cfg.Load.ProgressInterval = loadProgressInterval
	}
	if loadNoRecordRun {
		cfg.Load.RecordRun = false
	}

	// Validate configuration
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Warn().
				Str("signal", sig.String()).
				Msg("Received shutdown signal, aborting load")
			cancel()
		case <-ctx.Done():
		}
	}()

	pair, err := db.ConnectPair(ctx, cfg.Source, cfg.Warehouse)
	if err != nil {
		return err
	}
	defer pair.Close()

	// The warehouse schema must come from 'init'
	schemaVersion, err := db.GetMetadataValue(ctx, pair.Warehouse, "schema_version")
	if db.IsNotFound(err) {
		return fmt.Errorf(
			"warehouse has not been initialized; run 'pgedge-salesdw init' first")
	}
	if err != nil {
		return fmt.Errorf("failed to read warehouse schema version: %w", err)
	}
	if schemaVersion != version.SchemaVersion {
		return fmt.Errorf(
			"warehouse schema version %s does not match this build (%s); "+
				"re-run 'pgedge-salesdw init --drop-existing'",
			schemaVersion, version.SchemaVersion)
	}

	runID := uuid.New()
	logging.WithRun(runID.String())

	opts := []etl.Option{etl.WithProgressInterval(cfg.Load.ProgressInterval)}
	if cfg.Load.RecordRun {
		if err := db.EnsureRunTable(ctx, pair.Warehouse); err != nil {
			return err
		}
		opts = append(opts, etl.WithStageHook(recordStage(pair)))
	}

	logging.Info().Msg("Starting load")

	result, err := etl.NewPipeline(opts...).RunWithID(ctx, runID, pair.Source, pair.Warehouse)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("load interrupted: %w", err)
		}
		return err
	}

	if err := db.SetMetadataValue(ctx, pair.Warehouse, "last_run_id", runID.String()); err != nil {
		return err
	}
	if err := db.SetMetadataValue(ctx, pair.Warehouse, "last_run_at",
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	logging.Info().
		Dur("duration", result.Duration).
		Msg("Load complete")

	out := cmd.OutOrStdout()
	if err := report.Stages(result.Stages).Render(out); err != nil {
		return err
	}
	if reasons := report.SkipReasons(result.Stages); len(reasons.Rows) > 0 {
		fmt.Fprintln(out)
		if err := reasons.Render(out); err != nil {
			return err
		}
	}
	return nil
}

// recordStage persists each completed stage into the run history.
func recordStage(pair *db.Pair) etl.StageHook {
	return func(ctx context.Context, runID uuid.UUID, position int, stats *etl.Stats) error {
		return db.RecordStage(ctx, pair.Warehouse, db.StageRecord{
			RunID:      runID,
			Stage:      stats.Stage,
			Position:   position,
			Extracted:  stats.Extracted,
			Inserted:   stats.Inserted,
			Existing:   stats.Existing,
			Skipped:    stats.Skipped,
			Unresolved: stats.Unresolved,
			Duration:   stats.Duration,
		})
	}
}
