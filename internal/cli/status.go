package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-salesdw/internal/db"
	"github.com/pgEdge/pgedge-salesdw/internal/logging"
	"github.com/pgEdge/pgedge-salesdw/internal/report"
	"github.com/pgEdge/pgedge-salesdw/internal/warehouse"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show warehouse row counts and the most recent load",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateStatus(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, "warehouse", cfg.Warehouse)
	if err != nil {
		return err
	}
	defer pool.Close()

	out := cmd.OutOrStdout()

	meta, err := db.GetAllMetadata(ctx, pool)
	if db.IsNotFound(err) {
		return fmt.Errorf(
			"warehouse has not been initialized; run 'pgedge-salesdw init' first")
	}
	if err != nil {
		return fmt.Errorf("failed to read warehouse metadata: %w", err)
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	metaTable := &report.Table{Header: []string{"KEY", "VALUE"}}
	for _, k := range keys {
		metaTable.Append(k, meta[k])
	}
	if err := metaTable.Render(out); err != nil {
		return err
	}

	counts, err := warehouse.Counts(ctx, pool)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	if err := report.Counts(counts).Render(out); err != nil {
		return err
	}

	records, err := db.LastRun(ctx, pool)
	if db.IsNotFound(err) {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "No recorded loads.")
		return nil
	}
	if err != nil {
		logging.Warn().Err(err).Msg("Could not read run history")
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Last load %s (finished %s)\n",
		records[0].RunID, records[len(records)-1].FinishedAt.Format("2006-01-02 15:04:05 MST"))
	return report.Run(records).Render(out)
}
