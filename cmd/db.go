package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/canonize/pkg/store"
)

// Database command flags
var dbResetForce bool

// NewDbCommand creates the root db command with all subcommands.
func NewDbCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
		Long: `Database management commands for the canonize entity database.

Inspect table sizes or reset the database to an empty schema.

Examples:
  # Show per-table row counts
  canonize db stats

  # Drop everything and recreate the schema
  canonize db reset --force`,
		Aliases: []string{"database"},
	}

	cmd.AddCommand(newDbStatsCommand(deps))
	cmd.AddCommand(newDbResetCommand(deps))

	return cmd
}

// newDbStatsCommand creates the 'db stats' subcommand.
func newDbStatsCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-table row counts",
		Long: `Show row counts for every table in the entity database, read through
the same collector that serves Prometheus scrapes.

Examples:
  canonize db stats
  canonize db stats --output json`,
		Example: `  canonize db stats`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDbStats(cmd, deps)
		},
	}
}

func runDbStats(cmd *cobra.Command, deps *Deps) error {
	ctx := cmd.Context()
	st, err := deps.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	if _, err := store.RegisterTableStatsCollector(st, "canonize", reg); err != nil {
		return err
	}
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gathering table stats: %w", err)
	}

	stats := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "table" {
					name = lp.GetValue()
				}
			}
			stats[name] = m.GetGauge().GetValue()
		}
	}

	return deps.printResult(stats, func(w io.Writer) {
		names := make([]string, 0, len(stats))
		for name := range stats {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %-22s %d\n", name, int64(stats[name]))
		}
	})
}

// newDbResetCommand creates the 'db reset' subcommand.
func newDbResetCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop all tables and recreate the schema",
		Long: `Drop every table in the entity database and recreate the schema.

This destroys all resolved entities, junction rows and run history.
Requires --force.

Examples:
  canonize db reset --force`,
		Example: `  canonize db reset --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !dbResetForce {
				return fmt.Errorf("refusing to reset the database without --force")
			}

			ctx := cmd.Context()
			st, err := deps.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintf(deps.out(), "Database reset: %s\n", st.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&dbResetForce, "force", false, "Confirm the destructive reset")

	return cmd
}
