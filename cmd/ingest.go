package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewIngestCommand creates the 'ingest' command.
func NewIngestCommand(deps *Deps) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load the episode catalogue and location register",
		Long: `Load episodes.json and locations.json from the source directory and
replace the reference tables. The normalizer validates mention episode
references against these tables, so ingest runs before dedupe.

episodes.json is accepted in any of its historical layouts: a bare list,
an object with an "episodes" list, or an object with a "seasons" list.

Examples:
  # Load reference data from the configured source directory
  canonize ingest

  # Preview the load without writing
  canonize ingest --dry-run`,
		Example: `  canonize ingest
  canonize ingest --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := deps.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			sum, err := deps.newPipeline(st, dryRun).Ingest(ctx)
			if err != nil {
				return err
			}
			return deps.printResult(sum, func(w io.Writer) {
				fmt.Fprintf(w, "Loaded %d episodes and %d locations\n", sum.Episodes, sum.Locations)
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Do the full load inside a transaction and roll it back")

	return cmd
}
