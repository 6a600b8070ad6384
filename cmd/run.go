package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/canonize/pkg/pipeline"
)

// NewRunCommand creates the 'run' command, which executes the full
// pipeline in phase order.
func NewRunCommand(deps *Deps) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full deduplication pipeline",
		Long: `Run every pipeline phase in order: ingest, dedupe, normalize,
verify and export. The run stops at the first failing phase, so a failed
verification prevents the export from overwriting good view files.

With --dry-run each phase does its full work inside a transaction and
rolls it back. Verify and export are skipped on a dry run because they
would only see the previously committed state.

Examples:
  # Rebuild the entity database and export the views
  canonize run

  # Preview what a rebuild would do without writing anything
  canonize run --dry-run`,
		Example: `  canonize run
  canonize run --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := deps.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			sum, runErr := deps.newPipeline(st, dryRun).Run(ctx)
			// Print what completed even when a phase failed; the
			// summary shows how far the run got.
			if err := deps.printResult(sum, func(w io.Writer) { printRunSummary(w, sum) }); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Execute every phase but roll back all writes")

	return cmd
}

func printRunSummary(w io.Writer, sum pipeline.RunSummary) {
	fmt.Fprintf(w, "Run %s", sum.RunID)
	if sum.DryRun {
		fmt.Fprint(w, " (dry run)")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  ingest:    %d episodes, %d locations\n",
		sum.Ingest.Episodes, sum.Ingest.Locations)
	fmt.Fprintf(w, "  dedupe:    %d mentions resolved to %d people and %d theories (%d records skipped)\n",
		sum.Dedupe.Loader.Loaded, sum.Dedupe.People.Entities,
		sum.Dedupe.Theories.Entities, sum.Dedupe.Loader.Skipped)
	fmt.Fprintf(w, "  normalize: %d entities updated, %d/%d hints matched, %d locations pinned\n",
		sum.Normalize.EntitiesUpdated, sum.Normalize.HintsMatched,
		sum.Normalize.HintsSeen, sum.Normalize.LocationsResolved)
	if sum.DryRun {
		fmt.Fprintln(w, "  verify:    skipped (dry run)")
		fmt.Fprintln(w, "  export:    skipped (dry run)")
		return
	}
	fmt.Fprintf(w, "  verify:    %d checks, people %.1f:1, theories %.1f:1\n",
		len(sum.Verify.Checks), sum.Verify.PeopleDedupRatio, sum.Verify.TheoriesDedupRatio)
	fmt.Fprintf(w, "  export:    %d files, %d bytes\n",
		len(sum.Export.Files), sum.Export.TotalBytes())
}
