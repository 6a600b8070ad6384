package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/canonize/pkg/mentions"
	"github.com/otherjamesbrown/canonize/pkg/pipeline"
)

// NewDedupeCommand creates the 'dedupe' command.
func NewDedupeCommand(deps *Deps) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Resolve raw mentions into canonical entities",
		Long: `Load the staged mention files (people.jsonl and theories.jsonl) from
the extracted directory, resolve them into canonical people and theories,
and commit the resolution. Every surviving mention ends up bound to
exactly one canonical entity through the junction tables.

Manual overrides win over fuzzy clustering. The built-in override set
covers the recurring cast and the well-known theories; a YAML file named
by --overrides (or the overrides_path config key) is merged over it.

Person labels merge when their similarity reaches the threshold; theory
labels only merge when they normalize to the same string.

Examples:
  # Resolve with the configured threshold and overrides
  canonize dedupe

  # Preview cluster sizes without committing
  canonize dedupe --dry-run`,
		Example: `  canonize dedupe
  canonize dedupe --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := deps.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			sum, err := deps.newPipeline(st, dryRun).Dedupe(ctx)
			if err != nil {
				return err
			}
			return deps.printResult(sum, func(w io.Writer) { printDedupeSummary(w, sum) })
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Do the full resolution inside a transaction and roll it back")

	return cmd
}

func printDedupeSummary(w io.Writer, sum pipeline.DedupeSummary) {
	fmt.Fprintf(w, "Loaded %d mentions (%d skipped)\n", sum.Loader.Loaded, sum.Loader.Skipped)
	fmt.Fprintf(w, "  people:   %d labels resolved to %d entities (%d overridden, %d clustered, %d singletons)\n",
		sum.People.UniqueLabels, sum.People.Entities,
		sum.People.Overridden, sum.People.Clustered, sum.People.Singletons)
	fmt.Fprintf(w, "  theories: %d labels resolved to %d entities (%d overridden, %d clustered, %d singletons)\n",
		sum.Theories.UniqueLabels, sum.Theories.Entities,
		sum.Theories.Overridden, sum.Theories.Clustered, sum.Theories.Singletons)
	fmt.Fprintf(w, "  junction: %d person rows, %d theory rows\n",
		sum.Junction[mentions.KindPerson], sum.Junction[mentions.KindTheory])
}
