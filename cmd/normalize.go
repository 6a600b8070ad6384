package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewNormalizeCommand creates the 'normalize' command.
func NewNormalizeCommand(deps *Deps) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Recompute statistics and resolve location hints",
		Long: `Recompute per-entity mention counts, confidence and appearance spans
from the junction tables, and resolve free-text location hints against
the locations register to pin each location's first mention.

Mentions referencing episodes absent from the catalogue are counted and
logged but never dropped.

Examples:
  # Normalize after a dedupe
  canonize normalize

  # Preview without writing
  canonize normalize --dry-run`,
		Example: `  canonize normalize
  canonize normalize --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := deps.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := deps.newPipeline(st, dryRun).Normalize(ctx)
			if err != nil {
				return err
			}
			return deps.printResult(res, func(w io.Writer) {
				fmt.Fprintf(w, "Updated %d entities\n", res.EntitiesUpdated)
				fmt.Fprintf(w, "  location hints: %d/%d matched, %d locations pinned\n",
					res.HintsMatched, res.HintsSeen, res.LocationsResolved)
				if res.UnknownEpisodeRefs > 0 {
					fmt.Fprintf(w, "  warning: %d mentions reference unknown episodes\n", res.UnknownEpisodeRefs)
				}
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Do the full normalization inside a transaction and roll it back")

	return cmd
}
