package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewExportCommand creates the 'export' command.
func NewExportCommand(deps *Deps) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the frontend JSON views",
		Long: `Write the frontend-facing JSON views from the entity database into
the output directory: people_summary.json, theories_summary.json,
locations_min.json, episodes_list.json and database_metadata.json.

Exports are deterministic: the same database produces byte identical
files, so reruns are diff-friendly.

Examples:
  # Export the views into the configured output directory
  canonize export

  # Measure the views without writing them
  canonize export --dry-run`,
		Example: `  canonize export
  canonize export --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := deps.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			sum, err := deps.newPipeline(st, dryRun).Export(ctx)
			if err != nil {
				return err
			}
			return deps.printResult(sum, func(w io.Writer) {
				for _, f := range sum.Files {
					fmt.Fprintf(w, "  %s: %d records, %d bytes\n", f.Name, f.Records, f.Bytes)
				}
				fmt.Fprintf(w, "Exported %d files, %d bytes\n", len(sum.Files), sum.TotalBytes())
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build and measure the views without writing them")

	return cmd
}
