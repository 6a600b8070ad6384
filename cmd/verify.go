package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/canonize/pkg/mentions"
	"github.com/otherjamesbrown/canonize/pkg/verifier"
)

// NewVerifyCommand creates the 'verify' command. The process exits
// non-zero when any check fails.
func NewVerifyCommand(deps *Deps) *cobra.Command {
	var (
		expectPeople   int
		expectTheories int
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Audit the entity database",
		Long: `Audit the entity database: orphaned junction rows, unknown episode
references, unreferenced entities and junction coverage. Verification
never mutates the database.

The mention conservation check needs to know how many mentions the
dedupe phase loaded; a full 'canonize run' passes the counts through
automatically. Standalone, supply them with --expect-people and
--expect-theories.

A failed check makes the command exit non-zero, so it slots into
scripts and CI between dedupe and export.

Examples:
  # Audit referential integrity and coverage
  canonize verify

  # Also check mention conservation against known counts
  canonize verify --expect-people 85000 --expect-theories 35000`,
		Example: `  canonize verify
  canonize verify --expect-people 85000 --expect-theories 35000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := deps.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			// Only kinds whose flags were given take part in the
			// conservation check. Inserting the other kind with a zero
			// count would fail any database that holds mentions of it.
			expected := make(map[mentions.Kind]int)
			if expectPeople > 0 {
				expected[mentions.KindPerson] = expectPeople
			}
			if expectTheories > 0 {
				expected[mentions.KindTheory] = expectTheories
			}
			if len(expected) == 0 {
				expected = nil
			}

			report, runErr := deps.newPipeline(st, false).Verify(ctx, expected)
			if err := deps.printResult(report, func(w io.Writer) { printReport(w, report) }); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().IntVar(&expectPeople, "expect-people", 0, "Expected person mention count for the conservation check")
	cmd.Flags().IntVar(&expectTheories, "expect-theories", 0, "Expected theory mention count for the conservation check")

	return cmd
}

func printReport(w io.Writer, report verifier.Report) {
	for _, c := range report.Checks {
		fmt.Fprintf(w, "  [%s] %s: %s\n", c.Status, c.Name, c.Detail)
	}
	fmt.Fprintf(w, "Dedup ratios: people %.1f:1, theories %.1f:1\n",
		report.PeopleDedupRatio, report.TheoriesDedupRatio)
	if report.Failed() {
		fmt.Fprintln(w, "VERIFICATION FAILED")
	} else {
		fmt.Fprintln(w, "Verification passed")
	}
}
