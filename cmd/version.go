package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/canonize/pkg/buildinfo"
)

// NewVersionCommand creates the 'version' command. It runs without
// loading configuration so it works even with a broken config file.
func NewVersionCommand(deps *Deps) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show the canonize version, commit and build time.

Examples:
  canonize version
  canonize version --json`,
		Example: `  canonize version`,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildinfo.Get("canonize")
			w := deps.out()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Fprintf(w, "canonize %s\n", buildinfo.String())
			fmt.Fprintf(w, "  go: %s\n", info.GoVersion)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version information as JSON")

	return cmd
}
