// Package main provides the canonize CLI entry point.
// canonize deduplicates entity mentions extracted from television
// transcripts into a canonical SQLite entity database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/canonize/cmd"
	"github.com/otherjamesbrown/canonize/config"
	"github.com/otherjamesbrown/canonize/pkg/logging"
)

// Global flags and state.
var (
	dbPath        string
	sourceDir     string
	extractedDir  string
	outputDir     string
	overridesPath string
	threshold     float64
	outputFormat  string
	debug         bool

	// cfg holds the loaded configuration.
	cfg *config.CLIConfig

	// log is the shared logger, built after flags are parsed.
	log logging.Logger = logging.NewNopLogger()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "canonize",
	Short: "Canonize - transcript mention deduplication pipeline",
	Long: `canonize resolves raw entity mentions extracted from The Curse of
Oak Island transcripts into a canonical SQLite entity database.

Tens of thousands of person and theory mentions collapse into a few
dozen canonical entities. Every mention stays linked to its entity
through junction tables, so nothing is lost in the deduplication.

THE PIPELINE:
  ingest      load the episode catalogue and location register
  dedupe      resolve raw mentions into canonical people and theories
  normalize   recompute statistics and resolve location hints
  verify      audit conservation and referential integrity
  export      write the frontend JSON views

Each phase runs standalone, or 'canonize run' executes them in order
and stops at the first failure. Every phase supports --dry-run, which
does the full work inside a transaction and rolls it back.

COMMON WORKFLOWS:
  Full rebuild:     canonize run
  Preview changes:  canonize run --dry-run
  Audit only:       canonize verify
  Inspect tables:   canonize db stats

Configuration is read from ~/.canonize/config.yaml, overlaid with
CANONIZE_* environment variables and the flags below.`,
	SilenceUsage: true,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		// Skip initialization for commands that don't need it.
		if c.Name() == "version" || c.Name() == "help" || c.Name() == "completion" {
			return nil
		}

		// Load configuration.
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		// Override with command-line flags.
		if dbPath != "" {
			cfg.DBPath = dbPath
		}
		if sourceDir != "" {
			cfg.SourceDir = sourceDir
		}
		if extractedDir != "" {
			cfg.ExtractedDir = extractedDir
		}
		if outputDir != "" {
			cfg.OutputDir = outputDir
		}
		if overridesPath != "" {
			cfg.OverridesPath = overridesPath
		}
		if threshold > 0 {
			cfg.Threshold = threshold
		}
		if outputFormat != "" {
			cfg.OutputFormat = config.OutputFormat(outputFormat)
		}
		if debug {
			cfg.Debug = true
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validating config: %w", err)
		}

		logCfg := logging.DefaultConfig()
		if cfg.Debug {
			logCfg.Level = logging.LevelDebug
		}
		logCfg.Output = os.Stderr
		log = logging.NewLogger(logCfg)
		logging.SetGlobal(log)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database file (default from config)")
	rootCmd.PersistentFlags().StringVar(&sourceDir, "source-dir", "", "Directory holding episodes.json and locations.json")
	rootCmd.PersistentFlags().StringVar(&extractedDir, "extracted-dir", "", "Directory holding people.jsonl and theories.jsonl")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "Directory receiving the exported views")
	rootCmd.PersistentFlags().StringVar(&overridesPath, "overrides", "", "YAML file of manual alias bindings")
	rootCmd.PersistentFlags().Float64Var(&threshold, "threshold", 0, "Similarity threshold for person label clustering")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "Output format: text, json, or yaml")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	deps := &cmd.Deps{
		Config: func() *config.CLIConfig { return cfg },
		Logger: func() logging.Logger { return log },
	}

	rootCmd.AddCommand(cmd.NewRunCommand(deps))
	rootCmd.AddCommand(cmd.NewIngestCommand(deps))
	rootCmd.AddCommand(cmd.NewDedupeCommand(deps))
	rootCmd.AddCommand(cmd.NewNormalizeCommand(deps))
	rootCmd.AddCommand(cmd.NewVerifyCommand(deps))
	rootCmd.AddCommand(cmd.NewExportCommand(deps))
	rootCmd.AddCommand(cmd.NewDbCommand(deps))
	rootCmd.AddCommand(cmd.NewVersionCommand(deps))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
