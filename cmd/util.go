// Package cmd provides CLI commands for the canonize tool.
package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/canonize/config"
	"github.com/otherjamesbrown/canonize/pkg/buildinfo"
	"github.com/otherjamesbrown/canonize/pkg/logging"
	"github.com/otherjamesbrown/canonize/pkg/pipeline"
	"github.com/otherjamesbrown/canonize/pkg/store"
)

// Deps holds the dependencies commands resolve at run time. main wires
// Config and Logger after flag parsing; tests substitute their own.
type Deps struct {
	Config func() *config.CLIConfig
	Logger func() logging.Logger

	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer
}

func (d *Deps) out() io.Writer {
	if d.Out != nil {
		return d.Out
	}
	return os.Stdout
}

func (d *Deps) openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, d.Config().DBPath, d.Logger())
}

func (d *Deps) newPipeline(st *store.Store, dryRun bool) *pipeline.Pipeline {
	cfg := d.Config()
	return pipeline.New(pipeline.Config{
		SourceDir:     cfg.SourceDir,
		ExtractedDir:  cfg.ExtractedDir,
		OutputDir:     cfg.OutputDir,
		OverridesPath: cfg.OverridesPath,
		Threshold:     cfg.Threshold,
		DryRun:        dryRun,
		Version:       buildinfo.Version,
	}, st, d.Logger(), pipeline.NewMetrics(prometheus.NewRegistry()))
}

// printResult renders v in the configured output format. The text
// renderer receives the writer; json and yaml marshal v directly.
func (d *Deps) printResult(v any, text func(io.Writer)) error {
	w := d.out()
	switch d.Config().OutputFormat {
	case config.OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.OutputFormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		text(w)
		return nil
	}
}
