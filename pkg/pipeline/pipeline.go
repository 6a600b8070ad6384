// Package pipeline sequences the deduplication phases: ingest, dedupe,
// normalize, verify and export. Each phase runs standalone behind its
// own CLI command, or as part of a full run that stops at the first
// failing phase. Every execution is tagged with a run ID and recorded
// in the run log, dry runs included.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/otherjamesbrown/canonize/pkg/canonical"
	czerrors "github.com/otherjamesbrown/canonize/pkg/errors"
	"github.com/otherjamesbrown/canonize/pkg/exporter"
	"github.com/otherjamesbrown/canonize/pkg/ingest"
	"github.com/otherjamesbrown/canonize/pkg/junction"
	"github.com/otherjamesbrown/canonize/pkg/logging"
	"github.com/otherjamesbrown/canonize/pkg/mentions"
	"github.com/otherjamesbrown/canonize/pkg/normalizer"
	"github.com/otherjamesbrown/canonize/pkg/staging"
	"github.com/otherjamesbrown/canonize/pkg/store"
	"github.com/otherjamesbrown/canonize/pkg/verifier"
)

// Phase names as they appear in the run log and metrics.
const (
	PhaseIngest    = "ingest"
	PhaseDedupe    = "dedupe"
	PhaseNormalize = "normalize"
	PhaseVerify    = "verify"
	PhaseExport    = "export"
)

const (
	statusPass = "pass"
	statusFail = "fail"
)

// Config holds everything a pipeline run needs to know.
type Config struct {
	// SourceDir holds the reference data: episodes.json and
	// locations.json.
	SourceDir string

	// ExtractedDir holds the staged mention files: people.jsonl and
	// theories.jsonl.
	ExtractedDir string

	// OutputDir receives the exported view files.
	OutputDir string

	// OverridesPath optionally names a YAML file of manual alias
	// bindings, merged over the built-in defaults.
	OverridesPath string

	// Threshold overrides the default similarity threshold when > 0.
	Threshold float64

	// DryRun executes every phase but rolls back all writes.
	DryRun bool

	// Version is stamped into the export metadata.
	Version string
}

// Pipeline runs phases against one store. Construct with New; the zero
// value is not usable.
type Pipeline struct {
	cfg     Config
	store   *store.Store
	log     logging.Logger
	metrics *Metrics
	runID   string
}

// New creates a pipeline for one run. Every phase executed through it
// shares the same run ID. A nil metrics set records to a discarded
// registry.
func New(cfg Config, st *store.Store, log logging.Logger, metrics *Metrics) *Pipeline {
	if metrics == nil {
		metrics = NewMetrics(prometheus.NewRegistry())
	}
	runID := uuid.NewString()
	return &Pipeline{
		cfg:     cfg,
		store:   st,
		log:     log.With(logging.F("run_id", runID), logging.F("dry_run", cfg.DryRun)),
		metrics: metrics,
		runID:   runID,
	}
}

// RunID returns the identifier shared by every phase of this pipeline.
func (p *Pipeline) RunID() string {
	return p.runID
}

// IngestSummary reports what the ingest phase loaded.
type IngestSummary struct {
	Episodes  int `json:"episodes"`
	Locations int `json:"locations"`
}

// DedupeSummary reports what the dedupe phase resolved.
type DedupeSummary struct {
	Loader   staging.Stats         `json:"loader"`
	People   canonical.Stats       `json:"people"`
	Theories canonical.Stats       `json:"theories"`
	Junction map[mentions.Kind]int `json:"junction"`
}

// RunSummary aggregates the results of a full pipeline run.
type RunSummary struct {
	RunID     string            `json:"run_id"`
	DryRun    bool              `json:"dry_run"`
	Ingest    IngestSummary     `json:"ingest"`
	Dedupe    DedupeSummary     `json:"dedupe"`
	Normalize normalizer.Result `json:"normalize"`
	Verify    verifier.Report   `json:"verify"`
	Export    exporter.Summary  `json:"export"`
}

// Run executes the full phase sequence and stops at the first failure.
// Verification failures therefore prevent the export from running. In
// dry-run mode each phase rolls its writes back, so the verify and
// export phases would only see stale committed state; they are skipped
// and the run ends after normalization.
func (p *Pipeline) Run(ctx context.Context) (RunSummary, error) {
	sum := RunSummary{RunID: p.runID, DryRun: p.cfg.DryRun}

	var err error
	if sum.Ingest, err = p.Ingest(ctx); err != nil {
		return sum, err
	}
	if sum.Dedupe, err = p.Dedupe(ctx); err != nil {
		return sum, err
	}
	if sum.Normalize, err = p.Normalize(ctx); err != nil {
		return sum, err
	}
	if p.cfg.DryRun {
		p.log.Info("dry run, skipping verify and export")
		return sum, nil
	}
	if sum.Verify, err = p.Verify(ctx, sum.Dedupe.Loader.ByKind); err != nil {
		return sum, err
	}
	if sum.Export, err = p.Export(ctx); err != nil {
		return sum, err
	}
	return sum, nil
}

// Ingest loads the episode catalogue and location register from the
// source directory and replaces the reference tables.
func (p *Pipeline) Ingest(ctx context.Context) (IngestSummary, error) {
	var sum IngestSummary
	err := p.runPhase(ctx, PhaseIngest, func(ctx context.Context) (string, error) {
		episodes, err := ingest.LoadEpisodes(filepath.Join(p.cfg.SourceDir, "episodes.json"))
		if err != nil {
			return "", err
		}
		locations, err := ingest.LoadLocations(filepath.Join(p.cfg.SourceDir, "locations.json"))
		if err != nil {
			return "", err
		}
		if err := p.store.ReplaceEpisodes(ctx, episodes, p.cfg.DryRun); err != nil {
			return "", err
		}
		if err := p.store.ReplaceLocations(ctx, locations, p.cfg.DryRun); err != nil {
			return "", err
		}
		sum = IngestSummary{Episodes: len(episodes), Locations: len(locations)}
		return fmt.Sprintf("episodes=%d locations=%d", len(episodes), len(locations)), nil
	})
	return sum, err
}

// Dedupe stages the mention files, canonicalizes each kind, builds the
// junction records and commits the resolution. Person and theory
// mentions are disjoint, so the two canonicalization passes run
// concurrently.
func (p *Pipeline) Dedupe(ctx context.Context) (DedupeSummary, error) {
	var sum DedupeSummary
	err := p.runPhase(ctx, PhaseDedupe, func(ctx context.Context) (string, error) {
		ms, loadStats, err := staging.Load(p.log, staging.DefaultSources(p.cfg.ExtractedDir))
		if err != nil {
			return "", err
		}
		for kind, n := range loadStats.ByKind {
			p.metrics.RecordLoaded(string(kind), n)
		}
		for reason, n := range loadStats.Reasons {
			p.metrics.RecordSkipped(string(reason), n)
		}

		overrides := canonical.DefaultOverrides()
		if p.cfg.OverridesPath != "" {
			if overrides, err = canonical.LoadOverrides(p.cfg.OverridesPath); err != nil {
				return "", err
			}
		}

		byKind := make(map[mentions.Kind][]mentions.Mention, len(mentions.Kinds()))
		for _, m := range ms {
			byKind[m.Kind] = append(byKind[m.Kind], m)
		}

		opts := canonical.Options{Threshold: p.cfg.Threshold}
		results := make(map[mentions.Kind]canonical.Result, len(mentions.Kinds()))
		resolveErrs := make(map[mentions.Kind]error, len(mentions.Kinds()))
		var mu sync.Mutex
		var wg sync.WaitGroup
		for _, kind := range mentions.Kinds() {
			wg.Add(1)
			go func(kind mentions.Kind) {
				defer wg.Done()
				res, err := canonical.Canonicalize(kind, byKind[kind], overrides.ForKind(kind), opts)
				mu.Lock()
				results[kind] = res
				resolveErrs[kind] = err
				mu.Unlock()
			}(kind)
		}
		wg.Wait()
		for _, kind := range mentions.Kinds() {
			if resolveErrs[kind] != nil {
				return "", fmt.Errorf("canonicalize %s: %w", kind, resolveErrs[kind])
			}
		}

		var entities []mentions.CanonicalEntity
		aliases := make(map[mentions.Kind]mentions.AliasMap, len(results))
		for _, kind := range mentions.Kinds() {
			res := results[kind]
			entities = append(entities, res.Entities...)
			aliases[kind] = res.Aliases
			confidences := make([]float64, len(res.Entities))
			for i, e := range res.Entities {
				confidences[i] = e.Confidence
			}
			p.metrics.RecordResolution(string(kind), len(res.Entities), confidences)
		}

		records, err := junction.Build(ms, aliases)
		if err != nil {
			return "", err
		}
		if err := p.store.CommitResolution(ctx, entities, records, p.cfg.DryRun); err != nil {
			return "", err
		}

		sum = DedupeSummary{
			Loader:   loadStats,
			People:   results[mentions.KindPerson].Stats,
			Theories: results[mentions.KindTheory].Stats,
			Junction: junction.CountByKind(records),
		}
		return fmt.Sprintf("mentions=%d skipped=%d people=%d theories=%d",
			loadStats.Loaded, loadStats.Skipped,
			sum.People.Entities, sum.Theories.Entities), nil
	})
	return sum, err
}

// Normalize recomputes entity statistics and resolves location first
// mentions from the committed junction tables.
func (p *Pipeline) Normalize(ctx context.Context) (normalizer.Result, error) {
	var res normalizer.Result
	err := p.runPhase(ctx, PhaseNormalize, func(ctx context.Context) (string, error) {
		var err error
		if res, err = normalizer.Run(ctx, p.store, p.log, p.cfg.DryRun); err != nil {
			return "", err
		}
		return fmt.Sprintf("entities_updated=%d hints_matched=%d/%d locations_resolved=%d",
			res.EntitiesUpdated, res.HintsMatched, res.HintsSeen, res.LocationsResolved), nil
	})
	return res, err
}

// Verify audits the database. When expected mention counts are given
// the conservation check runs against them; a failed report is a phase
// failure. The report is returned even when the phase fails so callers
// can render it.
func (p *Pipeline) Verify(ctx context.Context, expected map[mentions.Kind]int) (verifier.Report, error) {
	var report verifier.Report
	err := p.runPhase(ctx, PhaseVerify, func(ctx context.Context) (string, error) {
		var err error
		report, err = verifier.Run(ctx, p.store, p.log, verifier.Options{ExpectedMentions: expected})
		if err != nil {
			return "", err
		}
		detail := fmt.Sprintf("checks=%d people_ratio=%.1f theories_ratio=%.1f",
			len(report.Checks), report.PeopleDedupRatio, report.TheoriesDedupRatio)
		if report.Failed() {
			return detail, report.Err()
		}
		return detail, nil
	})
	return report, err
}

// Export writes the view files to the output directory.
func (p *Pipeline) Export(ctx context.Context) (exporter.Summary, error) {
	var sum exporter.Summary
	err := p.runPhase(ctx, PhaseExport, func(ctx context.Context) (string, error) {
		var err error
		if sum, err = exporter.Run(ctx, p.store, p.log, p.cfg.OutputDir, p.cfg.Version, p.cfg.DryRun); err != nil {
			return "", err
		}
		return fmt.Sprintf("files=%d bytes=%d", len(sum.Files), sum.TotalBytes()), nil
	})
	return sum, err
}

// runPhase wraps one phase with logging, metrics and the run log. The
// run record is written even for dry runs; only the phase's own writes
// are rolled back.
func (p *Pipeline) runPhase(ctx context.Context, phase string, fn func(context.Context) (string, error)) error {
	log := p.log.With(logging.F("phase", phase))
	log.Info("phase started")

	started := time.Now().UTC()
	detail, err := fn(ctx)
	finished := time.Now().UTC()
	elapsed := finished.Sub(started)

	status := statusPass
	if err != nil {
		status = statusFail
		if detail == "" {
			detail = err.Error()
		}
	}

	rec := store.RunRecord{
		RunID:      p.runID,
		Phase:      phase,
		StartedAt:  started,
		FinishedAt: finished,
		DryRun:     p.cfg.DryRun,
		Status:     status,
		Detail:     detail,
	}
	if recErr := p.store.RecordRun(ctx, rec); recErr != nil {
		log.Warn("run record not written", logging.Err(recErr))
	}
	p.metrics.RecordPhase(phase, status, elapsed.Seconds())

	if err != nil {
		log.Error("phase failed", logging.Err(err), logging.F("duration", elapsed.String()))
		return czerrors.ClassifyError(err, phase)
	}
	log.Info("phase finished", logging.F("duration", elapsed.String()), logging.F("detail", detail))
	return nil
}
