// Package exporter writes the frontend-facing JSON views from the entity
// database. Output is deterministic: the same database produces byte
// identical files, so reruns are diff-friendly.
package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/otherjamesbrown/canonize/pkg/logging"
	"github.com/otherjamesbrown/canonize/pkg/mentions"
	"github.com/otherjamesbrown/canonize/pkg/store"
)

// FileInfo describes one exported view.
type FileInfo struct {
	Name    string `json:"name"`
	Records int    `json:"records"`
	Bytes   int    `json:"bytes"`
}

// Summary reports what an export run produced.
type Summary struct {
	Files []FileInfo `json:"files"`
}

// TotalBytes sums the size of every exported view.
func (s Summary) TotalBytes() int {
	total := 0
	for _, f := range s.Files {
		total += f.Bytes
	}
	return total
}

type personView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Role        *string `json:"role"`
	Mentions    int     `json:"mentions"`
	FirstSeason *int    `json:"first_season"`
	LastSeason  *int    `json:"last_season"`
}

type theoryView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	EvidenceCount int    `json:"evidence_count"`
	FirstSeason   *int   `json:"first_season"`
	LastSeason    *int   `json:"last_season"`
}

type locationView struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Type string   `json:"type"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
}

type episodeView struct {
	Episode int     `json:"episode"`
	Title   string  `json:"title"`
	AirDate *string `json:"air_date"`
	Summary *string `json:"summary"`
}

type metadataView struct {
	Database string           `json:"database"`
	Version  string           `json:"version"`
	Entities metadataEntities `json:"entities"`
	Savings  metadataSavings  `json:"optimization"`
}

type metadataEntities struct {
	Locations             int    `json:"locations"`
	Episodes              int    `json:"episodes"`
	PeopleCanonical       int    `json:"people_canonical"`
	PeopleMentionsTotal   int    `json:"people_mentions_total"`
	PeopleDedupRatio      string `json:"people_dedup_ratio"`
	TheoriesCanonical     int    `json:"theories_canonical"`
	TheoriesMentionsTotal int    `json:"theories_mentions_total"`
	TheoriesDedupRatio    string `json:"theories_dedup_ratio"`
}

type metadataSavings struct {
	PeopleSavingsPercent   string `json:"people_savings_percent"`
	TheoriesSavingsPercent string `json:"theories_savings_percent"`
}

// Run exports every view into outputDir. On a dry run the views are built
// and measured but nothing touches the filesystem.
func Run(ctx context.Context, st *store.Store, log logging.Logger, outputDir, version string, dryRun bool) (Summary, error) {
	if !dryRun {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return Summary{}, fmt.Errorf("ensure output directory: %w", err)
		}
	}

	var summary Summary
	write := func(name string, records int, view any) error {
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", name, err)
		}
		data = append(data, '\n')
		if !dryRun {
			if err := os.WriteFile(filepath.Join(outputDir, name), data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
		}
		summary.Files = append(summary.Files, FileInfo{Name: name, Records: records, Bytes: len(data)})
		log.Info("view exported",
			logging.F("file", name),
			logging.F("records", records),
			logging.F("bytes", len(data)),
			logging.F("dry_run", dryRun))
		return nil
	}

	people, err := peopleSummary(ctx, st)
	if err != nil {
		return Summary{}, err
	}
	if err := write("people_summary.json", len(people), people); err != nil {
		return Summary{}, err
	}

	theories, err := theoriesSummary(ctx, st)
	if err != nil {
		return Summary{}, err
	}
	if err := write("theories_summary.json", len(theories), theories); err != nil {
		return Summary{}, err
	}

	locations, err := locationsMin(ctx, st)
	if err != nil {
		return Summary{}, err
	}
	if err := write("locations_min.json", len(locations), locations); err != nil {
		return Summary{}, err
	}

	episodes, count, err := episodesList(ctx, st)
	if err != nil {
		return Summary{}, err
	}
	if err := write("episodes_list.json", count, episodes); err != nil {
		return Summary{}, err
	}

	metadata, err := buildMetadata(ctx, st, version)
	if err != nil {
		return Summary{}, err
	}
	if err := write("database_metadata.json", 1, metadata); err != nil {
		return Summary{}, err
	}

	return summary, nil
}

func peopleSummary(ctx context.Context, st *store.Store) ([]personView, error) {
	entities, err := st.Entities(ctx, mentions.KindPerson)
	if err != nil {
		return nil, err
	}
	views := make([]personView, 0, len(entities))
	for _, e := range entities {
		views = append(views, personView{
			ID:          e.ID,
			Name:        e.DisplayName,
			Role:        nullableStr(e.Category),
			Mentions:    e.MentionCount,
			FirstSeason: seasonOf(e.FirstAppearance),
			LastSeason:  seasonOf(e.LastAppearance),
		})
	}
	return views, nil
}

func theoriesSummary(ctx context.Context, st *store.Store) ([]theoryView, error) {
	entities, err := st.Entities(ctx, mentions.KindTheory)
	if err != nil {
		return nil, err
	}
	views := make([]theoryView, 0, len(entities))
	for _, e := range entities {
		views = append(views, theoryView{
			ID:            e.ID,
			Name:          e.DisplayName,
			Type:          e.Category,
			EvidenceCount: e.MentionCount,
			FirstSeason:   seasonOf(e.FirstAppearance),
			LastSeason:    seasonOf(e.LastAppearance),
		})
	}
	return views, nil
}

func locationsMin(ctx context.Context, st *store.Store) ([]locationView, error) {
	locations, err := st.Locations(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]locationView, 0, len(locations))
	for _, loc := range locations {
		v := locationView{ID: loc.ID, Name: loc.Name, Type: loc.Type}
		if loc.Latitude != 0 || loc.Longitude != 0 {
			lat, lng := loc.Latitude, loc.Longitude
			v.Lat, v.Lng = &lat, &lng
		}
		views = append(views, v)
	}
	return views, nil
}

func episodesList(ctx context.Context, st *store.Store) (map[string][]episodeView, int, error) {
	episodes, err := st.Episodes(ctx)
	if err != nil {
		return nil, 0, err
	}
	bySeason := make(map[string][]episodeView)
	for _, ep := range episodes {
		key := fmt.Sprintf("season_%d", ep.Season)
		bySeason[key] = append(bySeason[key], episodeView{
			Episode: ep.Episode,
			Title:   ep.Title,
			AirDate: nullableStr(ep.AirDate),
			Summary: nullableStr(ep.Summary),
		})
	}
	return bySeason, len(episodes), nil
}

func buildMetadata(ctx context.Context, st *store.Store, version string) (metadataView, error) {
	in, err := st.CollectIntegrity(ctx)
	if err != nil {
		return metadataView{}, err
	}

	ratio := func(total, canonical int) string {
		if canonical == 0 {
			canonical = 1
		}
		return fmt.Sprintf("%.0f:1", float64(total)/float64(canonical))
	}
	savings := func(total, canonical int) string {
		if total == 0 {
			total = 1
		}
		return fmt.Sprintf("%.1f%%", (1-float64(canonical)/float64(total))*100)
	}

	return metadataView{
		Database: "canonize",
		Version:  version,
		Entities: metadataEntities{
			Locations:             in.Locations,
			Episodes:              in.Episodes,
			PeopleCanonical:       in.People,
			PeopleMentionsTotal:   in.PersonMentions,
			PeopleDedupRatio:      ratio(in.PersonMentions, in.People),
			TheoriesCanonical:     in.Theories,
			TheoriesMentionsTotal: in.TheoryMentions,
			TheoriesDedupRatio:    ratio(in.TheoryMentions, in.Theories),
		},
		Savings: metadataSavings{
			PeopleSavingsPercent:   savings(in.PersonMentions, in.People),
			TheoriesSavingsPercent: savings(in.TheoryMentions, in.Theories),
		},
	}, nil
}

func nullableStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func seasonOf(ref *mentions.EpisodeRef) *int {
	if ref == nil {
		return nil
	}
	season := ref.Season
	return &season
}
