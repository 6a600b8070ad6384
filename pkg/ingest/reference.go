// Package ingest loads the reference data the rest of the pipeline
// validates against: the episode catalogue and the location register.
// Both files come from hand-maintained JSON that has drifted in shape
// over the years, so the loaders accept every layout seen in the wild.
package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/otherjamesbrown/canonize/pkg/errors"
	"github.com/otherjamesbrown/canonize/pkg/store"
)

// episodeRecord is the wire shape of one episode entry. Older exports
// used airDate and shortSummary; both spellings are accepted.
type episodeRecord struct {
	Season       int    `json:"season"`
	Episode      int    `json:"episode"`
	Title        string `json:"title"`
	AirDate      string `json:"air_date"`
	AirDateAlt   string `json:"airDate"`
	Summary      string `json:"summary"`
	ShortSummary string `json:"shortSummary"`
}

// episodesFile covers the two object layouts of episodes.json: a flat
// "episodes" list, or a "seasons" list each carrying its own episodes.
type episodesFile struct {
	Episodes []episodeRecord `json:"episodes"`
	Seasons  []struct {
		Episodes []episodeRecord `json:"episodes"`
	} `json:"seasons"`
}

// LoadEpisodes reads episodes.json in any of its historical layouts: a
// bare list, an object with an "episodes" list, or an object with a
// "seasons" list. Entries without a positive season and episode number
// are dropped. When the same episode appears twice the later entry
// wins. The result is sorted by season then episode.
func LoadEpisodes(path string) ([]store.Episode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read episodes: %w", err)
	}

	var records []episodeRecord
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, errors.Newf(errors.ErrValidation, "parse %s: %v", path, err)
		}
	} else {
		var file episodesFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, errors.Newf(errors.ErrValidation, "parse %s: %v", path, err)
		}
		records = append(records, file.Episodes...)
		for _, season := range file.Seasons {
			records = append(records, season.Episodes...)
		}
	}

	byID := make(map[string]store.Episode, len(records))
	for _, rec := range records {
		if rec.Season <= 0 || rec.Episode <= 0 {
			continue
		}
		airDate := rec.AirDate
		if airDate == "" {
			airDate = rec.AirDateAlt
		}
		summary := rec.Summary
		if summary == "" {
			summary = rec.ShortSummary
		}
		id := store.EpisodeID(rec.Season, rec.Episode)
		byID[id] = store.Episode{
			ID:      id,
			Season:  rec.Season,
			Episode: rec.Episode,
			Title:   rec.Title,
			AirDate: airDate,
			Summary: summary,
		}
	}

	episodes := make([]store.Episode, 0, len(byID))
	for _, ep := range byID {
		episodes = append(episodes, ep)
	}
	sort.Slice(episodes, func(i, j int) bool {
		if episodes[i].Season != episodes[j].Season {
			return episodes[i].Season < episodes[j].Season
		}
		return episodes[i].Episode < episodes[j].Episode
	})
	return episodes, nil
}

// locationRecord is the wire shape of one location entry. Coordinates
// appear as lat/lng in newer exports and latitude/longitude in older
// ones.
type locationRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Lat         *float64 `json:"lat"`
	Latitude    *float64 `json:"latitude"`
	Lng         *float64 `json:"lng"`
	Longitude   *float64 `json:"longitude"`
	Description string   `json:"description"`
}

// LoadLocations reads locations.json. Entries without an id are
// dropped; a missing type defaults to "unknown". Duplicate ids keep the
// later entry. The result is sorted by id.
func LoadLocations(path string) ([]store.Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locations: %w", err)
	}

	var records []locationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Newf(errors.ErrValidation, "parse %s: %v", path, err)
	}

	byID := make(map[string]store.Location, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		typ := rec.Type
		if typ == "" {
			typ = "unknown"
		}
		byID[rec.ID] = store.Location{
			ID:          rec.ID,
			Name:        rec.Name,
			Type:        typ,
			Latitude:    coalesce(rec.Lat, rec.Latitude),
			Longitude:   coalesce(rec.Lng, rec.Longitude),
			Description: rec.Description,
		}
	}

	locations := make([]store.Location, 0, len(byID))
	for _, loc := range byID {
		locations = append(locations, loc)
	}
	sort.Slice(locations, func(i, j int) bool { return locations[i].ID < locations[j].ID })
	return locations, nil
}

func coalesce(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}
