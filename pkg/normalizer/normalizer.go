// Package normalizer is the post-resolution cleanup phase. It validates
// episode references, recomputes per-entity statistics from the junction
// tables, and resolves free-text location hints against the locations
// reference table.
package normalizer

import (
	"context"
	"sort"

	"github.com/otherjamesbrown/canonize/pkg/canonical"
	"github.com/otherjamesbrown/canonize/pkg/logging"
	"github.com/otherjamesbrown/canonize/pkg/store"
)

// hintThreshold is the similarity floor for fuzzy location hint matching.
// Deliberately stricter than entity clustering: a wrong location pin is
// visible on a map, a missed one is just null.
const hintThreshold = 0.9

// Result summarizes one normalization run.
type Result struct {
	EntitiesUpdated    int64
	UnknownEpisodeRefs int
	HintsSeen          int
	HintsMatched       int
	LocationsResolved  int
}

// Run executes the normalization phase against the store. Mentions whose
// (season, episode) is absent from the episodes table are counted and
// logged but kept; dropping them would break mention conservation.
func Run(ctx context.Context, st *store.Store, log logging.Logger, dryRun bool) (Result, error) {
	var res Result

	integrity, err := st.CollectIntegrity(ctx)
	if err != nil {
		return Result{}, err
	}
	res.UnknownEpisodeRefs = integrity.UnknownEpisodeRefs
	if res.UnknownEpisodeRefs > 0 {
		log.Warn("mentions reference unknown episodes",
			logging.F("count", res.UnknownEpisodeRefs))
	}

	res.EntitiesUpdated, err = st.UpdateEntityStatistics(ctx, dryRun)
	if err != nil {
		return Result{}, err
	}

	locations, err := st.Locations(ctx)
	if err != nil {
		return Result{}, err
	}
	hints, err := st.LocationHints(ctx)
	if err != nil {
		return Result{}, err
	}
	res.HintsSeen = len(hints)

	firsts := resolveFirstMentions(hints, locations)
	res.LocationsResolved = len(firsts)
	for _, h := range hints {
		if _, _, ok := MatchLocation(h.Hint, locations); ok {
			res.HintsMatched++
		}
	}

	if err := st.UpdateLocationFirstMentions(ctx, firsts, dryRun); err != nil {
		return Result{}, err
	}

	log.Info("normalization complete",
		logging.F("entities_updated", res.EntitiesUpdated),
		logging.F("unknown_episode_refs", res.UnknownEpisodeRefs),
		logging.F("hints_matched", res.HintsMatched),
		logging.F("locations_resolved", res.LocationsResolved))
	return res, nil
}

// MatchLocation resolves a free-text hint to a location ID. Exact matches
// on the normalized name or ID win; otherwise the most similar location at
// or above the hint threshold is chosen. Ties go to the lexicographically
// first ID so reruns are stable.
func MatchLocation(hint string, locations []store.Location) (id string, score float64, ok bool) {
	norm := canonical.NormalizeLabel(hint)
	if norm == "" {
		return "", 0, false
	}

	sorted := make([]store.Location, len(locations))
	copy(sorted, locations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var bestID string
	var bestScore float64
	for _, loc := range sorted {
		name := canonical.NormalizeLabel(loc.Name)
		if norm == name || norm == canonical.NormalizeLabel(loc.ID) {
			return loc.ID, 1.0, true
		}
		if s := canonical.Similarity(norm, name); s > bestScore {
			bestID, bestScore = loc.ID, s
		}
	}

	if bestScore >= hintThreshold {
		return bestID, bestScore, true
	}
	return "", bestScore, false
}

// resolveFirstMentions finds the earliest (season, episode) each location
// is hinted at. Hints arrive ordered by season then episode, so the first
// match per location wins.
func resolveFirstMentions(hints []store.MentionHint, locations []store.Location) map[string][2]int {
	firsts := make(map[string][2]int)
	for _, h := range hints {
		id, _, ok := MatchLocation(h.Hint, locations)
		if !ok {
			continue
		}
		if _, seen := firsts[id]; !seen {
			firsts[id] = [2]int{h.Season, h.Episode}
		}
	}
	return firsts
}
