package canonical

import (
	"sort"

	"github.com/otherjamesbrown/canonize/pkg/errors"
	"github.com/otherjamesbrown/canonize/pkg/mentions"
)

// DefaultThreshold is the similarity score at or above which two labels
// are considered the same entity.
const DefaultThreshold = 0.82

// Options tunes a canonicalization run.
type Options struct {
	// Threshold overrides DefaultThreshold when > 0.
	Threshold float64
}

func (o Options) threshold() float64 {
	if o.Threshold > 0 {
		return o.Threshold
	}
	return DefaultThreshold
}

// Stats summarizes one canonicalization run for logging and run records.
type Stats struct {
	Mentions     int
	UniqueLabels int
	Overridden   int
	Clustered    int
	Singletons   int
	Entities     int
}

// Result is the output of Canonicalize: the canonical entities and the
// alias map binding every observed normalized label to exactly one of them.
type Result struct {
	Entities []mentions.CanonicalEntity
	Aliases  mentions.AliasMap
	Stats    Stats
}

// labelGroup accumulates everything known about one normalized label.
type labelGroup struct {
	rawCounts map[string]int
	count     int
	minConf   float64
}

// Canonicalize resolves the given mentions of one kind into canonical
// entities. Override bindings apply first and are never revisited by the
// fuzzy pass. The remaining labels are sorted and clustered with
// union-find; person labels merge at or above the similarity threshold,
// theory labels merge only on exact normalized equality. Output ordering
// and ID assignment depend only on the input label set, so repeated runs
// over the same mentions produce identical results.
func Canonicalize(kind mentions.Kind, ms []mentions.Mention, overrides map[string]string, opts Options) (Result, error) {
	if !kind.IsValid() {
		return Result{}, errors.Newf(errors.ErrValidation, "invalid entity kind %q", kind)
	}

	groups := make(map[string]*labelGroup)
	for _, m := range ms {
		if m.Kind != kind {
			continue
		}
		norm := NormalizeLabel(m.RawLabel)
		if norm == "" {
			return Result{}, errors.Newf(errors.ErrValidation, "mention %d: label %q normalizes to empty", m.ID, m.RawLabel)
		}
		g, ok := groups[norm]
		if !ok {
			g = &labelGroup{rawCounts: make(map[string]int), minConf: m.Confidence}
			groups[norm] = g
		}
		g.rawCounts[m.RawLabel]++
		g.count++
		if m.Confidence < g.minConf {
			g.minConf = m.Confidence
		}
	}

	res := Result{
		Aliases: make(mentions.AliasMap, len(groups)),
		Stats:   Stats{UniqueLabels: len(groups)},
	}
	for _, g := range groups {
		res.Stats.Mentions += g.count
	}

	alloc := newSlugAllocator()

	// Override bindings first. Each distinct target ID becomes one entity
	// and its ID is reserved so fuzzy clusters can never collide with it.
	bound := make(map[string][]string)
	var unbound []string
	for norm := range groups {
		if id, ok := overrides[norm]; ok {
			bound[id] = append(bound[id], norm)
			res.Stats.Overridden++
		} else {
			unbound = append(unbound, norm)
		}
	}

	boundIDs := make([]string, 0, len(bound))
	for id := range bound {
		boundIDs = append(boundIDs, id)
		alloc.reserve(id)
	}
	sort.Strings(boundIDs)

	for _, id := range boundIDs {
		members := bound[id]
		sort.Strings(members)
		res.Entities = append(res.Entities, buildEntity(kind, id, DisplayNameFromLabel(id), members, groups))
		for _, norm := range members {
			res.Aliases[norm] = mentions.Alias{Normalized: norm, CanonicalID: id, Source: mentions.AliasSourceOverride}
		}
	}

	// Fuzzy pass over whatever the overrides left unbound. Labels are
	// sorted so that union order, and therefore cluster roots, never
	// depend on map iteration.
	sort.Strings(unbound)
	uf := newUnionFind(unbound)
	if kind == mentions.KindPerson {
		threshold := opts.threshold()
		for i := 0; i < len(unbound); i++ {
			for j := i + 1; j < len(unbound); j++ {
				if Similarity(unbound[i], unbound[j]) >= threshold {
					uf.union(unbound[i], unbound[j])
				}
			}
		}
	}

	clusters := uf.groups()
	roots := make([]string, 0, len(clusters))
	for root := range clusters {
		roots = append(roots, root)
	}
	sort.Strings(roots)

	for _, root := range roots {
		members := clusters[root]
		sort.Strings(members)

		display := pickDisplayName(members, groups)
		id := alloc.allocate(display)
		res.Entities = append(res.Entities, buildEntity(kind, id, display, members, groups))

		source := mentions.AliasSourceCluster
		if len(members) == 1 {
			source = mentions.AliasSourceSingleton
			res.Stats.Singletons++
		} else {
			res.Stats.Clustered += len(members)
		}
		for _, norm := range members {
			res.Aliases[norm] = mentions.Alias{Normalized: norm, CanonicalID: id, Source: source}
		}
	}

	sort.Slice(res.Entities, func(i, j int) bool { return res.Entities[i].ID < res.Entities[j].ID })
	res.Stats.Entities = len(res.Entities)
	return res, nil
}

// pickDisplayName chooses the most frequent raw spelling across a cluster,
// breaking ties by length and then lexicographically.
func pickDisplayName(members []string, groups map[string]*labelGroup) string {
	var best string
	var bestCount int
	for _, norm := range members {
		for raw, n := range groups[norm].rawCounts {
			if n > bestCount ||
				(n == bestCount && len(raw) > len(best)) ||
				(n == bestCount && len(raw) == len(best) && raw < best) {
				best, bestCount = raw, n
			}
		}
	}
	return DisplayNameFromLabel(best)
}

func buildEntity(kind mentions.Kind, id, display string, members []string, groups map[string]*labelGroup) mentions.CanonicalEntity {
	e := mentions.CanonicalEntity{
		ID:          id,
		DisplayName: display,
		Kind:        kind,
		Category:    CategoryFor(kind, id),
		Confidence:  1.0,
	}
	for _, norm := range members {
		g := groups[norm]
		e.MentionCount += g.count
		if g.minConf < e.Confidence {
			e.Confidence = g.minConf
		}
	}
	return e
}
