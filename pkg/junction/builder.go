// Package junction binds staged mentions to the canonical entities that
// absorbed them. The cardinal rule is conservation: exactly one junction
// record per staged mention, no drops and no duplicates.
package junction

import (
	"github.com/otherjamesbrown/canonize/pkg/canonical"
	czerrors "github.com/otherjamesbrown/canonize/pkg/errors"
	"github.com/otherjamesbrown/canonize/pkg/mentions"
)

// Record links one mention to its canonical entity. The full mention is
// carried so storage can persist episode, timestamp and provenance without
// a second lookup.
type Record struct {
	Mention     mentions.Mention
	CanonicalID string
}

// Build resolves every mention through the alias maps produced by
// canonicalization, one map per kind. It fails fast on the first label
// with no binding rather than dropping the mention, since a partial
// junction table is worse than no junction table.
func Build(ms []mentions.Mention, aliases map[mentions.Kind]mentions.AliasMap) ([]Record, error) {
	records := make([]Record, 0, len(ms))

	for _, m := range ms {
		kindAliases, ok := aliases[m.Kind]
		if !ok {
			return nil, czerrors.Newf(czerrors.ErrUnmappedLabel, "mention %d: no alias map for kind %q", m.ID, m.Kind)
		}
		norm := canonical.NormalizeLabel(m.RawLabel)
		canonicalID, ok := kindAliases.Lookup(norm)
		if !ok {
			return nil, czerrors.Newf(czerrors.ErrUnmappedLabel, "mention %d: label %q (normalized %q) has no canonical binding", m.ID, m.RawLabel, norm)
		}
		records = append(records, Record{Mention: m, CanonicalID: canonicalID})
	}

	if len(records) != len(ms) {
		return nil, czerrors.Newf(czerrors.ErrConservation, "built %d junction records for %d mentions", len(records), len(ms))
	}
	return records, nil
}

// CountByKind tallies junction records per entity kind.
func CountByKind(records []Record) map[mentions.Kind]int {
	counts := make(map[mentions.Kind]int)
	for _, r := range records {
		counts[r.Mention.Kind]++
	}
	return counts
}
