// Package mentions defines the core data model for the canonicalization
// pipeline: raw transcript mentions, canonical entities, and the alias
// mapping that links the two.
package mentions

import (
	"fmt"
)

// Kind represents the type of entity being mentioned.
type Kind string

const (
	KindPerson Kind = "person"
	KindTheory Kind = "theory"
)

// Kinds lists every supported entity kind in processing order.
func Kinds() []Kind {
	return []Kind{KindPerson, KindTheory}
}

// IsValid reports whether the kind is a supported entity kind.
func (k Kind) IsValid() bool {
	return k == KindPerson || k == KindTheory
}

// MentionType classifies how the entity was referenced in the transcript.
// It is carried through for provenance but never used in clustering.
type MentionType string

const (
	MentionTypeSpeaker    MentionType = "speaker"
	MentionTypeReferenced MentionType = "referenced"
	MentionTypeInferred   MentionType = "inferred"
)

// EpisodeRef identifies a season/episode pair.
type EpisodeRef struct {
	Season  int `json:"season"`
	Episode int `json:"episode"`
}

// ID returns the canonical episode identifier, e.g. "s04e07".
func (e EpisodeRef) ID() string {
	return fmt.Sprintf("s%02de%02d", e.Season, e.Episode)
}

// IsZero reports whether the reference is unset.
func (e EpisodeRef) IsZero() bool {
	return e.Season == 0 && e.Episode == 0
}

// Less orders episode references chronologically.
func (e EpisodeRef) Less(other EpisodeRef) bool {
	if e.Season != other.Season {
		return e.Season < other.Season
	}
	return e.Episode < other.Episode
}

// Mention is one raw, timestamped occurrence of a person or theory
// reference in the source transcripts. Mentions are immutable once loaded.
type Mention struct {
	// ID is the sequential identifier assigned at load time.
	ID int64 `json:"id"`

	Kind     Kind   `json:"kind"`
	RawLabel string `json:"raw_label"`

	Episode   EpisodeRef `json:"episode"`
	Timestamp string     `json:"timestamp,omitempty"`
	Text      string     `json:"text"`

	Confidence  float64     `json:"confidence"`
	MentionType MentionType `json:"mention_type,omitempty"`

	// LocationHint is free text naming where the mention took place, when
	// the extractor could infer one. Resolved to a location ID during
	// normalization.
	LocationHint string `json:"location_hint,omitempty"`

	SourceRef string `json:"source_ref,omitempty"`
}

// CanonicalEntity is the single deduplicated record representing all
// mentions judged to refer to the same real person or theory.
type CanonicalEntity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Kind        Kind   `json:"kind"`

	// Category is the entity subtype: a person's role on the show, or a
	// theory's classification (treasure, religious, historical, other).
	Category string `json:"category,omitempty"`

	MentionCount    int         `json:"mention_count"`
	FirstAppearance *EpisodeRef `json:"first_appearance,omitempty"`
	LastAppearance  *EpisodeRef `json:"last_appearance,omitempty"`

	// Confidence is the minimum confidence among the entity's mentions.
	Confidence float64 `json:"confidence"`
}

// AliasSource indicates how an alias binding was determined.
type AliasSource string

const (
	AliasSourceOverride  AliasSource = "override"
	AliasSourceCluster   AliasSource = "cluster"
	AliasSourceSingleton AliasSource = "singleton"
)

// Alias is one resolved binding from a normalized raw label to a canonical
// entity.
type Alias struct {
	Normalized  string      `json:"normalized"`
	CanonicalID string      `json:"canonical_id"`
	Source      AliasSource `json:"source"`
}

// AliasMap is the deterministic mapping from normalized raw label to
// canonical ID for one entity kind. It is built once per run and consulted
// read-only afterward.
type AliasMap map[string]Alias

// Lookup returns the canonical ID bound to a normalized label.
func (m AliasMap) Lookup(normalized string) (string, bool) {
	a, ok := m[normalized]
	if !ok {
		return "", false
	}
	return a.CanonicalID, true
}
