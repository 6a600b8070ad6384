// Package staging loads raw mention extraction files into memory for
// downstream canonicalization. Sources are JSON Lines or single JSON array
// files, one file per entity kind. Records that fail validation are
// skipped and counted, never silently dropped.
package staging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	czerrors "github.com/otherjamesbrown/canonize/pkg/errors"
	"github.com/otherjamesbrown/canonize/pkg/logging"
	"github.com/otherjamesbrown/canonize/pkg/mentions"
)

// SkipReason buckets why a source record was rejected.
type SkipReason string

const (
	SkipMalformed      SkipReason = "malformed"
	SkipMissingLabel   SkipReason = "missing_label"
	SkipMissingEpisode SkipReason = "missing_episode"
	SkipMissingText    SkipReason = "missing_text"
)

// Source names one extraction file and the entity kind it carries.
type Source struct {
	Path string
	Kind mentions.Kind
}

// DefaultSources returns the conventional extraction layout under dir:
// people.jsonl for person mentions and theories.jsonl for theory mentions.
func DefaultSources(dir string) []Source {
	return []Source{
		{Path: filepath.Join(dir, "people.jsonl"), Kind: mentions.KindPerson},
		{Path: filepath.Join(dir, "theories.jsonl"), Kind: mentions.KindTheory},
	}
}

// Stats reports what Load accepted and rejected.
type Stats struct {
	Loaded  int
	Skipped int
	ByKind  map[mentions.Kind]int
	Reasons map[SkipReason]int
}

// record is the wire shape of one extraction row. Older extraction runs
// wrote source_refs instead of source_file; both are accepted.
type record struct {
	Person       string   `json:"person"`
	Theory       string   `json:"theory"`
	Season       int      `json:"season"`
	Episode      int      `json:"episode"`
	Timestamp    string   `json:"timestamp"`
	Text         string   `json:"text"`
	Confidence   *float64 `json:"confidence"`
	MentionType  string   `json:"mention_type"`
	LocationHint string   `json:"location_hint"`
	SourceFile   string   `json:"source_file"`
	SourceRefs   string   `json:"source_refs"`
}

// Load reads every source in order and returns the surviving mentions with
// sequential IDs. Input order is preserved within and across sources, so a
// mention's ID is stable across reruns over the same files. A missing or
// unreadable file is an error; a bad record inside a file is a skip.
func Load(log logging.Logger, sources []Source) ([]mentions.Mention, Stats, error) {
	stats := Stats{
		ByKind:  make(map[mentions.Kind]int),
		Reasons: make(map[SkipReason]int),
	}

	var out []mentions.Mention
	nextID := int64(1)

	for _, src := range sources {
		if !src.Kind.IsValid() {
			return nil, Stats{}, czerrors.Newf(czerrors.ErrValidation, "source %s: invalid kind %q", src.Path, src.Kind)
		}

		records, malformed, err := readRecords(src.Path)
		if err != nil {
			return nil, Stats{}, fmt.Errorf("loading %s: %w", src.Path, err)
		}
		stats.Skipped += malformed
		stats.Reasons[SkipMalformed] += malformed

		accepted := 0
		for _, rec := range records {
			m, reason := buildMention(nextID, src.Kind, rec)
			if reason != "" {
				stats.Skipped++
				stats.Reasons[reason]++
				continue
			}
			out = append(out, m)
			nextID++
			accepted++
		}

		stats.Loaded += accepted
		stats.ByKind[src.Kind] += accepted
		log.Info("source loaded",
			logging.F("path", src.Path),
			logging.F("kind", string(src.Kind)),
			logging.F("accepted", accepted),
			logging.F("skipped", len(records)-accepted+malformed))
	}

	if malformed := stats.Reasons[SkipMalformed]; malformed > 0 {
		log.Warn("malformed records skipped", logging.F("count", malformed))
	}
	return out, stats, nil
}

// readRecords parses a file as either a single JSON array or JSON Lines,
// chosen by the first non-space byte. Malformed JSONL lines are counted
// and skipped; a malformed array file fails as a whole since partial
// recovery is not possible.
func readRecords(path string) ([]record, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, 0, nil
	}

	if trimmed[0] == '[' {
		var records []record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, 0, fmt.Errorf("parsing JSON array: %w", err)
		}
		return records, 0, nil
	}

	var records []record
	malformed := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			malformed++
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("scanning lines: %w", err)
	}
	return records, malformed, nil
}

// buildMention validates one record and converts it. The returned reason
// is empty on success.
func buildMention(id int64, kind mentions.Kind, rec record) (mentions.Mention, SkipReason) {
	var label string
	switch kind {
	case mentions.KindPerson:
		label = rec.Person
	case mentions.KindTheory:
		label = rec.Theory
	}
	if label == "" {
		return mentions.Mention{}, SkipMissingLabel
	}
	if rec.Season <= 0 || rec.Episode <= 0 {
		return mentions.Mention{}, SkipMissingEpisode
	}
	if rec.Text == "" {
		return mentions.Mention{}, SkipMissingText
	}

	confidence := 1.0
	if rec.Confidence != nil {
		confidence = *rec.Confidence
	}
	sourceRef := rec.SourceFile
	if sourceRef == "" {
		sourceRef = rec.SourceRefs
	}

	return mentions.Mention{
		ID:           id,
		Kind:         kind,
		RawLabel:     label,
		Episode:      mentions.EpisodeRef{Season: rec.Season, Episode: rec.Episode},
		Timestamp:    rec.Timestamp,
		Text:         rec.Text,
		Confidence:   confidence,
		MentionType:  mentions.MentionType(rec.MentionType),
		LocationHint: rec.LocationHint,
		SourceRef:    sourceRef,
	}, ""
}
