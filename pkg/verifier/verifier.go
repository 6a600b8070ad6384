// Package verifier audits the entity database after deduplication. It
// checks mention conservation, referential integrity and coverage, and
// produces a report the CLI turns into an exit code. Verification never
// mutates the database.
package verifier

import (
	"context"
	"fmt"

	czerrors "github.com/otherjamesbrown/canonize/pkg/errors"
	"github.com/otherjamesbrown/canonize/pkg/logging"
	"github.com/otherjamesbrown/canonize/pkg/mentions"
	"github.com/otherjamesbrown/canonize/pkg/store"
)

// Status classifies one check outcome.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Check is one named verification with its outcome.
type Check struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail"`
}

// Report is the full verification result.
type Report struct {
	Checks             []Check         `json:"checks"`
	Integrity          store.Integrity `json:"integrity"`
	PeopleDedupRatio   float64         `json:"people_dedup_ratio"`
	TheoriesDedupRatio float64         `json:"theories_dedup_ratio"`
}

// Failed reports whether any check failed outright.
func (r *Report) Failed() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return true
		}
	}
	return false
}

// Err returns the sentinel error matching the first failed check, or nil.
func (r *Report) Err() error {
	for _, c := range r.Checks {
		if c.Status != StatusFail {
			continue
		}
		switch c.Name {
		case "conservation_person", "conservation_theory", "mention_count_person", "mention_count_theory":
			return czerrors.Newf(czerrors.ErrConservation, "%s", c.Detail)
		case "orphan_person_mentions", "orphan_theory_mentions":
			return czerrors.Newf(czerrors.ErrOrphanMention, "%s", c.Detail)
		default:
			return czerrors.Newf(czerrors.ErrValidation, "%s: %s", c.Name, c.Detail)
		}
	}
	return nil
}

// Options tunes a verification run.
type Options struct {
	// ExpectedMentions, when set, enables the conservation check: the
	// junction table for each kind must hold exactly this many rows.
	ExpectedMentions map[mentions.Kind]int
}

// Run executes every check against the store. A returned error means the
// audit itself could not run; check outcomes live in the report.
func Run(ctx context.Context, st *store.Store, log logging.Logger, opts Options) (Report, error) {
	integrity, err := st.CollectIntegrity(ctx)
	if err != nil {
		return Report{}, err
	}

	report := Report{Integrity: integrity}
	if integrity.People > 0 {
		report.PeopleDedupRatio = float64(integrity.PersonMentions) / float64(integrity.People)
	}
	if integrity.Theories > 0 {
		report.TheoriesDedupRatio = float64(integrity.TheoryMentions) / float64(integrity.Theories)
	}

	add := func(name string, status Status, format string, args ...any) {
		report.Checks = append(report.Checks, Check{Name: name, Status: status, Detail: fmt.Sprintf(format, args...)})
	}

	// Conservation: one junction row per staged mention, when the caller
	// knows how many were staged.
	if expected, ok := opts.ExpectedMentions[mentions.KindPerson]; ok {
		if integrity.PersonMentions == expected {
			add("conservation_person", StatusPass, "%d mentions preserved", expected)
		} else {
			add("conservation_person", StatusFail, "person_mentions has %d rows, staged %d", integrity.PersonMentions, expected)
		}
	}
	if expected, ok := opts.ExpectedMentions[mentions.KindTheory]; ok {
		if integrity.TheoryMentions == expected {
			add("conservation_theory", StatusPass, "%d mentions preserved", expected)
		} else {
			add("conservation_theory", StatusFail, "theory_mentions has %d rows, staged %d", integrity.TheoryMentions, expected)
		}
	}

	// Orphans: zero tolerance, a junction row must always resolve.
	if integrity.OrphanPersonMentions == 0 {
		add("orphan_person_mentions", StatusPass, "no orphans")
	} else {
		add("orphan_person_mentions", StatusFail, "%d person mentions reference missing people", integrity.OrphanPersonMentions)
	}
	if integrity.OrphanTheoryMentions == 0 {
		add("orphan_theory_mentions", StatusPass, "no orphans")
	} else {
		add("orphan_theory_mentions", StatusFail, "%d theory mentions reference missing theories", integrity.OrphanTheoryMentions)
	}

	// Cached per-entity mention counts must agree with the junction
	// tables. These are recomputed here rather than trusted, so a stale
	// mention_count column cannot hide behind a matching junction total.
	if integrity.CachedPersonMentionSum == integrity.PersonMentions {
		add("mention_count_person", StatusPass, "cached counts sum to %d", integrity.PersonMentions)
	} else {
		add("mention_count_person", StatusFail, "people.mention_count sums to %d, person_mentions has %d rows",
			integrity.CachedPersonMentionSum, integrity.PersonMentions)
	}
	if integrity.CachedTheoryMentionSum == integrity.TheoryMentions {
		add("mention_count_theory", StatusPass, "cached counts sum to %d", integrity.TheoryMentions)
	} else {
		add("mention_count_theory", StatusFail, "theories.mention_count sums to %d, theory_mentions has %d rows",
			integrity.CachedTheoryMentionSum, integrity.TheoryMentions)
	}

	// Episode references are advisory: mentions are kept either way.
	if integrity.UnknownEpisodeRefs == 0 {
		add("episode_refs", StatusPass, "all mention episodes known")
	} else {
		add("episode_refs", StatusWarn, "%d mentions reference unknown episodes", integrity.UnknownEpisodeRefs)
	}

	unreferenced, err := st.UnreferencedEntities(ctx)
	if err != nil {
		return Report{}, err
	}
	if unreferenced == 0 {
		add("unreferenced_entities", StatusPass, "every entity has mentions")
	} else {
		add("unreferenced_entities", StatusWarn, "%d entities have no mentions", unreferenced)
	}

	// Coverage: an empty junction table after a dedupe run means the
	// pipeline produced nothing, which is never intentional.
	if integrity.PersonMentions+integrity.TheoryMentions == 0 {
		add("coverage", StatusFail, "no junction rows present")
	} else {
		add("coverage", StatusPass, "%d person and %d theory mentions present", integrity.PersonMentions, integrity.TheoryMentions)
	}

	for _, c := range report.Checks {
		switch c.Status {
		case StatusFail:
			log.Error("check failed", logging.F("check", c.Name), logging.F("detail", c.Detail))
		case StatusWarn:
			log.Warn("check warned", logging.F("check", c.Name), logging.F("detail", c.Detail))
		default:
			log.Debug("check passed", logging.F("check", c.Name))
		}
	}
	return report, nil
}
