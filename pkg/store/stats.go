package store

import (
	"context"
	"database/sql"
	"fmt"
)

// MentionHint is one junction row carrying a location hint.
type MentionHint struct {
	Season  int
	Episode int
	Hint    string
}

// UpdateEntityStatistics recomputes mention counts and first/last season
// spans for every canonical entity from the junction tables. Returns the
// number of entities updated.
func (s *Store) UpdateEntityStatistics(ctx context.Context, dryRun bool) (int64, error) {
	var updated int64
	err := s.withTx(ctx, dryRun, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE people SET
				first_appearance_season = (
					SELECT MIN(season) FROM person_mentions
					WHERE person_id = people.id
				),
				last_appearance_season = (
					SELECT MAX(season) FROM person_mentions
					WHERE person_id = people.id
				),
				mention_count = (
					SELECT COUNT(*) FROM person_mentions
					WHERE person_id = people.id
				)`)
		if err != nil {
			return fmt.Errorf("update people statistics: %w", err)
		}
		n, _ := res.RowsAffected()
		updated += n

		res, err = tx.ExecContext(ctx, `
			UPDATE theories SET
				first_mentioned_season = (
					SELECT MIN(season) FROM theory_mentions
					WHERE theory_id = theories.id
				),
				last_mentioned_season = (
					SELECT MAX(season) FROM theory_mentions
					WHERE theory_id = theories.id
				),
				mention_count = (
					SELECT COUNT(*) FROM theory_mentions
					WHERE theory_id = theories.id
				)`)
		if err != nil {
			return fmt.Errorf("update theories statistics: %w", err)
		}
		n, _ = res.RowsAffected()
		updated += n
		return nil
	})
	return updated, err
}

// LocationHints returns every junction row with a non-empty location hint,
// ordered by season then episode so the first match per location wins.
func (s *Store) LocationHints(ctx context.Context) ([]MentionHint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT season, episode, location_hint FROM person_mentions
		WHERE location_hint IS NOT NULL AND location_hint != ''
		UNION ALL
		SELECT season, episode, location_hint FROM theory_mentions
		WHERE location_hint IS NOT NULL AND location_hint != ''
		ORDER BY season, episode`)
	if err != nil {
		return nil, fmt.Errorf("query location hints: %w", err)
	}
	defer rows.Close()

	var hints []MentionHint
	for rows.Next() {
		var h MentionHint
		if err := rows.Scan(&h.Season, &h.Episode, &h.Hint); err != nil {
			return nil, fmt.Errorf("scan location hint: %w", err)
		}
		hints = append(hints, h)
	}
	return hints, rows.Err()
}

// UnreferencedEntities counts canonical entities with no junction rows at
// all. These are legal after an overrides file names an entity nothing
// mentions, but worth surfacing.
func (s *Store) UnreferencedEntities(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT
		  (SELECT COUNT(*) FROM people p
		   WHERE NOT EXISTS (SELECT 1 FROM person_mentions pm WHERE pm.person_id = p.id))
		+ (SELECT COUNT(*) FROM theories t
		   WHERE NOT EXISTS (SELECT 1 FROM theory_mentions tm WHERE tm.theory_id = t.id))`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unreferenced entities: %w", err)
	}
	return count, nil
}

// Integrity holds the raw counts the verify phase reasons about. The
// CachedMentionSum fields recompute the per-entity mention_count columns
// so stale cached counts cannot hide behind matching junction totals.
type Integrity struct {
	Episodes             int
	Locations            int
	People               int
	PersonMentions       int
	Theories             int
	TheoryMentions       int
	OrphanPersonMentions int
	OrphanTheoryMentions int
	UnknownEpisodeRefs   int

	CachedPersonMentionSum int
	CachedTheoryMentionSum int
}

// CollectIntegrity gathers table counts and orphan counts in one pass.
func (s *Store) CollectIntegrity(ctx context.Context) (Integrity, error) {
	var in Integrity

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM episodes", &in.Episodes},
		{"SELECT COUNT(*) FROM locations", &in.Locations},
		{"SELECT COUNT(*) FROM people", &in.People},
		{"SELECT COUNT(*) FROM person_mentions", &in.PersonMentions},
		{"SELECT COUNT(*) FROM theories", &in.Theories},
		{"SELECT COUNT(*) FROM theory_mentions", &in.TheoryMentions},
		{`SELECT COUNT(*) FROM person_mentions pm
		  WHERE NOT EXISTS (SELECT 1 FROM people p WHERE p.id = pm.person_id)`, &in.OrphanPersonMentions},
		{`SELECT COUNT(*) FROM theory_mentions tm
		  WHERE NOT EXISTS (SELECT 1 FROM theories t WHERE t.id = tm.theory_id)`, &in.OrphanTheoryMentions},
		{`SELECT
		    (SELECT COUNT(*) FROM person_mentions pm
		     WHERE NOT EXISTS (SELECT 1 FROM episodes e WHERE e.season = pm.season AND e.episode = pm.episode))
		  + (SELECT COUNT(*) FROM theory_mentions tm
		     WHERE NOT EXISTS (SELECT 1 FROM episodes e WHERE e.season = tm.season AND e.episode = tm.episode))`, &in.UnknownEpisodeRefs},
		{"SELECT COALESCE(SUM(mention_count), 0) FROM people", &in.CachedPersonMentionSum},
		{"SELECT COALESCE(SUM(mention_count), 0) FROM theories", &in.CachedTheoryMentionSum},
	}

	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return Integrity{}, fmt.Errorf("integrity query: %w", err)
		}
	}
	return in, nil
}
