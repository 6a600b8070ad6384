package store

import (
	"context"
	"database/sql"
	"fmt"

	czerrors "github.com/otherjamesbrown/canonize/pkg/errors"
	"github.com/otherjamesbrown/canonize/pkg/junction"
	"github.com/otherjamesbrown/canonize/pkg/logging"
	"github.com/otherjamesbrown/canonize/pkg/mentions"
)

// entityTables maps an entity kind to its canonical and junction tables.
func entityTables(kind mentions.Kind) (entityTable, junctionTable, fkColumn string, err error) {
	switch kind {
	case mentions.KindPerson:
		return "people", "person_mentions", "person_id", nil
	case mentions.KindTheory:
		return "theories", "theory_mentions", "theory_id", nil
	default:
		return "", "", "", czerrors.Newf(czerrors.ErrValidation, "unknown entity kind %q", kind)
	}
}

// CommitResolution replaces the canonical entities and junction rows for
// both kinds in one transaction. The junction insert count is checked
// against the input before commit; a mismatch aborts the transaction.
func (s *Store) CommitResolution(ctx context.Context, entities []mentions.CanonicalEntity, records []junction.Record, dryRun bool) error {
	return s.withTx(ctx, dryRun, func(tx *sql.Tx) error {
		// Junction rows first: they hold the FK side.
		for _, table := range []string{"person_mentions", "theory_mentions"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		for _, table := range []string{"people", "theories"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		for _, e := range entities {
			if err := insertEntity(ctx, tx, e); err != nil {
				return err
			}
		}

		inserted := 0
		for _, r := range records {
			if err := insertJunction(ctx, tx, r); err != nil {
				return err
			}
			inserted++
		}
		if inserted != len(records) {
			return czerrors.Newf(czerrors.ErrConservation, "inserted %d junction rows for %d records", inserted, len(records))
		}

		s.log.Info("resolution committed",
			logging.F("entities", len(entities)),
			logging.F("junction_rows", inserted))
		return nil
	})
}

func insertEntity(ctx context.Context, tx *sql.Tx, e mentions.CanonicalEntity) error {
	entityTable, _, _, err := entityTables(e.Kind)
	if err != nil {
		return err
	}

	switch e.Kind {
	case mentions.KindPerson:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO people (id, name, role, mention_count, confidence)
			 VALUES (?, ?, ?, ?, ?)`,
			e.ID, e.DisplayName, nullableString(e.Category), e.MentionCount, e.Confidence)
	case mentions.KindTheory:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO theories (id, name, theory_type, mention_count, confidence)
			 VALUES (?, ?, ?, ?, ?)`,
			e.ID, e.DisplayName, e.Category, e.MentionCount, e.Confidence)
	}
	if err != nil {
		return fmt.Errorf("insert into %s (%s): %w", entityTable, e.ID, err)
	}
	return nil
}

func insertJunction(ctx context.Context, tx *sql.Tx, r junction.Record) error {
	_, junctionTable, fkColumn, err := entityTables(r.Mention.Kind)
	if err != nil {
		return err
	}

	m := r.Mention
	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s, season, episode, timestamp, text, confidence, mention_type, location_hint, source_file)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, junctionTable, fkColumn),
		r.CanonicalID,
		m.Episode.Season,
		m.Episode.Episode,
		nullableString(m.Timestamp),
		m.Text,
		m.Confidence,
		nullableString(string(m.MentionType)),
		nullableString(m.LocationHint),
		nullableString(m.SourceRef),
	)
	if err != nil {
		return fmt.Errorf("insert junction row for mention %d: %w", m.ID, err)
	}
	return nil
}

// Entities returns the canonical entities of one kind ordered by mention
// count descending, then ID.
func (s *Store) Entities(ctx context.Context, kind mentions.Kind) ([]mentions.CanonicalEntity, error) {
	var query string
	switch kind {
	case mentions.KindPerson:
		query = `SELECT id, name, role, mention_count, confidence,
		                first_appearance_season, last_appearance_season
		         FROM people ORDER BY mention_count DESC, id`
	case mentions.KindTheory:
		query = `SELECT id, name, theory_type, mention_count, confidence,
		                first_mentioned_season, last_mentioned_season
		         FROM theories ORDER BY mention_count DESC, id`
	default:
		return nil, czerrors.Newf(czerrors.ErrValidation, "unknown entity kind %q", kind)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	var entities []mentions.CanonicalEntity
	for rows.Next() {
		var (
			e        mentions.CanonicalEntity
			category sql.NullString
			first    sql.NullInt64
			last     sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.DisplayName, &category, &e.MentionCount, &e.Confidence, &first, &last); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		e.Kind = kind
		e.Category = category.String
		if first.Valid {
			e.FirstAppearance = &mentions.EpisodeRef{Season: int(first.Int64)}
		}
		if last.Valid {
			e.LastAppearance = &mentions.EpisodeRef{Season: int(last.Int64)}
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// JunctionCount returns the number of junction rows for one kind.
func (s *Store) JunctionCount(ctx context.Context, kind mentions.Kind) (int, error) {
	_, junctionTable, _, err := entityTables(kind)
	if err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+junctionTable).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", junctionTable, err)
	}
	return count, nil
}

// EntityCount returns the number of canonical entities for one kind.
func (s *Store) EntityCount(ctx context.Context, kind mentions.Kind) (int, error) {
	entityTable, _, _, err := entityTables(kind)
	if err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+entityTable).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", entityTable, err)
	}
	return count, nil
}
