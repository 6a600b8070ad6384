package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/otherjamesbrown/canonize/pkg/logging"
)

// ReplaceEpisodes replaces the episodes reference table.
func (s *Store) ReplaceEpisodes(ctx context.Context, episodes []Episode, dryRun bool) error {
	return s.withTx(ctx, dryRun, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM episodes"); err != nil {
			return fmt.Errorf("clear episodes: %w", err)
		}
		for _, ep := range episodes {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO episodes (id, season, episode, title, air_date, summary)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				EpisodeID(ep.Season, ep.Episode),
				ep.Season,
				ep.Episode,
				ep.Title,
				nullableString(ep.AirDate),
				nullableString(ep.Summary),
			)
			if err != nil {
				return fmt.Errorf("insert episode s%02de%02d: %w", ep.Season, ep.Episode, err)
			}
		}
		s.log.Info("episodes replaced", logging.F("count", len(episodes)))
		return nil
	})
}

// ReplaceLocations replaces the locations reference table.
func (s *Store) ReplaceLocations(ctx context.Context, locations []Location, dryRun bool) error {
	return s.withTx(ctx, dryRun, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM locations"); err != nil {
			return fmt.Errorf("clear locations: %w", err)
		}
		for _, loc := range locations {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO locations (id, name, type, latitude, longitude, description)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				loc.ID,
				loc.Name,
				loc.Type,
				nullableFloat(loc.Latitude),
				nullableFloat(loc.Longitude),
				nullableString(loc.Description),
			)
			if err != nil {
				return fmt.Errorf("insert location %s: %w", loc.ID, err)
			}
		}
		s.log.Info("locations replaced", logging.F("count", len(locations)))
		return nil
	})
}

// Episodes returns the episodes reference table ordered by season and episode.
func (s *Store) Episodes(ctx context.Context) ([]Episode, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, season, episode, title, air_date, summary
		 FROM episodes ORDER BY season, episode`)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		var (
			ep      Episode
			airDate sql.NullString
			summary sql.NullString
		)
		if err := rows.Scan(&ep.ID, &ep.Season, &ep.Episode, &ep.Title, &airDate, &summary); err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		ep.AirDate = airDate.String
		ep.Summary = summary.String
		episodes = append(episodes, ep)
	}
	return episodes, rows.Err()
}

// Locations returns the locations reference table ordered by name.
func (s *Store) Locations(ctx context.Context) ([]Location, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type, latitude, longitude, description,
		        first_mentioned_season, first_mentioned_episode
		 FROM locations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		var (
			loc          Location
			lat, lng     sql.NullFloat64
			description  sql.NullString
			firstSeason  sql.NullInt64
			firstEpisode sql.NullInt64
		)
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Type, &lat, &lng, &description, &firstSeason, &firstEpisode); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		loc.Latitude = lat.Float64
		loc.Longitude = lng.Float64
		loc.Description = description.String
		loc.FirstSeason = int(firstSeason.Int64)
		loc.FirstEpisode = int(firstEpisode.Int64)
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// EpisodeKeys returns the set of known (season, episode) pairs keyed by
// EpisodeID. Used by normalization to validate mention episode references.
func (s *Store) EpisodeKeys(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT season, episode FROM episodes")
	if err != nil {
		return nil, fmt.Errorf("query episode keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var season, episode int
		if err := rows.Scan(&season, &episode); err != nil {
			return nil, fmt.Errorf("scan episode key: %w", err)
		}
		keys[EpisodeID(season, episode)] = true
	}
	return keys, rows.Err()
}

// UpdateLocationFirstMentions records the earliest episode each location
// was hinted at, as resolved by normalization.
func (s *Store) UpdateLocationFirstMentions(ctx context.Context, firsts map[string][2]int, dryRun bool) error {
	return s.withTx(ctx, dryRun, func(tx *sql.Tx) error {
		for id, se := range firsts {
			_, err := tx.ExecContext(ctx,
				`UPDATE locations SET first_mentioned_season = ?, first_mentioned_episode = ? WHERE id = ?`,
				se[0], se[1], id)
			if err != nil {
				return fmt.Errorf("update location %s: %w", id, err)
			}
		}
		return nil
	})
}
