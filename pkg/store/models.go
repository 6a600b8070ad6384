package store

import (
	"fmt"
	"time"
)

// Episode is one reference row from the ingest phase.
type Episode struct {
	ID      string
	Season  int
	Episode int
	Title   string
	AirDate string
	Summary string
}

// EpisodeID builds the conventional episode key, e.g. "s01e02".
func EpisodeID(season, episode int) string {
	return fmt.Sprintf("s%02de%02d", season, episode)
}

// Location is one reference row from the ingest phase. FirstSeason and
// FirstEpisode are filled during normalization from location hints.
type Location struct {
	ID           string
	Name         string
	Type         string
	Latitude     float64
	Longitude    float64
	Description  string
	FirstSeason  int
	FirstEpisode int
}

// RunRecord logs one pipeline phase execution.
type RunRecord struct {
	RunID      string
	Phase      string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	Status     string
	Detail     string
}
