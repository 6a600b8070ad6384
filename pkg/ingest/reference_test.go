package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	czerrors "github.com/otherjamesbrown/canonize/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadEpisodes_ObjectLayout(t *testing.T) {
	path := writeFile(t, t.TempDir(), "episodes.json", `{
		"episodes": [
			{"season": 1, "episode": 2, "title": "The Mystery", "air_date": "2014-01-12"},
			{"season": 1, "episode": 1, "title": "The Beginning", "airDate": "2014-01-05", "shortSummary": "It begins."}
		]
	}`)

	episodes, err := LoadEpisodes(path)
	require.NoError(t, err)
	require.Len(t, episodes, 2)

	assert.Equal(t, "s01e01", episodes[0].ID)
	assert.Equal(t, "2014-01-05", episodes[0].AirDate)
	assert.Equal(t, "It begins.", episodes[0].Summary)
	assert.Equal(t, "s01e02", episodes[1].ID)
	assert.Equal(t, "2014-01-12", episodes[1].AirDate)
}

func TestLoadEpisodes_ListLayout(t *testing.T) {
	path := writeFile(t, t.TempDir(), "episodes.json", `[
		{"season": 2, "episode": 1, "title": "Return"},
		{"season": 1, "episode": 1, "title": "Start"}
	]`)

	episodes, err := LoadEpisodes(path)
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	assert.Equal(t, "s01e01", episodes[0].ID)
	assert.Equal(t, "s02e01", episodes[1].ID)
}

func TestLoadEpisodes_SeasonsLayout(t *testing.T) {
	path := writeFile(t, t.TempDir(), "episodes.json", `{
		"seasons": [
			{"episodes": [{"season": 1, "episode": 1, "title": "Start"}]},
			{"episodes": [{"season": 2, "episode": 1, "title": "Return"}]}
		]
	}`)

	episodes, err := LoadEpisodes(path)
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	assert.Equal(t, "Start", episodes[0].Title)
	assert.Equal(t, "Return", episodes[1].Title)
}

func TestLoadEpisodes_DropsIncompleteAndDeduplicates(t *testing.T) {
	path := writeFile(t, t.TempDir(), "episodes.json", `[
		{"season": 1, "episode": 1, "title": "First pass"},
		{"season": 1, "episode": 1, "title": "Second pass"},
		{"season": 0, "episode": 3, "title": "No season"},
		{"title": "No numbers at all"}
	]`)

	episodes, err := LoadEpisodes(path)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	assert.Equal(t, "Second pass", episodes[0].Title)
}

func TestLoadEpisodes_MissingFile(t *testing.T) {
	_, err := LoadEpisodes(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadEpisodes_MalformedJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "episodes.json", `{"episodes": [`)
	_, err := LoadEpisodes(path)
	require.Error(t, err)
	assert.True(t, czerrors.IsValidation(err))
}

func TestLoadLocations(t *testing.T) {
	path := writeFile(t, t.TempDir(), "locations.json", `[
		{"id": "smiths_cove", "name": "Smith's Cove", "type": "shoreline", "latitude": 44.514, "longitude": -64.289},
		{"id": "money_pit", "name": "Money Pit", "type": "excavation", "lat": 44.5138, "lng": -64.2885, "description": "The original shaft."},
		{"id": "swamp", "name": "The Swamp"},
		{"name": "no id, dropped"}
	]`)

	locations, err := LoadLocations(path)
	require.NoError(t, err)
	require.Len(t, locations, 3)

	assert.Equal(t, "money_pit", locations[0].ID)
	assert.InDelta(t, 44.5138, locations[0].Latitude, 1e-9)
	assert.InDelta(t, -64.2885, locations[0].Longitude, 1e-9)
	assert.Equal(t, "The original shaft.", locations[0].Description)

	assert.Equal(t, "smiths_cove", locations[1].ID)
	assert.InDelta(t, 44.514, locations[1].Latitude, 1e-9)

	assert.Equal(t, "swamp", locations[2].ID)
	assert.Equal(t, "unknown", locations[2].Type)
	assert.Zero(t, locations[2].Latitude)
}

func TestLoadLocations_MalformedJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "locations.json", `{"not": "a list"}`)
	_, err := LoadLocations(path)
	require.Error(t, err)
	assert.True(t, czerrors.IsValidation(err))
}
