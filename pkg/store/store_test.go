package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/canonize/pkg/junction"
	"github.com/otherjamesbrown/canonize/pkg/logging"
	"github.com/otherjamesbrown/canonize/pkg/mentions"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "canonize.db"), logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testEntities() []mentions.CanonicalEntity {
	return []mentions.CanonicalEntity{
		{ID: "rick_lagina", DisplayName: "Rick Lagina", Kind: mentions.KindPerson, MentionCount: 2, Confidence: 1.0},
		{ID: "templar", DisplayName: "Templar", Kind: mentions.KindTheory, Category: "religious", MentionCount: 1, Confidence: 1.0},
	}
}

func testRecords() []junction.Record {
	return []junction.Record{
		{CanonicalID: "rick_lagina", Mention: mentions.Mention{
			ID: 1, Kind: mentions.KindPerson, RawLabel: "Rick",
			Episode: mentions.EpisodeRef{Season: 1, Episode: 1}, Text: "t1", Confidence: 1.0,
		}},
		{CanonicalID: "rick_lagina", Mention: mentions.Mention{
			ID: 2, Kind: mentions.KindPerson, RawLabel: "Rick Lagina",
			Episode: mentions.EpisodeRef{Season: 2, Episode: 3}, Text: "t2", Confidence: 0.9,
			LocationHint: "Money Pit",
		}},
		{CanonicalID: "templar", Mention: mentions.Mention{
			ID: 3, Kind: mentions.KindTheory, RawLabel: "templar",
			Episode: mentions.EpisodeRef{Season: 1, Episode: 1}, Text: "t3", Confidence: 1.0,
		}},
	}
}

func TestOpen_CreatesSchema(t *testing.T) {
	s := openTestStore(t)

	in, err := s.CollectIntegrity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Integrity{}, in)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canonize.db")
	ctx := context.Background()

	s, err := Open(ctx, path, logging.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, s.ReplaceEpisodes(ctx, []Episode{{Season: 1, Episode: 1, Title: "Forever Family"}}, false))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, logging.NewNopLogger())
	require.NoError(t, err)
	defer s.Close()

	eps, err := s.Episodes(ctx)
	require.NoError(t, err)
	require.Len(t, eps, 1)
	assert.Equal(t, "s01e01", eps[0].ID)
}

func TestReplaceEpisodes_DryRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceEpisodes(ctx, []Episode{{Season: 1, Episode: 1}}, true))

	eps, err := s.Episodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, eps)
}

func TestCommitResolution_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CommitResolution(ctx, testEntities(), testRecords(), false))

	people, err := s.Entities(ctx, mentions.KindPerson)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "rick_lagina", people[0].ID)
	assert.Equal(t, "Rick Lagina", people[0].DisplayName)

	theories, err := s.Entities(ctx, mentions.KindTheory)
	require.NoError(t, err)
	require.Len(t, theories, 1)
	assert.Equal(t, "religious", theories[0].Category)

	pc, err := s.JunctionCount(ctx, mentions.KindPerson)
	require.NoError(t, err)
	assert.Equal(t, 2, pc)
	tc, err := s.JunctionCount(ctx, mentions.KindTheory)
	require.NoError(t, err)
	assert.Equal(t, 1, tc)
}

func TestCommitResolution_DryRunRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CommitResolution(ctx, testEntities(), testRecords(), true))

	count, err := s.EntityCount(ctx, mentions.KindPerson)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	jc, err := s.JunctionCount(ctx, mentions.KindPerson)
	require.NoError(t, err)
	assert.Equal(t, 0, jc)
}

func TestCommitResolution_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CommitResolution(ctx, testEntities(), testRecords(), false))
	require.NoError(t, s.CommitResolution(ctx, testEntities(), testRecords(), false))

	count, err := s.JunctionCount(ctx, mentions.KindPerson)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCommitResolution_RejectsUnknownEntity(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	records := []junction.Record{{CanonicalID: "nobody", Mention: mentions.Mention{
		ID: 1, Kind: mentions.KindPerson, RawLabel: "Nobody",
		Episode: mentions.EpisodeRef{Season: 1, Episode: 1}, Confidence: 1.0,
	}}}

	// FK enforcement refuses a junction row without its canonical entity.
	err := s.CommitResolution(ctx, nil, records, false)
	assert.Error(t, err)
}

func TestUpdateEntityStatistics(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Seed with deliberately wrong counts and no spans.
	entities := testEntities()
	entities[0].MentionCount = 99
	require.NoError(t, s.CommitResolution(ctx, entities, testRecords(), false))

	updated, err := s.UpdateEntityStatistics(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	people, err := s.Entities(ctx, mentions.KindPerson)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, 2, people[0].MentionCount)
	require.NotNil(t, people[0].FirstAppearance)
	assert.Equal(t, 1, people[0].FirstAppearance.Season)
	require.NotNil(t, people[0].LastAppearance)
	assert.Equal(t, 2, people[0].LastAppearance.Season)
}

func TestLocationHints(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CommitResolution(ctx, testEntities(), testRecords(), false))

	hints, err := s.LocationHints(ctx)
	require.NoError(t, err)
	require.Len(t, hints, 1)
	assert.Equal(t, "Money Pit", hints[0].Hint)
	assert.Equal(t, 2, hints[0].Season)
}

func TestUpdateLocationFirstMentions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceLocations(ctx, []Location{{ID: "money_pit", Name: "Money Pit", Type: "shaft"}}, false))
	require.NoError(t, s.UpdateLocationFirstMentions(ctx, map[string][2]int{"money_pit": {2, 3}}, false))

	locs, err := s.Locations(ctx)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, 2, locs[0].FirstSeason)
	assert.Equal(t, 3, locs[0].FirstEpisode)
}

func TestCollectIntegrity_CountsAndEpisodeRefs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceEpisodes(ctx, []Episode{{Season: 1, Episode: 1}}, false))
	require.NoError(t, s.CommitResolution(ctx, testEntities(), testRecords(), false))

	in, err := s.CollectIntegrity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, in.Episodes)
	assert.Equal(t, 1, in.People)
	assert.Equal(t, 2, in.PersonMentions)
	assert.Equal(t, 1, in.Theories)
	assert.Equal(t, 1, in.TheoryMentions)
	assert.Equal(t, 0, in.OrphanPersonMentions)
	// The s02e03 mention has no episode row.
	assert.Equal(t, 1, in.UnknownEpisodeRefs)
}

func TestRunLog(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := RunRecord{RunID: "run-1", Phase: "dedupe", Status: "ok", Detail: "85 entities"}
	require.NoError(t, s.RecordRun(ctx, rec))
	require.NoError(t, s.RecordRun(ctx, RunRecord{RunID: "run-1", Phase: "verify", Status: "failed", DryRun: true}))

	runs, err := s.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "verify", runs[0].Phase)
	assert.True(t, runs[0].DryRun)
	assert.Equal(t, "dedupe", runs[1].Phase)
	assert.Equal(t, "85 entities", runs[1].Detail)
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CommitResolution(ctx, testEntities(), testRecords(), false))
	require.NoError(t, s.Reset(ctx))

	in, err := s.CollectIntegrity(ctx)
	require.NoError(t, err)
	assert.Equal(t, Integrity{}, in)

	// The recreated schema accepts a fresh resolution.
	require.NoError(t, s.CommitResolution(ctx, testEntities(), testRecords(), false))
	count, err := s.JunctionCount(ctx, mentions.KindPerson)
	require.NoError(t, err)
	assert.Positive(t, count)
}

func TestTableStatsCollector(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CommitResolution(ctx, testEntities(), testRecords(), false))

	reg := prometheus.NewRegistry()
	_, err := RegisterTableStatsCollector(s, "canonize", reg)
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	found := make(map[string]bool)
	for _, mf := range families {
		found[mf.GetName()] = true
	}
	assert.True(t, found["canonize_db_table_rows"])
	assert.True(t, found["canonize_db_open_conns"])
}
