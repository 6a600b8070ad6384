package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	czerrors "github.com/otherjamesbrown/canonize/pkg/errors"
	"github.com/otherjamesbrown/canonize/pkg/mentions"
)

func personMentions(labels ...string) []mentions.Mention {
	ms := make([]mentions.Mention, len(labels))
	for i, l := range labels {
		ms[i] = mentions.Mention{
			ID:         int64(i + 1),
			Kind:       mentions.KindPerson,
			RawLabel:   l,
			Confidence: 1.0,
		}
	}
	return ms
}

func theoryMentions(labels ...string) []mentions.Mention {
	ms := make([]mentions.Mention, len(labels))
	for i, l := range labels {
		ms[i] = mentions.Mention{
			ID:         int64(i + 1),
			Kind:       mentions.KindTheory,
			RawLabel:   l,
			Confidence: 1.0,
		}
	}
	return ms
}

func TestCanonicalize_MergesSpellingVariants(t *testing.T) {
	ms := personMentions("Rick", "Rick Lagina", "RICK_LAGINA", "Rick Lagina")

	res, err := Canonicalize(mentions.KindPerson, ms, nil, Options{})
	require.NoError(t, err)

	require.Len(t, res.Entities, 1)
	e := res.Entities[0]
	assert.Equal(t, "rick_lagina", e.ID)
	assert.Equal(t, "Rick Lagina", e.DisplayName)
	assert.Equal(t, 4, e.MentionCount)

	assert.Equal(t, "rick_lagina", res.Aliases["rick"].CanonicalID)
	assert.Equal(t, "rick_lagina", res.Aliases["rick lagina"].CanonicalID)
	assert.Equal(t, mentions.AliasSourceCluster, res.Aliases["rick"].Source)
}

func TestCanonicalize_DistinctPeopleStayApart(t *testing.T) {
	ms := personMentions("Marty", "Martin")

	res, err := Canonicalize(mentions.KindPerson, ms, nil, Options{})
	require.NoError(t, err)

	require.Len(t, res.Entities, 2)
	assert.NotEqual(t, res.Aliases["marty"].CanonicalID, res.Aliases["martin"].CanonicalID)
	for _, a := range res.Aliases {
		assert.Equal(t, mentions.AliasSourceSingleton, a.Source)
	}
}

func TestCanonicalize_OverridesWin(t *testing.T) {
	overrides := DefaultOverrides().ForKind(mentions.KindPerson)
	ms := personMentions("Gary", "gary", "Gary Drayton")

	res, err := Canonicalize(mentions.KindPerson, ms, overrides, Options{})
	require.NoError(t, err)

	require.Len(t, res.Entities, 1)
	e := res.Entities[0]
	assert.Equal(t, "gary_drayton", e.ID)
	assert.Equal(t, "Gary Drayton", e.DisplayName)
	assert.Equal(t, 3, e.MentionCount)
	assert.Equal(t, mentions.AliasSourceOverride, res.Aliases["gary"].Source)
}

func TestCanonicalize_OverrideBeatsCluster(t *testing.T) {
	// "smith" is pinned; "john smith" is not and must not steal its ID.
	overrides := map[string]string{"smith": "john_smith"}
	ms := personMentions("Smith", "John Smith")

	res, err := Canonicalize(mentions.KindPerson, ms, overrides, Options{})
	require.NoError(t, err)

	require.Len(t, res.Entities, 2)
	assert.Equal(t, "john_smith", res.Aliases["smith"].CanonicalID)
	assert.Equal(t, "john_smith_2", res.Aliases["john smith"].CanonicalID)
}

func TestCanonicalize_DisplayNameMostFrequent(t *testing.T) {
	ms := personMentions("Billy", "billy gerhardt", "Billy Gerhardt", "Billy Gerhardt")

	res, err := Canonicalize(mentions.KindPerson, ms, nil, Options{})
	require.NoError(t, err)

	require.Len(t, res.Entities, 1)
	assert.Equal(t, "Billy Gerhardt", res.Entities[0].DisplayName)
	assert.Equal(t, "billy_gerhardt", res.Entities[0].ID)
}

func TestCanonicalize_ConfidenceIsClusterMinimum(t *testing.T) {
	ms := personMentions("Rick", "Rick Lagina")
	ms[0].Confidence = 0.65

	res, err := Canonicalize(mentions.KindPerson, ms, nil, Options{})
	require.NoError(t, err)

	require.Len(t, res.Entities, 1)
	assert.InDelta(t, 0.65, res.Entities[0].Confidence, 1e-9)
}

func TestCanonicalize_TheoriesMergeOnExactNormalizationOnly(t *testing.T) {
	ms := theoryMentions("Templar Cross", "templar_cross", "Templar", "Templars")

	res, err := Canonicalize(mentions.KindTheory, ms, nil, Options{})
	require.NoError(t, err)

	// "Templar Cross" and "templar_cross" normalize identically; "Templar"
	// and "Templars" do not and no fuzzy pass runs for theories.
	require.Len(t, res.Entities, 3)
	assert.Contains(t, res.Aliases, "templar cross")
	assert.NotEqual(t, res.Aliases["templar"].CanonicalID, res.Aliases["templars"].CanonicalID)
}

func TestCanonicalize_TheoryCategories(t *testing.T) {
	overrides := DefaultOverrides().ForKind(mentions.KindTheory)
	ms := theoryMentions("templar", "treasure vault")

	res, err := Canonicalize(mentions.KindTheory, ms, overrides, Options{})
	require.NoError(t, err)

	byID := make(map[string]mentions.CanonicalEntity)
	for _, e := range res.Entities {
		byID[e.ID] = e
	}
	assert.Equal(t, "religious", byID["templar"].Category)
	assert.Equal(t, "other", byID["treasure_vault"].Category)
}

func TestCanonicalize_Deterministic(t *testing.T) {
	forward := personMentions("Rick", "Gary", "Marty", "Rick Lagina", "Gary Drayton", "Billy Gerhardt")
	reversed := personMentions("Billy Gerhardt", "Gary Drayton", "Rick Lagina", "Marty", "Gary", "Rick")
	overrides := DefaultOverrides().ForKind(mentions.KindPerson)

	a, err := Canonicalize(mentions.KindPerson, forward, overrides, Options{})
	require.NoError(t, err)
	b, err := Canonicalize(mentions.KindPerson, reversed, overrides, Options{})
	require.NoError(t, err)

	assert.Equal(t, a.Entities, b.Entities)
	assert.Equal(t, a.Aliases, b.Aliases)
}

func TestCanonicalize_FiltersOtherKinds(t *testing.T) {
	ms := append(personMentions("Rick"), theoryMentions("templar")...)

	res, err := Canonicalize(mentions.KindPerson, ms, nil, Options{})
	require.NoError(t, err)

	require.Len(t, res.Entities, 1)
	assert.Equal(t, mentions.KindPerson, res.Entities[0].Kind)
}

func TestCanonicalize_EmptyNormalizedLabel(t *testing.T) {
	ms := personMentions("!!!")

	_, err := Canonicalize(mentions.KindPerson, ms, nil, Options{})
	require.Error(t, err)
	assert.True(t, czerrors.IsValidation(err))
}

func TestCanonicalize_Stats(t *testing.T) {
	overrides := DefaultOverrides().ForKind(mentions.KindPerson)
	ms := personMentions("Rick", "Rick", "Gary", "Zena Halpern")

	res, err := Canonicalize(mentions.KindPerson, ms, overrides, Options{})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Stats.Mentions)
	assert.Equal(t, 3, res.Stats.UniqueLabels)
	assert.Equal(t, 2, res.Stats.Overridden)
	assert.Equal(t, 1, res.Stats.Singletons)
	assert.Equal(t, 3, res.Stats.Entities)
}
