package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity_SharedTokenContainment(t *testing.T) {
	// A first name contained in a full name scores above the default
	// threshold, which is what lets "rick" join "rick lagina".
	assert.GreaterOrEqual(t, Similarity("rick", "rick lagina"), DefaultThreshold)
	assert.GreaterOrEqual(t, Similarity("lagina", "rick lagina"), DefaultThreshold)
	assert.GreaterOrEqual(t, Similarity("gary drayton", "gary"), DefaultThreshold)
}

func TestSimilarity_DistinctNamesStayApart(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"marty", "martin"},
		{"rick lagina", "marty lagina"},
		{"jack begley", "jack blankenship"},
		{"doug", "dave"},
	}

	for _, tc := range tests {
		t.Run(tc.a+"/"+tc.b, func(t *testing.T) {
			assert.Less(t, Similarity(tc.a, tc.b), DefaultThreshold)
		})
	}
}

func TestSimilarity_EditDistanceVariants(t *testing.T) {
	// Typos and minor spelling drift score high on the Levenshtein side
	// even without token overlap.
	assert.GreaterOrEqual(t, Similarity("blankenship", "blankinship"), DefaultThreshold)
	assert.GreaterOrEqual(t, Similarity("drayton", "draiton"), DefaultThreshold)
}

func TestSimilarity_Bounds(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("rick lagina", "rick lagina"))
	assert.Equal(t, 0.0, Similarity("", "rick"))
	s := Similarity("zena halpern", "templar cross")
	assert.GreaterOrEqual(t, s, 0.0)
	assert.Less(t, s, DefaultThreshold)
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"rick", "rick lagina"},
		{"marty", "martin"},
		{"templar", "templar cross"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]))
	}
}
