package canonical

import (
	"strings"
)

// Similarity scores two normalized labels in [0, 1]. It combines token
// overlap with an edit-distance ratio and takes the stronger signal, so
// both "rick" / "rick lagina" (shared token) and "blankenship" /
// "blankinship" (near-identical spelling) score highly while "marty" /
// "martin" stays below the default clustering threshold.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}

	token := tokenOverlap(a, b)
	edit := levenshteinRatio(a, b)
	if token > edit {
		return token
	}
	return edit
}

// tokenOverlap measures shared whole tokens between two labels. A label
// whose tokens are all contained in the other (e.g. "rick" within
// "rick lagina") counts as a strong partial match; otherwise the Jaccard
// ratio of the token sets is used.
func tokenOverlap(a, b string) float64 {
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}

	set := make(map[string]bool, len(ta))
	for _, t := range ta {
		set[t] = true
	}

	shared := 0
	for _, t := range tb {
		if set[t] {
			shared++
		}
	}
	if shared == 0 {
		return 0.0
	}

	shorter := len(ta)
	if len(tb) < shorter {
		shorter = len(tb)
	}
	if shared == shorter {
		// Single-character tokens ("k") match too many real names to be
		// trusted as containment evidence.
		minTokenLen := len(a)
		for _, t := range ta {
			if len(t) < minTokenLen {
				minTokenLen = len(t)
			}
		}
		for _, t := range tb {
			if len(t) < minTokenLen {
				minTokenLen = len(t)
			}
		}
		if minTokenLen >= 3 {
			return 0.9
		}
	}

	union := len(ta) + len(tb) - shared
	return float64(shared) / float64(union)
}

// levenshteinRatio converts edit distance to a similarity in [0, 1].
func levenshteinRatio(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshteinDistance(a, b))/float64(maxLen)
}

// levenshteinDistance calculates the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Two-row formulation; label sets run to tens of thousands of pairs.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func minInt(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
