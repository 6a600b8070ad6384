package canonical

import (
	"fmt"
	"strings"
	"unicode"
)

// Slugify converts a display name to a stable snake_case identifier:
// "Rick Lagina" → "rick_lagina". Intra-word punctuation is dropped
// rather than split on, so "O'Brien" yields "obrien" not "o_brien".
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false
		case r == '\'' || r == '’':
			// dropped, no separator
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "unknown"
	}
	return slug
}

// slugAllocator hands out canonical IDs, suffixing on collision so two
// distinct clusters never share an ID. Allocation order is deterministic
// because the engine emits clusters in sorted order.
type slugAllocator struct {
	taken map[string]bool
}

func newSlugAllocator() *slugAllocator {
	return &slugAllocator{taken: make(map[string]bool)}
}

// reserve marks an ID as used without allocating, for override-specified
// canonical IDs that must keep their exact value.
func (a *slugAllocator) reserve(id string) {
	a.taken[id] = true
}

func (a *slugAllocator) allocate(displayName string) string {
	base := Slugify(displayName)
	id := base
	for n := 2; a.taken[id]; n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	a.taken[id] = true
	return id
}
