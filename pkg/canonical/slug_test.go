package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Rick Lagina", "rick_lagina"},
		{"Templar Cross", "templar_cross"},
		{"O'Brien", "obrien"},
		{"O’Brien", "obrien"},
		{"Smith's Cove", "smiths_cove"},
		{"  Zena   Map  ", "zena_map"},
		{"", "unknown"},
		{"!!!", "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, Slugify(tc.input))
		})
	}
}

func TestSlugAllocator_Collisions(t *testing.T) {
	alloc := newSlugAllocator()
	alloc.reserve("john_smith")

	assert.Equal(t, "john_smith_2", alloc.allocate("John Smith"))
	assert.Equal(t, "john_smith_3", alloc.allocate("John Smith"))
	assert.Equal(t, "rick_lagina", alloc.allocate("Rick Lagina"))
}
