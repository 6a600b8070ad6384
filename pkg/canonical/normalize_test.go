package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Rick Lagina", "rick lagina"},
		{"RICK_LAGINA", "rick lagina"},
		{"rick-lagina", "rick lagina"},
		{"  Rick   Lagina  ", "rick lagina"},
		{"Rick Lagina!", "rick lagina"},
		{"O'Brien", "obrien"},
		{"José", "jose"},
		{"Zéna Halpern", "zena halpern"},
		{"templar_cross", "templar cross"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeLabel(tc.input))
		})
	}
}

func TestNormalizeLabel_Honorifics(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Mr. Blankenship", "blankenship"},
		{"Dr. Spooner", "spooner"},
		{"Mrs. Restall", "restall"},
		// A bare honorific is a label in its own right, not a prefix.
		{"Doc", "doc"},
		{"Dr", "dr"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeLabel(tc.input))
		})
	}
}

func TestDisplayNameFromLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"rick_lagina", "Rick Lagina"},
		{"templar cross", "Templar Cross"},
		{"gary", "Gary"},
		{"zena-map", "Zena Map"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, DisplayNameFromLabel(tc.input))
		})
	}
}
