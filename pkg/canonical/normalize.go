package canonical

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Honorifics stripped during label normalization. Transcript extraction
// frequently prefixes names with these.
var honorifics = map[string]bool{
	"mr":   true,
	"mrs":  true,
	"ms":   true,
	"dr":   true,
	"sir":  true,
	"prof": true,
}

// foldTransformer decomposes accented characters and drops the combining
// marks, so "Réne" and "Rene" normalize identically.
var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeLabel converts a raw label to its clustering key: accent-folded,
// lowercased, punctuation stripped, honorifics removed, whitespace
// collapsed. The normalized form is never used as a display value.
//   - "RICK_LAGINA"  → "rick lagina"
//   - "Dr. Spooner"  → "spooner"
//   - "  Marty  Lagina " → "marty lagina"
func NormalizeLabel(raw string) string {
	folded, _, err := transform.String(foldTransformer, raw)
	if err != nil {
		folded = raw
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == '_' || r == '-' || unicode.IsSpace(r):
			b.WriteByte(' ')
		}
		// Remaining punctuation is dropped.
	}

	words := strings.Fields(b.String())
	kept := words[:0]
	for i, w := range words {
		// Honorifics only matter as a leading token; "dr" inside a name
		// ("gary dr drayton" does not occur in practice) is left alone.
		if i == 0 && len(words) > 1 && honorifics[w] {
			continue
		}
		kept = append(kept, w)
	}

	return strings.Join(kept, " ")
}

// DisplayNameFromLabel title-cases a raw label for presentation,
// normalizing separators but preserving word order.
func DisplayNameFromLabel(raw string) string {
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(raw)
	words := strings.Fields(cleaned)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		if len(r) > 0 {
			r[0] = unicode.ToUpper(r[0])
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
